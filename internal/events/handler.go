package events

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/plana-app/backend/internal/middleware"
	"github.com/plana-app/backend/internal/models"
	"github.com/plana-app/backend/pkg/response"
)

// UpcomingLimit caps GET /api/events/upcoming results.
const UpcomingLimit = 10

// Store is the persistence surface the event handlers need.
type Store interface {
	Create(ctx context.Context, e *models.Event) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	List(ctx context.Context, f Filter) ([]models.Event, error)
	Upcoming(ctx context.Context, now time.Time, limit int64) ([]models.Event, error)
	Update(ctx context.Context, id primitive.ObjectID, e *models.Event) (*models.Event, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Attend(ctx context.Context, eventID, userID primitive.ObjectID) (*models.Event, error)
}

// PlaceGetter resolves place references at event creation.
type PlaceGetter interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Place, error)
}

// EventRequest is the body for event create and update. Date is RFC3339.
type EventRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PlaceID     string    `json:"placeId"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	Price       float64   `json:"price"`
	Capacity    int       `json:"capacity"`
	Picture     string    `json:"picture"`
	Link        string    `json:"link"`
}

// Handler handles event HTTP endpoints.
type Handler struct {
	store  Store
	places PlaceGetter
}

// NewHandler creates an event handler.
func NewHandler(store Store, places PlaceGetter) *Handler {
	return &Handler{store: store, places: places}
}

// Create handles POST /api/events (bearer). The caller becomes organizer.
func (h *Handler) Create(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	placeID, err := primitive.ObjectIDFromHex(req.PlaceID)
	if err != nil {
		response.BadRequest(c, "invalid place id")
		return
	}

	e := &models.Event{
		Name:        req.Name,
		Description: req.Description,
		PlaceID:     placeID,
		Category:    req.Category,
		Date:        req.Date,
		Price:       req.Price,
		Capacity:    req.Capacity,
		Picture:     req.Picture,
		Link:        req.Link,
		OrganizerID: middleware.UserID(c),
	}
	if err := e.Validate(time.Now()); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if _, err := h.places.GetByID(c.Request.Context(), placeID); err != nil {
		response.BadRequest(c, "place not found")
		return
	}
	if err := h.store.Create(c.Request.Context(), e); err != nil {
		response.Internal(c, "failed to create event")
		return
	}
	response.Created(c, e)
}

// List handles GET /api/events (public). Optional filters: place, category,
// and proximity (lng/lat with an optional distance in meters).
func (h *Handler) List(c *gin.Context) {
	var f Filter
	if s := c.Query("place"); s != "" {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			response.BadRequest(c, "invalid place id")
			return
		}
		f.PlaceID = &id
	}
	f.Category = c.Query("category")
	if lngS, latS := queryFirst(c, "lng", "longitude"), queryFirst(c, "lat", "latitude"); lngS != "" && latS != "" {
		near, err := parseNear(lngS, latS, queryFirst(c, "distance", "maxDistance"))
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		f.Near = near
	}

	list, err := h.store.List(c.Request.Context(), f)
	if err != nil {
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, list)
}

// Upcoming handles GET /api/events/upcoming (public): future events,
// nearest date first, at most ten.
func (h *Handler) Upcoming(c *gin.Context) {
	list, err := h.store.Upcoming(c.Request.Context(), time.Now(), UpcomingLimit)
	if err != nil {
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /api/events/:id (public).
func (h *Handler) GetByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			response.NotFound(c, "event not found")
			return
		}
		response.Internal(c, "failed to load event")
		return
	}
	response.OK(c, e)
}

// ByPlace handles GET /api/events/place/:placeId (public).
func (h *Handler) ByPlace(c *gin.Context) {
	placeID, err := primitive.ObjectIDFromHex(c.Param("placeId"))
	if err != nil {
		response.BadRequest(c, "invalid place id")
		return
	}
	list, err := h.store.List(c.Request.Context(), Filter{PlaceID: &placeID})
	if err != nil {
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, list)
}

// Update handles PUT /api/events/:id (organizer or admin).
func (h *Handler) Update(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	existing, ok := h.authorize(c, id)
	if !ok {
		return
	}

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	placeID := existing.PlaceID
	if req.PlaceID != "" {
		placeID, err = primitive.ObjectIDFromHex(req.PlaceID)
		if err != nil {
			response.BadRequest(c, "invalid place id")
			return
		}
	}

	e := &models.Event{
		Name:        req.Name,
		Description: req.Description,
		PlaceID:     placeID,
		Category:    req.Category,
		Date:        req.Date,
		Price:       req.Price,
		Capacity:    req.Capacity,
		Picture:     req.Picture,
		Link:        req.Link,
	}
	// Future-date rule applies at creation only.
	if err := e.Validate(time.Time{}); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	updated, err := h.store.Update(c.Request.Context(), id, e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			response.NotFound(c, "event not found")
			return
		}
		response.Internal(c, "failed to update event")
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /api/events/:id (organizer or admin).
func (h *Handler) Delete(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if _, ok := h.authorize(c, id); !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			response.NotFound(c, "event not found")
			return
		}
		response.Internal(c, "failed to delete event")
		return
	}
	response.OK(c, gin.H{})
}

// Attend handles POST /api/events/:id/attend (bearer). A second attend by
// the same user fails rather than being a no-op.
func (h *Handler) Attend(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.store.Attend(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			response.NotFound(c, "event not found")
		case errors.Is(err, ErrAlreadyAttending):
			response.BadRequest(c, "already attending this event")
		case errors.Is(err, ErrEventFull):
			response.BadRequest(c, "event is full")
		default:
			response.Internal(c, "failed to attend event")
		}
		return
	}
	response.OK(c, e)
}

// authorize loads the event and checks the caller is its organizer or an
// admin. It writes the error response itself when the check fails.
func (h *Handler) authorize(c *gin.Context, id primitive.ObjectID) (*models.Event, bool) {
	e, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			response.NotFound(c, "event not found")
			return nil, false
		}
		response.Internal(c, "failed to load event")
		return nil, false
	}
	role, _ := c.Get(middleware.ContextUserRole)
	if role == string(models.RoleAdmin) {
		return e, true
	}
	if e.OrganizerID != middleware.UserID(c) {
		response.Forbidden(c, "only the organizer can modify this event")
		return nil, false
	}
	return e, true
}

func queryFirst(c *gin.Context, names ...string) string {
	for _, n := range names {
		if s := c.Query(n); s != "" {
			return s
		}
	}
	return ""
}

func parseNear(lngS, latS, distS string) (*NearFilter, error) {
	near := &NearFilter{MaxDistance: 5000}
	var err error
	if near.Lng, err = parseFloat(lngS); err != nil {
		return nil, errors.New("invalid longitude")
	}
	if near.Lat, err = parseFloat(latS); err != nil {
		return nil, errors.New("invalid latitude")
	}
	if distS != "" {
		if near.MaxDistance, err = parseFloat(distS); err != nil {
			return nil, errors.New("invalid distance")
		}
	}
	return near, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
