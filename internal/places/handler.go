package places

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/plana-app/backend/internal/models"
	"github.com/plana-app/backend/pkg/response"
)

// DefaultSearchDistance is the radius in meters when the caller omits one.
const DefaultSearchDistance = 5000

// Store is the persistence surface the place handlers need.
type Store interface {
	Create(ctx context.Context, p *models.Place) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Place, error)
	List(ctx context.Context) ([]models.Place, error)
	Update(ctx context.Context, id primitive.ObjectID, p *models.Place) (*models.Place, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Nearby(ctx context.Context, lng, lat, maxDistance float64) ([]models.Place, error)
	WithinBounds(ctx context.Context, swLng, swLat, neLng, neLat float64) ([]models.Place, error)
}

// PlaceRequest is the body for place create and update.
type PlaceRequest struct {
	Name     string          `json:"name"`
	Address  string          `json:"address"`
	Location models.GeoPoint `json:"location"`
	Types    []string        `json:"types"`
	Capacity int             `json:"capacity"`
	Picture  string          `json:"picture"`
	Link     string          `json:"link"`
}

func (req *PlaceRequest) toModel() *models.Place {
	return &models.Place{
		Name:     req.Name,
		Address:  req.Address,
		Location: req.Location,
		Types:    req.Types,
		Capacity: req.Capacity,
		Picture:  req.Picture,
		Link:     req.Link,
	}
}

// Corner is one rectangle corner of a bounds search.
type Corner struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// BoundsRequest is the body for POST /api/places/bounds.
type BoundsRequest struct {
	SW *Corner `json:"sw"`
	NE *Corner `json:"ne"`
}

func (b *BoundsRequest) complete() bool {
	return b.SW != nil && b.NE != nil &&
		b.SW.Lat != nil && b.SW.Lng != nil &&
		b.NE.Lat != nil && b.NE.Lng != nil
}

// Handler handles place HTTP endpoints.
type Handler struct {
	store Store
}

// NewHandler creates a place handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Create handles POST /api/places (admin only).
func (h *Handler) Create(c *gin.Context) {
	var req PlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	p := req.toModel()
	if err := p.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.store.Create(c.Request.Context(), p); err != nil {
		response.Internal(c, "failed to create place")
		return
	}
	response.Created(c, p)
}

// List handles GET /api/places (public).
func (h *Handler) List(c *gin.Context) {
	list, err := h.store.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list places")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /api/places/:id (public).
func (h *Handler) GetByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid place id")
		return
	}
	p, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			response.NotFound(c, "place not found")
			return
		}
		response.Internal(c, "failed to load place")
		return
	}
	response.OK(c, p)
}

// Update handles PUT /api/places/:id (admin only). Field validations re-run
// on every write.
func (h *Handler) Update(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid place id")
		return
	}
	var req PlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	p := req.toModel()
	if err := p.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	updated, err := h.store.Update(c.Request.Context(), id, p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			response.NotFound(c, "place not found")
			return
		}
		response.Internal(c, "failed to update place")
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /api/places/:id (admin only).
func (h *Handler) Delete(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid place id")
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			response.NotFound(c, "place not found")
			return
		}
		response.Internal(c, "failed to delete place")
		return
	}
	response.OK(c, gin.H{})
}

// Search handles GET /api/places/search (public). Radius search from a
// center point; results come back nearest-first.
func (h *Handler) Search(c *gin.Context) {
	lng, okLng := queryFloat(c, "longitude", "lng")
	lat, okLat := queryFloat(c, "latitude", "lat")
	if !okLng || !okLat {
		response.BadRequest(c, "longitude and latitude are required")
		return
	}
	maxDistance, ok := queryFloat(c, "maxDistance", "distance")
	if !ok {
		maxDistance = DefaultSearchDistance
	}

	list, err := h.store.Nearby(c.Request.Context(), lng, lat, maxDistance)
	if err != nil {
		response.Internal(c, "failed to search places")
		return
	}
	response.OK(c, list)
}

// Bounds handles POST /api/places/bounds (bearer). Rectangle search; both
// corners must be complete.
func (h *Handler) Bounds(c *gin.Context) {
	var req BoundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !req.complete() {
		response.BadRequest(c, "invalid bounds: sw and ne corners are required")
		return
	}
	list, err := h.store.WithinBounds(c.Request.Context(), *req.SW.Lng, *req.SW.Lat, *req.NE.Lng, *req.NE.Lat)
	if err != nil {
		response.Internal(c, "failed to search places")
		return
	}
	response.OK(c, list)
}

// queryFloat reads the first present query param of the given names.
func queryFloat(c *gin.Context, names ...string) (float64, bool) {
	for _, n := range names {
		if s := c.Query(n); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return 0, false
			}
			return v, true
		}
	}
	return 0, false
}
