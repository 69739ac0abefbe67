package places

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/plana-app/backend/internal/models"
)

type fakeStore struct {
	places map[primitive.ObjectID]*models.Place

	nearbyArgs []float64
	boundsArgs []float64
}

func newFakeStore() *fakeStore {
	return &fakeStore{places: make(map[primitive.ObjectID]*models.Place)}
}

func (s *fakeStore) Create(_ context.Context, p *models.Place) error {
	p.ID = primitive.NewObjectID()
	cp := *p
	s.places[p.ID] = &cp
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Place, error) {
	p, ok := s.places[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) List(_ context.Context) ([]models.Place, error) {
	out := make([]models.Place, 0, len(s.places))
	for _, p := range s.places {
		out = append(out, *p)
	}
	return out, nil
}

func (s *fakeStore) Update(_ context.Context, id primitive.ObjectID, p *models.Place) (*models.Place, error) {
	if _, ok := s.places[id]; !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *p
	cp.ID = id
	s.places[id] = &cp
	return &cp, nil
}

func (s *fakeStore) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := s.places[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(s.places, id)
	return nil
}

func (s *fakeStore) Nearby(_ context.Context, lng, lat, maxDistance float64) ([]models.Place, error) {
	s.nearbyArgs = []float64{lng, lat, maxDistance}
	return []models.Place{}, nil
}

func (s *fakeStore) WithinBounds(_ context.Context, swLng, swLat, neLng, neLat float64) ([]models.Place, error) {
	s.boundsArgs = []float64{swLng, swLat, neLng, neLat}
	return []models.Place{}, nil
}

func newPlacesRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store)
	r := gin.New()
	r.GET("/api/places", h.List)
	r.GET("/api/places/search", h.Search)
	r.GET("/api/places/:id", h.GetByID)
	r.POST("/api/places", h.Create)
	r.POST("/api/places/bounds", h.Bounds)
	r.PUT("/api/places/:id", h.Update)
	r.DELETE("/api/places/:id", h.Delete)
	return r
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.False(t, env.Success)
	return env.Error
}

func validPlaceBody() map[string]interface{} {
	return map[string]interface{}{
		"name":    "Blue Note",
		"address": "131 W 3rd St",
		"location": map[string]interface{}{
			"type":        "Point",
			"coordinates": []float64{-122.4194, 37.7749},
		},
		"types":    []string{"Club"},
		"capacity": 200,
	}
}

func TestCreatePlace(t *testing.T) {
	store := newFakeStore()
	r := newPlacesRouter(store)

	w := doJSON(r, http.MethodPost, "/api/places", validPlaceBody())
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, store.places, 1)
}

func TestCreatePlaceValidation(t *testing.T) {
	r := newPlacesRouter(newFakeStore())

	t.Run("longitude out of range", func(t *testing.T) {
		body := validPlaceBody()
		body["location"] = map[string]interface{}{"type": "Point", "coordinates": []float64{-200, 37.7749}}
		w := doJSON(r, http.MethodPost, "/api/places", body)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "longitude must be between -180 and 180", errorMessage(t, w))
	})

	t.Run("no types", func(t *testing.T) {
		body := validPlaceBody()
		body["types"] = []string{}
		w := doJSON(r, http.MethodPost, "/api/places", body)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "at least one place type is required", errorMessage(t, w))
	})

	t.Run("unknown type", func(t *testing.T) {
		body := validPlaceBody()
		body["types"] = []string{"Spaceport"}
		w := doJSON(r, http.MethodPost, "/api/places", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("zero capacity", func(t *testing.T) {
		body := validPlaceBody()
		body["capacity"] = 0
		w := doJSON(r, http.MethodPost, "/api/places", body)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "capacity must be positive", errorMessage(t, w))
	})
}

func TestGetPlaceNotFound(t *testing.T) {
	r := newPlacesRouter(newFakeStore())

	w := doJSON(r, http.MethodGet, "/api/places/"+primitive.NewObjectID().Hex(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/api/places/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateAndDeletePlace(t *testing.T) {
	store := newFakeStore()
	r := newPlacesRouter(store)

	p := &models.Place{Name: "Old"}
	require.NoError(t, store.Create(context.Background(), p))

	body := validPlaceBody()
	body["name"] = "New"
	w := doJSON(r, http.MethodPut, "/api/places/"+p.ID.Hex(), body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "New", store.places[p.ID].Name)

	w = doJSON(r, http.MethodPut, "/api/places/"+primitive.NewObjectID().Hex(), body)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/places/"+p.ID.Hex(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.places)

	w = doJSON(r, http.MethodDelete, "/api/places/"+p.ID.Hex(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearch(t *testing.T) {
	store := newFakeStore()
	r := newPlacesRouter(store)

	t.Run("default distance", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/places/search?longitude=-122.4&latitude=37.77", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []float64{-122.4, 37.77, DefaultSearchDistance}, store.nearbyArgs)
	})

	t.Run("short aliases", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/places/search?lng=-1&lat=2&distance=300", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []float64{-1, 2, 300}, store.nearbyArgs)
	})

	t.Run("missing coordinates", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/places/search?longitude=-122.4", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBounds(t *testing.T) {
	store := newFakeStore()
	r := newPlacesRouter(store)

	t.Run("complete corners", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/places/bounds", map[string]interface{}{
			"sw": map[string]float64{"lat": 37.7, "lng": -122.5},
			"ne": map[string]float64{"lat": 37.8, "lng": -122.3},
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []float64{-122.5, 37.7, -122.3, 37.8}, store.boundsArgs)
	})

	t.Run("missing corner field", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/places/bounds", map[string]interface{}{
			"sw": map[string]float64{"lat": 37.7},
			"ne": map[string]float64{"lat": 37.8, "lng": -122.3},
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid bounds: sw and ne corners are required", errorMessage(t, w))
	})

	t.Run("missing ne corner", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/places/bounds", map[string]interface{}{
			"sw": map[string]float64{"lat": 37.7, "lng": -122.5},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
