package users

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

	"github.com/plana-app/backend/internal/middleware"
	"github.com/plana-app/backend/internal/models"
)

type fakeSettingsStore struct {
	users map[primitive.ObjectID]*models.User

	lastID primitive.ObjectID
}

func (s *fakeSettingsStore) UpdateSettings(_ context.Context, id primitive.ObjectID, firstName, lastName string, darkMode bool) (*models.User, error) {
	s.lastID = id
	u, ok := s.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	u.FirstName = firstName
	u.LastName = lastName
	u.DarkMode = darkMode
	cp := *u
	return &cp, nil
}

func settingsRouter(store SettingsStore, callerID primitive.ObjectID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store)
	r := gin.New()
	r.PUT("/api/users/settings", func(c *gin.Context) {
		c.Set(middleware.ContextUserID, callerID)
	}, h.UpdateSettings)
	return r
}

func putSettings(r http.Handler, body interface{}) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPut, "/api/users/settings", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpdateSettings(t *testing.T) {
	caller := primitive.NewObjectID()
	store := &fakeSettingsStore{users: map[primitive.ObjectID]*models.User{
		caller: {ID: caller, Email: "alice@example.com"},
	}}
	r := settingsRouter(store, caller)

	w := putSettings(r, map[string]interface{}{
		"firstName": "Alice", "lastName": "Smith", "darkMode": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data struct {
			User models.UserPublic `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "Alice", env.Data.User.FirstName)
	assert.True(t, env.Data.User.DarkMode)
}

func TestUpdateSettingsTargetsCaller(t *testing.T) {
	caller := primitive.NewObjectID()
	other := primitive.NewObjectID()
	store := &fakeSettingsStore{users: map[primitive.ObjectID]*models.User{
		caller: {ID: caller},
		other:  {ID: other},
	}}
	r := settingsRouter(store, caller)

	// Any id in the body is ignored; the token decides the target.
	w := putSettings(r, map[string]interface{}{"id": other.Hex(), "darkMode": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, caller, store.lastID)
}

func TestUpdateSettingsUnknownUser(t *testing.T) {
	store := &fakeSettingsStore{users: map[primitive.ObjectID]*models.User{}}
	r := settingsRouter(store, primitive.NewObjectID())

	w := putSettings(r, map[string]interface{}{"darkMode": true})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
