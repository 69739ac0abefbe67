// Package client is a Go client for the Plana API: a typed method per
// endpoint plus a session layer that mirrors the application's login
// lifecycle (token persistence, validation on startup, logout).
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/plana-app/backend/internal/models"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// TokenUser is the payload of token-issuing endpoints.
type TokenUser struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Client calls the Plana REST API.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New creates a client for the API at baseURL (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken sets the bearer token attached to subsequent requests.
// An empty token clears it.
func (c *Client) SetToken(token string) {
	c.token = token
}

// GoogleLogin exchanges a Google ID token for a session token.
func (c *Client) GoogleLogin(ctx context.Context, credential string) (*TokenUser, error) {
	var out TokenUser
	err := c.do(ctx, http.MethodPost, "/api/auth/google", map[string]string{"credential": credential}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a local account.
func (c *Client) Register(ctx context.Context, email, password, firstName, lastName string) (*TokenUser, error) {
	body := map[string]string{
		"email":     email,
		"password":  password,
		"firstName": firstName,
		"lastName":  lastName,
	}
	var out TokenUser
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates a local account.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenUser, error) {
	body := map[string]string{"email": email, "password": password}
	var out TokenUser
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Validate checks the current token and returns the caller's profile.
func (c *Client) Validate(ctx context.Context) (*models.UserPublic, error) {
	var out struct {
		User models.UserPublic `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/validate", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Places lists all places.
func (c *Client) Places(ctx context.Context) ([]models.Place, error) {
	var out []models.Place
	if err := c.do(ctx, http.MethodGet, "/api/places", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Place fetches one place.
func (c *Client) Place(ctx context.Context, id string) (*models.Place, error) {
	var out models.Place
	if err := c.do(ctx, http.MethodGet, "/api/places/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchPlaces runs a radius search, nearest first. distance 0 uses the
// server default.
func (c *Client) SearchPlaces(ctx context.Context, lng, lat, distance float64) ([]models.Place, error) {
	q := url.Values{}
	q.Set("longitude", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	if distance > 0 {
		q.Set("maxDistance", strconv.FormatFloat(distance, 'f', -1, 64))
	}
	var out []models.Place
	if err := c.do(ctx, http.MethodGet, "/api/places/search?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PlacesInBounds runs a rectangle search between the south-west and
// north-east corners.
func (c *Client) PlacesInBounds(ctx context.Context, swLat, swLng, neLat, neLng float64) ([]models.Place, error) {
	body := map[string]map[string]float64{
		"sw": {"lat": swLat, "lng": swLng},
		"ne": {"lat": neLat, "lng": neLng},
	}
	var out []models.Place
	if err := c.do(ctx, http.MethodPost, "/api/places/bounds", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreatePlace creates a place (admin).
func (c *Client) CreatePlace(ctx context.Context, p *models.Place) (*models.Place, error) {
	var out models.Place
	if err := c.do(ctx, http.MethodPost, "/api/places", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePlace updates a place (admin).
func (c *Client) UpdatePlace(ctx context.Context, id string, p *models.Place) (*models.Place, error) {
	var out models.Place
	if err := c.do(ctx, http.MethodPut, "/api/places/"+url.PathEscape(id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePlace deletes a place (admin).
func (c *Client) DeletePlace(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/places/"+url.PathEscape(id), nil, nil)
}

// EventFilter narrows Events results. Zero values mean no filter.
type EventFilter struct {
	PlaceID  string
	Category string
	Lng, Lat float64
	Distance float64
	near     bool
}

// Near restricts results to events at places around the given center.
func (f EventFilter) Near(lng, lat, distance float64) EventFilter {
	f.Lng, f.Lat, f.Distance = lng, lat, distance
	f.near = true
	return f
}

// Events lists events, ascending by date.
func (c *Client) Events(ctx context.Context, f EventFilter) ([]models.Event, error) {
	q := url.Values{}
	if f.PlaceID != "" {
		q.Set("place", f.PlaceID)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.near {
		q.Set("lng", strconv.FormatFloat(f.Lng, 'f', -1, 64))
		q.Set("lat", strconv.FormatFloat(f.Lat, 'f', -1, 64))
		if f.Distance > 0 {
			q.Set("distance", strconv.FormatFloat(f.Distance, 'f', -1, 64))
		}
	}
	path := "/api/events"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []models.Event
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpcomingEvents lists the next upcoming events (at most ten).
func (c *Client) UpcomingEvents(ctx context.Context) ([]models.Event, error) {
	var out []models.Event
	if err := c.do(ctx, http.MethodGet, "/api/events/upcoming", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Event fetches one event.
func (c *Client) Event(ctx context.Context, id string) (*models.Event, error) {
	var out models.Event
	if err := c.do(ctx, http.MethodGet, "/api/events/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EventInput is the write shape for events.
type EventInput struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PlaceID     string    `json:"placeId"`
	Category    string    `json:"category,omitempty"`
	Date        time.Time `json:"date"`
	Price       float64   `json:"price"`
	Capacity    int       `json:"capacity"`
	Picture     string    `json:"picture,omitempty"`
	Link        string    `json:"link,omitempty"`
}

// CreateEvent creates an event; the caller becomes its organizer.
func (c *Client) CreateEvent(ctx context.Context, in *EventInput) (*models.Event, error) {
	var out models.Event
	if err := c.do(ctx, http.MethodPost, "/api/events", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateEvent updates an event (organizer or admin).
func (c *Client) UpdateEvent(ctx context.Context, id string, in *EventInput) (*models.Event, error) {
	var out models.Event
	if err := c.do(ctx, http.MethodPut, "/api/events/"+url.PathEscape(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteEvent deletes an event (organizer or admin).
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/events/"+url.PathEscape(id), nil, nil)
}

// AttendEvent joins an event. Attending twice fails.
func (c *Client) AttendEvent(ctx context.Context, id string) (*models.Event, error) {
	var out models.Event
	if err := c.do(ctx, http.MethodPost, "/api/events/"+url.PathEscape(id)+"/attend", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSettings updates the caller's own profile and preferences.
func (c *Client) UpdateSettings(ctx context.Context, firstName, lastName string, darkMode bool) (*models.UserPublic, error) {
	body := map[string]interface{}{
		"firstName": firstName,
		"lastName":  lastName,
		"darkMode":  darkMode,
	}
	var out struct {
		User models.UserPublic `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/users/settings", body, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var buf *bytes.Buffer
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewBuffer(b)
	} else {
		buf = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return &APIError{Status: res.StatusCode, Message: "malformed response"}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 || !env.Success {
		return &APIError{Status: res.StatusCode, Message: env.Error}
	}
	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}
