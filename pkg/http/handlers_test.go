package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinylink/pkg/logging"
	"tinylink/pkg/service"
	"tinylink/pkg/storage"
)

type mockLinkStore struct {
	links  map[string]*storage.Link
	order  []string
	nextID int64
	incErr error
}

func newMockLinkStore() *mockLinkStore {
	return &mockLinkStore{links: make(map[string]*storage.Link)}
}

func (m *mockLinkStore) Init(ctx context.Context) error { return nil }

func (m *mockLinkStore) Create(ctx context.Context, code, targetURL string) (*storage.Link, error) {
	if _, exists := m.links[code]; exists {
		return nil, storage.ErrDuplicateCode
	}
	m.nextID++
	link := &storage.Link{
		ID:        m.nextID,
		Code:      code,
		TargetURL: targetURL,
		CreatedAt: time.Now(),
	}
	m.links[code] = link
	m.order = append(m.order, code)
	return link, nil
}

func (m *mockLinkStore) GetAll(ctx context.Context) ([]storage.Link, error) {
	links := make([]storage.Link, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		links = append(links, *m.links[m.order[i]])
	}
	return links, nil
}

func (m *mockLinkStore) GetByCode(ctx context.Context, code string) (*storage.Link, error) {
	if link, exists := m.links[code]; exists {
		return link, nil
	}
	return nil, nil
}

func (m *mockLinkStore) IncrementClicks(ctx context.Context, code string) error {
	if m.incErr != nil {
		return m.incErr
	}
	if link, exists := m.links[code]; exists {
		link.Clicks++
		now := time.Now()
		link.LastClicked = &now
	}
	return nil
}

func (m *mockLinkStore) Delete(ctx context.Context, code string) (bool, error) {
	if _, exists := m.links[code]; !exists {
		return false, nil
	}
	delete(m.links, code)
	for i, c := range m.order {
		if c == code {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func newTestRouter(store storage.LinkStore) *chi.Mux {
	logger := logging.New(logging.Config{Level: "error", Output: io.Discard})
	svc := service.NewLinkService(store, logger)
	handler := NewHandler(svc, logger)
	r := chi.NewRouter()
	SetupRoutes(r, handler, logger)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateLinkEndpoint(t *testing.T) {
	router := newTestRouter(newMockLinkStore())

	rec := doJSON(t, router, http.MethodPost, "/api/links", map[string]string{
		"url":        "https://example.com",
		"customCode": "mylink1",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Success bool         `json:"success"`
		Link    storage.Link `json:"link"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "mylink1", resp.Link.Code)
	assert.Equal(t, "https://example.com", resp.Link.TargetURL)
	assert.Equal(t, 0, resp.Link.Clicks)
	assert.Nil(t, resp.Link.LastClicked)
}

func TestCreateLinkBadInput(t *testing.T) {
	router := newTestRouter(newMockLinkStore())

	rec := doJSON(t, router, http.MethodPost, "/api/links", map[string]string{
		"url":        "https://example.com",
		"customCode": "abc12",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Custom code must be 6-8 alphanumeric characters", resp.Error)
}

func TestCreateLinkMalformedBody(t *testing.T) {
	router := newTestRouter(newMockLinkStore())

	req := httptest.NewRequest(http.MethodPost, "/api/links", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateLinkConflict(t *testing.T) {
	router := newTestRouter(newMockLinkStore())

	rec := doJSON(t, router, http.MethodPost, "/api/links", map[string]string{
		"url": "https://example.com", "customCode": "mylink1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/links", map[string]string{
		"url": "https://other.example.com", "customCode": "mylink1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// first link unaffected
	rec = doJSON(t, router, http.MethodGet, "/api/links/mylink1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Link storage.Link `json:"link"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://example.com", resp.Link.TargetURL)
}

func TestRedirectCountsClick(t *testing.T) {
	router := newTestRouter(newMockLinkStore())

	rec := doJSON(t, router, http.MethodPost, "/api/links", map[string]string{
		"url": "https://example.com", "customCode": "mylink1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/mylink1", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://example.com", rec.Header().Get("Location"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec = doJSON(t, router, http.MethodGet, "/api/links/mylink1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Link storage.Link `json:"link"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Link.Clicks)
	assert.NotNil(t, resp.Link.LastClicked)
}

func TestRedirectUnknownCode(t *testing.T) {
	router := newTestRouter(newMockLinkStore())

	rec := doJSON(t, router, http.MethodGet, "/nothere1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Link not found", resp.Error)
}

func TestRedirectReservedCodes(t *testing.T) {
	store := newMockLinkStore()
	router := newTestRouter(store)

	// even with a colliding row present, reserved names never resolve
	_, err := store.Create(context.Background(), "healthz", "https://example.com")
	require.NoError(t, err)

	for _, path := range []string{"/api", "/code", "/_next"} {
		rec := doJSON(t, router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, "path %s", path)
		assert.Empty(t, rec.Header().Get("Location"), "path %s", path)
	}

	// /healthz stays the health check, never a redirect
	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
}

func TestRedirectSurvivesClickFailure(t *testing.T) {
	store := newMockLinkStore()
	store.incErr = errors.New("connection refused")
	router := newTestRouter(store)

	_, err := store.Create(context.Background(), "mylink1", "https://example.com")
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodGet, "/mylink1", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://example.com", rec.Header().Get("Location"))
}

func TestListLinks(t *testing.T) {
	router := newTestRouter(newMockLinkStore())

	rec := doJSON(t, router, http.MethodGet, "/api/links", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"links":[]}`, rec.Body.String())

	for _, code := range []string{"first01", "second02"} {
		rec = doJSON(t, router, http.MethodPost, "/api/links", map[string]string{
			"url": "https://example.com/" + code, "customCode": code,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	// repeated calls with no mutations between them return identical sets
	first := doJSON(t, router, http.MethodGet, "/api/links", nil)
	second := doJSON(t, router, http.MethodGet, "/api/links", nil)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	var resp struct {
		Links []storage.Link `json:"links"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &resp))
	require.Len(t, resp.Links, 2)
	assert.Equal(t, "second02", resp.Links[0].Code)
}

func TestDeleteLinkEndpoint(t *testing.T) {
	router := newTestRouter(newMockLinkStore())

	rec := doJSON(t, router, http.MethodDelete, "/api/links/nothere1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/links", map[string]string{
		"url": "https://example.com", "customCode": "mylink1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/links/mylink1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/links/mylink1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(newMockLinkStore())

	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
