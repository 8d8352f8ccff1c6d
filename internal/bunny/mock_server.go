// SPDX-License-Identifier: MIT

package bunny

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MockHost emulates both external hosts for tests: the stream host
// (placeholder creation, video upload, metadata sync) and the object host
// (thumbnail upload). Endpoints can be forced to fail with a fixed status.
type MockHost struct {
	*httptest.Server

	mu         sync.RWMutex
	videos     map[string]mockVideo // guid -> state
	thumbnails map[string][]byte    // object name -> bytes
	failStatus map[string]int       // endpoint -> forced HTTP status
	accessKey  string
}

type mockVideo struct {
	Title       string
	Description string
	Bytes       []byte
}

// NewMockHost starts a mock host requiring the given access key.
func NewMockHost(accessKey string) *MockHost {
	m := &MockHost{
		videos:     make(map[string]mockVideo),
		thumbnails: make(map[string][]byte),
		failStatus: make(map[string]int),
		accessKey:  accessKey,
	}
	m.Server = httptest.NewServer(http.HandlerFunc(m.route))
	return m
}

// FailNext forces the named endpoint ("create", "upload", "update",
// "thumbnail") to respond with status until cleared with status 0.
func (m *MockHost) FailNext(endpoint string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if status == 0 {
		delete(m.failStatus, endpoint)
		return
	}
	m.failStatus[endpoint] = status
}

// Video returns the recorded state for a guid.
func (m *MockHost) Video(guid string) (title, description string, size int, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.videos[guid]
	return v.Title, v.Description, len(v.Bytes), ok
}

// Thumbnail returns the uploaded bytes for an object name.
func (m *MockHost) Thumbnail(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.thumbnails[name]
	return b, ok
}

// ThumbnailCount reports how many thumbnail objects were stored.
func (m *MockHost) ThumbnailCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.thumbnails)
}

func (m *MockHost) route(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(AccessKeyHeader) != m.accessKey {
		http.Error(w, "missing or invalid access key", http.StatusUnauthorized)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.Method == http.MethodPut && len(parts) == 2 && parts[0] == thumbnailPrefix:
		m.handleThumbnailUpload(w, r, parts[1])
	case len(parts) == 2 && parts[1] == "videos" && r.Method == http.MethodPost:
		m.handleCreate(w)
	case len(parts) == 3 && parts[1] == "videos" && r.Method == http.MethodPut:
		m.handleUpload(w, r, parts[2])
	case len(parts) == 3 && parts[1] == "videos" && r.Method == http.MethodPost:
		m.handleUpdate(w, r, parts[2])
	default:
		http.NotFound(w, r)
	}
}

func (m *MockHost) failed(w http.ResponseWriter, endpoint string) bool {
	m.mu.RLock()
	status := m.failStatus[endpoint]
	m.mu.RUnlock()
	if status == 0 {
		return false
	}
	http.Error(w, "forced failure", status)
	return true
}

func (m *MockHost) handleCreate(w http.ResponseWriter) {
	if m.failed(w, "create") {
		return
	}
	guid := uuid.NewString()

	m.mu.Lock()
	m.videos[guid] = mockVideo{Title: "Temporary Title"}
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"guid": guid})
}

func (m *MockHost) handleUpload(w http.ResponseWriter, r *http.Request, guid string) {
	if m.failed(w, "upload") {
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body", http.StatusInternalServerError)
		return
	}

	m.mu.Lock()
	v, ok := m.videos[guid]
	if ok {
		v.Bytes = body
		m.videos[guid] = v
	}
	m.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (m *MockHost) handleUpdate(w http.ResponseWriter, r *http.Request, guid string) {
	if m.failed(w, "update") {
		return
	}
	var p struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "decode body", http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	v, ok := m.videos[guid]
	if ok {
		v.Title = p.Title
		v.Description = p.Description
		m.videos[guid] = v
	}
	m.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (m *MockHost) handleThumbnailUpload(w http.ResponseWriter, r *http.Request, name string) {
	if m.failed(w, "thumbnail") {
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body", http.StatusInternalServerError)
		return
	}

	m.mu.Lock()
	m.thumbnails[name] = body
	m.mu.Unlock()

	w.WriteHeader(http.StatusCreated)
}
