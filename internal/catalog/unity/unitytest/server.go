// Package unitytest provides an in-process fake of the Unity Catalog REST API for tests.
package unitytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const apiPrefix = "/api/2.1/unity-catalog"

// Server is a fake Unity Catalog server holding its state in memory
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	token       string
	credentials map[string]string
	objects     map[string]map[string]map[string]any
	failures    map[string]int
	posts       []string
}

// Option configures a Server
type Option func(*Server)

// WithToken makes the server reject requests without this bearer token
func WithToken(token string) Option {
	return func(s *Server) {
		s.token = token
	}
}

// WithCredential registers a storage credential
func WithCredential(name string) Option {
	return func(s *Server) {
		s.credentials[name] = uuid.NewString()
	}
}

// WithObject seeds an existing object in a collection such as "schemas"
func WithObject(collection, fullName string) Option {
	return func(s *Server) {
		s.put(collection, fullName, map[string]any{"full_name": fullName})
	}
}

// WithFailure makes every request on collection/fullName answer with status
func WithFailure(collection, fullName string, status int) Option {
	return func(s *Server) {
		s.failures[collection+"/"+fullName] = status
	}
}

// NewServer starts a fake server; it is closed when the test ends
func NewServer(t interface{ Cleanup(func()) }, opts ...Option) *Server {
	s := &Server{
		credentials: make(map[string]string),
		objects:     make(map[string]map[string]map[string]any),
		failures:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.Server = httptest.NewServer(s.routes())
	s.Config.SetKeepAlivesEnabled(false)
	t.Cleanup(s.Close)
	return s
}

// Posts returns every create request received, in order, as "collection/full_name"
func (s *Server) Posts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.posts...)
}

// Object returns a stored object
func (s *Server) Object(collection, fullName string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[collection][fullName]
	return obj, ok
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.authenticate)

	r.Route(apiPrefix, func(r chi.Router) {
		r.Get("/storage-credentials/{name}", s.getCredential)
		r.Get("/{collection}/{name}", s.getObject)
		r.Post("/{collection}", s.createObject)
	})
	return r
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) getCredential(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")

	s.mu.Lock()
	id, ok := s.credentials[name]
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "RESOURCE_DOES_NOT_EXIST", "storage credential not found: "+name)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "name": name})
}

func (s *Server) getObject(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	name := urlParam(r, "name")

	s.mu.Lock()
	status, failing := s.failures[collection+"/"+name]
	obj, ok := s.objects[collection][name]
	s.mu.Unlock()

	switch {
	case failing:
		writeError(w, status, "INTERNAL_ERROR", "injected failure")
	case !ok:
		writeError(w, http.StatusNotFound, "RESOURCE_DOES_NOT_EXIST", collection+" not found: "+name)
	default:
		writeJSON(w, http.StatusOK, obj)
	}
}

func (s *Server) createObject(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PARAMETER_VALUE", "malformed request body")
		return
	}
	fullName, ok := fullName(collection, body)
	if !ok {
		writeError(w, http.StatusNotFound, "ENDPOINT_NOT_FOUND", "unknown collection "+collection)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append(s.posts, collection+"/"+fullName)

	if status, failing := s.failures[collection+"/"+fullName]; failing {
		writeError(w, status, "INTERNAL_ERROR", "injected failure")
		return
	}
	if _, exists := s.objects[collection][fullName]; exists {
		writeError(w, http.StatusConflict, "RESOURCE_ALREADY_EXISTS", collection+" already exists: "+fullName)
		return
	}
	if collection == "external-locations" {
		if _, known := s.credentials[str(body["credential_name"])]; !known {
			writeError(w, http.StatusNotFound, "RESOURCE_DOES_NOT_EXIST", "storage credential not found")
			return
		}
	}

	body["full_name"] = fullName
	s.putLocked(collection, fullName, body)
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) put(collection, name string, obj map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putLocked(collection, name, obj)
}

func (s *Server) putLocked(collection, name string, obj map[string]any) {
	if s.objects[collection] == nil {
		s.objects[collection] = make(map[string]map[string]any)
	}
	s.objects[collection][name] = obj
}

// fullName derives the identifier the API uses for GET requests
func fullName(collection string, body map[string]any) (string, bool) {
	name := str(body["name"])
	switch collection {
	case "catalogs", "external-locations":
		return name, true
	case "schemas":
		return str(body["catalog_name"]) + "." + name, true
	case "volumes":
		return strings.Join([]string{str(body["catalog_name"]), str(body["schema_name"]), name}, "."), true
	default:
		return "", false
	}
}

func urlParam(r *http.Request, key string) string {
	value := chi.URLParam(r, key)
	if decoded, err := url.PathUnescape(value); err == nil {
		return decoded
	}
	return value
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error_code": code, "message": message})
}
