// Package devserver serves the dispatcher over plain HTTP for local runs,
// translating each request into the API Gateway proxy event Lambda would see.
package devserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// maxBody caps the request bodies the server reads
const maxBody = 10 << 20

// Backend is what the server fronts
type Backend interface {
	Route(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)
	Handle(context.Context, json.RawMessage) (events.APIGatewayProxyResponse, error)
}

// Handler holds the routes
type Handler struct {
	backend Backend
	log     zerolog.Logger
}

// NewHandler returns a new Handler
func NewHandler(b Backend, log zerolog.Logger) *Handler {
	return &Handler{backend: b, log: log}
}

// Router builds the mux with logging attached
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	r.Use(h.logRequests)
	return r
}

// RegisterRoutes adds the server's routes to r
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/invoke", h.Invoke).Methods(http.MethodPost)
	r.HandleFunc("/objects", h.Objects)
	r.HandleFunc("/objects/{key:.+}", h.Objects)
}

// Health answers OK
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Invoke passes the body to the dispatcher as a raw event
func (h *Handler) Invoke(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(body) == 0 {
		body = []byte("{}")
	}
	res, _ := h.backend.Handle(r.Context(), json.RawMessage(body))
	write(w, res)
}

// Objects passes the request to the dispatcher's REST router
func (h *Handler) Objects(w http.ResponseWriter, r *http.Request) {
	req, err := ProxyRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, _ := h.backend.Route(r.Context(), req)
	write(w, res)
}

// ProxyRequest converts r into an API Gateway proxy request. Bodies that are
// not valid UTF-8 are base64 encoded.
func ProxyRequest(r *http.Request) (events.APIGatewayProxyRequest, error) {

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return events.APIGatewayProxyRequest{}, err
	}

	req := events.APIGatewayProxyRequest{
		Resource:              "/objects/{key+}",
		Path:                  r.URL.Path,
		HTTPMethod:            r.Method,
		Headers:               map[string]string{},
		QueryStringParameters: map[string]string{},
		PathParameters:        map[string]string{},
		Body:                  string(raw),
	}
	if !utf8.Valid(raw) {
		req.Body = base64.StdEncoding.EncodeToString(raw)
		req.IsBase64Encoded = true
	}

	for k := range r.Header {
		req.Headers[k] = r.Header.Get(k)
	}
	for k := range r.URL.Query() {
		req.QueryStringParameters[k] = r.URL.Query().Get(k)
	}
	if key, ok := mux.Vars(r)["key"]; ok {
		req.PathParameters["key"] = key
	}
	return req, nil
}

func write(w http.ResponseWriter, res events.APIGatewayProxyResponse) {
	for k, v := range res.Headers {
		w.Header().Set(k, v)
	}
	status := res.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	io.WriteString(w, res.Body)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (s *statusWriter) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		path := r.URL.Path
		if raw := r.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}
		h.log.Info().
			Str("method", r.Method).
			Str("path", path).
			Int("status", sw.status).
			Dur("latency", time.Since(start)).
			Msg("request processed")
	})
}
