package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"
	"github.com/jusunglee/mtr-progress/internal/logging"
	"github.com/jusunglee/mtr-progress/internal/store"
	"github.com/jusunglee/mtr-progress/pkg/mtr"
)

// Handler handles HTTP requests
type Handler struct {
	client mtr.Client
}

// NewHandler creates a new HTTP handler
func NewHandler(client mtr.Client) *Handler {
	return &Handler{client: client}
}

// RegisterRoutes registers all routes. Route and station names may contain
// "/", so variables are matched against the escaped path and unescaped by
// the handlers.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.UseEncodedPath()
	r.HandleFunc("/", h.handleIndex).Methods("GET")
	r.HandleFunc("/routes", h.handleRoutes).Methods("GET")
	r.HandleFunc("/routes/{route}", h.handleRoute).Methods("GET")
	r.HandleFunc("/progress", h.handleProgress).Methods("GET")
	r.HandleFunc("/stations", h.handleStations).Methods("GET")
	r.HandleFunc("/visited", h.handleVisited).Methods("GET")
	r.HandleFunc("/visited/{station}", h.handleMarkVisited).Methods("POST")
	r.HandleFunc("/refresh", h.handleRefresh).Methods("POST")
}

// Response wraps API responses
type Response struct {
	Data    interface{} `json:"data"`
	Updated string      `json:"updated,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"title":  "mtr-progress",
		"readme": "Visit https://github.com/jusunglee/mtr-progress for more info",
	}
	h.writeJSON(w, http.StatusOK, response)
}

func (h *Handler) handleRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.client.GetLinkedRoutes()
	if err != nil {
		h.writeClientError(w, r, err)
		return
	}
	h.writeData(w, routes)
}

func (h *Handler) handleRoute(w http.ResponseWriter, r *http.Request) {
	route, ok := h.pathVar(w, r, "route")
	if !ok {
		return
	}

	resp, err := h.client.GetRoute(route)
	if err != nil {
		h.writeClientError(w, r, err)
		return
	}
	resp.LastUpdate = h.updated()
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	report, err := h.client.GetProgressReport()
	if err != nil {
		h.writeClientError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handleStations(w http.ResponseWriter, r *http.Request) {
	stations, err := h.client.SearchStations(r.URL.Query().Get("q"))
	if err != nil {
		h.writeClientError(w, r, err)
		return
	}
	if stations == nil {
		stations = []string{}
	}
	h.writeData(w, stations)
}

func (h *Handler) handleVisited(w http.ResponseWriter, r *http.Request) {
	h.writeData(w, h.client.GetVisited())
}

func (h *Handler) handleMarkVisited(w http.ResponseWriter, r *http.Request) {
	station, ok := h.pathVar(w, r, "station")
	if !ok {
		return
	}

	overall, err := h.client.MarkVisited(r.Context(), station)
	if err != nil {
		h.writeClientError(w, r, err)
		return
	}
	h.writeData(w, overall)
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Refresh(r.Context()); err != nil {
		logging.LogError(logging.FromContext(r.Context()), "map refresh failed", err)
		h.writeError(w, err.Error(), http.StatusBadGateway)
		return
	}

	total, err := h.client.GetTotalStationCount()
	if err != nil {
		h.writeClientError(w, r, err)
		return
	}
	h.writeData(w, map[string]int{"stations": total})
}

func (h *Handler) pathVar(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	value, err := url.PathUnescape(mux.Vars(r)[key])
	if err != nil {
		h.writeError(w, "invalid "+key+": "+err.Error(), http.StatusBadRequest)
		return "", false
	}
	return value, true
}

func (h *Handler) updated() string {
	last := h.client.GetLastUpdate()
	if last.IsZero() {
		return ""
	}
	return last.Format(time.RFC3339)
}

func (h *Handler) writeData(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusOK, Response{
		Data:    data,
		Updated: h.updated(),
	})
}

func (h *Handler) writeClientError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrRouteNotFound), errors.Is(err, store.ErrStationNotFound):
		h.writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, store.ErrNoTopology):
		h.writeError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		logging.LogError(logging.FromContext(r.Context()), "request failed", err)
		h.writeError(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) writeError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, ErrorResponse{Error: message})
}
