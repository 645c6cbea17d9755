// Package api serves the read-only query surface over the tracker
// store, plus subscriber administration.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/algoldenberg/AirPlaneTracker/internal/model"
	"github.com/algoldenberg/AirPlaneTracker/internal/notify"
)

// Repository is the store surface the API reads from.
type Repository interface {
	ReadLive(ctx context.Context) (flights []model.FlightObservation, updatedAt string, ok bool, err error)
	History(ctx context.Context, now time.Time, window time.Duration) ([]model.HistoryRecord, error)
	AddSubscriber(ctx context.Context, subscriber string) error
	RemoveSubscriber(ctx context.Context, subscriber string) error
	Subscribers(ctx context.Context) ([]string, error)
}

// Handlers wraps dependencies for the HTTP handlers.
type Handlers struct {
	store     Repository
	retention time.Duration
	now       func() time.Time
}

// NewHandlers creates the API handlers over the given store.
func NewHandlers(store Repository, retention time.Duration) *Handlers {
	return &Handlers{store: store, retention: retention, now: time.Now}
}

// flightsResponse is the GET /flights body.
type flightsResponse struct {
	Count     int                       `json:"count"`
	Flights   []model.FlightObservation `json:"flights"`
	UpdatedAt *string                   `json:"updated_at"`
}

// GetFlights returns the current landing snapshot.
func (h *Handlers) GetFlights(w http.ResponseWriter, r *http.Request) {
	flights, updatedAt, ok, err := h.store.ReadLive(r.Context())
	if err != nil {
		slog.Error("Failed to read live snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to read snapshot")
		return
	}

	resp := flightsResponse{Count: 0, Flights: []model.FlightObservation{}}
	if ok {
		resp.Count = len(flights)
		resp.Flights = flights
		if updatedAt != "" {
			resp.UpdatedAt = &updatedAt
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// historyResponse is the GET /flights/history body.
type historyResponse struct {
	Count   int                   `json:"count"`
	Flights []model.HistoryRecord `json:"flights"`
}

// GetHistory returns the history records inside the window, newest
// first. The optional ?hours= parameter narrows the window; it is
// capped at the retention window.
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	window := h.retention
	if hoursStr := r.URL.Query().Get("hours"); hoursStr != "" {
		hours, err := strconv.Atoi(hoursStr)
		if err != nil || hours <= 0 {
			writeError(w, http.StatusBadRequest, "hours must be a positive integer")
			return
		}
		window = time.Duration(hours) * time.Hour
	}

	records, err := h.store.History(r.Context(), h.now().UTC(), window)
	if err != nil {
		slog.Error("Failed to read history", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to read history")
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{Count: len(records), Flights: records})
}

// GetFlight returns one flight from the current snapshot by id.
func (h *Handlers) GetFlight(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	flights, _, ok, err := h.store.ReadLive(r.Context())
	if err != nil {
		slog.Error("Failed to read live snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to read snapshot")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "No data yet")
		return
	}

	for _, f := range flights {
		if f.ID == id {
			writeJSON(w, http.StatusOK, f)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Flight not found")
}

// statusResponse is the GET /status body.
type statusResponse struct {
	Status       string  `json:"status"`
	FlightsCount int     `json:"flights_count"`
	UpdatedAt    *string `json:"updated_at"`
}

// GetStatus returns service health and snapshot freshness.
func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	flights, updatedAt, ok, err := h.store.ReadLive(r.Context())
	if err != nil {
		slog.Error("Status check failed to read snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to read snapshot")
		return
	}

	resp := statusResponse{Status: "ok"}
	if ok {
		resp.FlightsCount = len(flights)
		if updatedAt != "" {
			resp.UpdatedAt = &updatedAt
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// subscriberRequest is the POST /api/v1/subscribers body.
type subscriberRequest struct {
	Subscriber string `json:"subscriber"`
}

// AddSubscriber adds a "channel:target" subscriber entry.
func (h *Handlers) AddSubscriber(w http.ResponseWriter, r *http.Request) {
	var req subscriberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sub, err := notify.ParseSubscriber(req.Subscriber)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.AddSubscriber(r.Context(), sub.String()); err != nil {
		slog.Error("Failed to add subscriber", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to add subscriber")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"subscriber": sub.String()})
}

// RemoveSubscriber removes a subscriber entry.
func (h *Handlers) RemoveSubscriber(w http.ResponseWriter, r *http.Request) {
	entry := r.URL.Query().Get("subscriber")
	if entry == "" {
		writeError(w, http.StatusBadRequest, "subscriber query parameter is required")
		return
	}

	sub, err := notify.ParseSubscriber(entry)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.RemoveSubscriber(r.Context(), sub.String()); err != nil {
		slog.Error("Failed to remove subscriber", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to remove subscriber")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
