package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/algoldenberg/AirPlaneTracker/internal/metrics"
)

// NewRouter builds the HTTP router: the read-only query surface, the
// subscriber admin endpoints, and Prometheus metrics.
func NewRouter(h *Handlers) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/flights", h.GetFlights).Methods(http.MethodGet)
	r.HandleFunc("/flights/history", h.GetHistory).Methods(http.MethodGet)
	r.HandleFunc("/flights/{id}", h.GetFlight).Methods(http.MethodGet)
	r.HandleFunc("/status", h.GetStatus).Methods(http.MethodGet)

	r.HandleFunc("/api/v1/subscribers", h.AddSubscriber).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/subscribers", h.RemoveSubscriber).Methods(http.MethodDelete)

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	r.Use(corsMiddleware)
	return metrics.Middleware(r)
}

// corsMiddleware mirrors the permissive read-only CORS policy of the
// public API: any origin, GET-oriented methods.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
