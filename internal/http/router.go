package httpserver

import (
	"net/http"

	"parkmap/internal/http/handlers"
)

// Routes groups handlers and middleware.
type Routes struct {
	Lots   *handlers.LotsHandlers
	Watch  http.HandlerFunc
	Health http.HandlerFunc
	Auth   func(http.Handler) http.Handler
}

// NewRouter registers endpoints.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/health", method(http.MethodGet, routes.Health))

	mux.Handle("/api/lots", method(http.MethodGet, routes.Lots.List))
	mux.Handle("/api/lots/markers", method(http.MethodGet, routes.Lots.Markers))
	mux.Handle("/api/stats", method(http.MethodGet, routes.Lots.Stats))
	mux.Handle("/api/filter", method(http.MethodPost, routes.Lots.Filter))

	refresh := http.Handler(method(http.MethodPost, routes.Lots.Refresh))
	if routes.Auth != nil {
		refresh = routes.Auth(refresh)
	}
	mux.Handle("/api/refresh", refresh)

	if routes.Watch != nil {
		mux.Handle("/api/lots/watch", method(http.MethodGet, routes.Watch))
	}

	return mux
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
