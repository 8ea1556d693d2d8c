package ipc

import (
	"context"
	"net"
	"net/http"
	"time"
)

// Server wraps an HTTP server with engine-specific routing.
type Server struct {
	httpServer *http.Server
}

// NewServer creates a Server that binds to the given address.
func NewServer(h *Handler, listenAddr string) *Server {
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           Routes(h),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{
		httpServer: srv,
	}
}

// Routes returns the API mux wrapped in the CORS middleware.
func Routes(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Board and missions.
	mux.HandleFunc("POST /api/v1/board", h.GenerateBoard)
	mux.HandleFunc("GET /api/v1/missions", h.ListMissions)
	mux.HandleFunc("GET /api/v1/missions/{id}", h.GetMission)
	mux.HandleFunc("POST /api/v1/missions/{id}/accept", h.AcceptMission)
	mux.HandleFunc("POST /api/v1/missions/{id}/interruption/resolve", h.ResolveInterruption)
	mux.HandleFunc("DELETE /api/v1/missions/{id}", h.PruneMission)

	// Lane graph.
	mux.HandleFunc("GET /api/v1/locations", h.ListLocations)
	mux.HandleFunc("GET /api/v1/locations/{id}", h.GetLocation)

	// Fleet.
	mux.HandleFunc("GET /api/v1/resources", h.ListResources)
	mux.HandleFunc("POST /api/v1/resources/{id}/damage", h.DamageResource)
	mux.HandleFunc("POST /api/v1/resources/{id}/repair", h.RepairResource)
	mux.HandleFunc("GET /api/v1/resources/{id}/audit", h.ListAudit)

	// Journal.
	mux.HandleFunc("GET /api/v1/events", h.ListEvents)
	mux.HandleFunc("GET /api/v1/events/stream", h.StreamEvents)

	// Player.
	mux.HandleFunc("GET /api/v1/player", h.GetPlayer)
	mux.HandleFunc("GET /api/v1/player/ledger", h.GetLedger)

	return corsMiddleware(mux)
}

// FormatListenURL turns a listen address into a URL a client can dial.
// Wildcard hosts are replaced with the loopback address.
func FormatListenURL(listenAddr string) string {
	host, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return "http://" + listenAddr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// Start begins listening for HTTP connections. Blocks until the server stops.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// corsMiddleware adds CORS headers for local game clients.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
