package rest

import (
	"cardparty/internal/service"
	"cardparty/internal/transport/rest/handler"
	"cardparty/internal/transport/rest/middleware"
	"cardparty/internal/transport/ws"
	"net/http"

	"github.com/gorilla/mux"
)

// Container holds every dependency the router needs.
type Container struct {
	AuthService *service.AuthService
	RoomService *service.RoomService
	ScanService *service.ScanService
	WSHandler   *ws.Handler

	CORSAllowedOrigins string
}

// NewRouter creates the API router with all endpoints.
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(c.AuthService)
	roomHandler := handler.NewRoomHandler(c.RoomService)
	scanHandler := handler.NewScanHandler(c.ScanService)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	r.Use(corsMiddleware(c.CORSAllowedOrigins))

	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes: the card-scan entry point and the live socket.
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/scan", scanHandler.Scan).Methods("POST", "OPTIONS")
	v1.HandleFunc("/ws", c.WSHandler.Serve).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Owner routes.
	ownerRoutes := v1.NewRoute().Subrouter()
	ownerRoutes.Use(authMW.RequireOwner)

	ownerRoutes.HandleFunc("/rooms", roomHandler.Create).Methods("POST", "OPTIONS")
	ownerRoutes.HandleFunc("/rooms/{uuid}", roomHandler.Get).Methods("GET", "OPTIONS")
	ownerRoutes.HandleFunc("/rooms/{uuid}/end", roomHandler.End).Methods("POST", "OPTIONS")
	ownerRoutes.HandleFunc("/rooms/{uuid}/data", roomHandler.UpdateData).Methods("PUT", "OPTIONS")
	ownerRoutes.HandleFunc("/rooms/{uuid}/qr", roomHandler.QR).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
