package rest

import (
	"casepilot/internal/service"
	"casepilot/internal/transport/rest/handler"
	"casepilot/internal/transport/rest/middleware"
	"casepilot/internal/transport/ws"
	"net/http"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService      *service.AuthService
	DraftService     *service.DraftService
	EvaluatorService *service.EvaluatorService
	CaseService      *service.CaseService

	// AllowedOrigins is the CORS allow list, "*" by default
	AllowedOrigins string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	draftHandler := handler.NewDraftHandler(c.DraftService)
	evaluateHandler := handler.NewEvaluateHandler(c.EvaluatorService)
	caseHandler := handler.NewCaseHandler(c.CaseService)
	wsHandler := ws.NewHandler(c.EvaluatorService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.AllowedOrigins))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes: the intake form needs no account
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/draft/create", draftHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/draft/save", draftHandler.Save).Methods("PUT", "OPTIONS")
	v1.HandleFunc("/draft/resume/{token}", draftHandler.Resume).Methods("GET", "OPTIONS")
	v1.HandleFunc("/draft/send-resume-link", draftHandler.SendResumeLink).Methods("POST", "OPTIONS")
	v1.HandleFunc("/draft/finalize", draftHandler.Finalize).Methods("POST", "OPTIONS")
	v1.HandleFunc("/draft/{draftId}", draftHandler.Abandon).Methods("DELETE", "OPTIONS")
	v1.HandleFunc("/evaluate", evaluateHandler.Evaluate).Methods("POST", "OPTIONS")

	// WebSocket route for live evaluation while typing
	v1.HandleFunc("/ws/evaluate", wsHandler.EvaluateWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Consultant dashboard routes (require auth)
	consultantRoutes := v1.NewRoute().Subrouter()
	consultantRoutes.Use(authMW.RequireConsultant)

	consultantRoutes.HandleFunc("/drafts", draftHandler.ListOpen).Methods("GET", "OPTIONS")
	consultantRoutes.HandleFunc("/cases", caseHandler.List).Methods("GET", "OPTIONS")
	consultantRoutes.HandleFunc("/cases/{caseId}", caseHandler.Get).Methods("GET", "OPTIONS")
	consultantRoutes.HandleFunc("/cases/{caseId}/resend", caseHandler.Resend).Methods("POST", "OPTIONS")

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
