package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	adminHandler "github.com/insureassist/backend/internal/handler/admin"
	authHandler "github.com/insureassist/backend/internal/handler/auth"
	checkoutHandler "github.com/insureassist/backend/internal/handler/checkout"
	conversationHandler "github.com/insureassist/backend/internal/handler/conversation"
	policyHandler "github.com/insureassist/backend/internal/handler/policy"
	"github.com/insureassist/backend/internal/handler/stream"
	"github.com/insureassist/backend/internal/model/user"
	checkoutService "github.com/insureassist/backend/internal/service/checkout"
	conversationService "github.com/insureassist/backend/internal/service/conversation"
	"github.com/insureassist/backend/internal/service/recommend"
	"github.com/insureassist/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(users user.Store, convSvc *conversationService.Service, engine *recommend.Engine, gateway *checkoutService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	streamHandler := stream.New(convSvc)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		authHandler.New(users).RegisterRoutes(api)
		adminHandler.New(users).RegisterRoutes(api)
		policyHandler.New(engine).RegisterRoutes(api)
		checkoutHandler.New(gateway, convSvc).RegisterRoutes(api)

		ch := conversationHandler.New(convSvc)
		ch.RegisterRoutes(api)
		conversationHandler.NewWebSocketHandler(convSvc).RegisterWebSocketRoutes(api)

		// Live event stream for the chat UI.
		api.Get("/conversation/{sessionID}/stream", func(w http.ResponseWriter, r *http.Request) {
			sessionID := chi.URLParam(r, "sessionID")
			if err := streamHandler.HandleStreamRequest(r.Context(), w, sessionID); err != nil {
				log.Printf("[stream] error handling request: %v", err)
				utils.RespondError(w, http.StatusNotFound, err.Error())
			}
		})
	})

	return r
}
