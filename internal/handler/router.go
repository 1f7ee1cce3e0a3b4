package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bhavnacorp/assist/internal/config"
	queryHandler "github.com/bhavnacorp/assist/internal/handler/query"
	"github.com/bhavnacorp/assist/internal/handler/stream"
	widgetHandler "github.com/bhavnacorp/assist/internal/handler/widget"
	middlewarePkg "github.com/bhavnacorp/assist/internal/middleware"
	"github.com/bhavnacorp/assist/internal/service/ai"
	"github.com/bhavnacorp/assist/internal/service/history"
	widgetService "github.com/bhavnacorp/assist/internal/service/widget"
	"github.com/bhavnacorp/assist/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(widgetSvc *widgetService.Service, aiSvc *ai.Service, historyStore *history.Store, corsCfg config.CORSConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(corsCfg.Origins))

	// A nil *ai.Service must stay a nil interface, or the handlers would
	// call through it.
	var answerer queryHandler.Answerer
	var streamHandler *stream.Handler
	if aiSvc != nil {
		answerer = aiSvc
		streamHandler = stream.New(aiSvc, historyStore)
	}

	wh := widgetHandler.New(widgetSvc)
	wsHandler := widgetHandler.NewWebSocketHandler(widgetSvc)
	qh := queryHandler.New(answerer, historyStore)

	r.Get("/", handleRoot)
	r.Get("/health", handleHealth)

	r.Route("/api", func(api chi.Router) {
		wh.RegisterRoutes(api)
		wsHandler.RegisterWebSocketRoutes(api)
		qh.RegisterRoutes(api)

		api.Get("/stream", func(w http.ResponseWriter, r *http.Request) {
			message := r.URL.Query().Get("message")

			if streamHandler == nil {
				utils.RespondError(w, http.StatusServiceUnavailable, "ai streaming unavailable")
				return
			}
			if message == "" {
				utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
				return
			}

			if err := streamHandler.HandleStreamRequest(r.Context(), w, message); err != nil {
				log.Printf("[stream] error handling request: %v", err)
			}
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"version":   config.Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"message": "Bhavna Corp Assist API",
		"version": config.Version,
		"health":  "/health",
	})
}
