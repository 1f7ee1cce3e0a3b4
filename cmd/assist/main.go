package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bhavnacorp/assist/internal/config"
	"github.com/bhavnacorp/assist/internal/handler"
	"github.com/bhavnacorp/assist/internal/service/ai"
	"github.com/bhavnacorp/assist/internal/service/history"
	widgetService "github.com/bhavnacorp/assist/internal/service/widget"
	"github.com/bhavnacorp/assist/internal/transport"
	"github.com/bhavnacorp/assist/internal/widget"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// The widget's answer client; by default it points back at this
	// service's own query wrapper.
	answerClient := transport.NewClient(transport.Config{
		AnswerURL: cfg.Widget.AnswerURL,
		HealthURL: cfg.Widget.HealthURL,
	})

	widgetSvc := widgetService.NewService(answerClient, widget.Config{
		Greeting: cfg.Widget.Greeting,
		Fallback: cfg.Widget.Fallback,
	})

	historyStore := history.NewStore()

	// Initialize AI service
	var aiSvc *ai.Service
	if cfg.AI.Enabled() {
		aiSvc, err = ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without query endpoints - check Ark model environment variables")
		} else {
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("Ark credentials not configured, query endpoints will report unavailable")
	}

	router := handler.NewRouter(widgetSvc, aiSvc, historyStore, cfg.CORS)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Assist gateway listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
