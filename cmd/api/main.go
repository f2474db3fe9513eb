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

	"github.com/insureassist/backend/internal/config"
	"github.com/insureassist/backend/internal/handler"
	"github.com/insureassist/backend/internal/model/user"
	"github.com/insureassist/backend/internal/service/advisor"
	checkoutService "github.com/insureassist/backend/internal/service/checkout"
	conversationService "github.com/insureassist/backend/internal/service/conversation"
	"github.com/insureassist/backend/internal/service/recommend"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	users, err := openUserStore(cfg.Storage)
	if err != nil {
		log.Fatalf("failed to open user store: %v", err)
	}

	engine := recommend.NewEngine()

	convOpts := []conversationService.Option{
		conversationService.WithDelays(
			cfg.Conversation.ReplyDelay,
			cfg.Conversation.ReplyJitter,
			cfg.Conversation.GenDelay,
		),
	}

	if cfg.Advisor.Enabled() {
		advisorSvc, err := advisor.NewService(ctx, cfg.Advisor)
		if err != nil {
			log.Printf("warning: failed to initialize advisor service: %v", err)
			log.Println("continuing with scripted replies only")
		} else {
			log.Println("advisor service initialized successfully")
			convOpts = append(convOpts, conversationService.WithAdvisor(advisorSvc))
		}
	} else {
		log.Println("advisor credentials not configured, using scripted replies")
	}

	convSvc := conversationService.NewService(engine, convOpts...)
	gateway := checkoutService.NewService(cfg.Checkout.ProcessingDelay)

	router := handler.NewRouter(users, convSvc, engine, gateway)

	startServer(ctx, cfg.Server, router)
}

func openUserStore(cfg config.StorageConfig) (user.Store, error) {
	if cfg.UsersFile == "" {
		log.Println("USERS_FILE not set, keeping accounts in memory")
		return user.NewMemoryStore(nil), nil
	}
	log.Printf("user store backed by %s", cfg.UsersFile)
	return user.OpenFileStore(cfg.UsersFile)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("InsureAssist backend listening on %s", serverCfg.Addr)
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
