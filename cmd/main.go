package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	httpctx "github.com/qivlabs/qiv-auth/internal/api/http/context"
	"github.com/qivlabs/qiv-auth/internal/api/http/handler"
	"github.com/qivlabs/qiv-auth/internal/api/http/router"
	"github.com/qivlabs/qiv-auth/internal/api/http/session"
	"github.com/qivlabs/qiv-auth/internal/config"
	"github.com/qivlabs/qiv-auth/internal/logger"
	"github.com/qivlabs/qiv-auth/internal/model"
	"github.com/qivlabs/qiv-auth/internal/notifier"
	"github.com/qivlabs/qiv-auth/internal/otp"
	"github.com/qivlabs/qiv-auth/internal/password"
	"github.com/qivlabs/qiv-auth/internal/provider"
	"github.com/qivlabs/qiv-auth/internal/repository/postgres"
	"github.com/qivlabs/qiv-auth/internal/server"
	"github.com/qivlabs/qiv-auth/internal/service"
	"github.com/qivlabs/qiv-auth/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	identityRepo := postgres.NewIdentityRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.Secret)
	hasher := password.NewBcryptHasher()
	otpGenerator := otp.NewGenerator()

	var otpNotifier model.OTPNotifier
	if cfg.SMTP.Host != "" {
		otpNotifier, err = notifier.NewSMTPNotifier(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
		if err != nil {
			logger.Fatal("failed to create smtp notifier", "error", err)
		}
	} else {
		logger.Info("SMTP host not configured, falling back to console notifier")
		otpNotifier = notifier.NewConsoleNotifier(logger)
	}

	authService := service.NewAuth(identityRepo, hasher, tokenManager, otpGenerator, otpNotifier, logger)
	ctxMgr := httpctx.NewManager()

	cookies := session.CookieOptions{
		Secure: cfg.HTTP.SecureCookies,
		TTL:    token.SessionTTL,
	}

	authHandler := handler.NewAuth(authService, identityRepo, ctxMgr, cookies, logger)

	var federatedHandler *handler.Federated
	if cfg.Google.ClientID != "" {
		google, err := provider.NewGoogle(ctx, cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
		if err != nil {
			logger.Fatal("failed to create google provider", "error", err)
		}
		federatedHandler = handler.NewFederated(authHandler, google, cfg.Frontend.URL)
	} else {
		logger.Info("Google client not configured, federated login disabled")
	}

	routes := router.New(authHandler, federatedHandler, tokenManager, ctxMgr, logger)
	httpServer := server.NewHTTPServer(fmt.Sprintf(":%s", cfg.HTTP.Port), routes.Handler())

	var sl model.SecurityLayer

	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		err := s.Start(sl)
		if err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(httpServer)

	logAppVersion(logger)

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion(logger *logger.Logger) {
	logger.Info("build info",
		"version", buildVersion,
		"date", buildDate,
		"commit", buildCommit)
}
