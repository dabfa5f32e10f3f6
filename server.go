package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	adminapi "asset-manager-api/internal/api/admin"
	"asset-manager-api/internal/api/billing"
	inventoryapi "asset-manager-api/internal/api/inventory"
	organizationapi "asset-manager-api/internal/api/organization"
	plansapi "asset-manager-api/internal/api/plans"
	stripewebhooks "asset-manager-api/internal/api/stripewebhook"
	usersapi "asset-manager-api/internal/api/users"
	routes "asset-manager-api/internal/app/http"
	"asset-manager-api/internal/app/http/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func tokenVerifier(ctx context.Context, a *app) (middleware.TokenVerifier, error) {
	if a.cfg.OIDCIssuer != "" {
		return middleware.NewOIDCVerifier(ctx, a.cfg.OIDCIssuer, a.cfg.OIDCClientID)
	}
	return middleware.NewHMACVerifier(a.cfg.JWTSecret), nil
}

func newRouter(a *app, verifier middleware.TokenVerifier) *gin.Engine {
	if strings.EqualFold(a.cfg.GinMode, gin.ReleaseMode) {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(a.logger.Named("http")))
	r.Use(middleware.Recovery(a.logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.SubscriptionWarningHeader, middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Handlers{
		Billing:      billing.NewHandler(a.service, a.cfg.AppURL, a.logger.Named("billing")),
		Organization: organizationapi.NewHandler(a.store, a.service, a.logger.Named("organization")),
		Inventory:    inventoryapi.NewHandler(a.store, a.logger.Named("inventory")),
		Users:        usersapi.NewHandler(a.catalog, nil),
		Admin:        adminapi.NewHandler(a.store, a.service, a.logger.Named("admin")),
		Plans:        plansapi.NewHandler(a.service, a.logger.Named("plans")),
		Webhook:      stripewebhooks.NewHandler(a.cfg.StripeWebhookSecret, a.ledger, a.reconciler, a.logger.Named("webhook")),
	}, routes.Guards{
		Verifier:      verifier,
		Organizations: a.store,
		Assets:        a.service,
		Logger:        a.logger.Named("guard"),
	})
	return r
}

func runServer(ctx context.Context, a *app) error {
	verifier, err := tokenVerifier(ctx, a)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           newRouter(a, verifier),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting HTTP server", zap.String("address", srv.Addr), zap.String("ginMode", gin.Mode()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		a.logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.logger.Info("server exited gracefully")
	return nil
}
