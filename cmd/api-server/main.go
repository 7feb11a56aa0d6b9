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

	"github.com/gin-gonic/gin"

	"animetrack/internal/anilist"
	"animetrack/internal/auth"
	"animetrack/internal/events"
	"animetrack/internal/library"
	"animetrack/internal/sources"
	"animetrack/pkg/database"
	"animetrack/pkg/utils"
)

func main() {
	cfg := utils.LoadConfig()

	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	hub := events.NewHub()
	router.GET("/ws", events.WSHandler(hub))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not_ready",
				"db_error":   err.Error(),
				"ws_clients": stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"ws_clients": stats.WSClients,
		})
	})

	tokenSvc := auth.TokenService{
		Secret:   []byte(cfg.Auth.JWTSecret),
		Issuer:   cfg.Auth.JWTIssuer,
		Duration: cfg.Auth.JWTDuration,
	}
	userRepo := auth.NewRepo(db)
	authHandler := auth.NewHandler(userRepo, tokenSvc)
	authHandler.RegisterRoutes(router.Group("/api/auth"))

	libRepo := library.NewRepo(db)
	libHandler := library.NewHandler(libRepo, userRepo, hub)
	libGroup := router.Group("/api/library")
	libGroup.Use(auth.AuthMiddleware(tokenSvc))
	libHandler.RegisterRoutes(libGroup)

	apiClient := anilist.NewClient(cfg.AniList.AppName)

	srcHandler := sources.NewHandler(apiClient)
	srcGroup := router.Group("/api/sources")
	srcGroup.Use(auth.AuthMiddleware(tokenSvc))
	srcHandler.RegisterRoutes(srcGroup)

	anilistHandler := &anilist.Handler{
		States:   anilist.StateService{Secret: []byte(cfg.Auth.JWTSecret)},
		OAuth:    anilist.NewOAuthClient(cfg.AniList.ClientID, cfg.AniList.ClientSecret, cfg.AniList.RedirectURI),
		API:      apiClient,
		Tokens:   anilist.NewMemoryTokenStore(),
		Importer: anilist.NewImporter(db, userRepo),
		Auth:     tokenSvc,
		Hub:      hub,
	}
	anilistHandler.RegisterRoutes(router.Group("/api/anilist"))

	httpSrv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP API server listening on %s", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	log.Println("server stopped")
}
