package app

import (
	"context"
	"net/http"

	"identity-service/internal/account"
	"identity-service/internal/auth/credentials"
	"identity-service/internal/auth/handler"
	"identity-service/internal/auth/provider"
	"identity-service/internal/auth/provider/github"
	"identity-service/internal/auth/provider/google"
	"identity-service/internal/auth/resolver"
	"identity-service/internal/config"
	"identity-service/internal/logger"
	"identity-service/internal/middleware"
	"identity-service/internal/session"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	accountStore := account.NewPostgresStore(infra.DB)
	identityResolver := resolver.NewStoreResolver(accountStore)
	credentialService := credentials.NewService(infra.DB)
	sessionStore := session.NewRedisStore(infra.Redis.Client)

	googleProvider, err := google.New(
		ctx,
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
	)
	if err != nil {
		return nil, nil, err
	}

	githubProvider, err := github.New(
		cfg.GitHubClientID,
		cfg.GitHubClientSecret,
		cfg.GitHubRedirectURL,
	)
	if err != nil {
		return nil, nil, err
	}

	registry := provider.NewRegistry(
		googleProvider,
		githubProvider,
	)

	logger.Info("oauth providers configured", map[string]any{
		"providers": registry.Names(),
	})

	authHandler := handler.NewHandler(
		registry,
		sessionStore,
		identityResolver,
		credentialService,
	)

	authMiddleware := middleware.NewAuthMiddleware(sessionStore)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	// ----------------------------
	// Public routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected API routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(middleware.GinRequireAuth(authMiddleware))

	api.GET("/me", func(c *gin.Context) {
		accountID, _ := middleware.AccountIDFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"account_id": accountID,
		})
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.DB.Close()
	}, nil
}
