package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/usergate/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
// Each protected operation is wrapped by the authorization gate at registration.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	logger := handler.logger
	router := gin.New()
	router.Use(
		requestIDMiddleware(),
		requestLogger(logger),
		errorHandlingMiddleware(logger, cfg.App.IsDevelopment()),
		recoveryMiddleware(logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		rateLimitMiddleware(cfg.HTTP.RateLimit, logger),
		bodyLimitMiddleware(maxBodyBytes),
	)

	gate := newAuthGate(handler.authSvc, logger)
	usersGate := gate.Protect
	if cfg.Users.Public {
		logger.Warn("user routes are served without authorization")
		usersGate = open
	}

	router.GET("/healthz", handler.Health)
	router.POST("/login", handler.Login)
	router.GET("/me", gate.Protect(handler.Me))

	users := router.Group("/users")
	{
		users.GET("", usersGate(handler.ListUsers))
		users.POST("", usersGate(handler.CreateUser))
		users.GET("/:id", usersGate(handler.GetUser))
		users.PUT("/:id", usersGate(handler.UpdateUser))
		users.DELETE("/:id", usersGate(handler.DeleteUser))
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
