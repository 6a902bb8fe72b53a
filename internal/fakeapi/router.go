package fakeapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter monta la API bajo /api con logging, recovery y JSON content-type.
func NewRouter(logger *zap.Logger, h *Handler, tokens *TokenService, limiter LoginLimiter) *gin.Engine {
	r := gin.New()
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register/", h.Register)
	auth.POST("/login/", loginLimitMiddleware(limiter), h.Login)

	api.GET("/exchange-rates/", h.ListRates)
	api.GET("/advertisements/", h.ListAds)

	tx := api.Group("/transactions", JWTAuthMiddleware(tokens))
	tx.POST("/calculate/", h.Calculate)
	tx.POST("/send/", h.Send)
	tx.GET("/history/", h.History)
	tx.GET("/:id/", h.Detail)

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetHeader("X-Request-ID")),
		)
	}
}

func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
