package api

import (
	"log"
	stdhttp "net/http"
	"time"

	intconfig "jamii/internal/config"
	h "jamii/internal/http/handlers"
	"jamii/internal/http/middleware"
	"jamii/internal/mpesa"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), cors.New(corsConfig()))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	gateway := mpesa.NewFromEnv(env.Mpesa)
	payments := h.PaymentHandler{Gateway: gateway}
	auth := h.AuthHandler{Secret: []byte(env.JWTSecret)}

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)

		api.POST("/auth/login", auth.Login)
		api.POST("/auth/register", auth.Register)

		// gateway-originated, unauthenticated
		api.POST("/payments/mpesa/callback", payments.Callback)

		secured := api.Group("")
		secured.Use(middleware.RequireAuth([]byte(env.JWTSecret)))
		{
			secured.POST("/payments/mpesa/initiate", payments.Initiate)
			secured.GET("/payments/mpesa/:id/status", payments.Status)

			secured.GET("/levies", h.ListLevies)
			secured.GET("/levies/:id", h.GetLevy)
			secured.GET("/levies/:id/receipt", h.GetLevyReceipt)

			// community officers raise levies; residents only pay them
			secured.POST("/levies", middleware.RequireRoles("admin", "treasurer"), h.CreateLevy)
		}
	}

	return r
}

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
		"http://localhost:5173",
		"http://127.0.0.1:5173",
	}
	cfg.AllowHeaders = []string{"Content-Type", "Authorization", "Accept", "Origin", "X-Request-ID"}
	cfg.AllowCredentials = true
	cfg.MaxAge = 24 * time.Hour
	return cfg
}
