package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"partyroom-backend/config"
	"partyroom-backend/internal/auth"
	"partyroom-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, tokens *auth.TokenService, cfg config.ServerConfig, limiter *mw.IPRateLimiter, log *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestLogger(log), cors.New(corsConfig(cfg.AllowedOrigins)))

	if limiter == nil {
		limiter = mw.NewIPRateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	}

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	caching := mw.Cache(cache.New(ttl, 2*ttl), ttl)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(mw.RateLimiter(limiter))
	{
		api.GET("/catalog", caching, h.GetCatalog)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)

		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)
		api.POST("/auth/logout", mw.RequireAuth(tokens), h.Logout)
	}

	g := api.Group("/game")
	g.Use(mw.RequireAuth(tokens))
	{
		g.GET("/state", h.GetState)
		g.POST("/save", h.SaveState)

		g.POST("/rooms", h.RentRoom)
		g.POST("/shop/purchase", h.PurchaseItem)
		g.DELETE("/inventory/:id", h.RemoveInventoryItem)
		g.POST("/inventory/:id/install", h.ScheduleInstallation)
		g.POST("/items/:id/move", h.MoveItem)

		g.POST("/bookings/generate", h.GenerateBookings)
		g.GET("/bookings/:id/recommendation", h.RecommendRoom)
		g.POST("/bookings/:id/assign", h.AssignRoom)

		g.GET("/schedule", h.GetSchedule)
		g.POST("/schedule", h.AddScheduleSlot)
		g.DELETE("/schedule/:time", h.RemoveScheduleSlot)

		g.GET("/settlement", h.GetSettlement)
		g.POST("/day/end", h.EndDay)
		g.GET("/stats", h.GetStats)
		g.GET("/stats/export", h.ExportStats)

		g.GET("/subscriptions", h.GetSubscriptions)
		g.PUT("/subscriptions", h.PutSubscription)
		g.DELETE("/subscriptions", h.DeleteSubscription)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
