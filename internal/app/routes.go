package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/inkpress/core/internal/middleware"
	"github.com/inkpress/core/internal/modules/content/post"
	"github.com/inkpress/core/internal/pkg/response"
	"github.com/inkpress/core/internal/store"
)

func (a *App) registerRoutes(assets post.AssetStore) {
	r := a.router

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	rdb := a.rawRedis()

	api := r.Group("/api")
	api.Use(middleware.Session())
	api.Use(middleware.RateLimit(rdb))
	api.Use(middleware.HTTPCache(rdb, 0, a.cfg.IsDev()))

	api.GET("/ping", func(c *gin.Context) {
		response.OK(c, gin.H{"message": "pong"})
	})
	api.GET("/health", a.health)

	posts := store.NewPosts(a.db)
	users := store.NewUsers(a.db)
	svc := post.NewService(posts, users, assets)
	post.NewHandler(svc).RegisterRoutes(api)
}

func (a *App) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := a.client.Ping(ctx, readpref.Primary()); err != nil {
		response.ServiceUnavailable(c, "database unreachable")
		return
	}
	redisStatus := "disabled"
	if a.rc != nil {
		redisStatus = "ok"
		if err := a.rc.Raw().Ping(ctx).Err(); err != nil {
			redisStatus = "unreachable"
		}
	}
	response.OK(c, gin.H{"status": "ok", "redis": redisStatus})
}
