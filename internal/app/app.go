package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/inkpress/core/internal/config"
	"github.com/inkpress/core/internal/database"
	"github.com/inkpress/core/internal/middleware"
	"github.com/inkpress/core/internal/modules/content/post"
	"github.com/inkpress/core/internal/pkg/jwt"
	"github.com/inkpress/core/internal/pkg/objectstore"
	pkgredis "github.com/inkpress/core/internal/pkg/redis"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	client *mongo.Client
	db     *mongo.Database
	rc     *pkgredis.Client
	logger *zap.Logger
}

// New initializes the application: config → Mongo → Redis → S3 → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	jwt.SetSecret(cfg.JWTSecret)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	client, db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	var rc *pkgredis.Client
	if cfg.RedisURL != "" {
		rc, err = pkgredis.Connect(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
	} else {
		logger.Warn("redis url not configured, response cache and rate limiting disabled")
	}

	var assets post.AssetStore
	if cfg.S3.Bucket != "" {
		s3store, err := objectstore.NewS3(cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("object store: %w", err)
		}
		assets = s3store
	} else {
		logger.Warn("s3 bucket not configured, image uploads disabled")
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(cors.New(corsConfig(cfg)))

	app := &App{cfg: cfg, router: router, client: client, db: db, rc: rc, logger: logger}
	app.registerRoutes(assets)

	return app, nil
}

func corsConfig(cfg *config.AppConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "x-api-cache"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		patterns := cfg.AllowedOrigins
		c.AllowOriginFunc = func(origin string) bool {
			host := extractOriginHost(origin)
			for _, pattern := range patterns {
				if matchOriginPattern(pattern, host) {
					return true
				}
			}
			return false
		}
	} else {
		c.AllowOriginFunc = func(origin string) bool { return true }
	}
	return c
}

func (a *App) rawRedis() *redis.Client {
	if a.rc == nil {
		return nil
	}
	return a.rc.Raw()
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown releases held connections.
func (a *App) Shutdown(ctx context.Context) {
	if err := a.client.Disconnect(ctx); err != nil {
		a.logger.Warn("mongo disconnect", zap.Error(err))
	}
}
