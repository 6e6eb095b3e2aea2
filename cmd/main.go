package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Thinkbigalways/pethud2.0/config"
	"github.com/Thinkbigalways/pethud2.0/internal/api/marketplace"
	"github.com/Thinkbigalways/pethud2.0/internal/api/post"
	"github.com/Thinkbigalways/pethud2.0/internal/api/user"
	"github.com/Thinkbigalways/pethud2.0/internal/middleware"
	"github.com/Thinkbigalways/pethud2.0/internal/repository/mongodb"
	"github.com/Thinkbigalways/pethud2.0/internal/service"
	"github.com/Thinkbigalways/pethud2.0/internal/storage"
	"github.com/Thinkbigalways/pethud2.0/internal/util"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			util.Logger.Error("程序发生严重错误", zap.Any("error", r))
		}
	}()

	// 初始化配置
	cfg, err := config.Load()
	if err != nil {
		util.InitLogger("info", "")
		util.Logger.Fatal("加载配置失败", zap.Error(err))
	}

	// 初始化日志
	util.InitLogger(cfg.LogLevel, cfg.LogPath)
	defer util.Logger.Sync()

	util.Logger.Info("应用程序启动")

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// 连接文档数据库
	db, err := mongodb.Connect(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		util.Logger.Fatal("连接数据库失败", zap.Error(err))
	}
	defer db.Client().Disconnect(context.Background())
	util.Logger.Info("数据库连接成功")

	// 可选的 Redis 连接，用于令牌黑名单
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			util.Logger.Warn("Redis 连接失败，令牌黑名单降级为内存", zap.Error(err))
			rdb = nil
		}
	}
	blacklist := util.NewTokenBlacklist(rdb)

	// 按配置选择对象存储后端
	blobStore, err := newBlobStore(cfg)
	if err != nil {
		util.Logger.Fatal("初始化对象存储失败", zap.Error(err))
	}
	util.Logger.Info("对象存储初始化完成", zap.String("backend", cfg.StorageBackend))

	// 注册自定义验证器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("ad_category", util.ValidateAdCategory)
	}

	// 初始化存储库、服务和处理器
	postRepo := mongodb.NewPostRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	adRepo := mongodb.NewAdRepository(db)

	postService := service.NewPostService(postRepo, blobStore)
	userService := service.NewUserService(userRepo, postRepo, blobStore)
	marketplaceService := service.NewMarketplaceService(adRepo, blobStore)

	postHandler := post.NewPostHandler(postService)
	profileHandler := user.NewProfileHandler(userService)
	authHandler := user.NewAuthHandler(cfg.JWTSecret, blacklist)
	marketplaceHandler := marketplace.NewMarketplaceHandler(marketplaceService)

	// 初始化错误监控
	errorMonitor := middleware.NewErrorMonitor()

	// 设置 Gin 路由
	r := gin.New()

	// 添加中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.ErrorMonitorMiddleware(errorMonitor))
	r.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerMinute))

	// 配置 CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.FrontendURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length",
		"Content-Type",
		"Access-Control-Allow-Origin",
	}
	r.Use(cors.New(corsConfig))

	// 本地存储时由应用自身提供静态文件服务
	if cfg.StorageBackend == "local" {
		r.Use(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/uploads/") {
				c.Header("Access-Control-Allow-Origin", cfg.FrontendURL)
				c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
				if c.Request.Method == "OPTIONS" {
					c.AbortWithStatus(http.StatusOK)
					return
				}
			}
			c.Next()
		})
		r.Static("/uploads", cfg.LocalStoragePath)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 定义 API 路由
	api := r.Group("/api")
	authorized := api.Group("/")
	authorized.Use(middleware.AuthMiddleware(cfg.JWTSecret, blacklist))
	{
		authorized.POST("/logout", authHandler.Logout)

		// 帖子相关路由
		authorized.POST("/posts", postHandler.CreatePost)
		authorized.GET("/posts", postHandler.ListFeed)
		authorized.GET("/posts/:id", postHandler.GetPost)
		authorized.DELETE("/posts/:id", postHandler.DeletePost)
		authorized.PUT("/posts/:id/media", postHandler.ReplaceMedia)
		authorized.POST("/posts/:id/like", postHandler.ToggleLike)
		authorized.GET("/posts/:id/comments", postHandler.ListComments)
		authorized.POST("/posts/:id/comments", postHandler.AddComment)
		authorized.DELETE("/comments/:id", postHandler.DeleteComment)

		// 市场相关路由
		authorized.GET("/marketplace", marketplaceHandler.ListAds)
		authorized.POST("/marketplace", marketplaceHandler.CreateAd)
		authorized.GET("/marketplace/mine", marketplaceHandler.ListMyAds)
		authorized.GET("/marketplace/:id", marketplaceHandler.GetAd)
		authorized.PUT("/marketplace/:id", marketplaceHandler.UpdateAd)
		authorized.DELETE("/marketplace/:id", marketplaceHandler.DeleteAd)

		// 用户资料相关路由
		authorized.GET("/profile", profileHandler.GetProfile)
		authorized.PUT("/profile/settings", profileHandler.UpdateSettings)
		authorized.POST("/profile/picture", profileHandler.UploadProfilePic)
		authorized.POST("/profile/cover", profileHandler.UploadCoverPic)
		authorized.GET("/users/suggestions", profileHandler.Suggestions)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		util.Logger.Info("HTTP 服务启动", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Logger.Fatal("HTTP 服务异常退出", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	util.Logger.Info("收到退出信号，开始关闭")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		util.Logger.Error("服务关闭失败", zap.Error(err))
	}
	util.Logger.Info("服务已退出")
}

// newBlobStore 按配置选择对象存储实现
func newBlobStore(cfg *config.Config) (storage.BlobStore, error) {
	switch cfg.StorageBackend {
	case "gcs":
		return storage.NewGCSClient(cfg.GCSBucket, cfg.GCSCredentialsFile)
	case "s3":
		return storage.NewS3Client(cfg.S3Region, cfg.S3Bucket)
	default:
		return storage.NewLocalStorage(cfg.LocalStoragePath, cfg.BackendURL)
	}
}
