package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerniceZTT/works_end/config"
	"github.com/BerniceZTT/works_end/controllers"
	"github.com/BerniceZTT/works_end/middleware"
	"github.com/BerniceZTT/works_end/repository"
	"github.com/BerniceZTT/works_end/routes"
	"github.com/BerniceZTT/works_end/service"
	"github.com/BerniceZTT/works_end/storage"
	"github.com/BerniceZTT/works_end/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	// 初始化日志
	utils.InitLogger()

	// 加载配置
	cfg := config.LoadConfig()
	utils.SetJWTSecret(cfg.JWTKey)

	// 设置Gin模式
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化数据库
	if err := repository.InitMongoDB(cfg.MongoURI, cfg.MongoDB); err != nil {
		utils.Logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer repository.CloseMongoDB()

	if err := repository.InitializeCollections(); err != nil {
		utils.Logger.Error().Err(err).Msg("初始化数据库集合失败")
	}

	// 对象存储，未配置时拒绝带附件的请求
	var objects service.ObjectStore
	if cfg.MinIO.Endpoint != "" {
		store, err := storage.NewMinioStore(cfg.MinIO, cfg.UploadTimeout)
		if err != nil {
			utils.Logger.Fatal().Err(err).Msg("初始化对象存储失败")
		}
		bucketCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := store.EnsureBucket(bucketCtx); err != nil {
			utils.Logger.Error().Err(err).Msg("检查存储桶失败")
		}
		cancel()
		objects = store
	} else {
		utils.Logger.Warn().Msg("未配置MinIO，附件上传不可用")
	}

	proposalRepo := repository.NewProposalRepository(repository.Collection(repository.ProposalsCollection))
	proposalSvc := service.NewProposalService(proposalRepo, objects, service.WithMaxAttempts(cfg.MaxSaveAttempts))

	// 创建Gin实例
	router := gin.New()
	router.MaxMultipartMemory = 32 << 20

	// 应用中间件
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.OperationLoggerMiddleware())

	// 注册路由
	routes.RegisterRoutes(router, controllers.NewProposalController(proposalSvc))

	// 设置HTTP服务器，上传接口需要更长的写超时
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: cfg.UploadTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		utils.Logger.Info().Msgf("服务器启动，监听端口: %d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Logger.Fatal().Err(err).Msg("启动服务器失败")
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.Logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.Logger.Error().Err(err).Msg("服务器关闭异常")
	}

	utils.Logger.Info().Msg("服务器已优雅关闭")
}
