package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"restaurante-admin/controllers/admin"
	"restaurante-admin/controllers/health"
	"restaurante-admin/middleware"
	"restaurante-admin/pkg/cache"
	"restaurante-admin/pkg/config"
	"restaurante-admin/pkg/goroutinepool"
	"restaurante-admin/pkg/monitoring"
	"restaurante-admin/redis"
	"restaurante-admin/router"
	"restaurante-admin/services/report_service"
)

// 构建时注入的变量
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// 后台协程池大小，只用于归档导出文件
const (
	poolWorkers = 2
	poolQueue   = 32
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "-version", "--version", "-v":
			fmt.Printf("Restaurante Admin\n")
			fmt.Printf("Version: %s\n", Version)
			fmt.Printf("Build Time: %s\n", BuildTime)
			fmt.Printf("Git Commit: %s\n", GitCommit)
			return
		case "-help", "--help", "-h":
			printHelp()
			return
		case "export":
			if err := runExport(os.Args[2:]); err != nil {
				log.Printf("[ERROR] %v", err)
				os.Exit(1)
			}
			return
		}
	}

	if err := serve(); err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
}

func printHelp() {
	fmt.Printf("Restaurante Admin - página de reportes del restaurante\n\n")
	fmt.Printf("Usage:\n")
	fmt.Printf("  %s                  启动 HTTP 服务\n", os.Args[0])
	fmt.Printf("  %s export [flags]   导出报表到 xlsx\n\n", os.Args[0])
	fmt.Printf("Options:\n")
	fmt.Printf("  -version, -v     显示版本信息\n")
	fmt.Printf("  -help, -h        显示帮助信息\n\n")
	fmt.Printf("Environment Variables:\n")
	fmt.Printf("  CONFIG_FILE         配置文件 (默认: config.yaml)\n")
	fmt.Printf("  SERVER_PORT         服务端口 (默认: 8801)\n")
	fmt.Printf("  REPORTES_URL        报表后端地址\n")
	fmt.Printf("  REDIS_ENABLED       是否使用 Redis 缓存\n")
	fmt.Printf("  EXPORT_ARCHIVE_DIR  导出文件归档目录\n")
	fmt.Printf("  SESSION_SECRET      会话 cookie 密钥\n")
}

func serve() error {
	if err := config.InitConfig(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	cfg := config.GetConfig()
	log.Printf("[INFO] 启动 restaurante-admin (模式: %s, 端口: %s, 后端: %s)",
		cfg.Server.Mode, cfg.Server.Port, cfg.Backend.BaseURL)

	gin.SetMode(cfg.Server.Mode)

	// Redis 不可用时退回本地缓存
	if err := redis.InitRedis(cfg.Redis); err != nil {
		log.Printf("[WARN] Redis 初始化失败，仅使用本地缓存: %v", err)
	}
	cache.InitCache(redis.GetClient())
	cache.GlobalCache.SetEnabled(cfg.Cache.TTL > 0)

	pool := goroutinepool.NewPool(poolWorkers, poolQueue)
	pool.Start()

	fetcher := report_service.NewFetcher(report_service.NewClient(cfg.Backend), cache.GlobalCache, cfg.Cache.TTL)
	paginas := report_service.NewPaginas(fetcher, cfg.Session.IdleTTL)
	paginas.IniciarLimpieza(time.Minute)
	archivador := report_service.NewArchivador(cfg.Export.ArchiveDir, pool)

	app := gin.New()
	app.Use(middleware.Recovery())
	app.Use(middleware.RequestID())
	app.Use(middleware.SecureHeaders())
	app.Use(middleware.Performance())
	app.Use(middleware.Cors(middleware.DefaultCorsConfig(cfg.Server.AllowedOrigins)))
	app.Use(middleware.RateLimit(cfg.Server.RateLimit))
	app.Use(monitoring.PrometheusMiddleware())

	if cfg.Server.LogDir != "" {
		logFile, err := middleware.SetupLogFile(cfg.Server.LogDir)
		if err != nil {
			return err
		}
		defer logFile.Close()
		app.Use(middleware.RequestLogger(log.New(logFile, "", log.LstdFlags)))
	}

	secret := cfg.Session.Secret
	if secret == "" {
		secret = "restaurante-admin-dev"
		log.Printf("[WARN] SESSION_SECRET 未设置，使用开发密钥")
	}

	router.InitHealth(app, health.NewHealthController(Version, pool, cache.GlobalCache, paginas, cfg.Redis.Enabled))
	router.InitReportes(app, admin.NewReporteController(paginas, archivador), router.SessionOptions{
		Secret:  secret,
		IdleTTL: cfg.Session.IdleTTL,
		Secure:  config.IsProduction(),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] 服务器启动在端口 :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case <-quit:
	case serveErr = <-errCh:
		log.Printf("[ERROR] 服务启动失败: %v", serveErr)
	}

	log.Printf("[INFO] 正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[ERROR] 服务器强制关闭: %v", err)
	}

	paginas.Close()
	pool.Stop(10 * time.Second)
	cache.GlobalCache.Close()
	if err := redis.CloseRedis(); err != nil {
		log.Printf("[ERROR] 关闭 Redis 失败: %v", err)
	}

	log.Printf("[INFO] 服务器已安全关闭")
	return serveErr
}
