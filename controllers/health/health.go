package health

import (
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"restaurante-admin/pkg/cache"
	"restaurante-admin/pkg/goroutinepool"
	"restaurante-admin/pkg/response"
	"restaurante-admin/redis"
	"restaurante-admin/services/report_service"
)

const serviceName = "restaurante-admin"

// HealthController 健康检查控制器
type HealthController struct {
	version   string
	startTime time.Time
	pool      *goroutinepool.Pool
	cache     *cache.CacheManager
	paginas   *report_service.Paginas
	// redisEnabled 为 false 时就绪检查不看 Redis
	redisEnabled bool
}

// NewHealthController 创建健康检查控制器，各组件可为 nil
func NewHealthController(version string, pool *goroutinepool.Pool, cm *cache.CacheManager, paginas *report_service.Paginas, redisEnabled bool) *HealthController {
	return &HealthController{
		version:      version,
		startTime:    time.Now(),
		pool:         pool,
		cache:        cm,
		paginas:      paginas,
		redisEnabled: redisEnabled,
	}
}

// CheckHealth 基础健康检查，附带各组件统计
func (h *HealthController) CheckHealth(c *gin.Context) {
	data := gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
		"service":   serviceName,
		"version":   h.version,
		"uptime":    time.Since(h.startTime).String(),
	}
	if h.pool != nil {
		data["goroutine_pool"] = h.pool.GetStats()
	}
	if h.cache != nil {
		data["cache"] = h.cache.GetStats()
	}
	if h.paginas != nil {
		data["paginas"] = h.paginas.Len()
	}
	data["redis"] = gin.H{
		"enabled":   h.redisEnabled,
		"connected": h.redisEnabled && redis.IsConnected(c.Request.Context()),
	}

	response.Success(c, data)
}

// CheckLiveness 存活性检查
func (h *HealthController) CheckLiveness(c *gin.Context) {
	response.Success(c, gin.H{
		"status":    "alive",
		"timestamp": time.Now().Unix(),
	})
}

// CheckReadiness 就绪性检查
func (h *HealthController) CheckReadiness(c *gin.Context) {
	if h.redisEnabled && !redis.IsConnected(c.Request.Context()) {
		response.Error(c, response.ERROR, "redis: connection failed")
		return
	}

	response.Success(c, gin.H{
		"status":    "ready",
		"timestamp": time.Now().Unix(),
	})
}

// GetSystemInfo 运行时信息
func (h *HealthController) GetSystemInfo(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response.Success(c, gin.H{
		"service": gin.H{
			"name":    serviceName,
			"version": h.version,
			"mode":    gin.Mode(),
			"uptime":  time.Since(h.startTime).String(),
		},
		"system": gin.H{
			"go_version":    runtime.Version(),
			"num_cpu":       runtime.NumCPU(),
			"num_goroutine": runtime.NumGoroutine(),
		},
		"memory": gin.H{
			"alloc":       bToMb(m.Alloc),
			"total_alloc": bToMb(m.TotalAlloc),
			"sys":         bToMb(m.Sys),
			"num_gc":      m.NumGC,
		},
		"timestamp": time.Now().Unix(),
	})
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
