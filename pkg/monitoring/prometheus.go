package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus 指标定义
var (
	// HTTP 请求相关指标
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时分布",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// 报表后端调用
	backendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reportes_backend_requests_total",
			Help: "报表后端请求总数",
		},
		[]string{"endpoint", "status"},
	)

	backendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reportes_backend_request_duration_seconds",
			Help:    "报表后端请求耗时分布",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"endpoint"},
	)

	// 缓存命中
	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reportes_cache_lookups_total",
			Help: "报表缓存查询次数",
		},
		[]string{"dataset", "result"},
	)

	// 导出
	exportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reportes_exports_total",
			Help: "报表导出次数",
		},
		[]string{"result"},
	)

	// 页面刷新
	refreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reportes_refreshes_total",
			Help: "报表页面刷新次数",
		},
		[]string{"result"},
	)

	activePages = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reportes_active_pages",
			Help: "当前活跃的报表页面数",
		},
	)
)

// PrometheusMiddleware Gin中间件，用于收集HTTP指标
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			statusCode,
		).Inc()

		httpRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

// RecordBackendRequest 记录一次后端调用，status 为 HTTP 状态码或 "error"
func RecordBackendRequest(endpoint, status string, duration time.Duration) {
	backendRequestsTotal.WithLabelValues(endpoint, status).Inc()
	backendRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func RecordCacheLookup(dataset string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(dataset, result).Inc()
}

func RecordExport(result string) {
	exportsTotal.WithLabelValues(result).Inc()
}

func RecordRefresh(result string) {
	refreshesTotal.WithLabelValues(result).Inc()
}

func UpdateActivePages(count int) {
	activePages.Set(float64(count))
}
