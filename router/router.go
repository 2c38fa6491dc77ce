package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"restaurante-admin/controllers/admin"
	"restaurante-admin/controllers/health"
	"restaurante-admin/inout"
	"restaurante-admin/middleware"
)

// sessionName 报表页面会话 cookie 名
const sessionName = "reportes_session"

// SessionOptions 会话 cookie 参数
type SessionOptions struct {
	Secret  string
	IdleTTL time.Duration
	Secure  bool
}

// InitHealth 健康检查与指标
func InitHealth(r *gin.Engine, h *health.HealthController) {
	r.GET("/health", h.CheckHealth)
	r.GET("/health/live", h.CheckLiveness)
	r.GET("/health/ready", h.CheckReadiness)
	r.GET("/health/system", h.GetSystemInfo)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// InitReportes 报表页面路由，页面状态按会话保存
func InitReportes(r *gin.Engine, ctl *admin.ReporteController, opts SessionOptions) {
	store := cookie.NewStore([]byte(opts.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(opts.IdleTTL / time.Second),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	reportes := r.Group("/reportes")
	reportes.Use(sessions.Sessions(sessionName, store))
	{
		reportes.GET("",
			middleware.ValidationMiddleware(func() interface{} { return &inout.ReporteReq{} }),
			ctl.GetReportes)
		reportes.GET("/exportar", ctl.Exportar)
		reportes.GET("/ranking.svg", ctl.RankingSVG)
		reportes.DELETE("/aviso", ctl.CerrarAviso)
	}
}
