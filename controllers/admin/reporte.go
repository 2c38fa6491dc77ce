package admin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"restaurante-admin/inout"
	"restaurante-admin/middleware"
	"restaurante-admin/model/report_model"
	"restaurante-admin/pkg/response"
	"restaurante-admin/services/report_service"
)

// sessionKey 会话中保存页面 ID 的键
const sessionKey = "pagina"

// ReporteController 报表页面控制器
type ReporteController struct {
	paginas    *report_service.Paginas
	archivador *report_service.Archivador
}

// NewReporteController archivador 可为 nil
func NewReporteController(paginas *report_service.Paginas, archivador *report_service.Archivador) *ReporteController {
	return &ReporteController{paginas: paginas, archivador: archivador}
}

// pagina 取当前会话的页面，没有时新建并写回会话
func (rc *ReporteController) pagina(c *gin.Context) *report_service.Pagina {
	session := sessions.Default(c)
	id, _ := session.Get(sessionKey).(string)

	p := rc.paginas.Obtener(id)
	if p.ID() != id {
		session.Set(sessionKey, p.ID())
		if err := session.Save(); err != nil {
			log.Printf("[ERROR] 保存会话失败: %v", err)
		}
	}
	return p
}

// GetReportes 返回页面状态；带日期参数时先更新日期，两个日期齐全则重新获取五个报表
func (rc *ReporteController) GetReportes(c *gin.Context) {
	params, ok := reporteParams(c)
	if !ok {
		return
	}
	p := rc.pagina(c)

	_, hasInicio := c.GetQuery("fechaInicio")
	_, hasFin := c.GetQuery("fechaFin")
	if !hasInicio && !hasFin {
		response.Success(c, p.Vista())
		return
	}

	rango := p.Rango()
	if hasInicio {
		rango.Inicio = params.FechaInicio
	}
	if hasFin {
		rango.Fin = params.FechaFin
	}

	// 客户端断开不应中断页面的刷新
	ctx := context.WithoutCancel(c.Request.Context())
	err := p.SetFechas(ctx, rango.Inicio, rango.Fin)

	switch {
	case err == nil:
		response.Success(c, p.Vista())
	case errors.Is(err, report_service.ErrResultadoObsoleto):
		log.Printf("[INFO] 页面 %s 的旧结果已丢弃", p.ID())
		response.Success(c, p.Vista())
	case errors.Is(err, report_model.ErrRangoInvalido):
		response.ErrorWithData(c, response.INVALID_PARAMS, p.Vista(), report_service.MensajeRangoInvalido)
	default:
		log.Printf("[ERROR] 获取报表失败 %s..%s: %v", rango.Inicio, rango.Fin, err)
		response.ErrorWithData(c, response.BACKEND_ERROR, p.Vista())
	}
}

// reporteParams 优先使用校验中间件绑定好的参数
func reporteParams(c *gin.Context) (*inout.ReporteReq, bool) {
	if v, ok := c.Get(middleware.ParamsKey); ok {
		if params, ok := v.(*inout.ReporteReq); ok {
			return params, true
		}
	}

	var params inout.ReporteReq
	if err := c.ShouldBindQuery(&params); err != nil {
		response.BindError(c, err)
		return nil, false
	}
	return &params, true
}

// Exportar 下载当前数据的 xlsx 工作簿
func (rc *ReporteController) Exportar(c *gin.Context) {
	p := rc.pagina(c)

	var buf bytes.Buffer
	nombre, err := p.Exportar(&buf)
	if errors.Is(err, report_service.ErrExportacionDeshabilitada) {
		response.Error(c, response.EXPORT_DISABLED)
		return
	}
	if err != nil {
		log.Printf("[ERROR] 导出失败: %v", err)
		response.Error(c, response.INTERNAL_ERROR)
		return
	}

	if rc.archivador.Habilitado() {
		if err := rc.archivador.Archivar(nombre, buf.Bytes(), nil); err != nil {
			log.Printf("[ERROR] 提交归档任务失败 %s: %v", nombre, err)
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, nombre))
	c.Data(http.StatusOK, report_service.XLSXContentType, buf.Bytes())
}

// RankingSVG 菜品排行条形图
func (rc *ReporteController) RankingSVG(c *gin.Context) {
	p := rc.pagina(c)

	var buf bytes.Buffer
	report_service.GraficoRanking(&buf, p.Reportes().RankingComidas)
	c.Data(http.StatusOK, "image/svg+xml", buf.Bytes())
}

// CerrarAviso 关闭错误提示
func (rc *ReporteController) CerrarAviso(c *gin.Context) {
	p := rc.pagina(c)
	p.CerrarAviso()
	response.Success(c, p.Vista())
}
