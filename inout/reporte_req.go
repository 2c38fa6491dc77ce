package inout

// ReporteReq 报表查询参数，两个日期都为空时只返回当前页面状态
type ReporteReq struct {
	FechaInicio string `form:"fechaInicio" binding:"omitempty,datetime=2006-01-02"`
	FechaFin    string `form:"fechaFin" binding:"omitempty,datetime=2006-01-02"`
}

// ExportReq CLI 导出参数
type ExportReq struct {
	Inicio string `validate:"required,datetime=2006-01-02"`
	Fin    string `validate:"required,datetime=2006-01-02"`
	Dir    string
}
