package report_service

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"restaurante-admin/model/report_model"
)

// 排行图尺寸
const (
	graficoAncho      = 640
	graficoEtiqueta   = 200
	graficoBarra      = 24
	graficoSeparacion = 8
	graficoMargen     = 40
)

// GraficoRanking 以水平条形图输出菜品排行 SVG
func GraficoRanking(w io.Writer, ranking []report_model.RankingComida) {
	alto := graficoMargen*2 + len(ranking)*(graficoBarra+graficoSeparacion)
	if len(ranking) == 0 {
		alto = graficoMargen * 3
	}

	canvas := svg.New(w)
	canvas.Start(graficoAncho, alto)
	canvas.Rect(0, 0, graficoAncho, alto, "fill:white")
	canvas.Text(graficoAncho/2, graficoMargen/2+6, "Ranking de Comidas Más Pedidas",
		"text-anchor:middle;font-size:16px;font-family:sans-serif")

	if len(ranking) == 0 {
		canvas.Text(graficoAncho/2, graficoMargen*2, "Sin datos",
			"text-anchor:middle;font-size:14px;fill:#888;font-family:sans-serif")
		canvas.End()
		return
	}

	var maximo int64
	for _, x := range ranking {
		if x.Pedidos > maximo {
			maximo = x.Pedidos
		}
	}

	anchoUtil := graficoAncho - graficoEtiqueta - graficoMargen
	for i, x := range ranking {
		y := graficoMargen + i*(graficoBarra+graficoSeparacion)
		ancho := 0
		if maximo > 0 {
			ancho = int(x.Pedidos * int64(anchoUtil) / maximo)
		}

		canvas.Text(graficoEtiqueta-8, y+graficoBarra-7, x.Nombre,
			"text-anchor:end;font-size:12px;font-family:sans-serif")
		canvas.Rect(graficoEtiqueta, y, ancho, graficoBarra, "fill:#1976d2")
		canvas.Text(graficoEtiqueta+ancho+4, y+graficoBarra-7, fmt.Sprintf("%d", x.Pedidos),
			"font-size:12px;font-family:sans-serif")
	}
	canvas.End()
}
