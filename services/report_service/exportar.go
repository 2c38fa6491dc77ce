package report_service

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"restaurante-admin/model/report_model"
	"restaurante-admin/pkg/monitoring"
)

// ErrExportacionDeshabilitada 五个数据集中有空的，不能导出
var ErrExportacionDeshabilitada = errors.New("exportación deshabilitada: faltan datos en algún reporte")

// XLSXContentType 导出文件的 MIME 类型
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// NombreArchivo 导出文件名，例如 Reportes_2024-01-01_a_2024-01-31.xlsx
func NombreArchivo(r report_model.Rango) string {
	return fmt.Sprintf("Reportes_%s_a_%s.xlsx", r.Inicio, r.Fin)
}

// hoja 一个工作表的表头和数据行
type hoja struct {
	columnas []interface{}
	filas    [][]interface{}
}

func hojaDe(d report_model.Dataset, r report_model.Reportes) hoja {
	switch d {
	case report_model.DatasetRankingComidas:
		h := hoja{columnas: []interface{}{"nombre", "pedidos"}}
		for _, x := range r.RankingComidas {
			h.filas = append(h.filas, []interface{}{x.Nombre, x.Pedidos})
		}
		return h
	case report_model.DatasetIngresosDiarios:
		return hojaIngresos(r.IngresosDiarios)
	case report_model.DatasetIngresosMensuales:
		return hojaIngresos(r.IngresosMensuales)
	case report_model.DatasetPedidosPorCliente:
		h := hoja{columnas: []interface{}{"nombre", "pedidos"}}
		for _, x := range r.PedidosPorCliente {
			h.filas = append(h.filas, []interface{}{x.Nombre, x.Pedidos})
		}
		return h
	case report_model.DatasetGanancia:
		h := hoja{columnas: []interface{}{"fecha", "total"}}
		for _, x := range r.Ganancia {
			h.filas = append(h.filas, []interface{}{x.Fecha, x.Total.InexactFloat64()})
		}
		return h
	}
	return hoja{}
}

func hojaIngresos(ingresos []report_model.Ingreso) hoja {
	h := hoja{columnas: []interface{}{"fecha", "total"}}
	for _, x := range ingresos {
		h.filas = append(h.filas, []interface{}{x.Fecha, x.Total.InexactFloat64()})
	}
	return h
}

// ConstruirLibro 在内存中生成工作簿，每个数据集一个工作表。调用方负责 Close。
func ConstruirLibro(r report_model.Reportes) (*excelize.File, error) {
	f := excelize.NewFile()
	defaultSheet := f.GetSheetName(0)

	estiloEncabezado, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDDDDD"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	for i, d := range report_model.Datasets {
		nombre := d.Label()
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, nombre); err != nil {
				f.Close()
				return nil, fmt.Errorf("renombrar hoja %s: %w", nombre, err)
			}
		} else if _, err := f.NewSheet(nombre); err != nil {
			f.Close()
			return nil, fmt.Errorf("crear hoja %s: %w", nombre, err)
		}

		h := hojaDe(d, r)
		filas := append([][]interface{}{h.columnas}, h.filas...)
		for j, fila := range filas {
			celda, err := excelize.CoordinatesToCellName(1, j+1)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetSheetRow(nombre, celda, &fila); err != nil {
				f.Close()
				return nil, fmt.Errorf("escribir hoja %s fila %d: %w", nombre, j+1, err)
			}
		}

		ultima, err := excelize.CoordinatesToCellName(len(h.columnas), 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellStyle(nombre, "A1", ultima, estiloEncabezado); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// Exportar 生成工作簿并写入 w，返回文件名。数据不完整时返回 ErrExportacionDeshabilitada。
func Exportar(w io.Writer, rango report_model.Rango, r report_model.Reportes) (string, error) {
	if !r.Completos() {
		monitoring.RecordExport("disabled")
		return "", ErrExportacionDeshabilitada
	}

	f, err := ConstruirLibro(r)
	if err != nil {
		monitoring.RecordExport("error")
		return "", err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		monitoring.RecordExport("error")
		return "", fmt.Errorf("escribir libro: %w", err)
	}

	monitoring.RecordExport("ok")
	return NombreArchivo(rango), nil
}
