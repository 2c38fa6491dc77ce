package report_service

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"restaurante-admin/model/report_model"
)

// Tabla 页面上的一张表
type Tabla struct {
	Titulo   string     `json:"titulo"`
	Columnas []string   `json:"columnas"`
	Filas    [][]string `json:"filas"`
}

func moneda(d decimal.Decimal) string {
	return "$" + d.String()
}

// Tablas 按页面顺序生成五张表
func Tablas(r report_model.Reportes) []Tabla {
	ranking := Tabla{Titulo: "Ranking de Comidas Más Pedidas", Columnas: []string{"Comida", "Pedidos"}, Filas: [][]string{}}
	for _, x := range r.RankingComidas {
		ranking.Filas = append(ranking.Filas, []string{x.Nombre, strconv.FormatInt(x.Pedidos, 10)})
	}

	diarios := Tabla{Titulo: "Ingresos Diarios", Columnas: []string{"Fecha", "Ingresos"}, Filas: [][]string{}}
	for _, x := range r.IngresosDiarios {
		diarios.Filas = append(diarios.Filas, []string{x.Fecha, moneda(x.Total)})
	}

	mensuales := Tabla{Titulo: "Ingresos Mensuales", Columnas: []string{"Mes", "Ingresos"}, Filas: [][]string{}}
	for _, x := range r.IngresosMensuales {
		mensuales.Filas = append(mensuales.Filas, []string{x.Fecha, moneda(x.Total)})
	}

	clientes := Tabla{Titulo: "Pedidos por Cliente", Columnas: []string{"Cliente", "Pedidos"}, Filas: [][]string{}}
	for _, x := range r.PedidosPorCliente {
		clientes.Filas = append(clientes.Filas, []string{x.Nombre, strconv.FormatInt(x.Pedidos, 10)})
	}

	ganancia := Tabla{Titulo: "Ganancia", Columnas: []string{"Fecha", "Ganancia"}, Filas: [][]string{}}
	for _, x := range r.Ganancia {
		ganancia.Filas = append(ganancia.Filas, []string{x.Fecha, moneda(x.Total)})
	}

	return []Tabla{ranking, diarios, mensuales, clientes, ganancia}
}

// EscribirTablas 以对齐文本输出表格
func EscribirTablas(w io.Writer, tablas []Tabla) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, t := range tablas {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "%s\n", t.Titulo)
		fmt.Fprintf(tw, "%s\n", strings.Join(t.Columnas, "\t"))
		for _, fila := range t.Filas {
			fmt.Fprintf(tw, "%s\n", strings.Join(fila, "\t"))
		}
	}
	return tw.Flush()
}
