package report_model

import (
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// FechaLayout 报表日期格式
const FechaLayout = "2006-01-02"

// RankingComida 菜品及其被点次数
type RankingComida struct {
	Nombre  string `json:"nombre"`
	Pedidos int64  `json:"pedidos"`
}

// Ingreso 某一周期（日或月）的收入
type Ingreso struct {
	Fecha string          `json:"fecha"`
	Total decimal.Decimal `json:"total"`
}

// PedidoCliente 客户及其订单数
type PedidoCliente struct {
	Nombre  string `json:"nombre"`
	Pedidos int64  `json:"pedidos"`
}

// Ganancia 某一周期的利润
type Ganancia struct {
	Fecha string          `json:"fecha"`
	Total decimal.Decimal `json:"total"`
}

// montoJSON total 以数字而不是字符串输出
type montoJSON struct {
	Fecha string      `json:"fecha"`
	Total json.Number `json:"total"`
}

func (i Ingreso) MarshalJSON() ([]byte, error) {
	return json.Marshal(montoJSON{Fecha: i.Fecha, Total: json.Number(i.Total.String())})
}

func (g Ganancia) MarshalJSON() ([]byte, error) {
	return json.Marshal(montoJSON{Fecha: g.Fecha, Total: json.Number(g.Total.String())})
}

// Periodo 收入统计粒度
type Periodo string

const (
	PeriodoDiario  Periodo = "diario"
	PeriodoMensual Periodo = "mensual"
)

// Valido 是否为支持的粒度
func (p Periodo) Valido() bool {
	return p == PeriodoDiario || p == PeriodoMensual
}

// Dataset 页面上的五个报表数据集
type Dataset int

const (
	DatasetRankingComidas Dataset = iota
	DatasetIngresosDiarios
	DatasetIngresosMensuales
	DatasetPedidosPorCliente
	DatasetGanancia
)

// Datasets 按页面与导出顺序排列
var Datasets = []Dataset{
	DatasetRankingComidas,
	DatasetIngresosDiarios,
	DatasetIngresosMensuales,
	DatasetPedidosPorCliente,
	DatasetGanancia,
}

var datasetLabels = map[Dataset]string{
	DatasetRankingComidas:    "Ranking de Comidas",
	DatasetIngresosDiarios:   "Ingresos Diarios",
	DatasetIngresosMensuales: "Ingresos Mensuales",
	DatasetPedidosPorCliente: "Pedidos por Cliente",
	DatasetGanancia:          "Ganancia",
}

var datasetKeys = map[Dataset]string{
	DatasetRankingComidas:    "ranking-comidas",
	DatasetIngresosDiarios:   "ingresos-diarios",
	DatasetIngresosMensuales: "ingresos-mensuales",
	DatasetPedidosPorCliente: "pedidos-por-cliente",
	DatasetGanancia:          "ganancia",
}

// Label 数据集名称，同时用作工作表名
func (d Dataset) Label() string {
	if l, ok := datasetLabels[d]; ok {
		return l
	}
	return fmt.Sprintf("Dataset(%d)", int(d))
}

// Key 用于缓存键和指标标签
func (d Dataset) Key() string {
	if k, ok := datasetKeys[d]; ok {
		return k
	}
	return fmt.Sprintf("dataset-%d", int(d))
}

func (d Dataset) String() string {
	return d.Label()
}

var (
	// ErrRangoIncompleto 两个日期必须都已选择
	ErrRangoIncompleto = errors.New("rango de fechas incompleto")
	// ErrRangoInvalido 日期格式错误或结束日期早于开始日期
	ErrRangoInvalido = errors.New("rango de fechas inválido")
)

// Rango 报表日期区间（YYYY-MM-DD，闭区间）
type Rango struct {
	Inicio string `json:"fechaInicio"`
	Fin    string `json:"fechaFin"`
}

// Completo 两个日期都不为空
func (r Rango) Completo() bool {
	return r.Inicio != "" && r.Fin != ""
}

// Validar 检查日期格式以及 Fin >= Inicio
func (r Rango) Validar() error {
	if !r.Completo() {
		return ErrRangoIncompleto
	}
	inicio, err := time.Parse(FechaLayout, r.Inicio)
	if err != nil {
		return fmt.Errorf("%w: fechaInicio %q", ErrRangoInvalido, r.Inicio)
	}
	fin, err := time.Parse(FechaLayout, r.Fin)
	if err != nil {
		return fmt.Errorf("%w: fechaFin %q", ErrRangoInvalido, r.Fin)
	}
	if fin.Before(inicio) {
		return fmt.Errorf("%w: %s es anterior a %s", ErrRangoInvalido, r.Fin, r.Inicio)
	}
	return nil
}

// Reportes 一次完整查询得到的五个数据集
type Reportes struct {
	RankingComidas    []RankingComida `json:"rankingComidas"`
	IngresosDiarios   []Ingreso       `json:"ingresosDiarios"`
	IngresosMensuales []Ingreso       `json:"ingresosMensuales"`
	PedidosPorCliente []PedidoCliente `json:"pedidosPorCliente"`
	Ganancia          []Ganancia      `json:"ganancia"`
}

// Completos 五个数据集都不为空时才允许导出
func (r Reportes) Completos() bool {
	return len(r.RankingComidas) > 0 &&
		len(r.IngresosDiarios) > 0 &&
		len(r.IngresosMensuales) > 0 &&
		len(r.PedidosPorCliente) > 0 &&
		len(r.Ganancia) > 0
}

// Filas 数据集的行数
func (r Reportes) Filas(d Dataset) int {
	switch d {
	case DatasetRankingComidas:
		return len(r.RankingComidas)
	case DatasetIngresosDiarios:
		return len(r.IngresosDiarios)
	case DatasetIngresosMensuales:
		return len(r.IngresosMensuales)
	case DatasetPedidosPorCliente:
		return len(r.PedidosPorCliente)
	case DatasetGanancia:
		return len(r.Ganancia)
	}
	return 0
}
