package report_service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"restaurante-admin/model/report_model"
	"restaurante-admin/pkg/monitoring"
)

const (
	// MensajeError 任意一个报表请求失败时展示的唯一提示
	MensajeError = "Error al obtener los reportes. Por favor, inténtelo más tarde."
	// MensajeRangoInvalido 结束日期早于开始日期或格式错误
	MensajeRangoInvalido = "La fecha fin debe ser igual o posterior a la fecha inicio."
	// DuracionAviso 提示自动消失的时间
	DuracionAviso = 6 * time.Second
)

// ErrResultadoObsoleto 刷新期间日期又被修改，本次结果被丢弃
var ErrResultadoObsoleto = errors.New("resultado obsoleto descartado")

// Aviso 短暂显示的错误提示
type Aviso struct {
	Mensaje string    `json:"mensaje"`
	Expira  time.Time `json:"expira"`
}

// Vista 页面快照
type Vista struct {
	ID                 string                `json:"id"`
	FechaInicio        string                `json:"fechaInicio"`
	FechaFin           string                `json:"fechaFin"`
	Reportes           report_model.Reportes `json:"reportes"`
	Tablas             []Tabla               `json:"tablas"`
	Aviso              *Aviso                `json:"aviso,omitempty"`
	ExportarHabilitado bool                  `json:"exportarHabilitado"`
}

// Pagina 一个报表页面的状态：所选日期、五个数据集和错误提示
type Pagina struct {
	mu         sync.Mutex
	id         string
	obtenedor  Obtenedor
	rango      report_model.Rango
	rangoDatos report_model.Rango // 当前数据对应的日期
	reportes   report_model.Reportes
	aviso      *Aviso
	generacion uint64
	cancelar   context.CancelFunc
	ultimoUso  time.Time
	now        func() time.Time
}

// NewPagina 创建空页面
func NewPagina(id string, obtenedor Obtenedor) *Pagina {
	return &Pagina{
		id:        id,
		obtenedor: obtenedor,
		now:       time.Now,
		ultimoUso: time.Now(),
	}
}

// ID 页面标识
func (p *Pagina) ID() string {
	return p.id
}

// SetFechas 保存日期；两个日期都不为空时重新获取全部报表。
// 新的调用会取消仍在进行的上一次获取，过期的结果不会覆盖新结果。
func (p *Pagina) SetFechas(ctx context.Context, inicio, fin string) error {
	p.mu.Lock()
	p.rango = report_model.Rango{Inicio: inicio, Fin: fin}
	p.ultimoUso = p.now()

	// 任何日期变化都让进行中的查询作废
	p.generacion++
	gen := p.generacion
	if p.cancelar != nil {
		p.cancelar()
		p.cancelar = nil
	}
	if !p.rango.Completo() {
		p.mu.Unlock()
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancelar = cancel
	rango := p.rango
	p.mu.Unlock()

	reportes, err := p.obtenedor.Obtener(runCtx, rango, nil)

	p.mu.Lock()
	defer p.mu.Unlock()
	cancel()

	if gen != p.generacion {
		monitoring.RecordRefresh("stale")
		return ErrResultadoObsoleto
	}
	p.cancelar = nil

	if err != nil {
		mensaje := MensajeError
		if errors.Is(err, report_model.ErrRangoInvalido) {
			mensaje = MensajeRangoInvalido
		}
		p.aviso = &Aviso{Mensaje: mensaje, Expira: p.now().Add(DuracionAviso)}
		monitoring.RecordRefresh("error")
		return err
	}

	p.reportes = reportes
	p.rangoDatos = rango
	p.aviso = nil
	monitoring.RecordRefresh("ok")
	return nil
}

// Rango 当前选择的日期
func (p *Pagina) Rango() report_model.Rango {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rango
}

// Reportes 当前数据集
func (p *Pagina) Reportes() report_model.Reportes {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reportes
}

// Aviso 未过期的提示，过期后返回 nil
func (p *Pagina) Aviso() *Aviso {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.avisoLocked()
}

func (p *Pagina) avisoLocked() *Aviso {
	if p.aviso != nil && !p.now().Before(p.aviso.Expira) {
		p.aviso = nil
	}
	if p.aviso == nil {
		return nil
	}
	a := *p.aviso
	return &a
}

// CerrarAviso 手动关闭提示
func (p *Pagina) CerrarAviso() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.aviso = nil
}

// ExportarHabilitado 五个数据集都有数据时才可导出
func (p *Pagina) ExportarHabilitado() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reportes.Completos()
}

// Vista 返回页面快照
func (p *Pagina) Vista() Vista {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Vista{
		ID:                 p.id,
		FechaInicio:        p.rango.Inicio,
		FechaFin:           p.rango.Fin,
		Reportes:           p.reportes,
		Tablas:             Tablas(p.reportes),
		Aviso:              p.avisoLocked(),
		ExportarHabilitado: p.reportes.Completos(),
	}
}

// Exportar 将当前数据写成工作簿，返回文件名
func (p *Pagina) Exportar(w io.Writer) (string, error) {
	p.mu.Lock()
	rango, reportes := p.rangoDatos, p.reportes
	p.ultimoUso = p.now()
	p.mu.Unlock()

	return Exportar(w, rango, reportes)
}

func (p *Pagina) inactivaDesde(t time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ultimoUso.Before(t)
}

func (p *Pagina) cerrar() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancelar != nil {
		p.cancelar()
		p.cancelar = nil
	}
}
