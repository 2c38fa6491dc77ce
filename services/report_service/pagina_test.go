package report_service

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"restaurante-admin/model/report_model"
)

// stubObtenedor 按调用顺序返回预设结果
type stubObtenedor struct {
	mu     sync.Mutex
	calls  []report_model.Rango
	result func(call int, r report_model.Rango) (report_model.Reportes, error)
}

func (s *stubObtenedor) Obtener(ctx context.Context, r report_model.Rango, _ Progreso) (report_model.Reportes, error) {
	s.mu.Lock()
	s.calls = append(s.calls, r)
	n := len(s.calls)
	s.mu.Unlock()
	return s.result(n, r)
}

func (s *stubObtenedor) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func reportesDe(nombre string) report_model.Reportes {
	monto := decimal.RequireFromString("100.25")
	return report_model.Reportes{
		RankingComidas:    []report_model.RankingComida{{Nombre: nombre, Pedidos: 12}},
		IngresosDiarios:   []report_model.Ingreso{{Fecha: "2024-01-01", Total: monto}},
		IngresosMensuales: []report_model.Ingreso{{Fecha: "2024-01", Total: monto}},
		PedidosPorCliente: []report_model.PedidoCliente{{Nombre: "Ana", Pedidos: 3}},
		Ganancia:          []report_model.Ganancia{{Fecha: "2024-01-01", Total: monto}},
	}
}

// fakeClock 可手动推进的时钟
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestPagina(o Obtenedor) (*Pagina, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)}
	p := NewPagina("test", o)
	p.now = clock.Now
	return p, clock
}

func TestPagina_IncompleteDatesDoNotFetch(t *testing.T) {
	stub := &stubObtenedor{result: func(int, report_model.Rango) (report_model.Reportes, error) {
		return reportesDe("Pizza"), nil
	}}
	p, _ := newTestPagina(stub)

	if err := p.SetFechas(context.Background(), "2024-01-01", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.count() != 0 {
		t.Fatalf("fetched with incomplete dates")
	}
	if p.Rango().Inicio != "2024-01-01" {
		t.Fatalf("date not stored: %+v", p.Rango())
	}
	if p.ExportarHabilitado() {
		t.Fatal("export enabled on empty page")
	}
}

func TestPagina_SuccessReplacesData(t *testing.T) {
	stub := &stubObtenedor{result: func(call int, _ report_model.Rango) (report_model.Reportes, error) {
		if call == 1 {
			return reportesDe("Pizza"), nil
		}
		return reportesDe("Tacos"), nil
	}}
	p, _ := newTestPagina(stub)
	ctx := context.Background()

	if err := p.SetFechas(ctx, "2024-01-01", "2024-01-31"); err != nil {
		t.Fatalf("first: %v", err)
	}
	if !p.ExportarHabilitado() {
		t.Fatal("export should be enabled")
	}
	if err := p.SetFechas(ctx, "2024-02-01", "2024-02-29"); err != nil {
		t.Fatalf("second: %v", err)
	}

	v := p.Vista()
	if v.Reportes.RankingComidas[0].Nombre != "Tacos" {
		t.Fatalf("data not replaced: %+v", v.Reportes.RankingComidas)
	}
	if v.FechaInicio != "2024-02-01" || v.FechaFin != "2024-02-29" {
		t.Fatalf("unexpected dates in view: %s..%s", v.FechaInicio, v.FechaFin)
	}
	if v.Aviso != nil {
		t.Fatalf("unexpected notice: %+v", v.Aviso)
	}
	if len(v.Tablas) != 5 {
		t.Fatalf("got %d tables", len(v.Tablas))
	}
}

func TestPagina_FailureKeepsDataAndShowsOneNotice(t *testing.T) {
	stub := &stubObtenedor{result: func(call int, _ report_model.Rango) (report_model.Reportes, error) {
		if call == 1 {
			return reportesDe("Pizza"), nil
		}
		return report_model.Reportes{}, errors.New("backend caído")
	}}
	p, clock := newTestPagina(stub)
	ctx := context.Background()

	if err := p.SetFechas(ctx, "2024-01-01", "2024-01-31"); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := p.SetFechas(ctx, "2024-02-01", "2024-02-29"); err == nil {
		t.Fatal("expected error")
	}

	aviso := p.Aviso()
	if aviso == nil || aviso.Mensaje != MensajeError {
		t.Fatalf("got notice %+v", aviso)
	}
	if got := p.Reportes().RankingComidas[0].Nombre; got != "Pizza" {
		t.Fatalf("datasets mutated on failure: %s", got)
	}

	// 导出仍使用上一次成功获取的日期
	var buf bytes.Buffer
	nombre, err := p.Exportar(&buf)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if nombre != "Reportes_2024-01-01_a_2024-01-31.xlsx" {
		t.Fatalf("got filename %s", nombre)
	}

	clock.Advance(DuracionAviso - time.Millisecond)
	if p.Aviso() == nil {
		t.Fatal("notice dismissed too early")
	}
	clock.Advance(time.Millisecond)
	if p.Aviso() != nil {
		t.Fatal("notice should auto-dismiss")
	}
}

func TestPagina_InvalidRangeNotice(t *testing.T) {
	stub := &stubObtenedor{result: func(_ int, r report_model.Rango) (report_model.Reportes, error) {
		return report_model.Reportes{}, r.Validar()
	}}
	p, _ := newTestPagina(stub)

	err := p.SetFechas(context.Background(), "2024-02-01", "2024-01-01")
	if !errors.Is(err, report_model.ErrRangoInvalido) {
		t.Fatalf("got %v, want ErrRangoInvalido", err)
	}
	if a := p.Aviso(); a == nil || a.Mensaje != MensajeRangoInvalido {
		t.Fatalf("got notice %+v", a)
	}
}

func TestPagina_SuccessClearsNotice(t *testing.T) {
	stub := &stubObtenedor{result: func(call int, _ report_model.Rango) (report_model.Reportes, error) {
		if call == 1 {
			return report_model.Reportes{}, errors.New("boom")
		}
		return reportesDe("Pizza"), nil
	}}
	p, _ := newTestPagina(stub)
	ctx := context.Background()

	_ = p.SetFechas(ctx, "2024-01-01", "2024-01-31")
	if p.Aviso() == nil {
		t.Fatal("expected notice after failure")
	}
	if err := p.SetFechas(ctx, "2024-01-01", "2024-01-31"); err != nil {
		t.Fatalf("second: %v", err)
	}
	if p.Aviso() != nil {
		t.Fatal("notice should be cleared on success")
	}
}

func TestPagina_CerrarAviso(t *testing.T) {
	stub := &stubObtenedor{result: func(int, report_model.Rango) (report_model.Reportes, error) {
		return report_model.Reportes{}, errors.New("boom")
	}}
	p, _ := newTestPagina(stub)

	_ = p.SetFechas(context.Background(), "2024-01-01", "2024-01-31")
	p.CerrarAviso()
	if p.Aviso() != nil {
		t.Fatal("notice should be closed")
	}
}

func TestPagina_StaleResultDiscarded(t *testing.T) {
	liberar := make(chan struct{})
	iniciado := make(chan struct{})

	stub := &stubObtenedor{result: func(call int, _ report_model.Rango) (report_model.Reportes, error) {
		if call == 1 {
			close(iniciado)
			<-liberar
			return reportesDe("Viejo"), nil
		}
		return reportesDe("Nuevo"), nil
	}}
	p, _ := newTestPagina(stub)
	ctx := context.Background()

	errCh := make(chan error, 1)
	go func() {
		errCh <- p.SetFechas(ctx, "2024-01-01", "2024-01-31")
	}()
	<-iniciado

	if err := p.SetFechas(ctx, "2024-02-01", "2024-02-29"); err != nil {
		t.Fatalf("second: %v", err)
	}
	close(liberar)

	if err := <-errCh; !errors.Is(err, ErrResultadoObsoleto) {
		t.Fatalf("got %v, want ErrResultadoObsoleto", err)
	}
	if got := p.Reportes().RankingComidas[0].Nombre; got != "Nuevo" {
		t.Fatalf("stale result overwrote newer data: %s", got)
	}
}

func TestPagina_ClearedDateDiscardsRunningFetch(t *testing.T) {
	liberar := make(chan struct{})
	iniciado := make(chan struct{})

	stub := &stubObtenedor{result: func(int, report_model.Rango) (report_model.Reportes, error) {
		close(iniciado)
		<-liberar
		return reportesDe("Viejo"), nil
	}}
	p, _ := newTestPagina(stub)
	ctx := context.Background()

	errCh := make(chan error, 1)
	go func() {
		errCh <- p.SetFechas(ctx, "2024-01-01", "2024-01-31")
	}()
	<-iniciado

	if err := p.SetFechas(ctx, "2024-03-01", ""); err != nil {
		t.Fatalf("clear end date: %v", err)
	}
	close(liberar)

	if err := <-errCh; !errors.Is(err, ErrResultadoObsoleto) {
		t.Fatalf("got %v, want ErrResultadoObsoleto", err)
	}
	if n := len(p.Reportes().RankingComidas); n != 0 {
		t.Fatalf("result for old dates applied: %d rows", n)
	}
	if p.ExportarHabilitado() {
		t.Fatal("export should be disabled")
	}
	v := p.Vista()
	if v.FechaInicio != "2024-03-01" || v.FechaFin != "" {
		t.Fatalf("got dates %q %q", v.FechaInicio, v.FechaFin)
	}
	if stub.count() != 1 {
		t.Fatalf("incomplete dates must not fetch, got %d calls", stub.count())
	}
}

func TestPagina_ExportDisabledWhenIncomplete(t *testing.T) {
	stub := &stubObtenedor{result: func(int, report_model.Rango) (report_model.Reportes, error) {
		r := reportesDe("Pizza")
		r.Ganancia = nil
		return r, nil
	}}
	p, _ := newTestPagina(stub)

	if err := p.SetFechas(context.Background(), "2024-01-01", "2024-01-31"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ExportarHabilitado() || p.Vista().ExportarHabilitado {
		t.Fatal("export should be disabled")
	}
	var buf bytes.Buffer
	if _, err := p.Exportar(&buf); !errors.Is(err, ErrExportacionDeshabilitada) {
		t.Fatalf("got %v, want ErrExportacionDeshabilitada", err)
	}
	if buf.Len() != 0 {
		t.Fatal("nothing should be written")
	}
}
