package report_model

import (
	"errors"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

func TestRangoValidar(t *testing.T) {
	tests := []struct {
		name  string
		rango Rango
		want  error
	}{
		{name: "valid", rango: Rango{Inicio: "2024-01-01", Fin: "2024-01-31"}},
		{name: "same day", rango: Rango{Inicio: "2024-01-01", Fin: "2024-01-01"}},
		{name: "missing end", rango: Rango{Inicio: "2024-01-01"}, want: ErrRangoIncompleto},
		{name: "missing start", rango: Rango{Fin: "2024-01-01"}, want: ErrRangoIncompleto},
		{name: "inverted", rango: Rango{Inicio: "2024-02-01", Fin: "2024-01-31"}, want: ErrRangoInvalido},
		{name: "bad format", rango: Rango{Inicio: "01/01/2024", Fin: "2024-01-31"}, want: ErrRangoInvalido},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rango.Validar()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReportesCompletos(t *testing.T) {
	r := Reportes{
		RankingComidas:    []RankingComida{{Nombre: "Pizza", Pedidos: 12}},
		IngresosDiarios:   []Ingreso{{Fecha: "2024-01-01", Total: decimal.NewFromInt(10)}},
		IngresosMensuales: []Ingreso{{Fecha: "2024-01", Total: decimal.NewFromInt(10)}},
		PedidosPorCliente: []PedidoCliente{{Nombre: "Ana", Pedidos: 3}},
	}
	if r.Completos() {
		t.Fatal("expected incomplete without ganancia")
	}

	r.Ganancia = []Ganancia{{Fecha: "2024-01-01", Total: decimal.NewFromInt(4)}}
	if !r.Completos() {
		t.Fatal("expected complete once all five datasets have rows")
	}
	if r.Filas(DatasetGanancia) != 1 {
		t.Fatalf("got %d rows", r.Filas(DatasetGanancia))
	}
}

func TestMontoJSONNumber(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{name: "ingreso", value: Ingreso{Fecha: "2024-01", Total: decimal.RequireFromString("12.5")}, want: `{"fecha":"2024-01","total":12.5}`},
		{name: "ganancia", value: Ganancia{Fecha: "2024-01-02", Total: decimal.Zero}, want: `{"fecha":"2024-01-02","total":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.value)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(got) != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestReportesJSONKeepsDecimal(t *testing.T) {
	in := Reportes{IngresosMensuales: []Ingreso{{Fecha: "2024-01", Total: decimal.RequireFromString("1500.05")}}}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out Reportes
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.IngresosMensuales) != 1 || !out.IngresosMensuales[0].Total.Equal(in.IngresosMensuales[0].Total) {
		t.Fatalf("got %+v", out.IngresosMensuales)
	}
}

func TestDatasetLabels(t *testing.T) {
	want := []string{"Ranking de Comidas", "Ingresos Diarios", "Ingresos Mensuales", "Pedidos por Cliente", "Ganancia"}
	if len(Datasets) != len(want) {
		t.Fatalf("got %d datasets", len(Datasets))
	}
	for i, d := range Datasets {
		if d.Label() != want[i] {
			t.Errorf("dataset %d: got %q, want %q", i, d.Label(), want[i])
		}
	}
}

func TestPeriodoValido(t *testing.T) {
	if !PeriodoDiario.Valido() || !PeriodoMensual.Valido() {
		t.Fatal("expected diario and mensual to be valid")
	}
	if Periodo("semanal").Valido() {
		t.Fatal("semanal must be invalid")
	}
}
