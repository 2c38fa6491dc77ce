package report_service

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"restaurante-admin/model/report_model"
)

// ErrFormatoTupla 后端返回的元素不是 [etiqueta, valor] 形式
var ErrFormatoTupla = errors.New("formato de tupla inválido")

// tupla 后端返回的位置二元组：下标 0 为标签，下标 1 为数值
type tupla struct {
	etiqueta *string
	valor    json.Number
}

// parseTuplas 解析并校验二元组数组
func parseTuplas(endpoint string, body []byte) ([]tupla, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw []interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFormatoTupla, endpoint, err)
	}
	// 数组之后只允许空白
	var extra interface{}
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: datos después del arreglo", ErrFormatoTupla, endpoint)
	}

	tuplas := make([]tupla, 0, len(raw))
	for i, item := range raw {
		par, ok := item.([]interface{})
		if !ok || len(par) != 2 {
			return nil, fmt.Errorf("%w: %s[%d]: se esperaba un par", ErrFormatoTupla, endpoint, i)
		}

		var t tupla
		switch v := par[0].(type) {
		case nil:
		case string:
			t.etiqueta = &v
		default:
			return nil, fmt.Errorf("%w: %s[%d][0]: etiqueta no es texto", ErrFormatoTupla, endpoint, i)
		}

		n, ok := par[1].(json.Number)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d][1]: valor no numérico", ErrFormatoTupla, endpoint, i)
		}
		t.valor = n

		tuplas = append(tuplas, t)
	}
	return tuplas, nil
}

func (t tupla) texto() string {
	if t.etiqueta == nil {
		return ""
	}
	return *t.etiqueta
}

func (t tupla) conteo(endpoint string, i int) (int64, error) {
	n, err := t.valor.Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %s[%d][1]: %q no es entero", ErrFormatoTupla, endpoint, i, t.valor)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %s[%d][1]: conteo negativo %d", ErrFormatoTupla, endpoint, i, n)
	}
	return n, nil
}

func (t tupla) monto(endpoint string, i int) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(t.valor.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s[%d][1]: %v", ErrFormatoTupla, endpoint, i, err)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: %s[%d][1]: monto negativo %s", ErrFormatoTupla, endpoint, i, d)
	}
	return d, nil
}

func mapRankingComidas(endpoint string, tuplas []tupla) ([]report_model.RankingComida, error) {
	out := make([]report_model.RankingComida, 0, len(tuplas))
	for i, t := range tuplas {
		if t.etiqueta == nil {
			continue
		}
		n, err := t.conteo(endpoint, i)
		if err != nil {
			return nil, err
		}
		out = append(out, report_model.RankingComida{Nombre: *t.etiqueta, Pedidos: n})
	}
	return out, nil
}

func mapPedidosPorCliente(endpoint string, tuplas []tupla) ([]report_model.PedidoCliente, error) {
	out := make([]report_model.PedidoCliente, 0, len(tuplas))
	for i, t := range tuplas {
		n, err := t.conteo(endpoint, i)
		if err != nil {
			return nil, err
		}
		out = append(out, report_model.PedidoCliente{Nombre: t.texto(), Pedidos: n})
	}
	return out, nil
}

func mapIngresos(endpoint string, tuplas []tupla) ([]report_model.Ingreso, error) {
	out := make([]report_model.Ingreso, 0, len(tuplas))
	for i, t := range tuplas {
		total, err := t.monto(endpoint, i)
		if err != nil {
			return nil, err
		}
		out = append(out, report_model.Ingreso{Fecha: t.texto(), Total: total})
	}
	return out, nil
}

func mapGanancia(endpoint string, tuplas []tupla) ([]report_model.Ganancia, error) {
	out := make([]report_model.Ganancia, 0, len(tuplas))
	for i, t := range tuplas {
		total, err := t.monto(endpoint, i)
		if err != nil {
			return nil, err
		}
		out = append(out, report_model.Ganancia{Fecha: t.texto(), Total: total})
	}
	return out, nil
}
