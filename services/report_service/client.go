package report_service

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"restaurante-admin/model/report_model"
	"restaurante-admin/pkg/config"
	"restaurante-admin/pkg/monitoring"
)

// 报表后端接口路径
const (
	PathRankingComidas    = "ranking-comidas"
	PathIngresos          = "ingresos"
	PathPedidosPorCliente = "pedidos-por-cliente"
	PathGanancia          = "ganancia"
)

// maxErrorBody 错误响应最多保留的字节数
const maxErrorBody = 512

// Backend 报表后端，返回已映射的数据集
type Backend interface {
	RankingComidas(ctx context.Context, r report_model.Rango) ([]report_model.RankingComida, error)
	Ingresos(ctx context.Context, r report_model.Rango, periodo report_model.Periodo) ([]report_model.Ingreso, error)
	PedidosPorCliente(ctx context.Context, r report_model.Rango) ([]report_model.PedidoCliente, error)
	Ganancia(ctx context.Context, r report_model.Rango) ([]report_model.Ganancia, error)
}

// BackendError 后端返回非 2xx 状态码
type BackendError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s respondió %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Client 报表后端 HTTP 客户端
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient 根据配置创建客户端
func NewClient(cfg config.BackendConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// RankingComidas 菜品排行，名称为 null 的行被丢弃
func (c *Client) RankingComidas(ctx context.Context, r report_model.Rango) ([]report_model.RankingComida, error) {
	tuplas, err := c.get(ctx, PathRankingComidas, rangoQuery(r))
	if err != nil {
		return nil, err
	}
	return mapRankingComidas(PathRankingComidas, tuplas)
}

// Ingresos 按日或按月的收入
func (c *Client) Ingresos(ctx context.Context, r report_model.Rango, periodo report_model.Periodo) ([]report_model.Ingreso, error) {
	if !periodo.Valido() {
		return nil, fmt.Errorf("periodo no soportado: %q", periodo)
	}
	q := rangoQuery(r)
	q.Set("periodo", string(periodo))

	tuplas, err := c.get(ctx, PathIngresos, q)
	if err != nil {
		return nil, err
	}
	return mapIngresos(PathIngresos, tuplas)
}

// PedidosPorCliente 每个客户的订单数
func (c *Client) PedidosPorCliente(ctx context.Context, r report_model.Rango) ([]report_model.PedidoCliente, error) {
	tuplas, err := c.get(ctx, PathPedidosPorCliente, rangoQuery(r))
	if err != nil {
		return nil, err
	}
	return mapPedidosPorCliente(PathPedidosPorCliente, tuplas)
}

// Ganancia 利润
func (c *Client) Ganancia(ctx context.Context, r report_model.Rango) ([]report_model.Ganancia, error) {
	tuplas, err := c.get(ctx, PathGanancia, rangoQuery(r))
	if err != nil {
		return nil, err
	}
	return mapGanancia(PathGanancia, tuplas)
}

func rangoQuery(r report_model.Rango) url.Values {
	q := url.Values{}
	q.Set("fechaInicio", r.Inicio)
	q.Set("fechaFin", r.Fin)
	return q
}

// get 发送 GET 请求并解析二元组数组
func (c *Client) get(ctx context.Context, endpoint string, query url.Values) ([]tupla, error) {
	fullURL := c.baseURL + "/" + endpoint + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("crear solicitud %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		monitoring.RecordBackendRequest(endpoint, "error", time.Since(start))
		log.Printf("[ERROR] GET %s: %v", endpoint, err)
		return nil, fmt.Errorf("GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	monitoring.RecordBackendRequest(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("leer respuesta %s: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		log.Printf("[ERROR] GET %s status=%d", endpoint, resp.StatusCode)
		return nil, &BackendError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(body)}
	}

	return parseTuplas(endpoint, body)
}
