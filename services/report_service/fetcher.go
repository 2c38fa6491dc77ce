package report_service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"restaurante-admin/model/report_model"
	"restaurante-admin/pkg/cache"
	"restaurante-admin/pkg/monitoring"
)

// Progreso 每获取完一个数据集回调一次
type Progreso func(d report_model.Dataset, filas int)

// Obtenedor 按日期区间获取五个报表
type Obtenedor interface {
	Obtener(ctx context.Context, r report_model.Rango, progreso Progreso) (report_model.Reportes, error)
}

// Fetcher 顺序请求五个报表，任意一个失败则中止
type Fetcher struct {
	backend Backend
	cache   *cache.CacheManager
	ttl     time.Duration
}

// NewFetcher cm 为 nil 或 ttl 为 0 时不缓存
func NewFetcher(backend Backend, cm *cache.CacheManager, ttl time.Duration) *Fetcher {
	return &Fetcher{backend: backend, cache: cm, ttl: ttl}
}

// Obtener 依次获取排行、日收入、月收入、客户订单、利润。
// 只有五个请求全部成功才返回结果。
func (f *Fetcher) Obtener(ctx context.Context, r report_model.Rango, progreso Progreso) (report_model.Reportes, error) {
	var out report_model.Reportes

	if err := r.Validar(); err != nil {
		return out, err
	}

	notify := func(d report_model.Dataset, filas int) {
		if progreso != nil {
			progreso(d, filas)
		}
	}

	ranking, err := cargar(ctx, f, report_model.DatasetRankingComidas, r, func(ctx context.Context) ([]report_model.RankingComida, error) {
		return f.backend.RankingComidas(ctx, r)
	})
	if err != nil {
		return out, err
	}
	notify(report_model.DatasetRankingComidas, len(ranking))

	diarios, err := cargar(ctx, f, report_model.DatasetIngresosDiarios, r, func(ctx context.Context) ([]report_model.Ingreso, error) {
		return f.backend.Ingresos(ctx, r, report_model.PeriodoDiario)
	})
	if err != nil {
		return out, err
	}
	notify(report_model.DatasetIngresosDiarios, len(diarios))

	mensuales, err := cargar(ctx, f, report_model.DatasetIngresosMensuales, r, func(ctx context.Context) ([]report_model.Ingreso, error) {
		return f.backend.Ingresos(ctx, r, report_model.PeriodoMensual)
	})
	if err != nil {
		return out, err
	}
	notify(report_model.DatasetIngresosMensuales, len(mensuales))

	clientes, err := cargar(ctx, f, report_model.DatasetPedidosPorCliente, r, func(ctx context.Context) ([]report_model.PedidoCliente, error) {
		return f.backend.PedidosPorCliente(ctx, r)
	})
	if err != nil {
		return out, err
	}
	notify(report_model.DatasetPedidosPorCliente, len(clientes))

	ganancia, err := cargar(ctx, f, report_model.DatasetGanancia, r, func(ctx context.Context) ([]report_model.Ganancia, error) {
		return f.backend.Ganancia(ctx, r)
	})
	if err != nil {
		return out, err
	}
	notify(report_model.DatasetGanancia, len(ganancia))

	out = report_model.Reportes{
		RankingComidas:    ranking,
		IngresosDiarios:   diarios,
		IngresosMensuales: mensuales,
		PedidosPorCliente: clientes,
		Ganancia:          ganancia,
	}
	log.Printf("[INFO] reportes %s..%s: ranking=%d diarios=%d mensuales=%d clientes=%d ganancia=%d",
		r.Inicio, r.Fin, len(ranking), len(diarios), len(mensuales), len(clientes), len(ganancia))
	return out, nil
}

func cacheKey(d report_model.Dataset, r report_model.Rango) string {
	return fmt.Sprintf("reportes:%s:%s:%s", d.Key(), r.Inicio, r.Fin)
}

// cargar 先查缓存，未命中时调用后端并写回缓存
func cargar[T any](ctx context.Context, f *Fetcher, d report_model.Dataset, r report_model.Rango, load func(context.Context) ([]T, error)) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	useCache := f.cache != nil && f.ttl > 0
	key := cacheKey(d, r)

	if useCache {
		var cached []T
		err := f.cache.Get(ctx, key, &cached)
		switch {
		case err == nil:
			monitoring.RecordCacheLookup(d.Key(), true)
			return cached, nil
		case errors.Is(err, cache.ErrCacheMiss), errors.Is(err, cache.ErrCacheDisabled):
			monitoring.RecordCacheLookup(d.Key(), false)
		default:
			log.Printf("[WARN] cache get %s: %v", key, err)
		}
	}

	rows, err := load(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtener %s: %w", d.Label(), err)
	}

	if useCache {
		if err := f.cache.Set(ctx, key, rows, f.ttl); err != nil {
			log.Printf("[WARN] cache set %s: %v", key, err)
		}
	}
	return rows, nil
}
