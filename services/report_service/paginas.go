package report_service

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"restaurante-admin/pkg/monitoring"
)

// Paginas 按会话保存的报表页面
type Paginas struct {
	mu        sync.Mutex
	paginas   map[string]*Pagina
	obtenedor Obtenedor
	idleTTL   time.Duration
	stop      chan struct{}
	stopOnce  sync.Once
}

// NewPaginas idleTTL 为页面最长空闲时间
func NewPaginas(obtenedor Obtenedor, idleTTL time.Duration) *Paginas {
	return &Paginas{
		paginas:   make(map[string]*Pagina),
		obtenedor: obtenedor,
		idleTTL:   idleTTL,
		stop:      make(chan struct{}),
	}
}

// Obtener 返回 id 对应的页面；id 为空或已过期时新建一个
func (ps *Paginas) Obtener(id string) *Pagina {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if p, ok := ps.paginas[id]; ok && id != "" {
		return p
	}

	p := NewPagina(uuid.NewString(), ps.obtenedor)
	ps.paginas[p.ID()] = p
	monitoring.UpdateActivePages(len(ps.paginas))
	return p
}

// Len 当前页面数
func (ps *Paginas) Len() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return len(ps.paginas)
}

// Limpiar 删除在 now-idleTTL 之前最后使用的页面，返回删除数
func (ps *Paginas) Limpiar(now time.Time) int {
	if ps.idleTTL <= 0 {
		return 0
	}
	limite := now.Add(-ps.idleTTL)

	ps.mu.Lock()
	defer ps.mu.Unlock()

	removed := 0
	for id, p := range ps.paginas {
		if p.inactivaDesde(limite) {
			p.cerrar()
			delete(ps.paginas, id)
			removed++
		}
	}
	monitoring.UpdateActivePages(len(ps.paginas))
	return removed
}

// IniciarLimpieza 定期清理空闲页面，Close 后停止
func (ps *Paginas) IniciarLimpieza(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case now := <-ticker.C:
				if n := ps.Limpiar(now); n > 0 {
					log.Printf("[INFO] 清理空闲报表页面: %d", n)
				}
			case <-ps.stop:
				return
			}
		}
	}()
}

// Close 停止清理协程并取消所有进行中的获取
func (ps *Paginas) Close() {
	ps.stopOnce.Do(func() { close(ps.stop) })

	ps.mu.Lock()
	defer ps.mu.Unlock()
	for _, p := range ps.paginas {
		p.cerrar()
	}
}
