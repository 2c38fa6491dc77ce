package report_service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"restaurante-admin/pkg/goroutinepool"
)

// Archivador 在后台把导出的工作簿写入归档目录
type Archivador struct {
	dir  string
	pool *goroutinepool.Pool
}

// NewArchivador dir 为空时不归档
func NewArchivador(dir string, pool *goroutinepool.Pool) *Archivador {
	return &Archivador{dir: dir, pool: pool}
}

// Habilitado 是否配置了归档目录
func (a *Archivador) Habilitado() bool {
	return a != nil && a.dir != "" && a.pool != nil
}

// Archivar 提交归档任务；done 可为 nil
func (a *Archivador) Archivar(nombre string, data []byte, done func(error)) error {
	if !a.Habilitado() {
		return nil
	}

	copia := append([]byte(nil), data...)
	destino := filepath.Join(a.dir, filepath.Base(nombre))

	return a.pool.SubmitWithCallback("archivar:"+nombre, func(ctx context.Context) error {
		if err := os.MkdirAll(a.dir, 0o755); err != nil {
			return fmt.Errorf("crear directorio %s: %w", a.dir, err)
		}
		return os.WriteFile(destino, copia, 0o644)
	}, func(err error) {
		if err == nil {
			log.Printf("[INFO] reporte archivado en %s", destino)
		}
		if done != nil {
			done(err)
		}
	})
}
