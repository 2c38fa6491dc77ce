package report_service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"restaurante-admin/pkg/goroutinepool"
)

func TestArchivador_WritesFile(t *testing.T) {
	pool := goroutinepool.NewPool(1, 4)
	pool.Start()
	defer pool.Stop(time.Second)

	dir := filepath.Join(t.TempDir(), "archivo")
	a := NewArchivador(dir, pool)
	if !a.Habilitado() {
		t.Fatal("archiver should be enabled")
	}

	done := make(chan error, 1)
	if err := a.Archivar("../Reportes_2024-01-01_a_2024-01-31.xlsx", []byte("xlsx"), func(err error) { done <- err }); err != nil {
		t.Fatalf("submit: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("archive: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("archive task did not finish")
	}

	data, err := os.ReadFile(filepath.Join(dir, "Reportes_2024-01-01_a_2024-01-31.xlsx"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "xlsx" {
		t.Fatalf("got %q", data)
	}
}

func TestArchivador_Disabled(t *testing.T) {
	a := NewArchivador("", nil)
	if a.Habilitado() {
		t.Fatal("archiver without dir should be disabled")
	}
	if err := a.Archivar("x.xlsx", nil, nil); err != nil {
		t.Fatalf("got %v", err)
	}
}
