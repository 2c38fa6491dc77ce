package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/schollz/progressbar/v3"

	"restaurante-admin/inout"
	"restaurante-admin/model/report_model"
	"restaurante-admin/pkg/config"
	"restaurante-admin/pkg/response"
	"restaurante-admin/services/report_service"
)

// runExport 获取一个日期区间的五个报表，打印表格并写出 xlsx
func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	inicio := fs.String("inicio", "", "fecha inicio (YYYY-MM-DD)")
	fin := fs.String("fin", "", "fecha fin (YYYY-MM-DD)")
	dir := fs.String("dir", ".", "directorio de salida")
	quiet := fs.Bool("q", false, "no imprimir las tablas")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := inout.ExportReq{Inicio: *inicio, Fin: *fin, Dir: *dir}
	if err := validator.New().Struct(req); err != nil {
		return errors.New(response.FormatBindError(err))
	}

	if err := config.InitConfig(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	cfg := config.GetConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := report_service.NewFetcher(report_service.NewClient(cfg.Backend), nil, 0)
	rango := report_model.Rango{Inicio: req.Inicio, Fin: req.Fin}

	ruta, err := exportar(ctx, fetcher, rango, req.Dir, os.Stderr, tablasOut(*quiet))
	if err != nil {
		return err
	}
	log.Printf("[INFO] reporte exportado en %s", ruta)
	return nil
}

func tablasOut(quiet bool) io.Writer {
	if quiet {
		return nil
	}
	return os.Stdout
}

// exportar 获取数据并写到 dir，返回文件路径。tablas 不为 nil 时输出文本表格。
func exportar(ctx context.Context, o report_service.Obtenedor, rango report_model.Rango, dir string, progreso, tablas io.Writer) (string, error) {
	bar := progressbar.NewOptions(len(report_model.Datasets),
		progressbar.OptionSetWriter(progreso),
		progressbar.OptionSetDescription("Obteniendo reportes"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	reportes, err := o.Obtener(ctx, rango, func(d report_model.Dataset, filas int) {
		bar.Describe(fmt.Sprintf("%s (%d)", d.Label(), filas))
		_ = bar.Add(1)
	})
	_ = bar.Finish()
	if err != nil {
		return "", err
	}

	if tablas != nil {
		if err := report_service.EscribirTablas(tablas, report_service.Tablas(reportes)); err != nil {
			return "", err
		}
	}

	var buf bytes.Buffer
	nombre, err := report_service.Exportar(&buf, rango, reportes)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("crear directorio %s: %w", dir, err)
	}
	ruta := filepath.Join(dir, nombre)
	if err := os.WriteFile(ruta, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("escribir %s: %w", ruta, err)
	}
	return ruta, nil
}
