package health_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"

	"restaurante-admin/controllers/health"
	"restaurante-admin/model/report_model"
	"restaurante-admin/pkg/cache"
	"restaurante-admin/pkg/goroutinepool"
	"restaurante-admin/services/report_service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type nopObtenedor struct{}

func (nopObtenedor) Obtener(context.Context, report_model.Rango, report_service.Progreso) (report_model.Reportes, error) {
	return report_model.Reportes{}, nil
}

type respuesta struct {
	Code int                    `json:"code"`
	Data map[string]interface{} `json:"data"`
}

func newEngine(t *testing.T, redisEnabled bool) *gin.Engine {
	t.Helper()
	pool := goroutinepool.NewPool(1, 1)
	cm := cache.NewCacheManager(nil)
	t.Cleanup(cm.Close)
	paginas := report_service.NewPaginas(nopObtenedor{}, time.Minute)
	t.Cleanup(paginas.Close)
	paginas.Obtener("sesion-1")

	h := health.NewHealthController("test", pool, cm, paginas, redisEnabled)
	r := gin.New()
	r.GET("/health", h.CheckHealth)
	r.GET("/health/live", h.CheckLiveness)
	r.GET("/health/ready", h.CheckReadiness)
	r.GET("/health/system", h.GetSystemInfo)
	return r
}

func get(t *testing.T, r *gin.Engine, path string) respuesta {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("%s: status %d", path, w.Code)
	}
	var resp respuesta
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s: decode: %v", path, err)
	}
	return resp
}

func TestCheckHealth(t *testing.T) {
	resp := get(t, newEngine(t, false), "/health")
	if resp.Code != 200 {
		t.Fatalf("got code %d", resp.Code)
	}
	if resp.Data["status"] != "ok" || resp.Data["version"] != "test" {
		t.Fatalf("got %+v", resp.Data)
	}
	if resp.Data["paginas"] != float64(1) {
		t.Fatalf("got paginas %v", resp.Data["paginas"])
	}
	for _, key := range []string{"goroutine_pool", "cache", "redis"} {
		if _, ok := resp.Data[key]; !ok {
			t.Fatalf("missing %s in %+v", key, resp.Data)
		}
	}
	redis := resp.Data["redis"].(map[string]interface{})
	if redis["enabled"] != false || redis["connected"] != false {
		t.Fatalf("got redis %+v", redis)
	}
}

func TestCheckReadiness(t *testing.T) {
	tests := []struct {
		name         string
		redisEnabled bool
		wantCode     int
	}{
		{name: "redis disabled", redisEnabled: false, wantCode: 200},
		{name: "redis enabled but not connected", redisEnabled: true, wantCode: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, newEngine(t, tt.redisEnabled), "/health/ready")
			if resp.Code != tt.wantCode {
				t.Fatalf("got code %d, want %d", resp.Code, tt.wantCode)
			}
			if tt.wantCode == 200 && resp.Data["status"] != "ready" {
				t.Fatalf("got %+v", resp.Data)
			}
		})
	}
}

func TestLivenessAndSystemInfo(t *testing.T) {
	r := newEngine(t, false)
	if resp := get(t, r, "/health/live"); resp.Data["status"] != "alive" {
		t.Fatalf("got %+v", resp.Data)
	}
	resp := get(t, r, "/health/system")
	for _, key := range []string{"service", "system", "memory"} {
		if _, ok := resp.Data[key]; !ok {
			t.Fatalf("missing %s in %+v", key, resp.Data)
		}
	}
}
