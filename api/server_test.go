package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/mock/gomock"

	"github.com/Tarun9121/project-lambok/api"
	"github.com/Tarun9121/project-lambok/db"
	"github.com/Tarun9121/project-lambok/mocks"
	"github.com/Tarun9121/project-lambok/models"
	"github.com/Tarun9121/project-lambok/telemetry"
	_ "github.com/mattn/go-sqlite3"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

// ─────────────────────────────────────────────────────────────────────────────
// GET /user
// ─────────────────────────────────────────────────────────────────────────────

func TestCurrentUser_IsFixed(t *testing.T) {
	u := api.CurrentUser()
	assert.Equal(t, 0, u.ID())
	assert.Equal(t, "tarun", u.Name())
	assert.Equal(t, "tarun@gmail.com", u.Email())
	assert.Equal(t, "0000", u.Password())
	assert.True(t, u.Equal(api.CurrentUser()))
}

func TestGetCurrentUser(t *testing.T) {
	srv := api.NewServer(api.Config{Logger: quietLogger()})

	for range 3 {
		rec := do(t, srv, http.MethodGet, "/user")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t,
			`{"id":0,"name":"tarun","email":"tarun@gmail.com","password":"0000"}`,
			rec.Body.String())
	}
}

func TestGetCurrentUser_DoesNotTouchStorage(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserRepository(ctrl)

	srv := api.NewServer(api.Config{Users: users, Logger: quietLogger()})
	rec := do(t, srv, http.MethodGet, "/user")

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Equal(api.CurrentUser()))
}

func TestGetCurrentUser_MethodNotAllowed(t *testing.T) {
	srv := api.NewServer(api.Config{Logger: quietLogger()})
	rec := do(t, srv, http.MethodPost, "/user")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Catalog routes
// ─────────────────────────────────────────────────────────────────────────────

func TestCatalogRoutes_NotMountedWithoutRepos(t *testing.T) {
	srv := api.NewServer(api.Config{Logger: quietLogger()})

	for _, path := range []string{"/users/1", "/products", "/products/12"} {
		rec := do(t, srv, http.MethodGet, path)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.JSONEq(t, `{"error":"not found"}`, rec.Body.String())
	}
}

func TestGetUserByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserRepository(ctrl)
	stored := models.NewUserBuilder().SetID(7).SetName("asha").SetEmail("asha@repo.com").Build()

	users.EXPECT().GetByID(gomock.Any(), 7).Return(stored, nil)
	users.EXPECT().GetByID(gomock.Any(), 8).Return(models.User{}, db.ErrNotFound)

	srv := api.NewServer(api.Config{Users: users, Logger: quietLogger()})

	rec := do(t, srv, http.MethodGet, "/users/7")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":7,"name":"asha","email":"asha@repo.com","password":""}`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/users/8")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodGet, "/users/abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid id")
}

func TestListProducts(t *testing.T) {
	poco := models.NewProductBuilder().SetProductID(12).SetProductName("pocoMobile").SetPrice(100).Build()
	samsung := poco.ToBuilder().SetProductID(10).SetProductName("samsung").Build()

	tests := []struct {
		name       string
		query      string
		setup      func(*mocks.MockProductRepository)
		wantStatus int
		wantBody   string
	}{
		{
			name:  "defaults",
			query: "",
			setup: func(m *mocks.MockProductRepository) {
				m.EXPECT().List(gomock.Any(), 50, 0).Return([]models.Product{samsung, poco}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody: `[{"productId":10,"productName":"samsung","price":100},
				{"productId":12,"productName":"pocoMobile","price":100}]`,
		},
		{
			name:  "paging",
			query: "?limit=1&offset=1",
			setup: func(m *mocks.MockProductRepository) {
				m.EXPECT().List(gomock.Any(), 1, 1).Return([]models.Product{poco}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `[{"productId":12,"productName":"pocoMobile","price":100}]`,
		},
		{
			name:  "empty",
			query: "?offset=10",
			setup: func(m *mocks.MockProductRepository) {
				m.EXPECT().List(gomock.Any(), 50, 10).Return(nil, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `[]`,
		},
		{name: "bad limit", query: "?limit=x", wantStatus: http.StatusBadRequest},
		{name: "zero limit", query: "?limit=0", wantStatus: http.StatusBadRequest},
		{name: "huge limit", query: "?limit=5000", wantStatus: http.StatusBadRequest},
		{name: "negative offset", query: "?offset=-1", wantStatus: http.StatusBadRequest},
		{
			name:  "storage failure",
			query: "",
			setup: func(m *mocks.MockProductRepository) {
				m.EXPECT().List(gomock.Any(), 50, 0).Return(nil, errors.New("disk on fire"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"internal error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			products := mocks.NewMockProductRepository(ctrl)
			if tt.setup != nil {
				tt.setup(products)
			}
			srv := api.NewServer(api.Config{Products: products, Logger: quietLogger()})

			rec := do(t, srv, http.MethodGet, "/products"+tt.query)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestGetProduct(t *testing.T) {
	ctrl := gomock.NewController(t)
	products := mocks.NewMockProductRepository(ctrl)
	poco := models.NewProductBuilder().SetProductID(12).SetProductName("pocoMobile").SetPrice(99.5).Build()

	products.EXPECT().GetByID(gomock.Any(), 12).Return(poco, nil)
	products.EXPECT().GetByID(gomock.Any(), 13).Return(models.Product{}, &db.DBError{Sentinel: db.ErrNotFound})

	srv := api.NewServer(api.Config{Products: products, Logger: quietLogger()})

	rec := do(t, srv, http.MethodGet, "/products/12")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"productId":12,"productName":"pocoMobile","price":99.5}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/products/13").Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Health
// ─────────────────────────────────────────────────────────────────────────────

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return db.ErrConnectionFailed }

func TestHealthz(t *testing.T) {
	d, err := db.Open(db.Config{DriverName: "sqlite3", DSN: ":memory:", MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	tests := []struct {
		name       string
		pinger     api.Pinger
		wantStatus int
		wantBody   string
	}{
		{"no database", nil, http.StatusOK, `{"status":"ok"}`},
		{"database up", d, http.StatusOK, `{"status":"ok"}`},
		{"database down", failingPinger{}, http.StatusServiceUnavailable, `{"status":"unavailable"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := api.Config{Logger: quietLogger()}
			if tt.pinger != nil {
				cfg.DB = tt.pinger
			}
			rec := do(t, api.NewServer(cfg), http.MethodGet, "/healthz")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────────────────────────────────────

func TestRequestID(t *testing.T) {
	srv := api.NewServer(api.Config{Logger: quietLogger()})

	rec := do(t, srv, http.MethodGet, "/user")
	generated := rec.Header().Get(api.HeaderRequestID)
	assert.Len(t, generated, 20, "xid string form")

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.Header.Set(api.HeaderRequestID, "caller-supplied")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, "caller-supplied", rec.Header().Get(api.HeaderRequestID))
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	srv := api.NewServer(api.Config{Logger: slog.New(slog.NewJSONHandler(&buf, nil))})

	rec := do(t, srv, http.MethodGet, "/user")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "api: request", entry["msg"])
	assert.Equal(t, "/user", entry["path"])
	assert.EqualValues(t, 200, entry["status"])
	assert.Equal(t, rec.Header().Get(api.HeaderRequestID), entry["request_id"])
}

func TestMetricsAndTracing(t *testing.T) {
	collector := telemetry.NewCollector(prometheus.NewRegistry())
	exporter := tracetest.NewInMemoryExporter()
	tracer := telemetry.NewTracer(sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter)))

	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserRepository(ctrl)
	users.EXPECT().GetByID(gomock.Any(), 3).Return(models.User{}, db.ErrNotFound)

	srv := api.NewServer(api.Config{
		Users:   users,
		Logger:  quietLogger(),
		Metrics: collector,
		Tracer:  tracer,
	})

	do(t, srv, http.MethodGet, "/user")
	do(t, srv, http.MethodGet, "/users/3")

	n, err := testutil.GatherAndCount(collector.Registry(), "lambok_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "GET /user", spans[0].Name)
	assert.Equal(t, "GET /users/{id}", spans[1].Name)

	rec := do(t, srv, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `lambok_http_requests_total{code="404",method="GET",route="/users/{id}"} 1`)
}

// ─────────────────────────────────────────────────────────────────────────────
// Run
// ─────────────────────────────────────────────────────────────────────────────

func TestRun_GracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := api.NewServer(api.Config{Logger: quietLogger()})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, ln, time.Second) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/user")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"name":"tarun"`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
