package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ChristianJLC/web/internal/config"
	"github.com/ChristianJLC/web/internal/infra"
	"github.com/ChristianJLC/web/internal/model"
	"github.com/ChristianJLC/web/internal/observability"
	"github.com/ChristianJLC/web/internal/repository"
	"github.com/ChristianJLC/web/internal/worker"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	t      *testing.T
	engine *gin.Engine
	mr     *miniredis.Miniredis
	token  string
}

func testConfig() *config.Config {
	return &config.Config{
		Env:                       "test",
		AllowedOrigins:            "*",
		LoginPath:                 "/login",
		JWTSecret:                 "router-test-secret-with-enough-length",
		JWTExpirationHours:        1,
		JWTRefreshHours:           24,
		VentasValidarStockEdicion: true,
		NombreNegocio:             "Repuestos Demo",
	}
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, infra.RunMigrations(db))

	hash, err := bcrypt.GenerateFromPassword([]byte("Prueba12#"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, repository.NewUsuarioRepository(db).Upsert(context.Background(),
		&model.Usuario{Username: "demo123", Nombre: "Demo User Flujo", PasswordHash: string(hash), Activo: true}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	engine := New(testConfig(), db, rdb, Options{
		Metrics:     observability.NewMetrics(),
		Dispatcher:  worker.NewDispatcher(rdb),
		MailBreaker: infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp")),
	})
	return &testEnv{t: t, engine: engine, mr: mr}
}

func (e *testEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login() *httptest.ResponseRecorder {
	e.t.Helper()
	w := e.do(http.MethodPost, "/v1/auth/login", map[string]string{"username": "demo123", "password": "Prueba12#"})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		AccessToken string `json:"access_token"`
	}
	decode(e.t, w, &body)
	e.token = body.AccessToken
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type idResp struct {
	ID string `json:"id"`
}

func TestFlujoCompleto(t *testing.T) {
	env := setupEnv(t)

	// 1. protected routes need a session
	w := env.do(http.MethodGet, "/v1/productos?page=2", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	var authErr struct {
		LoginURL string `json:"login_url"`
	}
	decode(t, w, &authErr)
	assert.Equal(t, "/login?callbackUrl=%2Fv1%2Fproductos%3Fpage%3D2", authErr.LoginURL)

	// 2. login sets the session cookie
	w = env.login()
	require.NotEmpty(t, w.Result().Cookies())

	// 3. catalog and supplier
	w = env.do(http.MethodPost, "/v1/productos", map[string]interface{}{
		"sku": "FIL-001", "nombre": "Filtro de aceite", "categoria": "Filtros",
		"precioCompra": "8", "precioVenta": "12.50", "minStock": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var prod idResp
	decode(t, w, &prod)

	w = env.do(http.MethodPost, "/v1/productos", map[string]interface{}{
		"sku": "FIL-001", "nombre": "Otro", "categoria": "Filtros", "precioCompra": "1", "precioVenta": "1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(http.MethodPost, "/v1/proveedores", map[string]interface{}{"nombre": "Importadora Sur", "ruc": "20123456789"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var prov idResp
	decode(t, w, &prov)

	// 4. compra adds stock
	w = env.do(http.MethodPost, "/v1/compras", map[string]interface{}{
		"proveedorId": prov.ID,
		"fecha":       "2024-03-15",
		"serie":       "F001",
		"numero":      "123",
		"items":       []map[string]interface{}{{"productoId": prod.ID, "cantidad": 5, "costoUnit": "10.50"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var compra struct {
		ID    string `json:"id"`
		Total string `json:"total"`
	}
	decode(t, w, &compra)
	assert.Equal(t, "52.5", compra.Total)

	var producto struct {
		Stock int `json:"stock"`
	}
	decode(t, env.do(http.MethodGet, "/v1/productos/"+prod.ID, nil), &producto)
	assert.Equal(t, 5, producto.Stock)

	// 5. overselling is rejected without side effects
	venta := func(cantidad int) *httptest.ResponseRecorder {
		return env.do(http.MethodPost, "/v1/ventas", map[string]interface{}{
			"nombreCliente": "Ana Torres",
			"items": []map[string]interface{}{
				{"productoId": prod.ID, "cantidad": cantidad, "precioUnit": "12.50", "descuento": "0.50"},
			},
		})
	}
	w = venta(9)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Stock insuficiente")

	w = venta(3)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var v idResp
	decode(t, w, &v)

	decode(t, env.do(http.MethodGet, "/v1/productos/"+prod.ID, nil), &producto)
	assert.Equal(t, 2, producto.Stock)

	// stock reached the minimum: an alert job was queued
	jobs, err := env.mr.List(worker.QueueAlertas)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)

	// 6. ledger and documents
	var movs struct {
		Total int64 `json:"total"`
		Data  []struct {
			Cantidad int `json:"cantidad"`
		} `json:"data"`
	}
	decode(t, env.do(http.MethodGet, "/v1/productos/"+prod.ID+"/movimientos", nil), &movs)
	assert.Equal(t, int64(2), movs.Total)

	for _, path := range []string{"/v1/ventas/" + v.ID + "/pdf", "/v1/compras/" + compra.ID + "/pdf"} {
		w = env.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")), path)
	}

	// 7. listings and dashboard
	var pagina struct {
		Total      int64 `json:"total"`
		TotalPages int   `json:"totalPages"`
	}
	decode(t, env.do(http.MethodGet, "/v1/compras?q=sur&from=2024-03-01&to=2024-03-31", nil), &pagina)
	assert.Equal(t, int64(1), pagina.Total)
	assert.Equal(t, 1, pagina.TotalPages)

	w = env.do(http.MethodGet, "/v1/ventas?q=torres&sort=cliente", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &pagina)
	assert.Equal(t, int64(1), pagina.Total)

	var dash struct {
		TotalProductos int64 `json:"totalProductos"`
		StockBajo      int64 `json:"stockBajo"`
	}
	decode(t, env.do(http.MethodGet, "/v1/dashboard", nil), &dash)
	assert.Equal(t, int64(1), dash.TotalProductos)
	assert.Equal(t, int64(1), dash.StockBajo)

	// 8. referenced records cannot be deleted
	assert.Equal(t, http.StatusConflict, env.do(http.MethodDelete, "/v1/productos/"+prod.ID, nil).Code)
	assert.Equal(t, http.StatusConflict, env.do(http.MethodDelete, "/v1/proveedores/"+prov.ID, nil).Code)

	// 9. deleting the sale returns its units
	assert.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, "/v1/ventas/"+v.ID, nil).Code)
	decode(t, env.do(http.MethodGet, "/v1/productos/"+prod.ID, nil), &producto)
	assert.Equal(t, 5, producto.Stock)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/v1/ventas/"+v.ID, nil).Code)
}

func TestLogoutRevocaLaSesion(t *testing.T) {
	env := setupEnv(t)
	env.login()

	w := env.do(http.MethodGet, "/v1/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Demo User Flujo")

	assert.Equal(t, http.StatusNoContent, env.do(http.MethodPost, "/v1/auth/logout", nil).Code)

	w = env.do(http.MethodGet, "/v1/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Sesion cerrada")
}

func TestCookieDeSesionYRedireccion(t *testing.T) {
	env := setupEnv(t)
	w := env.login()
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
	req.AddCookie(cookies[0])
	rec := httptest.NewRecorder()
	env.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// a browser without a session is sent to the login page
	req = httptest.NewRequest(http.MethodGet, "/v1/dashboard?mes=2024-03", nil)
	req.Header.Set("Accept", "text/html")
	rec = httptest.NewRecorder()
	env.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?callbackUrl=%2Fv1%2Fdashboard%3Fmes%3D2024-03", rec.Header().Get("Location"))
}

func TestLoginInvalido(t *testing.T) {
	env := setupEnv(t)
	w := env.do(http.MethodPost, "/v1/auth/login", map[string]string{"username": "demo123", "password": "incorrecta"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/v1/auth/login", map[string]string{"username": "demo123"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHealthYMetrics(t *testing.T) {
	env := setupEnv(t)

	w := env.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "connected", body["redis"])
	assert.Equal(t, "closed", body["smtp_circuit"])
	assert.Equal(t, float64(0), body["alertas_dlq"])

	w = env.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `route="/health"`)

	env.mr.Close()
	w = env.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
