package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/autotaller-api/internal/application/inventory"
	"github.com/jhoicas/autotaller-api/internal/application/usecase"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	"github.com/jhoicas/autotaller-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/autotaller-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/autotaller-api/pkg/jwt"
	"github.com/jhoicas/autotaller-api/pkg/logger"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	tenantNorte   = "00000000-0000-0000-0000-0000000000a1"
	tenantSur     = "00000000-0000-0000-0000-0000000000b2"
	tenantCerrado = "00000000-0000-0000-0000-0000000000c3"
	domainNorte   = "norte.autotaller.co"
	domainSur     = "sur.autotaller.co"
	domainCerrado = "cerrado.autotaller.co"
)

type testServer struct {
	t   *testing.T
	app *fiber.App
}

// newTestServer arma el router completo sobre el almacén en memoria con tres tenants.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore(memory.Options{MaxRetries: 3, Timeout: 5 * time.Second})
	tenants := memory.NewTenants(
		&entity.Tenant{ID: tenantNorte, Domain: domainNorte, IsActive: true},
		&entity.Tenant{ID: tenantSur, Domain: domainSur, IsActive: true},
		&entity.Tenant{ID: tenantCerrado, Domain: domainCerrado, IsActive: false},
	)
	eng := inventory.NewEngine(inventory.EngineDeps{Tx: store})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		WarehouseUC:   usecase.NewWarehouseUseCase(store),
		ProductUC:     usecase.NewProductUseCase(store),
		Purchases:     inventory.NewPurchaseUseCase(eng),
		PurchaseOrder: inventory.NewPurchaseOrderUseCase(eng),
		Sales:         inventory.NewSaleUseCase(eng),
		Adjustments:   inventory.NewAdjustmentUseCase(eng),
		Returns:       inventory.NewPurchaseReturnUseCase(eng),
		Transfers:     inventory.NewTransferUseCase(eng),
		StockQuery:    inventory.NewStockQueryUseCase(eng),
		Replenishment: inventory.NewReplenishmentUseCase(eng),
		Tenants:       tenants,
		JWTSecret:     testJWTSecret,
		Log:           logger.Nop(),
	})
	return &testServer{t: t, app: app}
}

func token(t *testing.T, companyID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, companyID, role, "test", 60)
	require.NoError(t, err)
	return "Bearer " + tok
}

type call struct {
	method, path, domain, auth string
	body                       any
}

func (s *testServer) do(c call) (int, []byte) {
	s.t.Helper()
	var body io.Reader
	if c.body != nil {
		raw, err := json.Marshal(c.body)
		require.NoError(s.t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	req.Header.Set("Content-Type", "application/json")
	if c.domain != "" {
		req.Header.Set(apphttp.HeaderTenantDomain, c.domain)
	}
	if c.auth != "" {
		req.Header.Set("Authorization", c.auth)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp.StatusCode, out
}

// as ejecuta como admin del tenant norte y exige el código esperado.
func (s *testServer) as(role, method, path string, body any, wantStatus int) map[string]any {
	s.t.Helper()
	status, raw := s.do(call{method: method, path: path, domain: domainNorte, auth: token(s.t, tenantNorte, role), body: body})
	require.Equalf(s.t, wantStatus, status, "respuesta: %s", raw)
	var out map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(s.t, json.Unmarshal(raw, &out))
	}
	return out
}

func (s *testServer) admin(method, path string, body any, wantStatus int) map[string]any {
	s.t.Helper()
	return s.as(apphttp.RoleAdmin, method, path, body, wantStatus)
}

// seed crea una bodega y un producto en el tenant norte y devuelve sus ids.
func (s *testServer) seed() (warehouseID, productID string) {
	s.t.Helper()
	wh := s.admin(http.MethodPost, "/api/warehouses", map[string]any{"code": "MAIN", "name": "Principal"}, fiber.StatusCreated)
	prod := s.admin(http.MethodPost, "/api/products", map[string]any{
		"code": "FLT-001", "name": "Filtro de aceite", "unit": "und", "price": "150", "reorder_level": "5",
	}, fiber.StatusCreated)
	return wh["id"].(string), prod["id"].(string)
}

func (s *testServer) buy(warehouseID, productID, qty, cost string) map[string]any {
	s.t.Helper()
	return s.admin(http.MethodPost, "/api/purchases", map[string]any{
		"supplier_id":  "prov-1",
		"warehouse_id": warehouseID,
		"lines":        []map[string]any{{"product_id": productID, "quantity": qty, "unit_cost": cost}},
	}, fiber.StatusCreated)
}
