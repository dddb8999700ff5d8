package http_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/autotaller-api/internal/interfaces/http"
)

func currentPath(productID, warehouseID string) string {
	q := url.Values{"product_id": {productID}, "warehouse_id": {warehouseID}}
	return "/api/stock/current?" + q.Encode()
}

func TestRouter_CompraYCotizacionMuevenStock(t *testing.T) {
	s := newTestServer(t)
	wh, prod := s.seed()

	purchase := s.buy(wh, prod, "10", "100")
	assert.Equal(t, "Complete", purchase["status"])

	cur := s.admin(http.MethodGet, currentPath(prod, wh), nil, fiber.StatusOK)
	assert.Equal(t, "10", cur["quantity"])

	q := s.as(apphttp.RoleVendedor, http.MethodPost, "/api/quotations", map[string]any{
		"parts": []map[string]any{{"product_id": prod, "warehouse_id": wh, "quantity": "3", "rate": "150"}},
	}, fiber.StatusCreated)
	assert.NotEmpty(t, q["quotation_no"])

	cur = s.admin(http.MethodGet, currentPath(prod, wh), nil, fiber.StatusOK)
	assert.Equal(t, "7", cur["quantity"])

	product := s.admin(http.MethodGet, "/api/products/"+prod, nil, fiber.StatusOK)
	assert.Equal(t, "7", product["quantity"])
}

func TestRouter_CotizacionSinStock_Retorna409(t *testing.T) {
	s := newTestServer(t)
	wh, prod := s.seed()
	s.buy(wh, prod, "2", "100")

	body := s.as(apphttp.RoleVendedor, http.MethodPost, "/api/quotations", map[string]any{
		"parts": []map[string]any{{"product_id": prod, "warehouse_id": wh, "quantity": "5", "rate": "150"}},
	}, fiber.StatusConflict)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Filtro de aceite", details["product_name"])
	assert.Equal(t, "2", details["available"])
	assert.Equal(t, "5", details["requested"])

	cur := s.admin(http.MethodGet, currentPath(prod, wh), nil, fiber.StatusOK)
	assert.Equal(t, "2", cur["quantity"])
}

func TestRouter_VerifySinDiferencias(t *testing.T) {
	s := newTestServer(t)
	wh, prod := s.seed()
	s.buy(wh, prod, "4", "80")

	status, raw := s.do(call{method: http.MethodGet, path: "/api/stock/verify", domain: domainNorte, auth: token(t, tenantNorte, apphttp.RoleAdmin)})
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[]`, string(raw))

	status, raw = s.do(call{method: http.MethodGet, path: "/api/stock/positions", domain: domainNorte, auth: token(t, tenantNorte, apphttp.RoleAdmin)})
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(raw), `"quantity":"4"`)
}

func TestRouter_ReconcileSincrono(t *testing.T) {
	s := newTestServer(t)
	wh, prod := s.seed()
	s.buy(wh, prod, "3", "50")

	body := s.admin(http.MethodPost, "/api/stock/reconcile", nil, fiber.StatusOK)
	assert.Contains(t, body, "products_updated")
}

func TestRouter_KardexMasRecientePrimero(t *testing.T) {
	s := newTestServer(t)
	wh, prod := s.seed()
	s.buy(wh, prod, "5", "10")
	s.buy(wh, prod, "1", "12")

	body := s.admin(http.MethodGet, "/api/stock/movements?product_id="+prod, nil, fiber.StatusOK)
	items, ok := body["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].(map[string]any)["quantity"])
}

func TestRouter_VendedorNoPuedeComprar(t *testing.T) {
	s := newTestServer(t)
	wh, prod := s.seed()

	body := s.as(apphttp.RoleVendedor, http.MethodPost, "/api/purchases", map[string]any{
		"supplier_id":  "prov-1",
		"warehouse_id": wh,
		"lines":        []map[string]any{{"product_id": prod, "quantity": "1", "unit_cost": "1"}},
	}, fiber.StatusForbidden)
	assert.Equal(t, "FORBIDDEN", body["code"])
}

func TestRouter_BodegueroNoPuedeVerificar(t *testing.T) {
	s := newTestServer(t)
	s.as(apphttp.RoleBodeguero, http.MethodGet, "/api/stock/verify", nil, fiber.StatusForbidden)
}

func TestRouter_CompraSinLineas_Retorna400(t *testing.T) {
	s := newTestServer(t)
	wh, _ := s.seed()

	body := s.admin(http.MethodPost, "/api/purchases", map[string]any{
		"supplier_id":  "prov-1",
		"warehouse_id": wh,
	}, fiber.StatusBadRequest)
	assert.Equal(t, "VALIDATION", body["code"])
}

func TestRouter_ProductoInexistente_Retorna404(t *testing.T) {
	s := newTestServer(t)
	s.admin(http.MethodGet, "/api/products/no-existe", nil, fiber.StatusNotFound)
}

func TestRouter_TenantsAislados(t *testing.T) {
	s := newTestServer(t)
	wh, prod := s.seed()
	s.buy(wh, prod, "9", "20")

	status, raw := s.do(call{method: http.MethodGet, path: "/api/stock/positions", domain: domainSur, auth: token(t, tenantSur, apphttp.RoleAdmin)})
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[]`, string(raw))
}
