package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/premiumdrop/storefront/internal/config"
	"github.com/premiumdrop/storefront/internal/domain/cart"
	"github.com/premiumdrop/storefront/internal/domain/checkout"
	"github.com/premiumdrop/storefront/internal/domain/comment"
	"github.com/premiumdrop/storefront/internal/domain/location"
	"github.com/premiumdrop/storefront/internal/domain/product"
	"github.com/premiumdrop/storefront/internal/interfaces/http/handlers"
	"github.com/premiumdrop/storefront/internal/interfaces/http/routes"
	"github.com/premiumdrop/storefront/internal/pkg/auth"
	"github.com/premiumdrop/storefront/internal/pkg/pdf"
)

const testCatalog = `[
  {"id": 1, "name": "Audífonos Pro", "price": 89000, "originalPrice": 120000,
   "images": ["audifonos 1.jpg"], "category": "Electronics", "rating": 4.5, "reviews": 120,
   "variants": [{"id": "negro", "name": "Negro", "price": 95000}]},
  {"id": 2, "name": "Lámpara LED", "price": 45000, "category": "Home & Kitchen", "featured": true},
  {"id": 3, "name": "Mouse Gamer", "price": 60000, "category": "Electronics"}
]`

const adminPassword = "Tienda#Segura9"

func init() {
	gin.SetMode(gin.TestMode)
}

type apiFixture struct {
	router   *gin.Engine
	products *product.Service
	carts    *cart.Service
	cookie   *http.Cookie
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger, _ := logtest.NewNullLogger()

	cfg := &config.Config{}
	cfg.App.Name = "premiumdrop-storefront"
	cfg.App.CompanyName = "PremiumDrop"
	cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
	cfg.JWT.AccessTokenExpiry = time.Hour
	cfg.Admin.Email = "admin@premiumdrop.co"
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	cfg.Admin.PasswordHash = string(hash)
	cfg.Security.BcryptCost = bcrypt.MinCost
	cfg.Store.FreeShippingThreshold = 200000
	cfg.Store.CartTTL = time.Hour
	cfg.Store.TimeZone = "America/Bogota"

	products := product.NewService(product.StaticSource(testCatalog), 10, logger)
	require.NoError(t, products.Load(context.Background()))

	table := location.DefaultTable()
	zone := time.FixedZone("COT", -5*60*60)
	estimator := location.NewEstimator(location.DefaultCalendar(), zone, logger).
		WithClock(func() time.Time { return time.Date(2024, 11, 8, 15, 0, 0, 0, time.UTC) })
	detector := location.NewDetector(table, http.DefaultClient, "", "", time.Second, logger)

	carts := cart.NewService(cart.NewRedisStorage(client, time.Hour), products, table, cfg.Store.FreeShippingThreshold, logger)
	checkoutService := checkout.NewService(carts, products, table, estimator, nil, "573115477984", logger)
	jwtManager := auth.NewJWTManager(cfg)

	h := &routes.Handlers{
		Product:  handlers.NewProductHandler(products),
		Comment:  handlers.NewCommentHandler(comment.NewService(client, logger), products, logger),
		Location: handlers.NewLocationHandler(table, estimator, detector, location.NewTracker(time.Hour), cfg, logger),
		Cart:     handlers.NewCartHandler(carts, products, cfg, logger),
		Checkout: handlers.NewCheckoutHandler(checkoutService, cfg, logger),
		Admin:    handlers.NewAdminHandler(products, nil, nil, pdf.NewService(cfg), jwtManager, cfg, logger),
	}

	r := gin.New()
	routes.SetupRoutes(r.Group("/api/v1"), h, jwtManager)

	return &apiFixture{router: r, products: products, carts: carts}
}

type envelope struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// do sends a request carrying the fixture's session cookie, adopting the one
// the server hands out on first contact
func (f *apiFixture) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if f.cookie != nil {
		req.AddCookie(f.cookie)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == "session_id" {
			f.cookie = c
		}
	}

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func decode(t *testing.T, raw json.RawMessage, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, dest))
}

func TestProducts(t *testing.T) {
	f := newAPIFixture(t)

	w, env := f.do(t, http.MethodGet, "/api/v1/products?category=Electronics&page=1&limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list product.ProductResponse
	decode(t, env.Data, &list)
	assert.Equal(t, 2, list.Pagination.Total)
	assert.Len(t, list.Products, 1)
	assert.True(t, list.Pagination.HasNext)

	_, env = f.do(t, http.MethodGet, "/api/v1/products?q=l%C3%A1mpara", nil)
	decode(t, env.Data, &list)
	require.Len(t, list.Products, 1)
	assert.Equal(t, int64(2), list.Products[0].ID)

	_, env = f.do(t, http.MethodGet, "/api/v1/products/categories", nil)
	var categories []product.Category
	decode(t, env.Data, &categories)
	require.Len(t, categories, 3)
	assert.Equal(t, product.AllCategories, categories[0].Key)
	assert.Equal(t, "Electrónica", categories[1].Label)

	_, env = f.do(t, http.MethodGet, "/api/v1/products/featured", nil)
	var featured []product.Product
	decode(t, env.Data, &featured)
	require.Len(t, featured, 1)
	assert.Equal(t, int64(2), featured[0].ID)
}

func TestGetProduct(t *testing.T) {
	f := newAPIFixture(t)

	w, env := f.do(t, http.MethodGet, "/api/v1/products/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var detail handlers.ProductDetail
	decode(t, env.Data, &detail)
	assert.Equal(t, "Audífonos Pro", detail.Product.Name)
	assert.Equal(t, 26, detail.DiscountPercentage)
	require.Len(t, detail.Images.Candidates, 1)
	assert.Equal(t, "imagenes/audifonos%201.jpg", detail.Images.Candidates[0][0])
	assert.Equal(t, product.PlaceholderImage, detail.Images.Placeholder)
	require.Len(t, detail.Related, 1)
	assert.Equal(t, int64(3), detail.Related[0].ID)

	w, _ = f.do(t, http.MethodGet, "/api/v1/products/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = f.do(t, http.MethodGet, "/api/v1/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestComments(t *testing.T) {
	f := newAPIFixture(t)

	w, _ := f.do(t, http.MethodPost, "/api/v1/products/1/comments", gin.H{"name": "", "text": "  Excelente sonido  "})
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = f.do(t, http.MethodPost, "/api/v1/products/1/comments", gin.H{"name": "Ana", "text": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.do(t, http.MethodPost, "/api/v1/products/99/comments", gin.H{"text": "hola"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, env := f.do(t, http.MethodGet, "/api/v1/products/1/comments", nil)
	var comments []comment.Comment
	decode(t, env.Data, &comments)
	require.Len(t, comments, 1)
	assert.Equal(t, comment.AnonymousName, comments[0].Name)
	assert.Equal(t, "Excelente sonido", comments[0].Text)
}

func TestCartFlow(t *testing.T) {
	f := newAPIFixture(t)

	w, env := f.do(t, http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": 1, "variant_id": "negro", "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, f.cookie, "session cookie issued")

	var resp handlers.CartResponse
	decode(t, env.Data, &resp)
	assert.Equal(t, 2, resp.ItemCount)
	assert.Equal(t, int64(190000), resp.SubTotal)

	w, _ = f.do(t, http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": 99, "quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = f.do(t, http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": 1, "quantity": 1000})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = f.do(t, http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": 1, "quantity": -3})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, env = f.do(t, http.MethodGet, "/api/v1/cart/count", nil)
	var count struct{ Count int }
	decode(t, env.Data, &count)
	assert.Equal(t, 2, count.Count)

	_, env = f.do(t, http.MethodGet, "/api/v1/cart/totals?department=antioquia&city=Medell%C3%ADn", nil)
	var totals handlers.CartTotalsResponse
	decode(t, env.Data, &totals)
	assert.Equal(t, int64(15000), totals.Totals.ShippingCost)
	assert.Equal(t, int64(205000), totals.Totals.TotalAmount)

	w, _ = f.do(t, http.MethodPatch, "/api/v1/cart/items/1::negro", gin.H{"action": "increase"})
	require.Equal(t, http.StatusOK, w.Code)

	_, env = f.do(t, http.MethodGet, "/api/v1/cart/totals?department=antioquia", nil)
	decode(t, env.Data, &totals)
	assert.Equal(t, int64(285000), totals.Totals.SubTotal)
	assert.True(t, totals.Totals.FreeShipping)
	assert.Equal(t, int64(285000), totals.Totals.TotalAmount)

	w, _ = f.do(t, http.MethodPatch, "/api/v1/cart/items/1::negro", gin.H{"action": "double"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.do(t, http.MethodPatch, "/api/v1/cart/items/2", gin.H{"action": "increase"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = f.do(t, http.MethodDelete, "/api/v1/cart/items/1::negro", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, env.Data, &resp)
	assert.Empty(t, resp.Items)
}

func TestImportAndClearCart(t *testing.T) {
	f := newAPIFixture(t)

	w, env := f.do(t, http.MethodPost, "/api/v1/cart/import", []gin.H{
		{"key": "2", "id": 2, "name": "Lámpara vieja", "price": 1, "quantity": 3},
		{"key": "1::negro", "quantity": 1},
		{"key": "77", "id": 77, "quantity": 1},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		Cart     handlers.CartResponse `json:"cart"`
		Imported int                   `json:"imported"`
		Skipped  int                   `json:"skipped"`
	}
	decode(t, env.Data, &result)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, int64(3*45000+95000), result.Cart.SubTotal, "imported items are re-priced")

	w, _ = f.do(t, http.MethodDelete, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, env = f.do(t, http.MethodGet, "/api/v1/cart", nil)
	var resp handlers.CartResponse
	decode(t, env.Data, &resp)
	assert.Empty(t, resp.Items)
}

func TestWhatsAppCheckout(t *testing.T) {
	f := newAPIFixture(t)

	w, env := f.do(t, http.MethodPost, "/api/v1/checkout/whatsapp", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cart is empty", env.Error)

	f.do(t, http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": 2, "quantity": 1})

	w, env = f.do(t, http.MethodPost, "/api/v1/checkout/whatsapp", gin.H{"department": "bogota", "city": "Bogotá"})
	require.Equal(t, http.StatusOK, w.Code)

	var result checkout.Result
	decode(t, env.Data, &result)
	assert.True(t, strings.HasPrefix(result.URL, "https://wa.me/573115477984?text="))
	assert.Contains(t, result.Message, "Lámpara LED")
	assert.Equal(t, int64(57000), result.Totals.TotalAmount)
	require.NotNil(t, result.Estimate)
	assert.Equal(t, "viernes, 22 de noviembre de 2024", result.Estimate.DateText)

	_, env = f.do(t, http.MethodGet, "/api/v1/cart/count", nil)
	var count struct{ Count int }
	decode(t, env.Data, &count)
	assert.Zero(t, count.Count, "checkout empties the cart")
}

func TestProductInquiry(t *testing.T) {
	f := newAPIFixture(t)

	w, env := f.do(t, http.MethodPost, "/api/v1/products/1/inquiry", gin.H{"variant_id": "negro"})
	require.Equal(t, http.StatusOK, w.Code)
	var result checkout.InquiryResult
	decode(t, env.Data, &result)
	assert.Contains(t, result.Message, "Audífonos Pro")
	assert.Contains(t, result.Message, "Negro")

	w, _ = f.do(t, http.MethodPost, "/api/v1/products/42/inquiry", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLocations(t *testing.T) {
	f := newAPIFixture(t)

	_, env := f.do(t, http.MethodGet, "/api/v1/locations/departments", nil)
	var list struct {
		Departments []location.Department `json:"departments"`
		Threshold   int64                 `json:"free_shipping_threshold"`
	}
	decode(t, env.Data, &list)
	assert.Len(t, list.Departments, 5)
	assert.Equal(t, int64(200000), list.Threshold)

	w, env := f.do(t, http.MethodGet, "/api/v1/locations/departments/bogota", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail handlers.DepartmentDetail
	decode(t, env.Data, &detail)
	assert.Equal(t, []string{"Bogotá"}, detail.Cities)
	assert.Equal(t, "viernes, 22 de noviembre de 2024", detail.Estimate.DateText)

	w, _ = f.do(t, http.MethodGet, "/api/v1/locations/departments/amazonas", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDetectLocation(t *testing.T) {
	f := newAPIFixture(t)

	// httptest requests come from 192.0.2.1, so only the explicit region can match
	_, env := f.do(t, http.MethodPost, "/api/v1/locations/detect", nil)
	var resp handlers.DetectionResponse
	decode(t, env.Data, &resp)
	assert.False(t, resp.Detected)

	_, env = f.do(t, http.MethodPost, "/api/v1/locations/detect", gin.H{"region": "Antioquia", "city": "Medellín"})
	decode(t, env.Data, &resp)
	require.True(t, resp.Detected)
	assert.Equal(t, "antioquia", resp.Detection.Department.Key)
	assert.Equal(t, location.SourceManual, resp.Detection.Source)
	require.NotNil(t, resp.Estimate)

	_, env = f.do(t, http.MethodGet, "/api/v1/locations/detected", nil)
	var current handlers.DetectionResponse
	decode(t, env.Data, &current)
	require.True(t, current.Detected)
	assert.Equal(t, "Medellín", current.Detection.City)
}

func TestAdmin(t *testing.T) {
	f := newAPIFixture(t)

	w, _ := f.do(t, http.MethodPost, "/api/v1/admin/login", gin.H{"password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = f.do(t, http.MethodPost, "/api/v1/admin/catalog/reload", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := f.do(t, http.MethodPost, "/api/v1/admin/login", gin.H{"email": "ADMIN@premiumdrop.co", "password": adminPassword})
	require.Equal(t, http.StatusOK, w.Code)
	var login handlers.LoginResponse
	decode(t, env.Data, &login)
	require.NotEmpty(t, login.AccessToken)

	authed := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", "Bearer "+login.AccessToken)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		return rec
	}

	w = authed(http.MethodPost, "/api/v1/admin/catalog/reload")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"products":3`)

	// Order log is disabled in this fixture
	w = authed(http.MethodGet, "/api/v1/admin/orders")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w = authed(http.MethodGet, "/api/v1/admin/orders/PD-20241108-ABCDEF12/receipt")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w = authed(http.MethodGet, "/api/v1/admin/analytics/sales?days=7")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
