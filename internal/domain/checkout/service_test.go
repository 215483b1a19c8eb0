package checkout

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/premiumdrop/storefront/internal/domain/cart"
	"github.com/premiumdrop/storefront/internal/domain/location"
	"github.com/premiumdrop/storefront/internal/domain/order"
	"github.com/premiumdrop/storefront/internal/domain/product"
)

const testCatalog = `[
  {"id": 1, "name": "Audífonos Pro", "price": 89000, "rating": 4.5, "reviews": 120,
   "variants": [{"id": "negro", "name": "Negro", "price": 250000}]},
  {"id": 2, "name": "Lámpara LED", "price": 45000}
]`

const sid = "session-123"

type fakeRecorder struct {
	orders []*order.Order
	err    error
}

func (f *fakeRecorder) CreateOrder(_ context.Context, o *order.Order) error {
	if f.err != nil {
		return f.err
	}
	f.orders = append(f.orders, o)
	return nil
}

type checkoutFixture struct {
	carts    *cart.Service
	recorder *fakeRecorder
	service  *Service
	hook     *logtest.Hook
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger, hook := logtest.NewNullLogger()
	catalog := product.NewService(product.StaticSource(testCatalog), 10, logger)
	require.NoError(t, catalog.Load(context.Background()))

	table := location.DefaultTable()
	zone := time.FixedZone("COT", -5*60*60)
	now := func() time.Time { return time.Date(2024, 11, 8, 15, 0, 0, 0, time.UTC) }
	estimator := location.NewEstimator(location.DefaultCalendar(), zone, logger).WithClock(now)

	carts := cart.NewService(cart.NewRedisStorage(client, time.Hour), catalog, table, 200000, logger)
	recorder := &fakeRecorder{}
	svc := NewService(carts, catalog, table, estimator, recorder, "573115477984", logger)
	svc.now = now

	return &checkoutFixture{carts: carts, recorder: recorder, service: svc, hook: hook}
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.service.Checkout(context.Background(), sid, location.SelectedLocation{})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, f.recorder.orders)
}

func TestCheckout_RecordsOrderAndClearsCart(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, sid, 2, "", 2)
	require.NoError(t, err)

	res, err := f.service.Checkout(ctx, sid, location.SelectedLocation{Department: "bogota", City: "Bogotá"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.URL, "https://wa.me/573115477984?text=%F0%9F%9B%8D"))
	assert.True(t, strings.HasPrefix(res.Reference, "PD-20241108-"))
	assert.Contains(t, res.Message, res.Reference)
	assert.Equal(t, int64(102000), res.Totals.TotalAmount)
	require.NotNil(t, res.Estimate)
	assert.Equal(t, "viernes, 22 de noviembre de 2024", res.Estimate.DateText)
	assert.Contains(t, res.Message, "• Entrega estimada: viernes, 22 de noviembre de 2024")

	require.Len(t, f.recorder.orders, 1)
	o := f.recorder.orders[0]
	assert.Equal(t, res.Reference, o.Reference)
	assert.Equal(t, "bogota", o.Department)
	assert.Equal(t, "Bogotá D.C.", o.DepartmentName)
	assert.Equal(t, int64(12000), o.ShippingAmount)
	require.Len(t, o.Items, 1)
	assert.Equal(t, int64(90000), o.Items[0].TotalPrice)

	c, err := f.carts.GetCart(ctx, sid)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestCheckout_RecorderFailureDoesNotBlock(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	f.recorder.err = errors.New("database is down")

	_, err := f.carts.AddItem(ctx, sid, 1, "negro", 1)
	require.NoError(t, err)

	res, err := f.service.Checkout(ctx, sid, location.SelectedLocation{})
	require.NoError(t, err)
	assert.Equal(t, int64(250000), res.Totals.TotalAmount)
	assert.Nil(t, res.Estimate)

	warned := false
	for _, e := range f.hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "Failed to record order, continuing checkout" {
			warned = true
		}
	}
	assert.True(t, warned)

	c, err := f.carts.GetCart(ctx, sid)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestCheckout_WithoutOrderLog(t *testing.T) {
	f := newCheckoutFixture(t)
	f.service.orders = nil
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, sid, 2, "", 1)
	require.NoError(t, err)

	_, err = f.service.Checkout(ctx, sid, location.SelectedLocation{Department: "valle"})
	require.NoError(t, err)
}

func TestInquiry(t *testing.T) {
	f := newCheckoutFixture(t)

	res, err := f.service.Inquiry(context.Background(), 1, &InquiryRequest{VariantID: "negro", Department: "santander", City: "Girón"})
	require.NoError(t, err)
	assert.Contains(t, res.Message, "📦 Audífonos Pro - Negro")
	assert.Contains(t, res.Message, "• Ubicación: Girón, Santander")
	assert.Contains(t, res.Message, "• Costo de envío: GRATIS", "variant price is above the free-shipping threshold")
	assert.Equal(t, WhatsAppURL("573115477984", res.Message), res.URL)

	_, err = f.service.Inquiry(context.Background(), 42, &InquiryRequest{})
	assert.ErrorIs(t, err, product.ErrProductNotFound)
}
