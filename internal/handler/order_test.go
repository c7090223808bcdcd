package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkefor/microservices-cicd/internal/client"
	"github.com/nkefor/microservices-cicd/internal/config"
	"github.com/nkefor/microservices-cicd/internal/handler"
	"github.com/nkefor/microservices-cicd/internal/model"
	"github.com/nkefor/microservices-cicd/internal/queue"
	"github.com/nkefor/microservices-cicd/internal/repository"
	"github.com/nkefor/microservices-cicd/internal/router"
)

// fakeProductClient serves availability and detail lookups from a fixed
// catalog, or fails every call when unreachable is set.
type fakeProductClient struct {
	products    map[string]model.Product
	unreachable bool
}

var _ client.ProductClient = (*fakeProductClient)(nil)

func (f *fakeProductClient) CheckAvailability(_ context.Context, productID string, quantity int) (client.Availability, error) {
	if f.unreachable {
		return client.Availability{}, &client.UnreachableError{Cause: errors.New("connection refused")}
	}
	p, ok := f.products[productID]
	if !ok {
		return client.Availability{}, client.ErrProductNotFound
	}
	return client.Availability{
		ProductID:         productID,
		Available:         p.Stock >= quantity,
		RequestedQuantity: quantity,
		CurrentStock:      p.Stock,
	}, nil
}

func (f *fakeProductClient) GetProduct(_ context.Context, productID string) (model.Product, error) {
	if f.unreachable {
		return model.Product{}, &client.UnreachableError{Cause: errors.New("connection refused")}
	}
	p, ok := f.products[productID]
	if !ok {
		return model.Product{}, client.ErrProductNotFound
	}
	return p, nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	created   []queue.OrderCreatedEvent
	cancelled []queue.OrderCancelledEvent
}

var _ queue.Publisher = (*recordingPublisher)(nil)

func (r *recordingPublisher) PublishOrderCreated(_ context.Context, e queue.OrderCreatedEvent) error {
	r.created = append(r.created, e)
	return nil
}

func (r *recordingPublisher) PublishOrderCancelled(_ context.Context, e queue.OrderCancelledEvent) error {
	r.cancelled = append(r.cancelled, e)
	return nil
}

func defaultCatalog() map[string]model.Product {
	return map[string]model.Product{
		"p1": {ID: "p1", Name: "Widget", Price: 9.99, Stock: 10},
		"p2": {ID: "p2", Name: "Gadget", Price: 5.25, Stock: 3},
		"p3": {ID: "p3", Name: "Gizmo", Price: 100, Stock: 0},
	}
}

func newOrderServer(t *testing.T, pc client.ProductClient) (*echo.Echo, *repository.MemoryOrderStore, *recordingPublisher) {
	t.Helper()
	store := repository.NewMemoryOrderStore()
	events := &recordingPublisher{}
	e := echo.New()
	router.RegisterOrderRoutes(e, handler.NewOrderHandler(config.Config{}, store, pc, events))
	return e, store, events
}

func createOrder(t *testing.T, e *echo.Echo, body string) model.Order {
	t.Helper()
	rec := doJSON(e, http.MethodPost, "/orders", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var o model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	return o
}

func TestCreateOrderComputesTotal(t *testing.T) {
	e, store, events := newOrderServer(t, &fakeProductClient{products: defaultCatalog()})

	o := createOrder(t, e, `{"userId":"alice","items":[{"productId":"p1","quantity":2},{"productId":"p2","quantity":3}]}`)

	assert.NotEmpty(t, o.ID)
	assert.Equal(t, "alice", o.UserID)
	assert.Equal(t, model.StatusPending, o.Status)
	// 2*9.99 + 3*5.25 = 35.73
	assert.Equal(t, 35.73, o.TotalAmount)
	assert.Equal(t, "card", o.PaymentMethod)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "Widget", o.Items[0].Name)
	assert.Equal(t, 9.99, o.Items[0].Price)
	assert.False(t, o.CreatedAt.IsZero())

	stored, err := store.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.TotalAmount, stored.TotalAmount)

	require.Len(t, events.created, 1)
	assert.Equal(t, o.ID, events.created[0].OrderID)
}

func TestCreateOrderExampleFlow(t *testing.T) {
	e, _, _ := newOrderServer(t, &fakeProductClient{products: defaultCatalog()})

	o := createOrder(t, e, `{"userId":"alice","items":[{"productId":"p1","quantity":2}]}`)
	assert.Equal(t, 19.98, o.TotalAmount)
	assert.Equal(t, model.StatusPending, o.Status)
}

func TestCreateOrderValidation(t *testing.T) {
	e, _, _ := newOrderServer(t, &fakeProductClient{products: defaultCatalog()})

	for _, body := range []string{
		`{}`,
		`{"userId":"alice"}`,
		`{"userId":"alice","items":[]}`,
		`{"items":[{"productId":"p1"}]}`,
	} {
		rec := doJSON(e, http.MethodPost, "/orders", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "userId and items are required", decodeBody(t, rec)["error"])
	}

	rec := doJSON(e, http.MethodPost, "/orders", `{"userId":"alice","items":[{"quantity":2}]}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "productId required for all items", decodeBody(t, rec)["error"])
}

func TestCreateOrderInsufficientStockAbortsWholeOrder(t *testing.T) {
	e, store, events := newOrderServer(t, &fakeProductClient{products: defaultCatalog()})

	rec := doJSON(e, http.MethodPost, "/orders",
		`{"userId":"alice","items":[{"productId":"p1","quantity":1},{"productId":"p2","quantity":5}]}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Product p2 not available", body["error"])
	assert.EqualValues(t, 5, body["requested"])
	assert.EqualValues(t, 3, body["available"])

	// No partial order may exist.
	orders, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, events.created)
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	e, store, _ := newOrderServer(t, &fakeProductClient{products: defaultCatalog()})

	rec := doJSON(e, http.MethodPost, "/orders", `{"userId":"alice","items":[{"productId":"ghost","quantity":1}]}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product ghost not found", decodeBody(t, rec)["error"])

	orders, _ := store.List(context.Background())
	assert.Empty(t, orders)
}

func TestCreateOrderDependencyUnavailable(t *testing.T) {
	e, store, _ := newOrderServer(t, &fakeProductClient{unreachable: true})

	rec := doJSON(e, http.MethodPost, "/orders", `{"userId":"alice","items":[{"productId":"p1","quantity":1}]}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Failed to validate products", body["error"])
	assert.Contains(t, body["details"], "connection refused")

	orders, _ := store.List(context.Background())
	assert.Empty(t, orders)
}

func TestCreateOrderDefaultsQuantityToOne(t *testing.T) {
	e, _, _ := newOrderServer(t, &fakeProductClient{products: defaultCatalog()})

	o := createOrder(t, e, `{"userId":"alice","items":[{"productId":"p1"}]}`)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 1, o.Items[0].Quantity)
	assert.Equal(t, 9.99, o.TotalAmount)
}

func TestGetOrder(t *testing.T) {
	e, _, _ := newOrderServer(t, &fakeProductClient{products: defaultCatalog()})
	o := createOrder(t, e, `{"userId":"alice","items":[{"productId":"p1","quantity":1}]}`)

	rec := doJSON(e, http.MethodGet, "/orders/"+o.ID, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/orders/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Order not found", decodeBody(t, rec)["error"])
}

func TestListOrdersFilters(t *testing.T) {
	e, _, _ := newOrderServer(t, &fakeProductClient{products: defaultCatalog()})
	o1 := createOrder(t, e, `{"userId":"alice","items":[{"productId":"p1","quantity":1}]}`)
	createOrder(t, e, `{"userId":"bob","items":[{"productId":"p2","quantity":1}]}`)
	createOrder(t, e, `{"userId":"alice","items":[{"productId":"p2","quantity":1}]}`)

	// Move one of alice's orders along the lifecycle.
	rec := doJSON(e, http.MethodPut, "/orders/"+o1.ID, `{"status":"confirmed"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cases := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"?userId=alice", 2},
		{"?status=confirmed", 1},
		{"?status=pending&userId=alice", 1},
		{"?status=shipped", 0},
	}
	for _, tc := range cases {
		rec := doJSON(e, http.MethodGet, "/orders"+tc.query, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.EqualValues(t, tc.want, body["total"], tc.query)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	e, _, _ := newOrderServer(t, &fakeProductClient{products: defaultCatalog()})
	o := createOrder(t, e, `{"userId":"alice","items":[{"productId":"p1","quantity":1}]}`)

	rec := doJSON(e, http.MethodPut, "/orders/"+o.ID, `{"status":"processing"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, model.StatusProcessing, updated.Status)
	assert.NotNil(t, updated.UpdatedAt)
	// Totals are fixed at creation; a status change must not touch them.
	assert.Equal(t, o.TotalAmount, updated.TotalAmount)

	rec = doJSON(e, http.MethodPut, "/orders/"+o.ID, `{"status":"teleported"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "Invalid status")

	rec = doJSON(e, http.MethodPut, "/orders/missing", `{"status":"confirmed"}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// An update without a status field is a no-op, not a validation error.
func TestUpdateOrderWithoutStatusIsNoop(t *testing.T) {
	e, _, _ := newOrderServer(t, &fakeProductClient{products: defaultCatalog()})
	o := createOrder(t, e, `{"userId":"alice","items":[{"productId":"p1","quantity":1}]}`)

	rec := doJSON(e, http.MethodPut, "/orders/"+o.ID, `{}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, model.StatusPending, got.Status)
	assert.Nil(t, got.UpdatedAt)
}

func TestCancelOrder(t *testing.T) {
	e, _, events := newOrderServer(t, &fakeProductClient{products: defaultCatalog()})
	o := createOrder(t, e, `{"userId":"alice","items":[{"productId":"p1","quantity":1}]}`)

	rec := doJSON(e, http.MethodDelete, "/orders/"+o.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cancelled model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cancelled))
	assert.Equal(t, model.StatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	require.Len(t, events.cancelled, 1)
	assert.Equal(t, o.ID, events.cancelled[0].OrderID)

	rec = doJSON(e, http.MethodDelete, "/orders/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelShippedOrderRejected(t *testing.T) {
	e, store, _ := newOrderServer(t, &fakeProductClient{products: defaultCatalog()})
	o := createOrder(t, e, `{"userId":"alice","items":[{"productId":"p1","quantity":1}]}`)

	rec := doJSON(e, http.MethodPut, "/orders/"+o.ID, `{"status":"shipped"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodDelete, "/orders/"+o.ID, "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot cancel shipped or delivered orders", decodeBody(t, rec)["error"])

	// Status must be unchanged.
	stored, err := store.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusShipped, stored.Status)
}

func TestOrderStatsExcludesCancelledRevenue(t *testing.T) {
	e, _, _ := newOrderServer(t, &fakeProductClient{products: map[string]model.Product{
		"a": {ID: "a", Name: "A", Price: 10.00, Stock: 100},
		"b": {ID: "b", Name: "B", Price: 5.00, Stock: 100},
	}})

	createOrder(t, e, `{"userId":"alice","items":[{"productId":"a","quantity":1}]}`)
	o2 := createOrder(t, e, `{"userId":"bob","items":[{"productId":"b","quantity":1}]}`)
	rec := doJSON(e, http.MethodDelete, "/orders/"+o2.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/orders/stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 2, body["totalOrders"])
	assert.EqualValues(t, 10.0, body["totalRevenue"])
	breakdown, ok := body["statusBreakdown"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, breakdown["pending"])
	assert.EqualValues(t, 1, breakdown["cancelled"])
	assert.NotEmpty(t, body["timestamp"])
}

// End to end: the order handler talking to a real product service over HTTP
// through the real client.
func TestCreateOrderAgainstLiveProductService(t *testing.T) {
	products := repository.NewSeededProductStore()
	pe := echo.New()
	router.RegisterProductRoutes(pe, handler.NewProductHandler(products))
	srv := httptest.NewServer(pe)
	t.Cleanup(srv.Close)

	catalog, err := products.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, catalog)
	laptop := catalog[0]

	pc := client.NewHTTPProductClient(srv.URL, srv.Client())
	e, _, _ := newOrderServer(t, pc)

	o := createOrder(t, e, `{"userId":"alice","items":[{"productId":"`+laptop.ID+`","quantity":2}]}`)
	assert.Equal(t, model.Round2(laptop.Price*2), o.TotalAmount)
	assert.Equal(t, laptop.Name, o.Items[0].Name)

	// Requesting more than the stock on hand must abort with the offered stock.
	rec := doJSON(e, http.MethodPost, "/orders",
		`{"userId":"alice","items":[{"productId":"`+laptop.ID+`","quantity":999}]}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, laptop.Stock, body["available"])
}
