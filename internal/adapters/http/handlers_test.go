package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/n0madsky/profile-api-assignment/internal/adapters/memory"
	"github.com/n0madsky/profile-api-assignment/internal/application"
	"github.com/n0madsky/profile-api-assignment/internal/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	seed, err := memory.ExampleSeed()
	require.NoError(t, err)
	var serial atomic.Int64
	store, err := memory.NewStore(logger, seed, memory.WithSerialGenerator(func() string {
		return fmt.Sprintf("HTTP%011d", serial.Add(1))
	}))
	require.NoError(t, err)

	svc := application.NewService(application.Dependencies{
		Profiles:    store.Profiles,
		Products:    store.Products,
		Ledger:      store.Ledger,
		Outbox:      store.Outbox,
		Idempotency: store.Idempotency,
		Logger:      logger,
		Now:         func() time.Time { return testNow },
	})
	return NewRouter(NewHandler(svc, logger))
}

type envelope[T any] struct {
	Status string `json:"status"`
	Data   T      `json:"data"`
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	h := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(t, h, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	}
}

func TestListProfiles(t *testing.T) {
	t.Parallel()
	h := newTestServer(t)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/profiles", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[envelope[contracts.PagedResult[contracts.Profile]]](t, rec)
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, uint64(0), body.Data.Page)
	require.Len(t, body.Data.Items, 2)
	assert.Equal(t, "john.doe@example.com", body.Data.Items[0].Email)
	assert.NotNil(t, body.Data.Items[0].ProductRegistrations)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/profiles?page=1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode[envelope[contracts.PagedResult[contracts.Profile]]](t, rec)
	assert.Empty(t, body.Data.Items)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/profiles?page=-1", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRegistrationUsesMilliseconds(t *testing.T) {
	t.Parallel()
	h := newTestServer(t)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/product_registrations/1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[envelope[contracts.ProductRegistration]](t, rec)
	assert.Equal(t, "ARIE4", body.Data.Product.SKU)
	assert.Equal(t, time.Date(2023, 1, 15, 15, 4, 5, 0, time.UTC).UnixMilli(), body.Data.PurchaseDate)
	require.NotNil(t, body.Data.ExpiryAt)
	assert.Equal(t, time.Date(2024, 1, 15, 15, 4, 5, 0, time.UTC).UnixMilli(), *body.Data.ExpiryAt)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/product_registrations/2", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"expiry_at":null`)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/product_registrations/404", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	errBody := decode[contracts.ErrorResponse](t, rec)
	assert.Equal(t, "NOT_FOUND", errBody.Error.Code)
	assert.NotEmpty(t, errBody.RequestID)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/product_registrations/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRegistrationSingularPath(t *testing.T) {
	t.Parallel()
	h := newTestServer(t)

	plural := doRequest(t, h, http.MethodGet, "/api/v1/product_registrations/3", nil, nil)
	require.Equal(t, http.StatusOK, plural.Code)
	singular := doRequest(t, h, http.MethodGet, "/api/v1/product_registration/3", nil, nil)
	require.Equal(t, http.StatusOK, singular.Code)
	assert.Equal(t,
		decode[envelope[contracts.ProductRegistration]](t, plural).Data,
		decode[envelope[contracts.ProductRegistration]](t, singular).Data,
	)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/product_registration/404", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProductRejectsPaddedSKU(t *testing.T) {
	t.Parallel()
	h := newTestServer(t)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/products", contracts.CreateProductRequest{SKU: " FOO "}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode[contracts.ErrorResponse](t, rec).Error.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/products/FOO", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[envelope[contracts.ProductResponse]](t, rec).Data.Exists)
}

func TestCreateRegistrationFlow(t *testing.T) {
	t.Parallel()
	h := newTestServer(t)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/profiles/2/product_registrations", contracts.CreateRegistrationRequest{SKU: "AKB48"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[envelope[contracts.ProductRegistration]](t, rec)
	assert.Equal(t, uint64(4), created.Data.ID)
	assert.Equal(t, testNow.UnixMilli(), created.Data.PurchaseDate)
	require.Len(t, created.Data.AdditionalProductRegistrations, 2)
	assert.Equal(t, "NMB48", created.Data.AdditionalProductRegistrations[0].Product.SKU)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/profiles/2/product_registrations", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[envelope[contracts.PagedResult[contracts.ProductRegistration]]](t, rec)
	assert.Len(t, list.Data.Items, 2)

	rec = doRequest(t, h, http.MethodPost, "/api/v1/profiles/2/product_registrations", contracts.CreateRegistrationRequest{SKU: "SKE48"}, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	errBody := decode[contracts.ErrorResponse](t, rec)
	assert.Equal(t, "DUPLICATE_REGISTRATION", errBody.Error.Code)
	assert.Equal(t, []string{"SKE48"}, errBody.Error.ConflictingSKUs)
}

func TestCreateRegistrationErrors(t *testing.T) {
	t.Parallel()
	h := newTestServer(t)

	cases := []struct {
		path   string
		body   any
		status int
		code   string
	}{
		{path: "/api/v1/profiles/9/product_registrations", body: contracts.CreateRegistrationRequest{SKU: "AKB48"}, status: http.StatusNotFound, code: "NOT_FOUND"},
		{path: "/api/v1/profiles/1/product_registrations", body: contracts.CreateRegistrationRequest{SKU: "akb48"}, status: http.StatusBadRequest, code: "UNKNOWN_REFERENCE"},
		{path: "/api/v1/profiles/1/product_registrations", body: contracts.CreateRegistrationRequest{SKU: " AKB48 "}, status: http.StatusBadRequest, code: "UNKNOWN_REFERENCE"},
		{path: "/api/v1/profiles/1/product_registrations", body: contracts.CreateRegistrationRequest{SKU: "GHOST1"}, status: http.StatusBadRequest, code: "UNKNOWN_REFERENCE"},
		{path: "/api/v1/profiles/1/product_registrations", body: "{not json", status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{path: "/api/v1/profiles/x/product_registrations", body: contracts.CreateRegistrationRequest{SKU: "AKB48"}, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
	}
	for _, tc := range cases {
		rec := doRequest(t, h, http.MethodPost, tc.path, tc.body, nil)
		require.Equal(t, tc.status, rec.Code, "%s %v: %s", tc.path, tc.body, rec.Body.String())
		assert.Equal(t, tc.code, decode[contracts.ErrorResponse](t, rec).Error.Code)
	}
}

func TestCreateProductFlow(t *testing.T) {
	t.Parallel()
	h := newTestServer(t)
	year := int64(365 * 24 * 3600)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/products", contracts.CreateProductRequest{SKU: "FOO", BundledProducts: []string{"ARIE4"}, ActiveFor: &year}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[envelope[contracts.CreateProductResponse]](t, rec)
	assert.Equal(t, "FOO", created.Data.SKUAdded)
	assert.Equal(t, []string{"AKBL1", "AKDS5", "ARAS1", "ARCH1", "ARCM1", "ARCS1"}, created.Data.BundledProducts)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/products/FOO", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	product := decode[envelope[contracts.ProductResponse]](t, rec)
	assert.True(t, product.Data.Exists)
	assert.False(t, product.Data.Leaf)
	assert.Len(t, product.Data.Leaves, 6)
	require.NotNil(t, product.Data.ActiveFor)
	assert.Equal(t, year, *product.Data.ActiveFor)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/products/SKE48", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	leaf := decode[envelope[contracts.ProductResponse]](t, rec)
	assert.True(t, leaf.Data.Leaf)
	assert.Nil(t, leaf.Data.ActiveFor)
	assert.Equal(t, []string{"SKE48"}, leaf.Data.Leaves)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/products/NOPE", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[envelope[contracts.ProductResponse]](t, rec).Data.Exists)

	rec = doRequest(t, h, http.MethodPost, "/api/v1/products", contracts.CreateProductRequest{SKU: "FOO"}, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", decode[contracts.ErrorResponse](t, rec).Error.Code)

	rec = doRequest(t, h, http.MethodPost, "/api/v1/products", contracts.CreateProductRequest{SKU: "BAZ", BundledProducts: []string{"GHOST1"}}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "UNKNOWN_REFERENCE", decode[contracts.ErrorResponse](t, rec).Error.Code)

	zero := int64(0)
	rec = doRequest(t, h, http.MethodPost, "/api/v1/products", contracts.CreateProductRequest{SKU: "BAZ", ActiveFor: &zero}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIdempotencyKeyReplay(t *testing.T) {
	t.Parallel()
	h := newTestServer(t)
	headers := map[string]string{"Idempotency-Key": "req-1"}

	first := doRequest(t, h, http.MethodPost, "/api/v1/profiles/2/product_registrations", contracts.CreateRegistrationRequest{SKU: "AKB48"}, headers)
	require.Equal(t, http.StatusCreated, first.Code)
	second := doRequest(t, h, http.MethodPost, "/api/v1/profiles/2/product_registrations", contracts.CreateRegistrationRequest{SKU: "AKB48"}, headers)
	require.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	third := doRequest(t, h, http.MethodPost, "/api/v1/profiles/2/product_registrations", contracts.CreateRegistrationRequest{SKU: "ARIE4"}, headers)
	require.Equal(t, http.StatusConflict, third.Code)
	assert.Equal(t, "IDEMPOTENCY_CONFLICT", decode[contracts.ErrorResponse](t, third).Error.Code)
}

func TestRequestIDPropagates(t *testing.T) {
	t.Parallel()
	h := newTestServer(t)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/product_registrations/404", nil, map[string]string{"X-Request-Id": "abc-123"})
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "abc-123", decode[contracts.ErrorResponse](t, rec).Error.RequestID)
}
