package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/xenking/kart-orders/internal/domain/coupon"
	"github.com/xenking/kart-orders/internal/domain/order"
)

// --- Mock implementations ---

type mockQuoter struct {
	lastReq order.QuoteRequest
	err     error
}

func (m *mockQuoter) Quote(ctx context.Context, req order.QuoteRequest) (*order.Order, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return order.NewService(nil).Quote(ctx, req)
}

// --- Helpers ---

func newTestServer(t *testing.T, q Quoter) http.Handler {
	t.Helper()
	h, err := NewHandler(q, tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider())
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/api", h.Routes)
	return r
}

func post(t *testing.T, srv http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/orders/quote", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

type orderResponse struct {
	ID              string  `json:"id"`
	CustomerEmail   string  `json:"customerEmail"`
	DiscountPercent *int    `json:"discountPercent"`
	Expedited       bool    `json:"expedited"`
	Notes           *string `json:"notes"`
	Lines           []struct {
		SKU            string `json:"sku"`
		Quantity       int    `json:"quantity"`
		UnitPriceCents int64  `json:"unitPriceCents"`
		TotalCents     int64  `json:"totalCents"`
	} `json:"lines"`
	TotalBeforeDiscount int64 `json:"totalBeforeDiscount"`
	Discount            int64 `json:"discount"`
	TotalAfterDiscount  int64 `json:"totalAfterDiscount"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// --- Tests ---

func TestQuoteOrder_Success(t *testing.T) {
	q := &mockQuoter{}
	srv := newTestServer(t, q)

	w := post(t, srv, `{
		"id": "O1",
		"customerEmail": "a@b.com",
		"lines": [{"sku": "X", "quantity": 3, "unitPriceCents": 250, "extra": true}],
		"discountPercent": 10,
		"expedited": true,
		"notes": "ring twice",
		"unknown": {"nested": [1, 2]}
	}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp orderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "O1", resp.ID)
	assert.Equal(t, "a@b.com", resp.CustomerEmail)
	require.NotNil(t, resp.DiscountPercent)
	assert.Equal(t, 10, *resp.DiscountPercent)
	assert.True(t, resp.Expedited)
	require.NotNil(t, resp.Notes)
	assert.Equal(t, "ring twice", *resp.Notes)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, int64(750), resp.Lines[0].TotalCents)
	assert.Equal(t, int64(750), resp.TotalBeforeDiscount)
	assert.Equal(t, int64(75), resp.Discount)
	assert.Equal(t, int64(675), resp.TotalAfterDiscount)
}

func TestQuoteOrder_NullOptionals(t *testing.T) {
	q := &mockQuoter{}
	srv := newTestServer(t, q)

	w := post(t, srv, `{"id":"O1","customerEmail":"a@b.com","discountPercent":null,"notes":null,
		"lines":[{"sku":"X","quantity":1,"unitPriceCents":100}]}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.False(t, q.lastReq.DiscountPercent.IsSet())
	assert.False(t, q.lastReq.Notes.IsSet())

	var resp orderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp.DiscountPercent)
	assert.Nil(t, resp.Notes)
	assert.Equal(t, int64(100), resp.TotalAfterDiscount)
}

func TestQuoteOrder_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		quoteErr   error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "malformed json",
			body:       `{"customerEmail":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "wrong type",
			body:       `{"customerEmail": 5}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "trailing data",
			body:       `{"id":"O1","customerEmail":"a@b.com","lines":[{"sku":"X","quantity":1,"unitPriceCents":1}]}garbage`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "unexpected data after request object",
		},
		{
			name:       "second object",
			body:       `{"customerEmail":"a@b.com"} {}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "unexpected data after request object",
		},
		{
			name:       "zero quantity line",
			body:       `{"id":"O1","customerEmail":"a@b.com","lines":[{"sku":"X","quantity":0,"unitPriceCents":1}]}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "quantity must be greater than 0",
		},
		{
			name:       "empty email",
			body:       `{"id":"O1","customerEmail":"","lines":[{"sku":"X","quantity":1,"unitPriceCents":1}]}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "invalid email",
		},
		{
			name:       "no lines",
			body:       `{"id":"O1","customerEmail":"a@b.com","lines":[]}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "order must have at least one line",
		},
		{
			name:       "discount out of range",
			body:       `{"id":"O1","customerEmail":"a@b.com","discountPercent":101,"lines":[{"sku":"X","quantity":1,"unitPriceCents":1}]}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "invalid discount",
		},
		{
			name:       "invalid coupon",
			body:       `{"customerEmail":"a@b.com"}`,
			quoteErr:   errors.Wrap(coupon.ErrInvalidCoupon, "validate coupon"),
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "invalid coupon code",
		},
		{
			name:       "discount conflict",
			body:       `{"customerEmail":"a@b.com"}`,
			quoteErr:   order.ErrDiscountConflict,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "internal error hides details",
			body:       `{"customerEmail":"a@b.com"}`,
			quoteErr:   errors.New("secret backend failure"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &mockQuoter{err: tt.quoteErr})

			w := post(t, srv, tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			var resp errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Code)
			if tt.wantMsg != "" {
				assert.Contains(t, resp.Message, tt.wantMsg)
			}
			assert.NotContains(t, resp.Message, "secret")
		})
	}
}

func TestDecodeQuoteRequest(t *testing.T) {
	req, err := decodeQuoteRequest(jx.DecodeStr(`{
		"id": "O1",
		"customerEmail": "a@b.com",
		"couponCode": "HAPPYHRS",
		"expedited": true,
		"notes": "",
		"lines": [
			{"sku": "X", "quantity": 3, "unitPriceCents": 250},
			{"sku": "Y", "quantity": 1, "unitPriceCents": 99}
		]
	}` + "\n\t "))
	require.NoError(t, err)

	assert.Equal(t, "O1", req.ID)
	assert.Equal(t, "a@b.com", req.CustomerEmail)
	assert.Equal(t, "HAPPYHRS", req.CouponCode)
	assert.True(t, req.Expedited)
	assert.False(t, req.DiscountPercent.IsSet())
	notes, ok := req.Notes.Get()
	assert.True(t, ok)
	assert.Empty(t, notes)
	assert.Equal(t, []order.OrderLine{
		order.NewOrderLine("X", 3, 250),
		order.NewOrderLine("Y", 1, 99),
	}, req.Lines)
}

func TestDecodeQuoteRequest_FieldErrors(t *testing.T) {
	_, err := decodeQuoteRequest(jx.DecodeStr(`{"lines":[{"sku":"X","quantity":"three"}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `line field "quantity"`)

	_, err = decodeQuoteRequest(jx.DecodeStr(`{"expedited":"yes"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `field "expedited"`)
}

func TestQuoteOrder_BodyTooLarge(t *testing.T) {
	srv := newTestServer(t, &mockQuoter{})

	body := `{"notes":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	w := post(t, srv, body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestQuoteOrder_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &mockQuoter{})

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/orders/quote", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

// ctxMeterProvider hands out counters that remember the context of every Add.
type ctxMeterProvider struct {
	metricnoop.MeterProvider
	ctxs *[]context.Context
}

func (p ctxMeterProvider) Meter(string, ...metric.MeterOption) metric.Meter {
	return ctxMeter{ctxs: p.ctxs}
}

type ctxMeter struct {
	metricnoop.Meter
	ctxs *[]context.Context
}

func (m ctxMeter) Int64Counter(string, ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	return ctxCounter{ctxs: m.ctxs}, nil
}

type ctxCounter struct {
	metricnoop.Int64Counter
	ctxs *[]context.Context
}

func (c ctxCounter) Add(ctx context.Context, _ int64, _ ...metric.AddOption) {
	*c.ctxs = append(*c.ctxs, ctx)
}

func TestQuoteOrder_RejectionRecordedInSpan(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	var ctxs []context.Context

	h, err := NewHandler(&mockQuoter{}, tp, ctxMeterProvider{ctxs: &ctxs})
	require.NoError(t, err)
	r := chi.NewRouter()
	r.Route("/api", h.Routes)

	w := post(t, r, `{"customerEmail":`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "QuoteOrder", ended[0].Name())

	require.Len(t, ctxs, 1)
	assert.Equal(t, ended[0].SpanContext().SpanID(), trace.SpanContextFromContext(ctxs[0]).SpanID())
}
