package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/kart-orders/internal/domain/order"
)

const instrumentationName = "github.com/xenking/kart-orders/internal/handler"

// Quoter prices orders.
type Quoter interface {
	Quote(ctx context.Context, req order.QuoteRequest) (*order.Order, error)
}

// Handler serves the order HTTP API, delegating business logic to the
// quote service.
type Handler struct {
	quoter Quoter
	tracer trace.Tracer

	quoted      metric.Int64Counter
	quoteErrors metric.Int64Counter
}

// NewHandler constructs a Handler with its service and telemetry providers.
func NewHandler(quoter Quoter, tp trace.TracerProvider, mp metric.MeterProvider) (*Handler, error) {
	meter := mp.Meter(instrumentationName)

	quoted, err := meter.Int64Counter("orders.quoted",
		metric.WithDescription("Orders successfully quoted"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create orders.quoted counter")
	}
	quoteErrors, err := meter.Int64Counter("orders.quote.errors",
		metric.WithDescription("Rejected quote requests by reason"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create orders.quote.errors counter")
	}

	return &Handler{
		quoter:      quoter,
		tracer:      tp.Tracer(instrumentationName),
		quoted:      quoted,
		quoteErrors: quoteErrors,
	}, nil
}

// Routes registers the API routes on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/orders/quote", h.QuoteOrder)
}
