package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/kart-orders/internal/domain/coupon"
	"github.com/xenking/kart-orders/internal/domain/order"
)

const maxBodyBytes = 1 << 20

// QuoteOrder decodes a quote request, delegates to the quote service, and
// writes the priced order (or an error) back.
func (h *Handler) QuoteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "QuoteOrder")
	defer span.End()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		h.reject(ctx, w, span, status, "read_body", err)
		return
	}
	req, err := decodeQuoteRequest(jx.DecodeBytes(body))
	if err != nil {
		h.reject(ctx, w, span, http.StatusBadRequest, "decode", err)
		return
	}

	o, err := h.quoter.Quote(ctx, req)
	if err != nil {
		status, reason := mapOrderError(err)
		if status == http.StatusInternalServerError {
			zctx.From(ctx).Error("Quote failed", zap.Error(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "quote failed")
			h.quoteErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
			writeError(w, status, "internal server error")
			return
		}
		h.reject(ctx, w, span, status, reason, err)
		return
	}

	span.SetAttributes(
		attribute.String("order.id", o.ID()),
		attribute.Int("order.lines", o.LineCount()),
		attribute.Int64("order.total_cents", o.TotalAfterDiscount()),
	)
	h.quoted.Add(ctx, 1, metric.WithAttributes(attribute.Bool("expedited", o.Expedited())))

	var e jx.Encoder
	encodeOrder(&e, o)
	writeJSON(w, http.StatusOK, &e)
}

// reject writes a client error response and records its reason.
func (h *Handler) reject(ctx context.Context, w http.ResponseWriter, span trace.Span, status int, reason string, err error) {
	span.SetAttributes(attribute.String("reject.reason", reason))
	h.quoteErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	zctx.From(ctx).Debug("Quote rejected", zap.String("reason", reason), zap.Error(err))
	writeError(w, status, err.Error())
}

// mapOrderError converts domain errors to an HTTP status and a metric reason.
func mapOrderError(err error) (int, string) {
	switch {
	case order.IsInvalidArgument(err):
		return http.StatusUnprocessableEntity, "validation"
	case errors.Is(err, order.ErrDiscountConflict):
		return http.StatusConflict, "discount_conflict"
	case errors.Is(err, coupon.ErrInvalidCoupon), errors.Is(err, coupon.ErrCouponExpired):
		return http.StatusUnprocessableEntity, "coupon"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
