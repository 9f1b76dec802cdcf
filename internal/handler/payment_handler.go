package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/railxam2004/CulT/internal/service"
	"github.com/railxam2004/CulT/pkg/logger"
	"github.com/railxam2004/CulT/pkg/response"
	"github.com/railxam2004/CulT/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const (
	stripeSignatureHeader = "Stripe-Signature"
	maxWebhookBody        = 1 << 20
)

// PaymentHandler starts payments and receives provider callbacks
type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Start handles POST /orders/:id/payment
func (h *PaymentHandler) Start(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.payment.start")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orderID := c.Param("id")
	span.SetAttributes(attribute.String("order_id", orderID))

	result, err := h.paymentService.Start(ctx, actor, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, response.Success(result))
}

// Return handles POST /orders/:id/payment/return. Payment problems come
// back as a message in a 200 response.
func (h *PaymentHandler) Return(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.payment.return")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orderID := c.Param("id")
	span.SetAttributes(attribute.String("order_id", orderID))

	result, err := h.paymentService.ConfirmReturn(ctx, actor, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Bool("paid", result.Paid))
	c.JSON(http.StatusOK, response.Success(result))
}

// Webhook handles POST /payments/webhook
func (h *PaymentHandler) Webhook(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.payment.webhook")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Failed to read request body"))
		return
	}

	signature := c.GetHeader(stripeSignatureHeader)
	if h.paymentService.Gateway().VerifiesSignature() && signature == "" {
		logger.Get().WithContext(ctx).Warn("webhook without signature header")
		c.JSON(http.StatusBadRequest, response.Error("INVALID_SIGNATURE", "Missing "+stripeSignatureHeader+" header"))
		return
	}

	if err := h.paymentService.HandleWebhook(ctx, payload, signature); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Get().WithContext(ctx).Warn("webhook rejected", zap.Error(err))
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
