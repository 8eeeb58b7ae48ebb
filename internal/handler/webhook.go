package handler

import (
	"io"
	"net/http"

	"derby-shop-api/internal/dto"
	"derby-shop-api/internal/service"

	"github.com/labstack/echo/v4"
)

const maxWebhookBodyBytes = int64(65536)

type WebhookHandler struct {
	webhookService service.WebhookService
}

func NewWebhookHandler(webhookService service.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

// StripeWebhook reads the unparsed body; the signature is computed over these exact bytes.
func (h *WebhookHandler) StripeWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, maxWebhookBodyBytes))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read webhook body")
	}

	err = h.webhookService.HandleStripeEvent(ctx, body, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.WebhookAck{Received: true})
}
