package client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"derby-shop-api/internal/config"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/checkout/session"
	"github.com/stripe/stripe-go/v83/webhook"
)

// OrderIDMetadataKey carries the local order id inside the hosted checkout session.
const OrderIDMetadataKey = "orderId"

type PaymentGateway interface {
	// CreateCheckoutSession opens a hosted payment page for an order
	CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSession, error)

	// ConstructEvent authenticates a raw webhook body against its signature header
	ConstructEvent(payload []byte, signature string) (stripe.Event, error)
}

type CheckoutLineItem struct {
	Name       string
	UnitAmount int64 // minor units
	Quantity   int64
}

type CheckoutSessionRequest struct {
	OrderID   uint
	LineItems []CheckoutLineItem
}

type CheckoutSession struct {
	ID  string
	URL string
}

type stripeClientImpl struct {
	webhookSecret string
	currency      string
	successURL    string
	cancelURL     string
}

func NewStripeClient(cfg *config.Stripe) PaymentGateway {
	stripe.Key = cfg.SecretKey

	return &stripeClientImpl{
		webhookSecret: cfg.WebhookSecret,
		currency:      cfg.Currency,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
	}
}

func (c *stripeClientImpl) CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSession, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, len(req.LineItems))
	for i, item := range req.LineItems {
		lineItems[i] = &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(c.currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
				UnitAmount: stripe.Int64(item.UnitAmount),
			},
			Quantity: stripe.Int64(item.Quantity),
		}
	}

	orderID := strconv.FormatUint(uint64(req.OrderID), 10)
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:          lineItems,
		Metadata: map[string]string{
			OrderIDMetadataKey: orderID,
		},
		SuccessURL: stripe.String(c.successURL),
		CancelURL:  stripe.String(c.cancelURL),
	}
	params.Context = ctx
	// a retried request for the same order reuses the session instead of opening another
	params.SetIdempotencyKey("checkout-order-" + orderID)

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create checkout session: %w", err)
	}

	return &CheckoutSession{
		ID:  s.ID,
		URL: s.URL,
	}, nil
}

func (c *stripeClientImpl) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret, webhook.ConstructEventOptions{
		Tolerance:                webhook.DefaultTolerance,
		IgnoreAPIVersionMismatch: true,
	})
}

// SignedTestPayload signs payload the way the gateway does, for local tooling and tests.
func SignedTestPayload(payload []byte, secret string) (body []byte, header string) {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}
