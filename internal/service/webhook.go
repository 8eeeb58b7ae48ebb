package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"derby-shop-api/internal/client"
	"derby-shop-api/internal/metrics"
	"derby-shop-api/internal/model"
	"derby-shop-api/internal/repository"

	"github.com/stripe/stripe-go/v83"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const eventCheckoutSessionCompleted = "checkout.session.completed"

type WebhookService interface {
	// HandleStripeEvent returns an error only when the delivery is not authentic.
	HandleStripeEvent(ctx context.Context, payload []byte, signature string) error
}

type webhookServiceImpl struct {
	gateway          client.PaymentGateway
	orderRepo        repository.OrderRepository
	webhookEventRepo repository.WebhookEventRepository
	logger           *zap.Logger
	metrics          *metrics.Metrics
	tracer           trace.Tracer
}

func NewWebhookService(
	gateway client.PaymentGateway,
	orderRepo repository.OrderRepository,
	webhookEventRepo repository.WebhookEventRepository,
	logger *zap.Logger,
	m *metrics.Metrics,
) WebhookService {
	return &webhookServiceImpl{
		gateway:          gateway,
		orderRepo:        orderRepo,
		webhookEventRepo: webhookEventRepo,
		logger:           logger.Named("webhook"),
		metrics:          m,
		tracer:           otel.Tracer(tracerName),
	}
}

// HandleStripeEvent authenticates a delivery and marks the correlated order paid.
//
// Once the signature checks out the delivery is acknowledged whatever happens next: local
// failures are logged, not returned, so the gateway does not keep retrying them.
func (s *webhookServiceImpl) HandleStripeEvent(ctx context.Context, payload []byte, signature string) error {
	const op = "webhook.HandleStripeEvent"

	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()

	event, err := s.gateway.ConstructEvent(payload, signature)
	if err != nil {
		s.metrics.WebhookEvents.WithLabelValues(metrics.ResultInvalidSignature).Inc()
		s.logger.Warn("webhook signature verification failed", zap.Error(err))
		return newError(KindSignatureInvalid, op, err)
	}

	log := s.logger.With(zap.String("event_id", event.ID), zap.String("event_type", string(event.Type)))
	span.SetAttributes(attribute.String("event.id", event.ID), attribute.String("event.type", string(event.Type)))

	if event.ID != "" {
		seen, err := s.webhookEventRepo.Exists(ctx, event.ID)
		if err != nil {
			log.Warn("webhook dedup lookup failed, processing anyway", zap.Error(err))
		} else if seen {
			s.metrics.WebhookEvents.WithLabelValues(metrics.ResultDuplicate).Inc()
			log.Info("webhook event already processed")
			return nil
		}
	}

	if event.Type != eventCheckoutSessionCompleted {
		s.metrics.WebhookEvents.WithLabelValues(metrics.ResultIgnored).Inc()
		log.Debug("webhook event ignored")
		return nil
	}

	result := s.handleCheckoutCompleted(ctx, log, &event)
	s.metrics.WebhookEvents.WithLabelValues(result).Inc()

	// failed updates stay unrecorded so a redelivery gets another chance
	if result != metrics.ResultUpdateFailed && event.ID != "" {
		if err := s.webhookEventRepo.MarkProcessed(ctx, event.ID, string(event.Type)); err != nil {
			log.Warn("record webhook event failed", zap.Error(err))
		}
	}

	return nil
}

func (s *webhookServiceImpl) handleCheckoutCompleted(ctx context.Context, log *zap.Logger, event *stripe.Event) string {
	if event.Data == nil {
		log.Warn("checkout completed event without data")
		return metrics.ResultUnmatched
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		log.Warn("decode checkout session failed", zap.Error(err))
		return metrics.ResultUnmatched
	}
	log = log.With(zap.String("session_id", session.ID))

	rawOrderID := session.Metadata[client.OrderIDMetadataKey]
	if rawOrderID == "" {
		log.Warn("checkout session carries no order id, ignoring")
		return metrics.ResultUnmatched
	}

	id, err := strconv.ParseUint(rawOrderID, 10, 64)
	if err != nil || id == 0 {
		log.Warn("checkout session carries an invalid order id, ignoring", zap.String("order_id", rawOrderID))
		return metrics.ResultUnmatched
	}
	orderID := uint(id)
	log = log.With(zap.Uint("order_id", orderID))

	rows, err := s.orderRepo.UpdateStatus(ctx, nil, orderID, model.OrderStatusPaid)
	if err != nil {
		log.Error("mark order paid failed", zap.Error(err))
		return metrics.ResultUpdateFailed
	}
	if rows == 0 {
		// zero rows is either an unknown order or one that is already paid
		if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Warn("checkout session references an unknown order, ignoring")
				return metrics.ResultUnmatched
			}
			log.Error("mark order paid failed", zap.Error(fmt.Errorf("find order: %w", err)))
			return metrics.ResultUpdateFailed
		}
	}

	log.Info("order marked as paid")
	return metrics.ResultProcessed
}
