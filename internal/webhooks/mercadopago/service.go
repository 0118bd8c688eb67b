package mpwebhook

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/smoralesc/verdeo-backend/internal/orders"
	pkgerrors "github.com/smoralesc/verdeo-backend/pkg/errors"
	"github.com/smoralesc/verdeo-backend/pkg/logger"
	"github.com/smoralesc/verdeo-backend/pkg/mercadopago"
	"github.com/smoralesc/verdeo-backend/pkg/metrics"
	"github.com/smoralesc/verdeo-backend/pkg/types"
)

// Outcome reports what processing a notification did.
type Outcome string

const (
	OutcomeConfirmed        Outcome = "confirmed"
	OutcomeAlreadyProcessed Outcome = "already_processed"
	OutcomeDuplicate        Outcome = "duplicate"
	OutcomeIgnoredTopic     Outcome = "ignored_topic"
	OutcomeIgnoredStatus    Outcome = "ignored_status"
)

const paymentTopic = "payment"

// Notification is the provider notification after transport-level parsing.
// Topic and DataID may come from query params or the JSON body; RequestID and
// SignatureHeader are the raw x-request-id / x-signature header values.
type Notification struct {
	Topic           string
	DataID          string
	RequestID       string
	SignatureHeader string
}

type paymentFetcher interface {
	GetPayment(ctx context.Context, paymentID string) (*mercadopago.Payment, error)
	SigningSecret() string
}

type orderConfirmer interface {
	Confirm(ctx context.Context, input orders.ConfirmInput) (orders.ConfirmOutcome, error)
}

type dedupGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

// Service reconciles provider notifications into order confirmations.
type Service struct {
	payments paymentFetcher
	orders   orderConfirmer
	guard    dedupGuard
	metrics  *metrics.PaymentMetrics
	logg     *logger.Logger
}

type ServiceParams struct {
	Payments paymentFetcher
	Orders   orderConfirmer
	Guard    dedupGuard
	Metrics  *metrics.PaymentMetrics
	Logger   *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment client required")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders service required")
	}
	if params.Guard == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		payments: params.Payments,
		orders:   params.Orders,
		guard:    params.Guard,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

// Process handles one provider notification. Signature verification is
// fail-closed: when a webhook secret is configured, a missing or invalid
// signature rejects the request before anything else runs.
func (s *Service) Process(ctx context.Context, notification Notification) (Outcome, error) {
	started := time.Now()
	outcome, err := s.process(ctx, notification)
	s.metrics.IncWebhookEvent(notification.Topic, string(outcome))
	s.metrics.ObserveWebhookDuration(notification.Topic, time.Since(started))
	return outcome, err
}

func (s *Service) process(ctx context.Context, notification Notification) (Outcome, error) {
	if secret := s.payments.SigningSecret(); secret != "" {
		if err := mercadopago.VerifyWebhookSignature(secret, notification.SignatureHeader, notification.RequestID, notification.DataID); err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "webhook signature rejected")
		}
	}

	if notification.Topic != paymentTopic {
		s.logg.Info(s.logg.WithField(ctx, "topic", notification.Topic), "ignoring non-payment notification")
		return OutcomeIgnoredTopic, nil
	}
	if notification.DataID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "payment id missing from notification")
	}

	ctx = s.logg.WithPaymentID(ctx, notification.DataID)

	seen, err := s.guard.CheckAndMark(ctx, notification.DataID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "webhook dedup check")
	}
	if seen {
		s.logg.Info(ctx, "duplicate notification suppressed")
		return OutcomeDuplicate, nil
	}

	outcome, err := s.reconcile(ctx, notification.DataID, nil)
	if err != nil {
		// Release the mark so the provider retry can land.
		if delErr := s.guard.Delete(ctx, notification.DataID); delErr != nil {
			s.logg.Error(ctx, "releasing webhook dedup mark", delErr)
		}
		return "", err
	}
	if outcome == OutcomeIgnoredStatus {
		// A later notification for this payment may carry the approval.
		if delErr := s.guard.Delete(ctx, notification.DataID); delErr != nil {
			s.logg.Error(ctx, "releasing webhook dedup mark", delErr)
		}
	}
	return outcome, nil
}

// ConfirmFromClient is the return-from-checkout fallback: the storefront posts
// the payment id it was redirected with, and the payment is reconciled through
// the same path a webhook notification takes. The order id from the route must
// match the payment's external reference.
func (s *Service) ConfirmFromClient(ctx context.Context, orderID uuid.UUID, paymentID string) (Outcome, error) {
	if orderID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if paymentID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}

	ctx = s.logg.WithOrderID(ctx, orderID.String())
	ctx = s.logg.WithPaymentID(ctx, paymentID)

	seen, err := s.guard.CheckAndMark(ctx, paymentID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirmation dedup check")
	}
	if seen {
		s.logg.Info(ctx, "duplicate confirmation suppressed")
		return OutcomeDuplicate, nil
	}

	outcome, err := s.reconcile(ctx, paymentID, &orderID)
	if err != nil || outcome == OutcomeIgnoredStatus {
		if delErr := s.guard.Delete(ctx, paymentID); delErr != nil {
			s.logg.Error(ctx, "releasing confirmation dedup mark", delErr)
		}
	}
	if err != nil {
		return "", err
	}
	return outcome, nil
}

func (s *Service) reconcile(ctx context.Context, paymentID string, expectedOrderID *uuid.UUID) (Outcome, error) {
	payment, err := s.payments.GetPayment(ctx, paymentID)
	if err != nil {
		return "", err
	}

	if payment.Status != "approved" {
		s.logg.Info(s.logg.WithField(ctx, "payment_status", payment.Status), "payment not approved, nothing to confirm")
		return OutcomeIgnoredStatus, nil
	}

	orderID, err := uuid.Parse(payment.ExternalReference)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unparseable external reference")
	}
	if expectedOrderID != nil && orderID != *expectedOrderID {
		return "", pkgerrors.New(pkgerrors.CodeConflict, "payment does not belong to this order")
	}

	result, err := s.orders.Confirm(ctx, orders.ConfirmInput{
		OrderID:   orderID,
		PaymentID: paymentID,
		Metadata:  paymentMetadata(payment),
	})
	if err != nil {
		return "", err
	}

	s.metrics.IncConfirmation(string(result))
	if result == orders.OutcomeAlreadyProcessed {
		return OutcomeAlreadyProcessed, nil
	}
	return OutcomeConfirmed, nil
}

func paymentMetadata(payment *mercadopago.Payment) types.JSONMap {
	return types.JSONMap{
		"payment_id":         payment.ID,
		"status":             payment.Status,
		"status_detail":      payment.StatusDetail,
		"transaction_amount": payment.TransactionAmount.String(),
		"currency_id":        payment.CurrencyID,
		"payment_method_id":  payment.PaymentMethodID,
		"payment_type_id":    payment.PaymentTypeID,
		"date_approved":      payment.DateApproved,
		"payer_email":        payment.Payer.Email,
	}
}
