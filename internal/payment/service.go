// Package payment creates VNPay payment URLs and reconciles gateway callbacks.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/ecom-api/internal/common"
	dbgen "github.com/noah-isme/ecom-api/internal/db/gen"
	"github.com/noah-isme/ecom-api/internal/obs"
	"github.com/noah-isme/ecom-api/internal/order"
	"github.com/noah-isme/ecom-api/internal/payment/vnpay"
)

var (
	// ErrOrderNotFound is returned when the order does not exist or is not the caller's.
	ErrOrderNotFound = common.NewAppError(common.KindNotFound, "ORDER_NOT_FOUND", "order not found", nil)
	// ErrInvalidAmount is returned for non-positive amounts or amounts that differ from the order total.
	ErrInvalidAmount = common.NewAppError(common.KindInvalidArgument, "INVALID_AMOUNT", "amount does not match the order total", nil)
	// ErrNotPayable is returned when the order is no longer awaiting payment.
	ErrNotPayable = common.NewAppError(common.KindConflict, "ORDER_NOT_PAYABLE", "order is not awaiting payment", nil)
)

// URLBuilder signs payment redirects.
type URLBuilder interface {
	BuildPaymentURL(req vnpay.PaymentRequest) (vnpay.PaymentURL, error)
}

// Querier is the subset of generated queries used to start a payment.
type Querier interface {
	GetOrderByID(ctx context.Context, id int64) (dbgen.Order, error)
	CreatePaymentAttempt(ctx context.Context, arg dbgen.CreatePaymentAttemptParams) (dbgen.PaymentAttempt, error)
}

// Service issues payment URLs for the caller's orders.
type Service struct {
	Q       Querier
	Gateway URLBuilder
	Logger  zerolog.Logger
}

// CreateURLInput is a request for a payment redirect.
type CreateURLInput struct {
	OrderID  int64
	Amount   decimal.Decimal
	Language string
	BankCode string
	ClientIP string
}

// CreatePaymentURL validates the order and returns a signed gateway URL. Every
// call produces a fresh transaction reference so a failed attempt can be retried.
func (s *Service) CreatePaymentURL(ctx context.Context, userID int64, in CreateURLInput) (vnpay.PaymentURL, error) {
	if s == nil || s.Q == nil || s.Gateway == nil {
		return vnpay.PaymentURL{}, errors.New("payment service not configured")
	}
	if in.OrderID <= 0 {
		return vnpay.PaymentURL{}, common.ErrInvalidID
	}
	if !in.Amount.IsPositive() {
		obs.Inc(obs.PaymentURLTotal, "invalid")
		return vnpay.PaymentURL{}, ErrInvalidAmount.WithDetails(map[string]string{"amount": "must be greater than zero"})
	}
	ord, err := s.Q.GetOrderByID(ctx, in.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			obs.Inc(obs.PaymentURLTotal, "invalid")
			return vnpay.PaymentURL{}, ErrOrderNotFound
		}
		obs.Inc(obs.PaymentURLTotal, "error")
		return vnpay.PaymentURL{}, fmt.Errorf("load order: %w", err)
	}
	if ord.BuyerID != userID {
		obs.Inc(obs.PaymentURLTotal, "invalid")
		return vnpay.PaymentURL{}, ErrOrderNotFound
	}
	if !order.AwaitingPayment(ord.Status) {
		obs.Inc(obs.PaymentURLTotal, "invalid")
		return vnpay.PaymentURL{}, ErrNotPayable.WithDetails(map[string]string{"status": string(ord.Status)})
	}
	if !in.Amount.Equal(ord.Total) {
		obs.Inc(obs.PaymentURLTotal, "invalid")
		return vnpay.PaymentURL{}, ErrInvalidAmount.WithDetails(map[string]string{"expected": ord.Total.String()})
	}

	out, err := s.Gateway.BuildPaymentURL(vnpay.PaymentRequest{
		OrderID:  ord.ID,
		Amount:   ord.Total,
		Locale:   in.Language,
		BankCode: in.BankCode,
		ClientIP: in.ClientIP,
	})
	if err != nil {
		obs.Inc(obs.PaymentURLTotal, "error")
		return vnpay.PaymentURL{}, fmt.Errorf("build payment url: %w", err)
	}
	bank := pgtype.Text{}
	if code := strings.TrimSpace(in.BankCode); code != "" {
		bank = pgtype.Text{String: code, Valid: true}
	}
	if _, err := s.Q.CreatePaymentAttempt(ctx, dbgen.CreatePaymentAttemptParams{
		OrderID:  ord.ID,
		TxnRef:   out.TxnRef,
		Amount:   ord.Total,
		BankCode: bank,
	}); err != nil {
		obs.Inc(obs.PaymentURLTotal, "error")
		return vnpay.PaymentURL{}, fmt.Errorf("record payment attempt: %w", err)
	}
	obs.Inc(obs.PaymentURLTotal, "created")
	s.Logger.Info().
		Int64("order_id", ord.ID).
		Str("txn_ref", out.TxnRef).
		Str("amount", ord.Total.String()).
		Msg("payment url created")
	return out, nil
}
