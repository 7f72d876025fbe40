package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/ecom-api/internal/common"
	dbgen "github.com/noah-isme/ecom-api/internal/db/gen"
	"github.com/noah-isme/ecom-api/internal/events"
	"github.com/noah-isme/ecom-api/internal/obs"
	"github.com/noah-isme/ecom-api/internal/order"
	"github.com/noah-isme/ecom-api/internal/payment/vnpay"
	"github.com/noah-isme/ecom-api/internal/pricing"
)

// TxRunner runs fn inside a single database transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbgen.Querier) error) error
}

// Verifier checks callback signatures.
type Verifier interface {
	Verify(params url.Values) bool
}

// CartClearer empties a buyer's cart.
type CartClearer interface {
	ClearCart(ctx context.Context, userID int64) (int64, error)
}

// RetryEnqueuer schedules a deferred cart clear.
type RetryEnqueuer interface {
	EnqueueCartClear(ctx context.Context, userID, orderID int64) error
}

// Reconciler handles the two gateway callbacks. Return only reports the
// outcome to the browser; Notify is the only path that changes order state.
type Reconciler struct {
	DB       TxRunner
	Verifier Verifier
	Cart     CartClearer
	Retry    RetryEnqueuer
	Events   events.Emitter
	Logger   zerolog.Logger
}

// NotifyResult is the outcome of a server-to-server notification.
type NotifyResult struct {
	Outcome NotifyOutcome
	OrderID int64
	// Status is the order status after handling, when the order was found.
	Status dbgen.OrderStatus
}

type notifyParams struct {
	txnRef            string
	responseCode      string
	transactionStatus string
	amount            string
}

func readNotifyParams(params url.Values) (notifyParams, bool) {
	p := notifyParams{
		txnRef:            strings.TrimSpace(params.Get("vnp_TxnRef")),
		responseCode:      strings.TrimSpace(params.Get("vnp_ResponseCode")),
		transactionStatus: strings.TrimSpace(params.Get("vnp_TransactionStatus")),
		amount:            strings.TrimSpace(params.Get("vnp_Amount")),
	}
	ok := p.txnRef != "" && p.responseCode != "" && p.transactionStatus != "" && p.amount != ""
	return p, ok
}

// Notify verifies and applies a payment notification. It never returns an
// error: every path ends in exactly one outcome, and unexpected failures map to
// OutcomeInternalError so the gateway retries.
func (r *Reconciler) Notify(ctx context.Context, params url.Values) NotifyResult {
	if r == nil {
		return NotifyResult{Outcome: OutcomeInternalError}
	}
	ctx, span := obs.StartSpan(ctx, "payment.notify", attribute.String("vnp.txn_ref", params.Get("vnp_TxnRef")))
	res := r.notify(ctx, params)
	span.SetAttributes(
		attribute.String("payment.rsp_code", res.Outcome.Code()),
		attribute.Int64("order.id", res.OrderID),
	)
	obs.EndSpan(span, nil)
	obs.Inc(obs.PaymentNotifyTotal, res.Outcome.Code())
	evt := r.Logger.Info()
	if res.Outcome == OutcomeInternalError {
		evt = r.Logger.Error()
	} else if res.Outcome != OutcomeConfirmed && res.Outcome != OutcomeAlreadyPaid {
		evt = r.Logger.Warn()
	}
	evt.Str("outcome", res.Outcome.String()).
		Str("rsp_code", res.Outcome.Code()).
		Int64("order_id", res.OrderID).
		Str("txn_ref", params.Get("vnp_TxnRef")).
		Str("order_status", string(res.Status)).
		Msg("payment notification handled")
	return res
}

func (r *Reconciler) notify(ctx context.Context, params url.Values) NotifyResult {
	if r.DB == nil || r.Verifier == nil {
		return NotifyResult{Outcome: OutcomeInternalError}
	}
	if !r.Verifier.Verify(params) {
		return NotifyResult{Outcome: OutcomeInvalidSignature}
	}
	p, ok := readNotifyParams(params)
	if !ok {
		return NotifyResult{Outcome: OutcomeMissingParams}
	}
	orderID, err := vnpay.ParseTxnRef(p.txnRef)
	if err != nil {
		return NotifyResult{Outcome: OutcomeInvalidOrderID}
	}
	minor, amountErr := strconv.ParseInt(p.amount, 10, 64)

	next := dbgen.OrderStatusPaymentFailed
	if p.responseCode == vnpay.ResponseSuccess && p.transactionStatus == vnpay.ResponseSuccess {
		next = dbgen.OrderStatusPaid
	}

	res := NotifyResult{OrderID: orderID}
	var (
		ord dbgen.Order
		// repeated is set for a failure already recorded against this txn ref
		repeated bool
	)
	err = r.DB.InTx(ctx, func(q dbgen.Querier) error {
		var err error
		ord, err = q.GetOrderByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				res.Outcome = OutcomeOrderNotFound
				return nil
			}
			return fmt.Errorf("load order: %w", err)
		}
		res.Status = ord.Status
		if amountErr != nil || !pricing.FromMinorUnits(minor, vnpay.AmountScale).Equal(ord.Total) {
			res.Outcome = OutcomeInvalidAmount
			return nil
		}
		if !order.AwaitingPayment(ord.Status) {
			res.Outcome = alreadyProcessed(ord.Status)
			return nil
		}
		n, err := q.TransitionOrderPaymentStatus(ctx, dbgen.TransitionOrderPaymentStatusParams{ID: ord.ID, Status: next})
		if err != nil {
			return fmt.Errorf("transition order: %w", err)
		}
		if n == 0 {
			// a concurrent notification won the conditional update
			cur, err := q.GetOrderByID(ctx, ord.ID)
			if err != nil {
				return fmt.Errorf("reload order: %w", err)
			}
			res.Status = cur.Status
			res.Outcome = alreadyProcessed(cur.Status)
			return nil
		}
		attempt := dbgen.PaymentAttemptStatusFailed
		if next == dbgen.OrderStatusPaid {
			attempt = dbgen.PaymentAttemptStatusSucceeded
		}
		recorded, err := q.RecordPaymentAttemptResult(ctx, dbgen.RecordPaymentAttemptResultParams{
			TxnRef:            p.txnRef,
			Status:            attempt,
			ResponseCode:      pgtype.Text{String: p.responseCode, Valid: true},
			TransactionStatus: pgtype.Text{String: p.transactionStatus, Valid: true},
		})
		if err != nil {
			return fmt.Errorf("record payment attempt: %w", err)
		}
		repeated = recorded == 0 && ord.Status == dbgen.OrderStatusPaymentFailed && next == dbgen.OrderStatusPaymentFailed
		res.Status = next
		res.Outcome = OutcomeConfirmed
		return nil
	})
	if err != nil {
		r.Logger.Error().Err(err).Int64("order_id", orderID).Msg("payment notification failed")
		return NotifyResult{Outcome: OutcomeInternalError, OrderID: orderID}
	}
	if res.Outcome == OutcomeConfirmed {
		if repeated {
			r.Logger.Debug().Int64("order_id", orderID).Str("txn_ref", p.txnRef).Msg("repeated payment failure, side effects skipped")
			return res
		}
		r.afterTransition(context.WithoutCancel(ctx), ord, next, p)
	}
	return res
}

func alreadyProcessed(status dbgen.OrderStatus) NotifyOutcome {
	if status == dbgen.OrderStatusPaid {
		return OutcomeAlreadyPaid
	}
	if order.AwaitingPayment(status) {
		// only reachable if the row changed back between update and reload
		return OutcomeInternalError
	}
	return OutcomeAlreadyConfirmed
}

// afterTransition runs the side effects of a committed transition. Failures are
// logged and never change the acknowledgement sent to the gateway.
func (r *Reconciler) afterTransition(ctx context.Context, ord dbgen.Order, status dbgen.OrderStatus, p notifyParams) {
	if status == dbgen.OrderStatusPaid {
		r.clearCart(ctx, ord)
	}
	if r.Events == nil {
		return
	}
	topic := events.TopicPaymentFailed
	if status == dbgen.OrderStatusPaid {
		topic = events.TopicOrderPaid
	}
	if _, err := r.Events.Emit(ctx, topic, ord.ID, map[string]any{
		"orderId":           common.FormatID(ord.ID),
		"code":              ord.Code,
		"buyerId":           common.FormatID(ord.BuyerID),
		"status":            status,
		"total":             ord.Total,
		"txnRef":            p.txnRef,
		"responseCode":      p.responseCode,
		"transactionStatus": p.transactionStatus,
	}); err != nil {
		r.Logger.Warn().Err(err).Int64("order_id", ord.ID).Str("topic", topic).Msg("emit payment event")
	}
}

func (r *Reconciler) clearCart(ctx context.Context, ord dbgen.Order) {
	if r.Cart == nil {
		return
	}
	removed, err := r.Cart.ClearCart(ctx, ord.BuyerID)
	if err == nil {
		obs.Inc(obs.CartClearTotal, "cleared")
		r.Logger.Debug().Int64("order_id", ord.ID).Int64("user_id", ord.BuyerID).Int64("removed", removed).Msg("cart cleared after payment")
		return
	}
	obs.Inc(obs.CartClearTotal, "failed")
	r.Logger.Warn().Err(err).Int64("order_id", ord.ID).Int64("user_id", ord.BuyerID).Msg("clear cart after payment")
	if r.Retry == nil {
		return
	}
	if err := r.Retry.EnqueueCartClear(ctx, ord.BuyerID, ord.ID); err != nil {
		r.Logger.Error().Err(err).Int64("order_id", ord.ID).Int64("user_id", ord.BuyerID).Msg("enqueue cart clear retry")
		return
	}
	obs.Inc(obs.CartClearTotal, "deferred")
}

// ReturnResult is what the buyer's browser is told after the gateway redirect.
type ReturnResult struct {
	OrderID           string
	TxnRef            string
	ResponseCode      string
	TransactionStatus string
	Status            string
	Message           string
}

// Return verifies the browser redirect and derives a display status. It never
// touches order state because the browser is an untrusted relay.
func (r *Reconciler) Return(params url.Values) ReturnResult {
	res := ReturnResult{
		TxnRef:            params.Get("vnp_TxnRef"),
		ResponseCode:      params.Get("vnp_ResponseCode"),
		TransactionStatus: params.Get("vnp_TransactionStatus"),
		Status:            "failed",
		Message:           vnpay.MessageChecksumInvalid,
	}
	if id, err := vnpay.ParseTxnRef(res.TxnRef); err == nil {
		res.OrderID = common.FormatID(id)
	}
	if r != nil && r.Verifier != nil && r.Verifier.Verify(params) {
		if res.ResponseCode == vnpay.ResponseSuccess {
			res.Status = "success"
		}
		res.Message = vnpay.ResponseMessage(res.ResponseCode)
	}
	obs.Inc(obs.PaymentReturnTotal, res.Status)
	if r != nil {
		r.Logger.Info().
			Str("order_id", res.OrderID).
			Str("txn_ref", res.TxnRef).
			Str("status", res.Status).
			Str("rsp_code", res.ResponseCode).
			Msg("payment return handled")
	}
	return res
}

// RedirectURL appends the result to base as query parameters.
func (res ReturnResult) RedirectURL(base string) string {
	if strings.TrimSpace(base) == "" {
		base = "/"
	}
	q := url.Values{}
	q.Set("orderId", res.OrderID)
	q.Set("vnp_TxnRef", res.TxnRef)
	q.Set("vnp_ResponseCode", res.ResponseCode)
	q.Set("vnp_TransactionStatus", res.TransactionStatus)
	q.Set("status", res.Status)
	q.Set("message", res.Message)
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + q.Encode()
}
