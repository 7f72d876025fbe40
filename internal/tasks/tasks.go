// Package tasks defines background jobs processed by cmd/worker.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ecom-api/internal/obs"
)

// TypeCartClear empties a buyer's cart after their order was paid.
const TypeCartClear = "cart:clear"

const cartClearMaxRetry = 10

// CartClearPayload identifies the cart to clear and the order that triggered it.
type CartClearPayload struct {
	UserID  int64 `json:"user_id"`
	OrderID int64 `json:"order_id"`
}

// NewCartClearTask builds the task. The task id is derived from the order so a
// retry for the same payment is enqueued at most once.
func NewCartClearTask(userID, orderID int64) (*asynq.Task, error) {
	if userID <= 0 || orderID <= 0 {
		return nil, errors.New("tasks: user and order ids are required")
	}
	payload, err := json.Marshal(CartClearPayload{UserID: userID, OrderID: orderID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCartClear, payload,
		asynq.MaxRetry(cartClearMaxRetry),
		asynq.TaskID(fmt.Sprintf("cart-clear:%d", orderID)),
		asynq.Timeout(30*time.Second),
	), nil
}

// TaskClient is satisfied by *asynq.Client.
type TaskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer schedules background tasks.
type Enqueuer struct {
	Client TaskClient
}

// EnqueueCartClear schedules a cart clear. An already queued clear for the
// same order counts as success.
func (e Enqueuer) EnqueueCartClear(ctx context.Context, userID, orderID int64) error {
	if e.Client == nil {
		return errors.New("tasks: client not configured")
	}
	task, err := NewCartClearTask(userID, orderID)
	if err != nil {
		return err
	}
	if _, err := e.Client.EnqueueContext(ctx, task); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			return nil
		}
		return fmt.Errorf("enqueue %s: %w", TypeCartClear, err)
	}
	return nil
}

// CartClearer empties a user's cart.
type CartClearer interface {
	ClearCart(ctx context.Context, userID int64) (int64, error)
}

// Handler processes background tasks.
type Handler struct {
	Cart   CartClearer
	Logger zerolog.Logger
}

// Register attaches the task handlers to mux.
func (h *Handler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeCartClear, h.HandleCartClear)
}

// HandleCartClear clears the cart named in the payload. Malformed payloads are
// not retried.
func (h *Handler) HandleCartClear(ctx context.Context, t *asynq.Task) error {
	if h.Cart == nil {
		return errors.New("tasks: cart service not configured")
	}
	var p CartClearPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", TypeCartClear, err, asynq.SkipRetry)
	}
	if p.UserID <= 0 {
		return fmt.Errorf("%s payload missing user id: %w", TypeCartClear, asynq.SkipRetry)
	}
	removed, err := h.Cart.ClearCart(ctx, p.UserID)
	if err != nil {
		obs.Inc(obs.CartClearTotal, "retry_failed")
		return fmt.Errorf("clear cart: %w", err)
	}
	obs.Inc(obs.CartClearTotal, "retried")
	h.Logger.Info().
		Int64("user_id", p.UserID).
		Int64("order_id", p.OrderID).
		Int64("removed", removed).
		Msg("cart cleared by background task")
	return nil
}
