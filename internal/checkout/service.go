package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/ecom-api/internal/common"
	dbgen "github.com/noah-isme/ecom-api/internal/db/gen"
	"github.com/noah-isme/ecom-api/internal/events"
	"github.com/noah-isme/ecom-api/internal/lock"
	"github.com/noah-isme/ecom-api/internal/obs"
	"github.com/noah-isme/ecom-api/internal/order"
	"github.com/noah-isme/ecom-api/internal/pricing"
)

const maxCodeAttempts = 3

var (
	// ErrEmptyCart is returned when the buyer has nothing in the cart.
	ErrEmptyCart = common.NewAppError(common.KindEmptyCart, "EMPTY_CART", "cart is empty", nil)
	// ErrNoEligibleItems is returned when no cart line matches the order's store.
	ErrNoEligibleItems = common.NewAppError(common.KindNoEligibleItems, "NO_ELIGIBLE_ITEMS", "no cart items eligible for this order", nil)
)

// TxRunner runs fn inside a single database transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbgen.Querier) error) error
}

// Locker serialises work under a key.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// Service converts a cart into an immutable order snapshot.
type Service struct {
	DB      TxRunner
	Lock    Locker
	LockTTL time.Duration
	Events  events.Emitter
	Logger  zerolog.Logger
	Now     func() time.Time
	NewCode func(time.Time) (string, error)
}

// Result is the created order plus the stores whose items were left in the cart.
type Result struct {
	Order           order.Detail
	RemainingStores []int64
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) code() (string, error) {
	if s.NewCode != nil {
		return s.NewCode(s.now())
	}
	return NewOrderCode(s.now())
}

// CreateOrderFromCart snapshots the buyer's cart lines for a single store into
// a pending order. Cart items are left in place; they are cleared once payment
// is confirmed.
func (s *Service) CreateOrderFromCart(ctx context.Context, userID int64) (Result, error) {
	if s == nil || s.DB == nil {
		return Result{}, errors.New("checkout service not configured")
	}
	if userID <= 0 {
		return Result{}, common.ErrInvalidID
	}
	ctx, span := obs.StartSpan(ctx, "checkout.create_order", attribute.Int64("user.id", userID))
	var res Result
	run := func(ctx context.Context) error {
		var err error
		res, err = s.createWithRetry(ctx, userID)
		return err
	}
	var err error
	if s.Lock != nil {
		ttl := s.LockTTL
		if ttl <= 0 {
			ttl = 10 * time.Second
		}
		err = s.Lock.WithLock(ctx, lock.CheckoutKey(userID), ttl, run)
	} else {
		err = run(ctx)
	}
	obs.EndSpan(span, err)
	if err != nil {
		obs.Inc(obs.CheckoutOrdersTotal, resultLabel(err))
		return Result{}, err
	}
	obs.Inc(obs.CheckoutOrdersTotal, "created")

	if s.Events != nil {
		if _, err := s.Events.Emit(ctx, events.TopicOrderCreated, res.Order.Order.ID, map[string]any{
			"orderId": common.FormatID(res.Order.Order.ID),
			"code":    res.Order.Order.Code,
			"buyerId": common.FormatID(userID),
			"storeId": common.FormatID(res.Order.Order.StoreID),
			"total":   res.Order.Order.Total,
		}); err != nil {
			s.Logger.Warn().Err(err).Int64("order_id", res.Order.Order.ID).Msg("emit order created event")
		}
	}
	s.Logger.Info().
		Int64("order_id", res.Order.Order.ID).
		Int64("user_id", userID).
		Str("code", res.Order.Order.Code).
		Int("items", len(res.Order.Items)).
		Msg("order created from cart")
	return res, nil
}

// createWithRetry reruns the whole transaction when the generated code collides;
// a failed statement aborts the surrounding transaction so a partial retry is not possible.
func (s *Service) createWithRetry(ctx context.Context, userID int64) (Result, error) {
	var lastErr error
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.code()
		if err != nil {
			return Result{}, fmt.Errorf("generate order code: %w", err)
		}
		res, err := s.snapshot(ctx, userID, code)
		if err == nil {
			return res, nil
		}
		if !common.IsUniqueViolation(err) {
			return Result{}, err
		}
		lastErr = err
		s.Logger.Debug().Str("code", code).Msg("order code collision, retrying")
	}
	return Result{}, fmt.Errorf("create order: %w", lastErr)
}

func (s *Service) snapshot(ctx context.Context, userID int64, code string) (Result, error) {
	var res Result
	err := s.DB.InTx(ctx, func(q dbgen.Querier) error {
		lines, err := q.ListCartLinesForCheckout(ctx, userID)
		if err != nil {
			return fmt.Errorf("load cart lines: %w", err)
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}
		storeID := lines[0].StoreID
		selected := make([]dbgen.ListCartLinesForCheckoutRow, 0, len(lines))
		remaining := make([]int64, 0)
		seen := map[int64]bool{}
		for _, l := range lines {
			if l.StoreID == storeID {
				selected = append(selected, l)
				continue
			}
			if !seen[l.StoreID] {
				seen[l.StoreID] = true
				remaining = append(remaining, l.StoreID)
			}
		}
		if len(selected) == 0 {
			return ErrNoEligibleItems
		}

		priced := make([]pricing.Line, 0, len(selected))
		for _, l := range selected {
			priced = append(priced, pricing.Line{Qty: l.Qty, UnitPrice: pricing.EffectivePrice(l.Price, l.DiscountPercentage)})
		}
		summary := pricing.Compute(priced)

		ord, err := q.CreateOrder(ctx, dbgen.CreateOrderParams{
			Code:     code,
			BuyerID:  userID,
			StoreID:  storeID,
			Subtotal: summary.Subtotal,
			Total:    summary.Total,
			Status:   dbgen.OrderStatusPending,
		})
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		items := make([]dbgen.OrderItem, 0, len(selected))
		for i, l := range selected {
			it, err := q.CreateOrderItem(ctx, dbgen.CreateOrderItemParams{
				OrderID:   ord.ID,
				ProductID: l.ProductID,
				VariantID: l.VariantID,
				UnitPrice: priced[i].UnitPrice,
				Qty:       l.Qty,
			})
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
			items = append(items, it)
		}
		res = Result{Order: order.Detail{Order: ord, Items: items}, RemainingStores: remaining}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func resultLabel(err error) string {
	switch common.KindOf(err) {
	case common.KindEmptyCart:
		return "empty_cart"
	case common.KindNoEligibleItems:
		return "no_eligible_items"
	case common.KindConflict:
		return "conflict"
	default:
		return "error"
	}
}
