package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ecom-api/internal/common"
	dbgen "github.com/noah-isme/ecom-api/internal/db/gen"
	"github.com/noah-isme/ecom-api/internal/events"
)

var (
	// ErrNotFound indicates the order does not exist.
	ErrNotFound = common.NewAppError(common.KindNotFound, "ORDER_NOT_FOUND", "order not found", nil)
	// ErrStoreNotFound indicates the store does not exist.
	ErrStoreNotFound = common.NewAppError(common.KindNotFound, "STORE_NOT_FOUND", "store not found", nil)
	// ErrForbidden is returned when the caller has no rights over the order or store.
	ErrForbidden = common.NewAppError(common.KindForbidden, "FORBIDDEN", "you do not have access to this resource", nil)
	// ErrInvalidStatus is returned for unknown or payment-managed target statuses.
	ErrInvalidStatus = common.NewAppError(common.KindInvalidArgument, "INVALID_STATUS", "unsupported order status", nil)
	// ErrTransitionNotAllowed is returned when the current status cannot move to the target.
	ErrTransitionNotAllowed = common.NewAppError(common.KindConflict, "INVALID_STATE", "order status transition not allowed", nil)
)

// Querier is the subset of generated queries used for reading and managing orders.
type Querier interface {
	GetOrderByID(ctx context.Context, id int64) (dbgen.Order, error)
	ListOrderItems(ctx context.Context, orderID int64) ([]dbgen.OrderItem, error)
	ListOrdersByBuyer(ctx context.Context, arg dbgen.ListOrdersByBuyerParams) ([]dbgen.Order, error)
	CountOrdersByBuyer(ctx context.Context, buyerID int64) (int64, error)
	ListOrdersByStore(ctx context.Context, arg dbgen.ListOrdersByStoreParams) ([]dbgen.Order, error)
	CountOrdersByStore(ctx context.Context, storeID int64) (int64, error)
	GetStoreByID(ctx context.Context, id int64) (dbgen.Store, error)
	UpdateOrderStatusIfCurrent(ctx context.Context, arg dbgen.UpdateOrderStatusIfCurrentParams) (int64, error)
}

// Detail is an order with its frozen line items.
type Detail struct {
	Order dbgen.Order
	Items []dbgen.OrderItem
}

// Page is one page of orders.
type Page struct {
	Orders []dbgen.Order
	Total  int64
}

// Service exposes order reads and manual fulfilment transitions.
type Service struct {
	Q      Querier
	Events events.Emitter
	Logger zerolog.Logger
}

func (s *Service) configured() error {
	if s == nil || s.Q == nil {
		return errors.New("order service not configured")
	}
	return nil
}

func (s *Service) load(ctx context.Context, orderID int64) (dbgen.Order, error) {
	ord, err := s.Q.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dbgen.Order{}, ErrNotFound
		}
		return dbgen.Order{}, fmt.Errorf("load order: %w", err)
	}
	return ord, nil
}

func (s *Service) ownsStore(ctx context.Context, p common.Principal, storeID int64) (bool, error) {
	store, err := s.Q.GetStoreByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrStoreNotFound
		}
		return false, fmt.Errorf("load store: %w", err)
	}
	return store.OwnerID == p.UserID, nil
}

// Get returns the order with items. Buyer, store owner and admins may read it.
func (s *Service) Get(ctx context.Context, p common.Principal, orderID int64) (Detail, error) {
	if err := s.configured(); err != nil {
		return Detail{}, err
	}
	ord, err := s.load(ctx, orderID)
	if err != nil {
		return Detail{}, err
	}
	if ord.BuyerID != p.UserID && !p.IsAdmin() {
		owner, err := s.ownsStore(ctx, p, ord.StoreID)
		if err != nil && !errors.Is(err, ErrStoreNotFound) {
			return Detail{}, err
		}
		if !owner {
			return Detail{}, ErrForbidden
		}
	}
	items, err := s.Q.ListOrderItems(ctx, ord.ID)
	if err != nil {
		return Detail{}, fmt.Errorf("list order items: %w", err)
	}
	return Detail{Order: ord, Items: items}, nil
}

// Status returns the order for a status check. Only the buyer and admins may ask.
func (s *Service) Status(ctx context.Context, p common.Principal, orderID int64) (dbgen.Order, error) {
	if err := s.configured(); err != nil {
		return dbgen.Order{}, err
	}
	ord, err := s.load(ctx, orderID)
	if err != nil {
		return dbgen.Order{}, err
	}
	if ord.BuyerID != p.UserID && !p.IsAdmin() {
		return dbgen.Order{}, ErrForbidden
	}
	return ord, nil
}

// ListMine pages through the caller's orders, newest first.
func (s *Service) ListMine(ctx context.Context, p common.Principal, page, perPage int) (Page, error) {
	if err := s.configured(); err != nil {
		return Page{}, err
	}
	total, err := s.Q.CountOrdersByBuyer(ctx, p.UserID)
	if err != nil {
		return Page{}, fmt.Errorf("count orders: %w", err)
	}
	limit, offset := common.Window(page, perPage)
	orders, err := s.Q.ListOrdersByBuyer(ctx, dbgen.ListOrdersByBuyerParams{
		BuyerID: p.UserID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return Page{}, fmt.Errorf("list orders: %w", err)
	}
	return Page{Orders: orders, Total: total}, nil
}

// ListByStore pages through a store's orders. Only the store owner and admins may list.
func (s *Service) ListByStore(ctx context.Context, p common.Principal, storeID int64, page, perPage int) (Page, error) {
	if err := s.configured(); err != nil {
		return Page{}, err
	}
	owner, err := s.ownsStore(ctx, p, storeID)
	if err != nil {
		return Page{}, err
	}
	if !p.IsAdmin() && !(owner && p.Role == common.RoleSeller) {
		return Page{}, ErrForbidden
	}
	total, err := s.Q.CountOrdersByStore(ctx, storeID)
	if err != nil {
		return Page{}, fmt.Errorf("count orders: %w", err)
	}
	limit, offset := common.Window(page, perPage)
	orders, err := s.Q.ListOrdersByStore(ctx, dbgen.ListOrdersByStoreParams{
		StoreID: storeID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return Page{}, fmt.Errorf("list orders: %w", err)
	}
	return Page{Orders: orders, Total: total}, nil
}

// UpdateStatus applies a manual fulfilment transition. The update only lands if
// the order is still in the status that was validated, so it cannot overwrite a
// concurrent payment transition.
func (s *Service) UpdateStatus(ctx context.Context, p common.Principal, orderID int64, next dbgen.OrderStatus) (dbgen.Order, error) {
	if err := s.configured(); err != nil {
		return dbgen.Order{}, err
	}
	if !next.Valid() || IsPaymentManaged(next) {
		return dbgen.Order{}, ErrInvalidStatus.WithDetails(map[string]string{"status": string(next)})
	}
	ord, err := s.load(ctx, orderID)
	if err != nil {
		return dbgen.Order{}, err
	}
	if !p.IsAdmin() {
		owner, err := s.ownsStore(ctx, p, ord.StoreID)
		if err != nil && !errors.Is(err, ErrStoreNotFound) {
			return dbgen.Order{}, err
		}
		if !owner {
			return dbgen.Order{}, ErrForbidden
		}
	}
	if !CanTransition(ord.Status, next) {
		return dbgen.Order{}, ErrTransitionNotAllowed.WithDetails(map[string]string{"from": string(ord.Status), "to": string(next)})
	}
	n, err := s.Q.UpdateOrderStatusIfCurrent(ctx, dbgen.UpdateOrderStatusIfCurrentParams{
		Next:    next,
		ID:      ord.ID,
		Current: ord.Status,
	})
	if err != nil {
		return dbgen.Order{}, fmt.Errorf("update order status: %w", err)
	}
	if n == 0 {
		return dbgen.Order{}, ErrTransitionNotAllowed.WithDetails(map[string]string{"reason": "order status changed concurrently"})
	}
	previous := ord.Status
	ord.Status = next
	if s.Events != nil {
		if _, err := s.Events.Emit(ctx, events.TopicOrderStatusChanged, ord.ID, map[string]any{
			"orderId": common.FormatID(ord.ID),
			"from":    previous,
			"to":      next,
			"actorId": common.FormatID(p.UserID),
		}); err != nil {
			s.Logger.Warn().Err(err).Int64("order_id", ord.ID).Msg("emit order status event")
		}
	}
	return ord, nil
}
