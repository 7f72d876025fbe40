package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/ecom-api/internal/common"
	dbgen "github.com/noah-isme/ecom-api/internal/db/gen"
	"github.com/noah-isme/ecom-api/internal/pricing"
)

const (
	productStatusActive = "active"
	// MaxItemQty caps the quantity a single request may add or set.
	MaxItemQty = 9999
)

var (
	// ErrInvalidQuantity is returned when a quantity below one is added.
	ErrInvalidQuantity = common.NewAppError(common.KindInvalidArgument, "INVALID_QUANTITY", "qty must be at least 1", nil)
	// ErrQuantityTooLarge is returned when a line would exceed the allowed quantity.
	ErrQuantityTooLarge = common.NewAppError(common.KindInvalidArgument, "QUANTITY_TOO_LARGE", "qty is too large", nil)
	// ErrItemNotFound indicates the cart item does not exist in the caller's cart.
	ErrItemNotFound = common.NewAppError(common.KindNotFound, "CART_ITEM_NOT_FOUND", "cart item not found", nil)
	// ErrProductNotFound indicates the referenced product does not exist.
	ErrProductNotFound = common.NewAppError(common.KindNotFound, "PRODUCT_NOT_FOUND", "product not found", nil)
	// ErrProductUnavailable indicates the product exists but cannot be bought.
	ErrProductUnavailable = common.NewAppError(common.KindInvalidArgument, "PRODUCT_UNAVAILABLE", "product is not available", nil)
)

// Querier is the subset of generated queries the cart needs.
type Querier interface {
	UpsertCartForUser(ctx context.Context, userID int64) (dbgen.Cart, error)
	GetProductForCart(ctx context.Context, id int64) (dbgen.GetProductForCartRow, error)
	UpsertCartItem(ctx context.Context, arg dbgen.UpsertCartItemParams) (dbgen.CartItem, error)
	UpdateCartItemQtyForUser(ctx context.Context, arg dbgen.UpdateCartItemQtyForUserParams) (dbgen.CartItem, error)
	DeleteCartItemForUser(ctx context.Context, arg dbgen.DeleteCartItemForUserParams) (int64, error)
	ClearCartByUser(ctx context.Context, userID int64) (int64, error)
	ListCartLines(ctx context.Context, userID int64) ([]dbgen.ListCartLinesRow, error)
}

// Service encapsulates cart domain operations. Every operation is scoped to
// the cart owned by userID; an item id from another user's cart is not found.
type Service struct {
	Q Querier
}

// Item is the minimal cart line returned by mutations.
type Item struct {
	ID        int64
	CartID    int64
	ProductID int64
	VariantID *int64
	Qty       int32
}

// Line is a cart item priced against the live product row.
type Line struct {
	Item
	StoreID        int64
	Title          string
	ImageURL       string
	BasePrice      decimal.Decimal
	Discount       decimal.NullDecimal
	EffectivePrice decimal.Decimal
	LineTotal      decimal.Decimal
}

// View is the cart as shown to its owner.
type View struct {
	CartID   int64
	Items    []Line
	Subtotal decimal.Decimal
}

func (s *Service) configured() error {
	if s == nil || s.Q == nil {
		return errors.New("cart service not configured")
	}
	return nil
}

// EnsureCart returns the caller's cart id, creating the row on first use.
// Concurrent first calls converge on the same row.
func (s *Service) EnsureCart(ctx context.Context, userID int64) (int64, error) {
	if err := s.configured(); err != nil {
		return 0, err
	}
	cart, err := s.Q.UpsertCartForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("ensure cart: %w", err)
	}
	return cart.ID, nil
}

// AddItem adds qty of a product, incrementing the existing line if present.
func (s *Service) AddItem(ctx context.Context, userID, productID int64, variantID *int64, qty int32) (Item, error) {
	if err := s.configured(); err != nil {
		return Item{}, err
	}
	if qty < 1 {
		return Item{}, ErrInvalidQuantity
	}
	if qty > MaxItemQty {
		return Item{}, ErrQuantityTooLarge
	}
	product, err := s.Q.GetProductForCart(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, ErrProductNotFound
		}
		return Item{}, fmt.Errorf("load product: %w", err)
	}
	if !strings.EqualFold(product.Status, productStatusActive) {
		return Item{}, ErrProductUnavailable
	}
	cartID, err := s.EnsureCart(ctx, userID)
	if err != nil {
		return Item{}, err
	}
	row, err := s.Q.UpsertCartItem(ctx, dbgen.UpsertCartItemParams{
		CartID:    cartID,
		ProductID: productID,
		VariantID: toInt8(variantID),
		Qty:       qty,
	})
	if err != nil {
		if common.IsOutOfRange(err) {
			return Item{}, ErrQuantityTooLarge.WithCause(err)
		}
		return Item{}, fmt.Errorf("upsert cart item: %w", err)
	}
	return toItem(row), nil
}

// UpdateItemQuantity sets the quantity exactly. A quantity of zero or less removes the item.
// The returned bool reports whether the item still exists.
func (s *Service) UpdateItemQuantity(ctx context.Context, userID, itemID int64, qty int32) (Item, bool, error) {
	if err := s.configured(); err != nil {
		return Item{}, false, err
	}
	if qty <= 0 {
		n, err := s.Q.DeleteCartItemForUser(ctx, dbgen.DeleteCartItemForUserParams{ID: itemID, UserID: userID})
		if err != nil {
			return Item{}, false, fmt.Errorf("delete cart item: %w", err)
		}
		if n == 0 {
			return Item{}, false, ErrItemNotFound
		}
		return Item{}, false, nil
	}
	if qty > MaxItemQty {
		return Item{}, false, ErrQuantityTooLarge
	}
	row, err := s.Q.UpdateCartItemQtyForUser(ctx, dbgen.UpdateCartItemQtyForUserParams{Qty: qty, ID: itemID, UserID: userID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, false, ErrItemNotFound
		}
		return Item{}, false, fmt.Errorf("update cart item: %w", err)
	}
	return toItem(row), true, nil
}

// RemoveItem deletes an item. Removing an absent item succeeds.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID int64) error {
	if err := s.configured(); err != nil {
		return err
	}
	if _, err := s.Q.DeleteCartItemForUser(ctx, dbgen.DeleteCartItemForUserParams{ID: itemID, UserID: userID}); err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	return nil
}

// ClearCart empties the caller's cart. The cart row itself is kept and a user
// without a cart is a no-op. It returns the number of removed items.
func (s *Service) ClearCart(ctx context.Context, userID int64) (int64, error) {
	if err := s.configured(); err != nil {
		return 0, err
	}
	n, err := s.Q.ClearCartByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("clear cart: %w", err)
	}
	return n, nil
}

// GetCartView prices the caller's cart with current product prices.
func (s *Service) GetCartView(ctx context.Context, userID int64) (View, error) {
	if err := s.configured(); err != nil {
		return View{}, err
	}
	cartID, err := s.EnsureCart(ctx, userID)
	if err != nil {
		return View{}, err
	}
	rows, err := s.Q.ListCartLines(ctx, userID)
	if err != nil {
		return View{}, fmt.Errorf("list cart lines: %w", err)
	}
	view := View{CartID: cartID, Items: make([]Line, 0, len(rows))}
	priced := make([]pricing.Line, 0, len(rows))
	for _, row := range rows {
		unit := pricing.EffectivePrice(row.Price, row.DiscountPercentage)
		line := Line{
			Item: Item{
				ID:        row.ID,
				CartID:    row.CartID,
				ProductID: row.ProductID,
				VariantID: fromInt8(row.VariantID),
				Qty:       row.Qty,
			},
			StoreID:        row.StoreID,
			Title:          row.Title,
			BasePrice:      row.Price,
			Discount:       row.DiscountPercentage,
			EffectivePrice: unit,
			LineTotal:      pricing.LineTotal(unit, row.Qty),
		}
		if row.ImageUrl.Valid {
			line.ImageURL = row.ImageUrl.String
		}
		view.Items = append(view.Items, line)
		priced = append(priced, pricing.Line{Qty: row.Qty, UnitPrice: unit})
	}
	view.Subtotal = pricing.Compute(priced).Subtotal
	return view, nil
}

func toItem(row dbgen.CartItem) Item {
	return Item{
		ID:        row.ID,
		CartID:    row.CartID,
		ProductID: row.ProductID,
		VariantID: fromInt8(row.VariantID),
		Qty:       row.Qty,
	}
}

func toInt8(v *int64) pgtype.Int8 {
	if v == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: *v, Valid: true}
}

func fromInt8(v pgtype.Int8) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}
