// Package memdb is an in-memory implementation of the generated Querier used by
// service tests. It mirrors the constraints of the PostgreSQL schema that the
// services rely on: unique keys, owner-scoped cart mutations and the
// conditional order status updates.
package memdb

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	dbgen "github.com/noah-isme/ecom-api/internal/db/gen"
)

type state struct {
	seq       int64
	users     map[int64]dbgen.User
	stores    map[int64]dbgen.Store
	products  map[int64]dbgen.Product
	carts     map[int64]dbgen.Cart
	cartItems map[int64]dbgen.CartItem
	orders    map[int64]dbgen.Order
	items     map[int64]dbgen.OrderItem
	attempts  map[int64]dbgen.PaymentAttempt
	events    []dbgen.DomainEvent
}

func newState() *state {
	return &state{
		users:     map[int64]dbgen.User{},
		stores:    map[int64]dbgen.Store{},
		products:  map[int64]dbgen.Product{},
		carts:     map[int64]dbgen.Cart{},
		cartItems: map[int64]dbgen.CartItem{},
		orders:    map[int64]dbgen.Order{},
		items:     map[int64]dbgen.OrderItem{},
		attempts:  map[int64]dbgen.PaymentAttempt{},
	}
}

func (s *state) clone() *state {
	cp := newState()
	cp.seq = s.seq
	for k, v := range s.users {
		cp.users[k] = v
	}
	for k, v := range s.stores {
		cp.stores[k] = v
	}
	for k, v := range s.products {
		cp.products[k] = v
	}
	for k, v := range s.carts {
		cp.carts[k] = v
	}
	for k, v := range s.cartItems {
		cp.cartItems[k] = v
	}
	for k, v := range s.orders {
		cp.orders[k] = v
	}
	for k, v := range s.items {
		cp.items[k] = v
	}
	for k, v := range s.attempts {
		cp.attempts[k] = v
	}
	cp.events = append([]dbgen.DomainEvent(nil), s.events...)
	return cp
}

// FaultFunc is consulted before every query. n is the 1-based call count for op.
// A non-nil error aborts the query.
type FaultFunc func(op string, n int) error

// Store is a goroutine-safe in-memory database.
type Store struct {
	mu    sync.Mutex
	txMu  sync.Mutex
	st    *state
	calls map[string]int
	fault FaultFunc
	now   func() time.Time
}

var _ dbgen.Querier = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{st: newState(), calls: map[string]int{}, now: time.Now}
}

// SetFault installs a fault injector; nil removes it.
func (s *Store) SetFault(f FaultFunc) {
	s.mu.Lock()
	s.fault = f
	s.mu.Unlock()
}

// Calls returns how often op has been invoked.
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// InTx runs fn with all-or-nothing semantics. Transactions are serialised,
// which is at least as strict as the row locks the services rely on.
func (s *Store) InTx(_ context.Context, fn func(dbgen.Querier) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) enter(op string) error {
	s.calls[op]++
	if s.fault != nil {
		return s.fault(op, s.calls[op])
	}
	return nil
}

func (s *Store) next() int64 {
	s.st.seq++
	return s.st.seq
}

func (s *Store) ts() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: s.now(), Valid: true}
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: constraint, Message: "duplicate key value violates unique constraint"}
}

func fkViolation(constraint string) error {
	return &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: constraint, Message: "violates foreign key constraint"}
}

// Seed helpers.

// AddUser inserts a user and returns its id.
func (s *Store) AddUser(email string, role dbgen.UserRole) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next()
	s.st.users[id] = dbgen.User{ID: id, Email: email, FullName: email, Role: role, CreatedAt: s.ts()}
	return id
}

// AddStore inserts a store owned by ownerID.
func (s *Store) AddStore(ownerID int64, name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next()
	s.st.stores[id] = dbgen.Store{ID: id, OwnerID: ownerID, Name: name, CreatedAt: s.ts()}
	return id
}

// AddProduct inserts an active product.
func (s *Store) AddProduct(storeID int64, title string, price decimal.Decimal, discount decimal.NullDecimal) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next()
	s.st.products[id] = dbgen.Product{
		ID:                 id,
		StoreID:            storeID,
		Title:              title,
		Price:              price,
		DiscountPercentage: discount,
		Status:             "active",
		CreatedAt:          s.ts(),
		UpdatedAt:          s.ts(),
	}
	return id
}

// SetProductPrice changes a product's price and discount.
func (s *Store) SetProductPrice(id int64, price decimal.Decimal, discount decimal.NullDecimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.st.products[id]
	p.Price = price
	p.DiscountPercentage = discount
	s.st.products[id] = p
}

// SetProductStatus changes a product's status.
func (s *Store) SetProductStatus(id int64, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.st.products[id]
	p.Status = status
	s.st.products[id] = p
}

// AddOrder inserts an order directly, bypassing checkout.
func (s *Store) AddOrder(buyerID, storeID int64, total decimal.Decimal, status dbgen.OrderStatus) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next()
	s.st.orders[id] = dbgen.Order{
		ID:        id,
		Code:      fmt.Sprintf("ODSEED%d", id),
		BuyerID:   buyerID,
		StoreID:   storeID,
		Subtotal:  total,
		Total:     total,
		Status:    status,
		CreatedAt: s.ts(),
		UpdatedAt: s.ts(),
	}
	return id
}

// Orders returns every order sorted by id.
func (s *Store) Orders() []dbgen.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]dbgen.Order, 0, len(s.st.orders))
	for _, o := range s.st.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// OrderItemCount returns the number of stored order items.
func (s *Store) OrderItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.items)
}

// CartItemCount returns the number of items in the user's cart.
func (s *Store) CartItemCount(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.cartByUser(userID)
	if !ok {
		return 0
	}
	n := 0
	for _, it := range s.st.cartItems {
		if it.CartID == cart.ID {
			n++
		}
	}
	return n
}

// PaymentAttempt returns the attempt stored under txnRef.
func (s *Store) PaymentAttempt(txnRef string) (dbgen.PaymentAttempt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.st.attempts {
		if a.TxnRef == txnRef {
			return a, true
		}
	}
	return dbgen.PaymentAttempt{}, false
}

// Events returns the stored domain events in insertion order.
func (s *Store) Events() []dbgen.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]dbgen.DomainEvent(nil), s.st.events...)
}

func (s *Store) cartByUser(userID int64) (dbgen.Cart, bool) {
	for _, c := range s.st.carts {
		if c.UserID == userID {
			return c, true
		}
	}
	return dbgen.Cart{}, false
}

func (s *Store) userCartItems(userID int64) []dbgen.CartItem {
	cart, ok := s.cartByUser(userID)
	if !ok {
		return nil
	}
	var out []dbgen.CartItem
	for _, it := range s.st.cartItems {
		if it.CartID == cart.ID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Queries.

func (s *Store) ClearCartByUser(_ context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ClearCartByUser"); err != nil {
		return 0, err
	}
	var n int64
	for _, it := range s.userCartItems(userID) {
		delete(s.st.cartItems, it.ID)
		n++
	}
	return n, nil
}

func (s *Store) CountOrdersByBuyer(_ context.Context, buyerID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CountOrdersByBuyer"); err != nil {
		return 0, err
	}
	var n int64
	for _, o := range s.st.orders {
		if o.BuyerID == buyerID {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountOrdersByStore(_ context.Context, storeID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CountOrdersByStore"); err != nil {
		return 0, err
	}
	var n int64
	for _, o := range s.st.orders {
		if o.StoreID == storeID {
			n++
		}
	}
	return n, nil
}

func (s *Store) CreateOrder(_ context.Context, arg dbgen.CreateOrderParams) (dbgen.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateOrder"); err != nil {
		return dbgen.Order{}, err
	}
	for _, o := range s.st.orders {
		if o.Code == arg.Code {
			return dbgen.Order{}, uniqueViolation("orders_code_key")
		}
	}
	if _, ok := s.st.stores[arg.StoreID]; !ok {
		return dbgen.Order{}, fkViolation("orders_store_id_fkey")
	}
	id := s.next()
	o := dbgen.Order{
		ID:        id,
		Code:      arg.Code,
		BuyerID:   arg.BuyerID,
		StoreID:   arg.StoreID,
		Subtotal:  arg.Subtotal,
		Total:     arg.Total,
		Status:    arg.Status,
		CreatedAt: s.ts(),
		UpdatedAt: s.ts(),
	}
	s.st.orders[id] = o
	return o, nil
}

func (s *Store) CreateOrderItem(_ context.Context, arg dbgen.CreateOrderItemParams) (dbgen.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateOrderItem"); err != nil {
		return dbgen.OrderItem{}, err
	}
	if _, ok := s.st.orders[arg.OrderID]; !ok {
		return dbgen.OrderItem{}, fkViolation("order_items_order_id_fkey")
	}
	id := s.next()
	it := dbgen.OrderItem{
		ID:        id,
		OrderID:   arg.OrderID,
		ProductID: arg.ProductID,
		VariantID: arg.VariantID,
		UnitPrice: arg.UnitPrice,
		Qty:       arg.Qty,
	}
	s.st.items[id] = it
	return it, nil
}

func (s *Store) CreatePaymentAttempt(_ context.Context, arg dbgen.CreatePaymentAttemptParams) (dbgen.PaymentAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreatePaymentAttempt"); err != nil {
		return dbgen.PaymentAttempt{}, err
	}
	for _, a := range s.st.attempts {
		if a.TxnRef == arg.TxnRef {
			return dbgen.PaymentAttempt{}, uniqueViolation("payment_attempts_txn_ref_key")
		}
	}
	id := s.next()
	a := dbgen.PaymentAttempt{
		ID:        id,
		OrderID:   arg.OrderID,
		TxnRef:    arg.TxnRef,
		Amount:    arg.Amount,
		Status:    dbgen.PaymentAttemptStatusInitiated,
		BankCode:  arg.BankCode,
		CreatedAt: s.ts(),
		UpdatedAt: s.ts(),
	}
	s.st.attempts[id] = a
	return a, nil
}

func (s *Store) DeleteCartItemForUser(_ context.Context, arg dbgen.DeleteCartItemForUserParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteCartItemForUser"); err != nil {
		return 0, err
	}
	for _, it := range s.userCartItems(arg.UserID) {
		if it.ID == arg.ID {
			delete(s.st.cartItems, it.ID)
			return 1, nil
		}
	}
	return 0, nil
}

func (s *Store) GetCartByUser(_ context.Context, userID int64) (dbgen.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetCartByUser"); err != nil {
		return dbgen.Cart{}, err
	}
	cart, ok := s.cartByUser(userID)
	if !ok {
		return dbgen.Cart{}, pgx.ErrNoRows
	}
	return cart, nil
}

func (s *Store) GetOrderByID(_ context.Context, id int64) (dbgen.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetOrderByID"); err != nil {
		return dbgen.Order{}, err
	}
	o, ok := s.st.orders[id]
	if !ok {
		return dbgen.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (s *Store) GetProductForCart(_ context.Context, id int64) (dbgen.GetProductForCartRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetProductForCart"); err != nil {
		return dbgen.GetProductForCartRow{}, err
	}
	p, ok := s.st.products[id]
	if !ok {
		return dbgen.GetProductForCartRow{}, pgx.ErrNoRows
	}
	return dbgen.GetProductForCartRow{
		ID:                 p.ID,
		StoreID:            p.StoreID,
		Title:              p.Title,
		Price:              p.Price,
		DiscountPercentage: p.DiscountPercentage,
		Status:             p.Status,
	}, nil
}

func (s *Store) GetStoreByID(_ context.Context, id int64) (dbgen.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetStoreByID"); err != nil {
		return dbgen.Store{}, err
	}
	st, ok := s.st.stores[id]
	if !ok {
		return dbgen.Store{}, pgx.ErrNoRows
	}
	return st, nil
}

func (s *Store) InsertDomainEvent(_ context.Context, arg dbgen.InsertDomainEventParams) (dbgen.DomainEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("InsertDomainEvent"); err != nil {
		return dbgen.DomainEvent{}, err
	}
	evt := dbgen.DomainEvent{
		ID:          s.next(),
		Topic:       arg.Topic,
		AggregateID: arg.AggregateID,
		Payload:     append([]byte(nil), arg.Payload...),
		OccurredAt:  s.ts(),
	}
	s.st.events = append(s.st.events, evt)
	return evt, nil
}

func (s *Store) ListCartLines(_ context.Context, userID int64) ([]dbgen.ListCartLinesRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListCartLines"); err != nil {
		return nil, err
	}
	var out []dbgen.ListCartLinesRow
	for _, it := range s.userCartItems(userID) {
		p, ok := s.st.products[it.ProductID]
		if !ok {
			continue
		}
		out = append(out, dbgen.ListCartLinesRow{
			ID:                 it.ID,
			CartID:             it.CartID,
			ProductID:          it.ProductID,
			VariantID:          it.VariantID,
			Qty:                it.Qty,
			StoreID:            p.StoreID,
			Title:              p.Title,
			ImageUrl:           p.ImageUrl,
			Price:              p.Price,
			DiscountPercentage: p.DiscountPercentage,
		})
	}
	return out, nil
}

func (s *Store) ListCartLinesForCheckout(_ context.Context, userID int64) ([]dbgen.ListCartLinesForCheckoutRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListCartLinesForCheckout"); err != nil {
		return nil, err
	}
	var out []dbgen.ListCartLinesForCheckoutRow
	for _, it := range s.userCartItems(userID) {
		p, ok := s.st.products[it.ProductID]
		if !ok {
			continue
		}
		out = append(out, dbgen.ListCartLinesForCheckoutRow{
			ID:                 it.ID,
			ProductID:          it.ProductID,
			VariantID:          it.VariantID,
			Qty:                it.Qty,
			StoreID:            p.StoreID,
			Price:              p.Price,
			DiscountPercentage: p.DiscountPercentage,
		})
	}
	return out, nil
}

func (s *Store) ListOrderItems(_ context.Context, orderID int64) ([]dbgen.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListOrderItems"); err != nil {
		return nil, err
	}
	var out []dbgen.OrderItem
	for _, it := range s.st.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) listOrders(match func(dbgen.Order) bool, limit, offset int32) ([]dbgen.Order, error) {
	if offset < 0 {
		return nil, &pgconn.PgError{Code: pgerrcode.InvalidRowCountInResultOffsetClause, Message: "OFFSET must not be negative"}
	}
	var out []dbgen.Order
	for _, o := range s.st.orders {
		if match(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if int(offset) >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit >= 0 && int(limit) < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListOrdersByBuyer(_ context.Context, arg dbgen.ListOrdersByBuyerParams) ([]dbgen.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListOrdersByBuyer"); err != nil {
		return nil, err
	}
	return s.listOrders(func(o dbgen.Order) bool { return o.BuyerID == arg.BuyerID }, arg.Limit, arg.Offset)
}

func (s *Store) ListOrdersByStore(_ context.Context, arg dbgen.ListOrdersByStoreParams) ([]dbgen.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListOrdersByStore"); err != nil {
		return nil, err
	}
	return s.listOrders(func(o dbgen.Order) bool { return o.StoreID == arg.StoreID }, arg.Limit, arg.Offset)
}

func (s *Store) RecordPaymentAttemptResult(_ context.Context, arg dbgen.RecordPaymentAttemptResultParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("RecordPaymentAttemptResult"); err != nil {
		return 0, err
	}
	for id, a := range s.st.attempts {
		if a.TxnRef == arg.TxnRef {
			if a.Status == arg.Status {
				return 0, nil
			}
			a.Status = arg.Status
			a.ResponseCode = arg.ResponseCode
			a.TransactionStatus = arg.TransactionStatus
			a.UpdatedAt = s.ts()
			s.st.attempts[id] = a
			return 1, nil
		}
	}
	return 0, nil
}

func (s *Store) TransitionOrderPaymentStatus(_ context.Context, arg dbgen.TransitionOrderPaymentStatusParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("TransitionOrderPaymentStatus"); err != nil {
		return 0, err
	}
	o, ok := s.st.orders[arg.ID]
	if !ok {
		return 0, nil
	}
	if o.Status != dbgen.OrderStatusPending && o.Status != dbgen.OrderStatusPaymentFailed {
		return 0, nil
	}
	o.Status = arg.Status
	o.UpdatedAt = s.ts()
	s.st.orders[arg.ID] = o
	return 1, nil
}

func (s *Store) UpdateCartItemQtyForUser(_ context.Context, arg dbgen.UpdateCartItemQtyForUserParams) (dbgen.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdateCartItemQtyForUser"); err != nil {
		return dbgen.CartItem{}, err
	}
	for _, it := range s.userCartItems(arg.UserID) {
		if it.ID == arg.ID {
			it.Qty = arg.Qty
			it.UpdatedAt = s.ts()
			s.st.cartItems[it.ID] = it
			return it, nil
		}
	}
	return dbgen.CartItem{}, pgx.ErrNoRows
}

func (s *Store) UpdateOrderStatusIfCurrent(_ context.Context, arg dbgen.UpdateOrderStatusIfCurrentParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdateOrderStatusIfCurrent"); err != nil {
		return 0, err
	}
	o, ok := s.st.orders[arg.ID]
	if !ok || o.Status != arg.Current {
		return 0, nil
	}
	o.Status = arg.Next
	o.UpdatedAt = s.ts()
	s.st.orders[arg.ID] = o
	return 1, nil
}

func (s *Store) UpsertCartForUser(_ context.Context, userID int64) (dbgen.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpsertCartForUser"); err != nil {
		return dbgen.Cart{}, err
	}
	if cart, ok := s.cartByUser(userID); ok {
		cart.UpdatedAt = s.ts()
		s.st.carts[cart.ID] = cart
		return cart, nil
	}
	id := s.next()
	cart := dbgen.Cart{ID: id, UserID: userID, CreatedAt: s.ts(), UpdatedAt: s.ts()}
	s.st.carts[id] = cart
	return cart, nil
}

func (s *Store) UpsertCartItem(_ context.Context, arg dbgen.UpsertCartItemParams) (dbgen.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpsertCartItem"); err != nil {
		return dbgen.CartItem{}, err
	}
	if _, ok := s.st.carts[arg.CartID]; !ok {
		return dbgen.CartItem{}, fkViolation("cart_items_cart_id_fkey")
	}
	if _, ok := s.st.products[arg.ProductID]; !ok {
		return dbgen.CartItem{}, fkViolation("cart_items_product_id_fkey")
	}
	for id, it := range s.st.cartItems {
		if it.CartID == arg.CartID && it.ProductID == arg.ProductID {
			if int64(it.Qty)+int64(arg.Qty) > math.MaxInt32 {
				return dbgen.CartItem{}, &pgconn.PgError{Code: pgerrcode.NumericValueOutOfRange, Message: "integer out of range"}
			}
			it.Qty += arg.Qty
			if arg.VariantID.Valid {
				it.VariantID = arg.VariantID
			}
			it.UpdatedAt = s.ts()
			s.st.cartItems[id] = it
			return it, nil
		}
	}
	id := s.next()
	it := dbgen.CartItem{
		ID:        id,
		CartID:    arg.CartID,
		ProductID: arg.ProductID,
		VariantID: arg.VariantID,
		Qty:       arg.Qty,
		CreatedAt: s.ts(),
		UpdatedAt: s.ts(),
	}
	s.st.cartItems[id] = it
	return it, nil
}

// ErrInjected is a convenience error for fault injection in tests.
var ErrInjected = errors.New("memdb: injected fault")
