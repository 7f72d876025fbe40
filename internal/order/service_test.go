package order_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ecom-api/internal/common"
	dbgen "github.com/noah-isme/ecom-api/internal/db/gen"
	"github.com/noah-isme/ecom-api/internal/db/memdb"
	"github.com/noah-isme/ecom-api/internal/events"
	"github.com/noah-isme/ecom-api/internal/order"
)

type fixture struct {
	db     *memdb.Store
	svc    *order.Service
	buyer  common.Principal
	seller common.Principal
	other  common.Principal
	admin  common.Principal
	store  int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := memdb.New()
	sellerID := db.AddUser("seller@example.com", dbgen.UserRoleSELLER)
	f := fixture{
		db:     db,
		buyer:  common.Principal{UserID: db.AddUser("buyer@example.com", dbgen.UserRoleUSER), Role: common.RoleUser},
		seller: common.Principal{UserID: sellerID, Role: common.RoleSeller},
		other:  common.Principal{UserID: db.AddUser("other@example.com", dbgen.UserRoleSELLER), Role: common.RoleSeller},
		admin:  common.Principal{UserID: db.AddUser("admin@example.com", dbgen.UserRoleADMIN), Role: common.RoleAdmin},
		store:  db.AddStore(sellerID, "Shop"),
	}
	f.svc = &order.Service{Q: db, Events: &events.Bus{Store: db}}
	return f
}

func (f fixture) order(status dbgen.OrderStatus) int64 {
	return f.db.AddOrder(f.buyer.UserID, f.store, decimal.NewFromInt(90000), status)
}

func TestGetAccess(t *testing.T) {
	f := newFixture(t)
	id := f.order(dbgen.OrderStatusPending)
	ctx := context.Background()

	for _, p := range []common.Principal{f.buyer, f.seller, f.admin} {
		d, err := f.svc.Get(ctx, p, id)
		require.NoError(t, err)
		require.Equal(t, id, d.Order.ID)
	}

	_, err := f.svc.Get(ctx, f.other, id)
	require.ErrorIs(t, err, order.ErrForbidden)

	_, err = f.svc.Get(ctx, f.buyer, 999999)
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestStatusOnlyBuyerOrAdmin(t *testing.T) {
	f := newFixture(t)
	id := f.order(dbgen.OrderStatusPending)
	ctx := context.Background()

	ord, err := f.svc.Status(ctx, f.buyer, id)
	require.NoError(t, err)
	require.Equal(t, dbgen.OrderStatusPending, ord.Status)

	_, err = f.svc.Status(ctx, f.admin, id)
	require.NoError(t, err)

	_, err = f.svc.Status(ctx, f.seller, id)
	require.ErrorIs(t, err, order.ErrForbidden)
}

func TestListMinePaginates(t *testing.T) {
	f := newFixture(t)
	var ids []int64
	for i := 0; i < 3; i++ {
		ids = append(ids, f.order(dbgen.OrderStatusPending))
	}
	f.db.AddOrder(f.other.UserID, f.store, decimal.NewFromInt(1), dbgen.OrderStatusPending)

	page, err := f.svc.ListMine(context.Background(), f.buyer, 1, 2)
	require.NoError(t, err)
	require.Equal(t, int64(3), page.Total)
	require.Len(t, page.Orders, 2)
	require.Equal(t, ids[2], page.Orders[0].ID)

	page, err = f.svc.ListMine(context.Background(), f.buyer, 2, 2)
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	require.Equal(t, ids[0], page.Orders[0].ID)
}

func TestListMineClampsOutOfRangePages(t *testing.T) {
	f := newFixture(t)
	id := f.order(dbgen.OrderStatusPending)
	ctx := context.Background()

	page, err := f.svc.ListMine(ctx, f.buyer, math.MaxInt, 20)
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	require.Empty(t, page.Orders)

	page, err = f.svc.ListByStore(ctx, f.seller, f.store, math.MaxInt32, math.MaxInt)
	require.NoError(t, err)
	require.Empty(t, page.Orders)

	page, err = f.svc.ListMine(ctx, f.buyer, -5, 0)
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	require.Equal(t, id, page.Orders[0].ID)
}

func TestListByStoreRequiresOwnerOrAdmin(t *testing.T) {
	f := newFixture(t)
	f.order(dbgen.OrderStatusPaid)
	ctx := context.Background()

	page, err := f.svc.ListByStore(ctx, f.seller, f.store, 1, 20)
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)

	_, err = f.svc.ListByStore(ctx, f.admin, f.store, 1, 20)
	require.NoError(t, err)

	_, err = f.svc.ListByStore(ctx, f.other, f.store, 1, 20)
	require.ErrorIs(t, err, order.ErrForbidden)

	_, err = f.svc.ListByStore(ctx, f.seller, 424242, 1, 20)
	require.ErrorIs(t, err, order.ErrStoreNotFound)
}

func TestUpdateStatusFulfilmentFlow(t *testing.T) {
	f := newFixture(t)
	id := f.order(dbgen.OrderStatusPaid)
	ctx := context.Background()

	for _, next := range []dbgen.OrderStatus{dbgen.OrderStatusProcessing, dbgen.OrderStatusShipped, dbgen.OrderStatusDelivered} {
		ord, err := f.svc.UpdateStatus(ctx, f.seller, id, next)
		require.NoError(t, err)
		require.Equal(t, next, ord.Status)
	}

	evts := f.db.Events()
	require.Len(t, evts, 3)
	require.Equal(t, events.TopicOrderStatusChanged, evts[0].Topic)
	require.Equal(t, id, evts[0].AggregateID)
}

func TestUpdateStatusRejectsPaymentManagedTargets(t *testing.T) {
	f := newFixture(t)
	id := f.order(dbgen.OrderStatusPending)

	for _, next := range []dbgen.OrderStatus{dbgen.OrderStatusPaid, dbgen.OrderStatusPaymentFailed, "bogus"} {
		_, err := f.svc.UpdateStatus(context.Background(), f.admin, id, next)
		require.ErrorIs(t, err, order.ErrInvalidStatus, string(next))
		require.Equal(t, common.KindInvalidArgument, common.KindOf(err))
	}
	ord, err := f.svc.Status(context.Background(), f.buyer, id)
	require.NoError(t, err)
	require.Equal(t, dbgen.OrderStatusPending, ord.Status)
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending := f.order(dbgen.OrderStatusPending)
	_, err := f.svc.UpdateStatus(ctx, f.seller, pending, dbgen.OrderStatusShipped)
	require.ErrorIs(t, err, order.ErrTransitionNotAllowed)

	delivered := f.order(dbgen.OrderStatusDelivered)
	_, err = f.svc.UpdateStatus(ctx, f.admin, delivered, dbgen.OrderStatusCancelled)
	require.ErrorIs(t, err, order.ErrTransitionNotAllowed)
}

func TestUpdateStatusForbiddenForStrangers(t *testing.T) {
	f := newFixture(t)
	id := f.order(dbgen.OrderStatusPaid)

	_, err := f.svc.UpdateStatus(context.Background(), f.other, id, dbgen.OrderStatusProcessing)
	require.ErrorIs(t, err, order.ErrForbidden)

	_, err = f.svc.UpdateStatus(context.Background(), f.buyer, id, dbgen.OrderStatusCancelled)
	require.ErrorIs(t, err, order.ErrForbidden)
}

type racingQuerier struct {
	*memdb.Store
}

// UpdateOrderStatusIfCurrent simulates a payment notification landing between
// the status read and the conditional write.
func (q racingQuerier) UpdateOrderStatusIfCurrent(ctx context.Context, arg dbgen.UpdateOrderStatusIfCurrentParams) (int64, error) {
	if _, err := q.Store.TransitionOrderPaymentStatus(ctx, dbgen.TransitionOrderPaymentStatusParams{ID: arg.ID, Status: dbgen.OrderStatusPaid}); err != nil {
		return 0, err
	}
	return q.Store.UpdateOrderStatusIfCurrent(ctx, arg)
}

func TestUpdateStatusLosesRaceAgainstPayment(t *testing.T) {
	f := newFixture(t)
	id := f.order(dbgen.OrderStatusPending)
	svc := &order.Service{Q: racingQuerier{f.db}}

	_, err := svc.UpdateStatus(context.Background(), f.seller, id, dbgen.OrderStatusCancelled)
	require.ErrorIs(t, err, order.ErrTransitionNotAllowed)

	ord, err := f.svc.Status(context.Background(), f.buyer, id)
	require.NoError(t, err)
	require.Equal(t, dbgen.OrderStatusPaid, ord.Status)
}

func TestServiceNotConfigured(t *testing.T) {
	var svc *order.Service
	_, err := svc.Get(context.Background(), common.Principal{UserID: 1}, 1)
	require.Error(t, err)
	require.False(t, errors.Is(err, order.ErrNotFound))
}
