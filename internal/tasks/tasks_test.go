package tasks_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ecom-api/internal/cart"
	dbgen "github.com/noah-isme/ecom-api/internal/db/gen"
	"github.com/noah-isme/ecom-api/internal/db/memdb"
	"github.com/noah-isme/ecom-api/internal/tasks"
)

type fakeClient struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeClient) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "1", Type: task.Type()}, nil
}

func TestEnqueueCartClear(t *testing.T) {
	client := &fakeClient{}
	require.NoError(t, tasks.Enqueuer{Client: client}.EnqueueCartClear(context.Background(), 5, 9))
	require.Len(t, client.tasks, 1)
	require.Equal(t, tasks.TypeCartClear, client.tasks[0].Type())

	var p tasks.CartClearPayload
	require.NoError(t, json.Unmarshal(client.tasks[0].Payload(), &p))
	require.Equal(t, tasks.CartClearPayload{UserID: 5, OrderID: 9}, p)
}

func TestEnqueueCartClearTreatsDuplicateAsSuccess(t *testing.T) {
	client := &fakeClient{err: asynq.ErrTaskIDConflict}
	require.NoError(t, tasks.Enqueuer{Client: client}.EnqueueCartClear(context.Background(), 5, 9))

	client.err = errors.New("redis down")
	require.Error(t, tasks.Enqueuer{Client: client}.EnqueueCartClear(context.Background(), 5, 9))
}

func TestNewCartClearTaskValidates(t *testing.T) {
	_, err := tasks.NewCartClearTask(0, 1)
	require.Error(t, err)
}

func TestHandleCartClear(t *testing.T) {
	db := memdb.New()
	seller := db.AddUser("s@example.com", dbgen.UserRoleSELLER)
	product := db.AddProduct(db.AddStore(seller, "Shop"), "Ao", decimal.NewFromInt(1000), decimal.NullDecimal{})
	buyer := db.AddUser("b@example.com", dbgen.UserRoleUSER)
	svc := &cart.Service{Q: db}
	_, err := svc.AddItem(context.Background(), buyer, product, nil, 2)
	require.NoError(t, err)

	task, err := tasks.NewCartClearTask(buyer, 1)
	require.NoError(t, err)
	h := &tasks.Handler{Cart: svc}
	require.NoError(t, h.HandleCartClear(context.Background(), task))
	require.Zero(t, db.CartItemCount(buyer))
}

func TestHandleCartClearSkipsRetryOnBadPayload(t *testing.T) {
	h := &tasks.Handler{Cart: &cart.Service{Q: memdb.New()}}
	err := h.HandleCartClear(context.Background(), asynq.NewTask(tasks.TypeCartClear, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}
