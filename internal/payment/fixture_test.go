package payment_test

import (
	"context"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ecom-api/internal/cart"
	"github.com/noah-isme/ecom-api/internal/checkout"
	dbgen "github.com/noah-isme/ecom-api/internal/db/gen"
	"github.com/noah-isme/ecom-api/internal/db/memdb"
	"github.com/noah-isme/ecom-api/internal/events"
	"github.com/noah-isme/ecom-api/internal/payment"
	"github.com/noah-isme/ecom-api/internal/payment/vnpay"
)

const hashSecret = "SECRETKEYFORTESTS"

type recordingRetry struct {
	mu    sync.Mutex
	calls [][2]int64
}

func (r *recordingRetry) EnqueueCartClear(_ context.Context, userID, orderID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, [2]int64{userID, orderID})
	return nil
}

type fixture struct {
	db         *memdb.Store
	cart       *cart.Service
	gateway    *vnpay.Client
	svc        *payment.Service
	reconciler *payment.Reconciler
	retry      *recordingRetry
	buyer      int64
	other      int64
	product    int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := memdb.New()
	seller := db.AddUser("seller@example.com", dbgen.UserRoleSELLER)
	store := db.AddStore(seller, "Shop")
	gateway, err := vnpay.NewClient(vnpay.Config{
		TmnCode:    "DEMO1234",
		HashSecret: hashSecret,
		PayURL:     "https://sandbox.example/vpcpay.html",
		ReturnURL:  "https://api.example/api/v1/payment/return",
	})
	require.NoError(t, err)
	cartSvc := &cart.Service{Q: db}
	retry := &recordingRetry{}
	bus := &events.Bus{Store: db}
	return fixture{
		db:      db,
		cart:    cartSvc,
		gateway: gateway,
		svc:     &payment.Service{Q: db, Gateway: gateway},
		reconciler: &payment.Reconciler{
			DB:       db,
			Verifier: gateway,
			Cart:     cartSvc,
			Retry:    retry,
			Events:   bus,
		},
		retry:   retry,
		buyer:   db.AddUser("buyer@example.com", dbgen.UserRoleUSER),
		other:   db.AddUser("other@example.com", dbgen.UserRoleUSER),
		product: db.AddProduct(store, "Ao thun", decimal.NewFromInt(100000), decimal.NullDecimal{Decimal: decimal.NewFromInt(10), Valid: true}),
	}
}

// placeOrder adds the product to the buyer's cart and checks out.
func (f fixture) placeOrder(t *testing.T) dbgen.Order {
	t.Helper()
	ctx := context.Background()
	_, err := f.cart.AddItem(ctx, f.buyer, f.product, nil, 1)
	require.NoError(t, err)
	res, err := (&checkout.Service{DB: f.db}).CreateOrderFromCart(ctx, f.buyer)
	require.NoError(t, err)
	return res.Order.Order
}

func (f fixture) status(t *testing.T, orderID int64) dbgen.OrderStatus {
	t.Helper()
	ord, err := f.db.GetOrderByID(context.Background(), orderID)
	require.NoError(t, err)
	return ord.Status
}

func txnRef(orderID int64) string {
	return vnpay.NewTxnRef(orderID, time.Now())
}

func callback(ref string, minorAmount int64, responseCode, transactionStatus string) url.Values {
	params := url.Values{}
	params.Set("vnp_TmnCode", "DEMO1234")
	params.Set("vnp_TxnRef", ref)
	params.Set("vnp_Amount", strconv.FormatInt(minorAmount, 10))
	params.Set("vnp_ResponseCode", responseCode)
	params.Set("vnp_TransactionStatus", transactionStatus)
	params.Set("vnp_BankCode", "NCB")
	params.Set("vnp_OrderInfo", "Thanh toan don hang")
	params.Set("vnp_PayDate", "20250301100405")
	params.Set(vnpay.ParamSecureHashType, "HmacSHA512")
	params.Set(vnpay.ParamSecureHash, vnpay.Sign(hashSecret, vnpay.Canonicalize(params)))
	return params
}
