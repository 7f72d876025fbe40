package vnpay_test

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ecom-api/internal/payment/vnpay"
)

const secret = "TESTSECRET0123456789"

func TestCanonicalizeSortsFiltersAndEscapes(t *testing.T) {
	params := url.Values{}
	params.Set("vnp_TxnRef", "12_abc")
	params.Set("vnp_Amount", "9000000")
	params.Set("vnp_OrderInfo", "Thanh toan don hang 12")
	params.Set("vnp_SecureHash", "ignored")
	params.Set("vnp_SecureHashType", "HmacSHA512")
	params.Set("utm_source", "ads")

	got := vnpay.Canonicalize(params)
	require.Equal(t, "vnp_Amount=9000000&vnp_OrderInfo=Thanh+toan+don+hang+12&vnp_TxnRef=12_abc", got)
}

func TestCanonicalizeEscapesLikeURIComponents(t *testing.T) {
	params := url.Values{}
	params.Set("vnp_OrderInfo", "Don (A) *gap*! it's ~ok~ & 100%/2")

	got := vnpay.Canonicalize(params)
	require.Equal(t, "vnp_OrderInfo=Don+(A)+*gap*!+it's+~ok~+%26+100%25%2F2", got)

	// a gateway echo of the same value verifies
	echoed := signed(url.Values{"vnp_OrderInfo": {"Don (A) *gap*! it's ~ok~ & 100%/2"}, "vnp_TxnRef": {"12_abc"}})
	require.True(t, vnpay.Verify(secret, echoed))
}

func TestSignIsDeterministic(t *testing.T) {
	data := "vnp_Amount=100&vnp_TxnRef=1_x"
	first := vnpay.Sign(secret, data)
	require.Equal(t, first, vnpay.Sign(secret, data))
	require.Len(t, first, 128)
	require.NotEqual(t, first, vnpay.Sign("other", data))
}

func signed(params url.Values) url.Values {
	params.Set(vnpay.ParamSecureHash, vnpay.Sign(secret, vnpay.Canonicalize(params)))
	return params
}

func TestVerifyRoundTripAndSingleCharacterFlips(t *testing.T) {
	params := signed(url.Values{
		"vnp_Amount":            {"9000000"},
		"vnp_ResponseCode":      {"00"},
		"vnp_TransactionStatus": {"00"},
		"vnp_TxnRef":            {"42_k3j2"},
		"vnp_OrderInfo":         {"Thanh toan don hang 42 & more"},
	})
	require.True(t, vnpay.Verify(secret, params))

	hash := params.Get(vnpay.ParamSecureHash)
	for i := range hash {
		flipped := []byte(hash)
		if flipped[i] == '0' {
			flipped[i] = '1'
		} else {
			flipped[i] = '0'
		}
		tampered := url.Values{}
		for k, v := range params {
			tampered[k] = v
		}
		tampered.Set(vnpay.ParamSecureHash, string(flipped))
		require.False(t, vnpay.Verify(secret, tampered), "flip at %d", i)
	}
}

func TestVerifyRejectsTamperedParams(t *testing.T) {
	params := signed(url.Values{"vnp_Amount": {"9000000"}, "vnp_TxnRef": {"42_k3j2"}})
	params.Set("vnp_Amount", "100")
	require.False(t, vnpay.Verify(secret, params))

	require.False(t, vnpay.Verify(secret, url.Values{"vnp_Amount": {"1"}}))
	require.False(t, vnpay.Verify("", signed(url.Values{"vnp_Amount": {"1"}})))
}

func TestParseTxnRef(t *testing.T) {
	ref := vnpay.NewTxnRef(77, time.Unix(1700000000, 0))
	id, err := vnpay.ParseTxnRef(ref)
	require.NoError(t, err)
	require.Equal(t, int64(77), id)

	for _, bad := range []string{"", "abc_1", "_1", "-5_x", "0_x"} {
		_, err := vnpay.ParseTxnRef(bad)
		require.Error(t, err, bad)
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := vnpay.NewClient(vnpay.Config{ReturnURL: "http://localhost/return"})
	require.Error(t, err)
	_, err = vnpay.NewClient(vnpay.Config{TmnCode: "T", HashSecret: "S"})
	require.Error(t, err)
}

func TestBuildPaymentURL(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 3, 4, 5, 0, time.UTC)
	client, err := vnpay.NewClient(vnpay.Config{
		TmnCode:     "DEMO1234",
		HashSecret:  secret,
		PayURL:      "https://pay.example/vpcpay.html",
		ReturnURL:   "https://api.example/api/v1/payment/return",
		Timezone:    "Asia/Ho_Chi_Minh",
		ExpireAfter: 15 * time.Minute,
	})
	require.NoError(t, err)
	client.WithNow(func() time.Time { return fixed })

	out, err := client.BuildPaymentURL(vnpay.PaymentRequest{
		OrderID:  12,
		Amount:   decimal.NewFromInt(90000),
		Locale:   "fr",
		BankCode: "NCB",
		ClientIP: "10.0.0.1",
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out.URL, "https://pay.example/vpcpay.html?"))
	require.True(t, strings.HasPrefix(out.TxnRef, "12_"))

	u, err := url.Parse(out.URL)
	require.NoError(t, err)
	q := u.Query()
	require.Equal(t, "9000000", q.Get("vnp_Amount"))
	require.Equal(t, "vn", q.Get("vnp_Locale"))
	require.Equal(t, "NCB", q.Get("vnp_BankCode"))
	require.Equal(t, "VND", q.Get("vnp_CurrCode"))
	require.Equal(t, "2.1.0", q.Get("vnp_Version"))
	require.Equal(t, "20250301100405", q.Get("vnp_CreateDate"))
	require.Equal(t, "20250301101905", q.Get("vnp_ExpireDate"))
	require.Equal(t, out.TxnRef, q.Get("vnp_TxnRef"))
	require.True(t, client.Verify(q))
}

func TestBuildPaymentURLRejectsNonPositiveAmount(t *testing.T) {
	client, err := vnpay.NewClient(vnpay.Config{TmnCode: "T", HashSecret: "S", ReturnURL: "http://r"})
	require.NoError(t, err)
	_, err = client.BuildPaymentURL(vnpay.PaymentRequest{OrderID: 1, Amount: decimal.Zero})
	require.Error(t, err)
}

func TestResponseMessage(t *testing.T) {
	require.Equal(t, "Giao dịch thành công", vnpay.ResponseMessage("00"))
	require.Equal(t, "Hủy giao dịch.", vnpay.ResponseMessage("24"))
	require.Equal(t, "Giao dịch thất bại", vnpay.ResponseMessage("nope"))
}
