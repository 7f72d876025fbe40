package payment_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ecom-api/internal/common"
	dbgen "github.com/noah-isme/ecom-api/internal/db/gen"
	"github.com/noah-isme/ecom-api/internal/payment"
)

func TestHandlerCreateURL(t *testing.T) {
	f := newFixture(t)
	ord := f.placeOrder(t)
	h := &payment.Handler{Svc: f.svc}

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payment/create-url", strings.NewReader(body))
		req = req.WithContext(common.WithPrincipal(req.Context(), common.Principal{UserID: f.buyer, Role: common.RoleUser}))
		rr := httptest.NewRecorder()
		h.CreateURL(rr, req)
		return rr
	}

	rr := post(`{"orderId":` + common.FormatID(ord.ID) + `,"amount":90000,"bankCode":"NCB"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp struct {
		Data struct {
			PaymentURL string `json:"paymentUrl"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Contains(t, resp.Data.PaymentURL, "vnp_SecureHash=")
	require.Contains(t, resp.Data.PaymentURL, "vnp_BankCode=NCB")

	rr = post(`{"orderId":"` + common.FormatID(ord.ID) + `"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = post(`{"amount":90000}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = post(`{"orderId":` + common.FormatID(ord.ID) + `,"amount":"90000","language":"de"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlerNotifyRespondsWithGatewayCodes(t *testing.T) {
	f := newFixture(t)
	ord := f.placeOrder(t)
	h := &payment.Handler{Reconciler: f.reconciler}

	params := callback(txnRef(ord.ID), 9000000, "00", "00")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payment/notify?"+params.Encode(), nil)
	rr := httptest.NewRecorder()
	h.Notify(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"RspCode":"00","Message":"Confirm Success"}`, rr.Body.String())
	require.Equal(t, dbgen.OrderStatusPaid, f.status(t, ord.ID))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/payment/notify?vnp_TxnRef=1_x", nil)
	rr = httptest.NewRecorder()
	h.Notify(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"RspCode":"97","Message":"Invalid Checksum"}`, rr.Body.String())
}

func TestHandlerReturnAlwaysRedirects(t *testing.T) {
	f := newFixture(t)
	ord := f.placeOrder(t)
	h := &payment.Handler{Reconciler: f.reconciler, FrontendRedirectURL: "https://shop.example/payment-result"}

	params := callback(txnRef(ord.ID), 9000000, "00", "00")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payment/return?"+params.Encode(), nil)
	rr := httptest.NewRecorder()
	h.Return(rr, req)
	require.Equal(t, http.StatusFound, rr.Code)
	loc, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "shop.example", loc.Host)
	require.Equal(t, "success", loc.Query().Get("status"))
	require.Equal(t, common.FormatID(ord.ID), loc.Query().Get("orderId"))
	require.Equal(t, dbgen.OrderStatusPending, f.status(t, ord.ID))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/payment/return?foo=bar", nil)
	rr = httptest.NewRecorder()
	(&payment.Handler{}).Return(rr, req)
	require.Equal(t, http.StatusFound, rr.Code)
	loc, err = url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "failed", loc.Query().Get("status"))
}
