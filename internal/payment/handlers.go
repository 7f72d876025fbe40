package payment

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/ecom-api/internal/common"
)

// Handler exposes the payment endpoints.
type Handler struct {
	Svc        *Service
	Reconciler *Reconciler
	// FrontendRedirectURL receives the buyer after the gateway return.
	FrontendRedirectURL string
}

type createURLRequest struct {
	OrderID  common.ID        `json:"orderId" validate:"required,gt=0"`
	Amount   *decimal.Decimal `json:"amount" validate:"required"`
	Language string           `json:"language" validate:"omitempty,oneof=vn en"`
	BankCode string           `json:"bankCode" validate:"omitempty,max=20,alphanum"`
}

type createURLResponse struct {
	PaymentURL string `json:"paymentUrl"`
	TxnRef     string `json:"txnRef"`
}

type notifyResponse struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

// CreateURL returns a signed VNPay redirect for one of the caller's orders.
func (h *Handler) CreateURL(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "payment service not configured", nil)
		return
	}
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	var payload createURLRequest
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.WriteError(w, err)
		return
	}
	out, err := h.Svc.CreatePaymentURL(r.Context(), userID, CreateURLInput{
		OrderID:  payload.OrderID.Int64(),
		Amount:   *payload.Amount,
		Language: payload.Language,
		BankCode: payload.BankCode,
		ClientIP: common.ClientIP(r),
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, createURLResponse{PaymentURL: out.URL, TxnRef: out.TxnRef})
}

// Return redirects the buyer's browser to the frontend with a display status.
// It always redirects, whatever the query contains.
func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	res := h.Reconciler.Return(r.URL.Query())
	http.Redirect(w, r, res.RedirectURL(h.FrontendRedirectURL), http.StatusFound)
}

// Notify acknowledges a server-to-server payment notification.
func (h *Handler) Notify(w http.ResponseWriter, r *http.Request) {
	res := h.Reconciler.Notify(r.Context(), r.URL.Query())
	common.JSON(w, http.StatusOK, notifyResponse{RspCode: res.Outcome.Code(), Message: res.Outcome.Message()})
}
