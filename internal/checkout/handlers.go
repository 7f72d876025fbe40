package checkout

import (
	"net/http"

	"github.com/noah-isme/ecom-api/internal/common"
	"github.com/noah-isme/ecom-api/internal/order"
)

// Handler exposes order creation from the caller's cart.
type Handler struct {
	Svc *Service
}

type createResponse struct {
	order.DetailResponse
	RemainingStores []string `json:"remainingStores"`
}

// Create snapshots the caller's cart into a pending order.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	res, err := h.Svc.CreateOrderFromCart(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	remaining := make([]string, 0, len(res.RemainingStores))
	for _, id := range res.RemainingStores {
		remaining = append(remaining, common.FormatID(id))
	}
	common.Data(w, http.StatusCreated, createResponse{
		DetailResponse:  order.ToDetailResponse(res.Order),
		RemainingStores: remaining,
	})
}
