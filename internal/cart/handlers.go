package cart

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/ecom-api/internal/common"
)

// Handler wires cart services to HTTP.
type Handler struct {
	Svc *Service
}

type addItemRequest struct {
	ProductID common.ID  `json:"productId" validate:"required,gt=0"`
	VariantID *common.ID `json:"variantId"`
	Qty       int32      `json:"qty"`
}

type updateItemRequest struct {
	Qty *int32 `json:"qty" validate:"required"`
}

type itemResponse struct {
	ID        string  `json:"id"`
	CartID    string  `json:"cartId"`
	ProductID string  `json:"productId"`
	VariantID *string `json:"variantId"`
	Qty       int32   `json:"qty"`
}

type lineResponse struct {
	itemResponse
	StoreID            string           `json:"storeId"`
	Title              string           `json:"title"`
	ImageURL           string           `json:"imageUrl,omitempty"`
	Price              decimal.Decimal  `json:"price"`
	DiscountPercentage *decimal.Decimal `json:"discountPercentage"`
	FinalPrice         decimal.Decimal  `json:"finalPrice"`
	LineTotal          decimal.Decimal  `json:"lineTotal"`
}

// Get returns the caller's cart priced with current product prices.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	h.writeView(w, r, userID, http.StatusOK)
}

// AddItem adds or increments a cart line item.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	var payload addItemRequest
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.WriteError(w, err)
		return
	}
	var variantID *int64
	if payload.VariantID != nil && payload.VariantID.Int64() > 0 {
		v := payload.VariantID.Int64()
		variantID = &v
	}
	item, err := h.Svc.AddItem(r.Context(), userID, payload.ProductID.Int64(), variantID, payload.Qty)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, toItemResponse(item))
}

// UpdateItem sets the quantity of a cart line. A quantity of zero removes it.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	itemID, err := common.ParseID(chi.URLParam(r, "itemID"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	var payload updateItemRequest
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.WriteError(w, err)
		return
	}
	item, exists, err := h.Svc.UpdateItemQuantity(r.Context(), userID, itemID, *payload.Qty)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if !exists {
		common.Data(w, http.StatusOK, map[string]any{"removed": true, "id": common.FormatID(itemID)})
		return
	}
	common.Data(w, http.StatusOK, toItemResponse(item))
}

// RemoveItem deletes a cart item and returns the refreshed cart.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	itemID, err := common.ParseID(chi.URLParam(r, "itemID"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.Svc.RemoveItem(r.Context(), userID, itemID); err != nil {
		common.WriteError(w, err)
		return
	}
	h.writeView(w, r, userID, http.StatusOK)
}

// Clear empties the caller's cart.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	removed, err := h.Svc.ClearCart(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, map[string]any{"removed": removed})
}

func (h *Handler) writeView(w http.ResponseWriter, r *http.Request, userID int64, status int) {
	view, err := h.Svc.GetCartView(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	items := make([]lineResponse, 0, len(view.Items))
	for _, line := range view.Items {
		resp := lineResponse{
			itemResponse: toItemResponse(line.Item),
			StoreID:      common.FormatID(line.StoreID),
			Title:        line.Title,
			ImageURL:     line.ImageURL,
			Price:        line.BasePrice,
			FinalPrice:   line.EffectivePrice,
			LineTotal:    line.LineTotal,
		}
		if line.Discount.Valid {
			d := line.Discount.Decimal
			resp.DiscountPercentage = &d
		}
		items = append(items, resp)
	}
	common.Data(w, status, map[string]any{
		"cartId":   common.FormatID(view.CartID),
		"items":    items,
		"subtotal": view.Subtotal,
	})
}

func toItemResponse(item Item) itemResponse {
	resp := itemResponse{
		ID:        common.FormatID(item.ID),
		CartID:    common.FormatID(item.CartID),
		ProductID: common.FormatID(item.ProductID),
		Qty:       item.Qty,
	}
	if item.VariantID != nil {
		v := common.FormatID(*item.VariantID)
		resp.VariantID = &v
	}
	return resp
}
