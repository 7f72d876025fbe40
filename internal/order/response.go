package order

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/ecom-api/internal/common"
	dbgen "github.com/noah-isme/ecom-api/internal/db/gen"
)

// Response is the JSON shape of an order.
type Response struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	BuyerID   string          `json:"buyerId"`
	StoreID   string          `json:"storeId"`
	Status    string          `json:"status"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt *time.Time      `json:"updatedAt,omitempty"`
}

// ItemResponse is the JSON shape of a frozen order line.
type ItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	VariantID *string         `json:"variantId"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Qty       int32           `json:"qty"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// DetailResponse is an order with its items.
type DetailResponse struct {
	Response
	Items []ItemResponse `json:"items"`
}

func timePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time.UTC()
	return &t
}

// ToResponse maps an order row to its JSON shape.
func ToResponse(o dbgen.Order) Response {
	return Response{
		ID:        common.FormatID(o.ID),
		Code:      o.Code,
		BuyerID:   common.FormatID(o.BuyerID),
		StoreID:   common.FormatID(o.StoreID),
		Status:    string(o.Status),
		Subtotal:  o.Subtotal,
		Total:     o.Total,
		CreatedAt: timePtr(o.CreatedAt),
		UpdatedAt: timePtr(o.UpdatedAt),
	}
}

// ToDetailResponse maps an order and its items to JSON.
func ToDetailResponse(d Detail) DetailResponse {
	items := make([]ItemResponse, 0, len(d.Items))
	for _, it := range d.Items {
		var variant *string
		if it.VariantID.Valid {
			v := common.FormatID(it.VariantID.Int64)
			variant = &v
		}
		items = append(items, ItemResponse{
			ID:        common.FormatID(it.ID),
			ProductID: common.FormatID(it.ProductID),
			VariantID: variant,
			UnitPrice: it.UnitPrice,
			Qty:       it.Qty,
			LineTotal: it.UnitPrice.Mul(decimal.NewFromInt32(it.Qty)),
		})
	}
	return DetailResponse{Response: ToResponse(d.Order), Items: items}
}
