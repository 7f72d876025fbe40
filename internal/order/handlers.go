package order

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/ecom-api/internal/common"
	dbgen "github.com/noah-isme/ecom-api/internal/db/gen"
)

const defaultPerPage = 20

// Handler exposes order endpoints.
type Handler struct {
	Svc *Service
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type statusResponse struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	Status string `json:"status"`
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (common.Principal, bool) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order service not configured", nil)
		return common.Principal{}, false
	}
	p, ok := common.PrincipalFrom(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return common.Principal{}, false
	}
	return p, true
}

func writePage(w http.ResponseWriter, p Page, page, perPage int) {
	data := make([]Response, 0, len(p.Orders))
	for _, o := range p.Orders {
		data = append(data, ToResponse(o))
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(p.Total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data": data,
		"pagination": common.Pagination{
			Page:       page,
			PerPage:    perPage,
			TotalItems: p.Total,
		},
	})
}

// ListMine returns the caller's orders.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	page, perPage := common.ParsePagination(r, defaultPerPage)
	res, err := h.Svc.ListMine(r.Context(), p, page, perPage)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	writePage(w, res, page, perPage)
}

// ListByStore returns the orders placed against a store.
func (h *Handler) ListByStore(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	storeID, err := common.ParseID(chi.URLParam(r, "storeID"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	page, perPage := common.ParsePagination(r, defaultPerPage)
	res, err := h.Svc.ListByStore(r.Context(), p, storeID, page, perPage)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	writePage(w, res, page, perPage)
}

// Get returns a single order with its items.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	orderID, err := common.ParseID(chi.URLParam(r, "orderID"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	detail, err := h.Svc.Get(r.Context(), p, orderID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, ToDetailResponse(detail))
}

// Status returns the current status of an order.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	orderID, err := common.ParseID(chi.URLParam(r, "orderID"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	ord, err := h.Svc.Status(r.Context(), p, orderID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, statusResponse{ID: common.FormatID(ord.ID), Code: ord.Code, Status: string(ord.Status)})
}

// PatchStatus applies a manual fulfilment transition.
func (h *Handler) PatchStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	orderID, err := common.ParseID(chi.URLParam(r, "orderID"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	var payload statusRequest
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.WriteError(w, err)
		return
	}
	ord, err := h.Svc.UpdateStatus(r.Context(), p, orderID, dbgen.OrderStatus(payload.Status))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, ToResponse(ord))
}
