package handlers

import (
	"net/http"

	"org-dashboard-backend/pkg/actions"
	"org-dashboard-backend/pkg/config"
	"org-dashboard-backend/pkg/models"
	"org-dashboard-backend/pkg/utils"
)

// ColumnHandler 看板列处理器
type ColumnHandler struct {
	config  *config.Config
	actions *actions.Actions
}

// NewColumnHandler 创建看板列处理器
func NewColumnHandler(cfg *config.Config, a *actions.Actions) *ColumnHandler {
	return &ColumnHandler{config: cfg, actions: a}
}

// ListColumns returns columns in board order
func (h *ColumnHandler) ListColumns(w http.ResponseWriter, r *http.Request) {
	columns, err := h.actions.ListColumns(r.Context(), session(r))
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	writeList(w, columns)
}

func (h *ColumnHandler) GetColumn(w http.ResponseWriter, r *http.Request) {
	column, err := h.actions.GetColumn(r.Context(), session(r), idParam(r))
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, column)
}

func (h *ColumnHandler) CreateColumn(w http.ResponseWriter, r *http.Request) {
	var input models.CreateColumnInput
	if !decodeBody(h.config, w, r, &input) {
		return
	}
	column, err := h.actions.CreateColumn(r.Context(), session(r), input)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteCreatedResponse(w, column)
}

func (h *ColumnHandler) UpdateColumn(w http.ResponseWriter, r *http.Request) {
	var input models.UpdateColumnInput
	if !decodeBody(h.config, w, r, &input) {
		return
	}
	column, err := h.actions.UpdateColumn(r.Context(), session(r), idParam(r), input)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, column)
}

// DeleteColumn removes a column; its tasks become unassigned
func (h *ColumnHandler) DeleteColumn(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if err := h.actions.DeleteColumn(r.Context(), session(r), id); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, map[string]string{"id": id})
}

// ReorderColumns replaces the column order with the full list in the body
func (h *ColumnHandler) ReorderColumns(w http.ResponseWriter, r *http.Request) {
	var input models.ReorderColumnsInput
	if !decodeBody(h.config, w, r, &input) {
		return
	}
	if err := h.actions.ReorderColumns(r.Context(), session(r), input.ColumnIDs); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	columns, err := h.actions.ListColumns(r.Context(), session(r))
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	writeList(w, columns)
}
