package sms

import (
	"leaddesk_backend/internal/access"
	"leaddesk_backend/platform/httpkit"
	"leaddesk_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BulkSendRequest struct {
	LeadIDs []uuid.UUID `json:"leadIds" validate:"required,min=1,max=500"`
	Message string      `json:"message" validate:"required,max=640"`
}

type Handler struct {
	svc *Service
	val *validator.Validator
}

func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) BulkSend(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	var req BulkSendRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	res, err := h.svc.BulkSend(c.Request.Context(), Actor{ID: id.UserID(), Role: access.RoleOf(id)}, req.LeadIDs, req.Message)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}
