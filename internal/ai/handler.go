package ai

import (
	"leaddesk_backend/internal/access"
	"leaddesk_backend/platform/httpkit"
	"leaddesk_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DraftSMSRequest struct {
	LeadID       uuid.UUID `json:"leadId" validate:"required"`
	Tone         string    `json:"tone" validate:"omitempty,oneof=friendly formal short"`
	Instructions string    `json:"instructions" validate:"max=500"`
}

type CorrectSMSRequest struct {
	Text string `json:"text" validate:"required,max=1000"`
}

type TextResponse struct {
	Text string `json:"text"`
}

type Handler struct {
	svc *Service
	val *validator.Validator
}

func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func actorFrom(c *gin.Context) (Actor, bool) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return Actor{}, false
	}
	return Actor{ID: id.UserID(), Role: access.RoleOf(id)}, true
}

func (h *Handler) Enrich(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	leadID, ok := httpkit.ParseUUIDParam(c, "leadId")
	if !ok {
		return
	}

	e, err := h.svc.Enrich(c.Request.Context(), actor, leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, e)
}

func (h *Handler) DraftSMS(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req DraftSMSRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	text, err := h.svc.DraftSMS(c.Request.Context(), actor, req.LeadID, req.Tone, req.Instructions)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, TextResponse{Text: text})
}

func (h *Handler) CorrectSMS(c *gin.Context) {
	var req CorrectSMSRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	text, err := h.svc.CorrectSMS(c.Request.Context(), req.Text)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, TextResponse{Text: text})
}
