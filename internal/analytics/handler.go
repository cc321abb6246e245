package analytics

import (
	"leaddesk_backend/internal/access"
	"leaddesk_backend/platform/httpkit"
	"leaddesk_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *Service
	val *validator.Validator
}

func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

type daysQuery struct {
	Days    int    `form:"days" validate:"omitempty,min=1,max=366"`
	AgentID string `form:"agentId" validate:"omitempty,uuid"`
}

func (q daysQuery) orDefault(def int) int {
	if q.Days == 0 {
		return def
	}
	return q.Days
}

func (h *Handler) Leaderboard(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	var q daysQuery
	if !httpkit.BindQuery(c, h.val, &q) {
		return
	}
	view, err := h.svc.LeaderboardFor(c.Request.Context(), id.UserID(), q.orDefault(1))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, view)
}

func (h *Handler) Insights(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	insights, err := h.svc.Insights(c.Request.Context(), id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": insights})
}

func (h *Handler) Notifications(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	items, err := h.svc.Notifications(c.Request.Context(), id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": items})
}

func (h *Handler) Team(c *gin.Context) {
	var q daysQuery
	if !httpkit.BindQuery(c, h.val, &q) {
		return
	}
	members, err := h.svc.Team(c.Request.Context(), q.orDefault(7))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"days": q.orDefault(7), "members": members})
}

// Oracle scores the whole team for managers. Agents always get their own score.
func (h *Handler) Oracle(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	var q daysQuery
	if !httpkit.BindQuery(c, h.val, &q) {
		return
	}

	var agentID *uuid.UUID
	if access.Can(access.RoleOf(id), access.ActionAnalyticsTeam) {
		if q.AgentID != "" {
			parsed := uuid.MustParse(q.AgentID)
			agentID = &parsed
		}
	} else {
		self := id.UserID()
		agentID = &self
	}

	res, err := h.svc.Oracle(c.Request.Context(), q.orDefault(30), agentID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}
