package handler

import (
	"net/http"

	"leaddesk_backend/internal/access"
	"leaddesk_backend/internal/messaging/repository"
	"leaddesk_backend/internal/messaging/service"
	"leaddesk_backend/internal/messaging/transport"
	"leaddesk_backend/platform/httpkit"
	"leaddesk_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(messages, broadcasts *gin.RouterGroup) {
	messages.GET("", h.ListMessages)
	messages.POST("", h.SendMessage)
	messages.GET("/unread", h.Unread)
	messages.POST("/:id/read", h.MarkMessageRead)
	messages.DELETE("/:id", h.DeleteMessage)

	broadcasts.GET("", h.ListBroadcasts)
	broadcasts.POST("", access.RequireAction(access.ActionMessagesBcast), h.Broadcast)
	broadcasts.POST("/:id/read", h.MarkBroadcastRead)
	broadcasts.DELETE("/:id", h.DeleteBroadcast)
}

func actorFrom(c *gin.Context) (service.Actor, bool) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return service.Actor{}, false
	}
	return service.Actor{ID: id.UserID(), Role: access.RoleOf(id)}, true
}

func (h *Handler) SendMessage(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req transport.SendMessageRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	msg, err := h.svc.SendDirect(c.Request.Context(), actor, req.RecipientID, req.Body)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToMessageResponse(msg))
}

func (h *Handler) ListMessages(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req transport.ListMessagesRequest
	if !httpkit.BindQuery(c, h.val, &req) {
		return
	}

	msgs, err := h.svc.ListDirect(c.Request.Context(), actor, repository.Box(req.Box))
	if httpkit.HandleError(c, err) {
		return
	}
	items := make([]transport.MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, transport.ToMessageResponse(m))
	}
	httpkit.OK(c, gin.H{"items": items})
}

func (h *Handler) MarkMessageRead(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := httpkit.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.MarkDirectRead(c.Request.Context(), actor, id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteMessage(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := httpkit.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.DeleteDirect(c.Request.Context(), actor, id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Unread(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	counts, err := h.svc.Unread(c.Request.Context(), actor)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, counts)
}

func (h *Handler) Broadcast(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req transport.BroadcastRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	b, err := h.svc.Broadcast(c.Request.Context(), actor, req.Title, req.Body)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToBroadcastResponse(b))
}

func (h *Handler) ListBroadcasts(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	list, err := h.svc.ListBroadcasts(c.Request.Context(), actor)
	if httpkit.HandleError(c, err) {
		return
	}
	items := make([]transport.BroadcastResponse, 0, len(list))
	for _, b := range list {
		items = append(items, transport.ToBroadcastResponse(b))
	}
	httpkit.OK(c, gin.H{"items": items})
}

func (h *Handler) MarkBroadcastRead(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := httpkit.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.MarkBroadcastRead(c.Request.Context(), actor, id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteBroadcast(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := httpkit.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	deleted, err := h.svc.DeleteBroadcast(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.DeleteBroadcastResponse{Deleted: deleted, Hidden: !deleted})
}
