package reports

import (
	"context"
	"net/http"

	"leaddesk_backend/platform/apperr"
	"leaddesk_backend/platform/httpkit"
	"leaddesk_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Enqueuer queues the digest job. The scheduler client implements it.
type Enqueuer interface {
	EnqueueDailyDigest(ctx context.Context, date string) (string, error)
}

type TriggerRequest struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type PreviewRequest struct {
	Date string `form:"date" validate:"omitempty,datetime=2006-01-02"`
}

type TriggerResponse struct {
	TaskID string `json:"taskId"`
	Date   string `json:"date"`
}

type Handler struct {
	svc   *Service
	queue Enqueuer
	val   *validator.Validator
}

func NewHandler(svc *Service, queue Enqueuer, val *validator.Validator) *Handler {
	return &Handler{svc: svc, queue: queue, val: val}
}

// Trigger queues the daily digest for an optional date, yesterday by default.
func (h *Handler) Trigger(c *gin.Context) {
	var req TriggerRequest
	if c.Request.ContentLength != 0 && !httpkit.BindJSON(c, h.val, &req) {
		return
	}
	if h.queue == nil {
		httpkit.HandleError(c, apperr.Unavailable("job queue is not configured"))
		return
	}

	day, err := h.svc.ParseDate(req.Date)
	if httpkit.HandleError(c, err) {
		return
	}
	date := day.Format(DateLayout)
	taskID, err := h.queue.EnqueueDailyDigest(c.Request.Context(), date)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusAccepted, TriggerResponse{TaskID: taskID, Date: date})
}

func (h *Handler) Preview(c *gin.Context) {
	var req PreviewRequest
	if !httpkit.BindQuery(c, h.val, &req) {
		return
	}
	day, err := h.svc.ParseDate(req.Date)
	if httpkit.HandleError(c, err) {
		return
	}
	html, err := h.svc.Preview(c.Request.Context(), day)
	if httpkit.HandleError(c, err) {
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
