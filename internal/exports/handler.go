package exports

import (
	"fmt"
	"net/http"
	"time"

	"leaddesk_backend/internal/leads"
	"leaddesk_backend/platform/httpkit"
	"leaddesk_backend/platform/logger"
	"leaddesk_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LeadsExportRequest struct {
	BatchID    string `form:"batchId" validate:"omitempty,uuid"`
	Status     string `form:"status" validate:"omitempty,leadstatus"`
	AssignedTo string `form:"assignedTo" validate:"omitempty,uuid"`
}

func (r LeadsExportRequest) filter() leads.ExportFilter {
	f := leads.ExportFilter{Status: r.Status}
	if r.BatchID != "" {
		id := uuid.MustParse(r.BatchID)
		f.BatchID = &id
	}
	if r.AssignedTo != "" {
		id := uuid.MustParse(r.AssignedTo)
		f.AssignedTo = &id
	}
	return f
}

// Handler handles export requests.
type Handler struct {
	source leads.Exporter
	val    *validator.Validator
	loc    *time.Location
	log    *logger.Logger
}

func NewHandler(source leads.Exporter, val *validator.Validator, loc *time.Location, log *logger.Logger) *Handler {
	return &Handler{source: source, val: val, loc: loc, log: log}
}

// ExportLeadsCSV streams the filtered leads. Once the first byte is written
// errors can no longer change the status, so they are only logged.
func (h *Handler) ExportLeadsCSV(c *gin.Context) {
	var req LeadsExportRequest
	if !httpkit.BindQuery(c, h.val, &req) {
		return
	}

	filename := fmt.Sprintf("leads-%s.csv", time.Now().In(h.loc).Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Status(http.StatusOK)

	rows, err := Export(c.Request.Context(), h.source, req.filter(), c.Writer, h.loc)
	if err != nil {
		h.log.Error("lead export failed", "rows", rows, "error", err)
		return
	}
	h.log.Info("lead export finished", "rows", rows)
}
