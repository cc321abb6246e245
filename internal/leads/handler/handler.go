package handler

import (
	"net/http"
	"strings"

	"leaddesk_backend/internal/access"
	"leaddesk_backend/internal/leads/domain"
	"leaddesk_backend/internal/leads/repository"
	"leaddesk_backend/internal/leads/service"
	"leaddesk_backend/internal/leads/transport"
	"leaddesk_backend/platform/apperr"
	"leaddesk_backend/platform/httpkit"
	"leaddesk_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 50
	leadIDParam     = "id"
)

type Handler struct {
	svc           *service.Service
	val           *validator.Validator
	maxUploadSize int64
}

func New(svc *service.Service, val *validator.Validator, maxUploadSize int64) *Handler {
	return &Handler{svc: svc, val: val, maxUploadSize: maxUploadSize}
}

// RegisterRoutes mounts the lead routes. Static segments are registered before
// the :id routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", access.RequireAction(access.ActionLeadViewOwn), h.List)
	rg.POST("", access.RequireAction(access.ActionLeadCreate), h.Create)
	rg.GET("/next", access.RequireAction(access.ActionLeadViewOwn), h.Next)

	rg.GET("/batches", access.RequireAction(access.ActionLeadUpload), h.ListBatches)
	rg.POST("/batches", access.RequireAction(access.ActionLeadUpload), h.UploadBatch)
	rg.GET("/batches/:id/file", access.RequireAction(access.ActionLeadUpload), h.BatchFile)

	rg.POST("/assign", access.RequireAction(access.ActionLeadAssign), h.Assign)
	rg.POST("/transfer", access.RequireAction(access.ActionLeadTransfer), h.Transfer)
	rg.POST("/revoke", access.RequireAction(access.ActionLeadRevoke), h.Revoke)
	rg.POST("/recover-stuck", access.RequireAction(access.ActionLeadRecoverStuck), h.RecoverStuck)
	rg.GET("/stuck", access.RequireAction(access.ActionLeadRecoverStuck), h.Stuck)
	rg.POST("/locks/sweep", h.SweepLocks)

	rg.GET("/:id", access.RequireAction(access.ActionLeadViewOwn), h.Get)
	rg.GET("/:id/notes", access.RequireAction(access.ActionLeadViewOwn), h.Notes)
	rg.GET("/:id/activity", access.RequireAction(access.ActionLeadViewOwn), h.Activity)
	rg.POST("/:id/lock", access.RequireAction(access.ActionLeadLock), h.Claim)
	rg.DELETE("/:id/lock", access.RequireAction(access.ActionLeadLock), h.Release)
	rg.POST("/:id/complete", access.RequireAction(access.ActionLeadComplete), h.Complete)
}

func actorFrom(c *gin.Context) (service.Actor, bool) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return service.Actor{}, false
	}
	return service.Actor{ID: id.UserID(), Role: access.RoleOf(id)}, true
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req transport.CreateLeadRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), actor, service.CreateLeadInput{
		CompanyName: req.CompanyName,
		ContactName: req.ContactName,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		City:        req.City,
		Category:    req.Category,
		Rating:      req.Rating,
		ReviewCount: req.ReviewCount,
		Website:     req.Website,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToLeadResponse(lead))
}

func (h *Handler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req transport.ListLeadsRequest
	if !httpkit.BindQuery(c, h.val, &req) {
		return
	}

	page := max(req.Page, 1)
	pageSize := req.PageSize
	if pageSize == 0 {
		pageSize = defaultPageSize
	}

	params := repository.ListParams{
		Unassigned: req.Unassigned,
		Search:     req.Search,
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	}
	if req.Status != "" {
		status := domain.Status(req.Status)
		params.Status = &status
	}
	if req.BatchID != "" {
		id := uuid.MustParse(req.BatchID)
		params.BatchID = &id
	}
	if req.AssignedTo != "" {
		id := uuid.MustParse(req.AssignedTo)
		params.AssignedTo = &id
	}

	leads, total, err := h.svc.List(c.Request.Context(), actor, params)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.LeadListResponse{
		Items:    transport.ToLeadResponses(leads),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (h *Handler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := httpkit.ParseUUIDParam(c, leadIDParam)
	if !ok {
		return
	}
	lead, err := h.svc.Get(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLeadResponse(lead))
}

func (h *Handler) Notes(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := httpkit.ParseUUIDParam(c, leadIDParam)
	if !ok {
		return
	}
	notes, err := h.svc.Notes(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.NoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, transport.NoteResponse{
			ID: n.ID, AgentID: n.AgentID, AgentName: n.AgentName,
			Note: n.Note, ActionTaken: n.ActionTaken, CreatedAt: n.CreatedAt,
		})
	}
	httpkit.OK(c, gin.H{"items": out})
}

func (h *Handler) Activity(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := httpkit.ParseUUIDParam(c, leadIDParam)
	if !ok {
		return
	}
	activity, err := h.svc.Activity(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.ActivityResponse, 0, len(activity))
	for _, a := range activity {
		out = append(out, transport.ActivityResponse{
			ID: a.ID, AgentID: a.AgentID, AgentName: a.AgentName,
			Action: a.Action, Metadata: a.Metadata, CreatedAt: a.CreatedAt,
		})
	}
	httpkit.OK(c, gin.H{"items": out})
}

func (h *Handler) Next(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	next, err := h.svc.Next(c.Request.Context(), actor)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.NextLeadResponse{LeadID: next})
}

func (h *Handler) ListBatches(c *gin.Context) {
	batches, err := h.svc.ListBatches(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.BatchResponse, 0, len(batches))
	for _, b := range batches {
		out = append(out, transport.ToBatchResponse(b))
	}
	httpkit.OK(c, gin.H{"items": out})
}

func (h *Handler) UploadBatch(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	if h.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize+1<<20)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, httpkit.MsgInvalidRequest, "file is required")
		return
	}
	if h.maxUploadSize > 0 && fileHeader.Size > h.maxUploadSize {
		httpkit.Error(c, http.StatusBadRequest, httpkit.MsgInvalidRequest, "file is too large")
		return
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".csv") {
		httpkit.Error(c, http.StatusBadRequest, httpkit.MsgInvalidRequest, "only .csv files are accepted")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("unable to read upload"))
		return
	}
	defer file.Close()

	batch, stats, err := h.svc.ImportUpload(c.Request.Context(), actor, service.UploadInput{
		Name:        c.PostForm("name"),
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Content:     file,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.UploadResponse{
		Batch:   transport.ToBatchResponse(batch),
		Skipped: stats.Skipped,
	})
}

func (h *Handler) BatchFile(c *gin.Context) {
	id, ok := httpkit.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	link, err := h.svc.BatchFileURL(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, link)
}

func (h *Handler) Assign(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req transport.AssignRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	quotas := make([]domain.Quota, 0, len(req.Assignments))
	for _, a := range req.Assignments {
		quotas = append(quotas, domain.Quota{AgentID: a.AgentID, Count: a.Count})
	}

	res, err := h.svc.Assign(c.Request.Context(), actor, req.BatchID, quotas)
	if httpkit.HandleError(c, err) {
		return
	}
	allocations := make([]transport.AllocationResponse, 0, len(res.Allocations))
	for _, a := range res.Allocations {
		allocations = append(allocations, transport.AllocationResponse{AgentID: a.AgentID, Count: len(a.LeadIDs)})
	}
	httpkit.OK(c, transport.AssignResponse{Assigned: res.Assigned, Allocations: allocations})
}

func (h *Handler) Transfer(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req transport.TransferRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}
	moved, err := h.svc.Transfer(c.Request.Context(), actor, req.LeadIDs, req.TargetAgentID, req.PreserveStatus)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.BulkResultResponse{Count: len(moved), LeadIDs: moved})
}

func (h *Handler) Revoke(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req transport.RevokeRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}
	revoked, err := h.svc.Revoke(c.Request.Context(), actor, req.AgentID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.BulkResultResponse{Count: len(revoked), LeadIDs: nonNil(revoked)})
}

func (h *Handler) RecoverStuck(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req transport.RecoverStuckRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}
	moved, err := h.svc.RecoverStuck(c.Request.Context(), actor, req.Hours, req.TargetAgentID.Value)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.BulkResultResponse{Count: len(moved), LeadIDs: nonNil(moved)})
}

func (h *Handler) Stuck(c *gin.Context) {
	var req transport.StuckQuery
	if !httpkit.BindQuery(c, h.val, &req) {
		return
	}
	limit := req.Limit
	if limit == 0 {
		limit = 100
	}
	leads, hours, err := h.svc.PreviewStuck(c.Request.Context(), req.Hours, limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.StuckResponse{Hours: hours, Count: len(leads), Items: transport.ToLeadResponses(leads)})
}

func (h *Handler) SweepLocks(c *gin.Context) {
	released, err := h.svc.SweepExpiredLocks(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.SweepResponse{Released: released})
}

func (h *Handler) Claim(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := httpkit.ParseUUIDParam(c, leadIDParam)
	if !ok {
		return
	}
	lead, err := h.svc.Claim(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.LockResponse{LeadID: lead.ID, LockedBy: lead.CurrentAgentID, LockedAt: lead.LockedAt})
}

func (h *Handler) Release(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := httpkit.ParseUUIDParam(c, leadIDParam)
	if !ok {
		return
	}
	released, err := h.svc.Release(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ReleaseResponse{Released: released})
}

func (h *Handler) Complete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := httpkit.ParseUUIDParam(c, leadIDParam)
	if !ok {
		return
	}
	var req transport.CompleteRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	res, err := h.svc.Complete(c.Request.Context(), actor, domain.Completion{
		LeadID:         id,
		Status:         domain.Status(req.Status),
		PotentialLevel: domain.Potential(req.PotentialLevel),
		Note:           req.Note,
		ActionTaken:    req.ActionTaken,
		AppointmentAt:  req.AppointmentAt,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.CompleteResponse{Lead: transport.ToLeadResponse(res.Lead), NextLeadID: res.NextLeadID})
}

func nonNil(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}
