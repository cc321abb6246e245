package transport

import (
	"encoding/json"
	"time"

	"leaddesk_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// Request DTOs

type CreateLeadRequest struct {
	CompanyName string   `json:"companyName" validate:"required,min=1,max=200"`
	ContactName string   `json:"contactName,omitempty" validate:"max=200"`
	Phone       string   `json:"phone,omitempty" validate:"max=40"`
	Email       string   `json:"email,omitempty" validate:"omitempty,email"`
	Address     string   `json:"address,omitempty" validate:"max=300"`
	City        string   `json:"city,omitempty" validate:"max=100"`
	Category    string   `json:"category,omitempty" validate:"max=100"`
	Rating      *float64 `json:"rating,omitempty" validate:"omitempty,min=0,max=5"`
	ReviewCount int      `json:"reviewCount,omitempty" validate:"min=0"`
	Website     string   `json:"website,omitempty" validate:"omitempty,max=300"`
}

type ListLeadsRequest struct {
	Status     string `form:"status" validate:"omitempty,leadstatus"`
	BatchID    string `form:"batchId" validate:"omitempty,uuid"`
	AssignedTo string `form:"assignedTo" validate:"omitempty,uuid"`
	Unassigned bool   `form:"unassigned"`
	Search     string `form:"search" validate:"max=100"`
	Page       int    `form:"page" validate:"omitempty,min=1"`
	PageSize   int    `form:"pageSize" validate:"omitempty,min=1,max=200"`
}

type AssignmentEntry struct {
	AgentID uuid.UUID `json:"agentId" validate:"required"`
	Count   int       `json:"count" validate:"min=0"`
}

type AssignRequest struct {
	BatchID     uuid.UUID         `json:"batchId" validate:"required"`
	Assignments []AssignmentEntry `json:"assignments" validate:"required,min=1,dive"`
}

type TransferRequest struct {
	LeadIDs        []uuid.UUID `json:"leadIds" validate:"required,min=1,max=1000"`
	TargetAgentID  uuid.UUID   `json:"targetAgentId" validate:"required"`
	PreserveStatus bool        `json:"preserveStatus"`
}

type RevokeRequest struct {
	AgentID uuid.UUID `json:"agentId" validate:"required"`
}

type RecoverStuckRequest struct {
	Hours         int          `json:"hours" validate:"min=0,max=8760"`
	TargetAgentID NullableUUID `json:"targetAgentId"`
}

type StuckQuery struct {
	Hours int `form:"hours" validate:"min=0,max=8760"`
	Limit int `form:"limit" validate:"omitempty,min=1,max=500"`
}

type CompleteRequest struct {
	Status         string     `json:"status" validate:"required,leadstatus"`
	PotentialLevel string     `json:"potentialLevel" validate:"required,potential"`
	Note           string     `json:"note" validate:"required,max=4000"`
	ActionTaken    string     `json:"actionTaken" validate:"max=200"`
	AppointmentAt  *time.Time `json:"appointmentAt,omitempty"`
}

// Response DTOs

type LeadResponse struct {
	ID             uuid.UUID       `json:"id"`
	BatchID        *uuid.UUID      `json:"batchId,omitempty"`
	CompanyName    string          `json:"companyName"`
	ContactName    string          `json:"contactName"`
	Phone          string          `json:"phone"`
	Email          string          `json:"email"`
	Address        string          `json:"address"`
	City           string          `json:"city"`
	Category       string          `json:"category"`
	Rating         *float64        `json:"rating,omitempty"`
	ReviewCount    int             `json:"reviewCount"`
	Website        string          `json:"website"`
	Status         string          `json:"status"`
	PotentialLevel string          `json:"potentialLevel"`
	AssignedTo     *uuid.UUID      `json:"assignedTo,omitempty"`
	AssignedAt     *time.Time      `json:"assignedAt,omitempty"`
	CurrentAgentID *uuid.UUID      `json:"currentAgentId,omitempty"`
	LockedAt       *time.Time      `json:"lockedAt,omitempty"`
	ProcessedAt    *time.Time      `json:"processedAt,omitempty"`
	AppointmentAt  *time.Time      `json:"appointmentAt,omitempty"`
	Enrichment     json.RawMessage `json:"enrichment,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type LeadListResponse struct {
	Items    []LeadResponse `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

type NoteResponse struct {
	ID          uuid.UUID  `json:"id"`
	AgentID     *uuid.UUID `json:"agentId,omitempty"`
	AgentName   string     `json:"agentName"`
	Note        string     `json:"note"`
	ActionTaken string     `json:"actionTaken"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type ActivityResponse struct {
	ID        uuid.UUID       `json:"id"`
	AgentID   *uuid.UUID      `json:"agentId,omitempty"`
	AgentName string          `json:"agentName"`
	Action    string          `json:"action"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type BatchResponse struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	FileName        string     `json:"fileName"`
	Archived        bool       `json:"archived"`
	UploadedBy      *uuid.UUID `json:"uploadedBy,omitempty"`
	LeadCount       int        `json:"leadCount"`
	UnassignedCount int        `json:"unassignedCount"`
	CreatedAt       time.Time  `json:"createdAt"`
}

type UploadResponse struct {
	Batch   BatchResponse `json:"batch"`
	Skipped int           `json:"skipped"`
}

type NextLeadResponse struct {
	LeadID *uuid.UUID `json:"leadId"`
}

type LockResponse struct {
	LeadID   uuid.UUID  `json:"leadId"`
	LockedBy *uuid.UUID `json:"lockedBy"`
	LockedAt *time.Time `json:"lockedAt"`
}

type ReleaseResponse struct {
	Released bool `json:"released"`
}

type SweepResponse struct {
	Released int64 `json:"released"`
}

type AllocationResponse struct {
	AgentID uuid.UUID `json:"agentId"`
	Count   int       `json:"count"`
}

type AssignResponse struct {
	Assigned    int                  `json:"assigned"`
	Allocations []AllocationResponse `json:"allocations"`
}

type BulkResultResponse struct {
	Count   int         `json:"count"`
	LeadIDs []uuid.UUID `json:"leadIds"`
}

type StuckResponse struct {
	Hours int            `json:"hours"`
	Count int            `json:"count"`
	Items []LeadResponse `json:"items"`
}

type CompleteResponse struct {
	Lead       LeadResponse `json:"lead"`
	NextLeadID *uuid.UUID   `json:"nextLeadId"`
}

// ToLeadResponse maps a domain lead to its wire form.
func ToLeadResponse(l domain.Lead) LeadResponse {
	return LeadResponse{
		ID:             l.ID,
		BatchID:        l.BatchID,
		CompanyName:    l.CompanyName,
		ContactName:    l.ContactName,
		Phone:          l.Phone,
		Email:          l.Email,
		Address:        l.Address,
		City:           l.City,
		Category:       l.Category,
		Rating:         l.Rating,
		ReviewCount:    l.ReviewCount,
		Website:        l.Website,
		Status:         string(l.Status),
		PotentialLevel: string(l.PotentialLevel),
		AssignedTo:     l.AssignedTo,
		AssignedAt:     l.AssignedAt,
		CurrentAgentID: l.CurrentAgentID,
		LockedAt:       l.LockedAt,
		ProcessedAt:    l.ProcessedAt,
		AppointmentAt:  l.AppointmentAt,
		Enrichment:     l.Enrichment,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

func ToLeadResponses(leads []domain.Lead) []LeadResponse {
	out := make([]LeadResponse, 0, len(leads))
	for _, l := range leads {
		out = append(out, ToLeadResponse(l))
	}
	return out
}

func ToBatchResponse(b domain.Batch) BatchResponse {
	return BatchResponse{
		ID:              b.ID,
		Name:            b.Name,
		FileName:        b.FileName,
		Archived:        b.ObjectKey != nil,
		UploadedBy:      b.UploadedBy,
		LeadCount:       b.LeadCount,
		UnassignedCount: b.UnassignedCount,
		CreatedAt:       b.CreatedAt,
	}
}
