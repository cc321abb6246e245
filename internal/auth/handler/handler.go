package handler

import (
	"net/http"

	"leaddesk_backend/internal/access"
	"leaddesk_backend/internal/auth/repository"
	"leaddesk_backend/internal/auth/service"
	"leaddesk_backend/internal/auth/transport"
	"leaddesk_backend/platform/config"
	"leaddesk_backend/platform/httpkit"
	"leaddesk_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
	cfg config.SessionConfig
	val *validator.Validator
}

func New(svc *service.Service, cfg config.SessionConfig, val *validator.Validator) *Handler {
	return &Handler{svc: svc, cfg: cfg, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sign-in", h.SignIn)
	rg.POST("/sign-out", h.SignOut)
}

func (h *Handler) RegisterTeamRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListTeam)
	rg.POST("", h.CreateMember)
	rg.PATCH("/:id", h.UpdateMember)
	rg.DELETE("/:id", h.DeleteMember)
}

func (h *Handler) SignIn(c *gin.Context) {
	var req transport.SignInRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	session, err := h.svc.SignIn(c.Request.Context(), req.Email, req.Password)
	if httpkit.HandleError(c, err) {
		return
	}

	h.setSessionCookie(c, session.AccessToken, int(h.cfg.GetAccessTokenTTL().Seconds()))
	httpkit.OK(c, transport.SignInResponse{
		AccessToken: session.AccessToken,
		ExpiresAt:   session.ExpiresAt,
		Profile:     toProfileResponse(session.Profile),
	})
}

func (h *Handler) SignOut(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetMe(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	profile, err := h.svc.GetMe(c.Request.Context(), id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toProfileResponse(profile))
}

func (h *Handler) ListTeam(c *gin.Context) {
	profiles, err := h.svc.ListTeam(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.ProfileResponse, len(profiles))
	for i, p := range profiles {
		out[i] = toProfileResponse(p)
	}
	httpkit.OK(c, gin.H{"items": out})
}

func (h *Handler) CreateMember(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.CreateMemberRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	profile, err := h.svc.CreateMember(c.Request.Context(), access.RoleOf(id), service.CreateMemberInput{
		Email:          req.Email,
		Password:       req.Password,
		FullName:       req.FullName,
		Phone:          req.Phone,
		Role:           access.Role(req.Role),
		CommissionRate: req.CommissionRate,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, toProfileResponse(profile))
}

func (h *Handler) UpdateMember(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	memberID, ok := httpkit.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req transport.UpdateMemberRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	in := service.UpdateMemberInput{
		FullName:       req.FullName,
		Phone:          req.Phone,
		CommissionRate: req.CommissionRate,
		IsActive:       req.IsActive,
	}
	if req.Role != nil {
		role := access.Role(*req.Role)
		in.Role = &role
	}

	profile, err := h.svc.UpdateMember(c.Request.Context(), id.UserID(), access.RoleOf(id), memberID, in)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toProfileResponse(profile))
}

func (h *Handler) DeleteMember(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	memberID, ok := httpkit.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	released, err := h.svc.DeleteMember(c.Request.Context(), id.UserID(), access.RoleOf(id), memberID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.DeleteMemberResponse{ReleasedLeads: released})
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(h.cfg.GetSessionCookieSameSite())
	c.SetCookie(
		h.cfg.GetSessionCookieName(),
		value,
		maxAge,
		"/",
		h.cfg.GetSessionCookieDomain(),
		h.cfg.GetSessionCookieSecure(),
		true,
	)
}

func toProfileResponse(p repository.Profile) transport.ProfileResponse {
	return transport.ProfileResponse{
		ID:             p.ID.String(),
		FullName:       p.FullName,
		Email:          p.Email,
		Phone:          p.Phone,
		Role:           p.Role,
		CommissionRate: p.CommissionRate,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
