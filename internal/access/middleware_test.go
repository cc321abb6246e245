package access

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"leaddesk_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubLoader struct {
	profile SessionProfile
	err     error
}

func (s stubLoader) LoadSessionProfile(ctx context.Context, userID uuid.UUID) (SessionProfile, error) {
	return s.profile, s.err
}

func gateRouter(userID uuid.UUID, loader ProfileLoader, action Action) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x",
		func(c *gin.Context) {
			if userID != uuid.Nil {
				c.Set(httpkit.ContextUserIDKey, userID)
			}
			c.Next()
		},
		LoadProfile(loader),
		RequireAction(action),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"role": httpkit.GetIdentity(c).Role()})
		},
	)
	return r
}

func serve(r *gin.Engine) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	return rec
}

func TestGateStatusCodes(t *testing.T) {
	userID := uuid.New()

	rec := serve(gateRouter(uuid.Nil, stubLoader{}, ActionLeadLock))
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "no session")

	rec = serve(gateRouter(userID, stubLoader{err: ErrProfileNotFound}, ActionLeadLock))
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "missing profile")

	rec = serve(gateRouter(userID, stubLoader{err: errors.New("dial tcp 127.0.0.1:5432: connection refused")}, ActionLeadLock))
	assert.Equal(t, http.StatusInternalServerError, rec.Code, "database down")
	assert.JSONEq(t, `{"error":"dial tcp 127.0.0.1:5432: connection refused"}`, rec.Body.String())

	inactive := SessionProfile{ID: userID, Role: "manager", IsActive: false}
	rec = serve(gateRouter(userID, stubLoader{profile: inactive}, ActionLeadLock))
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "inactive profile")

	agent := SessionProfile{ID: userID, Role: "agent", IsActive: true}
	rec = serve(gateRouter(userID, stubLoader{profile: agent}, ActionLeadAssign))
	assert.Equal(t, http.StatusForbidden, rec.Code, "agent assigning")
	assert.JSONEq(t, `{"error":"forbidden"}`, rec.Body.String())

	manager := SessionProfile{ID: userID, Role: "manager", IsActive: true}
	rec = serve(gateRouter(userID, stubLoader{profile: manager}, ActionLeadAssign))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"role":"manager"}`, rec.Body.String())
}
