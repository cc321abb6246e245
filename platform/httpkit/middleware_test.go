package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leaddesk_backend/platform/apperr"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type testSessionConfig struct{}

func (testSessionConfig) GetJWTAccessSecret() string               { return "test-secret" }
func (testSessionConfig) GetSessionCookieName() string             { return "leaddesk_session" }
func (testSessionConfig) GetSessionCookieDomain() string           { return "" }
func (testSessionConfig) GetSessionCookieSecure() bool             { return false }
func (testSessionConfig) GetSessionCookieSameSite() http.SameSite  { return http.SameSiteLaxMode }
func (testSessionConfig) GetAccessTokenTTL() time.Duration         { return time.Hour }

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthRequired(testSessionConfig{}), func(c *gin.Context) {
		id := MustGetIdentity(c)
		if id == nil {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id.UserID().String()})
	})
	return r
}

func TestAuthRequiredRejectsMissingToken(t *testing.T) {
	r := newAuthRouter()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRequiredAcceptsBearerAndCookie(t *testing.T) {
	r := newAuthRouter()
	userID := uuid.New()
	token, err := SignAccessToken(testSessionConfig{}, userID, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("bearer: expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "leaddesk_session", Value: token})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("cookie: expected 200, got %d", rec.Code)
	}
}

func TestAuthRequiredRejectsExpiredToken(t *testing.T) {
	r := newAuthRouter()
	token, err := SignAccessToken(testSessionConfig{}, uuid.New(), time.Minute, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", rec.Code)
	}
}

func TestHandleErrorFallsBackTo500WithRawMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	HandleError(c, apperr.Conflict("lead is locked"))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	HandleError(c, errString("connection refused"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != `{"error":"connection refused"}` {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestRateLimitRejectsAfterBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewIPRateLimiter(0.0001, 2, nil)
	r := gin.New()
	r.GET("/", limiter.RateLimit(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
}

type errString string

func (e errString) Error() string { return string(e) }
