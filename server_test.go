package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bitbucket.org/mmdatafocus/balances_backend/config"
	"bitbucket.org/mmdatafocus/balances_backend/models"
	"bitbucket.org/mmdatafocus/balances_backend/utils"
	"bitbucket.org/mmdatafocus/balances_backend/workflow"
	"github.com/gin-gonic/gin"
)

func newTestRouter(ready func() bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := workflow.NewEngine(models.GormCaseStore{}, models.GormHistoryStore{}, nil)
	opener := workflow.NewYearOpener(models.GormCaseStore{}, models.GormClientSource{}, models.RedisYearLocker{})
	return buildRouter(config.GetLogger(), engine, opener, ready)
}

func TestRouterRecoversHandlerPanic(t *testing.T) {
	r := newTestRouter(func() bool { return true })
	r.GET("/boom", func(c *gin.Context) { panic("kaput") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("panicking handler: got status %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestRouterRecoversMiddlewarePanic(t *testing.T) {
	// The readiness check runs early in the chain; a panic there must still
	// come back as a 500 response.
	r := newTestRouter(func() bool { panic("kaput") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/cases", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("panicking middleware: got status %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestRouterNotReady(t *testing.T) {
	r := newTestRouter(func() bool { return false })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/cases", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("app endpoint before readiness: got status %d, want %d", w.Code, http.StatusServiceUnavailable)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("healthz before readiness: got status %d, want %d", w.Code, http.StatusNoContent)
	}
}

func TestWriteBindErrorReportsFields(t *testing.T) {
	r := newTestRouter(func() bool { return true })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/signin", strings.NewReader(`{"username":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing password: got status %d, want %d", w.Code, http.StatusBadRequest)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"fields"`) || !strings.Contains(body, "Password") {
		t.Errorf("bind error should name the failing field, got %s", body)
	}
}

func TestWriteDomainErrorStatuses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"illegal transition", &workflow.IllegalTransitionError{
			From:   models.BalanceStageOpened,
			To:     models.BalanceStageWorkCompleted,
			Reason: "staff may only advance to the next stage",
		}, http.StatusUnprocessableEntity},
		{"confirmation guard", &workflow.ConfirmationGuardError{CaseId: 1}, http.StatusUnprocessableEntity},
		{"stage conflict", &workflow.StageConflictError{
			CaseId:   1,
			Expected: models.BalanceStageOpened,
		}, http.StatusConflict},
		{"duplicate year", &workflow.DuplicateYearError{Year: 2026, ExistingCount: 3}, http.StatusConflict},
		{"record not found", utils.ErrorRecordNotFound, http.StatusNotFound},
		{"database outage", errors.New("dial tcp: connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			writeDomainError(c, tc.err)
			if w.Code != tc.want {
				t.Errorf("status for %v: got %d, want %d", tc.err, w.Code, tc.want)
			}
		})
	}
}
