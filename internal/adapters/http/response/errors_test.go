package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/recruitment-api/internal/core/auth"
	"github.com/ogurasousui/recruitment-api/internal/core/client"
	"github.com/ogurasousui/recruitment-api/internal/core/identity"
	"github.com/ogurasousui/recruitment-api/internal/core/posting"
	"github.com/ogurasousui/recruitment-api/internal/platform/logger"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &posting.ValidationError{Fields: map[string]string{"job_title": "required"}}, http.StatusBadRequest, "validation_error"},
		{"missing fields", &posting.MissingFieldsError{Fields: []string{"title"}}, http.StatusBadRequest, "missing_fields"},
		{"insufficient approvals", posting.ErrInsufficientApprovals, http.StatusBadRequest, "invalid_transition"},
		{"wrapped transition", fmt.Errorf("status: %w", posting.ErrInvalidTransition), http.StatusBadRequest, "invalid_transition"},
		{"posting not found", posting.ErrPostingNotFound, http.StatusNotFound, "not_found"},
		{"step out of scope", posting.ErrStepNotFoundInScope, http.StatusNotFound, "not_found"},
		{"unknown client reference", posting.ErrClientNotFound, http.StatusBadRequest, "invalid_reference"},
		{"client not found", client.ErrClientNotFound, http.StatusNotFound, "not_found"},
		{"duplicate client", client.ErrNameAlreadyExists, http.StatusBadRequest, "already_exists"},
		{"user not found", identity.ErrUserNotFound, http.StatusNotFound, "not_found"},
		{"wrong password", &auth.AttemptError{Remaining: 3, Err: auth.ErrInvalidCredentials}, http.StatusBadRequest, "invalid_credentials"},
		{"locked by attempt", &auth.AttemptError{Remaining: 0, Err: auth.ErrAccountLocked}, http.StatusForbidden, "account_locked"},
		{"locked", auth.ErrAccountLocked, http.StatusForbidden, "account_locked"},
		{"inactive", auth.ErrAccountInactive, http.StatusForbidden, "account_inactive"},
		{"role drift", auth.ErrRoleMismatch, http.StatusUnauthorized, "role_mismatch"},
		{"department drift", auth.ErrDepartmentMismatch, http.StatusUnauthorized, "department_mismatch"},
		{"business unit drift", auth.ErrBusinessUnitMismatch, http.StatusUnauthorized, "business_unit_mismatch"},
		{"expired", auth.ErrTokenExpired, http.StatusUnauthorized, "token_expired"},
		{"invalid token", fmt.Errorf("%w: signature is invalid", auth.ErrTokenInvalid), http.StatusUnauthorized, "token_invalid"},
		{"token for deleted user", fmt.Errorf("%w: %w", auth.ErrTokenInvalid, auth.ErrUserNotFound), http.StatusUnauthorized, "token_invalid"},
		{"no credentials", ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"malformed reference", posting.ErrMalformedReference, http.StatusBadRequest, "invalid_reference"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "forbidden"},
		{"rate limited", ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
		{"bad request", &BadRequest{Field: "ids", Message: "must be a list"}, http.StatusBadRequest, "invalid_request"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			status, apiErr := classify(tt.err)
			if status != tt.wantStatus || apiErr.Code != tt.wantCode {
				t.Fatalf("expected %d/%s, got %d/%s", tt.wantStatus, tt.wantCode, status, apiErr.Code)
			}
		})
	}
}

func TestError_WritesEnvelope(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)

	Error(c, logger.Nop(), &auth.AttemptError{Remaining: 2, Err: auth.ErrInvalidCredentials})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Error.RemainingAttempts == nil || *body.Error.RemainingAttempts != 2 {
		t.Fatalf("expected remaining attempts 2, got %+v", body.Error)
	}
	if !c.IsAborted() {
		t.Fatal("expected context to be aborted")
	}
}

func TestError_HidesInternalMessage(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/postings", nil)

	Error(c, logger.Nop(), errors.New("pq: connection refused"))

	var body ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Error.Message != "internal server error" {
		t.Fatalf("expected generic message, got %q", body.Error.Message)
	}
}

func TestUnauthorized_KeepsCode(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"locked", auth.ErrAccountLocked, "account_locked"},
		{"inactive", auth.ErrAccountInactive, "account_inactive"},
		{"expired", auth.ErrTokenExpired, "token_expired"},
		{"unexpected", errors.New("pq: connection refused"), "unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodPost, "/token/refresh", nil)

			Unauthorized(c, logger.Nop(), tt.err)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			var body ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.Error.Code != tt.wantCode {
				t.Fatalf("expected code %s, got %s", tt.wantCode, body.Error.Code)
			}
		})
	}
}
