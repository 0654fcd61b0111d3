package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	goerrors "github.com/go-errors/errors"
	"github.com/ogurasousui/recruitment-api/internal/core/auth"
	"github.com/ogurasousui/recruitment-api/internal/core/client"
	"github.com/ogurasousui/recruitment-api/internal/core/identity"
	"github.com/ogurasousui/recruitment-api/internal/core/posting"
	"github.com/ogurasousui/recruitment-api/internal/platform/logger"
)

var (
	// ErrUnauthorized は認証情報がないリクエストに返却されます。
	ErrUnauthorized = errors.New("http: authentication credentials were not provided")
	// ErrForbidden は役割が不足している場合に返却されます。
	ErrForbidden = errors.New("http: you do not have permission to perform this action")
	// ErrRateLimited はログイン試行の頻度制限に達した場合に返却されます。
	ErrRateLimited = errors.New("http: too many requests")
)

// BadRequest は入力の解析に失敗した場合のエラーです。
type BadRequest struct {
	Field   string
	Message string
}

func (e *BadRequest) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Error は err をステータスとエラーコードへ変換して書き込みます。想定外のエラーはスタック付きで記録し 500 を返します。
func Error(c *gin.Context, log *logger.Logger, err error) {
	status, apiErr := classify(err)
	if status == http.StatusInternalServerError {
		logUnexpected(c, log, err)
	}
	Abort(c, status, apiErr)
}

// Unauthorized は err のエラーコードを保ったまま 401 を書き込みます。
// トークン再発行のように、失敗をすべて認証失敗として扱うエンドポイントで使います。
func Unauthorized(c *gin.Context, log *logger.Logger, err error) {
	status, apiErr := classify(err)
	if status == http.StatusInternalServerError {
		logUnexpected(c, log, err)
		apiErr = APIError{Code: "unauthorized", Message: ErrUnauthorized.Error()}
	}
	Abort(c, http.StatusUnauthorized, apiErr)
}

func logUnexpected(c *gin.Context, log *logger.Logger, err error) {
	if log == nil {
		return
	}
	log.Error("unexpected error",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"error", err.Error(),
		"stack", string(goerrors.Wrap(err, 2).Stack()),
	)
}

func classify(err error) (int, APIError) {
	var (
		badRequest *BadRequest
		validation *posting.ValidationError
		missing    *posting.MissingFieldsError
		attempt    *auth.AttemptError
	)

	switch {
	case errors.As(err, &badRequest):
		apiErr := APIError{Code: "invalid_request", Message: badRequest.Error()}
		if badRequest.Field != "" {
			apiErr.Fields = map[string]string{badRequest.Field: badRequest.Message}
		}
		return http.StatusBadRequest, apiErr
	case errors.As(err, &validation):
		return http.StatusBadRequest, APIError{Code: "validation_error", Message: err.Error(), Fields: validation.Fields}
	case errors.As(err, &missing):
		fields := make(map[string]string, len(missing.Fields))
		for _, name := range missing.Fields {
			fields[name] = "this field is required"
		}
		return http.StatusBadRequest, APIError{Code: "missing_fields", Message: err.Error(), Fields: fields}
	case errors.As(err, &attempt):
		remaining := attempt.Remaining
		if errors.Is(err, auth.ErrAccountLocked) {
			return http.StatusForbidden, APIError{Code: "account_locked", Message: err.Error(), RemainingAttempts: &remaining}
		}
		return http.StatusBadRequest, APIError{Code: "invalid_credentials", Message: err.Error(), RemainingAttempts: &remaining}

	case errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized, APIError{Code: "token_expired", Message: err.Error()}
	case errors.Is(err, auth.ErrRoleMismatch):
		return http.StatusUnauthorized, APIError{Code: "role_mismatch", Message: err.Error()}
	case errors.Is(err, auth.ErrDepartmentMismatch):
		return http.StatusUnauthorized, APIError{Code: "department_mismatch", Message: err.Error()}
	case errors.Is(err, auth.ErrBusinessUnitMismatch):
		return http.StatusUnauthorized, APIError{Code: "business_unit_mismatch", Message: err.Error()}
	case errors.Is(err, auth.ErrTokenInvalid):
		return http.StatusUnauthorized, APIError{Code: "token_invalid", Message: err.Error()}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, APIError{Code: "unauthorized", Message: err.Error()}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, APIError{Code: "forbidden", Message: err.Error()}
	case errors.Is(err, auth.ErrAccountLocked):
		return http.StatusForbidden, APIError{Code: "account_locked", Message: err.Error()}
	case errors.Is(err, auth.ErrAccountInactive):
		return http.StatusForbidden, APIError{Code: "account_inactive", Message: err.Error()}
	case errors.Is(err, auth.ErrMissingCredentials), errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusBadRequest, APIError{Code: "invalid_credentials", Message: err.Error()}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, APIError{Code: "rate_limited", Message: err.Error()}

	case errors.Is(err, posting.ErrInvalidTransition):
		return http.StatusBadRequest, APIError{Code: "invalid_transition", Message: err.Error()}
	case errors.Is(err, posting.ErrClientNotFound):
		return http.StatusBadRequest, APIError{Code: "invalid_reference", Message: err.Error(), Fields: map[string]string{"client": "does not exist"}}
	case errors.Is(err, posting.ErrUserNotFound), errors.Is(err, posting.ErrMalformedReference):
		return http.StatusBadRequest, APIError{Code: "invalid_reference", Message: err.Error()}

	case errors.Is(err, posting.ErrPostingNotFound),
		errors.Is(err, posting.ErrStepNotFoundInScope),
		errors.Is(err, posting.ErrKindMismatch),
		errors.Is(err, client.ErrClientNotFound),
		errors.Is(err, identity.ErrUserNotFound),
		errors.Is(err, auth.ErrUserNotFound):
		return http.StatusNotFound, APIError{Code: "not_found", Message: err.Error()}

	case errors.Is(err, client.ErrNameAlreadyExists), errors.Is(err, identity.ErrEmailAlreadyExists):
		return http.StatusBadRequest, APIError{Code: "already_exists", Message: err.Error()}

	case errors.Is(err, posting.ErrValidation),
		errors.Is(err, posting.ErrMissingFields),
		errors.Is(err, posting.ErrPipelineRequired),
		errors.Is(err, posting.ErrDuplicateStepOrder),
		errors.Is(err, posting.ErrInvalidID),
		errors.Is(err, posting.ErrInvalidKind),
		errors.Is(err, posting.ErrInvalidStatus),
		errors.Is(err, posting.ErrInvalidPageSize),
		errors.Is(err, posting.ErrInvalidPageToken),
		errors.Is(err, client.ErrInvalidName),
		errors.Is(err, client.ErrInvalidEmail),
		errors.Is(err, client.ErrInvalidContactNumber),
		errors.Is(err, client.ErrInvalidID),
		errors.Is(err, client.ErrInvalidPageSize),
		errors.Is(err, client.ErrInvalidPageToken),
		errors.Is(err, identity.ErrInvalidEmail),
		errors.Is(err, identity.ErrInvalidName),
		errors.Is(err, identity.ErrInvalidRole),
		errors.Is(err, identity.ErrInvalidPassword),
		errors.Is(err, identity.ErrInvalidID),
		errors.Is(err, identity.ErrInvalidPageSize),
		errors.Is(err, identity.ErrInvalidPageToken):
		return http.StatusBadRequest, APIError{Code: "validation_error", Message: err.Error()}

	default:
		return http.StatusInternalServerError, APIError{Code: "internal", Message: "internal server error"}
	}
}
