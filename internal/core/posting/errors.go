package posting

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrPostingNotFound  = errors.New("posting: not found")
	ErrInvalidID        = errors.New("posting: invalid id")
	ErrInvalidKind      = errors.New("posting: invalid kind")
	ErrInvalidStatus    = errors.New("posting: invalid status")
	ErrInvalidPageSize  = errors.New("posting: invalid page size")
	ErrInvalidPageToken = errors.New("posting: invalid page token")
	// ErrInvalidTransition は現在の状態から要求された状態へ遷移できない場合に返却されます。
	ErrInvalidTransition = errors.New("posting: invalid status transition")
	// ErrInsufficientApprovals は承認数が不足したまま要求を公開しようとした場合に返却されます。
	ErrInsufficientApprovals = fmt.Errorf("%w: not enough manager approvals", ErrInvalidTransition)
	ErrKindMismatch          = errors.New("posting: detail does not match posting kind")
	ErrValidation            = errors.New("posting: validation failed")
	ErrPipelineRequired      = errors.New("posting: at least one pipeline step is required")
	ErrDuplicateStepOrder    = errors.New("posting: duplicate pipeline stage and order")
	// ErrStepNotFoundInScope は指定されたステップ ID がこの求人に属さない場合に返却されます。
	ErrStepNotFoundInScope = errors.New("posting: pipeline step not found in this posting")
	ErrMissingFields       = errors.New("posting: missing required fields")
	ErrClientNotFound      = errors.New("posting: client not found")
	ErrUserNotFound        = errors.New("posting: referenced user not found")
	// ErrMalformedReference は参照先 ID が UUID として解釈できない場合に返却されます。
	ErrMalformedReference = errors.New("posting: malformed reference id")
)

// ValidationError は項目ごとの検証エラーを保持します。
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// MissingFieldsError は新規ステップに不足している必須項目を列挙します。
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissingFields, strings.Join(e.Fields, ", "))
}

func (e *MissingFieldsError) Unwrap() error {
	return ErrMissingFields
}

type validator struct {
	fields map[string]string
}

func (v *validator) check(ok bool, field, message string) {
	if ok {
		return
	}
	if v.fields == nil {
		v.fields = make(map[string]string)
	}
	if _, exists := v.fields[field]; !exists {
		v.fields[field] = message
	}
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}
