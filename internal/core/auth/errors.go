package auth

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredentials = errors.New("auth: credentials were not provided")
	ErrInvalidCredentials = errors.New("auth: wrong password")
	ErrTokenInvalid       = errors.New("auth: invalid token")
	ErrTokenExpired       = errors.New("auth: token expired")
	// ErrRoleMismatch などはトークン発行後にユーザー情報が変化した場合に返却され、再ログインを要求します。
	ErrRoleMismatch         = errors.New("auth: user role has changed, please login again")
	ErrDepartmentMismatch   = errors.New("auth: user department has changed, please login again")
	ErrBusinessUnitMismatch = errors.New("auth: user business unit has changed, please login again")
	ErrAccountLocked        = errors.New("auth: account locked, please ask administrator")
	ErrAccountInactive      = errors.New("auth: user account is inactive")
	ErrUserNotFound         = errors.New("auth: user not found")
)

// AttemptError はパスワード誤りの結果として残り試行回数を伝えます。
// しきい値に達した場合は ErrAccountLocked を、それ以外は ErrInvalidCredentials をラップします。
type AttemptError struct {
	Remaining int
	Err       error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("%v: %d remaining attempt/s", e.Err, e.Remaining)
}

func (e *AttemptError) Unwrap() error {
	return e.Err
}
