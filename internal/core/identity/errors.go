package identity

import "errors"

var (
	// ErrUserNotFound はユーザーが存在しない場合に返却されます。
	ErrUserNotFound = errors.New("identity: user not found")
	// ErrEmailAlreadyExists はメールアドレス重複時に返却されます。
	ErrEmailAlreadyExists = errors.New("identity: email already exists")
	// ErrInvalidEmail はメールアドレスが不正な場合に返却されます。
	ErrInvalidEmail = errors.New("identity: invalid email")
	// ErrInvalidName は氏名が不正な場合に返却されます。
	ErrInvalidName = errors.New("identity: invalid name")
	// ErrInvalidRole は役割が不正な場合に返却されます。
	ErrInvalidRole = errors.New("identity: invalid role")
	// ErrInvalidPassword はパスワードが要件を満たさない場合に返却されます。
	ErrInvalidPassword = errors.New("identity: invalid password")
	// ErrInvalidID はIDが不正な場合に返却されます。
	ErrInvalidID        = errors.New("identity: invalid id")
	ErrInvalidPageSize  = errors.New("identity: invalid page size")
	ErrInvalidPageToken = errors.New("identity: invalid page token")
)
