package client

import "errors"

var (
	// ErrClientNotFound は取引先が存在しない場合に返却されます。
	ErrClientNotFound = errors.New("client: not found")
	// ErrNameAlreadyExists は取引先名の重複時に返却されます。
	ErrNameAlreadyExists = errors.New("client: name already exists")
	ErrInvalidName       = errors.New("client: invalid name")
	ErrInvalidEmail      = errors.New("client: invalid email")
	// ErrInvalidContactNumber は連絡先番号が 11 桁の数字でない場合に返却されます。
	ErrInvalidContactNumber = errors.New("client: contact number must be exactly 11 digits")
	ErrInvalidID            = errors.New("client: invalid id")
	ErrInvalidPageSize      = errors.New("client: invalid page size")
	ErrInvalidPageToken     = errors.New("client: invalid page token")
)
