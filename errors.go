package loja

import "errors"

var (
	// ErrNotFound is returned when a product or account does not exist
	ErrNotFound = errors.New("not found")
	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
	// ErrInvalidInput is returned when form or parameter validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when a request has no valid session
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is returned when sign-in fails, whatever the reason
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAlreadyExists is returned when a unique key is taken
	ErrAlreadyExists = errors.New("already exists")
	// ErrImageUpload is returned when the record was written but its image was not
	ErrImageUpload = errors.New("image upload failed")
)
