package domain

import "errors"

// ErrMissingIdentity is returned when no identifier has been stored yet.
var ErrMissingIdentity = errors.New("no identifier stored")
