package domain

import "errors"

// ErrDuplicate is returned by stores when a unique constraint rejects a write
var ErrDuplicate = errors.New("duplicate key")
