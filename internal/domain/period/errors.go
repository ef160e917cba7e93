package period

import "errors"

var (
	ErrNotFound      = errors.New("evaluation period not found")
	ErrInvalidStatus = errors.New("invalid evaluation period status")
)
