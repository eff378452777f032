// Package artifact validates printed-code artifacts before a packet may
// leave SETUP_PENDING. The core only cares about pass/fail.
package artifact

import (
	"errors"
	"net/http"
)

const MaxSizeBytes = 5 << 20

var (
	ErrEmpty           = errors.New("artifact is empty")
	ErrTooLarge        = errors.New("artifact exceeds size limit")
	ErrUnsupportedType = errors.New("artifact type not supported")
	ErrTypeMismatch    = errors.New("declared type does not match content")
)

var allowedTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate sniffs the content type from the payload itself; the declared
// type is only trusted when it agrees with the sniffed one.
func (v *Validator) Validate(data []byte, declaredType string) error {
	if len(data) == 0 {
		return ErrEmpty
	}
	if len(data) > MaxSizeBytes {
		return ErrTooLarge
	}

	detected := http.DetectContentType(data)
	if !allowedTypes[detected] {
		return ErrUnsupportedType
	}
	if declaredType != "" && declaredType != detected {
		return ErrTypeMismatch
	}
	return nil
}
