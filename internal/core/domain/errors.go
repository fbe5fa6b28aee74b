package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrSessionNotFound  = errors.New("chat session not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTemporary        = errors.New("temporary failure")

	// ErrUnsupportedFileType is a validation error: errors.Is(err, ErrInvalidInput) holds for it.
	ErrUnsupportedFileType = fmt.Errorf("unsupported file type: %w", ErrInvalidInput)

	ErrUpstreamAuth            = errors.New("generation provider rejected credentials")
	ErrUpstreamQuota           = errors.New("generation provider quota exceeded")
	ErrUpstreamContentFiltered = errors.New("content filtered by safety settings")
	ErrUpstreamFailure         = errors.New("generation failed")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
