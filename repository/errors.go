package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Outcomes callers branch on with errors.Is. Storage-specific errors are
// kept in the chain alongside them.
var (
	ErrNotFound      = errors.New("record not found")
	ErrConflict      = errors.New("record conflicts with an existing one")
	ErrSetupComplete = errors.New("setup already completed")
)

// translate maps GORM's vendor-neutral errors onto the repository outcomes.
// TranslateError must be enabled on the *gorm.DB for duplicate keys to surface.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
