package usecase

import (
	"errors"
	"fmt"

	"github.com/fadilmartias/cover-letter-generator/internal/common"
)

// persistErr maps a store failure onto the error taxonomy. Missing records keep
// their own meaning.
func persistErr(op string, err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", common.ErrPersistenceFailed, op, err)
}
