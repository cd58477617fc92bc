package common

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var (
	// acquisition
	ErrFetchFailed      = errors.New("failed to fetch job posting")
	ErrInvalidFileType  = errors.New("invalid file type, only PDF or TXT files are allowed")
	ErrFileTooLarge     = errors.New("file is too large (max 5MB)")
	ErrExtractionFailed = errors.New("failed to extract text from file")

	// generation
	ErrGenerationFailed = errors.New("failed to generate text")

	// persistence
	ErrPersistenceFailed = errors.New("failed to persist record")
	ErrNotFound          = errors.New("not found")
	ErrInvalidStatus     = errors.New("invalid application status")

	// session
	ErrAuthRequired = errors.New("authentication required")
	ErrInvalidToken = errors.New("invalid token")

	// workflow
	ErrStageOrder = errors.New("action not allowed at the current stage")
	ErrNotReady   = errors.New("required input is missing")
	ErrBusy       = errors.New("another action is still in progress")
	ErrCapacity   = errors.New("too many open sessions, try again later")
)

var taxonomy = []error{
	ErrFetchFailed, ErrInvalidFileType, ErrFileTooLarge, ErrExtractionFailed,
	ErrGenerationFailed,
	ErrNotFound, ErrInvalidStatus, ErrPersistenceFailed,
	ErrAuthRequired, ErrInvalidToken,
	ErrStageOrder, ErrNotReady, ErrBusy, ErrCapacity,
}

// Kind returns the taxonomy error err wraps, or nil. Errors joined with
// several %w verbs are searched too.
func Kind(err error) error {
	for _, sentinel := range taxonomy {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return nil
}

// HTTPStatus maps an error of the taxonomy above to the status code the API answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, ErrAuthRequired), errors.Is(err, ErrInvalidToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrFileTooLarge):
		return fiber.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidFileType):
		return fiber.StatusUnsupportedMediaType
	case errors.Is(err, ErrExtractionFailed):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, ErrFetchFailed), errors.Is(err, ErrGenerationFailed):
		return fiber.StatusBadGateway
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrNotReady):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrStageOrder), errors.Is(err, ErrBusy):
		return fiber.StatusConflict
	case errors.Is(err, ErrCapacity):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
