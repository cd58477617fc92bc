package handler

import (
	"io"
	"mime/multipart"

	"github.com/fadilmartias/cover-letter-generator/internal/service"
	"github.com/fadilmartias/cover-letter-generator/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const resumeField = "resume"

// BodyLimit leaves room above the résumé cap for multipart overhead, so an
// oversized file reaches the size check instead of being cut off.
const BodyLimit = 8 * 1024 * 1024

// resumeUpload turns the multipart "resume" field into an upload. The file is
// opened lazily so size and type are checked first.
func resumeUpload(c *fiber.Ctx) (service.ResumeUpload, error) {
	file, err := c.FormFile(resumeField)
	if err != nil {
		return service.ResumeUpload{}, util.NewFormError("resume file is required", map[string]string{
			resumeField: "required",
		})
	}
	return fileUpload(file), nil
}

func fileUpload(file *multipart.FileHeader) service.ResumeUpload {
	return service.ResumeUpload{
		FileName: file.Filename,
		MimeType: file.Header.Get(fiber.HeaderContentType),
		Size:     file.Size,
		Open: func() (io.ReadCloser, error) {
			return file.Open()
		},
	}
}

func paramID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, util.NewFormError("invalid id", map[string]string{"id": "must be a uuid"})
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return util.NewFormError("invalid request body", map[string]string{"body": err.Error()})
	}
	return nil
}
