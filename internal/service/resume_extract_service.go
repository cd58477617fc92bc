package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fadilmartias/cover-letter-generator/internal/common"
	"github.com/fadilmartias/cover-letter-generator/internal/logging"
	"github.com/fadilmartias/cover-letter-generator/internal/model"
	"github.com/fadilmartias/cover-letter-generator/internal/util"
)

const MaxResumeSize int64 = 5 * 1024 * 1024

// ResumeUpload describes a selected file. Open is only called once the size
// and type checks pass.
type ResumeUpload struct {
	FileName string
	MimeType string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// ResumeUploadFromBytes wraps in-memory content as an upload.
func ResumeUploadFromBytes(fileName, mimeType string, data []byte) ResumeUpload {
	return ResumeUpload{
		FileName: fileName,
		MimeType: mimeType,
		Size:     int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// ResumeUploadFromFile describes a file on disk. The file is only opened by
// Open, so oversized files are rejected without reading them.
func ResumeUploadFromFile(path string) (ResumeUpload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ResumeUpload{}, err
	}
	if info.IsDir() {
		return ResumeUpload{}, fmt.Errorf("%s is a directory", path)
	}
	return ResumeUpload{
		FileName: filepath.Base(path),
		Size:     info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

type ResumeExtractor interface {
	Extract(ctx context.Context, upload ResumeUpload) (*model.ResumeDocument, error)
}

type ResumeExtractService struct {
	openPDF func(data []byte) (util.PageTexter, error)
	now     func() time.Time
	log     logging.Logger
}

func NewResumeExtractService(log logging.Logger) *ResumeExtractService {
	return &ResumeExtractService{
		openPDF: util.OpenPDF,
		now:     time.Now,
		log:     log.With("component", "resume_extract"),
	}
}

// ResolveMimeType returns the effective type of an upload. Generic or missing
// declared types fall back to the file extension.
func ResolveMimeType(declared, fileName string) string {
	mediaType := ""
	if declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil {
			mediaType = strings.ToLower(mt)
		}
	}
	if mediaType != "" && mediaType != "application/octet-stream" {
		return mediaType
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return model.MimePDF
	case ".txt":
		return model.MimeText
	}
	return mediaType
}

// ValidateResumeUpload runs the pre-flight checks: size first, then type.
func ValidateResumeUpload(upload ResumeUpload) (string, error) {
	if upload.Size > MaxResumeSize {
		return "", fmt.Errorf("%w: %d bytes", common.ErrFileTooLarge, upload.Size)
	}
	mimeType := ResolveMimeType(upload.MimeType, upload.FileName)
	if mimeType != model.MimePDF && mimeType != model.MimeText {
		return "", fmt.Errorf("%w: %q", common.ErrInvalidFileType, mimeType)
	}
	return mimeType, nil
}

func (s *ResumeExtractService) Extract(ctx context.Context, upload ResumeUpload) (*model.ResumeDocument, error) {
	mimeType, err := ValidateResumeUpload(upload)
	if err != nil {
		return nil, err
	}

	rc, err := upload.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open upload: %w", common.ErrExtractionFailed, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxResumeSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %w", common.ErrExtractionFailed, err)
	}
	if int64(len(data)) > MaxResumeSize {
		return nil, fmt.Errorf("%w: content exceeds declared size", common.ErrFileTooLarge)
	}

	var text string
	switch mimeType {
	case model.MimeText:
		text = strings.ToValidUTF8(string(data), "")
	case model.MimePDF:
		text, err = s.extractPDF(data)
		if err != nil {
			s.log.Warn(ctx, "pdf extraction failed", "file", upload.FileName, "error", err)
			return nil, fmt.Errorf("%w: %w", common.ErrExtractionFailed, err)
		}
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: no extractable text", common.ErrExtractionFailed)
	}

	s.log.Info(ctx, "resume extracted", "file", upload.FileName, "type", mimeType, "chars", len(text))
	return &model.ResumeDocument{
		FileName:      upload.FileName,
		MimeType:      mimeType,
		RawBytes:      data,
		ExtractedText: text,
		SizeBytes:     int64(len(data)),
		UploadedAt:    s.now(),
	}, nil
}

func (s *ResumeExtractService) extractPDF(data []byte) (string, error) {
	doc, err := s.openPDF(data)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()
	return util.ExtractPDFText(doc)
}
