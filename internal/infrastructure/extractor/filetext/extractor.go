package filetext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/cto-coach/internal/core/domain"
	"github.com/kirillkom/cto-coach/internal/core/ports"
)

const (
	MimePlainText = "text/plain"
	MimeMarkdown  = "text/markdown"
	MimePDF       = "application/pdf"
)

// Extractor reads stored files back and turns them into plain text by MIME type.
type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func Supported(mimeType string) bool {
	switch mimeType {
	case MimePlainText, MimeMarkdown, MimePDF:
		return true
	default:
		return false
	}
}

func (e *Extractor) Extract(ctx context.Context, key, mimeType string) (string, error) {
	if !Supported(mimeType) {
		return "", domain.WrapError(domain.ErrUnsupportedFileType, "extract text", fmt.Errorf("mime type %q", mimeType))
	}

	raw, err := e.read(ctx, key)
	if err != nil {
		return "", err
	}

	switch mimeType {
	case MimePDF:
		return extractPDF(raw)
	default:
		if !utf8.Valid(raw) {
			return "", domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("text file is not valid UTF-8"))
		}
		return string(raw), nil
	}
}

func (e *Extractor) read(ctx context.Context, key string) ([]byte, error) {
	reader, err := e.storage.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read source document: %w", err)
	}
	return raw, nil
}

// extractPDF returns the text layer only; scanned pages yield no text.
func extractPDF(raw []byte) (text string, err error) {
	if len(raw) == 0 {
		return "", nil
	}
	// the pdf parser panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = domain.WrapError(domain.ErrInvalidInput, "extract pdf text", fmt.Errorf("malformed pdf: %v", r))
		}
	}()
	pdfReader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract pdf text", err)
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract pdf text", err)
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
