package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv/v2"
)

// ErrNoText is returned when a document converts to nothing but whitespace.
var ErrNoText = errors.New("no readable text found in document")

// documentTypes maps the file extensions converted through docconv to their
// MIME types.
var documentTypes = map[string]string{
	".pdf":   "application/pdf",
	".doc":   "application/msword",
	".docx":  "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".odt":   "application/vnd.oasis.opendocument.text",
	".rtf":   "application/rtf",
	".pages": "application/vnd.apple.pages",
}

// IsDocument reports whether name has an extension handled by
// TextFromDocumentFile.
func IsDocument(name string) bool {
	return DocumentType(name) != ""
}

// DocumentType returns the MIME type for a document file name, or "" when
// the extension is not a supported document format.
func DocumentType(name string) string {
	return documentTypes[strings.ToLower(filepath.Ext(name))]
}

// IsDocumentType reports whether the MIME type (parameters allowed) is one
// TextFromDocument can convert.
func IsDocumentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	for _, t := range documentTypes {
		if t == mediaType {
			return true
		}
	}

	return false
}

// TextFromDocumentFile converts a PDF or office document on disk to plain
// text. PDF conversion needs the poppler tools on PATH.
func TextFromDocumentFile(path string) (string, error) {
	response, err := docconv.ConvertPath(path)
	if err != nil {
		return "", fmt.Errorf("failed to convert document '%s': %w", path, err)
	}

	if strings.TrimSpace(response.Body) == "" {
		return "", fmt.Errorf("%w: %s", ErrNoText, path)
	}

	return response.Body, nil
}

// TextFromDocument converts an in-memory document such as an email
// attachment.
func TextFromDocument(content []byte, contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("invalid content type %q: %w", contentType, err)
	}

	response, err := docconv.Convert(bytes.NewReader(content), mediaType, false)
	if err != nil {
		return "", fmt.Errorf("failed to convert %s document: %w", mediaType, err)
	}

	if strings.TrimSpace(response.Body) == "" {
		return "", ErrNoText
	}

	return response.Body, nil
}
