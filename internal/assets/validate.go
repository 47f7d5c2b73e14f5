package assets

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// MinSize is the smallest payload accepted as a document: a bare "%PDF-1.x" header.
const MinSize = 8

const sniffLen = 15

var pdfMagic = []byte("%PDF")

// Reason classifies a rejected download.
type Reason string

const (
	ReasonTooSmall            Reason = "too_small"
	ReasonBadHeader           Reason = "bad_header"
	ReasonLooksLikeHTML       Reason = "looks_like_html"
	ReasonContentTypeMismatch Reason = "content_type_mismatch"
)

// ErrValidationFailed matches every ValidationError.
var ErrValidationFailed = errors.New("asset validation failed")

// ValidationError means a download completed but is not a document. The
// cache is left untouched.
type ValidationError struct {
	Reason      Reason
	Size        int
	ContentType string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("asset validation failed: %s (size=%d, content-type=%q)", e.Reason, e.Size, e.ContentType)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// Validate accepts payloads that start with the PDF magic, or that declare a
// PDF content type and are not an HTML page. HTML is rejected even with a
// PDF content type: servers answer captchas and errors with 200.
func Validate(data []byte, contentType string) error {
	if len(data) < MinSize {
		return &ValidationError{Reason: ReasonTooSmall, Size: len(data), ContentType: contentType}
	}
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	upper := bytes.ToUpper(head)
	if bytes.Contains(upper, []byte("<!DOCTYPE")) || bytes.Contains(upper, []byte("<HTML")) {
		return &ValidationError{Reason: ReasonLooksLikeHTML, Size: len(data), ContentType: contentType}
	}
	if bytes.HasPrefix(data, pdfMagic) {
		return nil
	}
	if contentType == "" {
		return &ValidationError{Reason: ReasonBadHeader, Size: len(data)}
	}
	if !strings.Contains(strings.ToLower(contentType), "pdf") {
		return &ValidationError{Reason: ReasonContentTypeMismatch, Size: len(data), ContentType: contentType}
	}
	return nil
}

// ReasonOf extracts the rejection reason, or "" for other errors.
func ReasonOf(err error) Reason {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return ""
}
