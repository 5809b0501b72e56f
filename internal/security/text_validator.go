// Package security rejects binary content before it is treated as a word
// list or mapping.
package security

import (
	"bytes"
	"errors"
	"fmt"
)

// DefaultHeaderSize is how much of the decoded text is inspected.
const DefaultHeaderSize = 64 * 1024

// ErrBinaryContent is returned for content that is not text.
var ErrBinaryContent = errors.New("content appears to be binary")

// binaryRatio is the share of control bytes above which text counts as binary.
const binaryRatio = 0.3

// Known file signatures (magic bytes) of formats that are never word lists.
var signatures = []struct {
	kind  string
	magic []byte
}{
	{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	{"jpeg", []byte{0xFF, 0xD8, 0xFF}},
	{"gif", []byte{0x47, 0x49, 0x46, 0x38}},
	{"pdf", []byte{0x25, 0x50, 0x44, 0x46, 0x2D}},
	{"zip", []byte{0x50, 0x4B, 0x03, 0x04}},
	{"gzip", []byte{0x1F, 0x8B}},
	{"executable", []byte{0x4D, 0x5A}},
	{"elf", []byte{0x7F, 0x45, 0x4C, 0x46}},
}

// TextValidator checks fetched bytes before they are parsed.
type TextValidator struct {
	HeaderSize int // bytes of decoded text inspected, DefaultHeaderSize when zero
}

// NewTextValidator returns a validator with the default header size.
func NewTextValidator() *TextValidator {
	return &TextValidator{HeaderSize: DefaultHeaderSize}
}

// Validate checks the raw bytes for a known binary signature and the decoded
// text for a high share of control characters. Empty input is valid.
func (v *TextValidator) Validate(raw, decoded []byte) error {
	if kind := signature(raw); kind != "" {
		return fmt.Errorf("%w (%s signature)", ErrBinaryContent, kind)
	}

	size := v.HeaderSize
	if size <= 0 {
		size = DefaultHeaderSize
	}
	if len(decoded) > size {
		decoded = decoded[:size]
	}
	if isBinaryData(decoded) {
		return ErrBinaryContent
	}
	return nil
}

func signature(raw []byte) string {
	for _, s := range signatures {
		if bytes.HasPrefix(raw, s.magic) {
			return s.kind
		}
	}
	return ""
}

// isBinaryData counts control characters other than tab, LF and CR.
func isBinaryData(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	nonPrintable := 0
	for _, b := range data {
		if b < 9 || (b > 13 && b < 32) || b == 127 {
			nonPrintable++
		}
	}

	ratio := float64(nonPrintable) / float64(len(data))
	return ratio > binaryRatio
}
