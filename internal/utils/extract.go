package utils

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrExtraction is returned (wrapped) when a document cannot be parsed.
var ErrExtraction = errors.New("document extraction failed")

// ErrUnsupportedFormat is returned for file kinds the extractor does not handle.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// SupportedExtensions lists the document kinds accepted as knowledge files.
var SupportedExtensions = []string{".pdf", ".docx"}

// IsSupportedDocument reports whether name has a supported extension.
func IsSupportedDocument(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// DocumentExtractor turns raw document bytes into sanitized plain text.
type DocumentExtractor struct {
	MaxChars int
}

func NewDocumentExtractor(maxChars int) *DocumentExtractor {
	return &DocumentExtractor{MaxChars: maxChars}
}

// Extract dispatches on the file extension of name.
func (e *DocumentExtractor) Extract(name string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return ExtractPDFText(data, e.MaxChars)
	case ".docx":
		return ExtractDOCXText(data, e.MaxChars)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// ExtractPDFText returns the plain text of a PDF document.
func ExtractPDFText(data []byte, maxChars int) (text string, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: pdf: %v", ErrExtraction, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: pdf: %v", ErrExtraction, err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: pdf text: %v", ErrExtraction, err)
	}
	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("%w: pdf read: %v", ErrExtraction, err)
	}
	return Sanitize(string(raw), maxChars), nil
}

// ExtractDOCXText returns the plain text of a word-processor (.docx) document.
// Paragraphs are separated by blank lines; tabs and explicit breaks are kept.
func ExtractDOCXText(data []byte, maxChars int) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: docx: %v", ErrExtraction, err)
	}

	var body *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return "", fmt.Errorf("%w: docx: word/document.xml missing", ErrExtraction)
	}

	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("%w: docx open: %v", ErrExtraction, err)
	}
	defer rc.Close()

	var sb strings.Builder
	decoder := xml.NewDecoder(rc)
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: docx xml: %v", ErrExtraction, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteString("\t")
			case "br", "cr":
				sb.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return Sanitize(sb.String(), maxChars), nil
}
