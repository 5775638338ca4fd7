package store

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"sportmetrics.nl/chat-service/internal/metrics"
	"sportmetrics.nl/chat-service/internal/utils"
)

// gasGuideKeywords mark knowledge files about breath-gas analysis and
// threshold determination.
var gasGuideKeywords = []string{
	"ademgas",
	"gasanalyse",
	"gaswissel",
	"spiroergo",
	"drempel",
	"threshold",
	"ventilat",
	"vt1",
	"vt2",
}

// TextExtractor converts a named document buffer into plain text.
type TextExtractor interface {
	Extract(name string, data []byte) (string, error)
}

// DocumentSource yields knowledge documents for one load cycle.
type DocumentSource interface {
	Name() string
	Load(ctx context.Context) ([]KnowledgeDocument, error)
}

// IsReaderFile reports whether the file name marks a reader, the highest
// priority source.
func IsReaderFile(name string) bool {
	return strings.Contains(strings.ToLower(name), "reader")
}

// IsGasGuideFile reports whether the file name matches a gas-guide keyword.
func IsGasGuideFile(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range gasGuideKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func newDocument(name, text string) KnowledgeDocument {
	return KnowledgeDocument{
		FileName:   name,
		Text:       text,
		IsReader:   IsReaderFile(name),
		IsGasGuide: IsGasGuideFile(name),
	}
}

// OrderKnowledgeFiles sorts names with readers first and the rest in Dutch
// alphabetical order.
func OrderKnowledgeFiles(names []string) {
	c := collate.New(language.Dutch, collate.IgnoreCase)
	sort.SliceStable(names, func(i, j int) bool {
		ri, rj := IsReaderFile(names[i]), IsReaderFile(names[j])
		if ri != rj {
			return ri
		}
		return c.CompareString(names[i], names[j]) < 0
	})
}

// DirectorySource loads every supported document in one directory of fsys.
type DirectorySource struct {
	fsys      fs.FS
	dir       string
	extractor TextExtractor
	maxChars  int
}

func NewDirectorySource(fsys fs.FS, dir string, extractor TextExtractor, maxChars int) *DirectorySource {
	if dir == "" {
		dir = "."
	}
	return &DirectorySource{fsys: fsys, dir: dir, extractor: extractor, maxChars: maxChars}
}

func (s *DirectorySource) Name() string { return "directory:" + s.dir }

// Load never fails on a missing directory or a bad file; those yield fewer
// documents.
func (s *DirectorySource) Load(ctx context.Context) ([]KnowledgeDocument, error) {
	entries, err := fs.ReadDir(s.fsys, s.dir)
	if err != nil {
		log.Printf("Knowledge directory %q not readable, treating as empty: %v", s.dir, err)
		return nil, nil
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !utils.IsSupportedDocument(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	OrderKnowledgeFiles(names)

	docs := make([]KnowledgeDocument, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := readDocument(s.fsys, path.Join(s.dir, name), s.extractor, s.maxChars)
		if err != nil {
			log.Printf("Skipping knowledge file %s: %v", name, err)
			metrics.KnowledgeFilesSkipped.Inc()
			continue
		}
		if text == "" {
			log.Printf("Skipping knowledge file %s: no text extracted", name)
			metrics.KnowledgeFilesSkipped.Inc()
			continue
		}
		docs = append(docs, newDocument(name, text))
	}
	return docs, nil
}

// FileSource loads a single fixed document. It is optional: callers ignore
// its errors.
type FileSource struct {
	fsys      fs.FS
	file      string
	extractor TextExtractor
	maxChars  int
}

func NewFileSource(fsys fs.FS, file string, extractor TextExtractor, maxChars int) *FileSource {
	return &FileSource{fsys: fsys, file: file, extractor: extractor, maxChars: maxChars}
}

func (s *FileSource) Name() string { return "file:" + s.file }

func (s *FileSource) Load(ctx context.Context) ([]KnowledgeDocument, error) {
	text, err := readDocument(s.fsys, s.file, s.extractor, s.maxChars)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("no text extracted from %s", s.file)
	}
	return []KnowledgeDocument{newDocument(path.Base(s.file), text)}, nil
}

func readDocument(fsys fs.FS, name string, extractor TextExtractor, maxChars int) (string, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	text, err := extractor.Extract(name, data)
	if err != nil {
		return "", fmt.Errorf("failed to extract %s: %w", name, err)
	}
	return utils.Sanitize(text, maxChars), nil
}
