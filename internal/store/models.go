package store

import "time"

// KnowledgeDocument is one extracted knowledge file. Documents are built
// during a load cycle and never modified afterwards.
type KnowledgeDocument struct {
	FileName   string `json:"file_name"`
	Text       string `json:"-"`
	IsReader   bool   `json:"is_reader"`
	IsGasGuide bool   `json:"is_gas_guide"`
}

// knowledgeCache holds the last successful load. It is replaced wholesale
// on reload, never merged.
type knowledgeCache struct {
	loadedAt  time.Time
	documents []KnowledgeDocument
}
