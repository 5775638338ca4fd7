package store

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"sportmetrics.nl/chat-service/internal/metrics"
)

// DefaultKnowledgeTTL is how long a loaded document set is served unchanged.
const DefaultKnowledgeTTL = 10 * time.Minute

// KnowledgeStore serves the knowledge document set, reloading it from its
// sources when the cached copy is older than the TTL.
//
// The first source is the primary one. Documents from later sources are
// added only when their file name (case-insensitive) is not already present,
// and their errors are ignored.
type KnowledgeStore struct {
	sources []DocumentSource
	ttl     time.Duration
	now     func() time.Time

	mu     sync.RWMutex
	cache  *knowledgeCache
	gen    uint64 // bumped by Invalidate
	flight singleflight.Group
}

// KnowledgeOption configures a KnowledgeStore.
type KnowledgeOption func(*KnowledgeStore)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) KnowledgeOption {
	return func(s *KnowledgeStore) { s.now = now }
}

func NewKnowledgeStore(ttl time.Duration, sources []DocumentSource, opts ...KnowledgeOption) *KnowledgeStore {
	if ttl <= 0 {
		ttl = DefaultKnowledgeTTL
	}
	s := &KnowledgeStore{
		sources: sources,
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetDocuments returns the cached documents while fresh, otherwise reloads.
// A reload is shared by all concurrent callers and is not cancelled when
// one of them goes away. The returned slice must not be modified.
func (s *KnowledgeStore) GetDocuments(ctx context.Context) ([]KnowledgeDocument, error) {
	if docs, ok := s.fresh(); ok {
		return docs, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := s.flight.DoChan("knowledge", func() (interface{}, error) {
		// Another caller may have finished a reload while we waited.
		if docs, ok := s.fresh(); ok {
			return docs, nil
		}
		s.mu.RLock()
		gen := s.gen
		s.mu.RUnlock()

		docs, err := s.load(loadCtx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		// An invalidation during the load means docs may predate the change.
		if s.gen == gen {
			s.cache = &knowledgeCache{loadedAt: s.now(), documents: docs}
		}
		s.mu.Unlock()
		return docs, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]KnowledgeDocument), nil
	}
}

// Invalidate drops the cached set so the next read reloads.
func (s *KnowledgeStore) Invalidate() {
	s.mu.Lock()
	s.cache = nil
	s.gen++
	s.mu.Unlock()
}

func (s *KnowledgeStore) fresh() ([]KnowledgeDocument, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cache == nil {
		return nil, false
	}
	if s.now().Sub(s.cache.loadedAt) >= s.ttl {
		return nil, false
	}
	return s.cache.documents, true
}

func (s *KnowledgeStore) load(ctx context.Context) ([]KnowledgeDocument, error) {
	start := s.now()
	docs := []KnowledgeDocument{}
	seen := make(map[string]bool)

	for i, src := range s.sources {
		loaded, err := src.Load(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if i == 0 {
				log.Printf("Knowledge source %s failed: %v", src.Name(), err)
			}
			continue
		}
		for _, doc := range loaded {
			key := strings.ToLower(doc.FileName)
			if seen[key] {
				continue
			}
			seen[key] = true
			docs = append(docs, doc)
		}
	}

	metrics.KnowledgeReloads.Inc()
	metrics.KnowledgeDocuments.Set(float64(len(docs)))
	log.Printf("Loaded %d knowledge documents in %s", len(docs), s.now().Sub(start).Round(time.Millisecond))
	return docs, nil
}
