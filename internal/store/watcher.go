package store

import (
	"context"
	"log"

	"github.com/fsnotify/fsnotify"
	"sportmetrics.nl/chat-service/internal/utils"
)

// Invalidator is satisfied by KnowledgeStore.
type Invalidator interface {
	Invalidate()
}

// KnowledgeWatcher invalidates the knowledge cache whenever a supported
// document in the watched directory changes.
type KnowledgeWatcher struct {
	watcher *fsnotify.Watcher
	target  Invalidator
}

func NewKnowledgeWatcher(target Invalidator) (*KnowledgeWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &KnowledgeWatcher{watcher: w, target: target}, nil
}

// Watch starts watching dir until ctx is done or Stop is called. The
// returned channel receives the path of every change that triggered an
// invalidation and is closed when watching ends.
func (w *KnowledgeWatcher) Watch(ctx context.Context, dir string) (<-chan string, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, err
	}

	changes := make(chan string, 16)
	go func() {
		defer close(changes)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !utils.IsSupportedDocument(event.Name) || !relevantOp(event.Op) {
					continue
				}
				w.target.Invalidate()
				select {
				case changes <- event.Name:
				default:
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Printf("Knowledge watcher error: %v", err)
			}
		}
	}()
	return changes, nil
}

// Stop releases the underlying watcher.
func (w *KnowledgeWatcher) Stop() error {
	return w.watcher.Close()
}

func relevantOp(op fsnotify.Op) bool {
	return op.Has(fsnotify.Create) || op.Has(fsnotify.Write) ||
		op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename)
}
