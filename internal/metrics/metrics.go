// Package metrics holds the Prometheus collectors of the chat service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_requests_total",
		Help: "Chat requests by response status code",
	}, []string{"status"})

	ContinuationPasses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_continuation_passes_total",
		Help: "Continuation generation calls issued for incomplete answers",
	})

	KnowledgeReloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "knowledge_reloads_total",
		Help: "Full reloads of the knowledge document set",
	})

	KnowledgeDocuments = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "knowledge_documents",
		Help: "Documents in the current knowledge set",
	})

	KnowledgeFilesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "knowledge_files_skipped_total",
		Help: "Knowledge files skipped because they could not be read or yielded no text",
	})
)
