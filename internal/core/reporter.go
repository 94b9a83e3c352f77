// ABOUTME: Reporter projects the metadata file into dashboard stats and per-source summaries
// ABOUTME: Reads the file on every call so results track the latest ingestion
package core

import (
	"errors"

	"github.com/charmbracelet/log"

	"github.com/harper/medrag/internal/logging"
	"github.com/harper/medrag/internal/models"
	"github.com/harper/medrag/internal/storage"
)

const (
	DefaultSummaryLength = 240
	DefaultRecentSources = 5
)

// Reporter answers read-only dashboard queries
type Reporter struct {
	metadata      *storage.MetadataStore
	counter       *QueryCounter
	summaryLength int
	recent        int
	logger        *log.Logger
}

// NewReporter creates a Reporter. Non-positive lengths use the defaults.
func NewReporter(metadata *storage.MetadataStore, counter *QueryCounter, summaryLength, recent int, logger *log.Logger) *Reporter {
	if summaryLength <= 0 {
		summaryLength = DefaultSummaryLength
	}
	if recent <= 0 {
		recent = DefaultRecentSources
	}
	return &Reporter{
		metadata:      metadata,
		counter:       counter,
		summaryLength: summaryLength,
		recent:        recent,
		logger:        logging.Component(logger, "reporter"),
	}
}

// Stats returns document and chunk totals, today's query count, and the
// most recently added sources
func (r *Reporter) Stats() models.Stats {
	stats := models.Stats{
		QueriesToday: r.counter.Today(),
		Recent:       []string{},
	}

	records := r.load()
	groups := groupBySource(records)

	stats.Chunks = len(records)
	stats.Docs = len(groups)

	start := len(groups) - r.recent
	if start < 0 {
		start = 0
	}
	for _, g := range groups[start:] {
		stats.Recent = append(stats.Recent, g.name)
	}
	return stats
}

// Sources returns one summary per source in the order sources first appear
func (r *Reporter) Sources() []models.SourceSummary {
	groups := groupBySource(r.load())

	out := make([]models.SourceSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.SourceSummary{
			Name:    g.name,
			Summary: Summarize(g.first.Text, r.summaryLength),
			Chunks:  g.count,
		})
	}
	return out
}

func (r *Reporter) load() []models.Chunk {
	records, err := r.metadata.Load()
	if errors.Is(err, storage.ErrNoMetadata) {
		return nil
	}
	if err != nil {
		r.logger.Error("failed to read metadata", "err", err)
		return nil
	}
	return records
}

type sourceGroup struct {
	name  string
	first models.Chunk
	count int
}

func groupBySource(records []models.Chunk) []*sourceGroup {
	var groups []*sourceGroup
	byName := make(map[string]*sourceGroup)
	for _, rec := range records {
		name := rec.SourceName()
		g, ok := byName[name]
		if !ok {
			g = &sourceGroup{name: name, first: rec}
			byName[name] = g
			groups = append(groups, g)
		}
		g.count++
	}
	return groups
}

// Summarize cuts text to n runes and appends an ellipsis
func Summarize(text string, n int) string {
	runes := []rune(text)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes) + "..."
}
