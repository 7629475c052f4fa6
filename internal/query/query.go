// Package query answers roadmap questions over the cached feed.
//
// Every operation runs the same pipeline: take the current snapshot, keep the
// items a predicate accepts, cut the result to a limit while preserving feed
// order, and render it as numbered plain text. An empty selection renders as
// a single sentence naming the parameter that matched nothing.
package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"m365roadmap/internal/logging"
	"m365roadmap/internal/roadmap"
	"m365roadmap/internal/validation"
)

const (
	DefaultListLimit     = 50
	DefaultSearchLimit   = 20
	DefaultCategoryLimit = 20
	DefaultRecentLimit   = 20
	DefaultRecentDays    = 30
)

// SnapshotSource provides the current feed snapshot.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*roadmap.Snapshot, error)
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now for the recency cutoff.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger injects a logger instead of the package default.
func WithLogger(logger *logging.AppLogger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Service runs the roadmap query operations.
type Service struct {
	source SnapshotSource
	now    func() time.Time
	logger *logging.AppLogger
}

// NewService creates a Service reading from source.
func NewService(source SnapshotSource, opts ...Option) *Service {
	s := &Service{
		source: source,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.GetDefault()
	}
	return s
}

// selection describes one run of the pipeline.
type selection struct {
	name   string
	match  func(roadmap.Item) bool
	limit  int
	header func(total, shown int) string
	empty  string
}

// List returns every item in feed order, up to limit.
func (s *Service) List(ctx context.Context, limit int) (string, error) {
	return s.run(ctx, selection{
		name:  "list",
		match: func(roadmap.Item) bool { return true },
		limit: limit,
		header: func(total, shown int) string {
			return fmt.Sprintf("Microsoft 365 Roadmap: showing %d of %d items", shown, total)
		},
		empty: "No roadmap items are currently available in the feed.",
	})
}

// Search returns items whose title, description or summary contains query,
// ignoring case.
func (s *Service) Search(ctx context.Context, query string, limit int) (string, error) {
	query, err := validation.RequireNonEmpty("query", query)
	if err != nil {
		return "", err
	}
	needle := strings.ToLower(query)

	return s.run(ctx, selection{
		name: "search",
		match: func(item roadmap.Item) bool {
			return containsFold(item.Title, needle) ||
				containsFold(item.Description, needle) ||
				containsFold(item.Summary, needle)
		},
		limit: limit,
		header: func(total, shown int) string {
			return fmt.Sprintf("Found %d roadmap items matching %q (showing %d):", total, query, shown)
		},
		empty: fmt.Sprintf("No roadmap items found matching %q.", query),
	})
}

// ByCategory returns items whose category or title contains category,
// ignoring case.
func (s *Service) ByCategory(ctx context.Context, category string, limit int) (string, error) {
	category, err := validation.RequireNonEmpty("category", category)
	if err != nil {
		return "", err
	}
	needle := strings.ToLower(category)

	return s.run(ctx, selection{
		name: "category",
		match: func(item roadmap.Item) bool {
			return containsFold(item.Category, needle) || containsFold(item.Title, needle)
		},
		limit: limit,
		header: func(total, shown int) string {
			return fmt.Sprintf("Found %d roadmap items in category %q (showing %d):", total, category, shown)
		},
		empty: fmt.Sprintf("No roadmap items found for category %q.", category),
	})
}

// Recent returns items published within the last days days. The cutoff is
// inclusive; items without a parseable date never match.
func (s *Service) Recent(ctx context.Context, days, limit int) (string, error) {
	if err := validation.RequireNonNegative("days", days); err != nil {
		return "", err
	}
	cutoff := s.now().UTC().AddDate(0, 0, -days)

	return s.run(ctx, selection{
		name: "recent",
		match: func(item roadmap.Item) bool {
			return item.HasPublishedAt() && !item.PublishedAt.Before(cutoff)
		},
		limit: limit,
		header: func(total, shown int) string {
			return fmt.Sprintf("Found %d roadmap items published in the last %d days (showing %d):", total, days, shown)
		},
		empty: fmt.Sprintf("No roadmap items found published in the last %d days.", days),
	})
}

func (s *Service) run(ctx context.Context, sel selection) (string, error) {
	start := time.Now()
	defer s.logger.LogPerformance("query_"+sel.name, start)

	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		return "", err
	}

	matched := filter(snap.Items, sel.match)
	s.logger.Debug("Query selection complete",
		"operation", sel.name,
		"matched", len(matched),
		"total", len(snap.Items),
		"limit", sel.limit,
	)
	if len(matched) == 0 {
		return sel.empty, nil
	}

	shown := truncate(matched, sel.limit)
	return render(sel.header(len(matched), len(shown)), shown), nil
}

// filter keeps the elements accepted by keep, in order.
func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// truncate returns at most limit elements; a non-positive limit yields none.
func truncate[T any](items []T, limit int) []T {
	if limit <= 0 {
		return items[:0]
	}
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

func containsFold(haystack, lowerNeedle string) bool {
	return haystack != "" && strings.Contains(strings.ToLower(haystack), lowerNeedle)
}
