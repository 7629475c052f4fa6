// Package roadmap fetches the Microsoft 365 public roadmap feed and keeps the
// most recent parsed copy in memory.
//
// # Fetching
//
// HTTPFetcher performs a single GET against the configured feed URL and hands
// the body to gofeed (github.com/mmcdole/gofeed), which understands RSS and
// Atom. Feed entries are converted into Item values with the defaulting rules
// applied once, at conversion time:
//   - Category joins the entry's categories with ", " and is "General" when
//     the entry has none
//   - Description falls back to Summary, then to the empty string
//   - PublishedAt is the zero time when the entry's date cannot be parsed
//
// # Caching
//
// Cache holds at most one Snapshot. A snapshot younger than TTL is served
// without touching the network; an older one triggers a refetch. The slot is
// only overwritten after a successful fetch, so a failing upstream never
// replaces good data with nothing, and never hides its failure behind stale
// data either.
//
// Concurrent misses are not coalesced: each caller fetches on its own and the
// last successful writer wins. Snapshots are immutable once stored, so this
// costs at most a redundant request.
package roadmap
