package roadmap

import (
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
)

// DefaultCategory is used for entries that carry no category.
const DefaultCategory = "General"

// Item is one roadmap announcement.
type Item struct {
	Title       string
	Description string
	// Summary is the short-form text of the entry content, HTML stripped.
	Summary string
	Link    string
	// PublicationDate is the date exactly as the feed wrote it.
	PublicationDate string
	Category        string
	// PublishedAt is PublicationDate parsed and normalized to UTC. It is the
	// zero time when the feed date was missing or unparseable.
	PublishedAt time.Time
}

// HasPublishedAt reports whether the publication date could be parsed.
func (i Item) HasPublishedAt() bool {
	return !i.PublishedAt.IsZero()
}

// Snapshot is the full item list captured by one fetch.
type Snapshot struct {
	Items      []Item
	CapturedAt time.Time
}

var textPolicy = bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true)

// plainText removes markup and entities and collapses whitespace.
func plainText(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(textPolicy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

func itemFromFeed(entry *gofeed.Item) Item {
	summary := plainText(entry.Content)

	description := plainText(entry.Description)
	if description == "" {
		description = summary
	}

	category := DefaultCategory
	if cats := nonEmpty(entry.Categories); len(cats) > 0 {
		category = strings.Join(cats, ", ")
	}

	rawDate, parsed := entry.Published, entry.PublishedParsed
	if rawDate == "" {
		rawDate, parsed = entry.Updated, entry.UpdatedParsed
	}

	var publishedAt time.Time
	if parsed != nil {
		publishedAt = parsed.UTC()
	}

	return Item{
		Title:           strings.TrimSpace(entry.Title),
		Description:     description,
		Summary:         summary,
		Link:            strings.TrimSpace(entry.Link),
		PublicationDate: strings.TrimSpace(rawDate),
		Category:        category,
		PublishedAt:     publishedAt,
	}
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func itemsFromFeed(feed *gofeed.Feed) []Item {
	items := make([]Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry == nil {
			continue
		}
		items = append(items, itemFromFeed(entry))
	}
	return items
}
