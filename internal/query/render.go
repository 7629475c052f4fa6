package query

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"m365roadmap/internal/roadmap"
)

// MaxDescriptionLength is the number of characters of a description shown
// per item before it is cut and marked with Ellipsis.
const MaxDescriptionLength = 200

const Ellipsis = "..."

func render(header string, items []roadmap.Item) string {
	var b strings.Builder
	b.WriteString(header)
	for i, item := range items {
		b.WriteString("\n\n")
		writeItem(&b, i+1, item)
	}
	return b.String()
}

func writeItem(b *strings.Builder, n int, item roadmap.Item) {
	fmt.Fprintf(b, "%d. %s\n", n, orUnknown(item.Title, "(untitled)"))
	fmt.Fprintf(b, "   Category: %s\n", item.Category)
	fmt.Fprintf(b, "   Published: %s\n", orUnknown(item.PublicationDate, "unknown"))
	fmt.Fprintf(b, "   Description: %s\n", orUnknown(truncateText(item.Description, MaxDescriptionLength), "No description available."))
	fmt.Fprintf(b, "   Link: %s", orUnknown(item.Link, "none"))
}

// truncateText cuts s to maxLen characters and appends Ellipsis when it was
// longer.
func truncateText(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + Ellipsis
}

func orUnknown(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
