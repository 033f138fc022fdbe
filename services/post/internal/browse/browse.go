// Package browse implements search, tag filtering and "load more"
// pagination over an already-fetched post collection.
package browse

import (
	"fmt"
	"strings"

	"finsight/services/post/internal/entity"
)

// PageSize is how many posts each "load more" step reveals.
const PageSize = 6

// Filter returns the posts matching both the free-text query and the tag,
// in their original order. Empty query or tag matches everything.
func Filter(posts []*entity.Post, query, tag string) []*entity.Post {
	q := strings.ToLower(query)
	out := make([]*entity.Post, 0, len(posts))
	for _, p := range posts {
		if q != "" && !matchesQuery(p, q) {
			continue
		}
		if tag != "" && !p.HasTag(tag) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// q must already be lowercased.
func matchesQuery(p *entity.Post, q string) bool {
	if strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Excerpt), q) {
		return true
	}
	for _, t := range p.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// DistinctTags is the union of all tags in first-occurrence order.
func DistinctTags(posts []*entity.Post) []string {
	seen := make(map[string]struct{})
	tags := make([]string, 0)
	for _, p := range posts {
		for _, t := range p.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	return tags
}

type Stats struct {
	TotalPosts     int    `json:"total_posts"`
	TotalViews     int    `json:"total_views"`
	TotalViewsText string `json:"total_views_text"`
	AvgReadingTime int    `json:"avg_reading_time"`
}

// Summarize computes the headline numbers shown above the listing.
// AvgReadingTime is the ceiling of the mean, 0 for an empty collection.
func Summarize(posts []*entity.Post) Stats {
	stats := Stats{TotalPosts: len(posts)}
	readingSum := 0
	for _, p := range posts {
		stats.TotalViews += p.Views
		readingSum += p.ReadingTime
	}
	if len(posts) > 0 {
		stats.AvgReadingTime = (readingSum + len(posts) - 1) / len(posts)
	}
	stats.TotalViewsText = FormatCount(stats.TotalViews)
	return stats
}

// Featured returns the first n posts of the collection.
func Featured(posts []*entity.Post, n int) []*entity.Post {
	if n < 0 {
		n = 0
	}
	if n > len(posts) {
		n = len(posts)
	}
	return posts[:n]
}

// FormatCount abbreviates counts of a thousand or more, e.g. 1234 -> "1.2K".
func FormatCount(n int) string {
	if n >= 1000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%d", n)
}
