package browse

import "finsight/services/post/internal/entity"

type State string

const (
	StateLoading State = "loading"
	StateEmpty   State = "empty"
	StateResults State = "results"
)

// Browser holds the listing view state: the full collection, the active
// query and tag, and how many matching posts are currently revealed.
type Browser struct {
	all          []*entity.Post
	loaded       bool
	query        string
	activeTag    string
	matching     []*entity.Post
	visibleCount int
}

func NewBrowser() *Browser {
	return &Browser{visibleCount: PageSize}
}

// Load installs the fetched collection and re-applies the current filters.
func (b *Browser) Load(all []*entity.Post) {
	b.all = all
	b.loaded = true
	b.Apply(b.query, b.activeTag)
}

// Apply re-filters and discards pagination progress.
func (b *Browser) Apply(query, tag string) {
	b.query = query
	b.activeTag = tag
	b.matching = Filter(b.all, query, tag)
	b.visibleCount = PageSize
}

func (b *Browser) SetQuery(query string) {
	b.Apply(query, b.activeTag)
}

func (b *Browser) SetTag(tag string) {
	b.Apply(b.query, tag)
}

func (b *Browser) ClearFilters() {
	b.Apply("", "")
}

func (b *Browser) LoadMore() {
	b.visibleCount += PageSize
}

func (b *Browser) Query() string     { return b.query }
func (b *Browser) ActiveTag() string { return b.activeTag }
func (b *Browser) VisibleCount() int { return b.visibleCount }

func (b *Browser) Matching() []*entity.Post {
	return b.matching
}

// Visible is the prefix of the matching posts the caller may render.
func (b *Browser) Visible() []*entity.Post {
	n := b.visibleCount
	if n > len(b.matching) {
		n = len(b.matching)
	}
	return b.matching[:n]
}

func (b *Browser) HasMore() bool {
	return b.visibleCount < len(b.matching)
}

func (b *Browser) Tags() []string {
	return DistinctTags(b.all)
}

func (b *Browser) Stats() Stats {
	return Summarize(b.all)
}

func (b *Browser) State() State {
	switch {
	case !b.loaded:
		return StateLoading
	case len(b.matching) == 0:
		return StateEmpty
	default:
		return StateResults
	}
}
