package browse

import (
	"fmt"
	"testing"

	"finsight/services/post/internal/entity"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func slugs(posts []*entity.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Slug
	}
	return out
}

func fixture() []*entity.Post {
	return []*entity.Post{
		{Slug: "tax-101", Title: "Tax strategies 101", Excerpt: "Basics of filing", Tags: []string{"tax", "basics"}, Views: 10, ReadingTime: 3},
		{Slug: "payroll", Title: "Running payroll", Excerpt: "Small business payroll", Tags: []string{"payroll", "smb"}, Views: 5, ReadingTime: 4},
		{Slug: "audit-prep", Title: "Audit preparation", Excerpt: "Avoid TAXING surprises", Tags: []string{"audit"}, Views: 0, ReadingTime: 2},
		{Slug: "vat", Title: "VAT in the EU", Excerpt: "Cross-border sales", Tags: []string{"Taxation", "eu"}, Views: 1, ReadingTime: 6},
	}
}

func TestFilter_EmptyReturnsAllInOrder(t *testing.T) {
	posts := fixture()
	got := Filter(posts, "", "")

	if diff := cmp.Diff(slugs(posts), slugs(got)); diff != "" {
		t.Errorf("Filter mismatch (-want +got):\n%s", diff)
	}
}

func TestFilter_CaseInsensitiveQuery(t *testing.T) {
	got := Filter(fixture(), "TAX", "")

	want := []string{"tax-101", "audit-prep", "vat"}
	if diff := cmp.Diff(want, slugs(got)); diff != "" {
		t.Errorf("Filter mismatch (-want +got):\n%s", diff)
	}
}

func TestFilter_MatchesTitleExcerptOrTag(t *testing.T) {
	assert.Equal(t, []string{"payroll"}, slugs(Filter(fixture(), "running", "")))
	assert.Equal(t, []string{"vat"}, slugs(Filter(fixture(), "cross-border", "")))
	assert.Equal(t, []string{"payroll"}, slugs(Filter(fixture(), "smb", "")))
	assert.Empty(t, Filter(fixture(), "crypto", ""))
}

func TestFilter_TagIsExactMembership(t *testing.T) {
	assert.Equal(t, []string{"tax-101"}, slugs(Filter(fixture(), "", "tax")))
	assert.Empty(t, Filter(fixture(), "", "Tax"))
}

func TestFilter_QueryAndTagAreCombined(t *testing.T) {
	assert.Equal(t, []string{"tax-101"}, slugs(Filter(fixture(), "tax", "basics")))
	assert.Empty(t, Filter(fixture(), "payroll", "tax"))
}

func TestFilter_Idempotent(t *testing.T) {
	posts := fixture()
	for _, q := range []string{"", "tax", "PAY", "zzz"} {
		for _, tag := range []string{"", "tax", "audit"} {
			once := Filter(posts, q, tag)
			twice := Filter(once, q, tag)
			assert.Equal(t, slugs(once), slugs(twice), "query=%q tag=%q", q, tag)
			assert.Equal(t, slugs(once), slugs(Filter(posts, q, tag)))
		}
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	posts := fixture()
	before := slugs(posts)
	_ = Filter(posts, "tax", "")
	assert.Equal(t, before, slugs(posts))
}

func TestDistinctTags(t *testing.T) {
	posts := append(fixture(), &entity.Post{Slug: "dup", Tags: []string{"eu", "tax", "new"}})

	want := []string{"tax", "basics", "payroll", "smb", "audit", "Taxation", "eu", "new"}
	if diff := cmp.Diff(want, DistinctTags(posts)); diff != "" {
		t.Errorf("DistinctTags mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, DistinctTags(nil))
}

func TestSummarize(t *testing.T) {
	stats := Summarize(fixture())

	assert.Equal(t, 4, stats.TotalPosts)
	assert.Equal(t, 16, stats.TotalViews)
	// (3+4+2+6)/4 = 3.75 -> 4
	assert.Equal(t, 4, stats.AvgReadingTime)
	assert.Equal(t, "16", stats.TotalViewsText)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, Stats{TotalViewsText: "0"}, Summarize(nil))
}

func TestFeatured(t *testing.T) {
	posts := fixture()

	assert.Equal(t, []string{"tax-101", "payroll"}, slugs(Featured(posts, 2)))
	assert.Len(t, Featured(posts, 10), 4)
	assert.Empty(t, Featured(posts, -1))
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "0", FormatCount(0))
	assert.Equal(t, "999", FormatCount(999))
	assert.Equal(t, "1.0K", FormatCount(1000))
	assert.Equal(t, "1.2K", FormatCount(1234))
	assert.Equal(t, "12.5K", FormatCount(12500))
}

func manyPosts(n int) []*entity.Post {
	posts := make([]*entity.Post, n)
	for i := range posts {
		posts[i] = &entity.Post{Slug: fmt.Sprintf("post-%02d", i), Title: fmt.Sprintf("Post %d", i), Tags: []string{"all"}}
		if i%2 == 0 {
			posts[i].Tags = append(posts[i].Tags, "even")
		}
	}
	return posts
}

func TestBrowser_States(t *testing.T) {
	b := NewBrowser()
	assert.Equal(t, StateLoading, b.State())

	b.Load(nil)
	assert.Equal(t, StateEmpty, b.State())

	b.Load(fixture())
	assert.Equal(t, StateResults, b.State())

	b.SetQuery("nothing matches this")
	assert.Equal(t, StateEmpty, b.State())
}

func TestBrowser_LoadMore(t *testing.T) {
	b := NewBrowser()
	b.Load(manyPosts(14))

	assert.Equal(t, PageSize, b.VisibleCount())
	assert.Len(t, b.Visible(), 6)
	assert.True(t, b.HasMore())

	prev := b.VisibleCount()
	for i := 0; i < 5; i++ {
		b.LoadMore()
		assert.GreaterOrEqual(t, b.VisibleCount(), prev)
		assert.LessOrEqual(t, len(b.Visible()), len(b.Matching()))
		prev = b.VisibleCount()
	}

	assert.Equal(t, 36, b.VisibleCount())
	assert.Len(t, b.Visible(), 14)
	assert.False(t, b.HasMore())
}

func TestBrowser_FilterChangeResetsPagination(t *testing.T) {
	b := NewBrowser()
	b.Load(manyPosts(20))
	b.LoadMore()
	b.LoadMore()
	assert.Equal(t, 18, b.VisibleCount())

	b.SetQuery("post 1")
	assert.Equal(t, PageSize, b.VisibleCount())

	b.LoadMore()
	b.SetTag("even")
	assert.Equal(t, PageSize, b.VisibleCount())
	assert.Equal(t, "post 1", b.Query())
	assert.Equal(t, "even", b.ActiveTag())

	b.LoadMore()
	b.ClearFilters()
	assert.Equal(t, PageSize, b.VisibleCount())
	assert.Len(t, b.Matching(), 20)
}

func TestBrowser_TagsAndStatsUseFullCollection(t *testing.T) {
	b := NewBrowser()
	b.Load(fixture())
	b.SetQuery("payroll")

	assert.Len(t, b.Matching(), 1)
	assert.Len(t, b.Tags(), 7)
	assert.Equal(t, 4, b.Stats().TotalPosts)
}
