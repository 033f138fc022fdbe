package main

import (
	"strings"
	"testing"
	"time"

	"finsight/pkg/readingtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSamplePosts(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	posts := samplePosts("author-1", now)

	require.Len(t, posts, len(sampleDrafts))
	seen := make(map[string]bool)
	for _, p := range posts {
		assert.False(t, seen[p.Slug], "duplicate slug %s", p.Slug)
		seen[p.Slug] = true

		assert.NotContains(t, p.Slug, " ")
		assert.Equal(t, "author-1", p.AuthorID)
		assert.Equal(t, readingtime.Estimate(p.Content), p.ReadingTime)
		assert.False(t, p.CoverImage != "" && p.VideoURL != "", "%s has two media", p.Slug)
		assert.True(t, time.Time(p.Date).Before(now))
	}
}

func TestNewAdminUser(t *testing.T) {
	user, err := newAdminUser("  Admin@Finsight.io ", "correct-horse", "")

	require.NoError(t, err)
	assert.Equal(t, "admin@finsight.io", user.Email)
	assert.Equal(t, "admin", user.DisplayName)
	assert.True(t, user.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct-horse")))
}

func TestNewAdminUser_Validation(t *testing.T) {
	_, err := newAdminUser("not-an-email", "correct-horse", "")
	assert.Error(t, err)

	_, err = newAdminUser("a@b.io", "short", "")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "at least"))
}

func TestCommandTree(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["migrate"])
	assert.True(t, names["seed"])
	assert.True(t, names["admin"])

	sub, _, err := rootCmd.Find([]string{"migrate", "create"})
	require.NoError(t, err)
	assert.Equal(t, "create", sub.Name())
}
