package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"finsight/pkg/database"
	"finsight/pkg/models"
	"finsight/pkg/readingtime"

	"github.com/lib/pq"
	"github.com/spf13/cobra"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var seedAuthorEmail string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample posts owned by an existing admin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.NewPostgresDB(cfg)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		var author models.User
		if err := db.Where("email = ?", strings.ToLower(seedAuthorEmail)).First(&author).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("no admin with email %s, run `blogctl admin create` first", seedAuthorEmail)
			}
			return fmt.Errorf("failed to load author: %w", err)
		}

		posts := samplePosts(author.ID, time.Now().UTC())
		result := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "slug"}}, DoNothing: true}).Create(&posts)
		if result.Error != nil {
			return fmt.Errorf("failed to seed posts: %w", result.Error)
		}

		log.Info("Seeded %d of %d sample posts (existing slugs skipped)", result.RowsAffected, len(posts))
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedAuthorEmail, "author-email", "admin@finsight.io", "email of the admin who owns the sample posts")
}

type sampleDraft struct {
	slug, title, excerpt string
	paragraphs           int
	tags                 []string
	cover, video         string
	daysAgo              int
}

var sampleDrafts = []sampleDraft{
	{"tax-strategies-101", "Tax strategies 101", "The basics every small business owner should know before filing.", 6, []string{"tax", "basics"}, "https://images.unsplash.com/photo-1554224155-6726b3ff858f", "", 1},
	{"running-payroll", "Running payroll without the headaches", "A checklist for getting payroll right every month.", 9, []string{"payroll", "smb"}, "", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", 3},
	{"audit-preparation", "Audit preparation", "How to keep records so an audit is a non-event.", 12, []string{"audit", "compliance"}, "", "", 7},
	{"vat-in-the-eu", "VAT in the EU", "Cross-border sales and the one-stop shop scheme.", 4, []string{"tax", "eu"}, "", "", 10},
	{"cash-flow-forecasting", "Cash flow forecasting", "Build a rolling 13-week forecast in an afternoon.", 15, []string{"cash-flow", "planning"}, "", "", 14},
	{"choosing-accounting-software", "Choosing accounting software", "What actually matters when you compare tools.", 7, []string{"tools", "smb"}, "", "", 21},
	{"quarterly-estimated-taxes", "Quarterly estimated taxes", "Avoid penalties by paying as you go.", 5, []string{"tax"}, "", "", 30},
}

const loremParagraph = "Good bookkeeping is less about software and more about habits. " +
	"Reconcile accounts weekly, keep receipts attached to transactions and review " +
	"your profit and loss statement every month so surprises show up early rather " +
	"than at year end when they are expensive to fix."

// samplePosts builds the seed rows with the same derivations the admin API applies.
func samplePosts(authorID string, now time.Time) []models.Post {
	posts := make([]models.Post, 0, len(sampleDrafts))
	for _, d := range sampleDrafts {
		content := strings.TrimSpace(strings.Repeat(loremParagraph+"\n\n", d.paragraphs))
		posts = append(posts, models.Post{
			Slug:        d.slug,
			Title:       d.title,
			Excerpt:     d.excerpt,
			Content:     content,
			Tags:        pq.StringArray(d.tags),
			CoverImage:  d.cover,
			VideoURL:    d.video,
			ReadingTime: readingtime.Estimate(content),
			Date:        datatypes.Date(now.AddDate(0, 0, -d.daysAgo).Truncate(24 * time.Hour)),
			AuthorID:    authorID,
		})
	}
	return posts
}
