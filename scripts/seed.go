package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/feedback-insights/internal/adapters/database"
	"github.com/zatekoja/feedback-insights/internal/adapters/search"
	"github.com/zatekoja/feedback-insights/internal/domain/entities"
	"github.com/zatekoja/feedback-insights/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/feedback-insights/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/feedback-insights/pkg/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS feedback (
	id            BIGSERIAL PRIMARY KEY,
	text          TEXT NOT NULL,
	source        TEXT NOT NULL DEFAULT '',
	channel       TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT 'To Do',
	tag           TEXT,
	sentiment     DOUBLE PRECISION,
	urgency_score DOUBLE PRECISION,
	summary       TEXT,
	user_tier     TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	analyzed_at   TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_feedback_updated_at ON feedback (updated_at DESC);
CREATE INDEX IF NOT EXISTS idx_feedback_tag ON feedback (tag);
CREATE INDEX IF NOT EXISTS idx_feedback_status ON feedback (status);
`

type seedRecord struct {
	text      string
	source    string
	channel   string
	tier      string
	status    entities.Status
	tag       entities.Tag
	sentiment float64
	urgency   float64
	summary   string
	ageDays   int
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to DB")
	}
	defer pgClient.Close()

	ctx := context.Background()

	if _, err := pgClient.DB().ExecContext(ctx, schema); err != nil {
		log.Fatal().Err(err).Msg("failed to create schema")
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating feedback before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, `TRUNCATE TABLE feedback RESTART IDENTITY`); err != nil {
			log.Fatal().Err(err).Msg("failed to reset feedback table")
		}
	}

	var searchRepo *search.TypesenseAdapter
	if cfg.Typesense.URL != "" {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err == nil {
			searchRepo = search.NewTypesenseAdapter(tsClient)
			if err := searchRepo.InitSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("failed to init search schema")
			}
		}
	}

	repo := database.NewFeedbackAdapter(pgClient, nil)

	seeds := []seedRecord{
		{text: "The dashboard export hangs forever on large date ranges", source: "widget", channel: "web", tier: "pro", status: entities.StatusInProgress, tag: entities.TagPerformance, sentiment: -0.7, urgency: 0.8, summary: "Export hangs on large ranges", ageDays: 12},
		{text: "Love the new summary view, saves me an hour every Monday", source: "email", channel: "email", tier: "enterprise", status: entities.StatusDone, tag: entities.TagPraise, sentiment: 0.9, urgency: 0.1, summary: "Praise for summary view", ageDays: 10},
		{text: "Please add a way to bulk-edit statuses from the table", source: "widget", channel: "web", tier: "free", status: entities.StatusToDo, tag: entities.TagFeatureRequest, sentiment: 0.2, urgency: 0.3, summary: "Bulk status editing requested", ageDays: 9},
		{text: "Login fails with a blank page after the last update, we are blocked", source: "support", channel: "chat", tier: "enterprise", status: entities.StatusInProgress, tag: entities.TagUrgent, sentiment: -0.9, urgency: 0.95, summary: "Login broken, customer blocked", ageDays: 7},
		{text: "Found that the password reset link works without the token parameter", source: "email", channel: "email", tier: "pro", status: entities.StatusToBeReviewed, tag: entities.TagSecurity, sentiment: -0.5, urgency: 0.9, summary: "Reset link ignores token", ageDays: 6},
		{text: "Charts sometimes show yesterday's numbers until I hard refresh", source: "widget", channel: "web", tier: "free", status: entities.StatusToDo, tag: entities.TagBugReport, sentiment: -0.4, urgency: 0.5, summary: "Stale chart data until refresh", ageDays: 5},
		{text: "Would be great to filter the gantt view by team", source: "widget", channel: "web", tier: "pro", status: entities.StatusToDo, tag: entities.TagFeatureRequest, sentiment: 0.3, urgency: 0.2, summary: "Gantt filter by team", ageDays: 4},
		{text: "Onboarding flow was smooth, took five minutes end to end", source: "survey", channel: "email", tier: "free", status: entities.StatusDone, tag: entities.TagPraise, sentiment: 0.8, urgency: 0.05, summary: "Smooth onboarding", ageDays: 3},
		{text: "Search returns nothing for partial words, have to type the whole term", source: "support", channel: "chat", tier: "pro", status: entities.StatusToBeReviewed, tag: entities.TagBugReport, sentiment: -0.3, urgency: 0.4, summary: "No partial word matching", ageDays: 2},
		{text: "Weekly digest email arrived twice this Monday", source: "email", channel: "email", tier: "free", status: entities.StatusToDo, tag: entities.TagBugReport, sentiment: -0.2, urgency: 0.3, summary: "Duplicate digest email", ageDays: 1},
	}

	now := time.Now().UTC()
	for _, s := range seeds {
		created := now.AddDate(0, 0, -s.ageDays)
		record := &entities.FeedbackRecord{
			Text:      s.text,
			Source:    s.source,
			Channel:   s.channel,
			Status:    entities.StatusToDo,
			UserTier:  s.tier,
			CreatedAt: created,
			UpdatedAt: created,
		}

		id, err := repo.Insert(ctx, record)
		if err != nil {
			log.Warn().Err(err).Str("text", s.text).Msg("failed to insert record")
			continue
		}
		record.ID = id

		analysis := &entities.ClassificationResult{
			Tag:       s.tag,
			Sentiment: s.sentiment,
			Urgency:   s.urgency,
			Summary:   s.summary,
		}
		if err := repo.UpdateAnalysis(ctx, id, analysis); err != nil {
			log.Warn().Err(err).Int64("id", id).Msg("failed to store analysis")
		}
		if s.status != entities.StatusToDo {
			if err := repo.UpdateStatus(ctx, id, s.status); err != nil {
				log.Warn().Err(err).Int64("id", id).Msg("failed to set status")
			}
		}

		if searchRepo != nil {
			record.Tag = s.tag
			sentiment := s.sentiment
			record.Sentiment = &sentiment
			if err := searchRepo.Index(ctx, record); err != nil {
				log.Warn().Err(err).Int64("id", id).Msg("failed to index record")
			}
		}
	}

	log.Info().Int("count", len(seeds)).Msg("seeding complete")
}
