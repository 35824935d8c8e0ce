package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{StatusPendingReview, StatusProcessing, StatusCompleted, StatusNeedsInfo} {
		assert.True(t, ValidStatus(s), string(s))
	}
	assert.False(t, ValidStatus(Status("failed")))
	assert.False(t, ValidStatus(Status("")))
	assert.False(t, ValidStatus(Status("archived")))
}

func TestNextStatus(t *testing.T) {
	tests := []struct {
		name    string
		current Status
		ev      Event
		want    Status
	}{
		{
			name:    "upload always moves to processing",
			current: StatusPendingReview,
			ev:      Event{Kind: EventPlanUploadAccepted},
			want:    StatusProcessing,
		},
		{
			name:    "upload from needs_info moves to processing",
			current: StatusNeedsInfo,
			ev:      Event{Kind: EventPlanUploadAccepted},
			want:    StatusProcessing,
		},
		{
			name:    "upload from completed restarts the review",
			current: StatusCompleted,
			ev:      Event{Kind: EventPlanUploadAccepted},
			want:    StatusProcessing,
		},
		{
			name:    "ingestion success awaits manual scoring",
			current: StatusProcessing,
			ev:      Event{Kind: EventIngestionSucceeded},
			want:    StatusPendingReview,
		},
		{
			name:    "ingestion success with open info lands on needs_info",
			current: StatusProcessing,
			ev:      Event{Kind: EventIngestionSucceeded, OpenInfo: true},
			want:    StatusNeedsInfo,
		},
		{
			name:    "ingestion failure never dead-ends the review",
			current: StatusProcessing,
			ev:      Event{Kind: EventIngestionFailed},
			want:    StatusPendingReview,
		},
		{
			name:    "ingestion failure with open info lands on needs_info",
			current: StatusProcessing,
			ev:      Event{Kind: EventIngestionFailed, OpenInfo: true},
			want:    StatusNeedsInfo,
		},
		{
			name:    "score replacement completes the review",
			current: StatusPendingReview,
			ev:      Event{Kind: EventScoresReplaced, HasScores: true},
			want:    StatusCompleted,
		},
		{
			name:    "score replacement with open info stays gated",
			current: StatusPendingReview,
			ev:      Event{Kind: EventScoresReplaced, OpenInfo: true, HasScores: true},
			want:    StatusNeedsInfo,
		},
		{
			name:    "rescoring a completed project keeps it completed",
			current: StatusCompleted,
			ev:      Event{Kind: EventScoresReplaced, HasScores: true},
			want:    StatusCompleted,
		},
		{
			name:    "info added flags the project",
			current: StatusPendingReview,
			ev:      Event{Kind: EventInfoAdded, OpenInfo: true},
			want:    StatusNeedsInfo,
		},
		{
			name:    "info added reopens a completed project",
			current: StatusCompleted,
			ev:      Event{Kind: EventInfoAdded, OpenInfo: true, HasScores: true},
			want:    StatusNeedsInfo,
		},
		{
			name:    "info added during ingestion keeps processing",
			current: StatusProcessing,
			ev:      Event{Kind: EventInfoAdded, OpenInfo: true},
			want:    StatusProcessing,
		},
		{
			name:    "info removed with records remaining stays needs_info",
			current: StatusNeedsInfo,
			ev:      Event{Kind: EventInfoRemoved, OpenInfo: true},
			want:    StatusNeedsInfo,
		},
		{
			name:    "last info removed restores completed when scored",
			current: StatusNeedsInfo,
			ev:      Event{Kind: EventInfoRemoved, HasScores: true},
			want:    StatusCompleted,
		},
		{
			name:    "last info removed restores pending_review when unscored",
			current: StatusNeedsInfo,
			ev:      Event{Kind: EventInfoRemoved},
			want:    StatusPendingReview,
		},
		{
			name:    "info removed during ingestion keeps processing",
			current: StatusProcessing,
			ev:      Event{Kind: EventInfoRemoved},
			want:    StatusProcessing,
		},
		{
			name:    "unknown event leaves the status alone",
			current: StatusCompleted,
			ev:      Event{Kind: EventKind("noop")},
			want:    StatusCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextStatus(tt.current, tt.ev))
		})
	}
}
