package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pitchai/pitchai-backend/internal/ingest/llm"
)

const (
	stageKeyPrefix    = "bp:stage:"    // Current pipeline stage: bp:stage:{bp_id}
	proposalKeyPrefix = "bp:proposal:" // AI score proposal JSON: bp:proposal:{bp_id}
	eventChanPrefix   = "bp:events:"   // Pub/Sub channel per plan: bp:events:{bp_id}
	progressTTL       = 7 * 24 * time.Hour
)

// Pipeline stages mirrored into redis for observability. Postgres stays
// authoritative for terminal plan status.
const (
	StageVerifying  = "verifying"
	StageExtracting = "extracting"
	StageEvaluating = "evaluating"
	StageCompleted  = "completed"
	StageFailed     = "failed"
)

// ProgressRepository tracks ingestion progress and AI proposals in redis.
type ProgressRepository struct {
	client *redis.Client
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(client *redis.Client) *ProgressRepository {
	return &ProgressRepository{client: client}
}

// SetStage records the current stage and publishes it to the plan's event
// channel for any live subscriber.
func (r *ProgressRepository) SetStage(ctx context.Context, planID, stage string) error {
	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.stageKey(planID), stage, progressTTL)
	pipe.Publish(ctx, r.eventChannel(planID), stage)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set stage: %w", err)
	}
	return nil
}

// Stage returns the last recorded stage, or "" when nothing was recorded.
func (r *ProgressRepository) Stage(ctx context.Context, planID string) (string, error) {
	stage, err := r.client.Get(ctx, r.stageKey(planID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get stage: %w", err)
	}
	return stage, nil
}

// SaveProposal stores the AI score proposal for later review.
func (r *ProgressRepository) SaveProposal(ctx context.Context, planID string, p *llm.Proposal) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal proposal: %w", err)
	}
	if err := r.client.Set(ctx, r.proposalKey(planID), b, progressTTL).Err(); err != nil {
		return fmt.Errorf("save proposal: %w", err)
	}
	return nil
}

// Proposal returns the stored AI proposal, or nil when none exists.
func (r *ProgressRepository) Proposal(ctx context.Context, planID string) (*llm.Proposal, error) {
	data, err := r.client.Get(ctx, r.proposalKey(planID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get proposal: %w", err)
	}
	var p llm.Proposal
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("unmarshal proposal: %w", err)
	}
	return &p, nil
}

// Subscribe returns a subscription to the plan's stage events.
func (r *ProgressRepository) Subscribe(ctx context.Context, planID string) *redis.PubSub {
	return r.client.Subscribe(ctx, r.eventChannel(planID))
}

func (r *ProgressRepository) stageKey(planID string) string    { return stageKeyPrefix + planID }
func (r *ProgressRepository) proposalKey(planID string) string { return proposalKeyPrefix + planID }
func (r *ProgressRepository) eventChannel(planID string) string {
	return eventChanPrefix + planID
}
