package domain

// Status is the project review status.
type Status string

// Project status constants. There is no terminal project status: failed is
// reserved for business plans, so a bad document never blocks re-review.
const (
	StatusPendingReview Status = "pending_review"
	StatusProcessing    Status = "processing"
	StatusCompleted     Status = "completed"
	StatusNeedsInfo     Status = "needs_info"
)

// ValidStatus reports whether s is a declared project status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPendingReview, StatusProcessing, StatusCompleted, StatusNeedsInfo:
		return true
	}
	return false
}

// EventKind identifies a lifecycle event.
type EventKind string

const (
	// EventPlanUploadAccepted fires when a business plan upload is accepted
	// and background ingestion starts.
	EventPlanUploadAccepted EventKind = "plan_upload_accepted"
	// EventIngestionSucceeded fires on the completed terminal write of a
	// business plan. The project awaits manual scoring.
	EventIngestionSucceeded EventKind = "ingestion_succeeded"
	// EventIngestionFailed fires on the failed terminal write. The error is
	// recorded on the business plan, not the project.
	EventIngestionFailed EventKind = "ingestion_failed"
	// EventScoresReplaced fires after a full score set replacement.
	EventScoresReplaced EventKind = "scores_replaced"
	// EventInfoAdded fires when a reviewer flags missing information.
	EventInfoAdded EventKind = "missing_info_added"
	// EventInfoRemoved fires when a missing-information record is removed.
	EventInfoRemoved EventKind = "missing_info_removed"
)

// Event carries a lifecycle event plus the cross-entity facts the transition
// depends on. Callers gather OpenInfo/HasScores inside the same transaction
// that applies the resulting status.
type Event struct {
	Kind EventKind
	// OpenInfo is true when open missing-information records remain after
	// the event.
	OpenInfo bool
	// HasScores is true when the project has at least one dimension score.
	HasScores bool
}

// NextStatus is the single status-derivation rule for the whole service.
// Every mutating operation routes through it; no handler or repository sets
// a project status by any other means.
func NextStatus(current Status, ev Event) Status {
	switch ev.Kind {
	case EventPlanUploadAccepted:
		return StatusProcessing

	case EventIngestionSucceeded, EventIngestionFailed:
		// Either way the project stays reviewable: a failed document never
		// dead-ends the review, and a completed one awaits manual scoring.
		if ev.OpenInfo {
			return StatusNeedsInfo
		}
		return StatusPendingReview

	case EventScoresReplaced:
		if ev.OpenInfo {
			return StatusNeedsInfo
		}
		return StatusCompleted

	case EventInfoAdded:
		// Ingestion outcome is still pending; its terminal write will land
		// on needs_info via OpenInfo.
		if current == StatusProcessing {
			return StatusProcessing
		}
		return StatusNeedsInfo

	case EventInfoRemoved:
		if ev.OpenInfo {
			return StatusNeedsInfo
		}
		if current == StatusProcessing {
			return StatusProcessing
		}
		if ev.HasScores {
			return StatusCompleted
		}
		return StatusPendingReview
	}

	return current
}
