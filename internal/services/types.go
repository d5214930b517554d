package services

import (
	"fmt"
	"time"

	"github.com/cagebase/cagebase/internal/database"
)

// MatchTier identifies which matcher strategy produced a link
type MatchTier string

const (
	// TierEventRef matched inside the explicitly referenced event
	TierEventRef MatchTier = "event_ref"
	// TierEventNameDate matched on event name plus date
	TierEventNameDate MatchTier = "event_name_date"
	// TierDateOnly matched on date alone, ignoring divergent event naming
	TierDateOnly MatchTier = "date_only"
)

// MatchStatus is the overall outcome of one matching attempt
type MatchStatus string

const (
	MatchStatusMatched   MatchStatus = "matched"
	MatchStatusAmbiguous MatchStatus = "ambiguous"
	MatchStatusUnmatched MatchStatus = "unmatched"
)

// MatchOutcome describes the result of matching one unlinked perspective
// record against the fight store
type MatchOutcome struct {
	Status     MatchStatus     `json:"status"`
	Fight      *database.Fight `json:"-"`
	FightUUID  string          `json:"fight_uuid,omitempty"`
	Tier       MatchTier       `json:"tier,omitempty"`
	Similarity float64         `json:"similarity,omitempty"` // opponent-name similarity of the winning candidate
	Candidates int             `json:"candidates"`           // qualified candidates at the deciding tier
	Reason     string          `json:"reason,omitempty"`
}

// Err converts a non-matched outcome into its sentinel error. Batch callers
// inspect Status and tally; single-record callers want a hard error.
func (o *MatchOutcome) Err() error {
	switch o.Status {
	case MatchStatusAmbiguous:
		return fmt.Errorf("%w: %s", ErrAmbiguousMatch, o.Reason)
	case MatchStatusUnmatched:
		return ErrNoMatch
	default:
		return nil
	}
}

// Conflict is one field where the stored legacy value disagrees with the
// live authoritative value
type Conflict struct {
	Stored        string `json:"stored"`
	Authoritative string `json:"authoritative"`
}

// ConflictMap maps field name to its stored/authoritative disagreement
type ConflictMap map[string]Conflict

// IssueType classifies a consistency-check finding
type IssueType string

const (
	// IssueMissingPerspective means fewer than two perspective records
	// reference a two-participant fight
	IssueMissingPerspective IssueType = "missing_perspective"
	// IssueSurplusPerspective means more than two perspective records
	// reference one fight
	IssueSurplusPerspective IssueType = "surplus_perspective"
	// IssueResultInconsistency means the two linked perspectives report
	// non-complementary results for a decisive fight
	IssueResultInconsistency IssueType = "result_inconsistency"
	// IssueInvalidLink means a linked perspective's fighter is not among
	// the fight's participants
	IssueInvalidLink IssueType = "invalid_link"
	// IssueStaleMirror means a linked perspective's mirrored field no
	// longer matches the authoritative value
	IssueStaleMirror IssueType = "stale_mirror"
)

// Issue is one consistency-check finding, tagged with the offending
// identifiers for operator triage
type Issue struct {
	Type             IssueType `json:"type"`
	FightUUID        string    `json:"fight_uuid"`
	PerspectiveUUID  string    `json:"perspective_uuid,omitempty"`
	Field            string    `json:"field,omitempty"`
	Detail           string    `json:"detail"`
}

// ReconcileStats aggregates counters for one reconciliation batch
type ReconcileStats struct {
	DryRun    bool          `json:"dry_run"`
	Processed int           `json:"processed"`
	Linked    int           `json:"linked"`
	Ambiguous int           `json:"ambiguous"`
	Unmatched int           `json:"unmatched"`
	Errors    int           `json:"errors"`
	Duration  time.Duration `json:"duration"`

	// Bounded samples for the operator report
	ErrorSamples     []string `json:"error_samples,omitempty"`
	AmbiguousSamples []string `json:"ambiguous_samples,omitempty"`
	IntendedLinks    []string `json:"intended_links,omitempty"` // dry-run only
}
