package services

import (
	"context"
	"fmt"

	"github.com/cagebase/cagebase/internal/database"
)

// ConsistencyChecker scans all two-participant fights and verifies the
// bidirectional perspective invariants. It is a diagnostic pass: issues are
// reported, never repaired. Repair happens through operator re-invocation of
// the synchronizer or matcher.
type ConsistencyChecker struct {
	fights       *database.FightStore
	perspectives *database.PerspectiveStore
	detector     *ConflictDetector
}

// NewConsistencyChecker creates a checker over the two stores
func NewConsistencyChecker(fights *database.FightStore, perspectives *database.PerspectiveStore) *ConsistencyChecker {
	return &ConsistencyChecker{
		fights:       fights,
		perspectives: perspectives,
		detector:     NewConflictDetector(fights, perspectives),
	}
}

// Check runs the full scan and returns every issue found
func (c *ConsistencyChecker) Check(ctx context.Context) ([]Issue, error) {
	fights, err := c.fights.AllWithTwoParticipants(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanning fights: %w", err)
	}

	var issues []Issue
	for i := range fights {
		fight := &fights[i]
		recs, err := c.perspectives.ByFight(ctx, fight.UUID)
		if err != nil {
			return nil, fmt.Errorf("loading perspectives of fight %s: %w", fight.UUID, err)
		}
		issues = append(issues, c.checkFight(fight, recs)...)
	}
	return issues, nil
}

// checkFight evaluates one fight's linked perspectives
func (c *ConsistencyChecker) checkFight(fight *database.Fight, recs []database.PerspectiveRecord) []Issue {
	var issues []Issue

	if len(recs) < 2 {
		issues = append(issues, Issue{
			Type:      IssueMissingPerspective,
			FightUUID: fight.UUID,
			Detail:    fmt.Sprintf("expected 2 linked perspectives, found %d", len(recs)),
		})
	}
	if len(recs) > 2 {
		issues = append(issues, Issue{
			Type:      IssueSurplusPerspective,
			FightUUID: fight.UUID,
			Detail:    fmt.Sprintf("expected 2 linked perspectives, found %d", len(recs)),
		})
	}

	// Linked perspectives must belong to the fight's participants
	valid := recs[:0:0]
	for i := range recs {
		rec := &recs[i]
		if fight.ParticipantFor(rec.FighterUUID) == nil {
			issues = append(issues, Issue{
				Type:            IssueInvalidLink,
				FightUUID:       fight.UUID,
				PerspectiveUUID: rec.UUID,
				Detail:          fmt.Sprintf("fighter %s is not a participant of this fight", rec.FighterUUID),
			})
			continue
		}
		valid = append(valid, *rec)
	}

	// The two perspectives of a decisive fight must carry complementary results
	if len(valid) == 2 && fight.Decisive() {
		a, b := valid[0], valid[1]
		if a.Result == b.Result {
			issues = append(issues, Issue{
				Type:      IssueResultInconsistency,
				FightUUID: fight.UUID,
				Detail: fmt.Sprintf("perspectives %s and %s both report %q for a decisive fight",
					a.UUID, b.UUID, a.Result),
			})
		}
	}

	// Stale mirrored data surfaces every field-level conflict as an issue
	for i := range valid {
		rec := &valid[i]
		for field, conflict := range c.detector.Diff(rec, fight) {
			issues = append(issues, Issue{
				Type:            IssueStaleMirror,
				FightUUID:       fight.UUID,
				PerspectiveUUID: rec.UUID,
				Field:           field,
				Detail:          fmt.Sprintf("stored %q, authoritative %q", conflict.Stored, conflict.Authoritative),
			})
		}
	}

	return issues
}
