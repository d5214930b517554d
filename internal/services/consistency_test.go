package services

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/cagebase/cagebase/internal/database"
	"github.com/cagebase/cagebase/internal/testhelpers"
)

func runCheck(t *testing.T, db *gorm.DB) []Issue {
	t.Helper()
	checker := NewConsistencyChecker(database.NewFightStore(db), database.NewPerspectiveStore(db))
	issues, err := checker.Check(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return issues
}

func issuesOfType(issues []Issue, typ IssueType) []Issue {
	var out []Issue
	for _, issue := range issues {
		if issue.Type == typ {
			out = append(out, issue)
		}
	}
	return out
}

// mirrored links both fighters' perspectives to the fight with matching data
func mirrored(t *testing.T, db *gorm.DB, fight *database.Fight) []*database.PerspectiveRecord {
	t.Helper()
	recs := make([]*database.PerspectiveRecord, 0, 2)
	for i := range fight.Participants {
		part := fight.Participants[i]
		opp := fight.OpponentOf(part.FighterUUID)
		rec := testhelpers.NewPerspectiveBuilder().
			WithFighter(part.FighterUUID).
			WithResult(part.Result).
			WithOpponent(opp.FighterName).
			WithEvent(fight.EventName, fight.EventDate).
			WithMethod(fight.Method).
			LinkedTo(fight.UUID).
			Build()
		rec.EndingRound = fight.EndingRound
		rec.EndingTime = fight.EndingTime
		if err := db.Create(&rec).Error; err != nil {
			t.Fatalf("failed to create perspective: %v", err)
		}
		recs = append(recs, &rec)
	}
	return recs
}

func TestConsistencyChecker_CleanStateHasNoIssues(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	fight := testhelpers.NewFightBuilder().
		WithWinner("f1", "Jon Jones", "f2", "Daniel Cormier").
		Create(t, db)
	mirrored(t, db, fight)

	if issues := runCheck(t, db); len(issues) != 0 {
		t.Errorf("expected no issues, got %v", issues)
	}
}

func TestConsistencyChecker_MissingPerspective(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	fight := testhelpers.NewFightBuilder().
		WithWinner("f1", "Jon Jones", "f2", "Daniel Cormier").
		Create(t, db)
	recs := mirrored(t, db, fight)
	if err := db.Delete(recs[1]).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := issuesOfType(runCheck(t, db), IssueMissingPerspective)
	if len(found) != 1 {
		t.Fatalf("expected 1 missing-perspective issue, got %d", len(found))
	}
	if found[0].FightUUID != fight.UUID {
		t.Errorf("issue fight = %q", found[0].FightUUID)
	}
}

func TestConsistencyChecker_ResultInconsistency(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	fight := testhelpers.NewFightBuilder().
		WithWinner("f1", "Jon Jones", "f2", "Daniel Cormier").
		Create(t, db)
	recs := mirrored(t, db, fight)

	// Both sides now claim the win
	recs[1].Result = database.ResultWin
	if err := db.Save(recs[1]).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	issues := runCheck(t, db)
	if len(issuesOfType(issues, IssueResultInconsistency)) != 1 {
		t.Errorf("expected a result-inconsistency issue, got %v", issues)
	}
}

func TestConsistencyChecker_DrawResultsAreConsistent(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	fight := testhelpers.NewFightBuilder().
		WithDraw("f1", "Jon Jones", "f2", "Daniel Cormier").
		Create(t, db)
	mirrored(t, db, fight)

	issues := runCheck(t, db)
	if len(issuesOfType(issues, IssueResultInconsistency)) != 0 {
		t.Errorf("equal draw results must not be flagged, got %v", issues)
	}
}

func TestConsistencyChecker_InvalidLink(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	fight := testhelpers.NewFightBuilder().
		WithWinner("f1", "Jon Jones", "f2", "Daniel Cormier").
		Create(t, db)
	mirrored(t, db, fight)

	// A third fighter's record wrongly points at this fight
	testhelpers.NewPerspectiveBuilder().
		WithFighter("f9").
		LinkedTo(fight.UUID).
		Create(t, db)

	issues := runCheck(t, db)
	invalid := issuesOfType(issues, IssueInvalidLink)
	if len(invalid) != 1 {
		t.Fatalf("expected 1 invalid-link issue, got %d", len(invalid))
	}
	surplus := issuesOfType(issues, IssueSurplusPerspective)
	if len(surplus) != 1 {
		t.Errorf("expected a surplus-perspective issue, got %v", issues)
	}
}

func TestConsistencyChecker_StaleMirror(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	fight := testhelpers.NewFightBuilder().
		WithWinner("f1", "Jon Jones", "f2", "Daniel Cormier").
		Create(t, db)
	recs := mirrored(t, db, fight)

	// Authoritative method was corrected after the mirror was written
	if err := db.Model(fight).Update("method", "TKO").Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	issues := runCheck(t, db)
	stale := issuesOfType(issues, IssueStaleMirror)
	if len(stale) != 2 {
		t.Fatalf("expected both perspectives flagged stale, got %d: %v", len(stale), stale)
	}
	for _, issue := range stale {
		if issue.Field != "method" {
			t.Errorf("stale field = %q, want method", issue.Field)
		}
		if issue.PerspectiveUUID != recs[0].UUID && issue.PerspectiveUUID != recs[1].UUID {
			t.Errorf("unexpected perspective %q", issue.PerspectiveUUID)
		}
	}
}
