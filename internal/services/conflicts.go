package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/cagebase/cagebase/internal/database"
	"github.com/cagebase/cagebase/internal/names"
)

// ConflictDetector compares a linked perspective record's stored fields
// against the live authoritative fight and reports field-level disagreements.
// It never mutates anything; conflicts are surfaced for human triage, not
// auto-resolved.
type ConflictDetector struct {
	fights       *database.FightStore
	perspectives *database.PerspectiveStore
}

// NewConflictDetector creates a conflict detector over the two stores
func NewConflictDetector(fights *database.FightStore, perspectives *database.PerspectiveStore) *ConflictDetector {
	return &ConflictDetector{fights: fights, perspectives: perspectives}
}

// Detect loads the record and its linked fight and diffs them. Unlinked
// records and broken links yield an empty map; a broken link is logged.
func (d *ConflictDetector) Detect(ctx context.Context, perspectiveUUID string) (ConflictMap, error) {
	rec, err := d.perspectives.GetByUUID(ctx, perspectiveUUID)
	if err != nil {
		return nil, fmt.Errorf("loading perspective %s: %w", perspectiveUUID, err)
	}
	if !rec.Linked() {
		return ConflictMap{}, nil
	}
	fight, err := d.fights.GetByUUID(ctx, rec.FightUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Perspective %s references missing fight %s, treating as unlinked", rec.UUID, rec.FightUUID)
			return ConflictMap{}, nil
		}
		return nil, fmt.Errorf("loading fight %s: %w", rec.FightUUID, err)
	}
	return d.Diff(rec, fight), nil
}

// Diff is the pure comparison over an already-loaded pair. Reused by the
// consistency checker's full scan.
func (d *ConflictDetector) Diff(rec *database.PerspectiveRecord, fight *database.Fight) ConflictMap {
	conflicts := make(ConflictMap)

	storedDate := ""
	if rec.EventDate != nil {
		storedDate = rec.EventDate.Format("2006-01-02")
	}
	authDate := database.DateOnly(fight.EventDate).Format("2006-01-02")
	if storedDate != authDate {
		conflicts["event_date"] = Conflict{Stored: storedDate, Authoritative: authDate}
	}

	if !strings.EqualFold(strings.TrimSpace(rec.EventName), strings.TrimSpace(fight.EventName)) {
		conflicts["event_name"] = Conflict{Stored: rec.EventName, Authoritative: fight.EventName}
	}

	if !strings.EqualFold(strings.TrimSpace(rec.Method), strings.TrimSpace(fight.Method)) {
		conflicts["method"] = Conflict{Stored: rec.Method, Authoritative: fight.Method}
	}

	if rec.EndingRound != fight.EndingRound {
		conflicts["ending_round"] = Conflict{
			Stored:        strconv.Itoa(rec.EndingRound),
			Authoritative: strconv.Itoa(fight.EndingRound),
		}
	}

	if strings.TrimSpace(rec.EndingTime) != strings.TrimSpace(fight.EndingTime) {
		conflicts["ending_time"] = Conflict{Stored: rec.EndingTime, Authoritative: fight.EndingTime}
	}

	if opp := fight.OpponentOf(rec.FighterUUID); opp != nil {
		if names.Normalize(rec.OpponentName) != names.Normalize(opp.FighterName) {
			conflicts["opponent_name"] = Conflict{Stored: rec.OpponentName, Authoritative: opp.FighterName}
		}
	}

	return conflicts
}
