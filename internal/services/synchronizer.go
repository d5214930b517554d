package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/cagebase/cagebase/internal/database"
)

// maxSyncNotes bounds the sync-note history kept on a record
const maxSyncNotes = 20

// Synchronizer copies authoritative fight fields onto linked perspective
// records. All mutations are explicit and report whether anything changed,
// so repeated delivery of a change signal is a no-op.
type Synchronizer struct {
	fights       *database.FightStore
	perspectives *database.PerspectiveStore
}

// NewSynchronizer creates a synchronizer over the two stores
func NewSynchronizer(fights *database.FightStore, perspectives *database.PerspectiveStore) *Synchronizer {
	return &Synchronizer{fights: fights, perspectives: perspectives}
}

// Link attaches a perspective record to a fight (recording how the match was
// made) and performs the first synchronization.
func (s *Synchronizer) Link(ctx context.Context, rec *database.PerspectiveRecord, fight *database.Fight, tier MatchTier, similarity float64) (bool, error) {
	rec.MatchTier = string(tier)
	rec.MatchConfidence = similarity
	return s.Sync(ctx, rec, fight)
}

// Sync overwrites the perspective fields derivable from the authoritative
// fight and persists the record when anything changed. The perspective's own
// result is derived from the fighter's participant row at first link and only
// re-derived when that row's result changes afterwards. Returns whether a
// write happened.
func (s *Synchronizer) Sync(ctx context.Context, rec *database.PerspectiveRecord, fight *database.Fight) (bool, error) {
	if err := fight.ValidateParticipants(); err != nil {
		return false, err
	}
	part := fight.ParticipantFor(rec.FighterUUID)
	if part == nil {
		return false, fmt.Errorf("fighter %s is not a participant of fight %s", rec.FighterUUID, fight.UUID)
	}
	opp := fight.OpponentOf(rec.FighterUUID)
	if opp == nil {
		return false, fmt.Errorf("fight %s has no opponent row for fighter %s", fight.UUID, rec.FighterUUID)
	}

	changed := false
	firstLink := rec.FightUUID != fight.UUID

	setStr(&rec.FightUUID, fight.UUID, &changed)
	setStr(&rec.OpponentName, opp.FighterName, &changed)
	setStr(&rec.OpponentUUID, opp.FighterUUID, &changed)
	setStr(&rec.EventUUID, fight.EventUUID, &changed)
	setStr(&rec.EventName, fight.EventName, &changed)
	setDate(&rec.EventDate, fight.EventDate, &changed)
	setStr(&rec.EventLocation, fight.EventLocation, &changed)
	setStr(&rec.Method, fight.Method, &changed)
	setStr(&rec.MethodDetail, fight.MethodDetail, &changed)
	setInt(&rec.EndingRound, fight.EndingRound, &changed)
	setStr(&rec.EndingTime, fight.EndingTime, &changed)
	setBool(&rec.TitleFight, fight.TitleFight, &changed)

	// Result handling: derive at first link, re-derive only if the
	// authoritative participant result moved since the last sync.
	if firstLink {
		if rec.Result != part.Result {
			rec.Result = part.Result
			changed = true
		}
	} else if last, ok := rec.SyncMeta["synced_result"].(string); ok && last != string(part.Result) {
		if rec.Result != part.Result {
			rec.Result = part.Result
			changed = true
		}
	}

	if rec.DataSource != database.DataSourceAuthoritative && rec.DataSource != database.DataSourceReconciled {
		rec.DataSource = database.DataSourceReconciled
		changed = true
	}

	if q := ComputeQuality(rec); rec.QualityScore != q {
		rec.QualityScore = q
		changed = true
	}

	if !changed {
		return false, nil
	}

	s.recordSyncNote(rec, fight, part)
	if err := s.perspectives.Save(ctx, rec); err != nil {
		return false, fmt.Errorf("saving perspective %s: %w", rec.UUID, err)
	}
	return true, nil
}

// OnFightChanged reacts to an authoritative edit: it creates the synthetic
// perspective pair the first time a two-participant fight is seen, then syncs
// every linked perspective. Safe under at-least-once delivery.
func (s *Synchronizer) OnFightChanged(ctx context.Context, fightUUID string) error {
	fight, err := s.fights.GetByUUID(ctx, fightUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: fight %s", ErrBrokenLink, fightUUID)
		}
		return fmt.Errorf("loading fight %s: %w", fightUUID, err)
	}
	if err := fight.ValidateParticipants(); err != nil {
		return err
	}

	recs, err := s.perspectives.ByFight(ctx, fightUUID)
	if err != nil {
		return fmt.Errorf("loading perspectives of fight %s: %w", fightUUID, err)
	}

	// Synthetic pair creation for fights not yet mirrored
	if len(fight.Participants) == 2 {
		for i := range fight.Participants {
			part := &fight.Participants[i]
			if hasPerspectiveFor(recs, part.FighterUUID) {
				continue
			}
			rec := &database.PerspectiveRecord{
				FighterUUID: part.FighterUUID,
				FightUUID:   fight.UUID,
				Result:      part.Result,
				DataSource:  database.DataSourceAuthoritative,
			}
			if err := s.perspectives.Create(ctx, rec); err != nil {
				return fmt.Errorf("creating synthetic perspective for fighter %s: %w", part.FighterUUID, err)
			}
			log.Printf("Created synthetic perspective %s for fighter %s on fight %s", rec.UUID, part.FighterUUID, fight.UUID)
			recs = append(recs, *rec)
		}
	}

	var errs []error
	for i := range recs {
		if _, err := s.Sync(ctx, &recs[i], fight); err != nil {
			log.Printf("Sync of perspective %s after fight change failed: %v", recs[i].UUID, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// recordSyncNote stamps the sync metadata with what happened and when
func (s *Synchronizer) recordSyncNote(rec *database.PerspectiveRecord, fight *database.Fight, part *database.FightParticipant) {
	if rec.SyncMeta == nil {
		rec.SyncMeta = make(database.JSONB)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	rec.SyncMeta["last_synced_at"] = now
	rec.SyncMeta["synced_result"] = string(part.Result)

	note := fmt.Sprintf("%s synced from fight %s", now, fight.UUID)
	var notes []interface{}
	if existing, ok := rec.SyncMeta["sync_notes"].([]interface{}); ok {
		notes = existing
	}
	notes = append(notes, note)
	if len(notes) > maxSyncNotes {
		notes = notes[len(notes)-maxSyncNotes:]
	}
	rec.SyncMeta["sync_notes"] = notes
}

func hasPerspectiveFor(recs []database.PerspectiveRecord, fighterUUID string) bool {
	for i := range recs {
		if recs[i].FighterUUID == fighterUUID {
			return true
		}
	}
	return false
}

func setStr(dst *string, v string, changed *bool) {
	if *dst != v {
		*dst = v
		*changed = true
	}
}

func setInt(dst *int, v int, changed *bool) {
	if *dst != v {
		*dst = v
		*changed = true
	}
}

func setBool(dst *bool, v bool, changed *bool) {
	if *dst != v {
		*dst = v
		*changed = true
	}
}

func setDate(dst **time.Time, v time.Time, changed *bool) {
	v = database.DateOnly(v)
	if *dst == nil || !(*dst).Equal(v) {
		*dst = &v
		*changed = true
	}
}
