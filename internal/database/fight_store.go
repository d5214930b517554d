package database

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
)

// FightStore provides read access to authoritative fights. The reconciliation
// engine never writes through it; fights are owned by the ingestion pipeline.
type FightStore struct {
	db *gorm.DB
}

// NewFightStore creates a new fight store
func NewFightStore(db *gorm.DB) *FightStore {
	return &FightStore{db: db}
}

// GetByUUID returns a fight with its participants preloaded
func (s *FightStore) GetByUUID(ctx context.Context, fightUUID string) (*Fight, error) {
	var fight Fight
	err := s.db.WithContext(ctx).
		Preload("Participants").
		Where("uuid = ?", fightUUID).
		First(&fight).Error
	if err != nil {
		return nil, err
	}
	return &fight, nil
}

// FindByEventUUID returns all fights on the given event
func (s *FightStore) FindByEventUUID(ctx context.Context, eventUUID string) ([]Fight, error) {
	var fights []Fight
	err := s.db.WithContext(ctx).
		Preload("Participants").
		Where("event_uuid = ?", eventUUID).
		Order("id ASC").
		Find(&fights).Error
	return fights, err
}

// FindByEventAndDate returns fights on the given date whose event name
// matches case-insensitively, with subtitles after a colon ignored so that
// "UFC 214" finds "UFC 214: Cormier vs. Jones 2"
func (s *FightStore) FindByEventAndDate(ctx context.Context, eventName string, date time.Time) ([]Fight, error) {
	fights, err := s.FindByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	matched := make([]Fight, 0, len(fights))
	for _, f := range fights {
		if EventNamesEqual(eventName, f.EventName) {
			matched = append(matched, f)
		}
	}
	return matched, nil
}

// EventNamesEqual compares event names case-insensitively, treating the
// portion before a subtitle colon as the event identity
func EventNamesEqual(a, b string) bool {
	na, nb := normalizeEventName(a), normalizeEventName(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	return eventBase(na) == eventBase(nb)
}

func normalizeEventName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func eventBase(s string) string {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

// FindByDate returns all fights on the given date, regardless of event.
// Matches on the calendar day: ingested event dates may carry a time of day.
func (s *FightStore) FindByDate(ctx context.Context, date time.Time) ([]Fight, error) {
	day := DateOnly(date)
	var fights []Fight
	err := s.db.WithContext(ctx).
		Preload("Participants").
		Where("event_date >= ? AND event_date < ?", day, day.AddDate(0, 0, 1)).
		Order("id ASC").
		Find(&fights).Error
	return fights, err
}

// Participants returns the participant rows for a fight
func (s *FightStore) Participants(ctx context.Context, fightUUID string) ([]FightParticipant, error) {
	fight, err := s.GetByUUID(ctx, fightUUID)
	if err != nil {
		return nil, err
	}
	return fight.Participants, nil
}

// AllWithTwoParticipants returns every fight carrying exactly two participants.
// Used by the consistency checker's full scan.
func (s *FightStore) AllWithTwoParticipants(ctx context.Context) ([]Fight, error) {
	var fights []Fight
	err := s.db.WithContext(ctx).
		Preload("Participants").
		Order("id ASC").
		Find(&fights).Error
	if err != nil {
		return nil, err
	}
	result := make([]Fight, 0, len(fights))
	for _, f := range fights {
		if len(f.Participants) == 2 {
			result = append(result, f)
		}
	}
	return result, nil
}

// DateOnly truncates a timestamp to its calendar date in UTC. Fight and
// perspective event dates are compared at day granularity.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
