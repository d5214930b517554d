package database

import (
	"context"

	"gorm.io/gorm"
)

// PerspectiveStore provides read/write access to per-fighter perspective
// records, both linked and unlinked.
type PerspectiveStore struct {
	db *gorm.DB
}

// NewPerspectiveStore creates a new perspective store
func NewPerspectiveStore(db *gorm.DB) *PerspectiveStore {
	return &PerspectiveStore{db: db}
}

// GetByUUID returns a perspective record by its public identifier
func (s *PerspectiveStore) GetByUUID(ctx context.Context, recordUUID string) (*PerspectiveRecord, error) {
	var rec PerspectiveRecord
	err := s.db.WithContext(ctx).Where("uuid = ?", recordUUID).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Unlinked returns all records with no authoritative fight reference, oldest
// first so retried records keep a stable processing order
func (s *PerspectiveStore) Unlinked(ctx context.Context) ([]PerspectiveRecord, error) {
	var recs []PerspectiveRecord
	err := s.db.WithContext(ctx).
		Where("fight_uuid = '' OR fight_uuid IS NULL").
		Order("id ASC").
		Find(&recs).Error
	return recs, err
}

// ByFight returns all perspective records linked to the given fight
func (s *PerspectiveStore) ByFight(ctx context.Context, fightUUID string) ([]PerspectiveRecord, error) {
	var recs []PerspectiveRecord
	err := s.db.WithContext(ctx).
		Where("fight_uuid = ?", fightUUID).
		Order("id ASC").
		Find(&recs).Error
	return recs, err
}

// ByFighter returns all perspective records for one fighter, newest bout first
func (s *PerspectiveStore) ByFighter(ctx context.Context, fighterUUID string) ([]PerspectiveRecord, error) {
	var recs []PerspectiveRecord
	err := s.db.WithContext(ctx).
		Where("fighter_uuid = ?", fighterUUID).
		Order("event_date DESC").
		Find(&recs).Error
	return recs, err
}

// Create inserts a new perspective record
func (s *PerspectiveStore) Create(ctx context.Context, rec *PerspectiveRecord) error {
	return s.db.WithContext(ctx).Create(rec).Error
}

// Save persists all fields of an existing record. Writes are per-record;
// last writer wins.
func (s *PerspectiveStore) Save(ctx context.Context, rec *PerspectiveRecord) error {
	return s.db.WithContext(ctx).Save(rec).Error
}

// CountByFight returns how many perspective records reference the given fight
func (s *PerspectiveStore) CountByFight(ctx context.Context, fightUUID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&PerspectiveRecord{}).
		Where("fight_uuid = ?", fightUUID).
		Count(&count).Error
	return count, err
}
