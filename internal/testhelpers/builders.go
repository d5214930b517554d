// Package testhelpers data builders for fights and perspective records
package testhelpers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cagebase/cagebase/internal/database"
)

// ========================================
// Fight Builder
// ========================================

// FightBuilder builds authoritative fights for testing
type FightBuilder struct {
	fight database.Fight
}

// NewFightBuilder creates a fight builder with defaults
func NewFightBuilder() *FightBuilder {
	return &FightBuilder{
		fight: database.Fight{
			UUID:            uuid.NewString(),
			EventName:       "UFC 300",
			EventDate:       time.Date(2024, 4, 13, 0, 0, 0, 0, time.UTC),
			EventLocation:   "Las Vegas, Nevada",
			Method:          "Decision",
			MethodDetail:    "unanimous",
			EndingRound:     3,
			EndingTime:      "5:00",
			ScheduledRounds: 3,
		},
	}
}

// WithUUID sets the fight UUID
func (b *FightBuilder) WithUUID(id string) *FightBuilder {
	b.fight.UUID = id
	return b
}

// WithEvent sets the event name and date
func (b *FightBuilder) WithEvent(name string, date time.Time) *FightBuilder {
	b.fight.EventName = name
	b.fight.EventDate = date
	return b
}

// WithEventUUID sets the explicit event reference
func (b *FightBuilder) WithEventUUID(eventUUID string) *FightBuilder {
	b.fight.EventUUID = eventUUID
	return b
}

// WithLocation sets the event location
func (b *FightBuilder) WithLocation(loc string) *FightBuilder {
	b.fight.EventLocation = loc
	return b
}

// WithMethod sets the method and detail
func (b *FightBuilder) WithMethod(method, detail string) *FightBuilder {
	b.fight.Method = method
	b.fight.MethodDetail = detail
	return b
}

// WithEnding sets the ending round and time
func (b *FightBuilder) WithEnding(round int, endTime string) *FightBuilder {
	b.fight.EndingRound = round
	b.fight.EndingTime = endTime
	return b
}

// AsTitleFight marks the fight as a title fight
func (b *FightBuilder) AsTitleFight() *FightBuilder {
	b.fight.TitleFight = true
	return b
}

// WithWinner adds winner and loser participants
func (b *FightBuilder) WithWinner(winnerUUID, winnerName, loserUUID, loserName string) *FightBuilder {
	b.fight.Participants = []database.FightParticipant{
		{FighterUUID: winnerUUID, FighterName: winnerName, Corner: database.CornerRed, Result: database.ResultWin},
		{FighterUUID: loserUUID, FighterName: loserName, Corner: database.CornerBlue, Result: database.ResultLoss},
	}
	return b
}

// WithDraw adds two participants that fought to a draw
func (b *FightBuilder) WithDraw(aUUID, aName, bUUID, bName string) *FightBuilder {
	b.fight.Participants = []database.FightParticipant{
		{FighterUUID: aUUID, FighterName: aName, Corner: database.CornerRed, Result: database.ResultDraw},
		{FighterUUID: bUUID, FighterName: bName, Corner: database.CornerBlue, Result: database.ResultDraw},
	}
	return b
}

// Build returns the constructed fight
func (b *FightBuilder) Build() database.Fight {
	return b.fight
}

// Create persists the fight with its participants and returns it
func (b *FightBuilder) Create(t *testing.T, db *gorm.DB) *database.Fight {
	t.Helper()
	fight := b.fight
	if err := db.Create(&fight).Error; err != nil {
		t.Fatalf("failed to create test fight: %v", err)
	}
	return &fight
}

// ========================================
// Perspective Builder
// ========================================

// PerspectiveBuilder builds perspective records for testing
type PerspectiveBuilder struct {
	rec database.PerspectiveRecord
}

// NewPerspectiveBuilder creates a perspective builder with legacy defaults
func NewPerspectiveBuilder() *PerspectiveBuilder {
	date := time.Date(2024, 4, 13, 0, 0, 0, 0, time.UTC)
	return &PerspectiveBuilder{
		rec: database.PerspectiveRecord{
			UUID:         uuid.NewString(),
			FighterUUID:  uuid.NewString(),
			Result:       database.ResultWin,
			OpponentName: "John Doe",
			EventName:    "UFC 300",
			EventDate:    &date,
			DataSource:   database.DataSourceLegacy,
		},
	}
}

// WithUUID sets the record UUID
func (b *PerspectiveBuilder) WithUUID(id string) *PerspectiveBuilder {
	b.rec.UUID = id
	return b
}

// WithFighter sets the perspective fighter
func (b *PerspectiveBuilder) WithFighter(fighterUUID string) *PerspectiveBuilder {
	b.rec.FighterUUID = fighterUUID
	return b
}

// WithResult sets the declared result
func (b *PerspectiveBuilder) WithResult(r database.Result) *PerspectiveBuilder {
	b.rec.Result = r
	return b
}

// WithOpponent sets the free-text opponent name
func (b *PerspectiveBuilder) WithOpponent(name string) *PerspectiveBuilder {
	b.rec.OpponentName = name
	return b
}

// WithOpponentUUID sets the optional opponent identifier
func (b *PerspectiveBuilder) WithOpponentUUID(id string) *PerspectiveBuilder {
	b.rec.OpponentUUID = id
	return b
}

// WithEvent sets the stored event name and date
func (b *PerspectiveBuilder) WithEvent(name string, date time.Time) *PerspectiveBuilder {
	b.rec.EventName = name
	d := date
	b.rec.EventDate = &d
	return b
}

// WithEventUUID sets the explicit event reference
func (b *PerspectiveBuilder) WithEventUUID(eventUUID string) *PerspectiveBuilder {
	b.rec.EventUUID = eventUUID
	return b
}

// WithoutDate clears the event date, keeping raw text
func (b *PerspectiveBuilder) WithoutDate(raw string) *PerspectiveBuilder {
	b.rec.EventDate = nil
	b.rec.RawEventDate = raw
	return b
}

// WithMethod sets the stored method
func (b *PerspectiveBuilder) WithMethod(method string) *PerspectiveBuilder {
	b.rec.Method = method
	return b
}

// LinkedTo links the record to a fight
func (b *PerspectiveBuilder) LinkedTo(fightUUID string) *PerspectiveBuilder {
	b.rec.FightUUID = fightUUID
	return b
}

// WithDataSource sets the data-source tag
func (b *PerspectiveBuilder) WithDataSource(ds database.DataSource) *PerspectiveBuilder {
	b.rec.DataSource = ds
	return b
}

// Build returns the constructed record
func (b *PerspectiveBuilder) Build() database.PerspectiveRecord {
	return b.rec
}

// Create persists the record and returns it
func (b *PerspectiveBuilder) Create(t *testing.T, db *gorm.DB) *database.PerspectiveRecord {
	t.Helper()
	rec := b.rec
	if err := db.Create(&rec).Error; err != nil {
		t.Fatalf("failed to create test perspective: %v", err)
	}
	return &rec
}
