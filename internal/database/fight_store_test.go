package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"
)

var day214 = time.Date(2017, 7, 29, 0, 0, 0, 0, time.UTC)

func createFight(t *testing.T, db *gorm.DB, fight Fight) *Fight {
	t.Helper()
	if err := db.Create(&fight).Error; err != nil {
		t.Fatalf("failed to create fight: %v", err)
	}
	return &fight
}

func TestFightStore_GetByUUID(t *testing.T) {
	db := setupTestDB(t)
	store := NewFightStore(db)

	created := createFight(t, db, Fight{
		EventName: "UFC 214: Cormier vs. Jones 2",
		EventDate: day214,
		Participants: []FightParticipant{
			{FighterUUID: "f1", FighterName: "Jon Jones", Result: ResultWin},
			{FighterUUID: "f2", FighterName: "Daniel Cormier", Result: ResultLoss},
		},
	})

	fight, err := store.GetByUUID(context.Background(), created.UUID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fight.Participants) != 2 {
		t.Errorf("expected 2 preloaded participants, got %d", len(fight.Participants))
	}

	_, err = store.GetByUUID(context.Background(), "missing")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestFightStore_FindByEventAndDate(t *testing.T) {
	db := setupTestDB(t)
	store := NewFightStore(db)

	createFight(t, db, Fight{EventName: "UFC 214: Cormier vs. Jones 2", EventDate: day214})
	createFight(t, db, Fight{EventName: "Bellator 181", EventDate: day214})
	createFight(t, db, Fight{EventName: "UFC 214: Cormier vs. Jones 2", EventDate: day214.AddDate(0, 0, 1)})

	// Stored legacy name without the subtitle still finds the event
	fights, err := store.FindByEventAndDate(context.Background(), "UFC 214", day214)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fights) != 1 {
		t.Fatalf("expected 1 fight, got %d", len(fights))
	}
	if fights[0].EventName != "UFC 214: Cormier vs. Jones 2" {
		t.Errorf("unexpected fight: %s", fights[0].EventName)
	}

	// Case-insensitive full name works too
	fights, err = store.FindByEventAndDate(context.Background(), "ufc 214: cormier vs. jones 2", day214)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fights) != 1 {
		t.Errorf("expected 1 fight for full name, got %d", len(fights))
	}

	// Wrong date finds nothing
	fights, err = store.FindByEventAndDate(context.Background(), "UFC 214", day214.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fights) != 0 {
		t.Errorf("expected 0 fights on the wrong date, got %d", len(fights))
	}
}

func TestFightStore_FindByDate(t *testing.T) {
	db := setupTestDB(t)
	store := NewFightStore(db)

	createFight(t, db, Fight{EventName: "UFC 214", EventDate: day214})
	createFight(t, db, Fight{EventName: "Bellator 181", EventDate: day214})
	createFight(t, db, Fight{EventName: "UFC 215", EventDate: day214.AddDate(0, 1, 0)})

	fights, err := store.FindByDate(context.Background(), day214)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fights) != 2 {
		t.Errorf("expected 2 fights on the date, got %d", len(fights))
	}
}

func TestFightStore_FindByEventUUID(t *testing.T) {
	db := setupTestDB(t)
	store := NewFightStore(db)

	createFight(t, db, Fight{EventUUID: "ev-1", EventName: "UFC 214", EventDate: day214})
	createFight(t, db, Fight{EventUUID: "ev-1", EventName: "UFC 214", EventDate: day214})
	createFight(t, db, Fight{EventUUID: "ev-2", EventName: "UFC 215", EventDate: day214})

	fights, err := store.FindByEventUUID(context.Background(), "ev-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fights) != 2 {
		t.Errorf("expected 2 fights on event ev-1, got %d", len(fights))
	}
}

func TestFightStore_AllWithTwoParticipants(t *testing.T) {
	db := setupTestDB(t)
	store := NewFightStore(db)

	createFight(t, db, Fight{
		EventName: "UFC 214", EventDate: day214,
		Participants: []FightParticipant{
			{FighterUUID: "a", FighterName: "A", Result: ResultWin},
			{FighterUUID: "b", FighterName: "B", Result: ResultLoss},
		},
	})
	createFight(t, db, Fight{EventName: "UFC 215", EventDate: day214})

	fights, err := store.AllWithTwoParticipants(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fights) != 1 {
		t.Errorf("expected 1 two-participant fight, got %d", len(fights))
	}
}

func TestEventNamesEqual(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"UFC 214", "UFC 214", true},
		{"ufc 214", "UFC 214", true},
		{"UFC 214", "UFC 214: Cormier vs. Jones 2", true},
		{"UFC 214: Cormier vs. Jones 2", "UFC 214", true},
		{"UFC 214", "UFC 215", false},
		{"", "UFC 214", false},
	}
	for _, tt := range tests {
		if got := EventNamesEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("EventNamesEqual(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFightStore_Participants(t *testing.T) {
	db := setupTestDB(t)
	store := NewFightStore(db)

	created := createFight(t, db, Fight{
		EventName: "UFC 214", EventDate: day214,
		Participants: []FightParticipant{
			{FighterUUID: "f1", FighterName: "Jon Jones", Result: ResultWin},
			{FighterUUID: "f2", FighterName: "Daniel Cormier", Result: ResultLoss},
		},
	})

	parts, err := store.Participants(context.Background(), created.UUID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(parts))
	}

	_, err = store.Participants(context.Background(), "missing")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestFightStore_FindByDate_TimeOfDayIgnored(t *testing.T) {
	db := setupTestDB(t)
	store := NewFightStore(db)

	// Ingested event dates are not guaranteed to sit at midnight.
	evening := time.Date(2017, 7, 29, 20, 30, 0, 0, time.UTC)
	createFight(t, db, Fight{EventName: "UFC 214", EventDate: evening})
	createFight(t, db, Fight{EventName: "UFC 215", EventDate: evening.AddDate(0, 0, 1)})

	fights, err := store.FindByDate(context.Background(), day214)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fights) != 1 {
		t.Fatalf("expected 1 fight on the date, got %d", len(fights))
	}
	if fights[0].EventName != "UFC 214" {
		t.Errorf("unexpected fight: %s", fights[0].EventName)
	}
}
