package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JSONB is a custom type for PostgreSQL JSONB columns
type JSONB map[string]interface{}

// Scan implements the sql.Scanner interface
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = make(map[string]interface{})
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, j)
}

// Value implements the driver.Valuer interface
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Result is a fighter-side outcome of a bout
type Result string

const (
	ResultWin       Result = "win"
	ResultLoss      Result = "loss"
	ResultDraw      Result = "draw"
	ResultNoContest Result = "no_contest"
)

// Complement returns the result the opposing fighter must carry
func (r Result) Complement() Result {
	switch r {
	case ResultWin:
		return ResultLoss
	case ResultLoss:
		return ResultWin
	default:
		// Draws and no-contests apply to both sides
		return r
	}
}

// Valid reports whether r is one of the known outcomes
func (r Result) Valid() bool {
	switch r {
	case ResultWin, ResultLoss, ResultDraw, ResultNoContest:
		return true
	}
	return false
}

// Corner identifies a participant's corner assignment
type Corner string

const (
	CornerRed  Corner = "red"
	CornerBlue Corner = "blue"
)

// DataSource tags where a perspective record's current field values came from
type DataSource string

const (
	// DataSourceLegacy marks free-text records imported from external sources,
	// not yet linked to an authoritative fight
	DataSourceLegacy DataSource = "legacy"
	// DataSourceAuthoritative marks records created synthetically from an
	// authoritative fight at first save
	DataSourceAuthoritative DataSource = "authoritative_derived"
	// DataSourceReconciled marks legacy records that have since been linked
	// and synchronized
	DataSourceReconciled DataSource = "reconciled"
)

// Fight is the authoritative record of one real-world bout.
// It is owned and mutated by the ingestion pipeline; the reconciliation
// engine only reads it and reacts to change notifications.
type Fight struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UUID            string    `gorm:"uniqueIndex;size:36;not null" json:"uuid"`
	EventUUID       string    `gorm:"size:36;index" json:"event_uuid"` // ingestion-side event identifier
	EventName       string    `gorm:"type:varchar(255);not null;index" json:"event_name"`
	EventDate       time.Time `gorm:"not null;index" json:"event_date"`
	EventLocation   string    `gorm:"type:varchar(255)" json:"event_location"`
	Method          string    `gorm:"type:varchar(100)" json:"method"`        // e.g. "KO", "TKO", "Submission", "Decision"
	MethodDetail    string    `gorm:"type:varchar(255)" json:"method_detail"` // e.g. "rear-naked choke"
	EndingRound     int       `json:"ending_round"`
	EndingTime      string    `gorm:"type:varchar(10)" json:"ending_time"` // "m:ss" within the ending round
	TitleFight      bool      `gorm:"default:false" json:"title_fight"`
	InterimTitle    bool      `gorm:"default:false" json:"interim_title"`
	ScheduledRounds int       `gorm:"default:3" json:"scheduled_rounds"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Relationships
	Participants []FightParticipant `gorm:"foreignKey:FightID" json:"participants,omitempty"`
}

// BeforeCreate hook to assign a UUID
func (f *Fight) BeforeCreate(tx *gorm.DB) error {
	if f.UUID == "" {
		f.UUID = uuid.NewString()
	}
	return nil
}

// ParticipantFor returns the participant row for the given fighter, if present
func (f *Fight) ParticipantFor(fighterUUID string) *FightParticipant {
	for i := range f.Participants {
		if f.Participants[i].FighterUUID == fighterUUID {
			return &f.Participants[i]
		}
	}
	return nil
}

// OpponentOf returns the participant row opposing the given fighter, if present
func (f *Fight) OpponentOf(fighterUUID string) *FightParticipant {
	for i := range f.Participants {
		if f.Participants[i].FighterUUID != fighterUUID {
			return &f.Participants[i]
		}
	}
	return nil
}

// Decisive reports whether the fight ended with a winner and a loser
// (as opposed to a draw or no-contest)
func (f *Fight) Decisive() bool {
	for i := range f.Participants {
		if f.Participants[i].Result == ResultWin {
			return true
		}
	}
	return false
}

// ValidateParticipants enforces the participant invariant: exactly 0 or 2
// participants, and if 2, mutually exclusive results
func (f *Fight) ValidateParticipants() error {
	switch len(f.Participants) {
	case 0:
		return nil
	case 2:
		a, b := f.Participants[0].Result, f.Participants[1].Result
		if !a.Valid() || !b.Valid() {
			return fmt.Errorf("fight %s: invalid participant result %q/%q", f.UUID, a, b)
		}
		if a.Complement() != b {
			return fmt.Errorf("fight %s: participant results %q and %q are not complementary", f.UUID, a, b)
		}
		return nil
	default:
		return fmt.Errorf("fight %s: expected 0 or 2 participants, got %d", f.UUID, len(f.Participants))
	}
}

// FightParticipant is one fighter's side of an authoritative fight
type FightParticipant struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FightID     uint      `gorm:"not null;index" json:"fight_id"`
	FighterUUID string    `gorm:"size:36;not null;index" json:"fighter_uuid"`
	FighterName string    `gorm:"type:varchar(255);not null" json:"fighter_name"`
	Corner      Corner    `gorm:"type:varchar(10)" json:"corner"`
	Result      Result    `gorm:"type:varchar(20);not null" json:"result"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PerspectiveRecord is one fighter's account of one bout. Historically these
// were entered as free text, possibly before the authoritative fight existed.
// FightUUID is empty while the record is unlinked.
type PerspectiveRecord struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UUID          string     `gorm:"uniqueIndex;size:36;not null" json:"uuid"`
	FighterUUID   string     `gorm:"size:36;not null;index" json:"fighter_uuid"`
	Result        Result     `gorm:"type:varchar(20);not null" json:"result"` // from this fighter's side only
	OpponentName  string     `gorm:"type:varchar(255)" json:"opponent_name"`  // free text
	OpponentUUID  string     `gorm:"size:36;index" json:"opponent_uuid"`      // optional
	EventUUID     string     `gorm:"size:36;index" json:"event_uuid"` // explicit event reference, if the source supplied one
	EventName     string     `gorm:"type:varchar(255);index" json:"event_name"`
	EventDate     *time.Time `gorm:"index" json:"event_date"`
	RawEventDate  string     `gorm:"type:varchar(100)" json:"raw_event_date"` // original text when unparseable
	EventLocation string     `gorm:"type:varchar(255)" json:"event_location"`
	Method        string     `gorm:"type:varchar(100)" json:"method"`
	MethodDetail  string     `gorm:"type:varchar(255)" json:"method_detail"`
	EndingRound   int        `json:"ending_round"`
	EndingTime    string     `gorm:"type:varchar(10)" json:"ending_time"`
	TitleFight    bool       `gorm:"default:false" json:"title_fight"`
	WeightClass   string     `gorm:"type:varchar(100)" json:"weight_class"`
	Organization  string     `gorm:"type:varchar(100)" json:"organization"`

	// Link to the authoritative fight; empty while unlinked. Kept as an
	// identifier reference rather than a foreign key so a dangling link is
	// representable and survivable.
	FightUUID string `gorm:"size:36;index" json:"fight_uuid"`

	DataSource      DataSource `gorm:"type:varchar(30);not null;default:'legacy'" json:"data_source"`
	QualityScore    float64    `gorm:"type:decimal(3,2)" json:"quality_score"`
	MatchTier       string     `gorm:"type:varchar(30)" json:"match_tier"`        // which matcher tier produced the link
	MatchConfidence float64    `gorm:"type:decimal(3,2)" json:"match_confidence"` // opponent-name similarity at link time
	SyncMeta        JSONB      `gorm:"type:jsonb" json:"sync_meta"`               // last-sync notes

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook to assign a UUID
func (p *PerspectiveRecord) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.NewString()
	}
	return nil
}

// Linked reports whether the record references an authoritative fight
func (p *PerspectiveRecord) Linked() bool {
	return p.FightUUID != ""
}

// ReconciliationRun is the audit record of one reconciliation batch
type ReconciliationRun struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DryRun     bool      `gorm:"not null" json:"dry_run"`
	Processed  int       `json:"processed"`
	Linked     int       `json:"linked"`
	Ambiguous  int       `json:"ambiguous"`
	Unmatched  int       `json:"unmatched"`
	Errors     int       `json:"errors"`
	DurationMs int64     `json:"duration_ms"`
	StartedAt  time.Time `gorm:"not null" json:"started_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName overrides for explicit table naming
func (Fight) TableName() string {
	return "fights"
}

func (FightParticipant) TableName() string {
	return "fight_participants"
}

func (PerspectiveRecord) TableName() string {
	return "perspective_records"
}

func (ReconciliationRun) TableName() string {
	return "reconciliation_runs"
}
