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

// Data freshness values reported on a resolved view
const (
	FreshnessLive       = "live"
	FreshnessHistorical = "historical"
)

// ResolvedView is the read-time overlay of one perspective record: each field
// comes from the authoritative fight when a link resolves, else from the
// stored legacy value.
type ResolvedView struct {
	PerspectiveUUID string          `json:"perspective_uuid"`
	FighterUUID     string          `json:"fighter_uuid"`
	OpponentName    string          `json:"opponent_name"`
	OpponentUUID    string          `json:"opponent_uuid,omitempty"`
	EventName       string          `json:"event_name"`
	EventDate       *time.Time      `json:"event_date,omitempty"`
	EventLocation   string          `json:"event_location,omitempty"`
	Result          database.Result `json:"result"`
	Method          string          `json:"method,omitempty"`
	MethodDetail    string          `json:"method_detail,omitempty"`
	EndingRound     int             `json:"ending_round,omitempty"`
	EndingTime      string          `json:"ending_time,omitempty"`
	TitleFight      bool            `json:"title_fight"`
	WeightClass     string          `json:"weight_class,omitempty"`
	Organization    string          `json:"organization,omitempty"`
	Freshness       string          `json:"freshness"`
	Interconnected  bool            `json:"interconnected"`
}

// Resolver serves the live overlay on read paths. It never mutates state and
// degrades to stored values when a link is broken.
type Resolver struct {
	fights       *database.FightStore
	perspectives *database.PerspectiveStore
}

// NewResolver creates a resolver over the two stores
func NewResolver(fights *database.FightStore, perspectives *database.PerspectiveStore) *Resolver {
	return &Resolver{fights: fights, perspectives: perspectives}
}

// Resolve loads a perspective record and overlays its linked fight. A
// dangling link is tolerated: the record is served as historical with a
// logged warning rather than failing the read.
func (r *Resolver) Resolve(ctx context.Context, perspectiveUUID string) (*ResolvedView, error) {
	rec, err := r.perspectives.GetByUUID(ctx, perspectiveUUID)
	if err != nil {
		return nil, fmt.Errorf("loading perspective %s: %w", perspectiveUUID, err)
	}

	var fight *database.Fight
	if rec.Linked() {
		fight, err = r.fights.GetByUUID(ctx, rec.FightUUID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("loading fight %s: %w", rec.FightUUID, err)
			}
			log.Printf("Perspective %s has broken link to fight %s, serving stored values", rec.UUID, rec.FightUUID)
			fight = nil
		}
	}

	return Overlay(rec, fight), nil
}

// Overlay is the pure overlay over an already-loaded pair; fight may be nil
func Overlay(rec *database.PerspectiveRecord, fight *database.Fight) *ResolvedView {
	return &ResolvedView{
		PerspectiveUUID: rec.UUID,
		FighterUUID:     rec.FighterUUID,
		OpponentName:    LiveOpponentName(rec, fight),
		OpponentUUID:    liveOpponentUUID(rec, fight),
		EventName:       LiveEventName(rec, fight),
		EventDate:       LiveEventDate(rec, fight),
		EventLocation:   LiveLocation(rec, fight),
		Result:          LiveResult(rec, fight),
		Method:          LiveMethod(rec, fight),
		MethodDetail:    liveMethodDetail(rec, fight),
		EndingRound:     liveEndingRound(rec, fight),
		EndingTime:      liveEndingTime(rec, fight),
		TitleFight:      liveTitleFight(rec, fight),
		WeightClass:     rec.WeightClass,  // never authoritative-derived
		Organization:    rec.Organization, // never authoritative-derived
		Freshness:       DataFreshness(rec, fight),
		Interconnected:  IsInterconnected(rec, fight),
	}
}

// IsInterconnected reports whether the record has a resolvable authoritative
// link backing its live fields
func IsInterconnected(rec *database.PerspectiveRecord, fight *database.Fight) bool {
	return rec.Linked() && fight != nil && fight.UUID == rec.FightUUID
}

// DataFreshness returns "live" when authoritative data backs the view and
// "historical" otherwise
func DataFreshness(rec *database.PerspectiveRecord, fight *database.Fight) string {
	if IsInterconnected(rec, fight) {
		return FreshnessLive
	}
	return FreshnessHistorical
}

// LiveOpponentName prefers the authoritative opponent over the stored text
func LiveOpponentName(rec *database.PerspectiveRecord, fight *database.Fight) string {
	if IsInterconnected(rec, fight) {
		if opp := fight.OpponentOf(rec.FighterUUID); opp != nil {
			return opp.FighterName
		}
	}
	return rec.OpponentName
}

func liveOpponentUUID(rec *database.PerspectiveRecord, fight *database.Fight) string {
	if IsInterconnected(rec, fight) {
		if opp := fight.OpponentOf(rec.FighterUUID); opp != nil {
			return opp.FighterUUID
		}
	}
	return rec.OpponentUUID
}

// LiveEventName prefers the authoritative event name
func LiveEventName(rec *database.PerspectiveRecord, fight *database.Fight) string {
	if IsInterconnected(rec, fight) {
		return fight.EventName
	}
	return rec.EventName
}

// LiveEventDate prefers the authoritative event date
func LiveEventDate(rec *database.PerspectiveRecord, fight *database.Fight) *time.Time {
	if IsInterconnected(rec, fight) {
		d := database.DateOnly(fight.EventDate)
		return &d
	}
	return rec.EventDate
}

// LiveResult derives the result from the fighter's authoritative participant
// row when linked, else returns the stored result
func LiveResult(rec *database.PerspectiveRecord, fight *database.Fight) database.Result {
	if IsInterconnected(rec, fight) {
		if part := fight.ParticipantFor(rec.FighterUUID); part != nil {
			return part.Result
		}
	}
	return rec.Result
}

// LiveMethod prefers the authoritative method
func LiveMethod(rec *database.PerspectiveRecord, fight *database.Fight) string {
	if IsInterconnected(rec, fight) {
		return fight.Method
	}
	return rec.Method
}

// LiveLocation prefers the authoritative event location
func LiveLocation(rec *database.PerspectiveRecord, fight *database.Fight) string {
	if IsInterconnected(rec, fight) {
		return fight.EventLocation
	}
	return rec.EventLocation
}

func liveMethodDetail(rec *database.PerspectiveRecord, fight *database.Fight) string {
	if IsInterconnected(rec, fight) {
		return fight.MethodDetail
	}
	return rec.MethodDetail
}

func liveEndingRound(rec *database.PerspectiveRecord, fight *database.Fight) int {
	if IsInterconnected(rec, fight) {
		return fight.EndingRound
	}
	return rec.EndingRound
}

func liveEndingTime(rec *database.PerspectiveRecord, fight *database.Fight) string {
	if IsInterconnected(rec, fight) {
		return fight.EndingTime
	}
	return rec.EndingTime
}

func liveTitleFight(rec *database.PerspectiveRecord, fight *database.Fight) bool {
	if IsInterconnected(rec, fight) {
		return fight.TitleFight
	}
	return rec.TitleFight
}
