package services

import (
	"context"
	"fmt"
	"log"

	"github.com/cagebase/cagebase/internal/database"
	"github.com/cagebase/cagebase/internal/names"
)

// Matcher links unlinked perspective records to authoritative fights using a
// tiered search: explicit event reference first, then event name plus date,
// then date alone. A tier either produces exactly one qualified candidate or
// the matcher refuses to guess.
type Matcher struct {
	fights   *database.FightStore
	comparer *names.Comparer
}

// NewMatcher creates a matcher over the given fight store
func NewMatcher(fights *database.FightStore, comparer *names.Comparer) *Matcher {
	if comparer == nil {
		comparer = names.NewComparer(names.DefaultThreshold, nil)
	}
	return &Matcher{fights: fights, comparer: comparer}
}

// candidate is one fight that survived participant and opponent-name filtering
type candidate struct {
	fight      database.Fight
	similarity float64
}

// Match resolves one unlinked perspective record to at most one authoritative
// fight. Ambiguity and no-match are reported in the outcome status; errors are
// reserved for malformed records and store failures.
func (m *Matcher) Match(ctx context.Context, rec *database.PerspectiveRecord) (*MatchOutcome, error) {
	if rec.Linked() {
		return nil, fmt.Errorf("record %s is already linked to fight %s", rec.UUID, rec.FightUUID)
	}
	if rec.OpponentName == "" && rec.OpponentUUID == "" {
		return nil, fmt.Errorf("%w: record %s has no opponent name or identifier", ErrMalformedRecord, rec.UUID)
	}

	// Tier 1: explicit event reference
	if rec.EventUUID != "" {
		fights, err := m.fights.FindByEventUUID(ctx, rec.EventUUID)
		if err != nil {
			return nil, fmt.Errorf("event lookup for record %s: %w", rec.UUID, err)
		}
		if outcome := m.decide(rec, fights, TierEventRef); outcome != nil {
			return outcome, nil
		}
	}

	// Tiers 2 and 3 need a parseable event date
	if rec.EventDate == nil {
		if rec.EventUUID != "" {
			// Event reference was present but yielded nothing; without a date
			// there is nowhere else to look
			return &MatchOutcome{Status: MatchStatusUnmatched, Reason: "no candidate in referenced event and no event date"}, nil
		}
		return nil, fmt.Errorf("%w: record %s has no parseable event date (raw: %q)", ErrMalformedRecord, rec.UUID, rec.RawEventDate)
	}

	// Tier 2: event name plus date
	if rec.EventName != "" {
		fights, err := m.fights.FindByEventAndDate(ctx, rec.EventName, *rec.EventDate)
		if err != nil {
			return nil, fmt.Errorf("event-name lookup for record %s: %w", rec.UUID, err)
		}
		if outcome := m.decide(rec, fights, TierEventNameDate); outcome != nil {
			return outcome, nil
		}
	}

	// Tier 3: date alone, tolerating divergent event naming across sources
	fights, err := m.fights.FindByDate(ctx, *rec.EventDate)
	if err != nil {
		return nil, fmt.Errorf("date lookup for record %s: %w", rec.UUID, err)
	}
	if outcome := m.decide(rec, fights, TierDateOnly); outcome != nil {
		return outcome, nil
	}

	return &MatchOutcome{Status: MatchStatusUnmatched, Reason: "all tiers exhausted"}, nil
}

// decide filters the tier's fights down to qualified candidates and renders a
// verdict. Returns nil when the tier found nothing, letting the next tier run.
func (m *Matcher) decide(rec *database.PerspectiveRecord, fights []database.Fight, tier MatchTier) *MatchOutcome {
	candidates := m.qualify(rec, fights)
	switch len(candidates) {
	case 0:
		return nil
	case 1:
		c := candidates[0]
		return &MatchOutcome{
			Status:     MatchStatusMatched,
			Fight:      &c.fight,
			FightUUID:  c.fight.UUID,
			Tier:       tier,
			Similarity: c.similarity,
			Candidates: 1,
		}
	default:
		uuids := make([]string, len(candidates))
		for i, c := range candidates {
			uuids[i] = c.fight.UUID
		}
		log.Printf("Ambiguous match for perspective %s at tier %s: %d candidates %v", rec.UUID, tier, len(candidates), uuids)
		return &MatchOutcome{
			Status:     MatchStatusAmbiguous,
			Tier:       tier,
			Candidates: len(candidates),
			Reason:     fmt.Sprintf("%d equally qualified candidates at tier %s", len(candidates), tier),
		}
	}
}

// qualify keeps fights whose two participants include the perspective fighter
// and an opponent that satisfies the name test. Fights where the perspective
// fighter is absent are invalid candidates and excluded before counting.
func (m *Matcher) qualify(rec *database.PerspectiveRecord, fights []database.Fight) []candidate {
	var out []candidate
	for _, f := range fights {
		if len(f.Participants) != 2 {
			continue
		}
		if f.ParticipantFor(rec.FighterUUID) == nil {
			continue
		}
		opp := f.OpponentOf(rec.FighterUUID)
		if opp == nil {
			continue
		}
		if rec.OpponentUUID != "" && rec.OpponentUUID == opp.FighterUUID {
			out = append(out, candidate{fight: f, similarity: 1.0})
			continue
		}
		if rec.OpponentName != "" && m.comparer.Match(rec.OpponentName, opp.FighterName) {
			out = append(out, candidate{fight: f, similarity: m.comparer.Similarity(rec.OpponentName, opp.FighterName)})
		}
	}
	return out
}
