package services

import (
	"context"
	"fmt"
	"log"

	"github.com/cagebase/cagebase/internal/database"
	"github.com/cagebase/cagebase/internal/utils"
)

// LegacyImport is one free-text fight-history entry from an external source.
// Validated before a perspective record is created from it.
type LegacyImport struct {
	FighterUUID  string `json:"fighter_uuid" validate:"required,uuid"`
	Result       string `json:"result" validate:"required,oneof=win loss draw no_contest"`
	OpponentName string `json:"opponent_name" validate:"required,max=255"`
	OpponentUUID string `json:"opponent_uuid" validate:"omitempty,uuid"`
	EventUUID    string `json:"event_uuid" validate:"omitempty,uuid"`
	EventName    string `json:"event_name" validate:"max=255"`
	EventDate    string `json:"event_date" validate:"max=100"` // free text, parsed best-effort
	Location     string `json:"location" validate:"max=255"`
	Method       string `json:"method" validate:"max=100"`
	MethodDetail string `json:"method_detail" validate:"max=255"`
	EndingRound  int    `json:"ending_round" validate:"min=0,max=12"`
	EndingTime   string `json:"ending_time" validate:"max=10"`
	WeightClass  string `json:"weight_class" validate:"max=100"`
	Organization string `json:"organization" validate:"max=100"`
}

// Importer creates unlinked legacy perspective records from external
// free-text entries. Created records are candidates for the next
// reconciliation run.
type Importer struct {
	perspectives *database.PerspectiveStore
}

// NewImporter creates an importer over the perspective store
func NewImporter(perspectives *database.PerspectiveStore) *Importer {
	return &Importer{perspectives: perspectives}
}

// ImportLegacy validates one entry and stores it as an unlinked perspective
// record. An unparseable date is kept as raw text rather than rejected; it
// surfaces later as a per-record matching error.
func (i *Importer) ImportLegacy(ctx context.Context, in LegacyImport) (*database.PerspectiveRecord, error) {
	if errs := Validate(in); errs != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, errs)
	}

	rec := &database.PerspectiveRecord{
		FighterUUID:   in.FighterUUID,
		Result:        database.Result(in.Result),
		OpponentName:  in.OpponentName,
		OpponentUUID:  in.OpponentUUID,
		EventUUID:     in.EventUUID,
		EventName:     in.EventName,
		EventLocation: in.Location,
		Method:        in.Method,
		MethodDetail:  in.MethodDetail,
		EndingRound:   in.EndingRound,
		EndingTime:    in.EndingTime,
		WeightClass:   in.WeightClass,
		Organization:  in.Organization,
		DataSource:    database.DataSourceLegacy,
	}

	if date, ok := utils.ParseLegacyDate(in.EventDate); ok {
		rec.EventDate = &date
	} else if in.EventDate != "" {
		rec.RawEventDate = in.EventDate
		log.Printf("Legacy import for fighter %s has unparseable event date %q, keeping raw text", in.FighterUUID, in.EventDate)
	}

	rec.QualityScore = ComputeQuality(rec)

	if err := i.perspectives.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("creating legacy perspective: %w", err)
	}
	return rec, nil
}
