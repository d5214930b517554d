package services

import "errors"

// Sentinel errors for the reconciliation engine. Batch callers tally these
// per record; they are never fatal to a run.
var (
	// ErrAmbiguousMatch means a matcher tier found more than one equally
	// qualified candidate fight. Deliberately left unresolved.
	ErrAmbiguousMatch = errors.New("ambiguous match: more than one qualified candidate")

	// ErrNoMatch means every matcher tier was exhausted without a candidate.
	ErrNoMatch = errors.New("no matching authoritative fight")

	// ErrBrokenLink means a perspective record references a fight that no
	// longer resolves. Read paths treat the record as unlinked.
	ErrBrokenLink = errors.New("linked fight no longer resolves")

	// ErrMalformedRecord means a perspective record cannot be processed,
	// typically an unparseable event date.
	ErrMalformedRecord = errors.New("malformed perspective record")
)
