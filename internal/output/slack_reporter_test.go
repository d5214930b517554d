package output

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cagebase/cagebase/internal/services"
)

func TestNewSlackReporter_NilWithoutToken(t *testing.T) {
	if r := NewSlackReporter("", "#chan"); r != nil {
		t.Error("expected nil reporter without a token")
	}
	if r := NewSlackReporter("xoxb-token", ""); r != nil {
		t.Error("expected nil reporter without a channel")
	}
	if r := NewSlackReporter("xoxb-token", "#chan"); r == nil {
		t.Error("expected a reporter when both are set")
	}
}

func TestNilReporterIsSafe(t *testing.T) {
	var r *SlackReporter
	if err := r.PostRunSummary(&services.ReconcileStats{}); err != nil {
		t.Errorf("nil reporter must be a no-op, got %v", err)
	}
	if err := r.PostIssueDigest(nil); err != nil {
		t.Errorf("nil reporter must be a no-op, got %v", err)
	}
}

func TestFormatRunStats(t *testing.T) {
	msg := FormatRunStats(&services.ReconcileStats{
		Processed:    120,
		Linked:       100,
		Ambiguous:    5,
		Unmatched:    12,
		Errors:       3,
		Duration:     90 * time.Second,
		ErrorSamples: []string{"rec-1: unparseable event date \"unknown\""},
	})

	for _, want := range []string{
		"*Reconciliation run*",
		"Processed: 120 | Linked: 100 | Ambiguous: 5 | Unmatched: 12 | Errors: 3",
		"Duration: 1m 30s",
		"*Errors*",
		"rec-1",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "*Intended links*") {
		t.Error("empty sample sections must be omitted")
	}
}

func TestFormatRunStats_DryRunHeader(t *testing.T) {
	msg := FormatRunStats(&services.ReconcileStats{
		DryRun:        true,
		IntendedLinks: []string{"rec-1 -> fight-1 (tier event_name_date, similarity 0.91)"},
	})
	if !strings.Contains(msg, "dry-run") {
		t.Errorf("expected a dry-run header:\n%s", msg)
	}
	if !strings.Contains(msg, "*Intended links*") {
		t.Errorf("expected the intended-links section:\n%s", msg)
	}
}

func TestFormatIssues_Empty(t *testing.T) {
	msg := FormatIssues(nil)
	if !strings.Contains(msg, "no issues found") {
		t.Errorf("got %q", msg)
	}
}

func TestFormatIssues_GroupsAndDetails(t *testing.T) {
	issues := []services.Issue{
		{Type: services.IssueMissingPerspective, FightUUID: "fight-1", Detail: "expected 2 linked perspectives, found 1"},
		{Type: services.IssueStaleMirror, FightUUID: "fight-2", PerspectiveUUID: "rec-9", Field: "method", Detail: "stored \"KO\", authoritative \"TKO\""},
		{Type: services.IssueStaleMirror, FightUUID: "fight-3", PerspectiveUUID: "rec-4", Field: "event_date", Detail: "stored \"\", authoritative \"2017-07-29\""},
	}

	msg := FormatIssues(issues)
	for _, want := range []string{
		"3 issues",
		"missing_perspective: 1",
		"stale_mirror: 2",
		"fight-2 perspective rec-9 field method",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatIssues_CapsDetailLines(t *testing.T) {
	var issues []services.Issue
	for i := 0; i < maxIssueLines+10; i++ {
		issues = append(issues, services.Issue{
			Type:      services.IssueMissingPerspective,
			FightUUID: fmt.Sprintf("fight-%d", i),
			Detail:    "expected 2 linked perspectives, found 0",
		})
	}

	msg := FormatIssues(issues)
	if !strings.Contains(msg, "and 10 more") {
		t.Errorf("expected the overflow marker:\n%s", msg)
	}
	if got := strings.Count(msg, "• ["); got != maxIssueLines {
		t.Errorf("detail lines = %d, want %d", got, maxIssueLines)
	}
}
