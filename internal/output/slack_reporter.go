// Package output formats reconciliation results for operator channels.
package output

import (
	"fmt"
	"log"
	"strings"

	"github.com/slack-go/slack"

	"github.com/cagebase/cagebase/internal/services"
	"github.com/cagebase/cagebase/internal/utils"
)

// maxIssueLines bounds how many individual issues a Slack digest lists
const maxIssueLines = 25

// SlackReporter posts reconciliation summaries and consistency digests to a
// Slack channel. Optional: a nil reporter is silently skipped by callers.
type SlackReporter struct {
	client  *slack.Client
	channel string
}

// NewSlackReporter creates a reporter, or nil when no token is configured
func NewSlackReporter(token, channel string) *SlackReporter {
	if token == "" || channel == "" {
		return nil
	}
	return &SlackReporter{
		client:  slack.New(token),
		channel: channel,
	}
}

// PostRunSummary posts one reconciliation run's counters
func (r *SlackReporter) PostRunSummary(stats *services.ReconcileStats) error {
	if r == nil {
		return nil
	}
	_, _, err := r.client.PostMessage(r.channel, slack.MsgOptionText(FormatRunStats(stats), false))
	if err != nil {
		return fmt.Errorf("posting run summary to %s: %w", r.channel, err)
	}
	log.Printf("Posted reconciliation summary to %s", r.channel)
	return nil
}

// PostIssueDigest posts a consistency-check digest
func (r *SlackReporter) PostIssueDigest(issues []services.Issue) error {
	if r == nil {
		return nil
	}
	_, _, err := r.client.PostMessage(r.channel, slack.MsgOptionText(FormatIssues(issues), false))
	if err != nil {
		return fmt.Errorf("posting issue digest to %s: %w", r.channel, err)
	}
	log.Printf("Posted consistency digest to %s (%d issues)", r.channel, len(issues))
	return nil
}

// FormatRunStats renders run counters as Slack mrkdwn
func FormatRunStats(stats *services.ReconcileStats) string {
	var sb strings.Builder

	header := ":link: *Reconciliation run*"
	if stats.DryRun {
		header = ":mag: *Reconciliation dry-run*"
	}
	sb.WriteString(header + "\n\n")
	sb.WriteString(fmt.Sprintf("Processed: %d | Linked: %d | Ambiguous: %d | Unmatched: %d | Errors: %d\n",
		stats.Processed, stats.Linked, stats.Ambiguous, stats.Unmatched, stats.Errors))
	sb.WriteString(fmt.Sprintf("Duration: %s\n", utils.FormatDuration(stats.Duration)))

	writeSampleSection(&sb, "Intended links", stats.IntendedLinks)
	writeSampleSection(&sb, "Ambiguities", stats.AmbiguousSamples)
	writeSampleSection(&sb, "Errors", stats.ErrorSamples)

	return sb.String()
}

// FormatIssues renders consistency issues as Slack mrkdwn, grouped by type
func FormatIssues(issues []services.Issue) string {
	if len(issues) == 0 {
		return ":white_check_mark: *Consistency check*: no issues found"
	}

	byType := make(map[services.IssueType]int)
	for _, issue := range issues {
		byType[issue.Type]++
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(":warning: *Consistency check*: %d issues\n\n", len(issues)))
	for _, t := range []services.IssueType{
		services.IssueMissingPerspective,
		services.IssueSurplusPerspective,
		services.IssueResultInconsistency,
		services.IssueInvalidLink,
		services.IssueStaleMirror,
	} {
		if n := byType[t]; n > 0 {
			sb.WriteString(fmt.Sprintf("• %s: %d\n", t, n))
		}
	}

	sb.WriteString("\n*Details*\n")
	for i, issue := range issues {
		if i >= maxIssueLines {
			sb.WriteString(fmt.Sprintf("… and %d more\n", len(issues)-maxIssueLines))
			break
		}
		line := fmt.Sprintf("• [%s] fight %s", issue.Type, issue.FightUUID)
		if issue.PerspectiveUUID != "" {
			line += " perspective " + issue.PerspectiveUUID
		}
		if issue.Field != "" {
			line += " field " + issue.Field
		}
		line += ": " + issue.Detail
		sb.WriteString(utils.TruncateText(line, 200) + "\n")
	}
	return sb.String()
}

func writeSampleSection(sb *strings.Builder, title string, samples []string) {
	if len(samples) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("\n*%s*\n", title))
	for _, s := range samples {
		sb.WriteString("• " + utils.TruncateText(s, 160) + "\n")
	}
}
