// Package output renders an intent history in the five formats Perth's CLI
// supports: text, json, json-compact, markdown, and context (the
// LLM-prompt-friendly narrative). Ported from original_source/src/output.rs.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/delorenj/perth/internal/types"
)

// Format identifies one of the five supported renderings.
type Format string

const (
	FormatText        Format = "text"
	FormatJSON        Format = "json"
	FormatJSONCompact Format = "json-compact"
	FormatMarkdown    Format = "markdown"
	FormatContext     Format = "context"
)

// ParseFormat defaults to FormatText for anything unrecognised.
func ParseFormat(s string) Format {
	switch Format(s) {
	case FormatJSON, FormatJSONCompact, FormatMarkdown, FormatContext:
		return Format(s)
	default:
		return FormatText
	}
}

// UseColor reports whether the text format should emit ANSI colour: stdout
// is a terminal and NO_COLOR is unset, per spec.md §6.
func UseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// Render dispatches entries to the formatter named by format.
func Render(format Format, entries []*types.IntentEntry, paneName string, useColor bool) (string, error) {
	switch format {
	case FormatJSON:
		return renderJSON(entries, true)
	case FormatJSONCompact:
		return renderJSON(entries, false)
	case FormatMarkdown:
		return renderMarkdown(entries, paneName), nil
	case FormatContext:
		return renderContext(entries, paneName), nil
	default:
		return renderText(entries, paneName, useColor), nil
	}
}

type historyDocument struct {
	SchemaVersion string               `json:"schema_version"`
	Pane          string               `json:"pane"`
	Entries       []*types.IntentEntry `json:"entries"`
}

func renderJSON(entries []*types.IntentEntry, pretty bool) (string, error) {
	doc := historyDocument{SchemaVersion: "2.0", Entries: entries}
	if doc.Entries == nil {
		doc.Entries = []*types.IntentEntry{}
	}
	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return "", fmt.Errorf("marshal history: %w", err)
	}
	return string(data), nil
}

const (
	ansiReset   = "\x1b[0m"
	ansiDim     = "\x1b[2m"
	ansiYellow  = "\x1b[33;1m"
	ansiGreen   = "\x1b[32m"
	ansiCyan    = "\x1b[36m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35;1m"
)

func colorize(useColor bool, code, s string) string {
	if !useColor {
		return s
	}
	return code + s + ansiReset
}

func typeBadge(t types.IntentType, useColor bool) string {
	icon, label, code := "●", "CHECKPOINT", ansiGreen
	switch t {
	case types.IntentTypeMilestone:
		icon, label, code = "★", "MILESTONE", ansiYellow
	case types.IntentTypeExploration:
		icon, label, code = "◈", "EXPLORATION", ansiCyan
	}
	return colorize(useColor, code, fmt.Sprintf("[%s %s]", icon, label))
}

func sourceBadge(s types.IntentSource, useColor bool) string {
	switch s {
	case types.IntentSourceAutomated:
		return colorize(useColor, ansiBlue, "[AUTO]")
	case types.IntentSourceAgent:
		return colorize(useColor, ansiMagenta, "[AGENT]")
	default:
		return ""
	}
}

func renderText(entries []*types.IntentEntry, paneName string, useColor bool) string {
	if len(entries) == 0 {
		return fmt.Sprintf("No history for pane '%s'", paneName)
	}

	var blocks []string
	for _, e := range entries {
		var lines []string

		badge := typeBadge(e.EntryType, useColor)
		source := sourceBadge(e.Source, useColor)
		ts := e.Timestamp.Local().Format("2006-01-02 15:04")
		if useColor {
			ts = ansiDim + ts + ansiReset
		}
		if source == "" {
			lines = append(lines, fmt.Sprintf("%s %s", badge, ts))
		} else {
			lines = append(lines, fmt.Sprintf("%s %s %s", badge, source, ts))
		}

		lines = append(lines, "  "+e.Summary)

		for _, artifact := range e.Artifacts {
			arrow := "->"
			if useColor {
				arrow = colorize(useColor, ansiDim, "→")
				lines = append(lines, fmt.Sprintf("  %s %s", arrow, colorize(useColor, ansiDim, artifact)))
			} else {
				lines = append(lines, fmt.Sprintf("  %s %s", arrow, artifact))
			}
		}

		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

func renderMarkdown(entries []*types.IntentEntry, paneName string) string {
	var b strings.Builder

	fmt.Fprintln(&b, "---")
	fmt.Fprintf(&b, "pane: %s\n", paneName)
	fmt.Fprintf(&b, "entries: %d\n", len(entries))
	if len(entries) > 0 {
		fmt.Fprintf(&b, "latest: %s\n", entries[0].Timestamp.Format("2006-01-02"))
		fmt.Fprintf(&b, "earliest: %s\n", entries[len(entries)-1].Timestamp.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "exported: %s\n", time.Now().Format("2006-01-02T15:04:05"))
	fmt.Fprintln(&b, "---")
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "# Session: %s\n\n", paneName)

	if len(entries) == 0 {
		b.WriteString("*No entries recorded.*")
		return b.String()
	}

	currentDate := ""
	for _, e := range entries {
		date := e.Timestamp.Format("2006-01-02")
		if date != currentDate {
			if currentDate != "" {
				fmt.Fprintln(&b)
			}
			fmt.Fprintf(&b, "## %s\n\n", date)
			currentDate = date
		}

		emoji := "📍"
		switch e.EntryType {
		case types.IntentTypeMilestone:
			emoji = "🌟"
		case types.IntentTypeExploration:
			emoji = "🔍"
		}
		sourceTag := ""
		switch e.Source {
		case types.IntentSourceAutomated:
			sourceTag = " ⚡"
		case types.IntentSourceAgent:
			sourceTag = " 🤖"
		}

		fmt.Fprintf(&b, "- %s%s **%s** %s\n", emoji, sourceTag, e.Timestamp.Format("15:04"), e.Summary)
		for _, artifact := range e.Artifacts {
			fmt.Fprintf(&b, "  - `%s`\n", artifact)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

const (
	recentActivityCap = 5
	milestoneCap      = 3
)

func renderContext(entries []*types.IntentEntry, paneName string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Session Context: %s\n\n", paneName)

	if len(entries) == 0 {
		b.WriteString("This is a new session with no prior history.\n\n")
		b.WriteString("### Recommended First Steps\n")
		b.WriteString("1. Review the current codebase state\n")
		b.WriteString("2. Identify the main objective for this session\n")
		b.WriteString("3. Log your initial intent with `perth pane log`")
		return b.String()
	}

	milestoneCount, agentCount, humanCount := 0, 0, 0
	for _, e := range entries {
		if e.EntryType == types.IntentTypeMilestone {
			milestoneCount++
		}
		switch e.Source {
		case types.IntentSourceAgent:
			agentCount++
		case types.IntentSourceManual:
			humanCount++
		}
	}

	fmt.Fprintln(&b, "### Session Overview")
	fmt.Fprintf(&b, "- Total entries: %d (%d milestones)\n", len(entries), milestoneCount)
	if agentCount > 0 {
		fmt.Fprintf(&b, "- Agent contributions: %d entries\n", agentCount)
	}
	if humanCount > 0 {
		fmt.Fprintf(&b, "- Human entries: %d\n", humanCount)
	}

	newest, oldest := entries[0], entries[len(entries)-1]
	duration := newest.Timestamp.Sub(oldest.Timestamp)
	if hours := int(duration.Hours()); hours > 0 {
		fmt.Fprintf(&b, "- Session duration: %dh %dm\n", hours, int(duration.Minutes())%60)
	} else if mins := int(duration.Minutes()); mins > 0 {
		fmt.Fprintf(&b, "- Session duration: %dm\n", mins)
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "### Recent Activity")
	recent := entries
	if len(recent) > recentActivityCap {
		recent = recent[:recentActivityCap]
	}
	for _, e := range recent {
		marker := "●"
		switch e.EntryType {
		case types.IntentTypeMilestone:
			marker = "🌟 MILESTONE"
		case types.IntentTypeExploration:
			marker = "🔍"
		}
		sourceMarker := ""
		switch e.Source {
		case types.IntentSourceAgent:
			sourceMarker = " [agent]"
		case types.IntentSourceAutomated:
			sourceMarker = " [auto]"
		}
		fmt.Fprintf(&b, "- %s (%s%s) %s\n", marker, e.Timestamp.Format("15:04"), sourceMarker, e.Summary)
		if e.EntryType == types.IntentTypeMilestone {
			for _, artifact := range e.Artifacts {
				fmt.Fprintf(&b, "  - `%s`\n", artifact)
			}
		}
	}
	fmt.Fprintln(&b)

	last := entries[0]
	fmt.Fprintln(&b, "### Current State")
	fmt.Fprintf(&b, "Last checkpoint: **%s**\n", last.Summary)
	if len(last.Artifacts) > 0 {
		fmt.Fprintf(&b, "Key files: %s\n", strings.Join(last.Artifacts, ", "))
	}
	fmt.Fprintln(&b)

	var milestones []*types.IntentEntry
	for _, e := range entries {
		if e.EntryType == types.IntentTypeMilestone {
			milestones = append(milestones, e)
			if len(milestones) == milestoneCap {
				break
			}
		}
	}
	if len(milestones) > 0 {
		fmt.Fprintln(&b, "### Key Milestones")
		for _, m := range milestones {
			fmt.Fprintf(&b, "- %s (%s)\n", m.Summary, m.Timestamp.Format("2006-01-02"))
		}
		fmt.Fprintln(&b)
	}

	fmt.Fprintln(&b, "### Suggested Next Steps")
	switch last.EntryType {
	case types.IntentTypeExploration:
		b.WriteString("1. Review findings from the exploration\n")
		b.WriteString("2. Decide on implementation approach\n")
		b.WriteString("3. Log a milestone when committing to a direction")
	case types.IntentTypeMilestone:
		b.WriteString("1. Verify the milestone is stable\n")
		b.WriteString("2. Identify the next feature or fix to tackle\n")
		b.WriteString("3. Log a checkpoint to track progress")
	default:
		b.WriteString("1. Continue from the last checkpoint\n")
		b.WriteString("2. Log progress as you work\n")
		b.WriteString("3. Mark significant achievements as milestones")
	}

	return b.String()
}
