package llm

import (
	"encoding/json"
	"strings"
)

// buildPrompt renders the shared summarisation prompt all three HTTP
// providers send, truncating the diff to diffCap characters (4000 for the
// hosted providers, 2000 for Ollama's smaller context window).
func buildPrompt(sc *SessionContext, diffCap int) string {
	var b strings.Builder

	b.WriteString("You are a developer assistant helping to summarize a coding session. ")
	b.WriteString("Based on the following context, generate a concise summary of what was accomplished.\n\n")

	b.WriteString("## Pane: " + sc.PaneName + "\n\n")

	if sc.GitBranch != "" {
		b.WriteString("## Git Branch: " + sc.GitBranch + "\n\n")
	}

	if sc.Cwd != "" {
		b.WriteString("## Working Directory: " + sc.Cwd + "\n\n")
	}

	if len(sc.ShellHistory) > 0 {
		b.WriteString("## Recent Commands:\n```\n")
		for _, cmd := range sc.ShellHistory {
			b.WriteString(cmd)
			b.WriteString("\n")
		}
		b.WriteString("```\n\n")
	}

	if sc.GitDiff != "" {
		b.WriteString("## Git Diff:\n```diff\n")
		if len(sc.GitDiff) > diffCap {
			b.WriteString(sc.GitDiff[:diffCap])
			b.WriteString("\n... (truncated)\n")
		} else {
			b.WriteString(sc.GitDiff)
		}
		b.WriteString("```\n\n")
	}

	if len(sc.ActiveFiles) > 0 {
		b.WriteString("## Active Files:\n")
		for _, f := range sc.ActiveFiles {
			b.WriteString("- " + f + "\n")
		}
		b.WriteString("\n")
	}

	if sc.ExistingSummary != "" {
		b.WriteString("## Previous Summary:\n" + sc.ExistingSummary + "\n\n")
	}

	b.WriteString("## Instructions:\n")
	b.WriteString("1. Generate a brief (1-2 sentence) summary of what was accomplished\n")
	b.WriteString("2. Suggest whether this is a 'milestone', 'checkpoint', or 'exploration'\n")
	b.WriteString("3. List any key files that were modified\n\n")
	b.WriteString("Respond in this exact JSON format:\n")
	b.WriteString(`{"summary": "...", "type": "checkpoint|milestone|exploration", "key_files": ["file1.go", "file2.go"]}`)

	return b.String()
}

// summaryJSON is the JSON object shape every provider asks the model for.
type summaryJSON struct {
	Summary  string   `json:"summary"`
	Type     string   `json:"type"`
	KeyFiles []string `json:"key_files"`
}

// parseSummaryResponse tries to decode text as a summaryJSON object; when
// it isn't valid JSON of that shape, the raw text becomes the summary with
// no suggested type or key files.
func parseSummaryResponse(text string) (summary, suggestedType string, keyFiles []string) {
	var parsed summaryJSON
	if err := json.Unmarshal([]byte(text), &parsed); err == nil && parsed.Summary != "" {
		return parsed.Summary, parsed.Type, parsed.KeyFiles
	}
	return text, "", nil
}
