package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt_IncludesPaneCwdAndBranch(t *testing.T) {
	sc := NewSessionContext("test-pane").WithCwd("/home/user/project").WithGitBranch("main")
	prompt := buildPrompt(sc, 4000)

	assert.Contains(t, prompt, "test-pane")
	assert.Contains(t, prompt, "/home/user/project")
	assert.Contains(t, prompt, "main")
	assert.Contains(t, prompt, "JSON format")
}

func TestBuildPrompt_IncludesShellHistory(t *testing.T) {
	sc := NewSessionContext("build").WithShellHistory([]string{"go build", "go test"})
	prompt := buildPrompt(sc, 4000)

	assert.Contains(t, prompt, "go build")
	assert.Contains(t, prompt, "go test")
}

func TestBuildPrompt_TruncatesLargeDiff(t *testing.T) {
	sc := NewSessionContext("test").WithGitDiff(strings.Repeat("a", 5000))
	prompt := buildPrompt(sc, 4000)

	assert.Contains(t, prompt, "(truncated)")
	assert.Less(t, len(prompt), 6000)
}

func TestParseSummaryResponse_ValidJSON(t *testing.T) {
	summary, suggestedType, keyFiles := parseSummaryResponse(`{"summary": "did a thing", "type": "milestone", "key_files": ["a.go"]}`)
	assert.Equal(t, "did a thing", summary)
	assert.Equal(t, "milestone", suggestedType)
	assert.Equal(t, []string{"a.go"}, keyFiles)
}

func TestParseSummaryResponse_FallsBackToRawText(t *testing.T) {
	summary, suggestedType, keyFiles := parseSummaryResponse("not json at all")
	assert.Equal(t, "not json at all", summary)
	assert.Empty(t, suggestedType)
	assert.Nil(t, keyFiles)
}
