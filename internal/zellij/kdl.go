package zellij

import (
	"regexp"
	"strings"
)

var (
	tabLinePattern  = regexp.MustCompile(`^\s*tab\b(?:\s+name="([^"]*)")?`)
	paneLinePattern = regexp.MustCompile(`^\s*pane\b(?:\s+name="([^"]*)")?`)
)

// parseKDLLayout parses zellij's plain-text `dump-layout` output (a
// restricted, predictable subset of KDL: tab/pane declarations only, no
// expressions or string interpolation) into the same normalised Layout
// shape the --json path produces. A general-purpose KDL parser does not
// appear anywhere in the example corpus, so this is a scoped line scanner
// rather than a full grammar.
func parseKDLLayout(text string) *Layout {
	layout := &Layout{}
	var currentTab *LayoutTab

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "}" {
			continue
		}

		if m := tabLinePattern.FindStringSubmatch(line); m != nil {
			layout.Tabs = append(layout.Tabs, LayoutTab{Name: m[1]})
			currentTab = &layout.Tabs[len(layout.Tabs)-1]
			continue
		}

		if m := paneLinePattern.FindStringSubmatch(line); m != nil && currentTab != nil {
			currentTab.Panes = append(currentTab.Panes, LayoutPane{Name: m[1]})
		}
	}

	return layout
}
