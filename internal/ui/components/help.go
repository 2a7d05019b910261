// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"sort"
	"strings"

	"github.com/localmind/localmind-tui/internal/commands"
	"github.com/localmind/localmind-tui/internal/ui/styles"
)

// =============================================================================
// HELP OVERLAY
// =============================================================================

// helpCategoryOrder fixes the display order; anything unlisted sorts last.
var helpCategoryOrder = map[string]int{
	"Conversation":   0,
	"Knowledge Base": 1,
	"Navigation":     2,
	"Settings":       3,
}

// RenderHelp renders the command reference overlay from the registry.
func RenderHelp(theme *styles.Theme, registry *commands.Registry, width int) string {
	byCat := registry.ByCategory()

	categories := make([]string, 0, len(byCat))
	for cat := range byCat {
		categories = append(categories, cat)
	}
	sort.Slice(categories, func(i, j int) bool {
		oi, iok := helpCategoryOrder[categories[i]]
		oj, jok := helpCategoryOrder[categories[j]]
		if iok != jok {
			return iok
		}
		if oi != oj {
			return oi < oj
		}
		return categories[i] < categories[j]
	})

	var b strings.Builder
	b.WriteString(theme.OverlayTitle.Render("Commands"))
	b.WriteString("\n")

	for _, cat := range categories {
		cmds := byCat[cat]
		sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })

		b.WriteString("\n")
		b.WriteString(theme.ListTitle.Render(cat))
		b.WriteString("\n")
		for _, cmd := range cmds {
			usage := cmd.Usage
			if usage == "" {
				usage = cmd.Name
			}
			b.WriteString("  ")
			b.WriteString(theme.ShortcutKey.Render(padCommand(usage, 34)))
			b.WriteString(theme.ShortcutDesc.Render(cmd.Description))
			if len(cmd.Aliases) > 0 {
				b.WriteString(theme.ListMeta.Render(" (" + strings.Join(cmd.Aliases, ", ") + ")"))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(theme.ShortcutDesc.Render("Press esc to close"))

	box := theme.OverlayBox
	if width > 0 && width < 84 {
		box = box.Width(width - 4)
	}
	return box.Render(b.String())
}

func padCommand(s string, width int) string {
	if len(s) >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-len(s))
}
