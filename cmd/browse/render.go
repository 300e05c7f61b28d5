package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sahilchouksey/examace-vault/catalog"
	"github.com/sahilchouksey/examace-vault/navigator"
)

const crumbSeparator = " › "

type styles struct {
	Title    lipgloss.Style
	Crumbs   lipgloss.Style
	Header   lipgloss.Style
	Selected lipgloss.Style
	Normal   lipgloss.Style
	Dim      lipgloss.Style
	Error    lipgloss.Style
	Status   lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		Crumbs:   lipgloss.NewStyle().Foreground(lipgloss.Color("#A0A0A0")),
		Header:   lipgloss.NewStyle().Bold(true),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575")),
		Normal:   lipgloss.NewStyle(),
		Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")),
		Status:   lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#A0A0A0")),
	}
}

func breadcrumbs(snap navigator.Snapshot) string {
	labels := make([]string, 0, len(snap.Breadcrumbs))
	for _, c := range snap.Breadcrumbs {
		labels = append(labels, c.Label)
	}
	return strings.Join(labels, crumbSeparator)
}

// emptyText is shown for a level that loaded with zero rows. It is never
// used for a failed load.
func emptyText(kind catalog.Kind) string {
	return fmt.Sprintf("No %s found", kind.Plural())
}

func failedText(what, reason string) string {
	return fmt.Sprintf("Failed to load %s: %s", what, reason)
}

// renderPlain prints a snapshot for non-interactive output
func renderPlain(snap navigator.Snapshot) string {
	var sb strings.Builder
	if crumbs := breadcrumbs(snap); crumbs != "" {
		sb.WriteString(crumbs + "\n")
	}
	if snap.Header != "" {
		sb.WriteString(snap.Header + "\n")
	}

	switch {
	case snap.View == navigator.ViewHome:
		sb.WriteString("Run `browse ls /universities` to open the catalog\n")
	case snap.Items != nil:
		res := snap.Items
		switch res.Status {
		case catalog.StatusFailed:
			sb.WriteString(failedText(res.Kind.Plural(), res.Reason) + "\n")
		case catalog.StatusEmpty, catalog.StatusSkipped:
			sb.WriteString(emptyText(res.Kind) + "\n")
		default:
			for _, e := range res.Items() {
				sb.WriteString(fmt.Sprintf("%s  %s\n", e.ID, e.Label()))
			}
		}
	case snap.Resources != nil:
		res := snap.Resources
		switch res.Status {
		case catalog.StatusFailed:
			sb.WriteString(failedText("resources", res.Reason) + "\n")
		case catalog.StatusOK:
			for _, l := range res.Items {
				sb.WriteString(listingLine(l) + "\n")
			}
		default:
			sb.WriteString("No resources found\n")
		}
	}
	return sb.String()
}
