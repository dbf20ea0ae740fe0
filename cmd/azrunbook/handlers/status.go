package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/imamik/azrunbook/internal/orchestration"
)

var (
	statusColorGreen = lipgloss.Color("#22c55e")
	statusColorBlue  = lipgloss.Color("#3b82f6")
	statusColorDim   = lipgloss.Color("#6b7280")
	statusColorWhite = lipgloss.Color("#f9fafb")
)

var (
	statusTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(statusColorWhite)
	statusDoneStyle  = lipgloss.NewStyle().Foreground(statusColorGreen)
	statusNextStyle  = lipgloss.NewStyle().Bold(true).Foreground(statusColorBlue)
	statusDimStyle   = lipgloss.NewStyle().Foreground(statusColorDim)
)

// isInteractiveTTY is replaced in tests.
var isInteractiveTTY = func() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// Status prints the recorded state of every step.
func Status(ctx context.Context, out io.Writer, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	r, err := offlineReconciler(ctx, cfg)
	if err != nil {
		return err
	}
	statuses, err := r.Status(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(out, renderStatus(cfg.Name, statuses, time.Now(), isInteractiveTTY()))
	return nil
}

// renderStatus formats step statuses. Styles are only applied when
// styled is true so piped output stays plain.
func renderStatus(name string, statuses []orchestration.StepStatus, now time.Time, styled bool) string {
	render := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	done := 0
	for _, s := range statuses {
		if s.Complete {
			done++
		}
	}

	var b strings.Builder
	b.WriteString(render(statusTitleStyle, fmt.Sprintf("azrunbook status: %s (%d/%d steps complete)", name, done, len(statuses))))
	b.WriteString("\n\n")

	next := true
	for _, s := range statuses {
		id := fmt.Sprintf("%-16s", s.ID)
		switch {
		case s.Complete:
			line := fmt.Sprintf("  [x] %s %s", id, humanize.RelTime(s.CompletedAt, now, "ago", "from now"))
			if s.Duration > 0 {
				line += fmt.Sprintf(" (took %v)", s.Duration.Round(time.Second))
			}
			b.WriteString(render(statusDoneStyle, line))
			if outputs := formatOutputs(s.Outputs); outputs != "" {
				b.WriteString(" " + render(statusDimStyle, outputs))
			}
		case next:
			b.WriteString(render(statusNextStyle, fmt.Sprintf("  [ ] %s %s  <- next", id, s.Description)))
			next = false
		default:
			b.WriteString(render(statusDimStyle, fmt.Sprintf("  [ ] %s %s", id, s.Description)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatOutputs(outputs map[string]string) string {
	if len(outputs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(outputs))
	for k := range outputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + outputs[k]
	}
	return strings.Join(parts, " ")
}
