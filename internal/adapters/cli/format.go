package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/ports/primary"
)

func okMark() string   { return color.New(color.FgGreen).Sprint("✓") }
func failMark() string { return color.New(color.FgRed).Sprint("✗") }

// StatusLabel colors a status for terminal output.
func StatusLabel(s models.Status) string {
	switch s {
	case models.StatusInProgress:
		return color.New(color.FgYellow).Sprint(s)
	case models.StatusPaused:
		return color.New(color.FgMagenta).Sprint(s)
	case models.StatusDone:
		return color.New(color.FgGreen).Sprint(s)
	default:
		return string(s)
	}
}

// StateLabel colors a process state for terminal output.
func StateLabel(s models.ProcessState) string {
	switch s {
	case models.ProcessMixed:
		return color.New(color.FgCyan).Sprint(s)
	default:
		return StatusLabel(models.Status(s))
	}
}

// PrintSyncBanner warns when the last save did not reach the store.
func PrintSyncBanner(out io.Writer, status primary.SyncStatus) {
	if !status.Degraded {
		return
	}
	fmt.Fprintf(out, "%s %s\n",
		color.New(color.FgRed, color.Bold).Sprint("⚠ Changes are not saved:"),
		status.LastError)
}

func executors(op *models.Operation) string {
	names := []string{}
	if op.Executor != "" {
		names = append(names, op.Executor)
	}
	for _, extra := range op.AdditionalExecutors {
		if strings.TrimSpace(extra) != "" {
			names = append(names, extra)
		}
	}
	return strings.Join(names, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
