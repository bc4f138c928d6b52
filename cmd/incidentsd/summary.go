package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"incidents-dashboard/core/aggregate"
	"incidents-dashboard/core/appbootstrap"
)

var summaryFormat string

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	criticalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

type summaryReport struct {
	Collection  string         `json:"collection" yaml:"collection"`
	GeneratedAt time.Time      `json:"generated_at" yaml:"generated_at"`
	View        aggregate.View `json:"summary" yaml:"summary"`
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Load the incident collection once and print the dashboard indicators",
	RunE: func(cmd *cobra.Command, args []string) error {
		switch summaryFormat {
		case "text", "json", "yaml":
		default:
			return fmt.Errorf("unsupported format %q (use text, json or yaml)", summaryFormat)
		}
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()
		cfg.Janitor.Enabled = false

		rt, err := appbootstrap.NewRuntime(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		list, err := rt.Fetcher.LoadAll(cmd.Context())
		if err != nil {
			return err
		}
		report := summaryReport{
			Collection:  rt.Fetcher.Collection(),
			GeneratedAt: time.Now().In(cfg.Location()),
			View:        aggregate.Build(list, cfg.Location()),
		}
		return writeSummary(cmd.OutOrStdout(), summaryFormat, report)
	},
}

func writeSummary(w io.Writer, format string, report summaryReport) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	}
	_, err := io.WriteString(w, renderSummary(report))
	return err
}

func renderSummary(report summaryReport) string {
	var b strings.Builder
	c := report.View.Counters
	b.WriteString(headerStyle.Render("Incidencias · "+report.Collection) + "\n\n")
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Total:    "), countStyle.Render(fmt.Sprint(c.Total)))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Críticas: "), criticalStyle.Render(fmt.Sprint(c.Critical)))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Activas:  "), countStyle.Render(fmt.Sprint(c.Active)))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Resueltas:"), countStyle.Render(fmt.Sprint(c.Resolved)))

	if len(report.View.Dates) > 0 {
		b.WriteString("\n" + headerStyle.Render("Por fecha") + "\n")
		for _, p := range report.View.Dates {
			fmt.Fprintf(&b, "  %s  %d\n", p.Label, p.Count)
		}
	}
	writeBuckets(&b, "Por agente", report.View.Agents)
	writeBuckets(&b, "Por punto", report.View.Locations)
	return b.String()
}

func writeBuckets(b *strings.Builder, title string, buckets []aggregate.Bucket) {
	if len(buckets) == 0 {
		return
	}
	b.WriteString("\n" + headerStyle.Render(title) + "\n")
	for _, bk := range buckets {
		fmt.Fprintf(b, "  %-24s %d\n", bk.Name, bk.Count)
	}
}

func init() {
	summaryCmd.Flags().StringVarP(&summaryFormat, "format", "f", "text", "Output format (text, json, yaml)")
}
