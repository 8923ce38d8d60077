package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"jobportal/internal/database"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Italic(true)
)

type entityCount struct {
	Name  string
	Count int64
}

func newStatsCmd(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show row counts per entity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			counts, err := collectCounts(db)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderCounts(counts))
			return nil
		},
	}
}

func collectCounts(db *gorm.DB) ([]entityCount, error) {
	entities := []struct {
		name  string
		model any
	}{
		{"users", &database.User{}},
		{"companies", &database.Company{}},
		{"jobs", &database.Job{}},
		{"applications", &database.Application{}},
		{"saved jobs", &database.SavedJob{}},
	}

	counts := make([]entityCount, 0, len(entities)+3)
	for _, e := range entities {
		var n int64
		if err := db.Model(e.model).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", e.name, err)
		}
		counts = append(counts, entityCount{Name: e.name, Count: n})
	}

	for _, status := range []string{database.StatusPending, database.StatusAccepted, database.StatusRejected} {
		var n int64
		if err := db.Model(&database.Application{}).Where("status = ?", status).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count %s applications: %w", status, err)
		}
		counts = append(counts, entityCount{Name: "  " + status, Count: n})
	}
	return counts, nil
}

func renderCounts(counts []entityCount) string {
	width := 0
	for _, c := range counts {
		width = max(width, lipgloss.Width(c.Name))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Job portal statistics"))
	b.WriteString("\n")
	label := labelStyle.Width(width + 2)
	for _, c := range counts {
		b.WriteString(label.Render(c.Name))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%d", c.Count)))
		b.WriteString("\n")
	}
	return b.String()
}
