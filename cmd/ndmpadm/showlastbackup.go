package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/ndmpd/ndmpadm/internal/dumpdates"
	"github.com/ndmpd/ndmpadm/pkg/models"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func showlastbackupCmd(a *app) *cobra.Command {
	var style string

	cmd := &cobra.Command{
		Use:   "showlastbackup",
		Short: "Show the backup history",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if style != "plain" && style != "table" {
				return fmt.Errorf("%w: unknown style %q", errUsage, style)
			}

			r, err := dumpdates.Open(a.cfg.NDMPD.DumpdatesFile)
			if errors.Is(err, dumpdates.ErrMissing) {
				fmt.Fprintln(a.stdout, "No backup history found")
				return nil
			}
			if err != nil {
				return err
			}
			defer r.Close()

			var records []models.BackupRecord
			for rec := range r.Records() {
				records = append(records, rec)
			}
			if err := r.Err(); err != nil {
				return err
			}
			if n := r.Skipped(); n > 0 {
				slog.Debug("skipped malformed dumpdates lines", "count", n)
			}

			if style == "table" {
				fmt.Fprintln(a.stdout, backupTable(records))
				return nil
			}

			fmt.Fprintln(a.stdout, "Backup Path\t\t\tBackup Level\tBackup Date")
			for _, rec := range records {
				fmt.Fprintf(a.stdout, "%s\t\t\t%s\t%s\n", rec.Path, rec.Level, rec.Date)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&style, "style", "plain", "Output style: plain or table")

	return cmd
}

func backupTable(records []models.BackupRecord) *table.Table {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("Backup Path", "Backup Level", "Backup Date").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, rec := range records {
		t.Row(rec.Path, rec.Level, rec.Date)
	}
	return t
}
