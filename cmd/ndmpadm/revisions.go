package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/ndmpd/ndmpadm/internal/diff"
	"github.com/ndmpd/ndmpadm/internal/ndmpconf"
	"github.com/ndmpd/ndmpadm/internal/revision"
	"github.com/ndmpd/ndmpadm/pkg/models"
	"github.com/spf13/cobra"
)

func revisionsCmd(a *app) *cobra.Command {
	var showDiff bool

	cmd := &cobra.Command{
		Use:   "revisions [revision-id]",
		Short: "List stored config revisions or print one",
		Long: `Lists the stored revisions of the ndmpd configuration, or prints the content
of one revision. With --diff the revision is compared to the current file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.revisionContext(cmd.Context())
			defer cancel()

			store, err := a.openRevisions(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) > 0 {
				rev, err := store.Get(ctx, args[0])
				if err != nil {
					return err
				}
				data, err := store.Content(ctx, rev)
				if err != nil {
					return err
				}
				if showDiff {
					return a.diffRevision(data)
				}
				a.stdout.Write(data)
				return nil
			}

			return a.listRevisions(ctx, store)
		},
	}

	cmd.Flags().BoolVarP(&showDiff, "diff", "d", false, "Compare the revision with the current config")

	return cmd
}

// diffRevision prints the key changes that rolling back to data would make
func (a *app) diffRevision(data []byte) error {
	f, err := ndmpconf.Parse(bytes.NewReader(data))
	if err != nil {
		return err
	}

	current, err := ndmpconf.Read(a.cfg.NDMPD.ConfigFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	result := diff.Compare(current, f.Values())
	if !result.Changed() {
		fmt.Fprintln(a.stdout, "No changes")
		return nil
	}

	for _, c := range result.AllChanges() {
		switch c.Type {
		case models.ChangeAdded:
			fmt.Fprintf(a.stdout, "+ %s=%s\n", c.Key, c.NewValue)
		case models.ChangeDeleted:
			fmt.Fprintf(a.stdout, "- %s=%s\n", c.Key, c.OldValue)
		case models.ChangeModified:
			fmt.Fprintf(a.stdout, "~ %s: %s -> %s\n", c.Key, c.OldValue, c.NewValue)
		}
	}
	return nil
}

func (a *app) listRevisions(ctx context.Context, store *revision.Store) error {
	revs, err := store.List(ctx)
	if err != nil {
		return err
	}

	if len(revs) == 0 {
		fmt.Fprintln(a.stdout, "No revisions found")
		return nil
	}

	fmt.Fprintf(a.stdout, "%-35s  %-19s  %9s  %9s  %s\n", "ID", "TIMESTAMP", "SIZE", "STORED", "REASON")
	for _, rev := range revs {
		reason := rev.Reason
		if len(reason) > 40 {
			reason = reason[:37] + "..."
		}
		fmt.Fprintf(a.stdout, "%-35s  %-19s  %9s  %9s  %s\n",
			rev.ID,
			rev.Timestamp.Local().Format("2006-01-02 15:04:05"),
			formatBytes(rev.Size),
			formatBytes(rev.StoredSize),
			reason,
		)
	}

	fmt.Fprintf(a.stdout, "\nTotal: %d revisions\n", len(revs))
	return nil
}

func rollbackCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rollback <revision-id>",
		Short: "Restore the ndmpd configuration from a revision",
		Long:  "Replaces the ndmpd configuration with a stored revision. The current file is saved as a new revision first.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.revisionContext(cmd.Context())
			defer cancel()

			store, err := a.openRevisions(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			rev, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}
			data, err := store.Content(ctx, rev)
			if err != nil {
				return err
			}

			path := a.cfg.NDMPD.ConfigFile
			if current, err := os.ReadFile(path); err == nil {
				if _, err := store.Save(ctx, current, "before rollback to "+rev.ID); err != nil {
					slog.Warn("failed to save revision", "err", err)
				}
			}

			if err := ndmpconf.WriteAll(path, data); err != nil {
				slog.Debug("rollback write failed", "path", path, "err", err)
				fmt.Fprintln(a.stdout, "Write config file fail")
				return errReported
			}

			fmt.Fprintf(a.stdout, "Restored %s from revision %s\n", path, rev.ID)
			return nil
		},
	}
}

func (a *app) openRevisions(ctx context.Context) (*revision.Store, error) {
	if !a.cfg.Revisions.Enabled {
		return nil, fmt.Errorf("revisions are disabled (revisions.enabled in %s)", a.settingsPath)
	}
	return revision.Open(ctx, a.cfg.Revisions)
}

// revisionContext bounds one revision operation by revisions.timeout
func (a *app) revisionContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if t := a.cfg.Revisions.Timeout; t > 0 {
		return context.WithTimeout(ctx, t)
	}
	return context.WithCancel(ctx)
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
