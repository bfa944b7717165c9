package main

import (
	"fmt"
	"io"

	"github.com/ndmpd/ndmpadm/internal/testtree"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func gentreeCmd(a *app) *cobra.Command {
	var (
		opts   = testtree.DefaultOptions()
		sizeKB int64
		quiet  bool
	)

	cmd := &cobra.Command{
		Use:    "gentree <dir>",
		Short:  "Generate a tree of random files to back up",
		Long:   "Creates a directory tree of random files with a known shape, for testing backups.",
		Args:   cobra.ExactArgs(1),
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.FileSize = sizeKB * 1024
			if err := opts.Validate(); err != nil {
				return fmt.Errorf("%w: %w", errUsage, err)
			}

			_, files := testtree.Count(opts)
			bar := newTreeProgressBar(a.stderr, int64(files), quiet)

			stats, err := testtree.Generate(args[0], opts, func(string) {
				bar.Add(1)
			})
			bar.Finish()
			if err != nil {
				return err
			}

			fmt.Fprintf(a.stdout, "Created %d directories, %d files, %s in %s\n",
				stats.Dirs, stats.Files, formatBytes(stats.Bytes), args[0])
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Depth, "depth", opts.Depth, "Directory levels below the root")
	cmd.Flags().IntVar(&opts.Folders, "folders", opts.Folders, "Subdirectories per directory")
	cmd.Flags().IntVar(&opts.Files, "files", opts.Files, "Files per directory")
	cmd.Flags().Int64Var(&sizeKB, "size", opts.FileSize/1024, "File size in KiB")
	cmd.Flags().StringVar(&opts.FolderName, "folder-name", opts.FolderName, "Subdirectory name prefix")
	cmd.Flags().StringVar(&opts.FileName, "file-name", opts.FileName, "File name prefix")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "No progress bar")

	return cmd
}

func newTreeProgressBar(w io.Writer, files int64, quiet bool) *progressbar.ProgressBar {
	if quiet {
		return progressbar.DefaultSilent(files, "generating")
	}
	return progressbar.NewOptions64(files,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("generating"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
