// Package testtree generates directory trees of random files, used to
// exercise backups of a known shape.
package testtree

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ndmpd/ndmpadm/pkg/models"
)

// Options describes the shape of a generated tree
type Options struct {
	Depth      int    // Directory levels below the root
	Folders    int    // Subdirectories per directory
	Files      int    // Files per directory
	FileSize   int64  // Bytes per file
	FolderName string // Subdirectory name prefix
	FileName   string // File name prefix
}

// DefaultOptions returns a two level tree with two 1 KiB files per directory
func DefaultOptions() Options {
	return Options{
		Depth:      2,
		Folders:    2,
		Files:      2,
		FileSize:   1024,
		FolderName: "dir",
		FileName:   "file",
	}
}

// Validate checks the options
func (o Options) Validate() error {
	if o.Depth < 0 || o.Folders < 0 || o.Files < 0 || o.FileSize < 0 {
		return fmt.Errorf("tree options must not be negative: %+v", o)
	}
	if o.FolderName == "" || o.FileName == "" {
		return fmt.Errorf("folder and file name prefixes must be set")
	}
	return nil
}

// Count returns how many directories (root included) and files Generate
// will create for opts
func Count(opts Options) (dirs, files int) {
	level := 1
	for d := 0; d <= opts.Depth; d++ {
		dirs += level
		if d < opts.Depth {
			files += level * opts.Files
		}
		level *= opts.Folders
	}
	return dirs, files
}

// Generate creates the tree under root. Every directory down to Depth gets
// Files files named <FileName>1..N and Folders subdirectories named
// <FolderName><i>_<level>. The subdirectories of the last level are created
// empty. progress, if not nil, is called after each file.
func Generate(root string, opts Options, progress func(path string)) (models.TreeStats, error) {
	var stats models.TreeStats
	if err := opts.Validate(); err != nil {
		return stats, err
	}

	g := &generator{opts: opts, progress: progress, stats: &stats}
	err := g.create(root, 1)
	return stats, err
}

type generator struct {
	opts     Options
	progress func(string)
	stats    *models.TreeStats
}

func (g *generator) create(dir string, level int) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	g.stats.Dirs++

	if level > g.opts.Depth {
		return nil
	}

	for i := 1; i <= g.opts.Files; i++ {
		path := filepath.Join(dir, fmt.Sprintf("%s%d", g.opts.FileName, i))
		if err := g.writeFile(path); err != nil {
			return err
		}
	}

	for i := 1; i <= g.opts.Folders; i++ {
		sub := filepath.Join(dir, fmt.Sprintf("%s%d_%d", g.opts.FolderName, i, level))
		if err := g.create(sub, level+1); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) writeFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	n, err := io.CopyN(f, rand.Reader, g.opts.FileSize)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	g.stats.Files++
	g.stats.Bytes += n
	if g.progress != nil {
		g.progress(path)
	}
	return nil
}
