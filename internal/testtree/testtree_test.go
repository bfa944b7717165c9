package testtree

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateDefault(t *testing.T) {
	root := filepath.Join(t.TempDir(), "tree")

	var calls int
	stats, err := Generate(root, DefaultOptions(), func(string) { calls++ })
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if stats.Dirs != 7 || stats.Files != 6 || stats.Bytes != 6*1024 {
		t.Errorf("stats = %+v, want 7 dirs, 6 files, 6144 bytes", stats)
	}
	if calls != 6 {
		t.Errorf("progress called %d times, want 6", calls)
	}

	for _, path := range []string{
		"file1",
		"file2",
		"dir1_1/file1",
		"dir2_1/dir2_2",
	} {
		if _, err := os.Stat(filepath.Join(root, path)); err != nil {
			t.Errorf("missing %s: %v", path, err)
		}
	}

	// Last level directories are empty
	leaf, err := os.ReadDir(filepath.Join(root, "dir1_1", "dir1_2"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(leaf) != 0 {
		t.Errorf("leaf directory has %d entries", len(leaf))
	}

	var dirs, files int
	filepath.WalkDir(root, func(_ string, d fs.DirEntry, _ error) error {
		if d.IsDir() {
			dirs++
		} else {
			files++
		}
		return nil
	})
	if dirs != stats.Dirs || files != stats.Files {
		t.Errorf("on disk %d dirs, %d files; stats %+v", dirs, files, stats)
	}
}

func TestCount(t *testing.T) {
	tests := []struct {
		opts  Options
		dirs  int
		files int
	}{
		{Options{Depth: 2, Folders: 2, Files: 2}, 7, 6},
		{Options{Depth: 0, Folders: 3, Files: 5}, 1, 0},
		{Options{Depth: 1, Folders: 3, Files: 5}, 4, 5},
		{Options{Depth: 3, Folders: 1, Files: 1}, 4, 3},
	}

	for _, tt := range tests {
		dirs, files := Count(tt.opts)
		if dirs != tt.dirs || files != tt.files {
			t.Errorf("Count(%+v) = %d, %d; want %d, %d", tt.opts, dirs, files, tt.dirs, tt.files)
		}
	}
}

func TestGenerateRejectsBadOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Files = -1
	if _, err := Generate(t.TempDir(), opts, nil); err == nil {
		t.Error("Generate(negative files) error = nil")
	}

	opts = DefaultOptions()
	opts.FileName = ""
	if _, err := Generate(t.TempDir(), opts, nil); err == nil {
		t.Error("Generate(empty file name) error = nil")
	}
}
