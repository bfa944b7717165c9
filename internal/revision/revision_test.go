package revision

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ndmpd/ndmpadm/internal/backend"
	"github.com/ndmpd/ndmpadm/internal/compress"
	"github.com/ndmpd/ndmpadm/internal/config"
	"github.com/ndmpd/ndmpadm/internal/crypto"
)

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	b, err := backend.NewLocalBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalBackend: %v", err)
	}
	s := New(b, opts)

	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndContent(t *testing.T) {
	tests := []struct {
		name     string
		compress bool
		encrypt  bool
	}{
		{"plain", false, false},
		{"zstd", true, false},
		{"zstd+aes", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts Options
			if tt.compress {
				c, err := compress.NewDefault()
				if err != nil {
					t.Fatalf("NewDefault: %v", err)
				}
				opts.Compressor = c
			}
			if tt.encrypt {
				enc, err := crypto.NewEncryptor("pw", nil)
				if err != nil {
					t.Fatalf("NewEncryptor: %v", err)
				}
				opts.Encryptor = enc
			}
			s := newTestStore(t, opts)
			ctx := context.Background()

			conf := []byte("listen-nic=eth0\nserve-nic=eth0\n")
			rev, err := s.Save(ctx, conf, "set listen-nic")
			if err != nil {
				t.Fatalf("Save: %v", err)
			}
			if rev.Size != int64(len(conf)) || rev.Reason != "set listen-nic" {
				t.Errorf("rev = %+v", rev)
			}
			if rev.Compressed != tt.compress || rev.Encrypted != tt.encrypt {
				t.Errorf("flags = compressed:%v encrypted:%v", rev.Compressed, rev.Encrypted)
			}

			got, err := s.Content(ctx, rev)
			if err != nil {
				t.Fatalf("Content: %v", err)
			}
			if string(got) != string(conf) {
				t.Errorf("Content() = %q, want %q", got, conf)
			}
		})
	}
}

func TestSaveSkipsUnchanged(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	first, _ := s.Save(ctx, []byte("a=1\n"), "first")
	again, err := s.Save(ctx, []byte("a=1\n"), "again")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("unchanged content created new revision %s", again.ID)
	}

	revs, _ := s.List(ctx)
	if len(revs) != 1 {
		t.Errorf("List() has %d revisions, want 1", len(revs))
	}
}

func TestListNewestFirstAndPrune(t *testing.T) {
	s := newTestStore(t, Options{Keep: 2})
	ctx := context.Background()

	var ids []string
	for _, content := range []string{"a=1\n", "a=2\n", "a=3\n"} {
		rev, err := s.Save(ctx, []byte(content), "")
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		ids = append(ids, rev.ID)
	}

	revs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(revs) != 2 {
		t.Fatalf("List() has %d revisions, want 2", len(revs))
	}
	if revs[0].ID != ids[2] || revs[1].ID != ids[1] {
		t.Errorf("List() = [%s %s], want [%s %s]", revs[0].ID, revs[1].ID, ids[2], ids[1])
	}

	if _, err := s.Get(ctx, ids[0]); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(pruned) error = %v, want ErrNotFound", err)
	}
}

func TestGetByPrefix(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	a, _ := s.Save(ctx, []byte("a=1\n"), "")
	s.Save(ctx, []byte("a=2\n"), "")

	got, err := s.Get(ctx, a.ID[:len(a.ID)-3])
	if err != nil {
		t.Fatalf("Get(prefix): %v", err)
	}
	if got.ID != a.ID {
		t.Errorf("Get(prefix) = %s, want %s", got.ID, a.ID)
	}

	// Both IDs share the date
	if _, err := s.Get(ctx, "2024"); !errors.Is(err, ErrAmbiguous) {
		t.Errorf("Get(2024) error = %v, want ErrAmbiguous", err)
	}
	if _, err := s.Get(ctx, "1999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(1999) error = %v, want ErrNotFound", err)
	}
}

func TestSetupEncryption(t *testing.T) {
	ctx := context.Background()
	b, err := backend.NewLocalBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalBackend: %v", err)
	}

	first, err := SetupEncryption(ctx, b, "pw")
	if err != nil {
		t.Fatalf("SetupEncryption: %v", err)
	}
	sealed, _ := first.Encrypt([]byte("secret"))

	second, err := SetupEncryption(ctx, b, "pw")
	if err != nil {
		t.Fatalf("SetupEncryption(again): %v", err)
	}
	if got, err := second.Decrypt(sealed); err != nil || string(got) != "secret" {
		t.Errorf("Decrypt = %q, %v", got, err)
	}

	if _, err := SetupEncryption(ctx, b, "other"); !errors.Is(err, crypto.ErrWrongPassphrase) {
		t.Errorf("SetupEncryption(wrong) error = %v, want ErrWrongPassphrase", err)
	}
}

func TestContentDetectsCorruption(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()
	rev, _ := s.Save(ctx, []byte("a=1\n"), "")

	rev.Hash = "0000"
	if _, err := s.Content(ctx, rev); err == nil {
		t.Error("Content(corrupt) error = nil")
	}
}

func TestOpenLocal(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	pass := filepath.Join(dir, "pass")
	os.WriteFile(pass, []byte("pw\n"), 0600)

	cfg := config.DefaultConfig().Revisions
	cfg.Dir = filepath.Join(dir, "revs")
	cfg.Encryption.Enabled = true
	cfg.Encryption.PassphraseFile = pass

	s, err := Open(ctx, cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	rev, err := s.Save(ctx, []byte("tcp-port=10000\n"), "test")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !rev.Compressed || !rev.Encrypted {
		t.Errorf("rev = %+v, want compressed and encrypted", rev)
	}
	if _, err := os.Stat(filepath.Join(cfg.Dir, "encryption.json")); err != nil {
		t.Errorf("encryption header not written: %v", err)
	}
}

func TestSavePrunesWithSingleListing(t *testing.T) {
	b, err := backend.NewLocalBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalBackend: %v", err)
	}
	counted := &countingBackend{Backend: b}
	s := New(counted, Options{Keep: 1})
	ctx := context.Background()

	s.Save(ctx, []byte("a=1\n"), "")
	counted.lists = 0
	if _, err := s.Save(ctx, []byte("a=2\n"), ""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if counted.lists != 1 {
		t.Errorf("Save listed the backend %d times, want 1", counted.lists)
	}

	revs, _ := s.List(ctx)
	if len(revs) != 1 {
		t.Errorf("List() has %d revisions, want 1", len(revs))
	}
}

func TestSaveCanceled(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Save(ctx, []byte("a=1\n"), ""); !errors.Is(err, context.Canceled) {
		t.Errorf("Save(canceled) error = %v, want context.Canceled", err)
	}
}

type countingBackend struct {
	backend.Backend
	lists int
}

func (c *countingBackend) List(ctx context.Context, prefix string) ([]string, error) {
	c.lists++
	return c.Backend.List(ctx, prefix)
}
