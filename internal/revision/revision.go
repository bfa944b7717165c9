// Package revision keeps previous versions of the daemon configuration so
// a bad edit can be rolled back. Each revision is stored as a payload object
// (optionally zstd compressed, then optionally AES-GCM encrypted) plus a JSON
// metadata object, both under the revisions/ prefix of a backend.
package revision

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ndmpd/ndmpadm/internal/backend"
	"github.com/ndmpd/ndmpadm/internal/compress"
	"github.com/ndmpd/ndmpadm/internal/crypto"
	"github.com/ndmpd/ndmpadm/pkg/models"
)

const (
	prefix     = "revisions/"
	payloadExt = ".rev"
	metaExt    = ".json"
	headerKey  = "encryption.json"
)

var (
	// ErrNotFound is returned for unknown revision IDs
	ErrNotFound = errors.New("revision not found")
	// ErrAmbiguous is returned when an ID prefix matches several revisions
	ErrAmbiguous = errors.New("ambiguous revision id")
)

// Options configures a Store
type Options struct {
	Keep       int                  // Newest revisions to keep, 0 = all
	Compressor *compress.Compressor // nil stores plain content
	Encryptor  *crypto.Encryptor    // nil stores unencrypted content
}

// Store saves and retrieves configuration revisions
type Store struct {
	backend    backend.Backend
	compressor *compress.Compressor
	encryptor  *crypto.Encryptor
	keep       int
	now        func() time.Time
}

// New creates a Store on top of a backend
func New(b backend.Backend, opts Options) *Store {
	return &Store{
		backend:    b,
		compressor: opts.Compressor,
		encryptor:  opts.Encryptor,
		keep:       opts.Keep,
		now:        time.Now,
	}
}

// SetupEncryption returns an Encryptor for passphrase. The first call on a
// backend creates the encryption header; later calls verify against it.
func SetupEncryption(ctx context.Context, b backend.Backend, passphrase string) (*crypto.Encryptor, error) {
	rc, err := b.Get(ctx, headerKey)
	switch {
	case err == nil:
		defer rc.Close()
		var h crypto.EncryptionHeader
		if err := json.NewDecoder(rc).Decode(&h); err != nil {
			return nil, fmt.Errorf("invalid encryption header: %w", err)
		}
		return h.Encryptor(passphrase)

	case errors.Is(err, backend.ErrNotFound):
		salt, err := crypto.GenerateSalt()
		if err != nil {
			return nil, fmt.Errorf("failed to generate salt: %w", err)
		}
		data, err := json.MarshalIndent(crypto.NewEncryptionHeader(salt, passphrase), "", "  ")
		if err != nil {
			return nil, err
		}
		if err := b.Put(ctx, headerKey, bytes.NewReader(data), int64(len(data))); err != nil {
			return nil, fmt.Errorf("failed to store encryption header: %w", err)
		}
		return crypto.NewEncryptor(passphrase, salt)

	default:
		return nil, fmt.Errorf("failed to read encryption header: %w", err)
	}
}

// Save stores content as a new revision. If it is identical to the newest
// revision nothing is written and that revision is returned.
func (s *Store) Save(ctx context.Context, content []byte, reason string) (*models.Revision, error) {
	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	revs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(revs) > 0 && revs[0].Hash == hash {
		return revs[0], nil
	}

	now := s.now().UTC()
	rev := &models.Revision{
		ID:         now.Format("20060102T150405.000000000Z") + "-" + hash[:8],
		Timestamp:  now,
		Reason:     reason,
		Hash:       hash,
		Size:       int64(len(content)),
		Compressed: s.compressor != nil && s.compressor.Algorithm() != compress.AlgorithmNone,
		Encrypted:  s.encryptor != nil,
	}

	payload := content
	if rev.Compressed {
		if payload, err = s.compressor.Compress(payload); err != nil {
			return nil, fmt.Errorf("failed to compress revision: %w", err)
		}
	}
	if rev.Encrypted {
		if payload, err = s.encryptor.Encrypt(payload); err != nil {
			return nil, fmt.Errorf("failed to encrypt revision: %w", err)
		}
	}
	rev.StoredSize = int64(len(payload))

	if err := s.backend.Put(ctx, prefix+rev.ID+payloadExt, bytes.NewReader(payload), rev.StoredSize); err != nil {
		return nil, fmt.Errorf("failed to store revision: %w", err)
	}

	meta, err := json.MarshalIndent(rev, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := s.backend.Put(ctx, prefix+rev.ID+metaExt, bytes.NewReader(meta), int64(len(meta))); err != nil {
		return nil, fmt.Errorf("failed to store revision metadata: %w", err)
	}

	if err := s.prune(ctx, append([]*models.Revision{rev}, revs...)); err != nil {
		return nil, err
	}
	return rev, nil
}

// List returns all revisions, newest first
func (s *Store) List(ctx context.Context) ([]*models.Revision, error) {
	keys, err := s.backend.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list revisions: %w", err)
	}

	var revs []*models.Revision
	for _, key := range keys {
		if !strings.HasSuffix(key, metaExt) {
			continue
		}
		rev, err := s.readMeta(ctx, key)
		if err != nil {
			return nil, err
		}
		revs = append(revs, rev)
	}

	sort.Slice(revs, func(i, j int) bool {
		return revs[i].Timestamp.After(revs[j].Timestamp)
	})
	return revs, nil
}

// Get resolves id, which may be a unique prefix, to a revision
func (s *Store) Get(ctx context.Context, id string) (*models.Revision, error) {
	revs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var match *models.Revision
	for _, rev := range revs {
		if rev.ID == id {
			return rev, nil
		}
		if id != "" && strings.HasPrefix(rev.ID, id) {
			if match != nil {
				return nil, fmt.Errorf("%w: %s", ErrAmbiguous, id)
			}
			match = rev
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return match, nil
}

// Content returns the plain configuration stored in rev
func (s *Store) Content(ctx context.Context, rev *models.Revision) ([]byte, error) {
	rc, err := s.backend.Get(ctx, prefix+rev.ID+payloadExt)
	if err != nil {
		return nil, fmt.Errorf("failed to read revision %s: %w", rev.ID, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read revision %s: %w", rev.ID, err)
	}

	if rev.Encrypted {
		if s.encryptor == nil {
			return nil, fmt.Errorf("revision %s is encrypted but no passphrase is configured", rev.ID)
		}
		if data, err = s.encryptor.Decrypt(data); err != nil {
			return nil, fmt.Errorf("failed to decrypt revision %s: %w", rev.ID, err)
		}
	}

	if rev.Compressed {
		c := s.compressor
		if c == nil || c.Algorithm() != compress.AlgorithmZstd {
			if c, err = compress.NewDefault(); err != nil {
				return nil, err
			}
			defer c.Close()
		}
		if data, err = c.Decompress(data); err != nil {
			return nil, fmt.Errorf("failed to decompress revision %s: %w", rev.ID, err)
		}
	}

	sum := sha256.Sum256(data)
	if hex.EncodeToString(sum[:]) != rev.Hash {
		return nil, fmt.Errorf("revision %s is corrupt: hash mismatch", rev.ID)
	}
	return data, nil
}

// Prune deletes all but the newest Keep revisions
func (s *Store) Prune(ctx context.Context) error {
	if s.keep <= 0 {
		return nil
	}

	revs, err := s.List(ctx)
	if err != nil {
		return err
	}
	return s.prune(ctx, revs)
}

// prune deletes everything after the first Keep entries of revs, which must
// be sorted newest first
func (s *Store) prune(ctx context.Context, revs []*models.Revision) error {
	if s.keep <= 0 || len(revs) <= s.keep {
		return nil
	}

	for _, rev := range revs[s.keep:] {
		if err := s.backend.Delete(ctx, prefix+rev.ID+payloadExt); err != nil {
			return fmt.Errorf("failed to delete revision %s: %w", rev.ID, err)
		}
		if err := s.backend.Delete(ctx, prefix+rev.ID+metaExt); err != nil {
			return fmt.Errorf("failed to delete revision %s: %w", rev.ID, err)
		}
	}
	return nil
}

func (s *Store) readMeta(ctx context.Context, key string) (*models.Revision, error) {
	rc, err := s.backend.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	defer rc.Close()

	var rev models.Revision
	if err := json.NewDecoder(rc).Decode(&rev); err != nil {
		return nil, fmt.Errorf("invalid revision metadata %s: %w", key, err)
	}
	return &rev, nil
}
