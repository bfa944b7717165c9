package revision

import (
	"context"
	"fmt"

	"github.com/ndmpd/ndmpadm/internal/backend"
	"github.com/ndmpd/ndmpadm/internal/compress"
	"github.com/ndmpd/ndmpadm/internal/config"
	"github.com/ndmpd/ndmpadm/internal/crypto"
)

// Open builds a Store from settings. ctx bounds the backend setup, not the
// lifetime of the Store. The caller must Close it.
func Open(ctx context.Context, cfg config.RevisionsConfig) (*Store, error) {
	var (
		b   backend.Backend
		err error
	)

	switch cfg.Backend {
	case "s3":
		b, err = backend.NewS3Backend(ctx, backend.S3Config{
			Bucket:    cfg.Cloud.Bucket,
			Region:    cfg.Cloud.Region,
			Endpoint:  cfg.Cloud.Endpoint,
			AccessKey: cfg.Cloud.AccessKey,
			SecretKey: cfg.Cloud.SecretKey,
			Prefix:    cfg.Cloud.Prefix,
		})
	default:
		b, err = backend.NewLocalBackend(cfg.Dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open revision backend: %w", err)
	}

	opts := Options{Keep: cfg.Keep}

	if cfg.Compression.Enabled {
		if opts.Compressor, err = compress.New(compress.AlgorithmZstd, cfg.Compression.Level); err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to create compressor: %w", err)
		}
	}

	if cfg.Encryption.Enabled {
		passphrase, err := crypto.ReadPassphraseFile(cfg.Encryption.PassphraseFile)
		if err != nil {
			b.Close()
			return nil, err
		}
		if opts.Encryptor, err = SetupEncryption(ctx, b, passphrase); err != nil {
			b.Close()
			return nil, err
		}
	}

	return New(b, opts), nil
}

// Close releases the backend and compressor
func (s *Store) Close() error {
	if s.compressor != nil {
		s.compressor.Close()
	}
	return s.backend.Close()
}
