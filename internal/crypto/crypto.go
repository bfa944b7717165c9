package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	// Argon2id parameters (OWASP recommended)
	argon2Time    = 3
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32 // 256 bits for AES-256

	// Salt size
	saltSize = 32

	// Nonce size for AES-GCM
	nonceSize = 12
)

// ErrWrongPassphrase is returned when a passphrase does not match the header
var ErrWrongPassphrase = errors.New("wrong passphrase")

// Encryptor handles encryption and decryption using AES-256-GCM
type Encryptor struct {
	cipher cipher.AEAD
}

// NewEncryptor creates a new Encryptor from a passphrase
func NewEncryptor(passphrase string, salt []byte) (*Encryptor, error) {
	if len(salt) == 0 {
		var err error
		if salt, err = GenerateSalt(); err != nil {
			return nil, fmt.Errorf("failed to generate salt: %w", err)
		}
	}

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Encryptor{cipher: gcm}, nil
}

// Encrypt encrypts plaintext and returns ciphertext with prepended nonce
func (e *Encryptor) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return e.cipher.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt decrypts ciphertext (with prepended nonce)
func (e *Encryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce := ciphertext[:nonceSize]
	ciphertext = ciphertext[nonceSize:]

	plaintext, err := e.cipher.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}

	return plaintext, nil
}

// GenerateSalt generates a new random salt
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// ReadPassphraseFile returns the first line of a passphrase file
func ReadPassphraseFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read passphrase file: %w", err)
	}
	line, _, _ := strings.Cut(string(data), "\n")
	line = strings.TrimRight(line, "\r")
	if line == "" {
		return "", fmt.Errorf("passphrase file %s is empty", path)
	}
	return line, nil
}

// HashPassword creates a verifiable hash of the passphrase.
// Used to verify the passphrase without storing the key.
func HashPassword(passphrase string, salt []byte) string {
	hash := sha256.Sum256(deriveKey(passphrase, salt))
	return hex.EncodeToString(hash[:])
}

func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey(
		[]byte(passphrase),
		salt,
		argon2Time,
		argon2Memory,
		argon2Threads,
		argon2KeyLen,
	)
}

// EncryptionHeader contains metadata needed for decryption
type EncryptionHeader struct {
	Version      int    `json:"version"`
	Algorithm    string `json:"algorithm"`
	KDF          string `json:"kdf"`
	Salt         string `json:"salt"`          // Hex-encoded
	PasswordHash string `json:"password_hash"` // For verification
}

// NewEncryptionHeader creates header metadata
func NewEncryptionHeader(salt []byte, passphrase string) *EncryptionHeader {
	return &EncryptionHeader{
		Version:      1,
		Algorithm:    "aes-256-gcm",
		KDF:          "argon2id",
		Salt:         hex.EncodeToString(salt),
		PasswordHash: HashPassword(passphrase, salt),
	}
}

// VerifyPassword checks if the passphrase is correct
func (h *EncryptionHeader) VerifyPassword(passphrase string) bool {
	salt, err := hex.DecodeString(h.Salt)
	if err != nil {
		return false
	}
	return HashPassword(passphrase, salt) == h.PasswordHash
}

// Encryptor verifies passphrase against the header and returns an
// Encryptor using the header's salt
func (h *EncryptionHeader) Encryptor(passphrase string) (*Encryptor, error) {
	if !h.VerifyPassword(passphrase) {
		return nil, ErrWrongPassphrase
	}
	salt, err := hex.DecodeString(h.Salt)
	if err != nil {
		return nil, fmt.Errorf("invalid salt in encryption header: %w", err)
	}
	return NewEncryptor(passphrase, salt)
}
