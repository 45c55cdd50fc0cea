package credentials

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-mfe-bridge/hostdata"
	"github.com/jrsteele09/go-mfe-bridge/internal/errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// Fixed key names of the local fallback store.
const (
	StoreKeyAccessToken = "accessToken"
	StoreKeyAPIKey      = "xapikey"
	StoreKeyBaseURL     = "baseUrlBFF"
)

// Store is the local key-value fallback used when the remote runs without a
// host-provided scope.
type Store interface {
	// Load returns nil without an error when nothing is stored.
	Load() (*hostdata.APICredentials, error)
	Save(creds *hostdata.APICredentials) error
	Clear() error
}

func toEntries(c *hostdata.APICredentials) map[string]string {
	return map[string]string{
		StoreKeyAccessToken: c.AccessToken,
		StoreKeyAPIKey:      c.XAPIKey,
		StoreKeyBaseURL:     c.BaseURLBFF,
	}
}

func fromEntries(entries map[string]string) *hostdata.APICredentials {
	if entries[StoreKeyAccessToken] == "" {
		return nil
	}
	return &hostdata.APICredentials{
		AccessToken: entries[StoreKeyAccessToken],
		XAPIKey:     entries[StoreKeyAPIKey],
		BaseURLBFF:  entries[StoreKeyBaseURL],
	}
}

// MemoryStore keeps the three keys in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

func (s *MemoryStore) Load() (*hostdata.APICredentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fromEntries(s.entries), nil
}

func (s *MemoryStore) Save(creds *hostdata.APICredentials) error {
	if creds == nil {
		return s.Clear()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = toEntries(creds)
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]string)
	return nil
}

const (
	saltSize  = 16
	hkdfInfo  = "mfe-bridge credential store"
	storePerm = 0o600
)

// FileStore keeps the three keys in a file sealed with XChaCha20-Poly1305.
// The key is derived from a secret with HKDF-SHA256 and a per-file salt.
// File layout: salt | nonce | ciphertext.
type FileStore struct {
	mu     sync.Mutex
	path   string
	secret []byte
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path, secret string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("[credentials.NewFileStore] path is required")
	}
	if secret == "" {
		return nil, fmt.Errorf("[credentials.NewFileStore] secret is required")
	}
	return &FileStore{path: path, secret: []byte(secret)}, nil
}

func (s *FileStore) deriveKey(salt []byte) ([]byte, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, s.secret, salt, []byte(hkdfInfo)), key); err != nil {
		return nil, err
	}
	return key, nil
}

func (s *FileStore) Load() (*hostdata.APICredentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read credential store")
	}

	if len(b) < saltSize+chacha20poly1305.NonceSizeX {
		return nil, errors.Wrapf(errors.ErrStoreCorrupt, "file too short")
	}
	salt := b[:saltSize]
	nonce := b[saltSize : saltSize+chacha20poly1305.NonceSizeX]
	ciphertext := b[saltSize+chacha20poly1305.NonceSizeX:]

	key, err := s.deriveKey(salt)
	if err != nil {
		return nil, errors.Wrapf(err, "derive store key")
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errors.Wrapf(err, "create cipher")
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrStoreCorrupt, "decrypt")
	}

	var entries map[string]string
	if err := json.Unmarshal(plaintext, &entries); err != nil {
		return nil, errors.Wrapf(errors.ErrStoreCorrupt, "decode")
	}
	return fromEntries(entries), nil
}

func (s *FileStore) Save(creds *hostdata.APICredentials) error {
	if creds == nil {
		return s.Clear()
	}
	plaintext, err := json.Marshal(toEntries(creds))
	if err != nil {
		return errors.Wrapf(err, "encode credentials")
	}

	out := make([]byte, saltSize+chacha20poly1305.NonceSizeX, saltSize+chacha20poly1305.NonceSizeX+len(plaintext)+chacha20poly1305.Overhead)
	if _, err := rand.Read(out[:saltSize+chacha20poly1305.NonceSizeX]); err != nil {
		return errors.Wrapf(err, "generate salt and nonce")
	}
	key, err := s.deriveKey(out[:saltSize])
	if err != nil {
		return errors.Wrapf(err, "derive store key")
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return errors.Wrapf(err, "create cipher")
	}
	out = aead.Seal(out, out[saltSize:], plaintext, nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeFileAtomic(s.path, out)
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "clear credential store")
	}
	return nil
}

func writeFileAtomic(path string, b []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrapf(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write credential store")
	}
	if err := tmp.Chmod(storePerm); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "chmod credential store")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close credential store")
	}
	return os.Rename(tmp.Name(), path)
}
