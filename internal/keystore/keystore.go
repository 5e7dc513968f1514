// Package keystore persists per-provider API keys encrypted at rest.
// Keys are sealed with AES-256-GCM under a key derived by hashing the
// configured passphrase, and stored as "nonceHex:cipherHex" values in a
// single JSON document under the data directory.
package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const maskRune = '*'

// Store is an encrypted, file-backed credential store.
type Store struct {
	path string
	aead cipher.AEAD
	mu   sync.Mutex
}

// New creates a store backed by dataDir/config.json. The data directory
// is created lazily on first write.
func New(dataDir, passphrase string) (*Store, error) {
	hashed := sha256.Sum256([]byte(passphrase))
	block, err := aes.NewCipher(hashed[:])
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return &Store{
		path: filepath.Join(dataDir, "config.json"),
		aead: aead,
	}, nil
}

// Set encrypts apiKey and persists it under provider, overwriting any
// previous value.
func (s *Store) Set(provider, apiKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}

	sealed, err := s.encrypt(apiKey)
	if err != nil {
		return err
	}
	records[provider] = sealed

	return s.save(records)
}

// Get returns the decrypted key for provider, or "" with found=false
// when no key is stored. An absent provider is not an error.
func (s *Store) Get(provider string) (key string, found bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return "", false, err
	}
	sealed, ok := records[provider]
	if !ok {
		return "", false, nil
	}
	plain, err := s.decrypt(sealed)
	if err != nil {
		return "", false, err
	}
	return plain, true, nil
}

// GetMasked returns the stored key with all but the last 4 characters
// replaced by '*'. Keys of 4 characters or fewer come back whole.
func (s *Store) GetMasked(provider string) (string, bool, error) {
	key, found, err := s.Get(provider)
	if err != nil || !found {
		return "", found, err
	}
	return Mask(key), true, nil
}

// Mask hides all but the last 4 characters of key.
func Mask(key string) string {
	runes := []rune(key)
	if len(runes) <= 4 {
		return key
	}
	masked := strings.Repeat(string(maskRune), len(runes)-4)
	return masked + string(runes[len(runes)-4:])
}

func (s *Store) encrypt(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	data := s.aead.Seal(nil, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(data), nil
}

func (s *Store) decrypt(sealed string) (string, error) {
	nonceHex, dataHex, ok := strings.Cut(sealed, ":")
	if !ok {
		return "", fmt.Errorf("malformed credential record")
	}
	nonce, err := hex.DecodeString(nonceHex)
	if err != nil {
		return "", fmt.Errorf("decode nonce: %w", err)
	}
	data, err := hex.DecodeString(dataHex)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	plain, err := s.aead.Open(nil, nonce, data, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt credential: %w", err)
	}
	return string(plain), nil
}

// load reads the backing file. A missing file yields an empty map.
func (s *Store) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read keystore: %w", err)
	}
	records := map[string]string{}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse keystore: %w", err)
	}
	return records, nil
}

func (s *Store) save(records map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal keystore: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0600); err != nil {
		return fmt.Errorf("write keystore: %w", err)
	}
	return nil
}
