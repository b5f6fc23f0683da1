package apikey

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost trades hashing speed against brute-force resistance; API keys
// are high-entropy so the default cost is plenty
const bcryptCost = bcrypt.DefaultCost

// Key holds the stored form of one issued API key. Only the bcrypt hash is
// persisted; the plaintext is returned once at issue time.
type Key struct {
	Name      string    `json:"name"`
	Hash      string    `json:"hash"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Active    bool      `json:"active"`
}

func (k *Key) valid(now time.Time) bool {
	return k.Active && now.Before(k.ExpiresAt)
}

// Store is a file-backed API key store, safe for concurrent use
type Store struct {
	path string
	mu   sync.Mutex
	keys []Key
}

// Open loads the key store at path, creating an empty one when the file does
// not exist yet
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read key store: %w", err)
	}
	if err := json.Unmarshal(data, &s.keys); err != nil {
		return nil, fmt.Errorf("failed to parse key store: %w", err)
	}
	return s, nil
}

// Issue generates a new key, persists its hash, and returns the plaintext.
// The plaintext cannot be recovered afterwards.
func (s *Store) Issue(name string, ttl time.Duration) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate key material: %w", err)
	}
	plaintext := base64.RawURLEncoding.EncodeToString(raw)

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash key: %w", err)
	}

	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, Key{
		Name:      name,
		Hash:      string(hash),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		Active:    true,
	})
	if err := s.save(); err != nil {
		return "", err
	}
	return plaintext, nil
}

// Validate reports whether the plaintext matches an active, unexpired key
func (s *Store) Validate(plaintext string) bool {
	if plaintext == "" {
		return false
	}
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.keys {
		k := &s.keys[i]
		if !k.valid(now) {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(k.Hash), []byte(plaintext)) == nil {
			return true
		}
	}
	return false
}

// Revoke deactivates every key issued under the given name
func (s *Store) Revoke(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for i := range s.keys {
		if s.keys[i].Name == name && s.keys[i].Active {
			s.keys[i].Active = false
			found = true
		}
	}
	if !found {
		return fmt.Errorf("no active key named %q", name)
	}
	return s.save()
}

// Prune drops expired and revoked keys, returning how many were removed
func (s *Store) Prune() (int, error) {
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.keys[:0]
	removed := 0
	for _, k := range s.keys {
		if k.valid(now) {
			kept = append(kept, k)
		} else {
			removed++
		}
	}
	s.keys = kept
	if removed > 0 {
		if err := s.save(); err != nil {
			return 0, err
		}
	}
	return removed, nil
}

// List returns a snapshot of the stored keys (hashes included, plaintexts
// are never stored)
func (s *Store) List() []Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Key, len(s.keys))
	copy(out, s.keys)
	return out
}

// save persists the store; callers must hold the lock
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.keys, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode key store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write key store: %w", err)
	}
	return nil
}
