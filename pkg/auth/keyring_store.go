package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/zalando/go-keyring"
)

const (
	keyringService  = "flickrscraper"
	keyringPrefix   = "flickr_"
	keyringIndexKey = "profiles"
)

// KeyringStore keeps credentials in the system keychain. The keychain
// cannot enumerate entries, so profile names are tracked in an index entry.
type KeyringStore struct{}

// NewKeyringStore checks the keychain with a test entry and fails if it cannot be written
func NewKeyringStore() (*KeyringStore, error) {
	const testEntry = "flickrscraper-check"
	if err := keyring.Set(keyringService, testEntry, "ok"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testEntry)
	return &KeyringStore{}, nil
}

func (k *KeyringStore) Store(creds *Credentials) error {
	if creds == nil || creds.Profile == "" {
		return ErrInvalidCredentials
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	if err := keyring.Set(keyringService, keyringPrefix+creds.Profile, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	profiles := k.profiles()
	for _, p := range profiles {
		if p == creds.Profile {
			return nil
		}
	}
	return k.saveProfiles(append(profiles, creds.Profile))
}

func (k *KeyringStore) Retrieve(profile string) (*Credentials, error) {
	if profile == "" {
		return nil, ErrInvalidCredentials
	}

	data, err := keyring.Get(keyringService, keyringPrefix+profile)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(data), &creds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}
	return &creds, nil
}

func (k *KeyringStore) List() ([]*Credentials, error) {
	var list []*Credentials
	for _, profile := range k.profiles() {
		if creds, err := k.Retrieve(profile); err == nil {
			list = append(list, creds)
		}
	}
	return list, nil
}

func (k *KeyringStore) Delete(profile string) error {
	if profile == "" {
		return ErrInvalidCredentials
	}

	if err := keyring.Delete(keyringService, keyringPrefix+profile); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrCredentialsNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	profiles := k.profiles()
	kept := profiles[:0]
	for _, p := range profiles {
		if p != profile {
			kept = append(kept, p)
		}
	}
	return k.saveProfiles(kept)
}

func (k *KeyringStore) Exists(profile string) bool {
	if profile == "" {
		return false
	}
	_, err := keyring.Get(keyringService, keyringPrefix+profile)
	return err == nil
}

func (k *KeyringStore) profiles() []string {
	data, err := keyring.Get(keyringService, keyringIndexKey)
	if err != nil {
		return nil
	}
	var profiles []string
	if err := json.Unmarshal([]byte(data), &profiles); err != nil {
		return nil
	}
	return profiles
}

func (k *KeyringStore) saveProfiles(profiles []string) error {
	if len(profiles) == 0 {
		err := keyring.Delete(keyringService, keyringIndexKey)
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return err
		}
		return nil
	}
	sort.Strings(profiles)
	data, err := json.Marshal(profiles)
	if err != nil {
		return err
	}
	return keyring.Set(keyringService, keyringIndexKey, string(data))
}
