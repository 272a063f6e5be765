package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"
)

// DefaultProfile is used when no profile name is given
const DefaultProfile = "default"

// Credentials holds a Flickr API key pair under a profile name
type Credentials struct {
	Profile      string    `json:"profile"`
	APIKey       string    `json:"api_key"`
	APISecret    string    `json:"api_secret,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// CredentialStore is the interface for storing and retrieving credentials
type CredentialStore interface {
	Store(creds *Credentials) error
	Retrieve(profile string) (*Credentials, error)
	List() ([]*Credentials, error)
	Delete(profile string) error
	Exists(profile string) bool
}

// Manager looks credentials up across several stores.
// Reads go through the stores in order; writes land in the first store
// that accepts them.
type Manager struct {
	stores []CredentialStore
}

// NewManager builds the default chain: environment, system keychain (when
// available), then the encrypted credentials file.
func NewManager() (*Manager, error) {
	stores := []CredentialStore{NewEnvironmentStore()}

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := ConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	fileStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, fileStore)

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a Manager over an explicit store chain
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves creds in the first store that accepts them
func (m *Manager) Store(creds *Credentials) error {
	if creds == nil || creds.APIKey == "" {
		return errors.New("API key is required")
	}
	if creds.Profile == "" {
		creds.Profile = DefaultProfile
	}
	creds.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		err := store.Store(creds)
		if err == nil {
			return nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store credentials: %w", lastErr)
	}
	return ErrStoreUnavailable
}

// Retrieve returns the credentials for profile from the first store that has them
func (m *Manager) Retrieve(profile string) (*Credentials, error) {
	if profile == "" {
		profile = DefaultProfile
	}
	for _, store := range m.stores {
		if creds, err := store.Retrieve(profile); err == nil && creds != nil {
			return creds, nil
		}
	}
	return nil, fmt.Errorf("%w: profile %s", ErrCredentialsNotFound, profile)
}

// List merges every store's profiles, keeping the most recently modified copy
func (m *Manager) List() ([]*Credentials, error) {
	byProfile := make(map[string]*Credentials)

	for _, store := range m.stores {
		list, err := store.List()
		if err != nil {
			continue
		}
		for _, creds := range list {
			if existing, ok := byProfile[creds.Profile]; !ok || creds.LastModified.After(existing.LastModified) {
				byProfile[creds.Profile] = creds
			}
		}
	}

	result := make([]*Credentials, 0, len(byProfile))
	for _, creds := range byProfile {
		result = append(result, creds)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Profile < result[j].Profile })
	return result, nil
}

// Delete removes profile from every store holding it
func (m *Manager) Delete(profile string) error {
	if profile == "" {
		profile = DefaultProfile
	}

	deleted := false
	for _, store := range m.stores {
		if err := store.Delete(profile); err == nil {
			deleted = true
		}
	}

	if !deleted {
		return fmt.Errorf("%w: profile %s", ErrCredentialsNotFound, profile)
	}
	return nil
}

// ConfigDir returns the per-user directory holding flickrscraper state,
// creating it if needed.
func ConfigDir() (string, error) {
	var dir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, "Library", "Application Support", "flickrscraper")
	case "windows":
		dir = filepath.Join(os.Getenv("APPDATA"), "flickrscraper")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			dir = filepath.Join(xdg, "flickrscraper")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dir = filepath.Join(home, ".config", "flickrscraper")
		}
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

// Sanitize returns a copy of creds safe to print
func Sanitize(creds *Credentials) *Credentials {
	if creds == nil {
		return nil
	}
	out := *creds
	out.APIKey = maskString(creds.APIKey)
	if creds.APISecret != "" {
		out.APISecret = maskString(creds.APISecret)
	}
	return &out
}

// maskString keeps the first and last 4 characters
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)
