package auth

import (
	"os"
	"time"
)

// EnvironmentStore reads a key pair from the environment. It is read-only
// and only answers for the default profile.
type EnvironmentStore struct{}

func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

func (e *EnvironmentStore) Store(*Credentials) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Retrieve(profile string) (*Credentials, error) {
	if profile != "" && profile != DefaultProfile {
		return nil, ErrCredentialsNotFound
	}
	key := envFirst("FLICKRSCRAPER_API_KEY", "FLICKR_API_KEY")
	if key == "" {
		return nil, ErrCredentialsNotFound
	}

	return &Credentials{
		Profile:      DefaultProfile,
		APIKey:       key,
		APISecret:    envFirst("FLICKRSCRAPER_API_SECRET", "FLICKR_API_SECRET"),
		LastModified: time.Now(),
	}, nil
}

func (e *EnvironmentStore) List() ([]*Credentials, error) {
	creds, err := e.Retrieve("")
	if err != nil {
		return []*Credentials{}, nil
	}
	return []*Credentials{creds}, nil
}

func (e *EnvironmentStore) Delete(string) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Exists(profile string) bool {
	if profile != "" && profile != DefaultProfile {
		return false
	}
	return envFirst("FLICKRSCRAPER_API_KEY", "FLICKR_API_KEY") != ""
}

func envFirst(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
