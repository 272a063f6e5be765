package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

// PassphraseEnv overrides the generated passphrase of the encrypted store
const PassphraseEnv = "FLICKRSCRAPER_PASSPHRASE"

const (
	saltSize     = 32
	keySize      = 32
	kdfRounds    = 100000
	vaultVersion = 1
)

// EncryptedFileStore keeps all profiles in one AES-GCM sealed file. The key
// is derived with PBKDF2 from FLICKRSCRAPER_PASSPHRASE, or from a random
// passphrase stored next to the file.
type EncryptedFileStore struct {
	path       string
	passphrase string
	mu         sync.RWMutex
}

// vaultFile is the on-disk envelope
type vaultFile struct {
	Version  int       `json:"version"`
	Salt     string    `json:"salt"`
	Sealed   string    `json:"sealed"`
	Modified time.Time `json:"modified"`
}

func NewEncryptedFileStore(path string) (*EncryptedFileStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	passphrase, err := loadPassphrase(filepath.Join(dir, ".passphrase"))
	if err != nil {
		return nil, fmt.Errorf("failed to get passphrase: %w", err)
	}

	return &EncryptedFileStore{path: path, passphrase: passphrase}, nil
}

func (e *EncryptedFileStore) Store(creds *Credentials) error {
	if creds == nil || creds.Profile == "" {
		return ErrInvalidCredentials
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	profiles, err := e.open()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if profiles == nil {
		profiles = make(map[string]Credentials)
	}
	profiles[creds.Profile] = *creds
	return e.seal(profiles)
}

func (e *EncryptedFileStore) Retrieve(profile string) (*Credentials, error) {
	if profile == "" {
		return nil, ErrInvalidCredentials
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	profiles, err := e.open()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrCredentialsNotFound
		}
		return nil, err
	}

	creds, ok := profiles[profile]
	if !ok {
		return nil, ErrCredentialsNotFound
	}
	return &creds, nil
}

func (e *EncryptedFileStore) List() ([]*Credentials, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	profiles, err := e.open()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*Credentials{}, nil
		}
		return nil, err
	}

	list := make([]*Credentials, 0, len(profiles))
	for _, creds := range profiles {
		c := creds
		list = append(list, &c)
	}
	return list, nil
}

func (e *EncryptedFileStore) Delete(profile string) error {
	if profile == "" {
		return ErrInvalidCredentials
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	profiles, err := e.open()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrCredentialsNotFound
		}
		return err
	}
	if _, ok := profiles[profile]; !ok {
		return ErrCredentialsNotFound
	}

	delete(profiles, profile)
	if len(profiles) == 0 {
		return os.Remove(e.path)
	}
	return e.seal(profiles)
}

func (e *EncryptedFileStore) Exists(profile string) bool {
	creds, err := e.Retrieve(profile)
	return err == nil && creds != nil
}

// open reads and decrypts the vault. A missing file yields os.ErrNotExist.
func (e *EncryptedFileStore) open() (map[string]Credentials, error) {
	content, err := os.ReadFile(e.path)
	if err != nil {
		return nil, err
	}

	var vf vaultFile
	if err := json.Unmarshal(content, &vf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", e.path, err)
	}

	salt, err := base64.StdEncoding.DecodeString(vf.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	sealed, err := base64.StdEncoding.DecodeString(vf.Sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to decode vault: %w", err)
	}

	plain, err := decrypt(sealed, e.deriveKey(salt))
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt vault (wrong passphrase?): %w", err)
	}

	var profiles map[string]Credentials
	if err := json.Unmarshal(plain, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return profiles, nil
}

// seal encrypts profiles under a fresh salt and replaces the vault atomically
func (e *EncryptedFileStore) seal(profiles map[string]Credentials) error {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	plain, err := json.Marshal(profiles)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	sealed, err := encrypt(plain, e.deriveKey(salt))
	if err != nil {
		return fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	content, err := json.MarshalIndent(vaultFile{
		Version:  vaultVersion,
		Salt:     base64.StdEncoding.EncodeToString(salt),
		Sealed:   base64.StdEncoding.EncodeToString(sealed),
		Modified: time.Now(),
	}, "", "  ")
	if err != nil {
		return err
	}

	tmp := e.path + ".tmp"
	if err := os.WriteFile(tmp, content, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	return os.Rename(tmp, e.path)
}

func (e *EncryptedFileStore) deriveKey(salt []byte) []byte {
	return pbkdf2.Key([]byte(e.passphrase), salt, kdfRounds, keySize, sha256.New)
}

// loadPassphrase prefers the environment, then the passphrase file, and
// generates the file on first use.
func loadPassphrase(file string) (string, error) {
	if pass := os.Getenv(PassphraseEnv); pass != "" {
		return pass, nil
	}

	if content, err := os.ReadFile(file); err == nil && len(content) > 0 {
		return string(content), nil
	}

	b := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("failed to generate passphrase: %w", err)
	}
	pass := base64.URLEncoding.EncodeToString(b)

	if err := os.WriteFile(file, []byte(pass), 0600); err != nil {
		return "", fmt.Errorf("failed to save passphrase: %w", err)
	}
	return pass, nil
}

func encrypt(plaintext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decrypt(ciphertext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
