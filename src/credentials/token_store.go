package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"trading-backend/src/interfaces"
	"trading-backend/src/logger"

	"github.com/joho/godotenv"
)

const (
	// SettingKey is the app_settings row holding the access token.
	SettingKey = "zerodha_access_token"
	// EnvKey is the env file line holding the access token.
	EnvKey = "ZERODHA_ACCESS_TOKEN"
)

// TokenStore resolves the broker access token from memory, then the settings
// table, then the env file. Settings and envPath are both optional.
type TokenStore struct {
	mu       sync.RWMutex
	token    string
	settings interfaces.ISettingsStore
	envPath  string
	Logger   *logger.Logger
}

// -----------------------------------------------------------------------------

func NewTokenStore(settings interfaces.ISettingsStore, envPath string, log *logger.Logger) *TokenStore {
	return &TokenStore{
		settings: settings,
		envPath:  envPath,
		Logger:   log,
	}
}

// -----------------------------------------------------------------------------

// Resolve returns the first token found. A token read from a persistent layer
// is kept in memory for later calls.
func (s *TokenStore) Resolve(ctx context.Context) (string, bool) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if token != "" {
		return token, true
	}

	if token = s.fromSettings(ctx); token == "" {
		token = s.fromEnvFile()
	}
	if token == "" {
		return "", false
	}

	s.mu.Lock()
	if s.token == "" {
		s.token = token
	}
	token = s.token
	s.mu.Unlock()
	return token, true
}

func (s *TokenStore) fromSettings(ctx context.Context) string {
	if s.settings == nil {
		return ""
	}
	value, ok, err := s.settings.GetSetting(ctx, SettingKey)
	if err != nil {
		s.Logger.Warning("Failed to read token setting: %v", err)
		return ""
	}
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

func (s *TokenStore) fromEnvFile() string {
	if s.envPath == "" {
		return ""
	}
	values, err := godotenv.Read(s.envPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.Logger.Warning("Failed to read env file %s: %v", s.envPath, err)
		}
		return ""
	}
	return strings.TrimSpace(values[EnvKey])
}

// -----------------------------------------------------------------------------

// Save writes token through memory, the settings table and the env file. The
// memory copy is always updated; failures of the persistent layers are logged
// and returned together.
func (s *TokenStore) Save(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("empty access token")
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	var errs []error
	if s.settings != nil {
		if err := s.settings.SetSetting(ctx, SettingKey, token); err != nil {
			s.Logger.Error("Failed to persist token setting: %v", err)
			errs = append(errs, fmt.Errorf("settings: %w", err))
		}
	}
	if s.envPath != "" {
		if err := s.writeEnvFile(token); err != nil {
			s.Logger.Error("Failed to persist token to %s: %v", s.envPath, err)
			errs = append(errs, fmt.Errorf("env file: %w", err))
		}
	}
	return errors.Join(errs...)
}

// writeEnvFile replaces the token line and keeps every other entry.
func (s *TokenStore) writeEnvFile(token string) error {
	values, err := godotenv.Read(s.envPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		values = make(map[string]string)
	}
	values[EnvKey] = token
	return godotenv.Write(values, s.envPath)
}

// Clear drops the in-memory token. Persistent copies are untouched.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}
