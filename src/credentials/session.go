package credentials

import (
	"context"
	"strings"

	"trading-backend/src/helpers"
	"trading-backend/src/interfaces"
	"trading-backend/src/logger"
)

// SessionService runs the broker login flow and stores the resulting token.
type SessionService struct {
	Broker interfaces.IBroker
	Tokens *TokenStore
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

// NewSessionService wires the login flow. broker is nil when no API
// credentials are configured.
func NewSessionService(broker interfaces.IBroker, tokens *TokenStore, log *logger.Logger) *SessionService {
	return &SessionService{Broker: broker, Tokens: tokens, Logger: log}
}

// LoginURL returns the broker login page.
func (s *SessionService) LoginURL() (string, error) {
	if s.Broker == nil {
		return "", helpers.NewServiceUnavailable("broker is not configured")
	}
	return s.Broker.LoginURL(), nil
}

// -----------------------------------------------------------------------------

// CreateSession exchanges a request token for an access token and writes it
// through every layer. Persistence failures are logged and do not fail a
// session the broker already granted.
func (s *SessionService) CreateSession(ctx context.Context, requestToken string) error {
	if s.Broker == nil {
		return helpers.NewServiceUnavailable("broker is not configured")
	}
	requestToken = strings.TrimSpace(requestToken)
	if requestToken == "" {
		return helpers.NewBadRequest("request_token is required", nil)
	}

	accessToken, err := s.Broker.GenerateSession(requestToken)
	if err != nil {
		be, ok := helpers.AsBrokerError(err)
		if !ok || be.Transport {
			return helpers.NewUpstream("session generation failed", err)
		}
		return helpers.NewBadRequest("session rejected", err)
	}

	if err := s.Tokens.Save(ctx, accessToken); err != nil {
		s.Logger.Warning("Access token stored in memory only: %v", err)
	}
	s.Logger.Info("Broker session established")
	return nil
}
