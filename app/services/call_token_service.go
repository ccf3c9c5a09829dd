package services

import (
	"fmt"
	"time"

	"matchcall/app/models"
	"matchcall/app/utils"
)

// DefaultCallTokenTTL applies when no TTL is configured
const DefaultCallTokenTTL = time.Hour

// CallTokenService issues tokens for the managed video-call SDK
type CallTokenService struct {
	apiKey    string
	apiSecret string
	ttl       time.Duration
	now       func() time.Time
}

// NewCallTokenService creates a new call-token issuer. Missing credentials are
// reported per request so the rest of the API keeps serving.
func NewCallTokenService(apiKey, apiSecret string, ttl time.Duration) *CallTokenService {
	if ttl <= 0 {
		ttl = DefaultCallTokenTTL
	}
	return &CallTokenService{apiKey: apiKey, apiSecret: apiSecret, ttl: ttl, now: time.Now}
}

// Issue signs a call token for an authenticated identity
func (s *CallTokenService) Issue(identity *models.Identity) (*models.CallToken, error) {
	if identity == nil || identity.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if s.apiKey == "" {
		return nil, ErrMissingCallAPIKey
	}
	if s.apiSecret == "" {
		return nil, ErrMissingCallAPISecret
	}

	issuedAt := s.now().UTC().Truncate(time.Second)
	token, err := utils.SignCallToken([]byte(s.apiSecret), identity.UserID, issuedAt, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to sign call token: %w", err)
	}

	name := identity.Name
	if name == "" {
		name = identity.UserID
	}
	return &models.CallToken{
		Token:     token,
		APIKey:    s.apiKey,
		UserID:    identity.UserID,
		Name:      name,
		Image:     identity.Avatar,
		ExpiresAt: issuedAt.Add(s.ttl),
	}, nil
}
