// Package credential signs room-join tokens for LiveKit.
package credential

import (
	"errors"
	"fmt"
	"time"

	"github.com/livekit/protocol/auth"

	"teatime-live/internal/live/domain"
)

// DefaultTTL is the credential lifetime when none is configured.
const DefaultTTL = 6 * time.Hour

// Issuer mints credentials with a fixed API key pair. It holds no mutable state.
type Issuer struct {
	apiKey    string
	apiSecret string
	ttl       time.Duration
	nowF      func() time.Time
}

// NewIssuer returns an Issuer. ttl <= 0 uses DefaultTTL.
func NewIssuer(apiKey, apiSecret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{apiKey: apiKey, apiSecret: apiSecret, ttl: ttl, nowF: time.Now}
}

// Issue returns a token granting identity the right to join room sessionID.
func (i *Issuer) Issue(sessionID, identity, displayName string) (*domain.Credential, error) {
	if i.apiKey == "" || i.apiSecret == "" {
		return nil, errors.New("credential: LiveKit API key and secret are not configured")
	}
	if sessionID == "" || identity == "" {
		return nil, fmt.Errorf("credential: %w: session and identity are required", domain.ErrInvalidArgument)
	}
	expiresAt := i.nowF().Add(i.ttl).UTC()

	at := auth.NewAccessToken(i.apiKey, i.apiSecret)
	at.SetVideoGrant(&auth.VideoGrant{RoomJoin: true, Room: sessionID}).
		SetIdentity(identity).
		SetName(displayName).
		SetValidFor(i.ttl)
	token, err := at.ToJWT()
	if err != nil {
		return nil, fmt.Errorf("credential: sign: %w", err)
	}
	return &domain.Credential{
		SessionID: sessionID,
		Identity:  identity,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
