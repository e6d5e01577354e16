package checkin

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TokenPayload is the structured content of a check-in token. Timestamps are
// unix seconds so the encoded form is stable across locations.
type TokenPayload struct {
	ClassID   string `json:"cid"`
	SessionID string `json:"sid"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// EncodeToken serializes the payload into the opaque bearer string handed to
// members. The token is not signed; it is only redeemable against the live
// session registry, which is the authority for expiry and replay.
func EncodeToken(p TokenPayload) (string, error) {
	if strings.TrimSpace(p.ClassID) == "" || strings.TrimSpace(p.SessionID) == "" {
		return "", fmt.Errorf("token payload missing identity fields")
	}
	if p.IssuedAt == 0 || p.ExpiresAt == 0 || p.ExpiresAt <= p.IssuedAt {
		return "", fmt.Errorf("token payload has invalid timestamps")
	}

	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal token payload: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeToken parses a bearer string back into its payload. Any shape
// problem (bad base64, bad JSON, missing field, non-numeric timestamp)
// comes back as ErrMalformedToken.
func DecodeToken(raw string) (TokenPayload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return TokenPayload{}, ErrMalformedToken
	}

	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return TokenPayload{}, ErrMalformedToken
	}

	var p TokenPayload
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&p); err != nil {
		return TokenPayload{}, ErrMalformedToken
	}

	if strings.TrimSpace(p.ClassID) == "" || strings.TrimSpace(p.SessionID) == "" {
		return TokenPayload{}, ErrMalformedToken
	}
	if p.IssuedAt == 0 || p.ExpiresAt == 0 {
		return TokenPayload{}, ErrMalformedToken
	}

	return p, nil
}

func (p TokenPayload) Expiry() time.Time {
	return time.Unix(p.ExpiresAt, 0).UTC()
}

func (p TokenPayload) Issued() time.Time {
	return time.Unix(p.IssuedAt, 0).UTC()
}
