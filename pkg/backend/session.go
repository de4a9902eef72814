package backend

import (
	"context"
	"errors"
	"time"

	"github.com/erfanjahi0/pulsechat/pkg/jwk"
	"github.com/erfanjahi0/pulsechat/pkg/proto"
	"github.com/golang-jwt/jwt/v5"
)

// SessionAudience is the audience of session tokens.
const SessionAudience = "pulse"

// IssueToken returns a signed session token for acc and its expiry time.
// Signing out is the client discarding the token.
func (d *Backend) IssueToken(_ context.Context, acc proto.Account) (string, time.Time, error) {
	kp, err := jwk.NewPair(d.cfg)
	if err != nil {
		return "", time.Time{}, err
	}

	now := d.now()
	expiresAt := now.Add(d.cfg.SessionExpiry())
	claims := jwt.RegisteredClaims{
		Subject:   acc.ID(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    d.cfg.HTTP.PublicURL,
		Audience:  jwt.ClaimStrings{SessionAudience},
	}

	token := jwt.NewWithClaims(jwk.SigningMethod, claims)
	token.Header["kid"] = kp.JWK().KeyID
	j, err := token.SignedString(kp.PrivateKey())
	if err != nil {
		d.logger.Error("failed to sign token", "err", err)
		return "", time.Time{}, err
	}

	return j, expiresAt, nil
}

// AccountFromToken validates a session token and returns its account.
func (d *Backend) AccountFromToken(ctx context.Context, bearer string) (proto.Account, error) {
	kp, err := jwk.NewPair(d.cfg)
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseWithClaims(bearer, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, errors.New("invalid signing method")
		}

		return kp.PublicKey(), nil
	},
		jwt.WithIssuer(d.cfg.HTTP.PublicURL),
		jwt.WithIssuedAt(),
		jwt.WithAudience(SessionAudience),
		jwt.WithTimeFunc(d.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, proto.ErrTokenExpired
		}
		d.logger.Debug("failed to parse jwt", "err", err)
		return nil, proto.ErrUnauthorized
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !token.Valid || !ok || claims.Subject == "" {
		return nil, proto.ErrUnauthorized
	}

	acc, err := d.Account(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, proto.ErrAccountNotFound) {
			return nil, proto.ErrUnauthorized
		}
		return nil, err
	}

	return acc, nil
}
