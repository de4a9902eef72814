// Package jwk manages the key pair used to sign session tokens.
package jwk

import (
	"crypto"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/keygen"
	"github.com/erfanjahi0/pulsechat/pkg/config"
	"github.com/go-jose/go-jose/v3"
	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod is a JSON Web Token signing method. It uses Ed25519 keys to
// sign and verify tokens.
var SigningMethod = &jwt.SigningMethodEd25519{}

// ErrEmptyKeyPath is returned when the session key path is not configured.
var ErrEmptyKeyPath = errors.New("empty session key path")

// Pair is a JSON Web Key pair.
type Pair struct {
	privateKey crypto.PrivateKey
	publicKey  crypto.PublicKey
	jwk        jose.JSONWebKey
}

// PrivateKey returns the private key.
func (p Pair) PrivateKey() crypto.PrivateKey {
	return p.privateKey
}

// PublicKey returns the public key used to verify tokens.
func (p Pair) PublicKey() crypto.PublicKey {
	return p.publicKey
}

// JWK returns the JSON Web Key.
func (p Pair) JWK() jose.JSONWebKey {
	return p.jwk
}

// NewPair loads the session key pair from cfg.Session.KeyPath, generating and
// writing a new Ed25519 key when none exists.
func NewPair(cfg *config.Config) (Pair, error) {
	if cfg == nil {
		return Pair{}, config.ErrNilConfig
	}
	if cfg.Session.KeyPath == "" {
		return Pair{}, ErrEmptyKeyPath
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Session.KeyPath), os.ModePerm); err != nil {
		return Pair{}, fmt.Errorf("create key directory: %w", err)
	}

	kp, err := keygen.New(cfg.Session.KeyPath, keygen.WithKeyType(keygen.Ed25519), keygen.WithWrite())
	if err != nil {
		return Pair{}, fmt.Errorf("load session key: %w", err)
	}

	jwk := jose.JSONWebKey{
		Key:       kp.CryptoPublicKey(),
		Algorithm: SigningMethod.Alg(),
	}
	// The key id is the RFC 7638 thumbprint of the public key.
	thumb, err := jwk.Thumbprint(crypto.SHA256)
	if err != nil {
		return Pair{}, fmt.Errorf("session key thumbprint: %w", err)
	}
	jwk.KeyID = fmt.Sprintf("%x", thumb)

	return Pair{privateKey: kp.PrivateKey(), publicKey: kp.CryptoPublicKey(), jwk: jwk}, nil
}
