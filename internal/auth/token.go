package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretBytes is the shortest HMAC key NewTokenService accepts.
const MinSecretBytes = 32

// TokenConfig is the immutable configuration of a TokenService.
type TokenConfig struct {
	Secret    string
	Issuer    string
	Audience  string
	TTL       time.Duration
	ClockSkew time.Duration

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Claims is the JWT payload: registered claims plus the caller's
// display identity.
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// Token is a signed bearer token and its expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// TokenService issues and verifies HS256 JWTs.
type TokenService struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	parser   *jwt.Parser
	now      func() time.Time
}

// NewTokenService checks cfg and builds the HS256 signer and parser.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.Secret) < MinSecretBytes {
		return nil, fmt.Errorf("token secret must be at least %d bytes", MinSecretBytes)
	}
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, errors.New("token issuer and audience are required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.ClockSkew),
		jwt.WithTimeFunc(now),
	)
	return &TokenService{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.TTL,
		parser:   parser,
		now:      now,
	}, nil
}

// Issue signs a token for id that expires TTL from now.
func (s *TokenService) Issue(id Identity) (Token, error) {
	now := s.now().UTC().Truncate(time.Second)
	exp := now.Add(s.ttl)
	claims := Claims{
		Username: id.Username,
		Email:    id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(id.ID, 10),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{Value: signed, ExpiresAt: exp}, nil
}

// Verify checks signature, algorithm, issuer, audience and expiry.  Every
// failure matches ErrUnauthenticated; the wrapped cause is for logs only.
func (s *TokenService) Verify(raw string) (Identity, error) {
	var claims Claims
	tok, err := s.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return Identity{}, unauthenticated(err)
	}
	if !tok.Valid {
		return Identity{}, unauthenticated(errors.New("token not valid"))
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return Identity{}, unauthenticated(fmt.Errorf("bad subject %q", claims.Subject))
	}
	return Identity{ID: id, Username: claims.Username, Email: claims.Email}, nil
}

func unauthenticated(cause error) error {
	return fmt.Errorf("%w: %w", ErrUnauthenticated, cause)
}
