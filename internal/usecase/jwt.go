package usecase

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/minjun0702/nodeskillproject/config"
)

type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Claims carries the user id under the "id" key, the payload shape every
// client of this API already expects.
type Claims struct {
	jwt.RegisteredClaims
	UserID uint `json:"id"`
}

// TokenCodec signs and verifies the two bearer token kinds. Access and
// refresh tokens use distinct secrets and lifetimes, so a token of one kind
// never verifies as the other.
type TokenCodec interface {
	Issue(userID uint, kind TokenKind) (string, error)
	Verify(token string, kind TokenKind) (uint, error)
}

type tokenCodec struct {
	secrets map[TokenKind][]byte
	ttls    map[TokenKind]time.Duration
	now     func() time.Time
}

func NewTokenCodec(cfg *config.Config) (TokenCodec, error) {
	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		return nil, errors.New("both token secrets are required")
	}
	return &tokenCodec{
		secrets: map[TokenKind][]byte{
			TokenKindAccess:  []byte(cfg.AccessTokenSecret),
			TokenKindRefresh: []byte(cfg.RefreshTokenSecret),
		},
		ttls: map[TokenKind]time.Duration{
			TokenKindAccess:  cfg.AccessTTL,
			TokenKindRefresh: cfg.RefreshTTL,
		},
		now: time.Now,
	}, nil
}

func (c *tokenCodec) Issue(userID uint, kind TokenKind) (string, error) {
	secret, ok := c.secrets[kind]
	if !ok {
		return "", fmt.Errorf("unknown token kind %q", kind)
	}
	// refresh tokens carry a random jti so every issuance is a distinct
	// artifact even within the same second; rotation depends on that.
	var jti string
	if kind == TokenKindRefresh {
		var err error
		if jti, err = GenerateJTI(); err != nil {
			return "", err
		}
	}
	now := c.now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttls[kind])),
		},
		UserID: userID,
	})
	return token.SignedString(secret)
}

func (c *tokenCodec) Verify(tokenStr string, kind TokenKind) (uint, error) {
	secret, ok := c.secrets[kind]
	if !ok {
		return 0, fmt.Errorf("unknown token kind %q", kind)
	}
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenMalformed
	}
	if !token.Valid || claims.UserID == 0 {
		return 0, ErrTokenMalformed
	}
	return claims.UserID, nil
}

func GenerateJTI() (string, error) {
	uuid := make([]byte, 16)
	if _, err := rand.Read(uuid); err != nil {
		return "", err
	}
	uuid[6] = (uuid[6] & 0x0f) | 0x40
	uuid[8] = (uuid[8] & 0x3f) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", uuid[0:4], uuid[4:6], uuid[6:8], uuid[8:10], uuid[10:]), nil
}
