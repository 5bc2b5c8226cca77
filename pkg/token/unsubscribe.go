// Package token signs and verifies the one-click unsubscribe links put in alert emails.
package token

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"go.uber.org/fx"

	"github.com/fatflowers/steamwatch/pkg/config"
)

var ErrInvalid = errors.New("invalid unsubscribe token")

type UnsubscribeClaims struct {
	Email  string `json:"email"`
	GameID string `json:"game_id"`
	jwt.StandardClaims
}

func (c *UnsubscribeClaims) Valid() error {
	if c.Email == "" || c.GameID == "" {
		return errors.New("missing email or game_id")
	}
	return c.StandardClaims.Valid()
}

// Unsubscribe is an HS256 signer. A zero secret disables it.
type Unsubscribe struct {
	secret []byte
	now    func() time.Time
}

func NewUnsubscribe(secret string) *Unsubscribe {
	return &Unsubscribe{secret: []byte(secret), now: time.Now}
}

func (u *Unsubscribe) Enabled() bool {
	return u != nil && len(u.secret) > 0
}

func (u *Unsubscribe) Sign(email, gameID string) (string, error) {
	if !u.Enabled() {
		return "", errors.New("unsubscribe secret not configured")
	}
	claims := &UnsubscribeClaims{
		Email:          strings.ToLower(strings.TrimSpace(email)),
		GameID:         gameID,
		StandardClaims: jwt.StandardClaims{IssuedAt: u.now().Unix()},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(u.secret)
}

func (u *Unsubscribe) Parse(tok string) (*UnsubscribeClaims, error) {
	if !u.Enabled() {
		return nil, ErrInvalid
	}
	claims := &UnsubscribeClaims{}
	_, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return u.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return claims, nil
}

// URL returns the unsubscribe link under appURL, or "" when signing is disabled or fails.
func (u *Unsubscribe) URL(appURL, email, gameID string) string {
	tok, err := u.Sign(email, gameID)
	if err != nil {
		return ""
	}
	return strings.TrimRight(appURL, "/") + "/api/v1/watchlist/unsubscribe?token=" + url.QueryEscape(tok)
}

var Module = fx.Options(
	fx.Provide(func(cfg *config.Config) *Unsubscribe { return NewUnsubscribe(cfg.UnsubscribeSecret) }),
)
