package models

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// TokenMaxAge bounds how long a confirmation link stays redeemable.
const TokenMaxAge = 24 * time.Hour

// Distinct for logging only. Both failures must render the same
// user-facing page so the response doesn't reveal which check failed.
var (
	ErrTokenExpired = errors.New("confirmation token has expired")
	ErrTokenInvalid = errors.New("confirmation token failed verification")
)

// ConfirmationToken binds an email address to its issue time with an
// HMAC-SHA256 signature. Tokens are never stored; verification
// recomputes the signature from the link's own parts.
type ConfirmationToken struct {
	Email     string `json:"email"`
	IssuedAt  int64  `json:"ts"`
	Signature string `json:"sig"`
}

// MintToken issues a confirmation token for email at the current time.
func MintToken(email string, secret string) ConfirmationToken {
	return mintTokenAt(email, secret, time.Now())
}

func mintTokenAt(email string, secret string, now time.Time) ConfirmationToken {
	issued := now.Unix()
	return ConfirmationToken{
		Email:     email,
		IssuedAt:  issued,
		Signature: signToken(secret, email, strconv.FormatInt(issued, 10)),
	}
}

func signToken(secret string, email string, ts string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s|%s", email, ts)
	return hex.EncodeToString(mac.Sum(nil))
}

// CheckToken verifies the parts of a confirmation link, failing closed
// on an unparseable or out-of-window timestamp and on any signature
// mismatch.
func CheckToken(email string, ts string, sig string, secret string, now time.Time) error {
	issued, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrTokenInvalid
	}
	age := now.Unix() - issued
	if age < 0 || age > int64(TokenMaxAge/time.Second) {
		return ErrTokenExpired
	}
	expected := signToken(secret, email, ts)
	// hmac.Equal is constant time, and a length mismatch fails without
	// leaking how much of the signature matched.
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return ErrTokenInvalid
	}
	return nil
}

// VerifyToken reports whether the link parts form a live, untampered
// token.
func VerifyToken(email string, ts string, sig string, secret string, now time.Time) bool {
	return CheckToken(email, ts, sig, secret, now) == nil
}

// ConfirmURL renders the link embedded in the confirmation email.
func (t ConfirmationToken) ConfirmURL(baseURL string) string {
	q := url.Values{}
	q.Set("email", t.Email)
	q.Set("ts", strconv.FormatInt(t.IssuedAt, 10))
	q.Set("sig", t.Signature)
	return fmt.Sprintf("%s/api/newsletter-confirm?%s", strings.TrimSuffix(baseURL, "/"), q.Encode())
}
