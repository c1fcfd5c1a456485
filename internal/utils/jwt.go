package utils // package utils provides helpers for session tokens and hashing

import (
	"crypto/rand"   // secure random number generation for token ids
	"crypto/sha256" // SHA‑256 hashing of token ids
	"encoding/hex"  // hex encoding
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionToken is a signed HS256 JWT identifying a login session.  ID is
// the random `jti` claim; only its hash is persisted server side so the
// session can be revoked at logout.
type SessionToken struct {
	Token string    // the serialized JWT string
	ID    string    // jti claim
	Exp   time.Time // UTC expiration time
}

// SessionClaims are the claims carried by a session token.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// ErrInvalidToken is returned for malformed, expired or forged tokens.
var ErrInvalidToken = errors.New("invalid token")

// NewSessionToken signs a token for userID valid for ttlMin minutes.
func NewSessionToken(secret string, userID uint64, ttlMin int) (SessionToken, error) {
	jti, err := randomHex(32)
	if err != nil {
		return SessionToken{}, err
	}
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := SessionClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(userID, 10),
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, ID: jti, Exp: exp}, nil
}

// ParseSessionToken verifies the signature and expiry of raw and returns
// the user id and token id it carries.
func ParseSessionToken(secret, raw string) (userID uint64, tokenID string, err error) {
	var claims SessionClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return 0, "", ErrInvalidToken
	}
	uid, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || uid == 0 || claims.ID == "" {
		return 0, "", ErrInvalidToken
	}
	return uid, claims.ID, nil
}

// HashTokenID returns the SHA‑256 hex digest stored for a token id.
func HashTokenID(id string) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])
}

// randomHex returns n bytes of secure random data, hex encoded.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
