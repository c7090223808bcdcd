package utils // package utils provides helpers for token creation and password hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// Sentinel errors returned by ParseAccessToken. Callers use these to map
// token failures onto distinct 401 messages.
var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// AccessToken is a signed HS256 JWT along with its expiry. Tokens are fully
// self-describing: no server-side state exists for them, so validity is
// determined solely by signature and expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// Claims is the identity embedded in an access token.
type Claims struct {
	Username string
	Role     string
}

// NewAccessToken builds and signs an HS256 JWT carrying the username and
// role, expiring ttlHours from now. The claims are username, role, exp and
// iat.
func NewAccessToken(secret, username, role string, ttlHours int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlHours) * time.Hour)
	claims := jwt.MapClaims{
		"username": username,
		"role":     role,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies the signature and expiry of a token and returns
// its claims. Expired tokens yield ErrTokenExpired; every other failure
// (bad signature, wrong algorithm, malformed payload, missing claims) yields
// ErrTokenInvalid.
func ParseAccessToken(secret, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything other than HMAC.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if !tok.Valid {
		return Claims{}, ErrTokenInvalid
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrTokenInvalid
	}
	username, _ := mc["username"].(string)
	role, _ := mc["role"].(string)
	if username == "" {
		return Claims{}, ErrTokenInvalid
	}
	return Claims{Username: username, Role: role}, nil
}
