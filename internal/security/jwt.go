package security

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session token validation errors.
var (
	// ErrInvalidToken indicates a token is malformed or fails validation.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken indicates a token has expired.
	ErrExpiredToken = errors.New("token expired")
	// ErrInvalidDestination indicates the dest claim does not name a shop.
	ErrInvalidDestination = errors.New("invalid token destination")
)

// sessionTokenLeeway absorbs clock skew between Shopify and this host.
const sessionTokenLeeway = 5 * time.Second

// SessionClaims are the claims of a Shopify App Bridge session token.
type SessionClaims struct {
	Dest string `json:"dest"`          // Shop URL, e.g. https://demo.myshopify.com.
	Sid  string `json:"sid,omitempty"` // Session id.
	jwt.RegisteredClaims
}

// ShopDomain returns the lowercased host of the dest claim.
func (c *SessionClaims) ShopDomain() (string, error) {
	if c == nil {
		return "", ErrInvalidDestination
	}
	dest := strings.TrimSpace(c.Dest)
	if dest == "" {
		return "", ErrInvalidDestination
	}
	if !strings.Contains(dest, "://") {
		dest = "https://" + dest
	}
	parsed, errParse := url.Parse(dest)
	if errParse != nil || parsed.Hostname() == "" {
		return "", ErrInvalidDestination
	}
	return strings.ToLower(parsed.Hostname()), nil
}

// GenerateSessionToken signs a session token for shop. It mirrors what the
// Shopify admin issues and is used for local development and tests.
func GenerateSessionToken(secret, apiKey, shop string, expiry time.Duration) (string, error) {
	now := time.Now().UTC()
	shopURL := "https://" + strings.ToLower(strings.TrimSpace(shop))
	claims := SessionClaims{
		Dest: shopURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    shopURL + "/admin",
			Subject:   "1",
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	if apiKey != "" {
		claims.Audience = jwt.ClaimStrings{apiKey}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseSessionToken validates an HS256 session token signed with secret.
// When apiKey is set the token audience must contain it.
func ParseSessionToken(secret, apiKey, tokenString string) (*SessionClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(sessionTokenLeeway),
		jwt.WithExpirationRequired(),
	}
	if apiKey != "" {
		opts = append(opts, jwt.WithAudience(apiKey))
	}
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, errDest := claims.ShopDomain(); errDest != nil {
		return nil, errDest
	}
	return claims, nil
}
