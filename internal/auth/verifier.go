package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/maxaizer/jobmatch/internal/domain/models"
)

var ErrTokenExpired = errors.New("token expired")

// Verifier checks identity tokens issued by the external identity provider.
// Tokens are HS256 signed and carry the user id in the subject claim.
type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Verify returns the uid the token was issued for. Every failure matches models.ErrUnauthenticated.
func (v *Verifier) Verify(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" || len(v.secret) == 0 {
		return "", models.ErrUnauthenticated
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		options = append(options, jwt.WithIssuer(v.issuer))
	}

	var claims jwt.RegisteredClaims
	parsed, err := jwt.NewParser(options...).ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", errors.Join(models.ErrUnauthenticated, ErrTokenExpired)
		}
		return "", fmt.Errorf("%w: %v", models.ErrUnauthenticated, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", models.ErrUnauthenticated
	}

	return claims.Subject, nil
}

// Issue signs a token for uid. The identity provider owns issuance in production;
// this is used by tests and local tooling.
func (v *Verifier) Issue(uid string, ttl time.Duration) (string, error) {
	now := v.now()
	claims := jwt.RegisteredClaims{
		Subject:   uid,
		Issuer:    v.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
