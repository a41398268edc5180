package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fumble-dev/hire-me/internal/domain"
)

// PurposeReset marks a token as usable only by the password-reset flow.
// Session tokens carry a different purpose, so a stolen access token can
// never redeem a password reset.
const PurposeReset = "reset"

type JWTSigner struct {
	secret []byte
	issuer string
}

func NewJWTSigner(secret string, issuer string) *JWTSigner {
	return &JWTSigner{
		secret: []byte(secret),
		issuer: issuer,
	}
}

type resetClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// SignResetToken issues a short-lived token bound to the account email.
func (s *JWTSigner) SignResetToken(email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := resetClaims{
		Purpose: PurposeReset,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

// VerifyResetToken checks signature, expiry and the reset purpose, returning
// the subject email. Any failure comes back as a tagged domain error so the
// redemption flow can log the real cause while the client sees one generic
// message.
func (s *JWTSigner) VerifyResetToken(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &resetClaims{}, func(t *jwt.Token) (any, error) {
		// prevent alg confusion
		if t.Method != jwt.SigningMethodHS256 {
			return nil, domain.ErrResetSignatureInvalid(nil)
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", domain.ErrResetSignatureInvalid(err)
	}

	claims, ok := parsed.Claims.(*resetClaims)
	if !ok || !parsed.Valid {
		return "", domain.ErrResetSignatureInvalid(nil)
	}
	if claims.Purpose != PurposeReset {
		return "", domain.ErrResetPurposeMismatch(claims.Purpose)
	}
	if claims.Subject == "" {
		return "", domain.ErrResetSignatureInvalid(nil)
	}
	return claims.Subject, nil
}
