package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	apperrors "kali/internal/errors"
)

// Claims represents JWT claims.
type Claims struct {
	Role Role `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTService handles session token issuance and verification.
type JWTService struct {
	secret   []byte
	issuer   string
	audience string
	leeway   time.Duration
	parser   *jwt.Parser
	now      func() time.Time
}

// NewJWTService creates a new JWT service. The secret is fixed for the
// lifetime of the service.
func NewJWTService(secret, issuer, audience string, leeway time.Duration) *JWTService {
	return &JWTService{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		leeway:   leeway,
		// Time-based claims are checked in Verify against s.now.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
		now: time.Now,
	}
}

// Issue generates a signed token for the principal, valid for validFor.
func (s *JWTService) Issue(p Principal, validFor time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.UserID,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validFor)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a token and returns the principal it was issued for.
// Errors are apperrors.ErrTokenBadSignature, ErrTokenMalformed or ErrTokenExpired.
func (s *JWTService) Verify(tokenString string) (Principal, error) {
	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return Principal{}, classifyParseError(err)
	}

	switch {
	case claims.Subject == "", claims.ExpiresAt == nil:
		return Principal{}, fmt.Errorf("%w: missing required claims", apperrors.ErrTokenMalformed)
	case !claims.VerifyIssuer(s.issuer, true):
		return Principal{}, fmt.Errorf("%w: issuer mismatch", apperrors.ErrTokenMalformed)
	case !claims.VerifyAudience(s.audience, true):
		return Principal{}, fmt.Errorf("%w: audience mismatch", apperrors.ErrTokenMalformed)
	case claims.Role != RoleNone && claims.Role != RoleAdmin:
		return Principal{}, fmt.Errorf("%w: unknown role", apperrors.ErrTokenMalformed)
	}

	// Expiry is exclusive: valid while now-leeway is strictly before exp.
	if !claims.VerifyExpiresAt(s.now().Add(-s.leeway), true) {
		return Principal{}, apperrors.ErrTokenExpired
	}

	return Principal{UserID: claims.Subject, Role: claims.Role}, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", apperrors.ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", apperrors.ErrTokenBadSignature, err)
	default:
		return fmt.Errorf("%w: %v", apperrors.ErrTokenMalformed, err)
	}
}
