package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/01moynul/taptoeat-golang/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Session is the signed-in caller. It is built from the token by middleware
// and handed explicitly to services; nothing reads it from a global.
type Session struct {
	UserID int64       `json:"userId"`
	Role   models.Role `json:"role"`
}

func (s Session) IsAdmin() bool { return s.Role == models.RoleAdmin }

// Issuer signs and verifies session tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateToken creates a signed token for the user carrying their role.
func (i *Issuer) GenerateToken(userID int64, role models.Role) (string, error) {
	// 1. Build the claims: subject, role and lifetime.
	now := i.now()
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"exp":  now.Add(i.ttl).Unix(),
		"iat":  now.Unix(),
	}

	// 2. Sign with HS256.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken parses a token and returns the session it was issued for.
func (i *Issuer) ValidateToken(tokenString string) (Session, error) {
	// 1. Parse, pinning the signing method to HMAC.
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Session{}, ErrInvalidToken
	}

	// 2. "sub" arrives as a JSON number.
	userIDFloat, ok := claims["sub"].(float64)
	if !ok {
		return Session{}, fmt.Errorf("%w: invalid subject claim", ErrInvalidToken)
	}

	// 3. Role must be one we know.
	roleStr, _ := claims["role"].(string)
	role := models.Role(roleStr)
	if !role.Valid() {
		return Session{}, fmt.Errorf("%w: invalid role claim", ErrInvalidToken)
	}

	return Session{UserID: int64(userIDFloat), Role: role}, nil
}
