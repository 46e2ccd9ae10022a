package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mini-linkedin/internal/domain"
)

// JWTService emite y valida bearer tokens firmados. No hay tabla de sesiones
// ni lista de revocacion: la expiracion es la unica invalidacion del servidor.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

type Claims struct {
	UserID string `json:"uid"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

var (
	ErrJWTInvalid = errors.New("jwt invalid")
	ErrJWTExpired = errors.New("jwt expired")
)

func NewJWTService(secret string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "mini-linkedin",
	}
}

// GenerateToken firma un token atado al usuario con expiracion.
func (s *JWTService) GenerateToken(user domain.User) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrJWTInvalid
	}
	now := time.Now().UTC()
	claims := Claims{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken resuelve un token a la identidad que lo origino.
func (s *JWTService) ParseToken(tokenString string) (Claims, error) {
	if len(s.secret) == 0 {
		return Claims{}, ErrJWTInvalid
	}
	if strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrJWTInvalid
	}

	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrJWTExpired
		}
		return Claims{}, ErrJWTInvalid
	}
	if !s.isValidClaims(claims) {
		return Claims{}, ErrJWTInvalid
	}
	return claims, nil
}

func (s *JWTService) isValidClaims(claims Claims) bool {
	if strings.TrimSpace(claims.UserID) == "" {
		return false
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return false
	}
	if claims.Subject != claims.UserID {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
