package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 30 * 24 * time.Hour

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrInvalidAdminKey = errors.New("invalid admin key")
	ErrAdminDisabled   = errors.New("token issuing is disabled: no admin key configured")
	ErrPrinterMismatch = errors.New("token is not valid for this printer")
	errInvalidPrinter  = errors.New("printer id must be positive")
)

type AuthOptions struct {
	SigningKey   string
	TokenTTL     time.Duration
	AdminKeyHash string
}

// AuthService issues HS256 tokens that bind an agent to one printer id.
type AuthService struct {
	signingKey   []byte
	ttl          time.Duration
	adminKeyHash []byte
	now          func() time.Time
}

func NewAuthService(opts AuthOptions) *AuthService {
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &AuthService{
		signingKey:   []byte(opts.SigningKey),
		ttl:          ttl,
		adminKeyHash: []byte(strings.TrimSpace(opts.AdminKeyHash)),
		now:          time.Now,
	}
}

// Claims defines JWT claims
type Claims struct {
	jwt.RegisteredClaims
	PrinterID int64 `json:"printer_id"`
}

func (s *AuthService) IssueToken(printerID int64) (string, error) {
	if printerID <= 0 {
		return "", errInvalidPrinter
	}
	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   fmt.Sprintf("printer:%d", printerID),
		},
		PrinterID: printerID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.signingKey)
}

// ParseToken validates the token and returns the printer id it was issued for.
func (s *AuthService) ParseToken(accessToken string) (int64, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.PrinterID <= 0 {
		return 0, ErrInvalidToken
	}
	return claims.PrinterID, nil
}

// CheckAdminKey compares key with the configured bcrypt hash.
func (s *AuthService) CheckAdminKey(key string) error {
	if len(s.adminKeyHash) == 0 {
		return ErrAdminDisabled
	}
	if err := bcrypt.CompareHashAndPassword(s.adminKeyHash, []byte(key)); err != nil {
		return ErrInvalidAdminKey
	}
	return nil
}
