package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"school-portal/internal/config"
	"school-portal/internal/domain"
)

type Service interface {
	IssueToken(principal domain.Principal) (*domain.TokenResponse, error)
	Resolve(token string) (*domain.Principal, error)
	HashPassword(password string) (string, error)
	CheckPassword(hash, password string) bool
}

type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type service struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewService(cfg *config.Config) Service {
	return &service{
		secret: []byte(cfg.JWTSecret),
		expiry: cfg.JWTExpiry,
		now:    time.Now,
	}
}

func (s *service) IssueToken(principal domain.Principal) (*domain.TokenResponse, error) {
	now := s.now()
	claims := &Claims{
		Role: principal.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &domain.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.expiry.Seconds()),
		Role:        principal.Role,
	}, nil
}

func (s *service) Resolve(tokenString string) (*domain.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, domain.Unauthorizedf("invalid or expired token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || !claims.Role.IsValid() {
		return nil, domain.Unauthorizedf("invalid or expired token")
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domain.Unauthorizedf("invalid or expired token")
	}

	return &domain.Principal{Role: claims.Role, ID: id}, nil
}

func (s *service) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func (s *service) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
