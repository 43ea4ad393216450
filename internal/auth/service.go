package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dcalliari/appe/internal"
	"github.com/golang-jwt/jwt/v5"
)

type Service struct {
	store          CredentialStore
	tokenGenerator TokenGeneratorAPI
	logger         *slog.Logger
}

func NewService(store CredentialStore, tokenGen TokenGeneratorAPI, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:          store,
		tokenGenerator: tokenGen,
		logger:         logger,
	}
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTTokenGenerator{
		Secret: []byte(secret),
		TTL:    ttl,
		now:    time.Now,
	}
}

// Login checks the apartment/password pair and issues a token. Unknown
// apartments and wrong passwords fail the same way.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error) {
	cred, err := s.store.GetByApartment(ctx, dto.Apartment)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			s.logger.Info("login failed: unknown apartment", "apartment", dto.Apartment)
			return nil, internal.ErrInvalidCredentials
		}
		return nil, internal.NewInternalError("failed to load credentials", err)
	}

	if err := VerifyPassword(cred.PasswordHash, dto.Password); err != nil {
		s.logger.Info("login failed: password mismatch", "apartment", dto.Apartment)
		return nil, internal.ErrInvalidCredentials
	}

	token, _, err := s.tokenGenerator.GenerateToken(internal.Identity{
		UserID:    cred.UserID,
		Apartment: cred.Apartment,
		Role:      cred.Role,
	})
	if err != nil {
		return nil, internal.NewInternalError("failed to issue token", err)
	}

	s.logger.Info("user logged in", "user_id", cred.UserID, "role", cred.Role)
	return &LoginResponse{Token: token, User: toUserView(cred)}, nil
}

func (s *Service) Verify(tokenString string) (*internal.Identity, error) {
	if tokenString == "" {
		return nil, internal.ErrUnauthenticated
	}
	claims, err := s.tokenGenerator.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return claims.Identity(), nil
}

func (j *JWTTokenGenerator) clock() time.Time {
	if j.now == nil {
		return time.Now()
	}
	return j.now()
}

// GenerateToken signs {userId, apartment, role} with HS256.
func (j *JWTTokenGenerator) GenerateToken(id internal.Identity) (string, time.Time, error) {
	now := j.clock()
	expiresAt := now.Add(j.TTL)

	claims := &Claims{
		UserID:    id.UserID,
		Apartment: id.Apartment,
		Role:      id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   id.UserID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.Secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	}, jwt.WithTimeFunc(j.clock), jwt.WithExpirationRequired())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" || !claims.Role.Valid() {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}
