package jwt

//go:generate go run go.uber.org/mock/mockgen -source=./jwt.go -destination=./mocks/jwt_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotel/config"
	"hotel/shared/timezone"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaim     = errors.New("invalid token claim")
	ErrMissingToken     = errors.New("authorization header is required")
	ErrBearerPrefix     = errors.New("authorization header must start with 'Bearer '")
	ErrUnknownTokenType = errors.New("unknown token type")
)

const (
	bearerScheme = "Bearer"
	bearerPrefix = bearerScheme + " "
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// Claims carries the caller identity. Access and refresh tokens share the layout and are told
// apart by Type as well as by their signing secret.
type Claims struct {
	UserID  string    `json:"user_id"`
	Email   string    `json:"email"`
	Role    string    `json:"role,omitempty"`
	TokenID string    `json:"token_id"`
	Type    TokenType `json:"type"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type JWT interface {
	GenerateTokenPair(ctx context.Context, userID, email, role string) (*TokenPair, error)
	ValidateToken(ctx context.Context, tokenString string, tokenType TokenType) (*Claims, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error)
}

type signingKey struct {
	secret []byte
	ttl    time.Duration
}

type Service struct {
	issuer string
	keys   map[TokenType]signingKey
	now    func() time.Time
}

func New(cfg *config.Config) JWT {
	return &Service{
		issuer: cfg.App.Name,
		keys: map[TokenType]signingKey{
			AccessToken: {
				secret: []byte(cfg.JWT.AccessSecret),
				ttl:    time.Duration(cfg.JWT.AccessExpireMin) * time.Minute,
			},
			RefreshToken: {
				secret: []byte(cfg.JWT.RefreshSecret),
				ttl:    time.Duration(cfg.JWT.RefreshExpireMin) * time.Minute,
			},
		},
		now: timezone.Now,
	}
}

func (s *Service) key(tokenType TokenType) (signingKey, error) {
	key, ok := s.keys[tokenType]
	if !ok {
		return signingKey{}, fmt.Errorf("%w: %s", ErrUnknownTokenType, tokenType)
	}

	return key, nil
}

func (s *Service) GenerateTokenPair(ctx context.Context, userID, email, role string) (*TokenPair, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to generate token pair: %w", err)
	}

	issuedAt := s.now()

	access, err := s.sign(Claims{UserID: userID, Email: email, Role: role, Type: AccessToken}, issuedAt)
	if err != nil {
		return nil, err
	}

	refresh, err := s.sign(Claims{UserID: userID, Email: email, Role: role, Type: RefreshToken}, issuedAt)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    bearerScheme,
		ExpiresIn:    int64(s.keys[AccessToken].ttl / time.Second),
	}, nil
}

// sign fills the registered claims of claims and signs it with the key of its type.
func (s *Service) sign(claims Claims, issuedAt time.Time) (string, error) {
	key, err := s.key(claims.Type)
	if err != nil {
		return "", err
	}

	claims.TokenID = uuid.NewString()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        claims.TokenID,
		Issuer:    s.issuer,
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		NotBefore: jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(key.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", claims.Type, err)
	}

	return signed, nil
}

// ValidateToken parses tokenString with the secret of tokenType. Expiry is reported as
// ErrExpiredToken, a token of the other type as ErrInvalidClaim and anything else as
// ErrInvalidToken.
func (s *Service) ValidateToken(_ context.Context, tokenString string, tokenType TokenType) (*Claims, error) {
	key, err := s.key(tokenType)
	if err != nil {
		return nil, err
	}

	claims := &Claims{}

	_, err = jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return key.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, ErrInvalidToken
	case claims.Type != tokenType:
		return nil, ErrInvalidClaim
	}

	return claims, nil
}

func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.ValidateToken(ctx, refreshToken, RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	return s.GenerateTokenPair(ctx, claims.UserID, claims.Email, claims.Role)
}

// ExtractTokenFromHeader returns the credential of a "Bearer <token>" Authorization header.
func ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingToken
	}

	token, found := strings.CutPrefix(authHeader, bearerPrefix)
	token = strings.TrimSpace(token)

	if !found || token == "" {
		return "", ErrBearerPrefix
	}

	return token, nil
}
