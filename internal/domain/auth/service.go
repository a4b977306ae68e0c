package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/yanqian/swing-coach/pkg/errors"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	minPasswordLength = 8
)

// Service issues and validates tokens for golfer accounts.
type Service struct {
	cfg    Config
	users  UserRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds an auth service.
func NewService(cfg Config, users UserRepository, logger *slog.Logger) *Service {
	return &Service{
		cfg:    cfg,
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

// Register creates an account and returns it signed in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.New("invalid_input", "a valid email is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperrors.New("invalid_input", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap("auth_error", "failed to hash password", err)
	}

	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		nickname = strings.SplitN(email, "@", 2)[0]
	}

	user, err := s.users.Create(ctx, &User{
		Email:        email,
		Nickname:     nickname,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, apperrors.New("email_exists", "this email is already registered")
		}
		return nil, apperrors.Wrap("auth_error", "failed to create user", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "email", user.Email)
	return s.issueTokens(user)
}

// Login verifies credentials and returns fresh tokens.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, apperrors.New("invalid_input", "email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperrors.New("invalid_credentials", "invalid email or password")
		}
		return nil, apperrors.Wrap("auth_error", "failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.New("invalid_credentials", "invalid email or password")
	}

	return s.issueTokens(user)
}

// Refresh exchanges a refresh token for a new token pair.
func (s *Service) Refresh(ctx context.Context, req RefreshRequest) (*LoginResponse, error) {
	if req.RefreshToken == "" {
		return nil, apperrors.New("invalid_input", "refreshToken is required")
	}

	claims, err := s.parseToken(req.RefreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeRefresh {
		return nil, apperrors.New("invalid_token", "token is not a refresh token")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperrors.New("invalid_token", "account no longer exists")
		}
		return nil, apperrors.Wrap("auth_error", "failed to look up user", err)
	}

	return s.issueTokens(user)
}

// ValidateToken checks an access token and returns its claims.
func (s *Service) ValidateToken(token string) (*Claims, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, apperrors.New("invalid_token", "token is not an access token")
	}
	return claims, nil
}

// Profile looks up the account for an authenticated user.
func (s *Service) Profile(ctx context.Context, userID int64) (*UserView, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperrors.New("invalid_token", "account no longer exists")
		}
		return nil, apperrors.Wrap("auth_error", "failed to look up user", err)
	}
	view := viewOf(user)
	return &view, nil
}

func (s *Service) issueTokens(user *User) (*LoginResponse, error) {
	access, err := s.signToken(user, tokenTypeAccess, s.cfg.TokenTTL)
	if err != nil {
		return nil, apperrors.Wrap("auth_error", "failed to sign token", err)
	}
	refresh, err := s.signToken(user, tokenTypeRefresh, s.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, apperrors.Wrap("auth_error", "failed to sign refresh token", err)
	}
	return &LoginResponse{
		Token:        access,
		RefreshToken: refresh,
		User:         viewOf(user),
	}, nil
}

func (s *Service) signToken(user *User, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"type":  tokenType,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	})
	return token.SignedString([]byte(s.cfg.Secret))
}

func (s *Service) parseToken(raw string) (*Claims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.New("invalid_token", "token is invalid or expired")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.New("invalid_token", "token claims are malformed")
	}

	sub, ok := mapClaims["sub"].(float64)
	if !ok {
		return nil, apperrors.New("invalid_token", "token subject is malformed")
	}
	email, _ := mapClaims["email"].(string)
	tokenType, _ := mapClaims["type"].(string)

	claims := &Claims{
		UserID:    int64(sub),
		Email:     email,
		TokenType: tokenType,
	}
	if exp, ok := mapClaims["exp"].(float64); ok {
		claims.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return claims, nil
}

func viewOf(user *User) UserView {
	return UserView{
		ID:        user.ID,
		Email:     user.Email,
		Nickname:  user.Nickname,
		CreatedAt: user.CreatedAt,
	}
}
