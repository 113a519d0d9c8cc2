package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/AnasSAV/Quest-Learn-Backend/internal/dto"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/models"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/repository"
)

// AuthService handles registration and token issuance. Access and refresh
// tokens are signed with separate secrets so leaking one cannot mint the other.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.UserProfile, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error)
	Refresh(ctx context.Context, payload dto.RefreshRequest) (dto.TokenPair, error)
	Profile(ctx context.Context, userID uint) (dto.UserProfile, error)
}

// TokenConfig carries the signing material for issued tokens.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type authService struct {
	users     repository.UserRepository
	tokens    TokenConfig
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(userRepo repository.UserRepository, tokens TokenConfig, validate *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		users:     userRepo,
		tokens:    tokens,
		validator: validate,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.UserProfile, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserProfile{}, err
	}

	if _, err := s.users.GetByEmail(ctx, payload.Email); err == nil {
		return dto.UserProfile{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserProfile{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.UserProfile{}, err
	}

	user := models.User{
		Email:        payload.Email,
		PasswordHash: string(hash),
		FullName:     payload.FullName,
		Role:         payload.Role,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return dto.UserProfile{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("account registered")

	return dto.NewUserProfile(user), nil
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LoginResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return dto.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	return dto.LoginResponse{
		User:  dto.NewUserProfile(user),
		Token: pair,
	}, nil
}

func (s *authService) Refresh(ctx context.Context, payload dto.RefreshRequest) (dto.TokenPair, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TokenPair{}, err
	}

	userID, err := s.parseRefreshToken(payload.RefreshToken)
	if err != nil {
		return dto.TokenPair{}, ErrInvalidRefreshToken
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TokenPair{}, ErrInvalidRefreshToken
		}
		return dto.TokenPair{}, err
	}

	return s.issueTokens(user)
}

func (s *authService) Profile(ctx context.Context, userID uint) (dto.UserProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserProfile{}, ErrUserNotFound
		}
		return dto.UserProfile{}, err
	}

	return dto.NewUserProfile(user), nil
}

func (s *authService) issueTokens(user models.User) (dto.TokenPair, error) {
	access, err := s.signToken(user, s.tokens.AccessSecret, s.tokens.AccessTTL, true)
	if err != nil {
		return dto.TokenPair{}, err
	}

	refresh, err := s.signToken(user, s.tokens.RefreshSecret, s.tokens.RefreshTTL, false)
	if err != nil {
		return dto.TokenPair{}, err
	}

	return dto.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

func (s *authService) signToken(user models.User, secret string, ttl time.Duration, withRole bool) (string, error) {
	issuedAt := s.now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"iat":     issuedAt.Unix(),
		"exp":     issuedAt.Add(ttl).Unix(),
	}
	if withRole {
		claims["role"] = user.Role
		claims["email"] = user.Email
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(secret))
}

func (s *authService) parseRefreshToken(raw string) (uint, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.tokens.RefreshSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidRefreshToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidRefreshToken
	}

	rawID, ok := claims["user_id"]
	if !ok {
		return 0, ErrInvalidRefreshToken
	}

	id, ok := rawID.(float64)
	if !ok || id <= 0 {
		return 0, ErrInvalidRefreshToken
	}

	return uint(id), nil
}
