package services

import (
	"context"
	"errors"
	"time"

	"uni_portal/internal/domain/models"
	libjwt "uni_portal/internal/lib/jwt"
	"uni_portal/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidTokenClaims = errors.New("invalid token claims")
)

const (
	AccessTokenExpire  = 15 * time.Minute
	RefreshTokenExpire = 7 * 24 * time.Hour
)

type TokenService struct {
	repo      repository.TokenRepository
	secret    string
	accessTTL time.Duration
}

func NewTokenService(repo repository.TokenRepository, secret string, accessTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = AccessTokenExpire
	}
	return &TokenService{repo: repo, secret: secret, accessTTL: accessTTL}
}

func (s *TokenService) GenerateTokens(user models.User) (*models.TokenPair, error) {
	accessToken, err := libjwt.NewToken(user, s.secret, s.accessTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, err := libjwt.NewToken(user, s.secret, RefreshTokenExpire)
	if err != nil {
		return nil, err
	}

	err = s.repo.SaveRefreshToken(context.Background(), user.ID.String(), refreshToken, RefreshTokenExpire)
	if err != nil {
		return nil, err
	}

	return &models.TokenPair{
		UserID:       user.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *TokenService) RefreshTokens(refreshToken string) (*models.TokenPair, error) {
	token, _, err := new(jwt.Parser).ParseUnverified(refreshToken, jwt.MapClaims{})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	userID, ok := claims["uid"].(string)
	if !ok {
		return nil, ErrInvalidTokenClaims
	}

	exists, err := s.repo.GetRefreshToken(context.Background(), userID, refreshToken)
	if err != nil {
		return nil, err
	}
	if !exists {
		// Предъявлен уже потраченный или чужой refresh-токен:
		// отзываем все сессии пользователя.
		_ = s.repo.DeleteAllUserTokens(context.Background(), userID)
		return nil, ErrInvalidToken
	}

	if err := s.repo.DeleteRefreshToken(context.Background(), userID, refreshToken); err != nil {
		return nil, err
	}

	email, _ := claims["email"].(string)
	isStaff, _ := claims["is_staff"].(bool)

	user := models.User{
		ID:      uuid.MustParse(userID),
		Email:   email,
		IsStaff: isStaff,
	}

	return s.GenerateTokens(user)
}
