package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"uni_portal/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/google/uuid"
)

type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) SaveRefreshToken(ctx context.Context, userID, token string, exp time.Duration) error {
	args := m.Called(ctx, userID, token, exp)
	return args.Error(0)
}

func (m *MockTokenRepository) GetRefreshToken(ctx context.Context, userID, token string) (bool, error) {
	args := m.Called(ctx, userID, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenRepository) DeleteRefreshToken(ctx context.Context, userID, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

func (m *MockTokenRepository) DeleteAllUserTokens(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

var (
	testUser = models.User{
		ID:      uuid.MustParse("123e4567-e89b-12d3-a456-426614174000"),
		Email:   "staff@uni.example",
		IsStaff: true,
	}
	testCtx = context.Background()
)

const testSecret = "test-secret"

func TestGenerateTokens_Success(t *testing.T) {
	repo := new(MockTokenRepository)
	service := NewTokenService(repo, testSecret, AccessTokenExpire)

	repo.On("SaveRefreshToken", testCtx, testUser.ID.String(), mock.Anything, mock.Anything).
		Return(nil)

	tokens, err := service.GenerateTokens(testUser)

	assert.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, testUser.ID, tokens.UserID)
	repo.AssertExpectations(t)
}

func TestGenerateTokens_RepoError(t *testing.T) {
	repo := new(MockTokenRepository)
	service := NewTokenService(repo, testSecret, AccessTokenExpire)

	expectedErr := errors.New("storage error")
	repo.On("SaveRefreshToken", testCtx, testUser.ID.String(), mock.Anything, mock.Anything).
		Return(expectedErr)

	tokens, err := service.GenerateTokens(testUser)

	assert.ErrorIs(t, err, expectedErr)
	assert.Nil(t, tokens)
	repo.AssertExpectations(t)
}

func TestGenerateTokens_ConfiguredAccessTTL(t *testing.T) {
	repo := new(MockTokenRepository)
	service := NewTokenService(repo, testSecret, time.Hour)

	repo.On("SaveRefreshToken", testCtx, testUser.ID.String(), mock.Anything, mock.Anything).
		Return(nil)

	issuedAt := time.Now()
	tokens, err := service.GenerateTokens(testUser)
	assert.NoError(t, err)

	parsed, _, err := new(jwt.Parser).ParseUnverified(tokens.AccessToken, jwt.MapClaims{})
	assert.NoError(t, err)

	claims := parsed.Claims.(jwt.MapClaims)
	assert.InDelta(t, issuedAt.Add(time.Hour).Unix(), claims["exp"].(float64), 1)
}

func TestRefreshTokens_Success(t *testing.T) {
	repo := new(MockTokenRepository)
	service := NewTokenService(repo, testSecret, AccessTokenExpire)

	repo.On("SaveRefreshToken", testCtx, testUser.ID.String(), mock.Anything, mock.Anything).
		Return(nil)

	issued, err := service.GenerateTokens(testUser)
	assert.NoError(t, err)

	repo.On("GetRefreshToken", testCtx, testUser.ID.String(), issued.RefreshToken).
		Return(true, nil)
	repo.On("DeleteRefreshToken", testCtx, testUser.ID.String(), issued.RefreshToken).
		Return(nil)

	rotated, err := service.RefreshTokens(issued.RefreshToken)

	assert.NoError(t, err)
	assert.NotEmpty(t, rotated.AccessToken)
	assert.NotEmpty(t, rotated.RefreshToken)
	repo.AssertExpectations(t)
}

func TestRefreshTokens_UnknownToken(t *testing.T) {
	repo := new(MockTokenRepository)
	service := NewTokenService(repo, testSecret, AccessTokenExpire)

	repo.On("SaveRefreshToken", testCtx, testUser.ID.String(), mock.Anything, mock.Anything).
		Return(nil)

	issued, err := service.GenerateTokens(testUser)
	assert.NoError(t, err)

	// токен не в хранилище: уже ротирован или отозван,
	// повторное предъявление отзывает все сессии пользователя
	repo.On("GetRefreshToken", testCtx, testUser.ID.String(), issued.RefreshToken).
		Return(false, nil)
	repo.On("DeleteAllUserTokens", testCtx, testUser.ID.String()).
		Return(nil).Once()

	rotated, err := service.RefreshTokens(issued.RefreshToken)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, rotated)
	repo.AssertExpectations(t)
}

func TestRefreshTokens_StoreFailurePropagates(t *testing.T) {
	repo := new(MockTokenRepository)
	service := NewTokenService(repo, testSecret, AccessTokenExpire)

	repo.On("SaveRefreshToken", testCtx, testUser.ID.String(), mock.Anything, mock.Anything).
		Return(nil)

	issued, err := service.GenerateTokens(testUser)
	assert.NoError(t, err)

	storeErr := errors.New("connection refused")
	repo.On("GetRefreshToken", testCtx, testUser.ID.String(), issued.RefreshToken).
		Return(false, storeErr)

	rotated, err := service.RefreshTokens(issued.RefreshToken)

	assert.ErrorIs(t, err, storeErr)
	assert.Nil(t, rotated)
	repo.AssertNotCalled(t, "DeleteAllUserTokens", mock.Anything, mock.Anything)
}

func TestRefreshTokens_Garbage(t *testing.T) {
	repo := new(MockTokenRepository)
	service := NewTokenService(repo, testSecret, AccessTokenExpire)

	rotated, err := service.RefreshTokens("not-a-jwt")

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, rotated)
}
