package tests

import (
	"strings"
	"testing"
	"time"

	"uni_portal/tests/suite"

	"github.com/brianvoe/gofakeit"
	"github.com/golang-jwt/jwt/v5"
	tokenservice "uni_portal/internal/services/token_service"
	userservice "uni_portal/internal/services/user_service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	passDefaultLen = 10
	secret         = "test-secret"
)

func TestStaffLogin_HappyPath(t *testing.T) {
	ctx, st := suite.New(t)

	email := gofakeit.Email()
	pass := randomFakePassword()
	name := gofakeit.Name()

	id, err := st.UserService.RegisterNewUser(ctx, email, name, pass, true)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	loginTime := time.Now()

	pair, err := st.UserService.Login(ctx, email, pass)
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.Equal(t, id, pair.UserID)

	tokenParsed, err := jwt.Parse(pair.AccessToken, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)

	claims, ok := tokenParsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, strings.ToLower(email), claims["email"].(string))
	assert.Equal(t, true, claims["is_staff"].(bool))

	const deltaSeconds = 1

	assert.InDelta(t, loginTime.Add(st.Cfg.TokenTTL).Unix(), claims["exp"].(float64), deltaSeconds)
}

func TestStaffLogin_NonStaffRejected(t *testing.T) {
	ctx, st := suite.New(t)

	email := gofakeit.Email()
	pass := randomFakePassword()

	_, err := st.UserService.RegisterNewUser(ctx, email, gofakeit.Name(), pass, false)
	require.NoError(t, err)

	pair, err := st.UserService.Login(ctx, email, pass)
	require.Error(t, err)
	assert.Nil(t, pair)
	assert.ErrorIs(t, err, userservice.ErrNotStaff)
}

func TestStaffLogin_RefreshRotation(t *testing.T) {
	ctx, st := suite.New(t)

	email := gofakeit.Email()
	pass := randomFakePassword()

	_, err := st.UserService.RegisterNewUser(ctx, email, gofakeit.Name(), pass, true)
	require.NoError(t, err)

	pair, err := st.UserService.Login(ctx, email, pass)
	require.NoError(t, err)

	rotated, err := st.TokenService.RefreshTokens(pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.AccessToken)

	// старый refresh-токен использован и больше не принимается
	_, err = st.TokenService.RefreshTokens(pair.RefreshToken)
	assert.ErrorIs(t, err, tokenservice.ErrInvalidToken)

	// повторное предъявление потраченного токена отзывает и новый
	_, err = st.TokenService.RefreshTokens(rotated.RefreshToken)
	assert.ErrorIs(t, err, tokenservice.ErrInvalidToken)
}

func TestStaffLogin_DuplicateRegistration(t *testing.T) {
	ctx, st := suite.New(t)

	email := gofakeit.Email()
	pass := randomFakePassword()

	_, err := st.UserService.RegisterNewUser(ctx, email, gofakeit.Name(), pass, true)
	require.NoError(t, err)

	_, err = st.UserService.RegisterNewUser(ctx, email, gofakeit.Name(), pass, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, userservice.ErrUserExist)
}

func randomFakePassword() string {
	return gofakeit.Password(true, true, true, true, false, passDefaultLen)
}
