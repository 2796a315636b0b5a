package suite

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"uni_portal/internal/config"
	"uni_portal/internal/domain/models"
	tokenservice "uni_portal/internal/services/token_service"
	userservice "uni_portal/internal/services/user_service"
	"uni_portal/internal/storage"

	"github.com/google/uuid"
)

const tokenSecret = "test-secret"

type Suite struct {
	*testing.T
	Cfg          *config.Config
	UserService  *userservice.UserService
	TokenService *tokenservice.TokenService
}

func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()
	t.Parallel()

	cfg := config.MustLoadPath(configPath())

	ctx, cancelCtx := context.WithTimeout(context.Background(), time.Duration(time.Hour))

	tokenService := tokenservice.NewTokenService(newInMemoryTokenRepo(), tokenSecret, cfg.TokenTTL)
	userService := userservice.NewUserService(slog.Default(), newInMemoryUserRepo(), tokenService)

	t.Cleanup(func() {
		t.Helper()
		cancelCtx()
	})

	return ctx, &Suite{
		T:            t,
		Cfg:          cfg,
		UserService:  userService,
		TokenService: tokenService,
	}
}

func configPath() string {
	const key = "CONFIG_PATH"

	if v := os.Getenv(key); v != "" {
		return v
	}

	return "../config/config.yaml"
}

type inMemoryUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]models.User
	byID    map[uuid.UUID]models.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{
		byEmail: make(map[string]models.User),
		byID:    make(map[uuid.UUID]models.User),
	}
}

func (r *inMemoryUserRepo) SaveUser(ctx context.Context, user models.User) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return uuid.Nil, storage.ErrUserExists
	}

	user.ID = uuid.New()
	r.byEmail[user.Email] = user
	r.byID[user.ID] = user
	return user.ID, nil
}

func (r *inMemoryUserRepo) UserByEmail(ctx context.Context, email string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byEmail[email]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}
	return user, nil
}

func (r *inMemoryUserRepo) IsStaff(ctx context.Context, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[userID]
	if !ok {
		return false, storage.ErrUserNotFound
	}
	return user.IsStaff, nil
}

type inMemoryTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]struct{}
}

func newInMemoryTokenRepo() *inMemoryTokenRepo {
	return &inMemoryTokenRepo{tokens: make(map[string]struct{})}
}

func (r *inMemoryTokenRepo) SaveRefreshToken(ctx context.Context, userID, token string, exp time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[userID+":"+token] = struct{}{}
	return nil
}

func (r *inMemoryTokenRepo) GetRefreshToken(ctx context.Context, userID, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tokens[userID+":"+token]
	return ok, nil
}

func (r *inMemoryTokenRepo) DeleteRefreshToken(ctx context.Context, userID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, userID+":"+token)
	return nil
}

func (r *inMemoryTokenRepo) DeleteAllUserTokens(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.tokens {
		if len(key) > len(userID) && key[:len(userID)+1] == userID+":" {
			delete(r.tokens, key)
		}
	}
	return nil
}
