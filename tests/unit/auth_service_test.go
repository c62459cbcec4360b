package unit_test

import (
	"context"
	"testing"
	"time"

	"perpustakaan-backend/internal/config"
	"perpustakaan-backend/internal/domain"
	"perpustakaan-backend/internal/repository"
	"perpustakaan-backend/internal/service/auth"
	"perpustakaan-backend/tests/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(userRepo *mocks.UserRepository, sessionRepo *mocks.SessionRepository) auth.Service {
	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 7 * 24 * time.Hour,
	}
	return auth.NewService(userRepo, sessionRepo, cfg)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("New Users Default To Client Role", func(t *testing.T) {
		userRepo := new(mocks.UserRepository)
		sessionRepo := new(mocks.SessionRepository)
		svc := newAuthService(userRepo, sessionRepo)

		userRepo.On("ExistsByEmail", ctx, "new@example.com").Return(false, nil).Once()
		userRepo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Role == string(domain.RoleClient) && u.Status == domain.UserActive && u.PasswordHash != "rahasia123"
		})).Return(nil).Once()
		sessionRepo.On("Create", ctx, mock.AnythingOfType("*repository.Session")).Return(nil).Once()

		user, tokens, err := svc.Register(ctx, domain.CreateUserInput{
			Email:    "new@example.com",
			Password: "rahasia123",
			FullName: "Pengguna Baru",
		})

		assert.NoError(t, err)
		assert.Equal(t, string(domain.RoleClient), user.Role)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEmpty(t, tokens.RefreshToken)
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		userRepo := new(mocks.UserRepository)
		svc := newAuthService(userRepo, new(mocks.SessionRepository))

		userRepo.On("ExistsByEmail", ctx, "taken@example.com").Return(true, nil).Once()

		user, tokens, err := svc.Register(ctx, domain.CreateUserInput{Email: "taken@example.com", Password: "rahasia123", FullName: "X"})

		assert.Nil(t, user)
		assert.Nil(t, tokens)
		assert.ErrorIs(t, err, auth.ErrEmailExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)

	account := func(status domain.UserStatus) *domain.User {
		return &domain.User{
			ID:           uuid.New(),
			Email:        "client@example.com",
			PasswordHash: string(hash),
			Role:         string(domain.RoleClient),
			Status:       status,
		}
	}

	t.Run("Success", func(t *testing.T) {
		userRepo := new(mocks.UserRepository)
		sessionRepo := new(mocks.SessionRepository)
		svc := newAuthService(userRepo, sessionRepo)

		userRepo.On("GetByEmail", ctx, "client@example.com").Return(account(domain.UserActive), nil).Once()
		sessionRepo.On("Create", ctx, mock.AnythingOfType("*repository.Session")).Return(nil).Once()

		user, tokens, err := svc.Login(ctx, domain.LoginInput{Email: "client@example.com", Password: "rahasia123"})

		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.NotEmpty(t, tokens.AccessToken)

		claims, err := svc.ValidateAccessToken(tokens.AccessToken)
		assert.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		userRepo := new(mocks.UserRepository)
		svc := newAuthService(userRepo, new(mocks.SessionRepository))

		userRepo.On("GetByEmail", ctx, "client@example.com").Return(account(domain.UserActive), nil).Once()

		_, _, err := svc.Login(ctx, domain.LoginInput{Email: "client@example.com", Password: "salah"})

		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("Unknown Email", func(t *testing.T) {
		userRepo := new(mocks.UserRepository)
		svc := newAuthService(userRepo, new(mocks.SessionRepository))

		userRepo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, nil).Once()

		_, _, err := svc.Login(ctx, domain.LoginInput{Email: "ghost@example.com", Password: "x"})

		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("Suspended Account", func(t *testing.T) {
		userRepo := new(mocks.UserRepository)
		svc := newAuthService(userRepo, new(mocks.SessionRepository))

		userRepo.On("GetByEmail", ctx, "client@example.com").Return(account(domain.UserSuspended), nil).Once()

		_, _, err := svc.Login(ctx, domain.LoginInput{Email: "client@example.com", Password: "rahasia123"})

		assert.ErrorIs(t, err, auth.ErrAccountDisabled)
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Rotates The Session", func(t *testing.T) {
		userRepo := new(mocks.UserRepository)
		sessionRepo := new(mocks.SessionRepository)
		svc := newAuthService(userRepo, sessionRepo)

		session := &repository.Session{ID: uuid.New(), UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}
		user := &domain.User{ID: userID, Role: string(domain.RoleClient), Status: domain.UserActive}

		sessionRepo.On("GetByTokenHash", ctx, mock.AnythingOfType("string")).Return(session, nil).Once()
		userRepo.On("GetByID", ctx, userID).Return(user, nil).Once()
		sessionRepo.On("Revoke", ctx, session.ID).Return(nil).Once()
		sessionRepo.On("Create", ctx, mock.AnythingOfType("*repository.Session")).Return(nil).Once()

		tokens, err := svc.RefreshToken(ctx, "some-refresh-token")

		assert.NoError(t, err)
		assert.NotEmpty(t, tokens.RefreshToken)
		sessionRepo.AssertExpectations(t)
	})

	t.Run("Unknown Token", func(t *testing.T) {
		sessionRepo := new(mocks.SessionRepository)
		svc := newAuthService(new(mocks.UserRepository), sessionRepo)

		sessionRepo.On("GetByTokenHash", ctx, mock.AnythingOfType("string")).Return(nil, nil).Once()

		tokens, err := svc.RefreshToken(ctx, "forged")

		assert.Nil(t, tokens)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}
