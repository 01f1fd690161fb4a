package service

import (
	"context"
	"testing"

	"portfolio-notes-be/internal/dto"
	"portfolio-notes-be/internal/entity"
	"portfolio-notes-be/internal/pkg/apperror"
	"portfolio-notes-be/internal/repository/contract"
	"portfolio-notes-be/internal/repository/specification"
	"portfolio-notes-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepository struct {
	users       map[uuid.UUID]*entity.User
	refresh     map[uuid.UUID]*entity.UserRefreshToken
	resetTokens map[uuid.UUID]*entity.PasswordResetToken
	providers   []*entity.UserProvider
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{
		users:       make(map[uuid.UUID]*entity.User),
		refresh:     make(map[uuid.UUID]*entity.UserRefreshToken),
		resetTokens: make(map[uuid.UUID]*entity.PasswordResetToken),
	}
}

func (r *fakeUserRepository) Create(_ context.Context, user *entity.User) error {
	cp := *user
	r.users[user.Id] = &cp
	return nil
}

func (r *fakeUserRepository) Update(_ context.Context, user *entity.User) error {
	cp := *user
	r.users[user.Id] = &cp
	return nil
}

func (r *fakeUserRepository) FindOne(_ context.Context, specs ...specification.Specification) (*entity.User, error) {
	for _, user := range r.users {
		if matchesUser(user, specs) {
			cp := *user
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepository) Count(_ context.Context, specs ...specification.Specification) (int64, error) {
	var n int64
	for _, user := range r.users {
		if matchesUser(user, specs) {
			n++
		}
	}
	return n, nil
}

func matchesUser(user *entity.User, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if user.Id != s.ID {
				return false
			}
		case specification.ByEmail:
			if user.Email != s.Email {
				return false
			}
		}
	}
	return true
}

func (r *fakeUserRepository) SaveUserProvider(_ context.Context, provider *entity.UserProvider) error {
	r.providers = append(r.providers, provider)
	return nil
}

func (r *fakeUserRepository) CreateRefreshToken(_ context.Context, token *entity.UserRefreshToken) error {
	cp := *token
	r.refresh[token.Id] = &cp
	return nil
}

func (r *fakeUserRepository) FindRefreshTokenByHash(_ context.Context, hash string) (*entity.UserRefreshToken, error) {
	for _, token := range r.refresh {
		if token.TokenHash == hash {
			cp := *token
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepository) RevokeRefreshToken(_ context.Context, id uuid.UUID) error {
	if token, ok := r.refresh[id]; ok {
		token.Revoked = true
	}
	return nil
}

func (r *fakeUserRepository) CreatePasswordResetToken(_ context.Context, token *entity.PasswordResetToken) error {
	cp := *token
	r.resetTokens[token.Id] = &cp
	return nil
}

func (r *fakeUserRepository) FindPasswordResetToken(_ context.Context, token string) (*entity.PasswordResetToken, error) {
	for _, record := range r.resetTokens {
		if record.Token == token {
			cp := *record
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepository) MarkPasswordResetTokenUsed(_ context.Context, id uuid.UUID) error {
	if record, ok := r.resetTokens[id]; ok {
		record.Used = true
	}
	return nil
}

var _ contract.UserRepository = (*fakeUserRepository)(nil)

type fakeAuthUnitOfWork struct {
	userRepo *fakeUserRepository
}

func (u *fakeAuthUnitOfWork) Begin(_ context.Context) error { return nil }
func (u *fakeAuthUnitOfWork) Commit() error                 { return nil }
func (u *fakeAuthUnitOfWork) Rollback() error               { return nil }

func (u *fakeAuthUnitOfWork) UserRepository() contract.UserRepository         { return u.userRepo }
func (u *fakeAuthUnitOfWork) NoteRepository() contract.NoteRepository         { return nil }
func (u *fakeAuthUnitOfWork) ActivityRepository() contract.ActivityRepository { return nil }

type fakeAuthFactory struct {
	uow *fakeAuthUnitOfWork
}

func (f *fakeAuthFactory) NewUnitOfWork(_ context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type capturingMailer struct {
	sentTo     []string
	sentTokens []string
}

func (m *capturingMailer) SendResetToken(toEmail, token string) error {
	m.sentTo = append(m.sentTo, toEmail)
	m.sentTokens = append(m.sentTokens, token)
	return nil
}

func newTestAuthService() (IAuthService, *fakeUserRepository, *capturingMailer) {
	repo := newFakeUserRepository()
	mail := &capturingMailer{}
	svc := NewAuthService(&fakeAuthFactory{uow: &fakeAuthUnitOfWork{userRepo: repo}}, mail)
	return svc, repo, mail
}

func TestAuthRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService()

	reg, err := svc.Register(ctx, &dto.RegisterRequest{
		Email:    "alice@example.com",
		Password: "s3cret-pass",
		FullName: "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", reg.Email)

	t.Run("duplicate email is rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, &dto.RegisterRequest{
			Email:    "alice@example.com",
			Password: "another",
			FullName: "Alice Again",
		})
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	})

	t.Run("login with correct password", func(t *testing.T) {
		res, err := svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "s3cret-pass"}, "127.0.0.1", "test-agent")
		require.NoError(t, err)
		assert.NotEmpty(t, res.AccessToken)
		assert.NotEmpty(t, res.RefreshToken)
		assert.Equal(t, "alice@example.com", res.User.Email)
	})

	t.Run("wrong password and unknown email fail identically", func(t *testing.T) {
		_, errWrongPass := svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "nope"}, "", "")
		_, errNoUser := svc.Login(ctx, &dto.LoginRequest{Email: "ghost@example.com", Password: "nope"}, "", "")

		require.Error(t, errWrongPass)
		require.Error(t, errNoUser)
		assert.True(t, apperror.IsCode(errWrongPass, apperror.CodeUnauthenticated))
		assert.Equal(t, errWrongPass.Error(), errNoUser.Error())
	})
}

func TestAuthRefreshRotation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService()

	_, err := svc.Register(ctx, &dto.RegisterRequest{Email: "bob@example.com", Password: "pass-word", FullName: "Bob"})
	require.NoError(t, err)

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "bob@example.com", Password: "pass-word"}, "", "")
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The rotated-out token is dead.
	_, err = svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: login.RefreshToken})
	assert.True(t, apperror.IsCode(err, apperror.CodeUnauthenticated))

	// The new one still works.
	_, err = svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: refreshed.RefreshToken})
	assert.NoError(t, err)
}

func TestAuthLogout(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService()

	_, err := svc.Register(ctx, &dto.RegisterRequest{Email: "carol@example.com", Password: "pass-word", FullName: "Carol"})
	require.NoError(t, err)

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "carol@example.com", Password: "pass-word"}, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, login.RefreshToken))

	_, err = svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: login.RefreshToken})
	assert.True(t, apperror.IsCode(err, apperror.CodeUnauthenticated))

	// Logging out twice is fine.
	assert.NoError(t, svc.Logout(ctx, login.RefreshToken))
}

func TestAuthPasswordReset(t *testing.T) {
	ctx := context.Background()
	svc, _, mail := newTestAuthService()

	_, err := svc.Register(ctx, &dto.RegisterRequest{Email: "dave@example.com", Password: "old-password", FullName: "Dave"})
	require.NoError(t, err)

	t.Run("unknown email sends nothing but reports success", func(t *testing.T) {
		require.NoError(t, svc.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "nobody@example.com"}))
		assert.Empty(t, mail.sentTokens)
	})

	require.NoError(t, svc.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "dave@example.com"}))
	require.Len(t, mail.sentTokens, 1)
	token := mail.sentTokens[0]

	require.NoError(t, svc.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: token, NewPassword: "new-password"}))

	t.Run("old password stops working", func(t *testing.T) {
		_, err := svc.Login(ctx, &dto.LoginRequest{Email: "dave@example.com", Password: "old-password"}, "", "")
		assert.True(t, apperror.IsCode(err, apperror.CodeUnauthenticated))
	})

	t.Run("new password works", func(t *testing.T) {
		_, err := svc.Login(ctx, &dto.LoginRequest{Email: "dave@example.com", Password: "new-password"}, "", "")
		assert.NoError(t, err)
	})

	t.Run("token is single use", func(t *testing.T) {
		err := svc.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: token, NewPassword: "again"})
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	})
}
