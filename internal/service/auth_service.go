package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"time"

	"portfolio-notes-be/internal/dto"
	"portfolio-notes-be/internal/entity"
	"portfolio-notes-be/internal/pkg/apperror"
	"portfolio-notes-be/internal/pkg/mailer"
	"portfolio-notes-be/internal/repository/specification"
	"portfolio-notes-be/internal/repository/unitofwork"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest, ipAddress, userAgent string) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
}

type authService struct {
	uowFactory   unitofwork.RepositoryFactory
	emailService mailer.IEmailService
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, emailService mailer.IEmailService) IAuthService {
	return &authService{
		uowFactory:   uowFactory,
		emailService: emailService,
	}
}

func generateOpaqueToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// SignAccessToken issues the 24h JWT consumed by the JwtMiddleware.
func SignAccessToken(user *entity.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"email":   user.Email,
		"exp":     time.Now().Add(time.Hour * 24).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, apperror.Internal("failed to look up user", err)
	}
	if existing != nil {
		return nil, apperror.Validation("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal("failed to hash password", err)
	}
	hashStr := string(hash)

	user := &entity.User{
		Id:           uuid.New(),
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: &hashStr,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, apperror.Internal("failed to create user", err)
	}

	return &dto.RegisterResponse{
		Id:    user.Id,
		Email: user.Email,
	}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, ipAddress, userAgent string) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, apperror.Internal("failed to look up user", err)
	}
	// Same answer for unknown email and wrong password.
	if user == nil || user.PasswordHash == nil {
		return nil, apperror.Unauthenticated("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.Unauthenticated("invalid email or password")
	}

	return s.issueSession(ctx, uow, user, ipAddress, userAgent)
}

func (s *authService) issueSession(ctx context.Context, uow unitofwork.UnitOfWork, user *entity.User, ipAddress, userAgent string) (*dto.LoginResponse, error) {
	accessToken, err := SignAccessToken(user)
	if err != nil {
		return nil, apperror.Internal("failed to sign access token", err)
	}

	refreshToken, err := generateOpaqueToken()
	if err != nil {
		return nil, apperror.Internal("failed to generate refresh token", err)
	}

	record := &entity.UserRefreshToken{
		Id:        uuid.New(),
		UserId:    user.Id,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: time.Now().Add(30 * 24 * time.Hour),
		IpAddress: ipAddress,
		UserAgent: userAgent,
		CreatedAt: time.Now(),
	}
	if err := uow.UserRepository().CreateRefreshToken(ctx, record); err != nil {
		return nil, apperror.Internal("failed to persist refresh token", err)
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: dto.UserDTO{
			Id:        user.Id,
			Email:     user.Email,
			FullName:  user.FullName,
			AvatarURL: user.AvatarURL,
		},
	}, nil
}

func (s *authService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	record, err := uow.UserRepository().FindRefreshTokenByHash(ctx, hashToken(req.RefreshToken))
	if err != nil {
		return nil, apperror.Internal("failed to look up refresh token", err)
	}
	if record == nil || record.Revoked || time.Now().After(record.ExpiresAt) {
		return nil, apperror.Unauthenticated("invalid refresh token")
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: record.UserId})
	if err != nil {
		return nil, apperror.Internal("failed to look up user", err)
	}
	if user == nil {
		return nil, apperror.Unauthenticated("invalid refresh token")
	}

	// Rotate: the old token is revoked before a new session is issued.
	if err := uow.UserRepository().RevokeRefreshToken(ctx, record.Id); err != nil {
		return nil, apperror.Internal("failed to revoke refresh token", err)
	}

	return s.issueSession(ctx, uow, user, record.IpAddress, record.UserAgent)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	record, err := uow.UserRepository().FindRefreshTokenByHash(ctx, hashToken(refreshToken))
	if err != nil {
		return apperror.Internal("failed to look up refresh token", err)
	}
	if record == nil {
		// Already gone; logout is idempotent.
		return nil
	}
	if err := uow.UserRepository().RevokeRefreshToken(ctx, record.Id); err != nil {
		return apperror.Internal("failed to revoke refresh token", err)
	}
	return nil
}

func (s *authService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return apperror.Internal("failed to look up user", err)
	}
	if user == nil {
		// Do not reveal whether the address is registered.
		return nil
	}

	token, err := generateOpaqueToken()
	if err != nil {
		return apperror.Internal("failed to generate reset token", err)
	}

	record := &entity.PasswordResetToken{
		Id:        uuid.New(),
		UserId:    user.Id,
		Token:     hashToken(token),
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
	if err := uow.UserRepository().CreatePasswordResetToken(ctx, record); err != nil {
		return apperror.Internal("failed to persist reset token", err)
	}

	if err := s.emailService.SendResetToken(user.Email, token); err != nil {
		return apperror.Internal("failed to send reset mail", err)
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	record, err := uow.UserRepository().FindPasswordResetToken(ctx, hashToken(req.Token))
	if err != nil {
		return apperror.Internal("failed to look up reset token", err)
	}
	if record == nil || record.Used || time.Now().After(record.ExpiresAt) {
		return apperror.Validation("invalid or expired reset token")
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: record.UserId})
	if err != nil {
		return apperror.Internal("failed to look up user", err)
	}
	if user == nil {
		return apperror.Validation("invalid or expired reset token")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperror.Internal("failed to hash password", err)
	}
	hashStr := string(hash)
	user.PasswordHash = &hashStr
	user.UpdatedAt = time.Now()

	if err := uow.Begin(ctx); err != nil {
		return apperror.Internal("failed to begin transaction", err)
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return apperror.Internal("failed to update password", err)
	}
	if err := uow.UserRepository().MarkPasswordResetTokenUsed(ctx, record.Id); err != nil {
		return apperror.Internal("failed to consume reset token", err)
	}

	if err := uow.Commit(); err != nil {
		return apperror.Internal("failed to commit password reset", err)
	}
	return nil
}
