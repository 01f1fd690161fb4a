package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"time"

	"portfolio-notes-be/internal/dto"
	"portfolio-notes-be/internal/entity"
	"portfolio-notes-be/internal/pkg/apperror"
	"portfolio-notes-be/internal/pkg/logger"
	"portfolio-notes-be/internal/repository/session"
	"portfolio-notes-be/internal/repository/specification"
	"portfolio-notes-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const oauthStateTTL = 10 * time.Minute

type IOAuthService interface {
	GetLoginURL(ctx context.Context, provider string) (string, error)
	HandleCallback(ctx context.Context, provider, state, code string) (*dto.LoginResponse, error)
}

type oauthService struct {
	uowFactory unitofwork.RepositoryFactory
	stateStore session.StateStore
	googleConf *oauth2.Config
	log        logger.ILogger
}

func NewOAuthService(uowFactory unitofwork.RepositoryFactory, stateStore session.StateStore, log logger.ILogger) IOAuthService {
	conf := &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	return &oauthService{
		uowFactory: uowFactory,
		stateStore: stateStore,
		googleConf: conf,
		log:        log,
	}
}

func (s *oauthService) GetLoginURL(ctx context.Context, provider string) (string, error) {
	if provider != "google" {
		return "", apperror.Validation("unsupported provider")
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", apperror.Internal("failed to generate state", err)
	}
	state := base64.URLEncoding.EncodeToString(b)

	if err := s.stateStore.SaveOAuthState(ctx, state, oauthStateTTL); err != nil {
		return "", apperror.Internal("failed to store oauth state", err)
	}

	return s.googleConf.AuthCodeURL(state), nil
}

func (s *oauthService) HandleCallback(ctx context.Context, provider, state, code string) (*dto.LoginResponse, error) {
	if provider != "google" {
		return nil, apperror.Validation("unsupported provider")
	}
	if code == "" {
		return nil, apperror.Validation("missing authorization code")
	}

	ok, err := s.stateStore.ConsumeOAuthState(ctx, state)
	if err != nil {
		return nil, apperror.Internal("failed to verify oauth state", err)
	}
	if !ok {
		return nil, apperror.Unauthenticated("invalid oauth state")
	}

	token, err := s.googleConf.Exchange(ctx, code)
	if err != nil {
		return nil, apperror.Unauthenticated("code exchange failed")
	}

	googleUser, err := s.fetchGoogleUser(token.AccessToken)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: googleUser.Email})
	if err != nil {
		return nil, apperror.Internal("failed to look up user", err)
	}

	if user == nil {
		user = &entity.User{
			Id:        uuid.New(),
			Email:     googleUser.Email,
			FullName:  googleUser.Name,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if googleUser.Picture != "" {
			pic := googleUser.Picture
			user.AvatarURL = &pic
		}
		if err := uow.UserRepository().Create(ctx, user); err != nil {
			return nil, apperror.Internal("failed to create user", err)
		}
		s.log.Info("oauth", "created user from google sign-in", map[string]interface{}{"user_id": user.Id.String()})
	}

	userProvider := &entity.UserProvider{
		Id:             uuid.New(),
		UserId:         user.Id,
		ProviderName:   "google",
		ProviderUserId: googleUser.ID,
		AvatarURL:      googleUser.Picture,
		CreatedAt:      time.Now(),
	}
	if err := uow.UserRepository().SaveUserProvider(ctx, userProvider); err != nil {
		return nil, apperror.Internal("failed to save provider info", err)
	}

	accessToken, err := SignAccessToken(user)
	if err != nil {
		return nil, apperror.Internal("failed to sign access token", err)
	}

	return &dto.LoginResponse{
		AccessToken: accessToken,
		User: dto.UserDTO{
			Id:        user.Id,
			Email:     user.Email,
			FullName:  user.FullName,
			AvatarURL: user.AvatarURL,
		},
	}, nil
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (s *oauthService) fetchGoogleUser(accessToken string) (*googleUserInfo, error) {
	resp, err := http.Get("https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + accessToken)
	if err != nil {
		return nil, apperror.Internal("failed getting user info", err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.Internal("failed reading user info response", err)
	}

	var info googleUserInfo
	if err := json.Unmarshal(content, &info); err != nil {
		return nil, apperror.Internal("failed to parse user info", err)
	}
	return &info, nil
}
