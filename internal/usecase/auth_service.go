package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"regexp"

	"gorm.io/gorm"

	natsadapter "github.com/minjun0702/nodeskillproject/internal/adapters/nats"
	repo "github.com/minjun0702/nodeskillproject/internal/adapters/postgres"
	"github.com/minjun0702/nodeskillproject/internal/domain"
	pkglog "github.com/minjun0702/nodeskillproject/pkg/log"
)

const minPasswordLength = 6

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type AuthService interface {
	SignUp(ctx context.Context, traceID, email, password, passwordConfirm, name string) (*domain.User, error)
	SignIn(ctx context.Context, traceID, email, password string) (*Tokens, error)
	Refresh(ctx context.Context, traceID, refreshToken string) (*Tokens, error)
	SignOut(ctx context.Context, traceID, refreshToken string) (uint, error)
}

type authService struct {
	logger  pkglog.Logger
	users   repo.UserRepository
	refresh repo.RefreshTokenRepository
	codec   TokenCodec
	events  natsadapter.EventPublisher
}

func NewAuthService(logger pkglog.Logger, users repo.UserRepository, refresh repo.RefreshTokenRepository, codec TokenCodec, events natsadapter.EventPublisher) AuthService {
	return &authService{logger: logger, users: users, refresh: refresh, codec: codec, events: events}
}

func (s *authService) SignUp(ctx context.Context, traceID, email, password, passwordConfirm, name string) (*domain.User, error) {
	if email == "" || password == "" || passwordConfirm == "" || name == "" {
		return nil, ErrFieldsRequired
	}
	if !emailRegex.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if password != passwordConfirm {
		return nil, ErrPasswordConfirmMismatch
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{Email: email, PasswordHash: hash, Name: name, Role: domain.RoleApplicant}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	if s.events != nil {
		_ = s.events.UserCreated(ctx, user)
	}

	s.logger.Info().Str("trace_id", traceID).Uint("user_id", user.ID).Msg("signup")
	return user, nil
}

func (s *authService) SignIn(ctx context.Context, traceID, email, password string) (*Tokens, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("trace_id", traceID).Uint("user_id", user.ID).Msg("signin")
	return tokens, nil
}

func (s *authService) Refresh(ctx context.Context, traceID, refreshToken string) (*Tokens, error) {
	userID, err := s.codec.Verify(refreshToken, TokenKindRefresh)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, ErrNoUser
	}

	access, err := s.codec.Issue(userID, TokenKindAccess)
	if err != nil {
		return nil, err
	}
	next, err := s.codec.Issue(userID, TokenKindRefresh)
	if err != nil {
		return nil, err
	}

	// compare-and-swap against the stored fingerprint; only the most
	// recently issued refresh token wins, concurrent reuse loses.
	err = s.refresh.Rotate(ctx, userID, TokenFingerprint(refreshToken), TokenFingerprint(next))
	if errors.Is(err, repo.ErrStaleToken) || errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDiscardedToken
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("trace_id", traceID).Uint("user_id", userID).Msg("tokens rotated")
	return &Tokens{AccessToken: access, RefreshToken: next}, nil
}

func (s *authService) SignOut(ctx context.Context, traceID, refreshToken string) (uint, error) {
	userID, err := s.codec.Verify(refreshToken, TokenKindRefresh)
	if err != nil {
		return 0, err
	}
	record, err := s.refresh.FindByUserID(ctx, userID)
	if err != nil || record.TokenHash == nil {
		return 0, ErrDiscardedToken
	}
	if subtle.ConstantTimeCompare([]byte(*record.TokenHash), []byte(TokenFingerprint(refreshToken))) != 1 {
		return 0, ErrDiscardedToken
	}
	if err := s.refresh.Revoke(ctx, userID); err != nil {
		return 0, err
	}

	s.logger.Info().Str("trace_id", traceID).Uint("user_id", userID).Msg("signout")
	return userID, nil
}

func (s *authService) issueTokens(ctx context.Context, userID uint) (*Tokens, error) {
	access, err := s.codec.Issue(userID, TokenKindAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.Issue(userID, TokenKindRefresh)
	if err != nil {
		return nil, err
	}
	if err := s.refresh.Upsert(ctx, userID, TokenFingerprint(refresh)); err != nil {
		return nil, err
	}
	return &Tokens{AccessToken: access, RefreshToken: refresh}, nil
}
