package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-manager-api/internal/models"
	"github.com/adanyl0v/task-manager-api/internal/storage"
	"github.com/adanyl0v/task-manager-api/internal/validation"
)

// TokenConfig controls how bearer tokens are signed and verified.
type TokenConfig struct {
	Issuer     string
	SigningKey []byte
	// TTL of zero issues tokens without an expiry claim.
	TTL time.Duration
}

type UserStore interface {
	storage.UserRepository
	storage.TokenRepository
}

type authServiceImpl struct {
	logger     zerolog.Logger
	store      UserStore
	validator  *validation.Validator
	tokens     TokenConfig
	hashParams *argon2id.Params

	// dummyHash is compared against when the email is unknown, so both
	// failure paths of Login spend the same hashing time.
	dummyHashOnce sync.Once
	dummyHash     string
}

// NewAuthService creates an AuthService. A nil hashParams falls back to
// argon2id.DefaultParams.
func NewAuthService(
	logger zerolog.Logger,
	store UserStore,
	validator *validation.Validator,
	tokens TokenConfig,
	hashParams *argon2id.Params,
) AuthService {
	if hashParams == nil {
		hashParams = argon2id.DefaultParams
	}
	return &authServiceImpl{
		logger:     logger,
		store:      store,
		validator:  validator,
		tokens:     tokens,
		hashParams: hashParams,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authServiceImpl) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Email = normalizeEmail(params.Email)

	errs := s.validator.Struct(params)
	if errs == nil {
		errs = validation.Errors{}
	}
	if params.Password != "" {
		for _, msg := range validation.PasswordPolicy(params.Password) {
			errs.Add("password", msg)
		}
	}
	if params.Email != "" && !errs.Has("email") {
		exists, err := s.store.EmailExists(ctx, params.Email)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to check email")
			return nil, err
		}
		if exists {
			errs.Add("email", emailTakenMessage)
		}
	}
	if len(errs) > 0 {
		s.logger.Debug().
			Int("fields", len(errs)).
			Msg("register validation failed")
		return nil, errs
	}

	userUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate user uuid")
		return nil, err
	}

	passwordHash, err := argon2id.CreateHash(params.Password, s.hashParams)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, err
	}

	user := &models.User{
		ID:       userUUID.String(),
		Name:     params.Name,
		Email:    params.Email,
		Password: passwordHash,
	}
	token, err := newToken(user.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate token uuid")
		return nil, err
	}

	err = s.store.CreateUser(ctx, user, token)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			s.logger.Warn().
				Str("email", user.Email).
				Msg("email taken concurrently")
			return nil, validation.Errors{"email": {emailTakenMessage}}
		}

		s.logger.Error().
			Err(err).
			Msg("failed to create user")
		return nil, err
	}

	accessToken, err := s.signToken(token)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to sign token")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("registered user")
	return &AuthResult{
		User:        user,
		Token:       token,
		AccessToken: accessToken,
		TokenType:   TokenType,
	}, nil
}

const emailTakenMessage = "The email has already been taken."

func (s *authServiceImpl) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	params.Email = normalizeEmail(params.Email)

	errs := s.validator.Struct(params)
	if errs != nil {
		return nil, errs
	}

	user, err := s.store.GetUserByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			_, _ = argon2id.ComparePasswordAndHash(params.Password, s.getDummyHash())
			s.logger.Warn().Msg("login for unknown email")
			return nil, ErrInvalidCredentials
		}

		s.logger.Error().
			Err(err).
			Msg("failed to select user by email")
		return nil, err
	}

	match, err := argon2id.ComparePasswordAndHash(params.Password, user.Password)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to compare password")
		return nil, err
	} else if !match {
		s.logger.Warn().
			Str("user_id", user.ID).
			Msg("passwords do not match")
		return nil, ErrInvalidCredentials
	}

	token, err := newToken(user.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate token uuid")
		return nil, err
	}

	err = s.store.ReplaceUserTokens(ctx, token)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to replace user tokens")
		return nil, err
	}

	accessToken, err := s.signToken(token)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to sign token")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("token_id", token.ID).
		Msg("logged in")
	return &AuthResult{
		User:        user,
		Token:       token,
		AccessToken: accessToken,
		TokenType:   TokenType,
	}, nil
}

func (s *authServiceImpl) Authenticate(ctx context.Context, accessToken string) (*models.Token, *models.User, error) {
	claims, err := s.parseToken(accessToken)
	if err != nil {
		s.logger.Debug().
			Err(err).
			Msg("rejected bearer token")
		return nil, nil, ErrUnauthenticated
	}

	token, user, err := s.store.GetTokenWithUser(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Debug().
				Str("token_id", claims.Subject).
				Msg("token revoked")
			return nil, nil, ErrUnauthenticated
		}

		s.logger.Error().
			Err(err).
			Msg("failed to select token")
		return nil, nil, err
	}

	usedAt := time.Now().UTC()
	err = s.store.TouchToken(ctx, token.ID, usedAt)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("token_id", token.ID).
			Msg("failed to touch token")
	} else {
		token.LastUsedAt = &usedAt
	}
	return token, user, nil
}

func (s *authServiceImpl) Logout(ctx context.Context, tokenID string) error {
	err := s.store.DeleteToken(ctx, tokenID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUnauthenticated
		}

		s.logger.Error().
			Err(err).
			Str("token_id", tokenID).
			Msg("failed to delete token")
		return err
	}

	s.logger.Info().
		Str("token_id", tokenID).
		Msg("logged out")
	return nil
}

func (s *authServiceImpl) getDummyHash() string {
	s.dummyHashOnce.Do(func() {
		hash, err := argon2id.CreateHash(uuid.NewString(), s.hashParams)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to create dummy hash, using fixed salt")
			hash = fixedSaltHash(s.hashParams)
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// fixedSaltHash encodes an argon2id hash with a zero salt and key. It never
// matches a password but costs as much to compare as a real one.
func fixedSaltHash(params *argon2id.Params) string {
	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		params.Memory,
		params.Iterations,
		params.Parallelism,
		base64.RawStdEncoding.EncodeToString(make([]byte, params.SaltLength)),
		base64.RawStdEncoding.EncodeToString(make([]byte, params.KeyLength)),
	)
}

func newToken(userID string) (*models.Token, error) {
	tokenUUID, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	return &models.Token{
		ID:     tokenUUID.String(),
		UserID: userID,
		Name:   models.DefaultTokenName,
	}, nil
}

func (s *authServiceImpl) signToken(token *models.Token) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:   s.tokens.Issuer,
		Subject:  token.ID,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if s.tokens.TTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.tokens.TTL))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.tokens.SigningKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *authServiceImpl) parseToken(accessToken string) (*jwt.RegisteredClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithIssuer(s.tokens.Issuer),
		jwt.WithIssuedAt(),
	}
	if s.tokens.TTL > 0 {
		opts = append(opts, jwt.WithExpirationRequired())
	}

	t, err := jwt.ParseWithClaims(
		accessToken,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.tokens.SigningKey, nil
		},
		opts...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := t.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return nil, fmt.Errorf("failed to parse token claims")
	}
	return claims, nil
}
