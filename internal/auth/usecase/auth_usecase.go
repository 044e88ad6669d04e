package usecase

import (
	"errors"
	"strconv"
	"strings"
	"time"

	authdomain "hoosha-backend/internal/auth/domain"
	authdto "hoosha-backend/internal/auth/dto"
	"hoosha-backend/internal/auth/repository"
	"hoosha-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthUsecase issues, validates and revokes bearer tokens and enforces the
// per-role session quota at login.
type AuthUsecase interface {
	Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	Register(req *authdto.RegisterRequest) (*authdto.TokenResponse, error)
	Refresh(refreshToken string) (*authdto.TokenResponse, error)
	Logout(refreshToken string) error
	ValidateBearer(bearerValue, expectedKind string) (*authdomain.User, string, error)
	RevokeToken(jti string) error
}

// Claims is the signed token payload: {jti, type, iat, exp, sub}.
type Claims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

type authUsecase struct {
	db        *gorm.DB
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	config    *config.Config
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(db *gorm.DB, userRepo repository.UserRepository, tokenRepo repository.TokenRepository, cfg *config.Config) AuthUsecase {
	return &authUsecase{
		db:        db,
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		config:    cfg,
	}
}

// Login authenticates by username or email and issues an access+refresh
// pair. The quota count and the token inserts run in one transaction that
// first updates the user row, so concurrent logins for the same user
// serialize on the row lock and cannot both pass a stale count.
func (u *authUsecase) Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error) {
	user, err := u.findForLogin(req)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive || !repository.CheckPasswordHash(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	var resp *authdto.TokenResponse
	err = u.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&authdomain.User{}).Where("id = ?", user.ID).
			Update("updated_at", time.Now().UTC()).Error; err != nil {
			return err
		}

		tokens := repository.NewTokenRepository(tx)
		count, err := tokens.CountLiveRefreshTokens(user.ID, time.Now().UTC())
		if err != nil {
			return err
		}
		if count >= int64(user.Role.MaxSessions) {
			return ErrTooManySessions
		}

		pair, err := u.issuePair(tokens, user)
		if err != nil {
			return err
		}
		resp = pair
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (u *authUsecase) findForLogin(req *authdto.LoginRequest) (*authdomain.User, error) {
	if req.Username != "" {
		return u.userRepo.FindByUsername(req.Username)
	}
	if req.Email != "" {
		return u.userRepo.FindByEmail(req.Email)
	}
	return nil, nil
}

func (u *authUsecase) Register(req *authdto.RegisterRequest) (*authdto.TokenResponse, error) {
	hashedPassword, err := repository.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role, err := u.userRepo.EnsureDefaultRole(u.config.DefaultMaxSessions)
	if err != nil {
		return nil, err
	}

	user := &authdomain.User{
		Username:         req.Username,
		Email:            req.Email,
		Password:         hashedPassword,
		Phone:            req.Phone,
		FullName:         req.FullName,
		RoleID:           role.ID,
		Role:             *role,
		IsActive:         true,
		MessagingEnabled: true,
	}
	if err := u.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	var resp *authdto.TokenResponse
	err = u.db.Transaction(func(tx *gorm.DB) error {
		pair, err := u.issuePair(repository.NewTokenRepository(tx), user)
		if err != nil {
			return err
		}
		resp = pair
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Refresh rotates a valid refresh token: the old row is deleted and a new
// pair issued in one transaction, so the session count never grows.
func (u *authUsecase) Refresh(refreshToken string) (*authdto.TokenResponse, error) {
	token, reason, err := u.validateValue(refreshToken, authdomain.TokenKindRefresh)
	if err != nil {
		return nil, err
	}
	if reason != ReasonValid {
		return nil, ErrUnauthorized
	}

	var resp *authdto.TokenResponse
	err = u.db.Transaction(func(tx *gorm.DB) error {
		tokens := repository.NewTokenRepository(tx)
		if err := tokens.DeleteByJTI(token.JTI); err != nil {
			return err
		}
		pair, err := u.issuePair(tokens, &token.User)
		if err != nil {
			return err
		}
		resp = pair
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (u *authUsecase) Logout(refreshToken string) error {
	token, reason, err := u.validateValue(refreshToken, authdomain.TokenKindRefresh)
	if err != nil {
		return err
	}
	if reason != ReasonValid {
		return ErrUnauthorized
	}
	return u.tokenRepo.DeleteByJTI(token.JTI)
}

// RevokeToken deletes the persisted row for a token id. No-op when absent.
func (u *authUsecase) RevokeToken(jti string) error {
	return u.tokenRepo.DeleteByJTI(jti)
}

// ValidateBearer checks a "scheme value" header against the expected token
// kind. The second return is a reason code; the user is non-nil only for
// ReasonValid. The error return is reserved for storage failures.
func (u *authUsecase) ValidateBearer(bearerValue, expectedKind string) (*authdomain.User, string, error) {
	parts := strings.Split(bearerValue, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, ReasonInvalidFormat, nil
	}

	token, reason, err := u.validateValue(parts[1], expectedKind)
	if err != nil {
		return nil, reason, err
	}
	if reason != ReasonValid {
		return nil, reason, nil
	}
	return &token.User, ReasonValid, nil
}

// validateValue verifies signature, type tag, persisted row and owner
// state for a raw signed token.
func (u *authUsecase) validateValue(value, expectedKind string) (*authdomain.Token, string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.config.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ReasonExpired, nil
		}
		return nil, ReasonInvalid, nil
	}
	if !parsed.Valid {
		return nil, ReasonInvalid, nil
	}

	if claims.TokenType != expectedKind {
		return nil, ReasonWrongType, nil
	}

	row, err := u.tokenRepo.FindByJTI(claims.ID, value)
	if err != nil {
		return nil, ReasonNotFound, err
	}
	if row == nil || !row.User.IsActive {
		return nil, ReasonNotFound, nil
	}
	return row, ReasonValid, nil
}

func (u *authUsecase) issuePair(tokens repository.TokenRepository, user *authdomain.User) (*authdto.TokenResponse, error) {
	access, err := u.issue(tokens, user, authdomain.TokenKindAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := u.issue(tokens, user, authdomain.TokenKindRefresh)
	if err != nil {
		return nil, err
	}
	return &authdto.TokenResponse{AccessToken: access, RefreshToken: refresh}, nil
}

// issue signs a fresh token of the given kind and persists its row.
func (u *authUsecase) issue(tokens repository.TokenRepository, user *authdomain.User, kind string) (string, error) {
	lifetime := u.config.AccessTokenExpiry
	if kind == authdomain.TokenKindRefresh {
		lifetime = u.config.RefreshTokenExpiry
	}

	now := time.Now().UTC()
	exp := now.Add(lifetime)
	jti := uuid.New().String()

	claims := Claims{
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(u.config.JWTSecret))
	if err != nil {
		return "", err
	}

	row := &authdomain.Token{
		JTI:       jti,
		Value:     signed,
		UserID:    user.ID,
		Kind:      kind,
		CreatedAt: now,
		ExpiresAt: exp,
	}
	if err := tokens.Save(row); err != nil {
		return "", err
	}
	return signed, nil
}
