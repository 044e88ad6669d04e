package repository

import (
	"errors"
	"time"

	authdomain "hoosha-backend/internal/auth/domain"

	"gorm.io/gorm"
)

// TokenRepository is the credential store: one row per issued token,
// deleted on revocation. Only the auth usecase writes to it.
type TokenRepository interface {
	Save(token *authdomain.Token) error
	FindByJTI(jti, value string) (*authdomain.Token, error)
	DeleteByJTI(jti string) error
	CountLiveRefreshTokens(userID uint, now time.Time) (int64, error)
	DeleteExpired(now time.Time) (int64, error)
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{
		db: db,
	}
}

func (r *tokenRepository) Save(token *authdomain.Token) error {
	return r.db.Create(token).Error
}

// FindByJTI looks up a token row by its id and exact signed value. A row
// that exists with a different value means the jti was reused and must not
// validate.
func (r *tokenRepository) FindByJTI(jti, value string) (*authdomain.Token, error) {
	var token authdomain.Token
	err := r.db.Preload("User").Preload("User.Role").
		Where("jti = ? AND value = ?", jti, value).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

// DeleteByJTI revokes a token. Deleting an absent row is a no-op.
func (r *tokenRepository) DeleteByJTI(jti string) error {
	return r.db.Where("jti = ?", jti).Delete(&authdomain.Token{}).Error
}

func (r *tokenRepository) CountLiveRefreshTokens(userID uint, now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&authdomain.Token{}).
		Where("user_id = ? AND kind = ? AND expires_at > ?", userID, authdomain.TokenKindRefresh, now).
		Count(&count).Error
	return count, err
}

// DeleteExpired removes dead rows to keep the table from growing without
// bound. Expiry is enforced at validation time regardless.
func (r *tokenRepository) DeleteExpired(now time.Time) (int64, error) {
	res := r.db.Where("expires_at <= ?", now).Delete(&authdomain.Token{})
	return res.RowsAffected, res.Error
}
