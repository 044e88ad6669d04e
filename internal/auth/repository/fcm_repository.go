package repository

import (
	"time"

	authdomain "hoosha-backend/internal/auth/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FCMTokenRepository defines the interface for FCM device token operations
type FCMTokenRepository interface {
	SaveToken(userID uint, token, deviceInfo string) error
	GetTokensByUserIDs(userIDs []uint) ([]authdomain.FCMToken, error)
	DeleteToken(token string) error
	DeleteTokensByUserID(userID uint) error
}

// fcmTokenRepository implements FCMTokenRepository interface
type fcmTokenRepository struct {
	db *gorm.DB
}

// NewFCMTokenRepository creates a new instance of fcmTokenRepository
func NewFCMTokenRepository(db *gorm.DB) FCMTokenRepository {
	return &fcmTokenRepository{
		db: db,
	}
}

// SaveToken saves or updates an FCM token for a user (atomic upsert)
func (r *fcmTokenRepository) SaveToken(userID uint, token, deviceInfo string) error {
	fcmToken := &authdomain.FCMToken{
		UserID:     userID,
		Token:      token,
		DeviceInfo: deviceInfo,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	// Atomic upsert: INSERT ... ON CONFLICT (token) DO UPDATE
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "device_info", "updated_at"}),
	}).Create(fcmToken).Error
}

// GetTokensByUserIDs returns the device tokens of the given users.
func (r *fcmTokenRepository) GetTokensByUserIDs(userIDs []uint) ([]authdomain.FCMToken, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var tokens []authdomain.FCMToken
	err := r.db.Where("user_id IN ?", userIDs).Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// DeleteToken removes a specific FCM token
func (r *fcmTokenRepository) DeleteToken(token string) error {
	return r.db.Where("token = ?", token).Delete(&authdomain.FCMToken{}).Error
}

// DeleteTokensByUserID removes all FCM tokens for a user
func (r *fcmTokenRepository) DeleteTokensByUserID(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&authdomain.FCMToken{}).Error
}
