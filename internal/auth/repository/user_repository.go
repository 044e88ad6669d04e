package repository

import (
	"errors"
	"time"

	authdomain "hoosha-backend/internal/auth/domain"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users and roles.
type UserRepository interface {
	Create(user *authdomain.User) error
	FindByID(id uint) (*authdomain.User, error)
	FindByUsername(username string) (*authdomain.User, error)
	FindByEmail(email string) (*authdomain.User, error)
	EnsureDefaultRole(maxSessions int) (*authdomain.Role, error)
}

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of userRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) Create(user *authdomain.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	return r.db.Create(user).Error
}

func (r *userRepository) FindByID(id uint) (*authdomain.User, error) {
	var user authdomain.User
	err := r.db.Preload("Role").Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(username string) (*authdomain.User, error) {
	var user authdomain.User
	err := r.db.Preload("Role").Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*authdomain.User, error) {
	var user authdomain.User
	err := r.db.Preload("Role").Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// EnsureDefaultRole returns the "normal" role, creating it on first use.
func (r *userRepository) EnsureDefaultRole(maxSessions int) (*authdomain.Role, error) {
	role := authdomain.Role{Name: "normal", MaxSessions: maxSessions}
	err := r.db.Where(authdomain.Role{Name: "normal"}).FirstOrCreate(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with a hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
