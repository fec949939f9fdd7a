package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-pos-store/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserUpdate carries a partial user update; nil fields are left as-is.
// A non-nil Password is plaintext and gets re-hashed before persisting.
type UserUpdate struct {
	Username *string
	Password *string
	Role     *string
	FullName *string
	Email    *string
	IsActive *bool
}

func (s *Store) GetAllUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("username").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("get all users: %w", err)
	}
	return users, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	return &user, nil
}

// CreateUser hashes the plaintext password held in user.Password and
// inserts the row. Usernames are unique.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", user.Username).Count(&existing).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if existing > 0 {
		return fmt.Errorf("username %q: %w", user.Username, ErrDuplicate)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("create user: hashing password: %w", err)
	}
	user.Password = string(hashed)
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("username %q: %w", user.Username, ErrDuplicate)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, id uint, upd UserUpdate) (*models.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Username != nil && *upd.Username != user.Username {
		var existing int64
		if err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("username = ? AND id <> ?", *upd.Username, id).Count(&existing).Error; err != nil {
			return nil, fmt.Errorf("update user %d: %w", id, err)
		}
		if existing > 0 {
			return nil, fmt.Errorf("username %q: %w", *upd.Username, ErrDuplicate)
		}
		user.Username = *upd.Username
	}
	if upd.Password != nil && *upd.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("update user %d: hashing password: %w", id, err)
		}
		user.Password = string(hashed)
	}
	if upd.Role != nil {
		user.Role = *upd.Role
	}
	if upd.FullName != nil {
		user.FullName = *upd.FullName
	}
	if upd.Email != nil {
		user.Email = *upd.Email
	}
	if upd.IsActive != nil {
		user.IsActive = *upd.IsActive
	}

	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("username %q: %w", user.Username, ErrDuplicate)
		}
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	return user, nil
}

func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}

// Login authenticates a user and fails closed: unknown username, wrong
// password and a deactivated account all come back as the same
// ErrNoMatch, so callers cannot enumerate accounts. On success the
// user's lastLogin is advanced and the returned copy carries no hash.
func (s *Store) Login(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if !user.IsActive {
		return nil, ErrNoMatch
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrNoMatch
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, fmt.Errorf("login: updating last login: %w", err)
	}

	out := user
	out.Password = ""
	return &out, nil
}

// VerifyPassword re-checks a user's password, e.g. before destructive
// operations. A missing user and a wrong password are indistinguishable.
func (s *Store) VerifyPassword(ctx context.Context, userID uint, password string) (bool, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("verify password: %w", err)
	}
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil, nil
}

func (s *Store) GetUserRoles(ctx context.Context) ([]models.UserRole, error) {
	var roles []models.UserRole
	if err := s.db.WithContext(ctx).Order("id").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("get user roles: %w", err)
	}
	return roles, nil
}
