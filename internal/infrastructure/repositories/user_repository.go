package repositories

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/mycyberclinics/verifysvc/domain"
)

// UserRepositoryImpl implements domain.UserRepository using GORM
type UserRepositoryImpl struct {
	db *gorm.DB
}

// DBUser represents the database model for User (with GORM tags)
type DBUser struct {
	ID                  uint   `gorm:"primaryKey"`
	Email               string `gorm:"uniqueIndex;size:255"`
	Phone               string `gorm:"size:32"`
	PasswordHash        string `gorm:"column:password"`
	EmailVerified       bool   `gorm:"index"`
	OnboardingCompleted bool
	Preferences         string `gorm:"type:jsonb;default:'{}'"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
	DeletedAt           gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBUser) TableName() string {
	return "users"
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// Create implements domain.UserRepository
func (r *UserRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	dbUser, err := r.domainToDB(user)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(dbUser).Error; err != nil {
		return err
	}
	user.ID = dbUser.ID
	return nil
}

// FindByEmail implements domain.UserRepository
func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&dbUser).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbUser)
}

// FindByID implements domain.UserRepository
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dbUser).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbUser)
}

// MarkEmailVerified implements domain.UserRepository
func (r *UserRepositoryImpl) MarkEmailVerified(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", userID).
		Update("email_verified", true).Error
}

// CompleteOnboarding implements domain.UserRepository
func (r *UserRepositoryImpl) CompleteOnboarding(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", userID).
		Update("onboarding_completed", true).Error
}

// UpdatePreferences implements domain.UserRepository
func (r *UserRepositoryImpl) UpdatePreferences(ctx context.Context, userID uint, prefs map[string]any) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", userID).
		Update("preferences", string(data)).Error
}

// domainToDB converts domain user to database user
func (r *UserRepositoryImpl) domainToDB(user *domain.User) (*DBUser, error) {
	prefs := user.Preferences
	if prefs == nil {
		prefs = map[string]any{}
	}
	data, err := json.Marshal(prefs)
	if err != nil {
		return nil, err
	}
	return &DBUser{
		ID:                  user.ID,
		Email:               user.Email,
		Phone:               user.Phone,
		PasswordHash:        user.PasswordHash,
		EmailVerified:       user.EmailVerified,
		OnboardingCompleted: user.OnboardingCompleted,
		Preferences:         string(data),
	}, nil
}

// dbToDomain converts database user to domain user
func (r *UserRepositoryImpl) dbToDomain(dbUser *DBUser) (*domain.User, error) {
	prefs := map[string]any{}
	if dbUser.Preferences != "" {
		if err := json.Unmarshal([]byte(dbUser.Preferences), &prefs); err != nil {
			return nil, err
		}
	}
	return &domain.User{
		ID:                  dbUser.ID,
		Email:               dbUser.Email,
		Phone:               dbUser.Phone,
		PasswordHash:        dbUser.PasswordHash,
		EmailVerified:       dbUser.EmailVerified,
		OnboardingCompleted: dbUser.OnboardingCompleted,
		Preferences:         prefs,
		CreatedAt:           dbUser.CreatedAt,
		UpdatedAt:           dbUser.UpdatedAt,
	}, nil
}
