package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inkwell/database"
	"inkwell/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	db *database.DB
}

func NewAuthService(db *database.DB) *AuthService {
	return &AuthService{db: db}
}

type credentials struct {
	Username string `validate:"required,max=100"`
	Password string `validate:"required"`
}

// Register creates a regular account. Username and password are trimmed
// before validation.
func (as *AuthService) Register(ctx context.Context, username, password string) (*models.Account, error) {
	// Passwords are trimmed like every other form field; Authenticate trims
	// the same way, so both sides must change together.
	in := credentials{
		Username: strings.TrimSpace(username),
		Password: strings.TrimSpace(password),
	}
	if err := check(in, "Please fill in all fields."); err != nil {
		return nil, err
	}
	return as.createAccount(ctx, in.Username, in.Password, false)
}

func (as *AuthService) createAccount(ctx context.Context, username, password string, isAdmin bool) (*models.Account, error) {
	// Check if account already exists
	_, err := as.GetAccountByUsername(ctx, username)
	if err == nil {
		return nil, fmt.Errorf("username %q: %w", username, ErrConflict)
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		Username:     username,
		PasswordHash: string(hashed),
		IsAdmin:      isAdmin,
	}
	if err := as.db.WithContext(ctx).Create(account).Error; err != nil {
		// The unique index catches a concurrent registration of the same name.
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return nil, fmt.Errorf("username %q: %w", username, ErrConflict)
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

func (as *AuthService) GetAccountByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	err := as.db.WithContext(ctx).First(&account, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("account %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (as *AuthService) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	var account models.Account
	err := as.db.WithContext(ctx).Where("username = ?", username).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("account %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords both yield ErrInvalidCredentials.
func (as *AuthService) Authenticate(ctx context.Context, username, password string) (*models.Account, error) {
	account, err := as.GetAccountByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	// Trimmed to match Register.
	err = bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(strings.TrimSpace(password)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

// EnsureAdmin returns the first administrator account, creating one with the
// given credentials when there is none.
func (as *AuthService) EnsureAdmin(ctx context.Context, username, password string) (*models.Account, error) {
	var admin models.Account
	err := as.db.WithContext(ctx).Where("is_admin = ?", true).Order("id").First(&admin).Error
	if err == nil {
		return &admin, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created, err := as.createAccount(ctx, username, password, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create default admin: %w", err)
	}
	logrus.WithField("username", username).Warn("Created default admin account; change its password")
	return created, nil
}

// Profile is the public view of an account.
type Profile struct {
	Account   *models.Account
	Articles  []models.Article
	Followers int64
	Following int64
	// IsFollowing is set when a viewer is known.
	IsFollowing bool
}

func (as *AuthService) GetProfile(ctx context.Context, accountID uint, viewerID *uint) (*Profile, error) {
	account, err := as.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	db := as.db.WithContext(ctx)
	profile := &Profile{Account: account}
	err = db.Preload("Author").
		Where("user_id = ?", accountID).
		Order("id DESC").
		Find(&profile.Articles).Error
	if err != nil {
		return nil, err
	}
	profile.Followers, profile.Following, err = followCounts(db, accountID)
	if err != nil {
		return nil, err
	}
	if viewerID != nil {
		profile.IsFollowing, err = isFollowing(db, *viewerID, accountID)
		if err != nil {
			return nil, err
		}
	}
	return profile, nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
