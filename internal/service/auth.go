package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/mrhexvel/ezgu/internal/model"
	"github.com/mrhexvel/ezgu/internal/notify"
	jwtpkg "github.com/mrhexvel/ezgu/pkg/jwt"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const resetTokenTTL = time.Hour

type AuthService struct {
	db        *gorm.DB
	notifier  notify.Notifier
	log       *zap.Logger
	jwtSecret string
	jwtExpire time.Duration
}

func NewAuthService(db *gorm.DB, notifier notify.Notifier, log *zap.Logger, jwtSecret string, jwtExpire time.Duration) *AuthService {
	return &AuthService{
		db:        db,
		notifier:  notifier,
		log:       log,
		jwtSecret: jwtSecret,
		jwtExpire: jwtExpire,
	}
}

// ValidatePassword requires at least 8 characters with both letters and digits.
func ValidatePassword(p string) error {
	if len(p) < 8 {
		return ErrWeakPassword
	}
	var letter, digit bool
	for _, r := range p {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return ErrWeakPassword
	}
	return nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", errorf(ErrInvalidInput, "invalid email address")
	}
	return email, nil
}

func hashPassword(p string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(p), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

type Credentials struct {
	User     *model.User
	Token    string
	ExpireAt time.Time
}

// Register creates a volunteer account and signs it in.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*Credentials, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errorf(ErrInvalidInput, "name is required")
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleVolunteer,
		Level:        1,
		LastLoginAt:  &now,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, duplicate(err, ErrEmailTaken)
	}
	return s.IssueToken(user)
}

// Login checks the password. Unknown emails and wrong passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Credentials, error) {
	db := s.db.WithContext(ctx)
	var user model.User
	if err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		return nil, notFound(err, ErrInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	now := time.Now().UTC()
	if err := db.Model(&user).Update("last_login_at", &now).Error; err != nil {
		return nil, err
	}
	return s.IssueToken(&user)
}

func (s *AuthService) IssueToken(user *model.User) (*Credentials, error) {
	token, expireAt, err := jwtpkg.GenerateToken(s.jwtSecret, user.ID, user.Role, s.jwtExpire)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &Credentials{User: user, Token: token, ExpireAt: expireAt}, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RequestPasswordReset stores a one-hour reset token for the account and
// hands the plain token to the notifier. Unknown emails succeed silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	db := s.db.WithContext(ctx)
	var user model.User
	err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Info("password reset for unknown email")
			return nil
		}
		return err
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	token := hex.EncodeToString(buf)
	expiresAt := time.Now().UTC().Add(resetTokenTTL)
	if err := db.Model(&user).Updates(map[string]interface{}{
		"reset_token_hash": hashResetToken(token),
		"reset_expires_at": expiresAt,
	}).Error; err != nil {
		return err
	}

	if err := s.notifier.NotifyPasswordResetRequested(ctx, notify.PasswordResetRequestedEvent{
		Recipient: notify.Recipient{UserID: user.ID, Name: user.Name, Email: user.Email},
		Token:     token,
		ExpiresAt: expiresAt,
	}); err != nil {
		s.log.Warn("notify password reset", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	return nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	if token == "" {
		return ErrInvalidResetToken
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Where("reset_token_hash = ? AND reset_expires_at > ?", hashResetToken(token), time.Now().UTC()).
			First(&user).Error; err != nil {
			return notFound(err, ErrInvalidResetToken)
		}
		return tx.Model(&user).Updates(map[string]interface{}{
			"password_hash":    hash,
			"reset_token_hash": "",
			"reset_expires_at": nil,
		}).Error
	})
}

type OperationLogFilter struct {
	UserID       *uint
	Action       string
	ResourceType string
	StartTime    *time.Time
	EndTime      *time.Time
}

func (s *AuthService) GetOperationLogs(ctx context.Context, f OperationLogFilter, page Page) ([]model.OperationLog, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.OperationLog{})
	if f.UserID != nil {
		query = query.Where("user_id = ?", *f.UserID)
	}
	if f.Action != "" {
		query = query.Where("action = ?", f.Action)
	}
	if f.ResourceType != "" {
		query = query.Where("resource_type = ?", f.ResourceType)
	}
	if f.StartTime != nil {
		query = query.Where("created_at >= ?", f.StartTime.UTC())
	}
	if f.EndTime != nil {
		query = query.Where("created_at <= ?", f.EndTime.UTC())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var logs []model.OperationLog
	if err := page.apply(query.Preload("User")).Order("created_at DESC, id DESC").Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (s *AuthService) CreateOperationLog(ctx context.Context, log *model.OperationLog) error {
	return s.db.WithContext(ctx).Create(log).Error
}
