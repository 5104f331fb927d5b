package services

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/aydinemrecan/scamradar-backend/internal/cache"
	"github.com/aydinemrecan/scamradar-backend/internal/config"
	"github.com/aydinemrecan/scamradar-backend/internal/dto"
	"github.com/aydinemrecan/scamradar-backend/internal/mailer"
	"github.com/aydinemrecan/scamradar-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account deactivated")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
	ErrCodeInvalid        = errors.New("invalid or expired verification code")
	ErrRateLimited        = errors.New("too many attempts, try again later")
)

// Token type claims.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

const codeTTL = 15 * time.Minute

type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	mail   mailer.Mailer
	limits *cache.Cache
}

func NewAuthService(db *gorm.DB, cfg *config.Config, mail mailer.Mailer, limits *cache.Cache) *AuthService {
	return &AuthService{db: db, cfg: cfg, mail: mail, limits: limits}
}

func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.AuthResponse, bool, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User
	if err := s.db.Where("lower(email) = ?", email).First(&existing).Error; err == nil {
		return nil, false, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Email:         email,
		Password:      string(hash),
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Bio:           strings.TrimSpace(req.Bio),
		Role:          models.RoleUser,
		RiskTier:      models.RiskLow,
		IsActive:      true,
		AccountStatus: models.AccountActive,
	}

	if s.cfg.RequireVerification {
		code, expires := s.newVerificationCode()
		user.VerificationCode = code
		user.CodeExpiresAt = &expires
	} else {
		user.EmailVerified = true
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	if s.cfg.RequireVerification {
		s.sendVerificationMail(&user)
		return nil, true, nil
	}

	resp, err := s.tokenResponse(&user)
	return resp, false, err
}

func (s *AuthService) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := s.db.Where("lower(email) = ?", email).First(&user).Error; err != nil {
		// Same error for unknown email and wrong password, no enumeration.
		return nil, ErrInvalidCredentials
	}

	// 5 attempts per rolling 5 minutes per user id; cache failure fails open.
	key := fmt.Sprintf("login:%d", user.ID)
	if n, err := s.limits.Incr(key, 5*time.Minute); err == nil && n > 5 {
		return nil, ErrRateLimited
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive || user.AccountStatus != models.AccountActive {
		return nil, ErrAccountDeactivated
	}
	if s.cfg.RequireVerification && !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	now := time.Now().UTC()
	if err := s.db.Model(&user).Update("last_login", now).Error; err != nil {
		slog.Warn("failed to update last_login", "user_id", user.ID, "error", err)
	}
	user.LastLogin = &now
	s.limits.Delete(key)

	return s.tokenResponse(&user)
}

func (s *AuthService) Refresh(req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	userID, err := s.ParseToken(req.RefreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, ErrInvalidToken
	}
	if !user.IsActive || user.AccountStatus != models.AccountActive {
		return nil, ErrAccountDeactivated
	}

	return s.tokenResponse(&user)
}

// VerifyEmail checks an unexpired code, marks the user verified and issues
// tokens. Attempt limits: 50/hour per IP, 10/hour per email.
func (s *AuthService) VerifyEmail(ip string, req *dto.VerifyEmailRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if n, err := s.limits.Incr("verify:ip:"+ip, time.Hour); err == nil && n > 50 {
		return nil, ErrRateLimited
	}
	if n, err := s.limits.Incr("verify:email:"+email, time.Hour); err == nil && n > 10 {
		return nil, ErrRateLimited
	}

	var user models.User
	if err := s.db.Where("lower(email) = ?", email).First(&user).Error; err != nil {
		return nil, ErrUserNotFound
	}
	if user.EmailVerified {
		return s.tokenResponse(&user)
	}
	if user.VerificationCode == "" || user.VerificationCode != req.Code ||
		user.CodeExpiresAt == nil || time.Now().After(*user.CodeExpiresAt) {
		return nil, ErrCodeInvalid
	}

	if err := s.db.Model(&user).Updates(map[string]interface{}{
		"email_verified":    true,
		"verification_code": "",
		"code_expires_at":   nil,
	}).Error; err != nil {
		return nil, err
	}
	user.EmailVerified = true

	return s.tokenResponse(&user)
}

// ResendVerification regenerates the code with a fresh expiry and mails it.
// Limits: 1/minute and 20/day per IP, 1/minute and 5/day per email.
func (s *AuthService) ResendVerification(ip string, req *dto.ResendVerificationRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	for _, limit := range []struct {
		key string
		max int64
		ttl time.Duration
	}{
		{"resend:min:ip:" + ip, 1, time.Minute},
		{"resend:min:email:" + email, 1, time.Minute},
		{"resend:day:ip:" + ip, 20, 24 * time.Hour},
		{"resend:day:email:" + email, 5, 24 * time.Hour},
	} {
		if n, err := s.limits.Incr(limit.key, limit.ttl); err == nil && n > limit.max {
			return ErrRateLimited
		}
	}

	var user models.User
	if err := s.db.Where("lower(email) = ?", email).First(&user).Error; err != nil {
		return ErrUserNotFound
	}
	if user.EmailVerified {
		return nil
	}

	code, expires := s.newVerificationCode()
	if err := s.db.Model(&user).Updates(map[string]interface{}{
		"verification_code": code,
		"code_expires_at":   expires,
	}).Error; err != nil {
		return err
	}
	user.VerificationCode = code

	s.sendVerificationMail(&user)
	return nil
}

func (s *AuthService) ChangePassword(userID uint, req *dto.ChangePasswordRequest) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.db.Model(&user).Update("password", string(hash)).Error
}

func (s *AuthService) UpdateProfile(userID uint, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Bio != nil {
		updates["bio"] = strings.TrimSpace(*req.Bio)
	}
	if len(updates) > 0 {
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
		if err := s.db.First(&user, userID).Error; err != nil {
			return nil, err
		}
	}

	resp := userResponse(&user)
	return &resp, nil
}

// DeleteAccount soft-deletes after password re-entry. The email is prefixed
// so the address can register again later.
func (s *AuthService) DeleteAccount(userID uint, password string) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&user).Updates(map[string]interface{}{
			"email":          fmt.Sprintf("deleted_%d_%s", user.ID, user.Email),
			"account_status": models.AccountDeleted,
			"is_active":      false,
			"forward_token":  nil,
		}).Error
	})
}

// EnsureForwardToken returns the user's email-forward token, minting one on
// first use. Tokens are never reused across users.
func (s *AuthService) EnsureForwardToken(userID uint) (string, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return "", ErrUserNotFound
	}
	if user.ForwardToken != nil && *user.ForwardToken != "" {
		return *user.ForwardToken, nil
	}

	for attempt := 0; attempt < 3; attempt++ {
		raw := make([]byte, 18)
		if _, err := rand.Read(raw); err != nil {
			return "", err
		}
		token := base64.RawURLEncoding.EncodeToString(raw)
		err := s.db.Model(&user).Update("forward_token", token).Error
		if err == nil {
			return token, nil
		}
		// Retry on the (vanishingly rare) unique collision.
		slog.Warn("forward token collision, retrying", "user_id", userID, "error", err)
	}
	return "", errors.New("failed to assign forward token")
}

func (s *AuthService) GetUser(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// ParseToken validates signature, expiry and the type claim, returning the
// user id.
func (s *AuthService) ParseToken(tokenStr, wantType string) (uint, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	if typ, _ := claims["type"].(string); typ != wantType {
		return 0, ErrInvalidToken
	}
	id, ok := claims["user_id"].(float64)
	if !ok || id <= 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

func (s *AuthService) tokenResponse(user *models.User) (*dto.AuthResponse, error) {
	access, err := s.mintToken(user.ID, TokenTypeAccess, s.cfg.JWTAccessExpiry)
	if err != nil {
		return nil, err
	}
	refresh, err := s.mintToken(user.ID, TokenTypeRefresh, s.cfg.JWTRefreshExpiry)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         userResponse(user),
	}, nil
}

func (s *AuthService) mintToken(userID uint, tokenType string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"type":    tokenType,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) newVerificationCode() (string, time.Time) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand failing is unrecoverable anywhere else too.
		panic(err)
	}
	return fmt.Sprintf("%06d", n.Int64()), time.Now().Add(codeTTL)
}

func (s *AuthService) sendVerificationMail(user *models.User) {
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your ScamRadar verification code is <b>%s</b>. It expires in 15 minutes.</p>",
		user.DisplayName(), user.VerificationCode)
	if err := s.mail.Send(user.Email, "Verify your ScamRadar account", html); err != nil {
		slog.Warn("failed to send verification mail", "user_id", user.ID, "error", err)
	}
}

func userResponse(user *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:            user.ID,
		Email:         user.Email,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Bio:           user.Bio,
		Role:          user.Role,
		RiskTier:      user.RiskTier,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt,
		LastLogin:     user.LastLogin,
	}
}
