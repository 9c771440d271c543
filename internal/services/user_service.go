package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	MinPasswordLength = 5
	maxNameLength     = 255
)

var (
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidEmail       = errors.New("enter a valid email address")
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrNameTooLong        = fmt.Errorf("name must be at most %d characters", maxNameLength)
	ErrInvalidCredentials = errors.New("unable to authenticate with provided credentials")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrUserNotFound       = errors.New("user not found")
)

// IsValidation reports whether err is a client-side input problem.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, models.ErrEmailRequired) ||
		errors.Is(err, ErrPasswordTooShort) ||
		errors.Is(err, ErrNameTooLong)
}

type UserService struct {
	db   *gorm.DB
	cfg  *config.Config
	cost int
}

func NewUserService(db *gorm.DB, cfg *config.Config) *UserService {
	return &UserService{db: db, cfg: cfg, cost: bcrypt.DefaultCost}
}

func (s *UserService) Register(req *dto.RegisterRequest) (*models.User, error) {
	return s.create(req, false)
}

// CreateSuperuser creates an account with staff and superuser flags set.
func (s *UserService) CreateSuperuser(email, password string) (*models.User, error) {
	return s.create(&dto.RegisterRequest{Email: email, Password: password}, true)
}

func (s *UserService) create(req *dto.RegisterRequest, superuser bool) (*models.User, error) {
	if err := validateEmail(req.Email); err != nil {
		return nil, err
	}
	if len(req.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if len(req.Name) > maxNameLength {
		return nil, ErrNameTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := models.NewUser(req.Email, string(hash), req.Name)
	if err != nil {
		return nil, err
	}
	user.IsStaff = superuser
	user.IsSuperuser = superuser

	taken, err := s.emailExists(user.Email, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate checks credentials for an active account.
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", models.NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

func (s *UserService) Token(req *dto.TokenRequest) (*dto.AuthResponse, error) {
	user, err := s.Authenticate(req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.generateTokenPair(user)
}

func (s *UserService) Refresh(req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	tokenHash := hashToken(req.RefreshToken)

	var stored models.RefreshToken
	if err := s.db.Where("token_hash = ? AND revoked = ?", tokenHash, false).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	// Only one caller may consume a given token.
	res := s.db.Model(&models.RefreshToken{}).
		Where("id = ? AND revoked = ?", stored.ID, false).
		Update("revoked", true)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidToken
	}

	if time.Now().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, ErrInvalidToken
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}

	return s.generateTokenPair(&user)
}

// Logout revokes a refresh token belonging to userID.
func (s *UserService) Logout(userID uuid.UUID, req *dto.LogoutRequest) error {
	return s.db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND token_hash = ?", userID, hashToken(req.RefreshToken)).
		Update("revoked", true).Error
}

func (s *UserService) GetUser(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateMe applies the non-nil fields of req to user. Passwords are re-hashed.
func (s *UserService) UpdateMe(user *models.User, req *dto.UpdateMeRequest) (*models.User, error) {
	updated := *user

	if req.Email != nil {
		if err := validateEmail(*req.Email); err != nil {
			return nil, err
		}
		email := models.NormalizeEmail(*req.Email)
		taken, err := s.emailExists(email, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailTaken
		}
		updated.Email = email
	}

	if req.Name != nil {
		if len(*req.Name) > maxNameLength {
			return nil, ErrNameTooLong
		}
		updated.Name = *req.Name
	}

	if req.Password != nil {
		if len(*req.Password) < MinPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.cost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		updated.Password = string(hash)
	}

	err := s.db.Model(&updated).Select("email", "name", "password").Updates(&updated).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return &updated, nil
}

func (s *UserService) ListUsers() ([]models.User, error) {
	var users []models.User
	err := s.db.Order("email ASC").Find(&users).Error
	return users, err
}

func (s *UserService) emailExists(email string, except uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.User{}).Where("email = ? AND id <> ?", email, except).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

func validateEmail(email string) error {
	email = models.NormalizeEmail(email)
	if email == "" {
		return models.ErrEmailRequired
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}

func (s *UserService) generateTokenPair(user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         ToUserResponse(user),
	}, nil
}

func (s *UserService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      user.ID.String(),
		"email":    user.Email,
		"is_staff": user.IsStaff,
		"iat":      now.Unix(),
		"exp":      now.Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *UserService) generateRefreshToken(user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)

	record := models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func ToUserResponse(user *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	}
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
