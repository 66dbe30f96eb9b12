package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"shpfusion-api/internal/auth"
	"shpfusion-api/internal/dto"
	"shpfusion-api/internal/model"
	"shpfusion-api/internal/ratelimit"
	"shpfusion-api/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	bcryptCost      = 12
	accountTokenTTL = time.Hour
)

type UserService interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.UserResponse, error)
	// Login returns the signed session token together with the user profile.
	Login(ctx context.Context, req *dto.LoginRequest) (string, *dto.UserResponse, error)
	GetMe(ctx context.Context, userID string) (*dto.UserResponse, error)
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, userID string) error
	ForgotPassword(ctx context.Context, email string) error
	VerifyResetToken(ctx context.Context, token string) error
	ResetPassword(ctx context.Context, token, password string) error
}

// ErrVerifyTokenExpired carries the user id so the client can offer a resend.
type ErrVerifyTokenExpired struct {
	UserID string
}

func (e *ErrVerifyTokenExpired) Error() string { return "verification token expired" }

type userServiceImpl struct {
	userRepo     repository.UserRepository
	emailService EmailService
	resetLimiter *ratelimit.Store
	tokenSecret  string
	sessionTTL   time.Duration
	log          *zap.Logger
}

func NewUserService(
	userRepo repository.UserRepository,
	emailService EmailService,
	resetLimiter *ratelimit.Store,
	tokenSecret string,
	sessionTTL time.Duration,
	log *zap.Logger,
) UserService {
	return &userServiceImpl{
		userRepo:     userRepo,
		emailService: emailService,
		resetLimiter: resetLimiter,
		tokenSecret:  tokenSecret,
		sessionTTL:   sessionTTL,
		log:          log,
	}
}

func (s *userServiceImpl) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.UserResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := strings.TrimSpace(req.Password)

	if username == "" || email == "" || password == "" {
		return nil, invalid("All fields are required")
	}
	if !isValidEmail(email) {
		return nil, invalid("Please enter a valid email address")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		return nil, invalid("Passwords do not match")
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:       uuid.NewString(),
		Username: username,
		Email:    email,
		Password: string(hashed),
		Role:     model.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.issueVerification(ctx, user); err != nil {
		// account exists; the user can resend from the verify page
		s.log.Error("send verification email", zap.String("user_id", user.ID), zap.Error(err))
	}

	return toUserResponse(user), nil
}

func (s *userServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (string, *dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := strings.TrimSpace(req.Password)

	if email == "" || password == "" {
		return "", nil, invalid("Email and password are required")
	}
	if !isValidEmail(email) {
		return "", nil, invalid("Please enter a valid email address")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// same error for unknown email and wrong password
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	if !user.IsVerified {
		return "", nil, ErrEmailNotVerified
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(s.tokenSecret, user.ID, user.Email, user.Username, s.sessionTTL)
	if err != nil {
		return "", nil, fmt.Errorf("generate session token: %w", err)
	}

	return token, toUserResponse(user), nil
}

func (s *userServiceImpl) GetMe(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return toUserResponse(user), nil
}

func (s *userServiceImpl) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return invalid("Verification token is required")
	}

	user, err := s.userRepo.FindByVerifyToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTokenInvalid
		}
		return fmt.Errorf("find user by verify token: %w", err)
	}

	if user.VerifyTokenExpiry == nil || time.Now().After(*user.VerifyTokenExpiry) {
		return &ErrVerifyTokenExpired{UserID: user.ID}
	}

	user.IsVerified = true
	user.VerifyToken = ""
	user.VerifyTokenExpiry = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("mark user verified: %w", err)
	}
	return nil
}

func (s *userServiceImpl) ResendVerification(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	if user.IsVerified {
		return invalid("Email is already verified")
	}

	return s.issueVerification(ctx, user)
}

func (s *userServiceImpl) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return invalid("Email is required")
	}

	if !s.resetLimiter.Allow("forgot_password:" + email) {
		return ErrRateLimited
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// do not reveal whether the account exists
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	if !user.IsVerified {
		return ErrEmailNotVerified
	}

	token, err := auth.RandomToken()
	if err != nil {
		return err
	}

	expiry := time.Now().Add(accountTokenTTL)
	user.ForgotPasswordToken = token
	user.ForgotPasswordTokenExpiry = &expiry
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	return s.emailService.SendResetEmail(ctx, user, token)
}

func (s *userServiceImpl) VerifyResetToken(ctx context.Context, token string) error {
	if token == "" {
		return invalid("Reset token is required")
	}

	user, err := s.userRepo.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTokenInvalid
		}
		return fmt.Errorf("find user by reset token: %w", err)
	}

	if user.ForgotPasswordTokenExpiry == nil || time.Now().After(*user.ForgotPasswordTokenExpiry) {
		return ErrTokenExpired
	}
	return nil
}

func (s *userServiceImpl) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" || password == "" {
		return invalid("Reset token and new password are required")
	}
	if err := validatePassword(password); err != nil {
		return err
	}

	user, err := s.userRepo.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTokenInvalid
		}
		return fmt.Errorf("find user by reset token: %w", err)
	}

	if user.ForgotPasswordTokenExpiry == nil || time.Now().After(*user.ForgotPasswordTokenExpiry) {
		return ErrTokenExpired
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.Password = string(hashed)
	user.ForgotPasswordToken = ""
	user.ForgotPasswordTokenExpiry = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *userServiceImpl) issueVerification(ctx context.Context, user *model.User) error {
	token, err := auth.RandomToken()
	if err != nil {
		return err
	}

	expiry := time.Now().Add(accountTokenTTL)
	user.VerifyToken = token
	user.VerifyTokenExpiry = &expiry
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("store verify token: %w", err)
	}

	return s.emailService.SendVerificationEmail(ctx, user, token)
}

// at least 6 characters with at least one digit
func validatePassword(password string) error {
	hasDigit := false
	for _, r := range password {
		if unicode.IsDigit(r) {
			hasDigit = true
			break
		}
	}
	if len(password) < 6 || !hasDigit {
		return invalid("Password must be at least 6 characters long and contain at least 1 number")
	}
	return nil
}

func toUserResponse(user *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Username,
		Role:       user.Role,
		IsVerified: user.IsVerified,
	}
}
