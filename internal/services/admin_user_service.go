package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/certifrancais/backend/internal/models"
)

// UserRepository defines methods for user data access
type UserRepository interface {
	// Create inserts a new user
	Create(ctx context.Context, user *models.User) error
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, userID int) (*models.User, error)
	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// ExistsByEmail reports whether a user with the email exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Delete removes a user and returns the number of rows removed
	Delete(ctx context.Context, userID int) (int, error)
	// UpdatePasswordHash replaces a user's password hash
	UpdatePasswordHash(ctx context.Context, userID int, passwordHash string) error
	// GetAll retrieves users with pagination and optional role/search filters
	GetAll(ctx context.Context, page, count int, role *models.Role, search string) ([]models.User, error)
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// maxProfileFieldLen caps free-text profile fields after sanitization
const maxProfileFieldLen = 100

// passwordAlphabet is used for generated temporary passwords
const passwordAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

type adminUserService struct {
	userRepo UserRepository
	email    EmailEnqueuer
	logger   *zap.Logger
}

// NewAdminUserService creates a new admin user management service
func NewAdminUserService(userRepo UserRepository, email EmailEnqueuer, logger *zap.Logger) *adminUserService {
	return &adminUserService{
		userRepo: userRepo,
		email:    email,
		logger:   logger,
	}
}

// AddLearner creates a learner account from an admin request. Profile fields
// are sanitized and truncated; an empty password gets a generated temporary
// one, sent along in the invitation email.
func (s *adminUserService) AddLearner(ctx context.Context, req models.CreateLearnerRequest) (*models.CreateLearnerResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("invalid email format")
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("user already exists")
	}

	password := req.Password
	if password == "" {
		password, err = generatePassword(12)
		if err != nil {
			return nil, fmt.Errorf("failed to generate password: %w", err)
		}
	} else if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		FirstName:    sanitizeField(req.FirstName),
		LastName:     sanitizeField(req.LastName),
		School:       sanitizeField(req.School),
		ClassName:    sanitizeField(req.ClassName),
		PasswordHash: string(hash),
		Role:         models.RoleLearner,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	variables := strings.Join([]string{user.FirstName, user.Email, password}, ";")
	if _, err := s.email.EnqueueEmail(ctx, models.EmailTemplateAdminInvitation, user.Email, variables); err != nil {
		s.logger.Error("failed to enqueue invitation email",
			zap.Int("user_id", user.ID), zap.Error(err))
	}

	return &models.CreateLearnerResult{
		Success: true,
		UserID:  user.ID,
		Email:   user.Email,
	}, nil
}

// InviteUsers creates learner accounts in bulk. Each entry succeeds or fails
// on its own; a bad row never aborts the batch.
func (s *adminUserService) InviteUsers(ctx context.Context, req models.InviteUsersRequest) (*models.InviteUsersResult, error) {
	if len(req.Users) == 0 {
		return nil, fmt.Errorf("users list is empty")
	}

	result := &models.InviteUsersResult{Total: len(req.Users)}
	for _, u := range req.Users {
		entry := models.InviteUserResult{Email: strings.ToLower(strings.TrimSpace(u.Email))}

		created, err := s.AddLearner(ctx, u)
		if err != nil {
			entry.Error = err.Error()
			result.Failed++
		} else {
			entry.Success = true
			entry.UserID = created.UserID
			result.Created++
		}

		result.Results = append(result.Results, entry)
	}

	return result, nil
}

// DeleteUser removes a user account. Deleting an already-removed user is a
// no-op success so that admin retries and double-clicks stay harmless.
func (s *adminUserService) DeleteUser(ctx context.Context, userID int) error {
	affected, err := s.userRepo.Delete(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if affected == 0 {
		s.logger.Warn("delete of a user that no longer exists", zap.Int("user_id", userID))
	}
	return nil
}

// ResetPassword generates a new temporary password for the account and sends
// it by email. Unknown emails return success anyway so the endpoint cannot be
// used to probe which accounts exist.
func (s *adminUserService) ResetPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if err.Error() == "user not found" {
			s.logger.Info("password reset for unknown email", zap.String("email", email))
			return nil
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	password, err := generatePassword(12)
	if err != nil {
		return fmt.Errorf("failed to generate password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	variables := strings.Join([]string{user.FirstName, password}, ";")
	if _, err := s.email.EnqueueEmail(ctx, models.EmailTemplatePasswordReset, user.Email, variables); err != nil {
		return fmt.Errorf("failed to enqueue password reset email: %w", err)
	}

	return nil
}

// GetUsers lists users with pagination and optional role/search filters
func (s *adminUserService) GetUsers(ctx context.Context, page, count int, role *models.Role, search string) ([]models.User, error) {
	if page < 1 {
		page = 1
	}
	if count < 1 {
		count = 20
	}
	return s.userRepo.GetAll(ctx, page, count, role, sanitizeField(search))
}

// sanitizeField strips control characters, collapses surrounding whitespace
// and truncates to the profile field limit
func sanitizeField(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	cleaned = strings.TrimSpace(cleaned)

	runes := []rune(cleaned)
	if len(runes) > maxProfileFieldLen {
		cleaned = string(runes[:maxProfileFieldLen])
	}
	return cleaned
}

func generatePassword(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	out := make([]byte, length)
	for i, b := range buf {
		out[i] = passwordAlphabet[int(b)%len(passwordAlphabet)]
	}
	return string(out), nil
}
