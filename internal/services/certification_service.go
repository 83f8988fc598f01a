package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/certifrancais/backend/internal/models"
)

// CertificationRepository defines methods for certification data access
type CertificationRepository interface {
	// Create inserts a new certification
	Create(ctx context.Context, cert *models.UserCertification) error
	// GetByUserAndLevel retrieves a user's certification for a level
	GetByUserAndLevel(ctx context.Context, userID, level int) (*models.UserCertification, error)
	// GetByUser retrieves all certifications of a user, newest first
	GetByUser(ctx context.Context, userID int) ([]models.UserCertification, error)
	// GetByCredentialID retrieves a certification by its public credential ID
	GetByCredentialID(ctx context.Context, credentialID string) (*models.UserCertification, error)
}

// SessionScoreReader reads aggregate session scores
type SessionScoreReader interface {
	// AverageCompletedScore returns the average completed-session score at a level
	AverageCompletedScore(ctx context.Context, userID, level int) (int, error)
}

// UserReader reads user accounts
type UserReader interface {
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, userID int) (*models.User, error)
}

// EmailEnqueuer enqueues transactional emails through the outbox
type EmailEnqueuer interface {
	// EnqueueEmail records an outbox row and schedules its delivery
	EnqueueEmail(ctx context.Context, templateSlug, recipient, variables string) (*models.EmailTask, error)
}

// credentialIDPattern is the public credential format: CERT-YYYY-XXXXXXXX.
// Checked before any lookup so malformed input never reaches the database.
var credentialIDPattern = regexp.MustCompile(`^CERT-\d{4}-[A-Z0-9]{8}$`)

// credentialAlphabet excludes nothing; ambiguous characters are acceptable
// because credentials are copy-pasted, not retyped
const credentialAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type certificationService struct {
	certRepo    CertificationRepository
	sessionRepo SessionScoreReader
	userRepo    UserReader
	levelRepo   LevelRepository
	settings    SiteSettingsProvider
	email       EmailEnqueuer
	baseURL     string
	logger      *zap.Logger
}

// NewCertificationService creates a new certification service
func NewCertificationService(
	certRepo CertificationRepository,
	sessionRepo SessionScoreReader,
	userRepo UserReader,
	levelRepo LevelRepository,
	settings SiteSettingsProvider,
	email EmailEnqueuer,
	baseURL string,
	logger *zap.Logger,
) *certificationService {
	return &certificationService{
		certRepo:    certRepo,
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		levelRepo:   levelRepo,
		settings:    settings,
		email:       email,
		baseURL:     strings.TrimRight(baseURL, "/"),
		logger:      logger,
	}
}

// IssueIfEligible issues a certification for a level the caller has verified
// as validated. Issuance is idempotent: an existing certification for the
// user and level is returned as-is, including when a concurrent issue wins
// the unique-constraint race.
func (s *certificationService) IssueIfEligible(ctx context.Context, userID, level int) (*models.UserCertification, error) {
	existing, err := s.certRepo.GetByUserAndLevel(ctx, userID, level)
	if err == nil {
		return existing, nil
	}

	score, err := s.sessionRepo.AverageCompletedScore(ctx, userID, level)
	if err != nil {
		return nil, fmt.Errorf("failed to get average score: %w", err)
	}

	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	credentialID, err := GenerateCredentialID(time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to generate credential id: %w", err)
	}

	cert := &models.UserCertification{
		UserID:              userID,
		Level:               level,
		Score:               score,
		CertifiedAt:         time.Now(),
		CredentialID:        credentialID,
		IssuingOrganization: settings.IssuingOrganization,
	}
	if err := s.certRepo.Create(ctx, cert); err != nil {
		// Concurrent completion may have issued first; the unique constraint
		// on user and level makes the re-read authoritative
		if existing, readErr := s.certRepo.GetByUserAndLevel(ctx, userID, level); readErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create certification: %w", err)
	}

	s.notifyIssued(ctx, cert)

	return cert, nil
}

// notifyIssued enqueues the certification email. Delivery problems never fail
// issuance; the outbox row carries its own status.
func (s *certificationService) notifyIssued(ctx context.Context, cert *models.UserCertification) {
	user, err := s.userRepo.GetByID(ctx, cert.UserID)
	if err != nil {
		s.logger.Error("failed to load user for certification email",
			zap.Int("user_id", cert.UserID), zap.Error(err))
		return
	}

	levelName := cert.LevelName
	if levelName == "" {
		if levelRow, err := s.levelRepo.GetByID(ctx, cert.Level); err == nil {
			levelName = levelRow.Name
		}
	}

	variables := strings.Join([]string{user.FirstName, levelName, cert.CredentialID}, ";")
	if _, err := s.email.EnqueueEmail(ctx, models.EmailTemplateCertification, user.Email, variables); err != nil {
		s.logger.Error("failed to enqueue certification email",
			zap.Int("user_id", cert.UserID), zap.Error(err))
	}
}

// GetUserCertifications lists a user's certifications
func (s *certificationService) GetUserCertifications(ctx context.Context, userID int) ([]models.UserCertification, error) {
	return s.certRepo.GetByUser(ctx, userID)
}

// VerifyCredential answers a public verification request. Malformed and
// unknown credentials both come back as Valid=false with a 200, so the
// endpoint never confirms whether an id exists through its status code.
func (s *certificationService) VerifyCredential(ctx context.Context, credentialID string) (*models.VerifyCertificationResult, error) {
	credentialID = strings.TrimSpace(credentialID)
	if !credentialIDPattern.MatchString(credentialID) {
		return &models.VerifyCertificationResult{
			Valid: false,
			Error: "Format d'identifiant invalide",
		}, nil
	}

	cert, err := s.certRepo.GetByCredentialID(ctx, credentialID)
	if err != nil {
		if err.Error() == "certification not found" {
			return &models.VerifyCertificationResult{
				Valid: false,
				Error: "Certification introuvable",
			}, nil
		}
		return nil, fmt.Errorf("failed to get certification: %w", err)
	}

	if cert.ExpirationDate != nil && cert.ExpirationDate.Before(time.Now()) {
		return &models.VerifyCertificationResult{
			Valid:          false,
			Error:          "Certification expirée",
			CredentialID:   cert.CredentialID,
			ExpirationDate: cert.ExpirationDate,
		}, nil
	}

	certifiedAt := cert.CertifiedAt
	return &models.VerifyCertificationResult{
		Valid:               true,
		CredentialID:        cert.CredentialID,
		LevelName:           cert.LevelName,
		Score:               cert.Score,
		CertifiedAt:         &certifiedAt,
		IssuingOrganization: cert.IssuingOrganization,
		ExpirationDate:      cert.ExpirationDate,
	}, nil
}

// GetBadgeAssertion builds an Open Badge 2.0 assertion for a credential.
// The assertion is derived on demand from the stored certification.
func (s *certificationService) GetBadgeAssertion(ctx context.Context, credentialID string) (*models.BadgeAssertion, error) {
	credentialID = strings.TrimSpace(credentialID)
	if !credentialIDPattern.MatchString(credentialID) {
		return nil, fmt.Errorf("certification not found")
	}

	cert, err := s.certRepo.GetByCredentialID(ctx, credentialID)
	if err != nil {
		return nil, err
	}

	return &models.BadgeAssertion{
		Context: "https://w3id.org/openbadges/v2",
		Type:    "Assertion",
		ID:      fmt.Sprintf("%s/api/v1/certifications/%s/badge", s.baseURL, cert.CredentialID),
		Badge: models.BadgeClass{
			Type:        "BadgeClass",
			Name:        fmt.Sprintf("Certification %s", cert.LevelName),
			Description: fmt.Sprintf("Certification de niveau %s délivrée par %s", cert.LevelName, cert.IssuingOrganization),
			Issuer: models.BadgeIssuer{
				Type: "Issuer",
				Name: cert.IssuingOrganization,
			},
		},
		IssuedOn: cert.CertifiedAt,
		Expires:  cert.ExpirationDate,
		Verification: models.BadgeVerification{
			Type: "hosted",
		},
	}, nil
}

// GenerateCredentialID builds a public credential id CERT-YYYY-XXXXXXXX with
// a cryptographically random suffix
func GenerateCredentialID(now time.Time) (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	suffix := make([]byte, 8)
	for i, b := range buf {
		suffix[i] = credentialAlphabet[int(b)%len(credentialAlphabet)]
	}

	return fmt.Sprintf("CERT-%d-%s", now.Year(), suffix), nil
}
