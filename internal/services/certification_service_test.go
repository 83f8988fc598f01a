package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/certifrancais/backend/internal/models"
)

// mockCertificationRepository is a mock implementation of CertificationRepository
type mockCertificationRepository struct {
	existing       *models.UserCertification
	byCredential   *models.UserCertification
	createErr      error
	lookupCalls    int
	created        *models.UserCertification
}

func (m *mockCertificationRepository) Create(ctx context.Context, cert *models.UserCertification) error {
	if m.createErr != nil {
		return m.createErr
	}
	cert.ID = 3
	m.created = cert
	return nil
}

func (m *mockCertificationRepository) GetByUserAndLevel(ctx context.Context, userID, level int) (*models.UserCertification, error) {
	if m.existing == nil {
		return nil, errors.New("certification not found")
	}
	return m.existing, nil
}

func (m *mockCertificationRepository) GetByUser(ctx context.Context, userID int) ([]models.UserCertification, error) {
	if m.existing == nil {
		return nil, nil
	}
	return []models.UserCertification{*m.existing}, nil
}

func (m *mockCertificationRepository) GetByCredentialID(ctx context.Context, credentialID string) (*models.UserCertification, error) {
	m.lookupCalls++
	if m.byCredential == nil {
		return nil, errors.New("certification not found")
	}
	return m.byCredential, nil
}

// mockSessionScoreReader is a mock implementation of SessionScoreReader
type mockSessionScoreReader struct {
	average int
	err     error
}

func (m *mockSessionScoreReader) AverageCompletedScore(ctx context.Context, userID, level int) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.average, nil
}

// mockUserReader is a mock implementation of UserReader
type mockUserReader struct {
	user *models.User
	err  error
}

func (m *mockUserReader) GetByID(ctx context.Context, userID int) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

// mockEmailEnqueuer is a mock implementation of EmailEnqueuer
type mockEmailEnqueuer struct {
	slugs      []string
	recipients []string
	variables  []string
	err        error
}

func (m *mockEmailEnqueuer) EnqueueEmail(ctx context.Context, templateSlug, recipient, variables string) (*models.EmailTask, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.slugs = append(m.slugs, templateSlug)
	m.recipients = append(m.recipients, recipient)
	m.variables = append(m.variables, variables)
	return &models.EmailTask{ID: 1, TemplateSlug: templateSlug, Recipient: recipient}, nil
}

func newCertServiceForTest(certRepo *mockCertificationRepository, email *mockEmailEnqueuer) *certificationService {
	return NewCertificationService(
		certRepo,
		&mockSessionScoreReader{average: 84},
		&mockUserReader{user: &models.User{ID: 1, Email: "claire@example.fr", FirstName: "Claire"}},
		&mockLevelRepository{level: &models.Level{ID: 2, Name: "Intermédiaire"}},
		&mockSettingsProvider{settings: models.DefaultSiteSettings()},
		email,
		"https://certifrancais.fr",
		zap.NewNop(),
	)
}

func TestGenerateCredentialID(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	id, err := GenerateCredentialID(now)

	assert.NoError(t, err)
	assert.Regexp(t, `^CERT-2026-[A-Z0-9]{8}$`, id)

	// Two generations should not collide
	other, err := GenerateCredentialID(now)
	assert.NoError(t, err)
	assert.NotEqual(t, id, other)
}

func TestCertificationService_IssueIfEligible(t *testing.T) {
	t.Run("issues new certification with email", func(t *testing.T) {
		certRepo := &mockCertificationRepository{}
		email := &mockEmailEnqueuer{}
		svc := newCertServiceForTest(certRepo, email)

		cert, err := svc.IssueIfEligible(context.Background(), 1, 2)

		assert.NoError(t, err)
		assert.Regexp(t, `^CERT-\d{4}-[A-Z0-9]{8}$`, cert.CredentialID)
		assert.Equal(t, 84, cert.Score)
		assert.Equal(t, "CertiFrançais", cert.IssuingOrganization)
		assert.Equal(t, []string{models.EmailTemplateCertification}, email.slugs)
		assert.Equal(t, []string{"claire@example.fr"}, email.recipients)
	})

	t.Run("existing certification returned unchanged", func(t *testing.T) {
		existing := &models.UserCertification{ID: 9, CredentialID: "CERT-2025-AAAA1111"}
		certRepo := &mockCertificationRepository{existing: existing}
		email := &mockEmailEnqueuer{}
		svc := newCertServiceForTest(certRepo, email)

		cert, err := svc.IssueIfEligible(context.Background(), 1, 2)

		assert.NoError(t, err)
		assert.Equal(t, existing, cert)
		assert.Nil(t, certRepo.created)
		assert.Empty(t, email.slugs)
	})

	t.Run("email failure does not fail issuance", func(t *testing.T) {
		certRepo := &mockCertificationRepository{}
		svc := newCertServiceForTest(certRepo, &mockEmailEnqueuer{err: errors.New("redis down")})

		cert, err := svc.IssueIfEligible(context.Background(), 1, 2)

		assert.NoError(t, err)
		assert.NotNil(t, cert)
	})
}

func TestCertificationService_VerifyCredential(t *testing.T) {
	stored := &models.UserCertification{
		CredentialID:        "CERT-2026-AB12CD34",
		LevelName:           "Intermédiaire",
		Score:               84,
		CertifiedAt:         time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		IssuingOrganization: "CertiFrançais",
	}

	t.Run("valid credential", func(t *testing.T) {
		svc := newCertServiceForTest(&mockCertificationRepository{byCredential: stored}, &mockEmailEnqueuer{})

		result, err := svc.VerifyCredential(context.Background(), "CERT-2026-AB12CD34")

		assert.NoError(t, err)
		assert.True(t, result.Valid)
		assert.Equal(t, "Intermédiaire", result.LevelName)
		assert.Equal(t, 84, result.Score)
	})

	t.Run("malformed credential never reaches the database", func(t *testing.T) {
		certRepo := &mockCertificationRepository{byCredential: stored}
		svc := newCertServiceForTest(certRepo, &mockEmailEnqueuer{})

		for _, bad := range []string{"", "CERT-26-AB12CD34", "cert-2026-ab12cd34", "CERT-2026-AB12CD3", "DROP TABLE"} {
			result, err := svc.VerifyCredential(context.Background(), bad)

			assert.NoError(t, err)
			assert.False(t, result.Valid)
			assert.Equal(t, "Format d'identifiant invalide", result.Error)
		}
		assert.Zero(t, certRepo.lookupCalls)
	})

	t.Run("unknown credential answers valid false", func(t *testing.T) {
		svc := newCertServiceForTest(&mockCertificationRepository{}, &mockEmailEnqueuer{})

		result, err := svc.VerifyCredential(context.Background(), "CERT-2026-ZZZZ9999")

		assert.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Equal(t, "Certification introuvable", result.Error)
	})

	t.Run("expired credential is invalid", func(t *testing.T) {
		past := time.Now().Add(-24 * time.Hour)
		expired := *stored
		expired.ExpirationDate = &past
		svc := newCertServiceForTest(&mockCertificationRepository{byCredential: &expired}, &mockEmailEnqueuer{})

		result, err := svc.VerifyCredential(context.Background(), "CERT-2026-AB12CD34")

		assert.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Equal(t, "Certification expirée", result.Error)
	})
}

func TestCertificationService_GetBadgeAssertion(t *testing.T) {
	stored := &models.UserCertification{
		CredentialID:        "CERT-2026-AB12CD34",
		LevelName:           "Intermédiaire",
		CertifiedAt:         time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		IssuingOrganization: "CertiFrançais",
	}
	svc := newCertServiceForTest(&mockCertificationRepository{byCredential: stored}, &mockEmailEnqueuer{})

	badge, err := svc.GetBadgeAssertion(context.Background(), "CERT-2026-AB12CD34")

	assert.NoError(t, err)
	assert.Equal(t, "https://w3id.org/openbadges/v2", badge.Context)
	assert.Equal(t, "Assertion", badge.Type)
	assert.Equal(t, "https://certifrancais.fr/api/v1/certifications/CERT-2026-AB12CD34/badge", badge.ID)
	assert.Equal(t, "hosted", badge.Verification.Type)
	assert.Equal(t, "CertiFrançais", badge.Badge.Issuer.Name)

	_, err = svc.GetBadgeAssertion(context.Background(), "not-a-credential")
	assert.Error(t, err)
}
