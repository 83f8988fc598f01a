package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/certifrancais/backend/internal/models"
)

// mockTestSessionRepository is a mock implementation of TestSessionRepository
type mockTestSessionRepository struct {
	session      *models.TestSession
	getErr       error
	createErr    error
	applied      bool
	applyErr     error
	completedID  int
	failedID     int
	abandonedID  int
}

func (m *mockTestSessionRepository) Create(ctx context.Context, session *models.TestSession) error {
	if m.createErr != nil {
		return m.createErr
	}
	session.ID = 11
	return nil
}

func (m *mockTestSessionRepository) GetByID(ctx context.Context, id int) (*models.TestSession, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.session, nil
}

func (m *mockTestSessionRepository) Complete(ctx context.Context, id, score int) (bool, error) {
	m.completedID = id
	return m.applied, m.applyErr
}

func (m *mockTestSessionRepository) Fail(ctx context.Context, id, score int) (bool, error) {
	m.failedID = id
	return m.applied, m.applyErr
}

func (m *mockTestSessionRepository) Abandon(ctx context.Context, id int) (bool, error) {
	m.abandonedID = id
	return m.applied, m.applyErr
}

// mockAccessChecker is a mock implementation of LevelAccessChecker
type mockAccessChecker struct {
	access *models.LevelAccess
	err    error
}

func (m *mockAccessChecker) CheckAccess(ctx context.Context, userID, level int) (*models.LevelAccess, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.access, nil
}

// mockProgressEvaluator is a mock implementation of ProgressEvaluator
type mockProgressEvaluator struct {
	progress  *models.LevelProgress
	validated bool
	err       error
}

func (m *mockProgressEvaluator) GetLevelProgress(ctx context.Context, userID, level int) (*models.LevelProgress, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.progress, nil
}

func (m *mockProgressEvaluator) IsLevelValidated(ctx context.Context, userID, level int) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.validated, nil
}

// mockCertificationIssuer is a mock implementation of CertificationIssuer
type mockCertificationIssuer struct {
	cert   *models.UserCertification
	err    error
	called bool
}

func (m *mockCertificationIssuer) IssueIfEligible(ctx context.Context, userID, level int) (*models.UserCertification, error) {
	m.called = true
	if m.err != nil {
		return nil, m.err
	}
	return m.cert, nil
}

func openAccess() *mockAccessChecker {
	return &mockAccessChecker{access: &models.LevelAccess{Accessible: true, Reason: "free level"}}
}

func TestSessionService_StartSession(t *testing.T) {
	tests := []struct {
		name          string
		req           models.StartSessionRequest
		access        *mockAccessChecker
		validated     bool
		expectedError error
	}{
		{
			name:      "level one is always startable",
			req:       models.StartSessionRequest{Level: 1, SessionNumber: 1},
			access:    openAccess(),
			validated: false,
		},
		{
			name:      "higher level requires previous level validated",
			req:       models.StartSessionRequest{Level: 2, SessionNumber: 1},
			access:    openAccess(),
			validated: true,
		},
		{
			name:          "higher level locked when previous not validated",
			req:           models.StartSessionRequest{Level: 2, SessionNumber: 1},
			access:        openAccess(),
			validated:     false,
			expectedError: ErrLevelLocked,
		},
		{
			name: "inaccessible level rejected",
			req:  models.StartSessionRequest{Level: 1, SessionNumber: 1},
			access: &mockAccessChecker{
				access: &models.LevelAccess{Accessible: false, Reason: "free session quota exhausted"},
			},
			expectedError: ErrLevelLocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSessionService(
				&mockTestSessionRepository{},
				tt.access,
				&mockProgressEvaluator{validated: tt.validated},
				&mockCertificationIssuer{},
				zap.NewNop(),
			)

			session, err := svc.StartSession(context.Background(), 1, tt.req)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, models.SessionStatusInProgress, session.Status)
			assert.Equal(t, 11, session.ID)
		})
	}
}

func TestSessionService_StartSession_RemedialNumberImpliesType(t *testing.T) {
	svc := NewSessionService(&mockTestSessionRepository{}, openAccess(), &mockProgressEvaluator{}, &mockCertificationIssuer{}, zap.NewNop())

	session, err := svc.StartSession(context.Background(), 1, models.StartSessionRequest{
		Level:         1,
		SessionNumber: models.RemedialSessionNumber,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.SessionTypeRemedial, session.SessionType)
}

func TestSessionService_CompleteSession(t *testing.T) {
	ownSession := &models.TestSession{ID: 11, UserID: 1, Level: 2, Status: models.SessionStatusInProgress}

	t.Run("passing score completes the session", func(t *testing.T) {
		sessionRepo := &mockTestSessionRepository{session: ownSession, applied: true}
		svc := NewSessionService(sessionRepo, openAccess(), &mockProgressEvaluator{
			progress: &models.LevelProgress{},
		}, &mockCertificationIssuer{}, zap.NewNop())

		result, err := svc.CompleteSession(context.Background(), 1, 11, 80)

		assert.NoError(t, err)
		assert.True(t, result.Completed)
		assert.Equal(t, 11, sessionRepo.completedID)
		assert.Zero(t, sessionRepo.failedID)
	})

	t.Run("score below threshold does not complete", func(t *testing.T) {
		sessionRepo := &mockTestSessionRepository{session: ownSession, applied: true}
		issuer := &mockCertificationIssuer{}
		svc := NewSessionService(sessionRepo, openAccess(), &mockProgressEvaluator{}, issuer, zap.NewNop())

		result, err := svc.CompleteSession(context.Background(), 1, 11, 60)

		assert.NoError(t, err)
		assert.False(t, result.Completed)
		assert.Equal(t, 11, sessionRepo.failedID)
		assert.Zero(t, sessionRepo.completedID)
		assert.False(t, issuer.called)
	})

	t.Run("validation triggers certification issuance", func(t *testing.T) {
		issuer := &mockCertificationIssuer{cert: &models.UserCertification{CredentialID: "CERT-2026-ABCD1234"}}
		svc := NewSessionService(
			&mockTestSessionRepository{session: ownSession, applied: true},
			openAccess(),
			&mockProgressEvaluator{progress: &models.LevelProgress{Validated: true}},
			issuer,
			zap.NewNop(),
		)

		result, err := svc.CompleteSession(context.Background(), 1, 11, 90)

		assert.NoError(t, err)
		assert.True(t, issuer.called)
		assert.True(t, result.LevelValidated)
		assert.Equal(t, "CERT-2026-ABCD1234", result.CredentialID)
	})

	t.Run("issuance failure does not fail completion", func(t *testing.T) {
		issuer := &mockCertificationIssuer{err: errors.New("db down")}
		svc := NewSessionService(
			&mockTestSessionRepository{session: ownSession, applied: true},
			openAccess(),
			&mockProgressEvaluator{progress: &models.LevelProgress{Validated: true}},
			issuer,
			zap.NewNop(),
		)

		result, err := svc.CompleteSession(context.Background(), 1, 11, 90)

		assert.NoError(t, err)
		assert.True(t, result.LevelValidated)
		assert.Empty(t, result.CredentialID)
	})

	t.Run("concurrent completion loses cleanly", func(t *testing.T) {
		svc := NewSessionService(
			&mockTestSessionRepository{session: ownSession, applied: false},
			openAccess(),
			&mockProgressEvaluator{},
			&mockCertificationIssuer{},
			zap.NewNop(),
		)

		_, err := svc.CompleteSession(context.Background(), 1, 11, 90)

		assert.ErrorIs(t, err, ErrSessionAlreadyEnded)
	})

	t.Run("another user's session is forbidden", func(t *testing.T) {
		svc := NewSessionService(
			&mockTestSessionRepository{session: ownSession, applied: true},
			openAccess(),
			&mockProgressEvaluator{},
			&mockCertificationIssuer{},
			zap.NewNop(),
		)

		_, err := svc.CompleteSession(context.Background(), 2, 11, 90)

		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("out of range score rejected", func(t *testing.T) {
		svc := NewSessionService(&mockTestSessionRepository{}, openAccess(), &mockProgressEvaluator{}, &mockCertificationIssuer{}, zap.NewNop())

		_, err := svc.CompleteSession(context.Background(), 1, 11, 101)

		assert.Error(t, err)
	})
}

func TestSessionService_AbandonSession(t *testing.T) {
	ownSession := &models.TestSession{ID: 11, UserID: 1, Status: models.SessionStatusInProgress}

	t.Run("abandon own session", func(t *testing.T) {
		sessionRepo := &mockTestSessionRepository{session: ownSession, applied: true}
		svc := NewSessionService(sessionRepo, openAccess(), &mockProgressEvaluator{}, &mockCertificationIssuer{}, zap.NewNop())

		err := svc.AbandonSession(context.Background(), 1, 11, "anti-cheat limit reached")

		assert.NoError(t, err)
		assert.Equal(t, 11, sessionRepo.abandonedID)
	})

	t.Run("already ended session", func(t *testing.T) {
		svc := NewSessionService(&mockTestSessionRepository{session: ownSession, applied: false}, openAccess(), &mockProgressEvaluator{}, &mockCertificationIssuer{}, zap.NewNop())

		err := svc.AbandonSession(context.Background(), 1, 11, "")

		assert.ErrorIs(t, err, ErrSessionAlreadyEnded)
	})
}
