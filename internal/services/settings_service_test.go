package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/certifrancais/backend/internal/models"
	"github.com/certifrancais/backend/internal/pubsub"
)

// mockSettingsRepository is a mock implementation of SettingsRepository
type mockSettingsRepository struct {
	values       map[string]string
	capabilities []models.Capability
	err          error
}

func (m *mockSettingsRepository) GetAll(ctx context.Context) (map[string]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.values, nil
}

func (m *mockSettingsRepository) Set(ctx context.Context, key, value string) error {
	if m.err != nil {
		return m.err
	}
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsRepository) GetCapabilities(ctx context.Context) ([]models.Capability, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.capabilities, nil
}

func (m *mockSettingsRepository) SetCapability(ctx context.Context, capability models.Capability, enabled bool) error {
	if m.err != nil {
		return m.err
	}
	if enabled {
		m.capabilities = append(m.capabilities, capability)
	}
	return nil
}

func TestSettingsService_Settings(t *testing.T) {
	tests := []struct {
		name     string
		values   map[string]string
		expected models.SiteSettings
	}{
		{
			name:     "empty storage yields defaults",
			values:   map[string]string{},
			expected: models.DefaultSiteSettings(),
		},
		{
			name: "stored values parsed",
			values: map[string]string{
				"questions_per_test":      "25",
				"anti_cheat_enabled":      "false",
				"anti_cheat_max_warnings": "5",
				"footer_text":             "© CertiFrançais 2026",
				"issuing_organization":    "Académie",
			},
			expected: models.SiteSettings{
				QuestionsPerTest:     25,
				AntiCheatEnabled:     false,
				AntiCheatMaxWarnings: 5,
				FooterText:           "© CertiFrançais 2026",
				IssuingOrganization:  "Académie",
			},
		},
		{
			name: "unparsable values fall back field by field",
			values: map[string]string{
				"questions_per_test":      "beaucoup",
				"anti_cheat_max_warnings": "4",
			},
			expected: models.SiteSettings{
				QuestionsPerTest:     20,
				AntiCheatEnabled:     true,
				AntiCheatMaxWarnings: 4,
				IssuingOrganization:  "CertiFrançais",
			},
		},
		{
			name: "out of range percentage ignored",
			values: map[string]string{
				"questions_per_test": "500",
			},
			expected: models.DefaultSiteSettings(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSettingsService(&mockSettingsRepository{values: tt.values}, pubsub.NewBroker())

			settings, err := svc.Settings(context.Background())

			assert.NoError(t, err)
			assert.Equal(t, tt.expected, settings)
		})
	}
}

func TestSettingsService_UpdateSettings_PublishesChange(t *testing.T) {
	broker := pubsub.NewBroker()
	ch, unsubscribe := broker.Subscribe(pubsub.TopicSettingsChanged)
	defer unsubscribe()

	repo := &mockSettingsRepository{values: map[string]string{}}
	svc := NewSettingsService(repo, broker)

	n := 30
	settings, err := svc.UpdateSettings(context.Background(), models.UpdateSiteSettingsRequest{QuestionsPerTest: &n})

	assert.NoError(t, err)
	assert.Equal(t, 30, settings.QuestionsPerTest)
	assert.Equal(t, "30", repo.values["questions_per_test"])

	select {
	case msg := <-ch:
		published, ok := msg.Payload.(models.SiteSettings)
		assert.True(t, ok)
		assert.Equal(t, 30, published.QuestionsPerTest)
	case <-time.After(time.Second):
		t.Fatal("no settings change published")
	}
}

func TestSettingsService_UpdateSettings_Validation(t *testing.T) {
	svc := NewSettingsService(&mockSettingsRepository{values: map[string]string{}}, pubsub.NewBroker())

	bad := 0
	_, err := svc.UpdateSettings(context.Background(), models.UpdateSiteSettingsRequest{QuestionsPerTest: &bad})
	assert.Error(t, err)

	negative := -1
	_, err = svc.UpdateSettings(context.Background(), models.UpdateSiteSettingsRequest{AntiCheatMaxWarnings: &negative})
	assert.Error(t, err)
}

func TestSettingsService_SetCapability(t *testing.T) {
	broker := pubsub.NewBroker()
	ch, unsubscribe := broker.Subscribe(pubsub.TopicCapabilitiesChanged)
	defer unsubscribe()

	svc := NewSettingsService(&mockSettingsRepository{}, broker)

	err := svc.SetCapability(context.Background(), "manage_users", true)
	assert.NoError(t, err)

	select {
	case msg := <-ch:
		capabilities, ok := msg.Payload.([]models.Capability)
		assert.True(t, ok)
		assert.Contains(t, capabilities, models.CapabilityManageUsers)
	case <-time.After(time.Second):
		t.Fatal("no capability change published")
	}

	err = svc.SetCapability(context.Background(), "launch_rockets", true)
	assert.Error(t, err)
}

func TestSettingsService_HasCapability(t *testing.T) {
	svc := NewSettingsService(&mockSettingsRepository{
		capabilities: []models.Capability{models.CapabilityManageQuestions},
	}, pubsub.NewBroker())

	has, err := svc.HasCapability(context.Background(), models.CapabilityManageQuestions)
	assert.NoError(t, err)
	assert.True(t, has)

	has, err = svc.HasCapability(context.Background(), models.CapabilityManagePricing)
	assert.NoError(t, err)
	assert.False(t, has)
}
