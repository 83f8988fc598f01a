package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/certifrancais/backend/internal/models"
	"github.com/certifrancais/backend/internal/pubsub"
)

// SettingsRepository defines methods for site settings data access
type SettingsRepository interface {
	// GetAll retrieves every settings row as a key/value map
	GetAll(ctx context.Context) (map[string]string, error)
	// Set stores one settings value
	Set(ctx context.Context, key, value string) error
	// GetCapabilities retrieves enabled capabilities, dropping unknown flags
	GetCapabilities(ctx context.Context) ([]models.Capability, error)
	// SetCapability enables or disables a capability
	SetCapability(ctx context.Context, capability models.Capability, enabled bool) error
}

// Settings keys as stored in the settings table
const (
	settingQuestionsPerTest     = "questions_per_test"
	settingAntiCheatEnabled     = "anti_cheat_enabled"
	settingAntiCheatMaxWarnings = "anti_cheat_max_warnings"
	settingFooterText           = "footer_text"
	settingIssuingOrganization  = "issuing_organization"
)

type settingsService struct {
	settingsRepo SettingsRepository
	broker       *pubsub.Broker
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsRepo SettingsRepository, broker *pubsub.Broker) *settingsService {
	return &settingsService{
		settingsRepo: settingsRepo,
		broker:       broker,
	}
}

// Settings loads the typed site settings. Missing or unparsable rows fall
// back to defaults field by field, so one bad row never breaks the rest.
func (s *settingsService) Settings(ctx context.Context) (models.SiteSettings, error) {
	raw, err := s.settingsRepo.GetAll(ctx)
	if err != nil {
		return models.SiteSettings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	settings := models.DefaultSiteSettings()

	if v, ok := raw[settingQuestionsPerTest]; ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 100 {
			settings.QuestionsPerTest = n
		}
	}
	if v, ok := raw[settingAntiCheatEnabled]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			settings.AntiCheatEnabled = b
		}
	}
	if v, ok := raw[settingAntiCheatMaxWarnings]; ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			settings.AntiCheatMaxWarnings = n
		}
	}
	if v, ok := raw[settingFooterText]; ok {
		settings.FooterText = v
	}
	if v, ok := raw[settingIssuingOrganization]; ok && v != "" {
		settings.IssuingOrganization = v
	}

	return settings, nil
}

// UpdateSettings applies a partial settings update and publishes the new
// typed settings for in-process subscribers
func (s *settingsService) UpdateSettings(ctx context.Context, req models.UpdateSiteSettingsRequest) (models.SiteSettings, error) {
	if req.QuestionsPerTest != nil {
		if *req.QuestionsPerTest < 1 || *req.QuestionsPerTest > 100 {
			return models.SiteSettings{}, fmt.Errorf("questions per test must be between 1 and 100")
		}
		if err := s.settingsRepo.Set(ctx, settingQuestionsPerTest, strconv.Itoa(*req.QuestionsPerTest)); err != nil {
			return models.SiteSettings{}, fmt.Errorf("failed to set questions per test: %w", err)
		}
	}
	if req.AntiCheatEnabled != nil {
		if err := s.settingsRepo.Set(ctx, settingAntiCheatEnabled, strconv.FormatBool(*req.AntiCheatEnabled)); err != nil {
			return models.SiteSettings{}, fmt.Errorf("failed to set anti-cheat flag: %w", err)
		}
	}
	if req.AntiCheatMaxWarnings != nil {
		if *req.AntiCheatMaxWarnings < 1 {
			return models.SiteSettings{}, fmt.Errorf("anti-cheat warnings must be positive")
		}
		if err := s.settingsRepo.Set(ctx, settingAntiCheatMaxWarnings, strconv.Itoa(*req.AntiCheatMaxWarnings)); err != nil {
			return models.SiteSettings{}, fmt.Errorf("failed to set anti-cheat warnings: %w", err)
		}
	}
	if req.FooterText != nil {
		if err := s.settingsRepo.Set(ctx, settingFooterText, *req.FooterText); err != nil {
			return models.SiteSettings{}, fmt.Errorf("failed to set footer text: %w", err)
		}
	}
	if req.IssuingOrganization != nil {
		if err := s.settingsRepo.Set(ctx, settingIssuingOrganization, *req.IssuingOrganization); err != nil {
			return models.SiteSettings{}, fmt.Errorf("failed to set issuing organization: %w", err)
		}
	}

	settings, err := s.Settings(ctx)
	if err != nil {
		return models.SiteSettings{}, err
	}

	s.broker.Publish(pubsub.TopicSettingsChanged, settings)

	return settings, nil
}

// Capabilities lists the currently enabled admin capabilities
func (s *settingsService) Capabilities(ctx context.Context) ([]models.Capability, error) {
	return s.settingsRepo.GetCapabilities(ctx)
}

// SetCapability enables or disables an admin capability and publishes the
// new capability set
func (s *settingsService) SetCapability(ctx context.Context, capability string, enabled bool) error {
	if !models.IsKnownCapability(capability) {
		return fmt.Errorf("unknown capability")
	}

	if err := s.settingsRepo.SetCapability(ctx, models.Capability(capability), enabled); err != nil {
		return fmt.Errorf("failed to set capability: %w", err)
	}

	capabilities, err := s.settingsRepo.GetCapabilities(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload capabilities: %w", err)
	}
	s.broker.Publish(pubsub.TopicCapabilitiesChanged, capabilities)

	return nil
}

// HasCapability reports whether a capability is currently enabled
func (s *settingsService) HasCapability(ctx context.Context, capability models.Capability) (bool, error) {
	capabilities, err := s.settingsRepo.GetCapabilities(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load capabilities: %w", err)
	}

	for _, c := range capabilities {
		if c == capability {
			return true, nil
		}
	}
	return false, nil
}
