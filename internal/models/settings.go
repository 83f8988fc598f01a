package models

// SiteSettings is the typed site-wide configuration, loaded once from the
// settings rows instead of scattered key-string lookups.
type SiteSettings struct {
	QuestionsPerTest     int    `json:"questions_per_test"`
	AntiCheatEnabled     bool   `json:"anti_cheat_enabled"`
	AntiCheatMaxWarnings int    `json:"anti_cheat_max_warnings"`
	FooterText           string `json:"footer_text"`
	IssuingOrganization  string `json:"issuing_organization"`
}

// DefaultSiteSettings are the values used when a settings row is absent
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		QuestionsPerTest:     20,
		AntiCheatEnabled:     true,
		AntiCheatMaxWarnings: 3,
		FooterText:           "",
		IssuingOrganization:  "CertiFrançais",
	}
}

// Capability is a closed enum of admin feature toggles. Unknown strings read
// from storage are dropped at load time.
type Capability string

const (
	CapabilityManageQuestions Capability = "manage_questions"
	CapabilityManagePricing   Capability = "manage_pricing"
	CapabilityManageUsers     Capability = "manage_users"
	CapabilityManagePlanning  Capability = "manage_planning"
	CapabilityViewReports     Capability = "view_reports"
)

// KnownCapabilities lists every valid capability
var KnownCapabilities = []Capability{
	CapabilityManageQuestions,
	CapabilityManagePricing,
	CapabilityManageUsers,
	CapabilityManagePlanning,
	CapabilityViewReports,
}

// IsKnownCapability reports whether s names a valid capability
func IsKnownCapability(s string) bool {
	for _, c := range KnownCapabilities {
		if string(c) == s {
			return true
		}
	}
	return false
}

// UpdateSiteSettingsRequest is a partial settings update
type UpdateSiteSettingsRequest struct {
	QuestionsPerTest     *int    `json:"questions_per_test,omitempty"`
	AntiCheatEnabled     *bool   `json:"anti_cheat_enabled,omitempty"`
	AntiCheatMaxWarnings *int    `json:"anti_cheat_max_warnings,omitempty"`
	FooterText           *string `json:"footer_text,omitempty"`
	IssuingOrganization  *string `json:"issuing_organization,omitempty"`
}
