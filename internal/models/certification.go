package models

import "time"

// UserCertification is an issued certification for a validated level.
// CredentialID follows the public format CERT-YYYY-XXXXXXXX and backs
// unauthenticated verification lookups.
type UserCertification struct {
	ID                  int        `json:"id"`
	UserID              int        `json:"user_id"`
	Level               int        `json:"level"`
	LevelName           string     `json:"level_name"`
	Score               int        `json:"score"`
	CertifiedAt         time.Time  `json:"certified_at"`
	CredentialID        string     `json:"credential_id"`
	IssuingOrganization string     `json:"issuing_organization"`
	ExpirationDate      *time.Time `json:"expiration_date,omitempty"` // nil = never expires
}

// VerifyCertificationRequest is the public verification payload
type VerifyCertificationRequest struct {
	CredentialID string `json:"credential_id"`
}

// VerifyCertificationResult is the public verification verdict. Unknown or
// malformed ids answer 200 with Valid=false rather than 404.
type VerifyCertificationResult struct {
	Valid               bool       `json:"valid"`
	Error               string     `json:"error,omitempty"`
	CredentialID        string     `json:"credential_id,omitempty"`
	LevelName           string     `json:"level_name,omitempty"`
	Score               int        `json:"score,omitempty"`
	CertifiedAt         *time.Time `json:"certified_at,omitempty"`
	IssuingOrganization string     `json:"issuing_organization,omitempty"`
	ExpirationDate      *time.Time `json:"expiration_date,omitempty"`
}

// BadgeAssertion is an Open Badge 2.0-shaped assertion built on demand from
// stored certification fields
type BadgeAssertion struct {
	Context      string            `json:"@context"`
	Type         string            `json:"type"`
	ID           string            `json:"id"`
	Badge        BadgeClass        `json:"badge"`
	IssuedOn     time.Time         `json:"issuedOn"`
	Expires      *time.Time        `json:"expires,omitempty"`
	Verification BadgeVerification `json:"verification"`
}

// BadgeClass describes the badge a certification asserts
type BadgeClass struct {
	Type        string      `json:"type"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Issuer      BadgeIssuer `json:"issuer"`
}

// BadgeIssuer identifies the issuing organization
type BadgeIssuer struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// BadgeVerification declares how the assertion is verified
type BadgeVerification struct {
	Type string `json:"type"`
}
