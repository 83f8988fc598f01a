package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/certifrancais/backend/internal/models"
)

type certificationRepository struct {
	db *sql.DB
}

// NewCertificationRepository creates a new certification repository
func NewCertificationRepository(db *sql.DB) *certificationRepository {
	return &certificationRepository{
		db: db,
	}
}

const certificationColumns = `
	c.id, c.user_id, c.level, l.name, c.score, c.certified_at,
	c.credential_id, c.issuing_organization, c.expiration_date
`

// Create inserts a certification. The unique (user_id, level) constraint
// guarantees at most one certification per user per level.
func (r *certificationRepository) Create(ctx context.Context, cert *models.UserCertification) error {
	query := `
		INSERT INTO user_certifications
			(user_id, level, score, certified_at, credential_id, issuing_organization, expiration_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		cert.UserID,
		cert.Level,
		cert.Score,
		cert.CertifiedAt,
		cert.CredentialID,
		cert.IssuingOrganization,
		cert.ExpirationDate,
	)
	if err != nil {
		return fmt.Errorf("failed to create certification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted certification id: %w", err)
	}
	cert.ID = int(id)

	return nil
}

// GetByUserAndLevel retrieves a user's certification for a level
func (r *certificationRepository) GetByUserAndLevel(ctx context.Context, userID, level int) (*models.UserCertification, error) {
	query := `
		SELECT ` + certificationColumns + `
		FROM user_certifications c
		JOIN levels l ON l.id = c.level
		WHERE c.user_id = ? AND c.level = ?
		LIMIT 1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, userID, level))
}

// GetByUser retrieves all certifications of a user, newest first
func (r *certificationRepository) GetByUser(ctx context.Context, userID int) ([]models.UserCertification, error) {
	query := `
		SELECT ` + certificationColumns + `
		FROM user_certifications c
		JOIN levels l ON l.id = c.level
		WHERE c.user_id = ?
		ORDER BY c.certified_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query certifications: %w", err)
	}
	defer rows.Close()

	var certs []models.UserCertification
	for rows.Next() {
		var c models.UserCertification
		err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.Level,
			&c.LevelName,
			&c.Score,
			&c.CertifiedAt,
			&c.CredentialID,
			&c.IssuingOrganization,
			&c.ExpirationDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan certification: %w", err)
		}
		certs = append(certs, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return certs, nil
}

// GetByCredentialID retrieves a certification by its public credential id
func (r *certificationRepository) GetByCredentialID(ctx context.Context, credentialID string) (*models.UserCertification, error) {
	query := `
		SELECT ` + certificationColumns + `
		FROM user_certifications c
		JOIN levels l ON l.id = c.level
		WHERE c.credential_id = ?
		LIMIT 1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, credentialID))
}

func (r *certificationRepository) scanOne(row *sql.Row) (*models.UserCertification, error) {
	var c models.UserCertification
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Level,
		&c.LevelName,
		&c.Score,
		&c.CertifiedAt,
		&c.CredentialID,
		&c.IssuingOrganization,
		&c.ExpirationDate,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("certification not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get certification: %w", err)
	}

	return &c, nil
}
