// internal/workers/onboarding/create-user-profile/store.go
package createuserprofile

import (
	"context"
	"database/sql"
	"time"

	apperrors "culturis/internal/common/errors"
	"culturis/internal/models"

	"github.com/google/uuid"
)

const insertProfile = `
	INSERT INTO user_profiles (id, first_name, agree_to_terms, created_at)
	VALUES ($1, $2, $3, $4)
	RETURNING id, first_name, agree_to_terms, created_at`

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create inserts a profile and returns the stored row.
func (s *Store) Create(ctx context.Context, firstName string, agreeToTerms bool) (*models.UserProfile, error) {
	var p models.UserProfile
	err := s.db.QueryRowContext(ctx, insertProfile, uuid.NewString(), firstName, agreeToTerms, s.now()).
		Scan(&p.ID, &p.FirstName, &p.AgreeToTerms, &p.CreatedAt)
	if err != nil {
		return nil, apperrors.NewDatabaseError("insert user profile", err)
	}
	return &p, nil
}
