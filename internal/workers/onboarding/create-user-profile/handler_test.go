// internal/workers/onboarding/create-user-profile/handler_test.go
package createuserprofile

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"testing"
	"time"

	apperrors "culturis/internal/common/errors"
	"culturis/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var insertPattern = regexp.QuoteMeta(`INSERT INTO user_profiles (id, first_name, agree_to_terms, created_at)`)

var created = time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC)

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))
	h.store.now = func() time.Time { return created }
	return h, mock
}

// ==========================
// Handler Tests
// ==========================

func TestHandler_Execute(t *testing.T) {
	h, mock := newTestHandler(t)

	rows := sqlmock.NewRows([]string{"id", "first_name", "agree_to_terms", "created_at"}).
		AddRow("4b7b5a4e-0c1f-4a8e-9d4b-1f0f7f0d6a11", "Aiko", true, created)
	mock.ExpectQuery(insertPattern).
		WithArgs(sqlmock.AnyArg(), "Aiko", true, created).
		WillReturnRows(rows)

	out, err := h.Execute(context.Background(), &Input{FirstName: "  Aiko ", AgreeToTerms: true})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "4b7b5a4e-0c1f-4a8e-9d4b-1f0f7f0d6a11", out.User.ID)
	assert.Equal(t, "Aiko", out.User.FirstName)
	assert.True(t, out.User.AgreeToTerms)
	assert.Equal(t, created, out.User.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input Input
	}{
		{"missing first name", Input{AgreeToTerms: true}},
		{"blank first name", Input{FirstName: "   "}},
		{"first name too long", Input{FirstName: strings.Repeat("a", 101)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock := newTestHandler(t)

			_, err := h.Execute(context.Background(), &tt.input)
			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, apperrors.HTTPStatus(err))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_DatabaseError(t *testing.T) {
	h, mock := newTestHandler(t)
	mock.ExpectQuery(insertPattern).WillReturnError(errors.New("connection refused"))

	_, err := h.Execute(context.Background(), &Input{FirstName: "Aiko"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeDatabase, apperrors.AsStandardError(err).Code)
	assert.Equal(t, http.StatusInternalServerError, apperrors.HTTPStatus(err))
}
