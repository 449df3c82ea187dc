// internal/workers/data-access/record-chat-log/store.go
package recordchatlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	apperrors "culturis/internal/common/errors"
	"culturis/internal/models"

	"github.com/google/uuid"
)

const insertChatLog = `
	INSERT INTO chat_logs (id, user_query, planner_result, qloo_response, pretty_response, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

// Store persists chat exchanges.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Insert writes one chat log row and returns it with its generated id.
func (s *Store) Insert(ctx context.Context, log models.ChatLog) (*models.ChatLog, error) {
	log.ID = uuid.NewString()
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}

	plan, err := json.Marshal(log.PlannerResult)
	if err != nil {
		return nil, apperrors.NewDatabaseError("encode planner result", err)
	}
	qloo, err := json.Marshal(log.QlooResponse)
	if err != nil {
		return nil, apperrors.NewDatabaseError("encode qloo response", err)
	}

	_, err = s.db.ExecContext(ctx, insertChatLog,
		log.ID, log.UserQuery, string(plan), string(qloo), log.PrettyResponse, log.CreatedAt)
	if err != nil {
		return nil, apperrors.NewDatabaseError("insert chat log", err)
	}
	return &log, nil
}
