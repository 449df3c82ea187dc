// internal/workers/data-access/record-chat-log/models.go
package recordchatlog

import (
	"encoding/json"

	"culturis/internal/models"
)

type Input struct {
	UserQuery string                `json:"userQuery"`
	Plan      models.PlannedRequest `json:"plan"`
	QlooData  json.RawMessage       `json:"qlooData"`
	Pretty    string                `json:"pretty"`
}

type Output struct {
	ChatLogID string `json:"chatLogId,omitempty"`
	Recorded  bool   `json:"recorded"`
}
