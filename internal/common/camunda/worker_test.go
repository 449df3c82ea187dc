// internal/common/camunda/worker_test.go
package camunda

import (
	"net/http"
	"testing"

	apperrors "culturis/internal/common/errors"
	"culturis/internal/common/logger"
	"culturis/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var querySchema = validation.MustCompile(map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"query"},
	"properties": map[string]interface{}{
		"query": map[string]interface{}{"type": "string", "minLength": 1},
	},
})

func newJob(variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:       42,
		Type:      "plan-request",
		Variables: variables,
	}}
}

func TestCheckVariables(t *testing.T) {
	tests := []struct {
		name      string
		schema    *validation.Schema
		variables string
		wantErr   string
	}{
		{"valid", querySchema, `{"query":"jazz in Austin"}`, ""},
		{"no schema", nil, `{"anything":1}`, ""},
		{"missing field", querySchema, `{"context":""}`, "invalid job variables"},
		{"empty variables", querySchema, "", "invalid job variables"},
		{"not json", querySchema, `{"query":`, "unreadable job variables"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckVariables(tt.schema, newJob(tt.variables))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, apperrors.AsStandardError(err).Message, tt.wantErr)
			assert.Equal(t, http.StatusBadRequest, apperrors.HTTPStatus(err))
		})
	}
}

func TestGuard_PassesValidJobs(t *testing.T) {
	var seen int64
	handler := Guard("plan-request", querySchema, func(_ worker.JobClient, job entities.Job) {
		seen = job.Key
	}, logger.NewTestLogger(t))

	handler(nil, newJob(`{"query":"matcha"}`))
	assert.Equal(t, int64(42), seen)
}
