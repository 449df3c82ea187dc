package database

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"culturis/internal/common/config"
	"culturis/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Redis
// ==========================

func TestRedisClient_JSONRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx))

	type payload struct {
		Name string `json:"name"`
	}

	var miss payload
	hit, err := client.GetJSON(ctx, "qloo:insights:missing", &miss)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, client.SetJSON(ctx, "qloo:insights:k", payload{Name: "Katz's"}, time.Minute))

	var got payload
	hit, err = client.GetJSON(ctx, "qloo:insights:k", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "Katz's", got.Name)

	mr.FastForward(2 * time.Minute)
	hit, err = client.GetJSON(ctx, "qloo:insights:k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisClient_GetJSONErrors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := &RedisClient{Client: db}

	mock.ExpectGet("broken").SetErr(errors.New("connection reset"))
	mock.ExpectGet("garbage").SetVal("{not json")

	var dst map[string]interface{}
	_, err := client.GetJSON(context.Background(), "broken", &dst)
	assert.EqualError(t, err, "connection reset")

	hit, err := client.GetJSON(context.Background(), "garbage", &dst)
	assert.False(t, hit)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Postgres
// ==========================

func TestPostgresClient_EnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS user_profiles`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS chat_logs`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS chat_logs_created_at_idx`).WillReturnResult(sqlmock.NewResult(0, 0))

	client := &PostgresClient{DB: db}
	require.NoError(t, client.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresClient_EnsureSchemaFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS user_profiles`).WillReturnError(errors.New("permission denied"))

	client := &PostgresClient{DB: db}
	err = client.EnsureSchema(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

// ==========================
// Elasticsearch
// ==========================

func newFakeES(t *testing.T, handler http.HandlerFunc) *ElasticsearchClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL})
	require.NoError(t, err)
	return client
}

func TestElasticsearchClient_KNNSearch(t *testing.T) {
	var captured map[string]interface{}
	client := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/culturis-tags/_search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = io.WriteString(w, `{"hits":{"hits":[
			{"_source":{"text":"Matcha (taste) -> urn:tag:taste:tea"}},
			{"_source":{"text":"Vinyl (interest) -> urn:tag:interest:vinyl"}}
		]}}`)
	})

	sources, err := client.KNNSearch(context.Background(), "culturis-tags", []float64{0.1, 0.2}, 2)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Contains(t, string(sources[0]), "Matcha")

	knn := captured["knn"].(map[string]interface{})
	assert.Equal(t, "embedding", knn["field"])
	assert.Equal(t, float64(2), knn["k"])
	assert.Equal(t, float64(50), knn["num_candidates"])
}

func TestElasticsearchClient_KNNSearchIndexMissing(t *testing.T) {
	client := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"type":"index_not_found_exception"},"status":404}`)
	})

	_, err := client.KNNSearch(context.Background(), "culturis-tags", []float64{0.1}, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestElasticsearchClient_BulkIndex(t *testing.T) {
	var lines []string
	client := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/culturis-fewshots/_bulk", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("refresh"))
		body, _ := io.ReadAll(r.Body)
		lines = strings.Split(strings.TrimSpace(string(body)), "\n")
		_, _ = io.WriteString(w, `{"errors":false,"items":[]}`)
	})

	docs := []Document{
		{ID: "a", Source: map[string]interface{}{"text": "USER: hi"}},
		{ID: "b", Source: map[string]interface{}{"text": "USER: bye"}},
	}
	require.NoError(t, client.BulkIndex(context.Background(), "culturis-fewshots", docs))
	require.Len(t, lines, 4)
	assert.JSONEq(t, `{"index":{"_id":"a"}}`, lines[0])
	assert.JSONEq(t, `{"text":"USER: bye"}`, lines[3])
}

func TestElasticsearchClient_BulkIndexRejected(t *testing.T) {
	client := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"errors":true,"items":[]}`)
	})

	err := client.BulkIndex(context.Background(), "culturis-tags", []Document{{ID: "a", Source: map[string]string{}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")
}

// ==========================
// Retry
// ==========================

func TestRetryWithBackoff(t *testing.T) {
	tests := []struct {
		name      string
		failFirst int
		wantCalls int
		wantErr   bool
	}{
		{"first attempt", 0, 1, false},
		{"recovers", 2, 3, false},
		{"gives up", 5, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(func() error {
				calls++
				if calls <= tt.failFirst {
					return errors.New("connection refused")
				}
				return nil
			}, 3, time.Millisecond, logger.NewTestLogger(t), "postgres connection")

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr {
				assert.ErrorContains(t, err, "postgres connection failed after 3 attempts: connection refused")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
