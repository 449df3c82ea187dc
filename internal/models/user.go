// internal/models/user.go
package models

import "time"

// UserProfile is created by onboarding.
type UserProfile struct {
	ID           string    `json:"_id" db:"id"`
	FirstName    string    `json:"firstName" db:"first_name"`
	AgreeToTerms bool      `json:"agreeToTerms" db:"agree_to_terms"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// ChatLog records one chat exchange.
type ChatLog struct {
	ID             string         `json:"id" db:"id"`
	UserQuery      string         `json:"user_query" db:"user_query"`
	PlannerResult  PlannedRequest `json:"planner_result" db:"planner_result"`
	QlooResponse   interface{}    `json:"qloo_response" db:"qloo_response"`
	PrettyResponse string         `json:"pretty_response" db:"pretty_response"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}
