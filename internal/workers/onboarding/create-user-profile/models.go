// internal/workers/onboarding/create-user-profile/models.go
package createuserprofile

import "culturis/internal/models"

type Input struct {
	FirstName    string `json:"firstName" validate:"required,max=100"`
	AgreeToTerms bool   `json:"agreeToTerms"`
}

type Output struct {
	Success bool                `json:"success"`
	User    *models.UserProfile `json:"user"`
}
