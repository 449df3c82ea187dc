// internal/pipeline/errors.go
package pipeline

import "errors"

var errProfilesDisabled = errors.New("user profiles are not configured")
