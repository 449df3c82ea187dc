// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"culturis/internal/common/validation"
)

var (
	ErrNoActivities    = errors.New("registry declares no activities")
	ErrDuplicateTask   = errors.New("duplicate task type")
	ErrMissingTaskType = errors.New("activity has no task type")
	ErrInvalidTimeout  = errors.New("invalid timeout")
	ErrInvalidSchema   = errors.New("invalid input schema")
	ErrUnknownTaskType = errors.New("unknown task type")
	ErrMissingActivity = errors.New("stage missing from registry")
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// Validate checks that task types are unique, timeouts parse and every
// input schema compiles.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return ErrNoActivities
	}
	seen := make(map[string]bool, len(r.Activities))
	var errs []error
	for _, a := range r.Activities {
		if a.TaskType == "" {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingTaskType, a.ID))
			continue
		}
		if seen[a.TaskType] {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateTask, a.TaskType))
		}
		seen[a.TaskType] = true

		if _, err := a.TimeoutDuration(); err != nil {
			errs = append(errs, err)
		}
		if a.InputSchema != nil {
			if _, err := validation.Compile(a.InputSchema); err != nil {
				errs = append(errs, fmt.Errorf("%w for %s: %v", ErrInvalidSchema, a.TaskType, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Require reports every task type that has no activity.
func (r *ActivityRegistry) Require(taskTypes ...string) error {
	var errs []error
	for _, tt := range taskTypes {
		if _, ok := r.Find(tt); !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingActivity, tt))
		}
	}
	return errors.Join(errs...)
}

func (r *ActivityRegistry) Find(taskType string) (Activity, bool) {
	for _, a := range r.Activities {
		if a.TaskType == taskType {
			return a, true
		}
	}
	return Activity{}, false
}

// InputSchema compiles the input schema of taskType. A stage without a
// schema yields nil.
func (r *ActivityRegistry) InputSchema(taskType string) (*validation.Schema, error) {
	a, ok := r.Find(taskType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTaskType, taskType)
	}
	if a.InputSchema == nil {
		return nil, nil
	}
	s, err := validation.Compile(a.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %v", ErrInvalidSchema, taskType, err)
	}
	return s, nil
}

// TimeoutDuration parses Timeout ("30s", "2m"). Empty means no timeout.
func (a Activity) TimeoutDuration() (time.Duration, error) {
	if a.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w for %s: %q", ErrInvalidTimeout, a.TaskType, a.Timeout)
	}
	return d, nil
}
