package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dromero/biblioteca-service/internal/errs"
	"github.com/dromero/biblioteca-service/pkg/kafka"
)

// firstViolation converts a validator error into the domain ValidationError
// carrying the first violated rule.
func firstViolation(err error) error {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) && len(vErrs) > 0 {
		fe := vErrs[0]
		return errs.NewValidation(strings.ToLower(fe.Field()), violationMessage(fe))
	}
	return err
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must have at least %s characters", fe.Param())
	case "alpha_space":
		return "may contain letters and spaces only"
	case "datetime":
		return "must be a date in format YYYY-MM-DD"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return "is invalid"
	}
}

type catalogEvent struct {
	ID        string    `json:"id"`
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	EntityID  int       `json:"entity_id"`
	Timestamp time.Time `json:"timestamp"`
}

// publishEvent pushes a catalog change event, best effort. A nil enqueuer
// (no brokers configured) disables publishing; delivery failures are logged
// and never surfaced to the caller.
func publishEvent(log *zap.Logger, events kafka.Enqueuer, entity, action string, id int) {
	if events == nil {
		return
	}
	ev := catalogEvent{
		ID:        uuid.NewString(),
		Entity:    entity,
		Action:    action,
		EntityID:  id,
		Timestamp: time.Now().UTC(),
	}
	if err := events.Enqueue(kafka.CatalogTopic, ev); err != nil {
		log.Warn("enqueue event",
			zap.String("entity", entity),
			zap.String("action", action),
			zap.Error(err))
	}
}
