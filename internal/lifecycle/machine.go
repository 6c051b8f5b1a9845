// Package lifecycle is the only writer of Application.status. Every accepted
// transition runs as one locked read-modify-write and appends exactly one
// audit log; rejected transitions change nothing and log nothing.
package lifecycle

import (
	"job-applier/internal/common/errors"
	"job-applier/internal/models"
)

// Machine holds the pure transition rules.
type Machine struct{}

var forward = map[models.Status][]models.Status{
	models.StatusQueued:      {models.StatusCustomizing, models.StatusPaused},
	models.StatusCustomizing: {models.StatusReady, models.StatusPaused},
	models.StatusReady:       {models.StatusApplying, models.StatusPaused},
	models.StatusApplying:    {models.StatusCompleted, models.StatusFailed, models.StatusPaused},
}

var events = map[models.Status]string{
	models.StatusCustomizing: models.EventCustomizationStarted,
	models.StatusReady:       models.EventCustomizationReady,
	models.StatusApplying:    models.EventStarted,
	models.StatusCompleted:   models.EventCompleted,
	models.StatusFailed:      models.EventError,
	models.StatusPaused:      models.EventPaused,
}

// CanTransition reports whether from -> to is a forward edge. Leaving paused
// depends on the application, see Check.
func (Machine) CanTransition(from, to models.Status) bool {
	for _, next := range forward[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Operative reports whether s is a state work can be paused from and resumed into.
func (Machine) Operative(s models.Status) bool {
	_, ok := forward[s]
	return ok
}

// EventFor returns the audit event type recorded when entering to.
func (Machine) EventFor(to models.Status) string {
	return events[to]
}

// Check validates app -> to against the graph, including the rule that a
// paused application may only return to the state it was paused from, and
// only once the intervention flag is cleared.
func (m Machine) Check(app *models.Application, to models.Status) error {
	if !to.Valid() {
		return errors.NewValidationError("status", "unknown status: "+string(to))
	}

	if app.Status == models.StatusPaused {
		if app.PausedFrom == nil || *app.PausedFrom != to {
			return errors.NewInvalidTransitionError(string(app.Status), string(to))
		}
		if app.UserInterventionRequired {
			return errors.NewInvalidTransitionError(string(app.Status), string(to)).
				WithMetadata("reason", "intervention not cleared")
		}
		return nil
	}

	if !m.CanTransition(app.Status, to) {
		return errors.NewInvalidTransitionError(string(app.Status), string(to))
	}
	return nil
}
