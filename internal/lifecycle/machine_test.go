package lifecycle

import (
	"testing"

	apperrors "job-applier/internal/common/errors"
	"job-applier/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestMachine_CanTransition(t *testing.T) {
	m := Machine{}

	allowed := map[models.Status][]models.Status{
		models.StatusQueued:      {models.StatusCustomizing, models.StatusPaused},
		models.StatusCustomizing: {models.StatusReady, models.StatusPaused},
		models.StatusReady:       {models.StatusApplying, models.StatusPaused},
		models.StatusApplying:    {models.StatusCompleted, models.StatusFailed, models.StatusPaused},
	}

	for _, from := range models.AllStatuses {
		for _, to := range models.AllStatuses {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, m.CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestMachine_TerminalStatesHaveNoExits(t *testing.T) {
	m := Machine{}
	for _, from := range []models.Status{models.StatusCompleted, models.StatusFailed} {
		assert.False(t, m.Operative(from))
		for _, to := range models.AllStatuses {
			assert.False(t, m.CanTransition(from, to))
		}
	}
}

func TestMachine_EventFor(t *testing.T) {
	m := Machine{}
	assert.Equal(t, models.EventCustomizationStarted, m.EventFor(models.StatusCustomizing))
	assert.Equal(t, models.EventCustomizationReady, m.EventFor(models.StatusReady))
	assert.Equal(t, models.EventStarted, m.EventFor(models.StatusApplying))
	assert.Equal(t, models.EventCompleted, m.EventFor(models.StatusCompleted))
	assert.Equal(t, models.EventError, m.EventFor(models.StatusFailed))
	assert.Equal(t, models.EventPaused, m.EventFor(models.StatusPaused))
}

func TestMachine_Check_Paused(t *testing.T) {
	m := Machine{}
	prior := models.StatusReady

	flagged := &models.Application{Status: models.StatusPaused, PausedFrom: &prior, UserInterventionRequired: true}
	assert.True(t, apperrors.Is(m.Check(flagged, models.StatusReady), apperrors.ErrInvalidTransition))

	cleared := &models.Application{Status: models.StatusPaused, PausedFrom: &prior}
	assert.NoError(t, m.Check(cleared, models.StatusReady))
	assert.True(t, apperrors.Is(m.Check(cleared, models.StatusApplying), apperrors.ErrInvalidTransition))
	assert.True(t, apperrors.Is(m.Check(cleared, models.StatusPaused), apperrors.ErrInvalidTransition))

	noPrior := &models.Application{Status: models.StatusPaused}
	assert.True(t, apperrors.Is(m.Check(noPrior, models.StatusQueued), apperrors.ErrInvalidTransition))
}

func TestMachine_Check_UnknownStatus(t *testing.T) {
	m := Machine{}
	err := m.Check(&models.Application{Status: models.StatusQueued}, models.Status("archived"))
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}
