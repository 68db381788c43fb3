// Package nudge schedules ambient coach nudges. Delivery is a callback;
// the notification channel itself lives outside this core.
package nudge

import (
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/stridewell/coachcore/internal/coach"
	"github.com/stridewell/coachcore/internal/model"
)

// Delivery carries one scheduled nudge to the delivery callback.
type Delivery struct {
	ID       string
	Kind     coach.NudgeKind
	Response *model.CoachResponse
}

// DeliverFunc receives scheduled nudges. It must not block for long; the
// scheduler runs deliveries on the cron goroutine.
type DeliverFunc func(Delivery)

// Scheduler emits morning and evening nudges on cron schedules.
type Scheduler struct {
	c       *cron.Cron
	rt      *coach.Runtime
	deliver DeliverFunc
	log     zerolog.Logger
}

// NewScheduler wires a scheduler. deliver must be non-nil.
func NewScheduler(rt *coach.Runtime, deliver DeliverFunc, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		c:       cron.New(),
		rt:      rt,
		deliver: deliver,
		log:     log,
	}
}

// Start registers the schedules and starts the cron loop.
func (s *Scheduler) Start(morningSpec, eveningSpec string) error {
	if _, err := s.c.AddFunc(morningSpec, func() { s.emit(coach.NudgeMorning) }); err != nil {
		return err
	}
	if _, err := s.c.AddFunc(eveningSpec, func() { s.emit(coach.NudgeEvening) }); err != nil {
		return err
	}
	s.c.Start()
	s.log.Info().
		Str("morning", morningSpec).
		Str("evening", eveningSpec).
		Msg("nudge scheduler started")
	return nil
}

// Stop halts the cron loop. Running deliveries finish on their own.
func (s *Scheduler) Stop() {
	s.c.Stop()
}

func (s *Scheduler) emit(kind coach.NudgeKind) {
	d := Delivery{
		ID:       uuid.NewString(),
		Kind:     kind,
		Response: s.rt.CoachNudge(kind),
	}
	s.log.Debug().Str("nudge_id", d.ID).Str("kind", string(kind)).Msg("emitting nudge")
	s.deliver(d)
}
