package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/foodcart/pkg/logger"
)

type sessionSweeper interface {
	Sweep(now time.Time) int
	Len() int
}

// SessionSweepJobParams configure the idle cart eviction job.
type SessionSweepJobParams struct {
	Logger   *logger.Logger
	Sessions sessionSweeper
}

// NewSessionSweepJob evicts carts whose session has been idle past the registry TTL.
func NewSessionSweepJob(params SessionSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session registry required")
	}
	return &sessionSweepJob{
		logg:     params.Logger,
		sessions: params.Sessions,
		now:      time.Now,
	}, nil
}

type sessionSweepJob struct {
	logg     *logger.Logger
	sessions sessionSweeper
	now      func() time.Time
}

func (j *sessionSweepJob) Name() string { return "session-sweep" }

func (j *sessionSweepJob) Run(ctx context.Context) error {
	evicted := j.sessions.Sweep(j.now())
	if evicted == 0 {
		return nil
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"sessions_evicted": evicted,
		"sessions_live":    j.sessions.Len(),
	})
	j.logg.Info(logCtx, "idle carts evicted")
	return nil
}
