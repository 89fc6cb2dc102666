package cron

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/angelmondragon/foodcart/pkg/logger"
)

type directoryRefresher interface {
	Refresh(ctx context.Context) error
}

// DirectoryRefreshJobParams configure the restaurant directory warm-up job.
type DirectoryRefreshJobParams struct {
	Logger    *logger.Logger
	Directory directoryRefresher
	// Lock is optional; when set only the instance holding it refreshes the shared cache.
	Lock Lock
}

// NewDirectoryRefreshJob reloads the restaurant directory so checkout name lookups stay warm.
func NewDirectoryRefreshJob(params DirectoryRefreshJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Directory == nil {
		return nil, fmt.Errorf("restaurant directory required")
	}
	return &directoryRefreshJob{
		logg:      params.Logger,
		directory: params.Directory,
		lock:      params.Lock,
	}, nil
}

type directoryRefreshJob struct {
	logg      *logger.Logger
	directory directoryRefresher
	lock      Lock
}

func (j *directoryRefreshJob) Name() string { return "directory-refresh" }

func (j *directoryRefreshJob) Run(ctx context.Context) (err error) {
	if j.lock != nil {
		locked, lockErr := j.lock.Acquire(ctx)
		if lockErr != nil {
			return fmt.Errorf("lock acquire: %w", lockErr)
		}
		if !locked {
			j.logg.Debug(ctx, "another instance is refreshing the directory; skipping")
			return nil
		}
		defer func() {
			err = multierr.Append(err, j.lock.Release(ctx))
		}()
	}

	if err := j.directory.Refresh(ctx); err != nil {
		return fmt.Errorf("directory refresh: %w", err)
	}
	return nil
}
