package backend

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/hupe1980/primesieve/internal/conv"
	"github.com/hupe1980/primesieve/internal/marker"
	"github.com/hupe1980/primesieve/internal/mmap"
	"github.com/hupe1980/primesieve/internal/partition"
)

// IsChild reports whether the current process was started as a worker by
// the Process backend.
func IsChild() bool {
	return os.Getenv(EnvWorker) == "1"
}

type childEnv struct {
	path     string
	bound    uint32
	workers  int
	id       int
	progress time.Duration
}

func parseChildEnv(getenv func(string) string) (childEnv, error) {
	var env childEnv

	env.path = getenv(EnvShm)
	if env.path == "" {
		return env, fmt.Errorf("%s is not set", EnvShm)
	}

	bound, err := strconv.ParseUint(getenv(EnvBound), 10, 64)
	if err != nil {
		return env, fmt.Errorf("%s: %w", EnvBound, err)
	}
	if env.bound, err = conv.Uint64ToUint32(bound); err != nil {
		return env, fmt.Errorf("%s: %w", EnvBound, err)
	}

	if env.workers, err = strconv.Atoi(getenv(EnvWorkers)); err != nil {
		return env, fmt.Errorf("%s: %w", EnvWorkers, err)
	}
	if env.id, err = strconv.Atoi(getenv(EnvID)); err != nil {
		return env, fmt.Errorf("%s: %w", EnvID, err)
	}

	if s := getenv(EnvProgress); s != "" {
		if env.progress, err = time.ParseDuration(s); err != nil {
			return env, fmt.Errorf("%s: %w", EnvProgress, err)
		}
	}
	return env, nil
}

// ServeChild runs the segment assigned to this worker process through the
// environment, writes its statistics into the shared map and returns.
func ServeChild(ctx context.Context, logger *slog.Logger) error {
	env, err := parseChildEnv(os.Getenv)
	if err != nil {
		return err
	}

	seg, err := partition.Partition(env.bound, env.workers, env.id)
	if err != nil {
		return err
	}

	mapping, err := mmap.OpenShared(env.path)
	if err != nil {
		return err
	}
	if mapping.Size() != mapSize(env.bound, env.workers) {
		_ = mapping.Close()
		return fmt.Errorf("%s: size %d does not match bound %d and %d workers",
			env.path, mapping.Size(), env.bound, env.workers)
	}

	sh, err := sharedFromMapping(mapping, env.bound, env.workers)
	if err != nil {
		return err
	}
	defer sh.Close()

	job := Job{Logger: logger, ProgressInterval: env.progress}
	st, err := marker.Mark(ctx, sh.Map, seg, job.markerOptions()...)
	if err != nil {
		return err
	}

	job.logger().DebugContext(ctx, "worker process finished",
		"worker", env.id,
		"segment", seg.String(),
		"seeds", st.Seeds,
		"marked", st.Marked,
	)
	return sh.writeStats(env.id, st)
}
