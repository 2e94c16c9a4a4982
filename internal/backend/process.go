package backend

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/primesieve/internal/bitmap"
	"github.com/hupe1980/primesieve/internal/conv"
	"github.com/hupe1980/primesieve/internal/marker"
	"github.com/hupe1980/primesieve/internal/mmap"
)

// Environment handed to worker processes.
const (
	EnvWorker   = "PRIMESIEVE_WORKER"
	EnvShm      = "PRIMESIEVE_SHM"
	EnvBound    = "PRIMESIEVE_BOUND"
	EnvWorkers  = "PRIMESIEVE_WORKERS"
	EnvID       = "PRIMESIEVE_ID"
	EnvProgress = "PRIMESIEVE_PROGRESS"
)

// statSlotSize is the size of one per-worker slot behind the map:
// seeds (uint64) and marked (uint64), little endian.
const statSlotSize = 16

var shmSeq atomic.Uint64

// Process runs every segment in a separate operating-system process.
type Process struct {
	// Path is the worker executable. Defaults to os.Executable().
	Path string
	// Args are passed to every worker.
	Args []string
	// Env is appended to the current environment of every worker.
	Env []string
	// Dir holds the shared-memory files. Defaults to mmap.SharedDir().
	Dir string
	// Stderr receives the workers' standard error. Defaults to os.Stderr.
	Stderr io.Writer
}

// Name implements Backend.
func (p *Process) Name() string { return "process" }

func mapSize(bound uint32, workers int) int {
	return bitmap.WordsFor(bound)*4 + workers*statSlotSize
}

// Alloc implements Backend.
func (p *Process) Alloc(bound uint32, workers int) (*Shared, error) {
	dir := p.Dir
	if dir == "" {
		dir = mmap.SharedDir()
	}
	path := filepath.Join(dir, fmt.Sprintf("primesieve-%d-%d", os.Getpid(), shmSeq.Add(1)))

	mapping, err := mmap.CreateShared(path, mapSize(bound, workers))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", bitmap.ErrAllocation, err)
	}

	return sharedFromMapping(mapping, bound, workers)
}

func sharedFromMapping(mapping *mmap.Mapping, bound uint32, workers int) (*Shared, error) {
	words, err := mapping.Uint32s(bitmap.WordsFor(bound))
	if err != nil {
		_ = mapping.Close()
		return nil, fmt.Errorf("%w: %w", bitmap.ErrAllocation, err)
	}
	m, err := bitmap.FromWords(bound, words, mapping.Close)
	if err != nil {
		return nil, err
	}
	return &Shared{Map: m, mapping: mapping, workers: workers}, nil
}

func (s *Shared) slot(id int) ([]byte, error) {
	if s.mapping == nil || id < 0 || id >= s.workers {
		return nil, fmt.Errorf("no stat slot for worker %d", id)
	}
	r, err := s.mapping.Region(int(s.Map.Bytes())+id*statSlotSize, statSlotSize)
	if err != nil {
		return nil, err
	}
	return r.Bytes(), nil
}

func (s *Shared) writeStats(id int, st marker.Stats) error {
	b, err := s.slot(id)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b[0:8], uint64(st.Seeds))
	binary.LittleEndian.PutUint64(b[8:16], st.Marked)
	return nil
}

func (s *Shared) readStats(id int) (marker.Stats, error) {
	b, err := s.slot(id)
	if err != nil {
		return marker.Stats{}, err
	}
	seeds, err := conv.Uint64ToInt(binary.LittleEndian.Uint64(b[0:8]))
	if err != nil {
		return marker.Stats{}, err
	}
	return marker.Stats{
		Seeds:  seeds,
		Marked: binary.LittleEndian.Uint64(b[8:16]),
	}, nil
}

// Run implements Backend.
func (p *Process) Run(ctx context.Context, sh *Shared, job Job) ([]marker.Stats, error) {
	if sh.Path() == "" {
		return nil, errors.New("backend: process workers need a shared map from Process.Alloc")
	}
	if len(job.Plan) != sh.workers {
		return nil, fmt.Errorf("backend: shared map has %d stat slots, plan has %d segments", sh.workers, len(job.Plan))
	}

	path := p.Path
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, &WorkerError{Worker: 0, Kind: ErrSpawn, Err: err}
		}
		path = exe
	}
	stderr := p.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	logger := job.logger()

	stats := make([]marker.Stats, len(job.Plan))

	grp, gctx := errgroup.WithContext(ctx)
	for i, seg := range job.Plan {
		grp.Go(func() error {
			if err := job.acquireWorker(gctx, seg.ID); err != nil {
				return err
			}
			defer job.Resources.ReleaseWorker()

			cmd := exec.CommandContext(gctx, path, p.Args...)
			cmd.Env = append(os.Environ(), p.Env...)
			cmd.Env = append(cmd.Env,
				EnvWorker+"=1",
				EnvShm+"="+sh.Path(),
				EnvBound+"="+strconv.FormatUint(uint64(sh.Map.Bound()), 10),
				EnvWorkers+"="+strconv.Itoa(len(job.Plan)),
				EnvID+"="+strconv.Itoa(seg.ID),
				EnvProgress+"="+job.ProgressInterval.String(),
			)
			cmd.Stderr = stderr

			start := time.Now()
			if err := cmd.Start(); err != nil {
				return &WorkerError{Worker: seg.ID, Kind: ErrSpawn, Err: err}
			}
			logger.DebugContext(gctx, "worker process started",
				"worker", seg.ID,
				"pid", cmd.Process.Pid,
				"segment", seg.String(),
			)

			if err := cmd.Wait(); err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				return &WorkerError{Worker: seg.ID, Kind: ErrJoin, Err: err}
			}

			st, err := sh.readStats(seg.ID)
			if err != nil {
				return &WorkerError{Worker: seg.ID, Kind: ErrJoin, Err: err}
			}
			st.Segment = seg
			st.Duration = time.Since(start)
			stats[i] = st
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
