package film

import (
	"context"
	"math"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

type task struct {
	idx      int64
	row, col int
	p        Point
}

// executor fans the points of a batch out to a fixed set of workers. Each
// worker writes only its own grid cell, so the output keeps input order.
type executor struct {
	workers int
	state   State
	opts    Options

	out  [][]Record
	errs [][]error

	// firstFailed is the lowest grid-order index that failed under
	// PolicyAbort. Points after it are not evaluated.
	firstFailed atomic.Int64
	abort       context.CancelFunc
}

func newExecutor(s State, grid [][]Point, opts Options) *executor {
	e := &executor{
		workers: opts.Workers,
		state:   s,
		opts:    opts,
		out:     make([][]Record, len(grid)),
		errs:    make([][]error, len(grid)),
	}
	for i, row := range grid {
		e.out[i] = make([]Record, len(row))
		e.errs[i] = make([]error, len(row))
	}
	e.firstFailed.Store(math.MaxInt64)
	return e
}

func (e *executor) run(ctx context.Context, grid [][]Point) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	e.abort = cancel

	tasks := make(chan task, e.workers)
	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				if ctx.Err() != nil || t.idx > e.firstFailed.Load() {
					continue
				}
				e.solve(t)
			}
		}()
	}

	var idx int64
LOOP:
	for i, row := range grid {
		for j, p := range row {
			if runCtx.Err() != nil {
				break LOOP
			}
			select {
			case <-runCtx.Done():
				break LOOP
			case tasks <- task{idx: idx, row: i, col: j, p: p}:
			}
			idx++
		}
	}
	close(tasks)
	wg.Wait()
	// runCtx alone is cancelled by an aborting point, which EvaluateGrid reports.
	return ctx.Err()
}

func (e *executor) solve(t task) {
	rec, err := EvaluatePoint(e.state, t.p.Jg, t.p.Jl, e.opts)
	if err != nil {
		rec = failedRecord(e.state, t.p, err)
		e.errs[t.row][t.col] = err
		if e.opts.Policy == PolicyAbort {
			e.fail(t.idx)
		}
	} else {
		rec.X, rec.G = t.p.X, t.p.G
	}
	e.out[t.row][t.col] = rec
	if e.opts.OnRecord != nil {
		e.opts.OnRecord(t.row, t.col, rec)
	}
}

func (e *executor) fail(idx int64) {
	for {
		cur := e.firstFailed.Load()
		if idx >= cur || e.firstFailed.CompareAndSwap(cur, idx) {
			break
		}
	}
	e.abort()
}

// EvaluateGrid solves every point of grid and returns records in the same
// shape. With PolicyAbort no point after the first failure in grid order is
// evaluated and that failure is returned without records; with PolicyRecord
// failures stay in place as unsolved records.
func EvaluateGrid(ctx context.Context, s State, grid [][]Point, opts Options) ([][]Record, error) {
	opts = opts.normalize()
	e := newExecutor(s, grid, opts)
	if err := e.run(ctx, grid); err != nil {
		return nil, err
	}

	failed := 0
	for i := range e.errs {
		for j, err := range e.errs[i] {
			if err == nil {
				continue
			}
			if opts.Policy == PolicyAbort {
				return nil, err
			}
			failed++
			log.WithFields(log.Fields{
				"row":   i,
				"col":   j,
				"jg":    e.out[i][j].Jg,
				"jl":    e.out[i][j].Jl,
				"error": err,
			}).Warn("film thickness not solved")
		}
	}
	if failed > 0 {
		log.WithFields(log.Fields{
			"substance": s.Substance,
			"failed":    failed,
		}).Info("batch finished with unsolved points")
	}
	return e.out, nil
}

// EvaluateBatch is EvaluateGrid over a flat sequence of points.
func EvaluateBatch(ctx context.Context, s State, points []Point, opts Options) ([]Record, error) {
	out, err := EvaluateGrid(ctx, s, [][]Point{points}, opts)
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// CountFailed returns the number of unsolved records.
func CountFailed(rows [][]Record) int {
	n := 0
	for _, row := range rows {
		for _, r := range row {
			if !r.Solved {
				n++
			}
		}
	}
	return n
}
