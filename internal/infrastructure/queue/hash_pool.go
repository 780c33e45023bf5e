package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/expensetrack/expense-api/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// ErrPoolClosed is returned for jobs submitted after the pool has stopped.
var ErrPoolClosed = errors.New("hash pool closed")

type jobKind int

const (
	jobHash jobKind = iota
	jobCompare
)

type hashJob struct {
	kind   jobKind
	plain  string
	hash   string
	result chan hashResult
}

type hashResult struct {
	hash  string
	match bool
	err   error
}

// HashPool runs bcrypt on a fixed set of workers so that at most numWorkers
// hash computations are in flight at once. Callers block until their job is
// done or their context ends.
type HashPool struct {
	jobs    chan hashJob
	done    chan struct{}
	cost    int
	workers int
	log     zerolog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewHashPool creates a HashPool with numWorkers workers hashing at the given
// bcrypt cost. Non-positive numWorkers uses defaultWorkers; a cost outside
// bcrypt's range uses bcrypt.DefaultCost.
func NewHashPool(numWorkers, cost int, log zerolog.Logger) *HashPool {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &HashPool{
		jobs:    make(chan hashJob, channelBuffer),
		done:    make(chan struct{}),
		cost:    cost,
		workers: numWorkers,
		log:     log,
	}
}

// Start launches the workers. They stop when ctx is cancelled or Stop is called.
func (p *HashPool) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go p.runWorker(ctx, i)
		}
		go func() {
			select {
			case <-ctx.Done():
				p.Stop()
			case <-p.done:
			}
		}()
	})
}

// Stop closes the pool and waits for in-flight jobs to finish.
func (p *HashPool) Stop() {
	p.stopOnce.Do(func() { close(p.done) })
	p.wg.Wait()
}

// Hash returns the bcrypt hash of plain.
func (p *HashPool) Hash(ctx context.Context, plain string) (string, error) {
	res, err := p.submit(ctx, hashJob{kind: jobHash, plain: plain})
	if err != nil {
		return "", err
	}
	return res.hash, res.err
}

// Compare reports whether plain matches hash. A mismatch is not an error.
func (p *HashPool) Compare(ctx context.Context, hash, plain string) (bool, error) {
	res, err := p.submit(ctx, hashJob{kind: jobCompare, hash: hash, plain: plain})
	if err != nil {
		return false, err
	}
	return res.match, res.err
}

func (p *HashPool) submit(ctx context.Context, job hashJob) (hashResult, error) {
	job.result = make(chan hashResult, 1)

	select {
	case <-p.done:
		return hashResult{}, ErrPoolClosed
	case <-ctx.Done():
		return hashResult{}, ctx.Err()
	case p.jobs <- job:
	}

	select {
	case res := <-job.result:
		return res, nil
	case <-p.done:
		return hashResult{}, ErrPoolClosed
	case <-ctx.Done():
		return hashResult{}, ctx.Err()
	}
}

func (p *HashPool) runWorker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.done:
			return
		case job := <-p.jobs:
			job.result <- p.process(job)
			p.log.Trace().Int("worker_id", id).Msg("hash job done")
		}
	}
}

func (p *HashPool) process(job hashJob) hashResult {
	start := time.Now()
	switch job.kind {
	case jobHash:
		h, err := bcrypt.GenerateFromPassword([]byte(job.plain), p.cost)
		metrics.PasswordHashDuration.WithLabelValues("hash").Observe(time.Since(start).Seconds())
		return hashResult{hash: string(h), err: err}
	default:
		err := bcrypt.CompareHashAndPassword([]byte(job.hash), []byte(job.plain))
		metrics.PasswordHashDuration.WithLabelValues("compare").Observe(time.Since(start).Seconds())
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return hashResult{match: false}
		}
		if err != nil {
			return hashResult{err: err}
		}
		return hashResult{match: true}
	}
}
