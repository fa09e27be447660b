package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ProcessFunc consumes a job when it fires.
type ProcessFunc func(ctx context.Context, job *Job)

// Memory is a timer-based in-process Queue. Delayed jobs live in a
// mutex-guarded map until their timer fires or they are promoted, at which
// point they are handed to the process callback exactly once.
type Memory struct {
	mu      sync.Mutex
	jobs    map[string]*memJob
	process ProcessFunc
	closed  bool
	wg      sync.WaitGroup
}

type memJob struct {
	job   Job
	timer *time.Timer
}

// NewMemory builds an in-memory queue. process may be nil, in which case
// fired jobs are discarded (useful in tests that only inspect scheduling).
func NewMemory(process ProcessFunc) *Memory {
	return &Memory{
		jobs:    make(map[string]*memJob),
		process: process,
	}
}

// Add enqueues a job. With a zero delay the job executes asynchronously right
// away; with opts.JobID set, re-adding an existing ID returns the existing
// job and schedules nothing.
func (m *Memory) Add(_ context.Context, name string, data Data, opts AddOptions) (*Job, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrJobNotFound
	}

	id := opts.JobID
	if id == "" {
		id = uuid.New().String()
	} else if existing, ok := m.jobs[id]; ok {
		snap := existing.job
		m.mu.Unlock()
		return &snap, nil
	}

	job := Job{
		ID:         id,
		Name:       name,
		Data:       data,
		Delay:      opts.Delay,
		EnqueuedAt: time.Now(),
	}

	if opts.Delay <= 0 {
		m.wg.Add(1)
		m.mu.Unlock()
		go m.run(job)
		return &job, nil
	}

	entry := &memJob{job: job}
	entry.timer = time.AfterFunc(opts.Delay, func() { m.fire(id) })
	m.jobs[id] = entry
	m.mu.Unlock()

	snap := job
	return &snap, nil
}

// Delayed returns snapshots of all pending delayed jobs.
func (m *Memory) Delayed(_ context.Context) ([]*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Job, 0, len(m.jobs))
	for _, entry := range m.jobs {
		snap := entry.job
		out = append(out, &snap)
	}
	return out, nil
}

// ChangeDelay moves a pending job's fire time to EnqueuedAt+delay. A fire
// time already in the past executes immediately.
func (m *Memory) ChangeDelay(_ context.Context, jobID string, delay time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.jobs[jobID]
	if !ok {
		return ErrJobNotFound
	}

	entry.timer.Stop()
	entry.job.Delay = delay

	remaining := time.Until(entry.job.EnqueuedAt.Add(delay))
	if remaining < 0 {
		remaining = 0
	}
	entry.timer = time.AfterFunc(remaining, func() { m.fire(jobID) })
	return nil
}

// Promote executes a pending job now.
func (m *Memory) Promote(_ context.Context, jobID string) error {
	m.mu.Lock()
	entry, ok := m.jobs[jobID]
	if !ok {
		m.mu.Unlock()
		return ErrJobNotFound
	}
	entry.timer.Stop()
	delete(m.jobs, jobID)
	m.wg.Add(1)
	job := entry.job
	m.mu.Unlock()

	go m.run(job)
	return nil
}

// UpdateData replaces a pending job's payload.
func (m *Memory) UpdateData(_ context.Context, jobID string, data Data) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.jobs[jobID]
	if !ok {
		return ErrJobNotFound
	}
	entry.job.Data = data
	return nil
}

// Close stops all timers and waits for in-flight executions. Pending delayed
// jobs are dropped, mirroring a broker shutdown where undelivered delayed
// work stays on the broker, not in this process.
func (m *Memory) Close() {
	m.mu.Lock()
	m.closed = true
	for id, entry := range m.jobs {
		entry.timer.Stop()
		delete(m.jobs, id)
	}
	m.mu.Unlock()
	m.wg.Wait()
}

func (m *Memory) fire(jobID string) {
	m.mu.Lock()
	entry, ok := m.jobs[jobID]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.jobs, jobID)
	m.wg.Add(1)
	job := entry.job
	m.mu.Unlock()

	m.run(job)
}

func (m *Memory) run(job Job) {
	defer m.wg.Done()
	if m.process != nil {
		m.process(context.Background(), &job)
	}
}
