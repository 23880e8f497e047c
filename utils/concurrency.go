package utils

import (
	"sync"
	"time"
)

// WorkerPool manages a pool of goroutines with rate limiting.
type WorkerPool struct {
	maxWorkers int
	semaphore  chan struct{}
	wg         sync.WaitGroup
	throttle   *Throttle
}

// NewWorkerPool creates a WorkerPool with the given concurrency and rate limit.
func NewWorkerPool(maxWorkers, rateLimitMs int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		maxWorkers: maxWorkers,
		semaphore:  make(chan struct{}, maxWorkers),
		throttle:   NewThrottle(rateLimitMs),
	}
}

// Submit enqueues a job for execution in the pool.
func (wp *WorkerPool) Submit(job func()) {
	wp.wg.Add(1)
	wp.semaphore <- struct{}{}

	go func() {
		defer wp.wg.Done()
		defer func() { <-wp.semaphore }()

		wp.throttle.Wait()
		job()
	}()
}

// Wait blocks until all submitted jobs have completed.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// Throttle spaces calls at least rateLimitMs apart across goroutines.
// A non-positive rate disables it.
type Throttle struct {
	interval    time.Duration
	mu          sync.Mutex
	lastRequest time.Time
}

// NewThrottle creates a Throttle with the given minimum interval in milliseconds.
func NewThrottle(rateLimitMs int) *Throttle {
	return &Throttle{interval: time.Duration(rateLimitMs) * time.Millisecond}
}

// Wait blocks until the interval since the previous call has passed.
func (t *Throttle) Wait() {
	if t.interval <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := time.Since(t.lastRequest)
	if elapsed < t.interval {
		time.Sleep(t.interval - elapsed)
	}
	t.lastRequest = time.Now()
}

// OrderedSet is a thread-safe set of strings that remembers insertion order.
type OrderedSet struct {
	mu    sync.RWMutex
	index map[string]int
	order []string
}

// NewOrderedSet creates an OrderedSet holding the given values.
func NewOrderedSet(values ...string) *OrderedSet {
	s := &OrderedSet{index: make(map[string]int)}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add returns true if the value was newly added, false if already present.
func (s *OrderedSet) Add(v string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[v]; exists {
		return false
	}
	s.index[v] = len(s.order)
	s.order = append(s.order, v)
	return true
}

// Remove deletes v and reports whether it was present.
func (s *OrderedSet) Remove(v string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, exists := s.index[v]
	if !exists {
		return false
	}
	s.order = append(s.order[:i], s.order[i+1:]...)
	delete(s.index, v)
	for j := i; j < len(s.order); j++ {
		s.index[s.order[j]] = j
	}
	return true
}

// Contains returns true if v is in the set.
func (s *OrderedSet) Contains(v string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.index[v]
	return exists
}

// Clear empties the set.
func (s *OrderedSet) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = make(map[string]int)
	s.order = nil
}

// Values returns a copy of the members in insertion order.
func (s *OrderedSet) Values() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Size returns the number of members.
func (s *OrderedSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
