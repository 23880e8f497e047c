package services

import "sync"

// ContextListener tracks the host platform's current board and fans changes
// out to subscribers. Slow subscribers only ever see the latest board.
type ContextListener struct {
	mu      sync.Mutex
	boardID string
	subs    []chan string
}

func NewContextListener(initialBoardID string) *ContextListener {
	return &ContextListener{boardID: initialBoardID}
}

// Current returns the board the host platform last reported.
func (l *ContextListener) Current() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.boardID
}

// Set records a context change and notifies every subscriber.
func (l *ContextListener) Set(boardID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.boardID = boardID
	for _, ch := range l.subs {
		select {
		case <-ch:
		default:
		}
		ch <- boardID
	}
}

// Subscribe returns a channel that receives the board id on each change.
func (l *ContextListener) Subscribe() <-chan string {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan string, 1)
	l.subs = append(l.subs, ch)
	return ch
}
