package agent

import (
	"fmt"
	"sync"
	"time"
)

// DefaultLogCapacity is the number of lines a front end can scroll back.
const DefaultLogCapacity = 100

// DebugLog is a fixed-size ring of timestamped lines shown by front ends.
// Once full, each new line evicts the oldest.
type DebugLog struct {
	mu    sync.Mutex
	buf   []string
	start int
	n     int
	now   func() time.Time
}

func NewDebugLog(capacity int) *DebugLog {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &DebugLog{
		buf: make([]string, capacity),
		now: time.Now,
	}
}

// Add appends "[HH:MM:SS] msg".
func (l *DebugLog) Add(msg string) {
	line := fmt.Sprintf("[%s] %s", l.now().Format(time.TimeOnly), msg)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.n < len(l.buf) {
		l.buf[(l.start+l.n)%len(l.buf)] = line
		l.n++
		return
	}
	l.buf[l.start] = line
	l.start = (l.start + 1) % len(l.buf)
}

func (l *DebugLog) Addf(format string, args ...any) {
	l.Add(fmt.Sprintf(format, args...))
}

// Lines returns every retained line, oldest first.
func (l *DebugLog) Lines() []string {
	return l.Tail(-1)
}

// Tail returns the newest n lines, oldest first. n < 0 returns all.
func (l *DebugLog) Tail(n int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n < 0 || n > l.n {
		n = l.n
	}
	out := make([]string, 0, n)
	for i := l.n - n; i < l.n; i++ {
		out = append(out, l.buf[(l.start+i)%len(l.buf)])
	}
	return out
}

func (l *DebugLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.n
}
