package agent

import (
	"fmt"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
	"github.com/stretchr/testify/assert"
)

func fixedLog(capacity int) *DebugLog {
	l := NewDebugLog(capacity)
	l.now = func() time.Time { return time.Date(2026, 1, 2, 13, 4, 5, 0, time.UTC) }
	return l
}

func TestDebugLog_Format(t *testing.T) {
	l := fixedLog(10)
	l.Add("Game initialized.")
	assert.Equal(t, []string{"[13:04:05] Game initialized."}, l.Lines())
}

func TestDebugLog_Truncation(t *testing.T) {
	l := fixedLog(DefaultLogCapacity)
	for i := 0; i < 105; i++ {
		l.Addf("Message %d", i)
	}

	lines := l.Lines()
	testutil.AssertEqual(t, "len", len(lines), 100)
	testutil.AssertEqual(t, "oldest", lines[0], "[13:04:05] Message 5")
	testutil.AssertEqual(t, "newest", lines[99], "[13:04:05] Message 104")
}

func TestDebugLog_Tail(t *testing.T) {
	l := fixedLog(3)
	for i := 0; i < 4; i++ {
		l.Add(fmt.Sprint(i))
	}

	tests := map[string]struct {
		n   int
		exp []string
	}{
		"last two": {n: 2, exp: []string{"[13:04:05] 2", "[13:04:05] 3"}},
		"more":     {n: 9, exp: []string{"[13:04:05] 1", "[13:04:05] 2", "[13:04:05] 3"}},
		"zero":     {n: 0, exp: []string{}},
		"all":      {n: -1, exp: []string{"[13:04:05] 1", "[13:04:05] 2", "[13:04:05] 3"}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.exp, l.Tail(tt.n))
		})
	}
}
