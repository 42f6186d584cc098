package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
)

// stopTimeout bounds how long Stop waits for the program to exit.
const stopTimeout = 500 * time.Millisecond

// screen runs one bubbletea program on out. The zero value is idle.
type screen struct {
	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

func (s *screen) start(out io.Writer, m tea.Model) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.program != nil {
		return
	}

	p := tea.NewProgram(m, tea.WithoutSignalHandler(), tea.WithOutput(out), tea.WithInput(nil))
	done := make(chan struct{})
	s.program, s.done = p, done
	go func() {
		_, _ = p.Run()
		close(done)
	}()
}

// send delivers msg to the running program. It reports false when nothing
// is running.
func (s *screen) send(msg tea.Msg) bool {
	s.mu.Lock()
	p := s.program
	s.mu.Unlock()
	if p == nil {
		return false
	}
	p.Send(msg)
	return true
}

// stop quits the program and clears its line.
func (s *screen) stop(out io.Writer) {
	s.mu.Lock()
	p, done := s.program, s.done
	s.program, s.done = nil, nil
	s.mu.Unlock()
	if p == nil {
		return
	}

	p.Quit()
	select {
	case <-done:
	case <-time.After(stopTimeout):
	}
	fmt.Fprint(out, "\r"+ansi.EraseEntireLine)
}
