package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/doeshing/gpa/internal/domain"
	"github.com/doeshing/gpa/internal/ports"
)

// Spinner renders per-document progress as an animated status line.
type Spinner struct {
	frames   []string
	interval time.Duration
	writer   io.Writer
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex

	total int
	done  int
	label string
}

// NewSpinner creates a new spinner
func NewSpinner(w io.Writer) *Spinner {
	return &Spinner{
		frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		interval: 80 * time.Millisecond,
		writer:   w,
	}
}

// Start begins the animation for a run of total documents.
func (s *Spinner) Start(total int) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.total = total
	s.done = 0
	s.label = "starting"
	s.stopChan = make(chan struct{})
	stop := s.stopChan
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		idx := 0
		for {
			select {
			case <-stop:
				fmt.Fprintf(s.writer, "\r\033[K")
				return
			default:
				fmt.Fprintf(s.writer, "\r\033[K%s %s", s.frames[idx%len(s.frames)], s.status())
				idx++
				time.Sleep(s.interval)
			}
		}
	}()
}

// Advance records a finished document.
func (s *Spinner) Advance(doc domain.Document, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done++
	s.label = fmt.Sprintf("%s (%s)", doc.Filename, status)
}

// Finish stops the animation and clears the line.
func (s *Spinner) Finish() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Spinner) status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("[%d/%d] %s", s.done, s.total, s.label)
}

var _ ports.ProgressReporter = (*Spinner)(nil)
