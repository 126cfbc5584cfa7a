// Package spinner renders a terminal progress spinner for long running
// steps of the CLI (validation, model fetches, pod deploys).
package spinner

import (
	"context"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type Spinner struct {
	prog *tea.Program
	done atomic.Bool
}

func New(msg string) *Spinner {
	m := newModel(msg)

	p := tea.NewProgram(
		m,
		tea.WithoutSignals(),
	)

	return &Spinner{prog: p}
}

func (s *Spinner) Start(ctx context.Context) {
	s.done.Store(false)

	go func() {
		_, _ = s.prog.Run()
	}()

	go func() {
		<-ctx.Done()
		if !s.done.Load() {
			s.prog.Send(stopMsg("cancelled"))
			s.done.Store(true)
		}
	}()
}

// Stop finishes the spinner with a success mark and msg.
func (s *Spinner) Stop(msg string) {
	if s.done.Swap(true) {
		return
	}
	s.prog.Send(stopMsg(msg))
	time.Sleep(50 * time.Millisecond)
}

// Fail finishes the spinner with a failure mark and msg.
func (s *Spinner) Fail(msg string) {
	if s.done.Swap(true) {
		return
	}
	s.prog.Send(failMsg(msg))
	time.Sleep(50 * time.Millisecond)
}

// StopWithHint finishes the spinner with a failure mark, msg and a hint
// line suggesting how to resolve it.
func (s *Spinner) StopWithHint(msg, hint string) {
	if s.done.Swap(true) {
		return
	}
	s.prog.Send(failHintMsg{message: msg, hint: hint})
	time.Sleep(50 * time.Millisecond)
}

// UpdateMessage replaces the in-progress message while spinning.
func (s *Spinner) UpdateMessage(msg string) {
	if !s.done.Load() {
		s.prog.Send(updateMsg(msg))
	}
}

func (s *Spinner) IsRunning() bool {
	return !s.done.Load()
}
