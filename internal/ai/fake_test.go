package ai

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// scriptedLLM replays canned responses in order and records every prompt.
type scriptedLLM struct {
	mu        sync.Mutex
	responses []string
	errAt     int // 1-based call index that fails; 0 disables
	calls     []Completion
}

func (s *scriptedLLM) Model() string { return "fake-model" }

func (s *scriptedLLM) Complete(_ context.Context, c Completion) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
	n := len(s.calls)
	if s.errAt == n {
		return "", errors.Join(ErrUpstream, errors.New("boom"))
	}
	if n > len(s.responses) {
		return "", errors.Join(ErrUpstream, errors.New("unexpected call"))
	}
	return s.responses[n-1], nil
}

func (s *scriptedLLM) prompts() []string {
	out := make([]string, len(s.calls))
	for i, c := range s.calls {
		out[i] = c.Prompt
	}
	return out
}

func newTestGenerator(llm Completer) *Generator {
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return NewGenerator(llm, logrus.NewEntry(logger))
}
