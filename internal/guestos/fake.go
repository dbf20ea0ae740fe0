package guestos

import (
	"context"
	"strings"
	"sync"
)

// FakeCall records one command run through a FakeRunner.
type FakeCall struct {
	Command string
	Stdin   []byte
}

type fakeResponse struct {
	match string
	fn    func(stdin []byte) (string, error)
}

// FakeRunner is a scripted Runner for tests. Responses are matched by
// substring; the most recently registered match wins. Unmatched commands
// succeed with empty output.
type FakeRunner struct {
	mu        sync.Mutex
	calls     []FakeCall
	responses []fakeResponse
}

var _ Runner = (*FakeRunner)(nil)

// NewFakeRunner creates a FakeRunner without responses.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{}
}

// On registers a fixed response for commands containing match.
func (f *FakeRunner) On(match, output string, err error) *FakeRunner {
	return f.OnFunc(match, func([]byte) (string, error) { return output, err })
}

// OnFunc registers a dynamic response for commands containing match.
func (f *FakeRunner) OnFunc(match string, fn func(stdin []byte) (string, error)) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, fakeResponse{match: match, fn: fn})
	return f
}

// Run implements Runner.
func (f *FakeRunner) Run(_ context.Context, command string, stdin []byte) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, FakeCall{Command: command, Stdin: append([]byte(nil), stdin...)})
	var fn func([]byte) (string, error)
	for i := len(f.responses) - 1; i >= 0; i-- {
		if strings.Contains(command, f.responses[i].match) {
			fn = f.responses[i].fn
			break
		}
	}
	f.mu.Unlock()

	if fn == nil {
		return "", nil
	}
	return fn(stdin)
}

// Calls returns all recorded calls.
func (f *FakeRunner) Calls() []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FakeCall(nil), f.calls...)
}

// Ran reports whether a command containing match was run.
func (f *FakeRunner) Ran(match string) bool {
	return f.Call(match) != nil
}

// Call returns the last call whose command contains match.
func (f *FakeRunner) Call(match string) *FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if strings.Contains(f.calls[i].Command, match) {
			c := f.calls[i]
			return &c
		}
	}
	return nil
}
