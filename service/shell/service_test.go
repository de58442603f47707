package shell

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/gosh/runner"
	"github.com/viant/guidebook/model/graph"
	"github.com/viant/guidebook/service/memo"
)

// fakeSession answers commands from a table; unknown commands echo back.
type fakeSession struct {
	env      map[string]string
	status   map[string]int
	mux      sync.Mutex
	commands []string
	closed   int
}

func (f *fakeSession) Run(ctx context.Context, command string, options ...runner.Option) (string, int, error) {
	f.mux.Lock()
	defer f.mux.Unlock()
	f.commands = append(f.commands, command)
	if status := f.status[command]; status != 0 {
		return "failed: " + command, status, nil
	}
	if strings.HasPrefix(command, "echo $") {
		return f.env[strings.TrimPrefix(command, "echo $")], 0, nil
	}
	return "ran " + command, 0, nil
}

func (f *fakeSession) Close() error {
	f.mux.Lock()
	defer f.mux.Unlock()
	f.closed++
	return nil
}

type fakeFactory struct {
	status   map[string]int
	mux      sync.Mutex
	sessions []*fakeSession
	err      error
}

func (f *fakeFactory) open(ctx context.Context, env map[string]string) (Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mux.Lock()
	defer f.mux.Unlock()
	session := &fakeSession{env: env, status: f.status}
	f.sessions = append(f.sessions, session)
	return session, nil
}

func TestService_Execute(t *testing.T) {
	abort := false
	testCases := []struct {
		description  string
		input        *Input
		status       map[string]int
		expectStatus int
		expectRun    []string
		expectExport map[string]string
	}{
		{
			description: "all commands succeed",
			input:       &Input{Commands: []string{"ls", "export A=1", `export B="two words"`}},
			expectRun:   []string{"ls", "export A=1", `export B="two words"`},
			expectExport: map[string]string{
				"A": "1",
				"B": "two words",
			},
		},
		{
			description:  "abort on first failure",
			input:        &Input{Commands: []string{"false", "export A=1"}},
			status:       map[string]int{"false": 1},
			expectStatus: 1,
			expectRun:    []string{"false"},
		},
		{
			description:  "continue after failure",
			input:        &Input{Commands: []string{"false", "export A=1"}, AbortOnError: &abort},
			status:       map[string]int{"false": 1},
			expectRun:    []string{"false", "export A=1"},
			expectExport: map[string]string{"A": "1"},
		},
		{
			description: "workdir",
			input:       &Input{Workdir: "/tmp", Commands: []string{"ls"}},
			expectRun:   []string{"cd /tmp", "ls"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			factory := &fakeFactory{status: tc.status}
			memoizer := memo.New()
			srv := New(memoizer, WithFactory(factory.open))
			output := &Output{}
			require.NoError(t, srv.Execute(context.Background(), tc.input, output))
			assert.Equal(t, tc.expectStatus, output.Status)
			require.Len(t, factory.sessions, 1)
			assert.Equal(t, tc.expectRun, factory.sessions[0].commands)
			assert.Equal(t, 1, factory.sessions[0].closed)
			assert.Equal(t, tc.expectExport, output.Exports)
			assert.False(t, memoizer.CurrentlyNeedsCleanup())
			if tc.expectExport != nil {
				assert.Equal(t, tc.expectExport, memoizer.Env())
			}
		})
	}
}

func TestService_EnvPropagation(t *testing.T) {
	factory := &fakeFactory{}
	memoizer := memo.New()
	srv := New(memoizer, WithFactory(factory.open), WithQuiet(true))
	require.NoError(t, srv.Exec(context.Background(), &graph.Leaf{Body: "export TOKEN=abc"}))
	output := &Output{}
	require.NoError(t, srv.Execute(context.Background(), &Input{Commands: []string{"echo $TOKEN"}}, output))
	assert.Equal(t, "abc", output.Stdout)
}

func TestService_Validate(t *testing.T) {
	factory := &fakeFactory{status: map[string]int{"which missing": 1}}
	srv := New(memo.New(), WithFactory(factory.open))

	status, err := srv.Validate(context.Background(), "which docker")
	require.NoError(t, err)
	assert.Equal(t, graph.StatusSuccess, status)

	status, err = srv.Validate(context.Background(), "which missing")
	require.NoError(t, err)
	assert.Equal(t, graph.StatusFailure, status)

	failing := New(memo.New(), WithFactory((&fakeFactory{err: errors.New("no shell")}).open))
	status, err = failing.Validate(context.Background(), "which docker")
	assert.Error(t, err)
	assert.Equal(t, graph.StatusFailure, status)
}

func TestService_Exec(t *testing.T) {
	factory := &fakeFactory{status: map[string]int{"make\nmake install": 2}}
	buf := &bytes.Buffer{}
	srv := New(memo.New(), WithFactory(factory.open), WithWriter(buf))

	require.NoError(t, srv.Exec(context.Background(), &graph.Leaf{Language: "bash", Body: "brew install \\\n  node\n"}))
	assert.Equal(t, "ran brew install \\\n  node\n", buf.String())

	err := srv.Exec(context.Background(), &graph.Leaf{Body: "make\nmake install\n"})
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Status)
	assert.Equal(t, "make\nmake install", exitErr.Command)

	err = srv.Exec(context.Background(), &graph.Leaf{Language: "python", Body: "print(1)"})
	assert.Error(t, err)

	memoized := &graph.Leaf{Body: "uname", Memoize: true}
	require.NoError(t, srv.Exec(context.Background(), memoized))
	require.NoError(t, srv.Exec(context.Background(), memoized))
	count := 0
	for _, session := range factory.sessions {
		for _, cmd := range session.commands {
			if cmd == "uname" {
				count++
			}
		}
	}
	assert.Equal(t, 1, count)
}

func TestService_Exec_Script(t *testing.T) {
	testCases := []struct {
		description  string
		body         string
		expectRun    []string
		expectExport map[string]string
	}{
		{
			description: "if block",
			body:        "if true; then\n  echo inside\nfi\n",
			expectRun:   []string{"if true; then\n  echo inside\nfi"},
		},
		{
			description: "for loop with export",
			body:        "for i in 1 2; do\n  echo $i\ndone\nexport LAST=2",
			expectRun:   []string{"for i in 1 2; do\n  echo $i\ndone\nexport LAST=2"},
			expectExport: map[string]string{
				"LAST": "2",
			},
		},
		{
			description: "export inside block",
			body:        "if true; then\n  export MODE=\"fast\"\nfi",
			expectRun:   []string{"if true; then\n  export MODE=\"fast\"\nfi"},
			expectExport: map[string]string{
				"MODE": "fast",
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			factory := &fakeFactory{}
			memoizer := memo.New()
			srv := New(memoizer, WithFactory(factory.open), WithQuiet(true))
			require.NoError(t, srv.Exec(context.Background(), &graph.Leaf{Language: "bash", Body: tc.body}))
			require.Len(t, factory.sessions, 1)
			assert.Equal(t, tc.expectRun, factory.sessions[0].commands)
			env := memoizer.Env()
			for k, v := range tc.expectExport {
				assert.Equal(t, v, env[k])
			}
		})
	}
}

func TestService_Validate_Script(t *testing.T) {
	factory := &fakeFactory{}
	srv := New(memo.New(), WithFactory(factory.open))
	status, err := srv.Validate(context.Background(), "test -d build &&\n  test -f build/app\n")
	require.NoError(t, err)
	assert.Equal(t, graph.StatusSuccess, status)
	require.Len(t, factory.sessions, 1)
	assert.Equal(t, []string{"test -d build &&\n  test -f build/app"}, factory.sessions[0].commands)
}

func TestScript(t *testing.T) {
	assert.Nil(t, Script(" \n\t"))
	assert.Equal(t, []string{"a\nb"}, Script("\na\nb\n"))
}

func TestLines(t *testing.T) {
	testCases := []struct {
		body   string
		expect []string
	}{
		{body: "", expect: nil},
		{body: "a\n\n  b  \n# comment\n", expect: []string{"a", "b"}},
		{body: "a \\\n b\nc", expect: []string{"a  b", "c"}},
		{body: "dangling \\", expect: []string{"dangling"}},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expect, Lines(tc.body), tc.body)
	}
}
