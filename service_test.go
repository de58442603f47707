package guidebook_test

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "github.com/viant/afs/embed"
	"github.com/viant/gosh/runner"
	"github.com/viant/guidebook"
	"github.com/viant/guidebook/model"
	"github.com/viant/guidebook/model/graph"
	"github.com/viant/guidebook/model/types"
	"github.com/viant/guidebook/service/dao/profile/memory"
	"github.com/viant/guidebook/service/guide"
	"github.com/viant/guidebook/service/prompt"
	"github.com/viant/guidebook/service/shell"
)

//go:embed testdata/*
var embedFS embed.FS

// fakeShell records commands; "serve" commands block until the session is
// closed.
type fakeShell struct {
	mux      sync.Mutex
	commands []string
	statuses map[string]int
	open     int
}

type fakeSession struct {
	shell  *fakeShell
	once   sync.Once
	closed chan struct{}
}

func (f *fakeShell) factory(ctx context.Context, env map[string]string) (shell.Session, error) {
	return &fakeSession{shell: f, closed: make(chan struct{})}, nil
}

func (f *fakeShell) executed() []string {
	f.mux.Lock()
	defer f.mux.Unlock()
	return append([]string(nil), f.commands...)
}

func (f *fakeShell) serving() int {
	f.mux.Lock()
	defer f.mux.Unlock()
	return f.open
}

func (s *fakeSession) Run(ctx context.Context, command string, options ...runner.Option) (string, int, error) {
	s.shell.mux.Lock()
	s.shell.commands = append(s.shell.commands, command)
	status := s.shell.statuses[command]
	serving := strings.HasPrefix(command, "serve")
	if serving {
		s.shell.open++
	}
	s.shell.mux.Unlock()
	if serving {
		<-s.closed
		return "", -1, errors.New("session closed")
	}
	return "", status, nil
}

func (s *fakeSession) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

type fakePrompter struct {
	answers     map[string]string
	asked       []string
	suggestions map[string][]string
}

func (p *fakePrompter) record(question *prompt.Question) {
	p.asked = append(p.asked, question.Title)
	if p.suggestions == nil {
		p.suggestions = map[string][]string{}
	}
	p.suggestions[question.Title] = question.Suggestions
}

func (p *fakePrompter) Select(ctx context.Context, question *prompt.Question) (string, error) {
	p.record(question)
	if answer, ok := p.answers[question.Title]; ok {
		return answer, nil
	}
	return "", types.ErrCanceled
}

func (p *fakePrompter) MultiSelect(ctx context.Context, question *prompt.Question) ([]string, error) {
	p.record(question)
	if answer, ok := p.answers[question.Title]; ok {
		return strings.Split(answer, ","), nil
	}
	return nil, types.ErrCanceled
}

func (p *fakePrompter) Form(ctx context.Context, title string, fields []*graph.Field, prior map[string]string) (map[string]string, error) {
	return nil, types.ErrCanceled
}

func (p *fakePrompter) Confirm(ctx context.Context, message string) (bool, error) {
	return true, nil
}

func newService(t *testing.T, profiles *memory.Service, sh *fakeShell, prompter *fakePrompter, out *bytes.Buffer, options ...guidebook.Option) *guidebook.Service {
	config := guidebook.DefaultConfig()
	config.Profile.Debounce = time.Millisecond
	options = append([]guidebook.Option{
		guidebook.WithConfig(config),
		guidebook.WithMetaFsOptions(&embedFS),
		guidebook.WithMetaBaseURL("embed:///testdata"),
		guidebook.WithProfileDAO(profiles),
		guidebook.WithShellFactory(sh.factory),
		guidebook.WithPrompter(prompter),
		guidebook.WithWriter(out),
	}, options...)
	srv, err := guidebook.New(context.Background(), options...)
	require.NoError(t, err)
	return srv
}

func TestService_Guide(t *testing.T) {
	t.Setenv("DEPLOY_REGION", "us-east1")
	ctx := context.Background()
	profiles := memory.New()
	sh := &fakeShell{}
	prompter := &fakePrompter{answers: map[string]string{"Target": "cloud"}}
	srv := newService(t, profiles, sh, prompter, &bytes.Buffer{})

	result, err := srv.Guide(ctx, "deploy", guide.ModeGuide)
	require.NoError(t, err)
	assert.Equal(t, "Deploy", result.Title)
	assert.Equal(t, map[string]string{"TARGET": "cloud", "REGION": "us-east1"}, result.Env)
	assert.Equal(t, []string{"Target"}, prompter.asked)
	assert.Equal(t, []string{"test -f build/service", "export TARGET=cloud\nexport REGION=us-east1"}, sh.executed())

	saved, err := profiles.Load(ctx, guidebook.DefaultProfileName)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"target": "cloud"}, saved.Choices)
}

func TestService_Run(t *testing.T) {
	ctx := context.Background()
	testCases := []struct {
		description string
		profile     map[string]string
		assertions  map[string]string
		expectEnv   map[string]string
		expectErr   bool
	}{
		{
			description: "replays the profile",
			profile:     map[string]string{"target": "local"},
			expectEnv:   map[string]string{"TARGET": "local"},
		},
		{
			description: "assertion overrides the profile",
			profile:     map[string]string{"target": "cloud"},
			assertions:  map[string]string{"target": "local"},
			expectEnv:   map[string]string{"TARGET": "local"},
		},
		{
			description: "unanswered question",
			expectErr:   true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			profiles := memory.New()
			if testCase.profile != nil {
				profile := model.NewProfile(guidebook.DefaultProfileName, 1)
				profile.Choices = testCase.profile
				require.NoError(t, profiles.Save(ctx, profile))
			}
			sh := &fakeShell{statuses: map[string]int{"test -f build/service": 1}}
			prompter := &fakePrompter{}
			srv := newService(t, profiles, sh, prompter, &bytes.Buffer{}, guidebook.WithAssertions(testCase.assertions))

			result, err := srv.Guide(ctx, "deploy", guide.ModeRun)
			assert.Empty(t, prompter.asked)
			if testCase.expectErr {
				var unanswered *types.UnansweredError
				require.ErrorAs(t, err, &unanswered)
				assert.Equal(t, "target", unanswered.GroupContext)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.expectEnv, result.Env)
			assert.Contains(t, sh.executed(), "make build")
		})
	}
}

func TestService_Guide_Interrupt(t *testing.T) {
	ctx := context.Background()
	sh := &fakeShell{}
	out := &bytes.Buffer{}
	var cleanExit guidebook.CleanExit
	srv := newService(t, memory.New(), sh, &fakePrompter{}, out,
		guidebook.WithRunName("nightly"),
		guidebook.WithOnBeforeRun(func(fn guidebook.CleanExit) { cleanExit = fn }))

	done := make(chan error, 1)
	go func() {
		_, err := srv.Guide(ctx, "serve", guide.ModeRun)
		done <- err
	}()
	require.Eventually(t, func() bool { return sh.serving() == 2 }, time.Second, 5*time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, cleanExit(ctx, os.Interrupt))
		}()
	}
	wg.Wait()

	select {
	case err := <-done:
		code, ok := types.IsEarlyExit(err)
		require.True(t, ok, err)
		assert.Equal(t, types.ExitInterrupted, code)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop")
	}
	assert.Equal(t, 1, strings.Count(out.String(), "Exiting (nightly) now"))
	assert.NotContains(t, sh.executed(), "echo done")
}

func TestService_Select(t *testing.T) {
	ctx := context.Background()
	profiles := memory.New()
	prompter := &fakePrompter{answers: map[string]string{"editor": "vim", "tools": "git,make"}}
	srv := newService(t, profiles, &fakeShell{}, prompter, &bytes.Buffer{})

	selected, err := srv.Select(ctx, "editor", []string{"emacs", "vim"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"vim"}, selected)

	selected, err = srv.Select(ctx, "tools", []string{"git", "make", "docker"}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"git", "make"}, selected)

	saved, err := profiles.Load(ctx, guidebook.DefaultProfileName)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"editor": "vim", "tools": `["git","make"]`}, saved.Choices)

	_, err = srv.Select(ctx, "shell", []string{"bash"}, false)
	assert.ErrorIs(t, err, types.ErrCanceled)
}

func TestService_Select_StalePrior(t *testing.T) {
	ctx := context.Background()
	testCases := []struct {
		description string
		key         string
		prior       string
		items       []string
		multi       bool
		answer      string
		expect      []string
		expectSaved string
		expectHint  []string
	}{
		{
			description: "prior no longer offered",
			key:         "editor",
			prior:       "nano",
			items:       []string{"emacs", "vim"},
			answer:      "emacs",
			expect:      []string{"emacs"},
			expectSaved: "emacs",
		},
		{
			description: "prior still offered",
			key:         "editor",
			prior:       "vim",
			items:       []string{"emacs", "vim"},
			answer:      "vim",
			expect:      []string{"vim"},
			expectSaved: "vim",
			expectHint:  []string{"vim"},
		},
		{
			description: "partly stale list",
			key:         "tools",
			prior:       `["git","svn"]`,
			items:       []string{"git", "make"},
			multi:       true,
			answer:      "git,make",
			expect:      []string{"git", "make"},
			expectSaved: `["git","make"]`,
			expectHint:  []string{"git"},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			profiles := memory.New()
			profile := model.NewProfile(guidebook.DefaultProfileName, 1)
			profile.Choices = map[string]string{testCase.key: testCase.prior}
			require.NoError(t, profiles.Save(ctx, profile))
			prompter := &fakePrompter{answers: map[string]string{testCase.key: testCase.answer}}
			srv := newService(t, profiles, &fakeShell{}, prompter, &bytes.Buffer{})

			selected, err := srv.Select(ctx, testCase.key, testCase.items, testCase.multi)
			require.NoError(t, err)
			assert.Equal(t, testCase.expect, selected)
			assert.Equal(t, testCase.expectHint, prompter.suggestions[testCase.key])

			saved, err := profiles.Load(ctx, guidebook.DefaultProfileName)
			require.NoError(t, err)
			assert.Equal(t, testCase.expectSaved, saved.Choices[testCase.key])
		})
	}
}

func TestParseAssertions(t *testing.T) {
	assertions, err := guidebook.ParseAssertions([]string{"target=local", "region = eu"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"target": "local", "region": "eu"}, assertions)

	_, err = guidebook.ParseAssertions([]string{"target"})
	assert.Error(t, err)
}
