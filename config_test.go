package guidebook

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/guidebook/policy"
	"github.com/viant/guidebook/service/optimizer"
)

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		description string
		mutate      func(c *Config)
		expectErr   string
	}{
		{description: "defaults", mutate: func(c *Config) {}},
		{description: "disabled profile without url", mutate: func(c *Config) { c.Profile.Disabled, c.Profile.URL = true, "" }},
		{description: "empty profile name", mutate: func(c *Config) { c.Profile.Name = "" }, expectErr: "profile.name"},
		{description: "negative debounce", mutate: func(c *Config) { c.Profile.Debounce = -time.Second }, expectErr: "profile.debounce"},
		{description: "zero timeout", mutate: func(c *Config) { c.Shell.TimeoutMs = 0 }, expectErr: "shell.timeoutMs"},
		{description: "bad policy", mutate: func(c *Config) { c.Policy = &policy.Config{Mode: "maybe"} }, expectErr: "policy.mode"},
	}
	for _, testCase := range testCases {
		config := DefaultConfig()
		testCase.mutate(config)
		err := config.Validate()
		if testCase.expectErr == "" {
			assert.NoError(t, err, testCase.description)
			continue
		}
		require.Error(t, err, testCase.description)
		assert.Contains(t, err.Error(), testCase.expectErr, testCase.description)
	}
}

func TestLoadConfig(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	URL := "mem://localhost/config/guidebook.yaml"
	content := `profile:
  name: work
  debounce: 200ms
optimize:
  disabled:
    validate: true
policy:
  mode: ask
log:
  verbose: true
`
	require.NoError(t, fs.Upload(ctx, URL, file.DefaultFileOsMode, strings.NewReader(content)))

	config, err := LoadConfig(ctx, URL)
	require.NoError(t, err)
	assert.Equal(t, "work", config.Profile.Name)
	assert.Equal(t, 200*time.Millisecond, config.Profile.Debounce)
	assert.True(t, config.Profile.Bump)
	assert.NotEmpty(t, config.Profile.URL)
	assert.False(t, config.Optimize.Enabled(optimizer.PassValidate))
	assert.True(t, config.Optimize.Enabled(optimizer.PassChoices))
	assert.Equal(t, policy.ModeAsk, config.Policy.Mode)
	assert.True(t, config.Log.Verbose)

	_, err = LoadConfig(ctx, "mem://localhost/config/missing.yaml")
	assert.Error(t, err)
}
