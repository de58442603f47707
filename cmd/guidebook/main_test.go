package main

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/guidebook/model/types"
)

func TestExitCode(t *testing.T) {
	testCases := []struct {
		description string
		err         error
		expect      int
	}{
		{description: "success", expect: 0},
		{description: "canceled prompt", err: fmt.Errorf("failed to ask: %w", types.ErrCanceled), expect: 130},
		{description: "interrupted", err: types.EarlyExit(types.ExitInterrupted), expect: 130},
		{description: "nothing to do", err: types.EarlyExit(types.ExitOK), expect: 0},
		{description: "failure", err: errors.New("exit status 2"), expect: 1},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expect, exitCode(testCase.err), testCase.description)
	}
}

func TestRootCommand(t *testing.T) {
	var names []string
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Subset(t, names, []string{"guide", "run", "which", "select", "profile"})

	flag := guideCmd.Flags().Lookup("yes")
	assert.NotNil(t, flag)
	assert.Nil(t, runCmd.Flags().Lookup("yes"))
}

func TestGuideCommands(t *testing.T) {
	testCases := []struct {
		description string
		cmd         *cobra.Command
		args        []string
	}{
		{description: "guide", cmd: guideCmd, args: []string{"guide"}},
		{description: "run", cmd: runCmd, args: []string{"run"}},
		{description: "which", cmd: whichCmd, args: []string{"which", "a", "b"}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			require.NotNil(t, testCase.cmd.RunE)
			assert.NotNil(t, testCase.cmd.Flags().Lookup("assert"))
			out := &bytes.Buffer{}
			rootCmd.SetOut(out)
			rootCmd.SetErr(out)
			rootCmd.SetArgs(testCase.args)
			defer rootCmd.SetArgs(nil)
			err := rootCmd.Execute()
			assert.ErrorContains(t, err, "accepts 1 arg(s)")
		})
	}
}

func TestPrintEnv(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, printEnv(out, map[string]string{"REGION": "us-east1", "TARGET": "cloud"}))
	assert.Equal(t, "REGION=us-east1\nTARGET=cloud\n", out.String())

	out.Reset()
	require.NoError(t, printEnv(out, nil))
	assert.Empty(t, out.String())
}
