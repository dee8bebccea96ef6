package cmd_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreapi/codecamp/cmd"
)

const invalidConfig = "../testdata/config/invalid-config.yaml"

func TestRootCmd(t *testing.T) {
	t.Parallel()

	t.Run("no command: show help & list of commands", func(t *testing.T) {
		t.Parallel()

		output, err := cmd.TestExecute(t, cmd.NewCodecampCLI(make(chan os.Signal)), []string{}...)
		assert.NoError(t, err)
		assert.Contains(t, output, "Available Commands:")
		assert.Contains(t, output, "serve")
		assert.Contains(t, output, "migrate")
		assert.Contains(t, output, "version")
	})

	t.Run("unknown command", func(t *testing.T) {
		t.Parallel()

		output, err := cmd.TestExecute(t, cmd.NewCodecampCLI(make(chan os.Signal)), "non-ex-command")
		assert.Error(t, err)
		assert.Contains(t, output, "unknown command")
	})
}

func TestServeCmd(t *testing.T) {
	t.Parallel()

	t.Run("invalid config", func(t *testing.T) {
		t.Parallel()

		output, err := cmd.TestExecute(t, cmd.NewCodecampCLI(make(chan os.Signal)), "serve", "--config", invalidConfig)
		assert.Error(t, err)
		assert.Contains(t, output, "use one of")
	})

	t.Run("help", func(t *testing.T) {
		t.Parallel()

		output, err := cmd.TestExecute(t, cmd.NewCodecampCLI(make(chan os.Signal)), "serve", "-h")
		assert.NoError(t, err)
		assert.Contains(t, output, "serve")
		assert.Contains(t, output, "--config")
	})

	t.Run("missing config file", func(t *testing.T) {
		t.Parallel()

		_, err := cmd.TestExecute(t, cmd.NewCodecampCLI(make(chan os.Signal)), "serve", "-c", "does-not-exist.yaml")
		assert.Error(t, err)
	})
}

func TestMigrateCmd(t *testing.T) {
	t.Parallel()

	output, err := cmd.TestExecute(t, cmd.NewCodecampCLI(make(chan os.Signal)), "migrate", "--config", invalidConfig)
	assert.Error(t, err)
	assert.Contains(t, output, "use one of")
}
