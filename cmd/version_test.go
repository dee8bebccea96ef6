package cmd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreapi/codecamp/cmd"
)

func TestVersion(t *testing.T) {
	t.Parallel()

	// test binaries carry no vcs stamp, so the revision is always @latest here

	t.Run("show version", func(t *testing.T) {
		t.Parallel()

		output, err := cmd.TestExecute(t, cmd.Version("codecamp"), []string{}...)
		assert.NoError(t, err)
		assert.Contains(t, output, "codecamp version: ", "should start with program name and `version:`")
		assert.Contains(t, output, " from ", "should contain a date indicator")
		assert.Contains(t, output, "@latest")
	})

	t.Run("no program name", func(t *testing.T) {
		t.Parallel()

		t.Run("command output", func(t *testing.T) {
			t.Parallel()

			output, err := cmd.TestExecute(t, cmd.Version(""), []string{}...)
			assert.NoError(t, err)
			assert.Contains(t, output[:8], "version:", "should not start with leading space")
			assert.NotContains(t, output, "%!(EXTRA", "should not contain fmt placeholder count mismatch error")
		})

		t.Run("help output", func(t *testing.T) {
			t.Parallel()

			output, err := cmd.TestExecute(t, cmd.Version(""), "-h")
			assert.NoError(t, err)
			assert.NotContains(t, output, "Print  ", "should not leave a gap for the missing name")
		})
	})

	t.Run("don't allow sub commands", func(t *testing.T) {
		t.Parallel()

		output, err := cmd.TestExecute(t, cmd.Version(""), "sub-command")
		assert.Error(t, err)
		assert.Contains(t, output, "unknown command")
		assert.Contains(t, output, "Usage:")
	})

	t.Run("help message does not show use of flags", func(t *testing.T) {
		t.Parallel()

		output, err := cmd.TestExecute(t, cmd.Version(""), "version", "sub-command")
		assert.Error(t, err)
		assert.Contains(t, output, "unknown command")
		assert.NotContains(t, output, "[flags]")
	})
}
