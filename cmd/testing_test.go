package cmd_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/coreapi/codecamp/cmd"
)

var errCmdFailed = errors.New("cmd failed")

func printTo(stderr bool) *cobra.Command {
	return &cobra.Command{Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		if stderr {
			w = cmd.ErrOrStderr()
		}

		fmt.Fprintln(w, "camp", len(args))
	}}
}

func TestTestExecute(t *testing.T) {
	t.Parallel()

	t.Run("captures output", func(t *testing.T) {
		t.Parallel()

		tests := map[string]struct {
			cmd  *cobra.Command
			args []string
			want string
		}{
			"stdout":         {printTo(false), nil, "camp 0"},
			"stderr":         {printTo(true), nil, "camp 0"},
			"args are given": {printTo(false), []string{"GO25", "GO26"}, "camp 2"},
		}

		for name, tt := range tests {
			t.Run(name, func(t *testing.T) {
				t.Parallel()

				output, err := cmd.TestExecute(t, tt.cmd, tt.args...)
				assert.NoError(t, err)
				assert.Contains(t, output, tt.want)
			})
		}
	})

	t.Run("returns error of command", func(t *testing.T) {
		t.Parallel()

		failing := &cobra.Command{RunE: func(*cobra.Command, []string) error {
			return fmt.Errorf("could not create camp: %w", errCmdFailed)
		}}

		output, err := cmd.TestExecute(t, failing)
		assert.ErrorIs(t, err, errCmdFailed)
		assert.Contains(t, output, errCmdFailed.Error())
	})

	t.Run("concurrent use", func(t *testing.T) {
		t.Parallel()

		var wg sync.WaitGroup

		for range 8 {
			wg.Add(1)

			go func() {
				defer wg.Done()

				output, err := cmd.TestExecute(t, printTo(false))
				assert.NoError(t, err)
				assert.Contains(t, output, "camp 0")
			}()
		}

		wg.Wait()
	})
}
