package cmd

import (
	"bytes"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// mu serialises TestExecute:
// the command is passed as a pointer and os.Stdout & os.Stderr are process wide.
var mu sync.Mutex

// TestExecute executes a cobra command and returns everything it wrote, together with its error.
// Output written to os.Stdout and os.Stderr directly, e.g. by a logger, is captured as well.
func TestExecute(t *testing.T, command *cobra.Command, args ...string) (string, error) {
	t.Helper()

	mu.Lock()
	defer mu.Unlock()

	buf := new(syncBuffer)
	command.SetOut(buf)
	command.SetErr(buf)

	rOut, wOut, err := os.Pipe()
	require.NoError(t, err)
	rErr, wErr, err := os.Pipe()
	require.NoError(t, err)

	storeStdout, storeStderr := os.Stdout, os.Stderr
	os.Stdout, os.Stderr = wOut, wErr

	// drain the pipes while the command runs, so a chatty command can not block on a full pipe.
	drained := sync.WaitGroup{}
	drain := func(r *os.File) {
		defer drained.Done()

		_, _ = io.Copy(buf, r)
	}

	drained.Add(2) //nolint:mnd
	go drain(rOut)
	go drain(rErr)

	func() {
		defer func() {
			os.Stdout, os.Stderr = storeStdout, storeStderr
		}()

		// nil args make cobra fall back to os.Args, which carry the flags of the test binary
		if args == nil {
			args = []string{}
		}

		command.SetArgs(args)
		_, err = command.ExecuteC()
	}()

	require.NoError(t, wOut.Close())
	require.NoError(t, wErr.Close())
	drained.Wait()

	return buf.String(), err
}

// syncBuffer is a helper implementing io.Writer, used for concurrency safe testing.
type syncBuffer struct {
	b bytes.Buffer
	m sync.Mutex
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.m.Lock()
	defer b.m.Unlock()

	return b.b.Write(p) //nolint:wrapcheck
}

func (b *syncBuffer) String() string {
	b.m.Lock()
	defer b.m.Unlock()

	return b.b.String()
}
