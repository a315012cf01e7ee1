// Package command runs the external collection and statistics tools.
package command

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"sort"
	"time"
)

const (
	// StatusTimedOut is reported when a command outlives its timeout.
	StatusTimedOut = 124
	// StatusNotFound is reported when the program cannot be located or executed.
	StatusNotFound = 127
	// StatusCanceled is reported when the caller's context is canceled.
	StatusCanceled = 130
)

// waitDelay bounds how long Run waits for inherited pipes to close after the
// process is killed, e.g. when a script's grandchild still holds stdout.
const waitDelay = 2 * time.Second

// Command is an argument vector plus its execution settings.
type Command struct {
	Args    []string
	Dir     string
	Env     map[string]string
	Timeout time.Duration
}

// Outcome holds the result of running a command.
type Outcome struct {
	Status   int
	Stdout   string
	Stderr   string
	Duration time.Duration
	TimedOut bool
}

// OK reports whether the command exited with status zero.
func (o Outcome) OK() bool { return o.Status == 0 }

// Run executes c and waits for it to finish.
// It never returns an error: the exit code is reported in Status, a
// program that cannot be started yields StatusNotFound with empty output,
// and an expired timeout yields StatusTimedOut.
func Run(ctx context.Context, c Command) Outcome {
	if len(c.Args) == 0 {
		return Outcome{Status: StatusNotFound}
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Args[0], c.Args[1:]...)
	cmd.Dir = c.Dir
	cmd.Env = buildEnv(c.Env)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	out := Outcome{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: duration,
	}
	if err == nil {
		return out
	}

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		out.Status = StatusTimedOut
		out.TimedOut = true
		return out
	case errors.Is(ctx.Err(), context.Canceled):
		out.Status = StatusCanceled
		return out
	}

	// The process ran. This covers both an *exec.ExitError and
	// exec.ErrWaitDelay, where a leftover child kept the output pipes open
	// after the process itself exited.
	if cmd.ProcessState != nil {
		out.Status = cmd.ProcessState.ExitCode()
		return out
	}

	// The process never started.
	return Outcome{Status: StatusNotFound, Duration: duration}
}

func buildEnv(extra map[string]string) []string {
	env := os.Environ()
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}
