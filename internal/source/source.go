// Package source spawns the external logic-analyzer process and streams
// its stdout one byte at a time, per spec.md §6. Grounded on the
// teacher's os/exec usage for child helper processes (src/xmit.go's
// script invocation, src/aprs_tt.go's exec.Command(cmd).Output()),
// generalized from a one-shot Output() call to a long-lived piped
// stdout reader since the logic analyzer runs indefinitely.
package source

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
)

// Source yields one raw sample byte at a time until the producer exits
// or the stream ends.
type Source interface {
	// ReadByte blocks for the next sample byte. It returns io.EOF when
	// the source has cleanly ended.
	ReadByte() (byte, error)
	// Close releases any resources and waits for a spawned process.
	Close() error
}

// CommandSource runs `/bin/sh -c <command>` and streams its stdout.
type CommandSource struct {
	cmd    *exec.Cmd
	reader *bufio.Reader
	stdout io.ReadCloser
}

// NewCommandSource spawns command via the shell and wires up a buffered
// reader over its stdout. The caller must call Close when done, even on
// error paths after Start succeeds.
func NewCommandSource(command string) (*CommandSource, error) {
	cmd := exec.Command("/bin/sh", "-c", command)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("source: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("source: starting %q: %w", command, err)
	}
	return &CommandSource{
		cmd:    cmd,
		reader: bufio.NewReaderSize(stdout, 4096),
		stdout: stdout,
	}, nil
}

// ReadByte reads the next sample byte.
func (s *CommandSource) ReadByte() (byte, error) {
	b, err := s.reader.ReadByte()
	if err != nil {
		if err == io.EOF {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("source: read: %w", err)
	}
	return b, nil
}

// Close closes the stdout pipe and waits for the child process to exit.
// A non-zero exit status is not reported; only other Wait failures are
// returned as errors.
func (s *CommandSource) Close() error {
	_ = s.stdout.Close()
	if err := s.cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !asExitError(err, &exitErr) {
			return fmt.Errorf("source: waiting for child: %w", err)
		}
	}
	return nil
}

func asExitError(err error, target **exec.ExitError) bool {
	ee, ok := err.(*exec.ExitError)
	if ok {
		*target = ee
	}
	return ok
}
