package core

import (
	"bufio"
	goerrors "errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/voidshard/otto/pkg/errors"
)

// ReadEvent classifies one bounded read from the process output stream.
type ReadEvent int

const (
	// EventLine: a complete output line was captured.
	EventLine ReadEvent = iota
	// EventTimeout: no line arrived within the window.
	EventTimeout
	// EventEOF: the stream closed and the process has been reaped.
	EventEOF
)

const (
	maxLineBytes = 1024 * 1024

	// how long Terminate waits after SIGKILL before assuming an escaped
	// descendant is holding the output pipe open
	killWait = 2 * time.Second
)

// ProcessRunner owns one OS subprocess for the lifetime of one job. The
// child runs in its own process group so that Terminate can signal the whole
// tree, and stdout / stderr are merged into a single stream so the captured
// log interleaves the way a terminal would show it.
type ProcessRunner struct {
	cmd   *exec.Cmd
	out   *os.File
	lines chan string
	done  chan struct{}

	exitCode int64
	scanErr  error
}

// StartProcess spawns command in dir with the given extra env vars.
func StartProcess(command []string, dir string, env []string) (*ProcessRunner, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("%w empty command", errors.ErrInvalidArg)
	}

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	setProcessGroup(cmd)

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	err = cmd.Start()
	if err != nil {
		pr.Close()
		pw.Close()
		return nil, err
	}
	// the child holds the write end now; keeping ours would stop the
	// scanner from ever seeing EOF
	pw.Close()

	p := &ProcessRunner{
		cmd:   cmd,
		out:   pr,
		lines: make(chan string),
		done:  make(chan struct{}),
	}
	go p.scan()
	return p, nil
}

// scan pumps output lines until the pipe closes, then reaps the child.
func (p *ProcessRunner) scan() {
	defer close(p.done)

	sc := bufio.NewScanner(p.out)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	for sc.Scan() {
		p.lines <- sc.Text()
	}
	p.scanErr = sc.Err()
	close(p.lines)
	p.out.Close()

	err := p.cmd.Wait()
	if err == nil {
		p.exitCode = 0
		return
	}
	exit := &exec.ExitError{}
	if goerrors.As(err, &exit) {
		p.exitCode = int64(exit.ExitCode())
		return
	}
	p.exitCode = -1
}

// ReadLine waits up to timeout for the next output line. EventEOF is only
// returned once the child has been reaped, so the exit code is available.
func (p *ProcessRunner) ReadLine(timeout time.Duration) (string, ReadEvent) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case line, ok := <-p.lines:
		if !ok {
			<-p.done
			return "", EventEOF
		}
		return line, EventLine
	case <-t.C:
		return "", EventTimeout
	}
}

// ExitCode returns the child's exit code. ErrInvalidState until the process
// has exited and been reaped.
func (p *ProcessRunner) ExitCode() (int64, error) {
	select {
	case <-p.done:
		return p.exitCode, nil
	default:
		return 0, fmt.Errorf("%w process still running", errors.ErrInvalidState)
	}
}

// Terminate stops the whole process group: SIGTERM, a grace window for
// cleanup handlers, then SIGKILL. Blocks until the child is reaped.
func (p *ProcessRunner) Terminate(grace time.Duration) {
	// the caller has stopped reading; drain so the scan loop can't block
	// mid-send and miss the pipe closing
	go func() {
		for range p.lines {
		}
	}()

	terminateGroup(p.cmd.Process.Pid)
	select {
	case <-p.done:
		return
	case <-time.After(grace):
	}

	killGroup(p.cmd.Process.Pid)
	select {
	case <-p.done:
	case <-time.After(killWait):
		// a descendant that escaped the group can hold the pipe open
		// even though our child is dead; close our end to unblock the
		// scanner
		p.out.Close()
		<-p.done
	}
}
