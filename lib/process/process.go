package process

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"

	"github.com/go-i2p/go-streamtunnel/lib/util"
)

var log = logger.GetGoI2PLogger()

// Source is a running capture process read through its stdout.
type Source struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser

	stopOnce sync.Once
	stopErr  error
}

// StartSource launches name with args. The process is killed when ctx is
// cancelled or Stop is called.
func StartSource(ctx context.Context, name string, args ...string) (*Source, error) {
	if name == "" {
		return nil, oops.New("capture command is empty")
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = os.Stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, oops.Wrapf(err, "capture stdout for %s", name)
	}
	if err := cmd.Start(); err != nil {
		return nil, oops.Wrapf(err, "start %s", name)
	}

	s := &Source{cmd: cmd, stdout: stdout}
	util.RegisterCloser(s)
	log.WithFields(logger.Fields{
		"at":      "process.StartSource",
		"command": name,
		"pid":     cmd.Process.Pid,
	}).Debug("capture process started")
	return s, nil
}

// Read reads the process's stdout. io.EOF means the process closed it.
func (s *Source) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

// Stop kills the process and reaps it. It is safe to call more than once.
func (s *Source) Stop() error {
	s.stopOnce.Do(func() {
		util.UnregisterCloser(s)
		if err := s.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			log.WithError(err).Warn("Failed to kill capture process")
		}
		// Wait reports the kill as an error; only a failure to reap matters.
		if err := s.cmd.Wait(); err != nil {
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				s.stopErr = oops.Wrapf(err, "reap capture process")
			}
		}
		log.WithField("pid", s.cmd.Process.Pid).Debug("capture process stopped")
	})
	return s.stopErr
}

// Close implements io.Closer by calling Stop.
func (s *Source) Close() error { return s.Stop() }

// Sink is a running player fed through its stdin.
type Sink struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser

	closeOnce sync.Once
	closeErr  error
}

// StartSink launches name with args, inheriting stdout and stderr.
func StartSink(ctx context.Context, name string, args ...string) (*Sink, error) {
	if name == "" {
		return nil, oops.New("sink command is empty")
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, oops.Wrapf(err, "sink stdin for %s", name)
	}
	if err := cmd.Start(); err != nil {
		return nil, oops.Wrapf(err, "start %s", name)
	}

	s := &Sink{cmd: cmd, stdin: stdin}
	util.RegisterCloser(s)
	log.WithFields(logger.Fields{
		"at":      "process.StartSink",
		"command": name,
		"pid":     cmd.Process.Pid,
	}).Debug("sink process started")
	return s, nil
}

// Write writes to the process's stdin. The pipe is unbuffered.
func (s *Sink) Write(p []byte) (int, error) {
	return s.stdin.Write(p)
}

// Close closes stdin and waits for the process to exit.
func (s *Sink) Close() error {
	s.closeOnce.Do(func() {
		util.UnregisterCloser(s)
		if err := s.stdin.Close(); err != nil {
			log.WithError(err).Debug("sink stdin already closed")
		}
		if err := s.cmd.Wait(); err != nil {
			s.closeErr = oops.Wrapf(err, "sink process")
		}
	})
	return s.closeErr
}

type bufferedSink struct {
	*bufio.Writer
}

func (s bufferedSink) Close() error { return s.Flush() }

func newBufferedSink(w io.Writer) io.WriteCloser {
	return bufferedSink{bufio.NewWriterSize(w, 4096)}
}

// Stdout returns a sink on the process's standard output. It buffers one
// chunk and is flushed after every relay write.
func Stdout() io.WriteCloser {
	return newBufferedSink(os.Stdout)
}
