// Package runner executes every mutating host operation, subprocesses and
// privileged file writes alike, under one dry-run and privilege policy.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	gocmd "github.com/go-cmd/cmd"
	"github.com/sirupsen/logrus"

	"github.com/Alby-Shinoj7/docker-setup/internal/models"
)

// maxOutputBytes is the maximum number of bytes captured per output stream.
const maxOutputBytes = 1 << 20 // 1 MiB

// Mode carries the run switches every operation respects.
type Mode struct {
	DryRun  bool
	Verbose bool
}

// Command is one subprocess invocation.
type Command struct {
	Name string
	Args []string

	// Privileged routes the command through the resolved escalation path.
	Privileged bool

	// Stdin, when set, is piped to the process.
	Stdin string

	// Env entries are appended to the inherited environment.
	Env []string
}

// Result is the captured outcome of a completed subprocess.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes commands under one resolved privilege path and one
// dry-run/verbose mode. Under dry-run every mutation is recorded in a
// transcript instead of being executed.
type Runner struct {
	mode       Mode
	priv       Privilege
	transcript []string

	// lookPath is swappable for tests.
	lookPath func(string) (string, error)
}

// New builds a Runner. priv comes from ResolvePrivilege, once per process.
func New(mode Mode, priv Privilege) *Runner {
	return &Runner{mode: mode, priv: priv, lookPath: exec.LookPath}
}

// Mode returns the run switches.
func (r *Runner) Mode() Mode { return r.mode }

// Privilege returns the resolved escalation path.
func (r *Runner) Privilege() Privilege { return r.priv }

// Probe reports whether a binary is available on PATH. Probes are read-only
// and run even under dry-run.
func (r *Runner) Probe(name string) bool {
	_, err := r.lookPath(name)
	return err == nil
}

// Transcript returns the recorded dry-run plan in order.
func (r *Runner) Transcript() []string {
	return append([]string(nil), r.transcript...)
}

// Note logs and records a planned action under dry-run and reports whether
// the caller should skip the real work. Steps that are not expressible as a
// single command (downloads, verifications) use it to keep the plan
// complete.
func (r *Runner) Note(intent string) bool {
	if !r.mode.DryRun {
		return false
	}
	logrus.Infof("dry-run: would %s", intent)
	r.record(intent)
	return true
}

func (r *Runner) record(entry string) {
	r.transcript = append(r.transcript, entry)
}

// line renders the command as it would appear on a shell, including the
// escalation prefix the resolved privilege path implies.
func (r *Runner) line(c Command) string {
	parts := make([]string, 0, len(c.Args)+3)
	if c.Privileged && r.priv == PrivilegeSudo {
		parts = append(parts, "sudo", "-n")
	}
	parts = append(parts, c.Name)
	parts = append(parts, c.Args...)
	return strings.Join(parts, " ")
}

// Run executes c. Under dry-run nothing is executed; the fully formed line
// is logged and recorded. A non-zero exit returns *models.CommandError so
// callers can decide between tolerated and fatal.
func (r *Runner) Run(ctx context.Context, c Command) (Result, error) {
	line := r.line(c)

	if r.mode.DryRun {
		logrus.Infof("dry-run: would execute: %s", line)
		r.record(line)
		return Result{}, nil
	}

	name, args, err := r.resolve(c)
	if err != nil {
		return Result{}, err
	}

	if r.mode.Verbose {
		logrus.Infof("executing: %s", line)
	} else {
		logrus.Debugf("executing: %s", line)
	}

	var res Result
	if c.Stdin == "" && r.mode.Verbose {
		res, err = r.runStreaming(ctx, name, args, c.Env)
	} else {
		res, err = r.runCaptured(ctx, name, args, c)
	}
	if err != nil {
		return res, err
	}
	if res.ExitCode != 0 {
		return res, &models.CommandError{
			Line:     line,
			ExitCode: res.ExitCode,
			Stderr:   strings.TrimSpace(res.Stderr),
		}
	}
	return res, nil
}

// resolve applies the privilege path: root runs the command as given, sudo
// wraps it as `sudo -n <abs-path>` (sudoers rules match full paths only),
// and no escalation path refuses before anything runs.
func (r *Runner) resolve(c Command) (string, []string, error) {
	if !c.Privileged {
		return c.Name, c.Args, nil
	}
	switch r.priv {
	case PrivilegeRoot:
		return c.Name, c.Args, nil
	case PrivilegeSudo:
		abs, err := r.lookPath(c.Name)
		if err != nil {
			return "", nil, &models.SetupError{
				Kind: models.ErrPrecondition,
				Step: c.Name,
				Err:  fmt.Errorf("command not found: %s", c.Name),
			}
		}
		return "sudo", append([]string{"-n", abs}, c.Args...), nil
	default:
		return "", nil, &models.SetupError{
			Kind: models.ErrPrecondition,
			Step: c.Name,
			Err:  errors.New("not running as root and sudo is unavailable"),
		}
	}
}

func (r *Runner) runCaptured(ctx context.Context, name string, args []string, c Command) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if c.Stdin != "" {
		cmd.Stdin = strings.NewReader(c.Stdin)
	}
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitWriter{buf: &stdout, limit: maxOutputBytes}
	cmd.Stderr = &limitWriter{buf: &stderr, limit: maxOutputBytes}

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, fmt.Errorf("failed to start %s: %w", name, err)
	}
	return res, nil
}

// runStreaming executes through go-cmd so long-running package-manager
// output reaches the log line by line instead of after completion.
func (r *Runner) runStreaming(ctx context.Context, name string, args []string, env []string) (Result, error) {
	c := gocmd.NewCmdOptions(gocmd.Options{Buffered: false, Streaming: true}, name, args...)
	if len(env) > 0 {
		c.Env = append(os.Environ(), env...)
	}

	statusChan := c.Start()

	var stdout, stderr strings.Builder
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case line, ok := <-c.Stdout:
				if !ok {
					for line := range c.Stderr {
						appendLine(&stderr, line)
						logrus.Debug(line)
					}
					return
				}
				appendLine(&stdout, line)
				logrus.Debug(line)
			case line, ok := <-c.Stderr:
				if !ok {
					for line := range c.Stdout {
						appendLine(&stdout, line)
						logrus.Debug(line)
					}
					return
				}
				appendLine(&stderr, line)
				logrus.Debug(line)
			case <-ctx.Done():
				_ = c.Stop()
				return
			}
		}
	}()

	status := <-statusChan
	<-done

	res := Result{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: status.Exit}
	if status.Error != nil {
		return res, fmt.Errorf("failed to run %s: %w", name, status.Error)
	}
	return res, nil
}

// appendLine keeps the capture under the output cap.
func appendLine(b *strings.Builder, line string) {
	if b.Len()+len(line)+1 > maxOutputBytes {
		return
	}
	b.WriteString(line)
	b.WriteByte('\n')
}

// limitWriter wraps a bytes.Buffer and silently discards data past its
// limit so a chatty subprocess cannot grow the capture unbounded.
type limitWriter struct {
	buf   *bytes.Buffer
	limit int
	n     int
}

func (lw *limitWriter) Write(p []byte) (int, error) {
	remaining := lw.limit - lw.n
	if remaining <= 0 {
		return len(p), nil
	}
	toWrite := p
	if len(p) > remaining {
		toWrite = p[:remaining]
	}
	n, err := lw.buf.Write(toWrite)
	lw.n += n
	return len(p), err
}
