package node

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/simforge/simforge/config"
	"github.com/simforge/simforge/logging"
	"github.com/simforge/simforge/utils"
)

// ErrBinaryNotFound indicates the node binary could not be located on the host. The service must not accept
// requests without a running node, so callers treat this as fatal.
var ErrBinaryNotFound = errors.New("node binary is not installed or not in PATH")

// stopWaitTimeout describes how long Stop waits for the node process to exit after a graceful termination signal
// before escalating to SIGKILL.
const stopWaitTimeout = 5 * time.Second

// State describes the lifecycle state of the supervised node process.
type State string

const (
	// StateNotStarted indicates the node process has not been launched yet.
	StateNotStarted State = "not_started"
	// StateRunning indicates the node process has been launched and has not been stopped.
	StateRunning State = "running"
	// StateTerminated indicates the node process has exited or was stopped.
	StateTerminated State = "terminated"
)

// Supervisor manages the lifecycle of a single ephemeral chain node process. It is created once at service start
// and shared by every request for the lifetime of the service; requests only ever read its endpoint, while the
// start/stop lifecycle is driven outside the request-handling window.
type Supervisor struct {
	// config describes the node process settings (binary name, hardfork, listen address).
	config config.NodeConfig

	// logger describes the Supervisor's log object
	logger *logging.Logger

	// cmd describes the underlying node process once launched.
	cmd *exec.Cmd

	// waitCh receives the result of waiting on the node process exactly once.
	waitCh chan error

	// state describes the current lifecycle state, guarded by stateLock.
	state     State
	stateLock sync.Mutex
}

// NewSupervisor creates a Supervisor for the given node configuration. The node process is not launched until
// Start is called.
func NewSupervisor(nodeConfig config.NodeConfig, logger *logging.Logger) *Supervisor {
	return &Supervisor{
		config: nodeConfig,
		logger: logger.NewSubLogger("module", "node"),
		state:  StateNotStarted,
	}
}

// Start launches the node process with its fixed protocol-version flag and waits for the RPC endpoint to accept
// connections. Returns ErrBinaryNotFound (wrapped) if the node binary cannot be located, or an error if the node
// failed to become ready within the configured startup timeout. Start may only be called once.
func (s *Supervisor) Start(ctx context.Context) error {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()

	// The node is launched exactly once per service lifetime.
	if s.state != StateNotStarted {
		return fmt.Errorf("node process cannot be started while in state '%s'", s.state)
	}

	// Build our node command. The hardfork flag pins the protocol version the ephemeral chain runs with.
	args := []string{
		"--hardfork", s.config.Hardfork,
		"--host", s.config.Host,
		"--port", fmt.Sprintf("%d", s.config.Port),
	}
	cmd := exec.Command(s.config.Binary, args...)

	// Place the node in its own process group so termination signals reach any children it forks.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	// Drain the node's output into our logger rather than letting it interleave with service output.
	cmd.Stdout = &processLogWriter{logger: s.logger}
	cmd.Stderr = &processLogWriter{logger: s.logger}

	// Launch the process.
	if err := cmd.Start(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrBinaryNotFound, s.config.Binary)
		}
		return err
	}

	s.cmd = cmd
	s.state = StateRunning
	s.logger.Info("Node process started with PID: ", cmd.Process.Pid)

	// Reap the process in the background so a crashed node does not linger as a zombie.
	s.waitCh = make(chan error, 1)
	go func() {
		err := cmd.Wait()
		s.waitCh <- err

		// If the node died underneath us (rather than through Stop), record it.
		s.stateLock.Lock()
		if s.state == StateRunning {
			s.state = StateTerminated
			s.logger.Error("Node process exited unexpectedly", err)
		}
		s.stateLock.Unlock()
	}()

	// Wait for the RPC endpoint to accept connections before declaring the node ready.
	if err := s.awaitReady(ctx); err != nil {
		s.terminateLocked()
		return err
	}

	s.logger.Info("Node RPC endpoint ready at ", s.Endpoint())
	return nil
}

// Endpoint returns the fixed local RPC address the node listens on. This never changes for the process's lifetime.
func (s *Supervisor) Endpoint() string {
	return fmt.Sprintf("http://%s:%d", s.config.Host, s.config.Port)
}

// State returns the current lifecycle state of the node process.
func (s *Supervisor) State() State {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()
	return s.state
}

// Stop requests graceful termination of the node process and waits for it to exit, escalating to SIGKILL if it
// does not exit promptly. Stop is idempotent and safe to call when the process was never started or has already
// stopped.
func (s *Supervisor) Stop() error {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()

	// Nothing to do if the node never started or was already stopped.
	if s.state != StateRunning {
		s.state = StateTerminated
		return nil
	}

	s.logger.Info("Terminating node process...")
	err := s.terminateLocked()
	return err
}

// terminateLocked tears the node process down. The caller must hold stateLock.
func (s *Supervisor) terminateLocked() error {
	// Signal the whole process group so any children the node forked are terminated with it.
	if err := unix.Kill(-s.cmd.Process.Pid, unix.SIGTERM); err != nil {
		// Fall back to signalling the process directly if the group signal failed.
		_ = s.cmd.Process.Signal(unix.SIGTERM)
	}

	// Wait for the process to exit, escalating to SIGKILL if the graceful window elapses.
	select {
	case <-s.waitCh:
	case <-time.After(stopWaitTimeout):
		s.logger.Warn("Node process did not exit after SIGTERM, killing it")
		_ = unix.Kill(-s.cmd.Process.Pid, unix.SIGKILL)
		<-s.waitCh
	}

	s.state = StateTerminated
	s.logger.Info("Node process terminated")
	return nil
}

// awaitReady polls the node's RPC endpoint until it accepts TCP connections, the startup timeout elapses, or the
// provided context is cancelled.
func (s *Supervisor) awaitReady(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	deadline := time.Now().Add(time.Duration(s.config.StartupTimeout) * time.Second)

	for time.Now().Before(deadline) {
		// Give up early if our caller's context was cancelled.
		if utils.CheckContextDone(ctx) {
			return ctx.Err()
		}

		// If the node process already exited, readiness will never come.
		select {
		case err := <-s.waitCh:
			s.waitCh <- err
			return fmt.Errorf("node process exited before its RPC endpoint became ready: %v", err)
		default:
		}

		conn, err := net.DialTimeout("tcp", address, 250*time.Millisecond)
		if err == nil {
			conn.Close()
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("node RPC endpoint at %s did not become ready within %d seconds", address, s.config.StartupTimeout)
}

// processLogWriter forwards a process's output lines into a Logger at trace level.
type processLogWriter struct {
	logger *logging.Logger
}

// Write implements io.Writer, logging each chunk of process output.
func (w *processLogWriter) Write(p []byte) (n int, err error) {
	msg := strings.TrimSpace(string(p))
	if msg != "" {
		w.logger.Trace(msg)
	}
	return len(p), nil
}
