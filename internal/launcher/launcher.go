package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bnema/modctl/internal/app"
	"github.com/bnema/modctl/internal/mods"
)

// EventTerminated is emitted when a launched mod exits
const EventTerminated = "mod-terminated"

var (
	ErrAlreadyRunning = errors.New("mod is already running")
	ErrNotRunning     = errors.New("mod is not running")
	ErrNoExecutable   = errors.New("mod has no executable")
)

// TerminatedEvent carries the exit status of a mod process
type TerminatedEvent struct {
	ID       string `json:"id"`
	ExitCode int    `json:"exit_code"`
}

// Options configures how mods are started
type Options struct {
	CaptureOutput bool   // Stream stdout/stderr into the terminal outputs
	Wine          string // Runner for .exe files on non-Windows hosts, empty to run directly
	TuneEnv       bool   // Apply Wayland and GPU environment tweaks
}

// process is kept after exit until the mod is launched again, so its exit
// code stays readable
type process struct {
	cmd      *exec.Cmd
	pid      int
	done     chan struct{}
	exitCode int // Set before done is closed
}

func (p *process) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Launcher starts mod executables and keeps the registry in sync with them
type Launcher struct {
	state *app.State
	opts  Options
	log   *log.Logger

	mu    sync.Mutex
	procs map[string]*process
}

func New(state *app.State, opts Options, logger *log.Logger) *Launcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Launcher{
		state: state,
		opts:  opts,
		log:   logger,
		procs: make(map[string]*process),
	}
}

// Launch starts the mod identified by key (id or name). The process runs in
// the mod folder and outlives ctx.
func (l *Launcher) Launch(ctx context.Context, key string) (mods.ModInfo, error) {
	info, err := l.state.Mods.Lookup(key)
	if err != nil {
		return mods.ModInfo{}, err
	}
	if info.IsRunning() {
		return mods.ModInfo{}, fmt.Errorf("%w: %s", ErrAlreadyRunning, info.Name)
	}
	if info.ExecutablePath == "" {
		return mods.ModInfo{}, fmt.Errorf("%w: %s", ErrNoExecutable, info.Name)
	}
	if err := ctx.Err(); err != nil {
		return mods.ModInfo{}, err
	}

	cmd := l.command(info)

	l.state.Terminal.Clear(info.ID)
	if l.opts.CaptureOutput {
		w := l.state.Terminal.Writer(info.ID)
		cmd.Stdout = w
		cmd.Stderr = w
	} else {
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
	}

	l.log.Info("Launching mod",
		"id", info.ID,
		"name", info.Name,
		"executable", info.ExecutablePath,
		"workdir", cmd.Dir,
	)
	l.log.Debug("Executing", "command", cmd.Args)

	if err := cmd.Start(); err != nil {
		return mods.ModInfo{}, fmt.Errorf("failed to start %s: %w", info.Name, err)
	}
	pid := cmd.Process.Pid

	updated, err := l.state.Mods.Update(info.ID, func(m *mods.ModInfo) error {
		if m.ProcessID != nil {
			return fmt.Errorf("%w: %s", ErrAlreadyRunning, m.Name)
		}
		m.ProcessID = mods.Ptr(pid)
		m.LastPlayed = mods.Ptr(time.Now().Unix())
		return nil
	})
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return mods.ModInfo{}, err
	}

	p := &process{cmd: cmd, pid: pid, done: make(chan struct{})}
	l.mu.Lock()
	l.procs[info.ID] = p
	l.mu.Unlock()

	go l.wait(info.ID, p)

	l.log.Debug("Mod started", "id", info.ID, "pid", pid)
	return updated, nil
}

// Stop kills the process linked to the mod
func (l *Launcher) Stop(key string) error {
	info, err := l.state.Mods.Lookup(key)
	if err != nil {
		return err
	}

	l.mu.Lock()
	p, ok := l.procs[info.ID]
	l.mu.Unlock()
	if !ok || p.exited() {
		return fmt.Errorf("%w: %s", ErrNotRunning, info.Name)
	}

	l.log.Info("Stopping mod", "id", info.ID, "name", info.Name, "pid", p.pid)
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to stop %s: %w", info.Name, err)
	}
	return nil
}

// Wait blocks until the last process started for the mod exits and returns
// its exit code. A process that already exited reports its code right away.
func (l *Launcher) Wait(ctx context.Context, key string) (int, error) {
	info, err := l.state.Mods.Lookup(key)
	if err != nil {
		return 0, err
	}

	l.mu.Lock()
	p, ok := l.procs[info.ID]
	l.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotRunning, info.Name)
	}

	select {
	case <-p.done:
		return p.exitCode, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// StopAll kills every process started by this launcher
func (l *Launcher) StopAll() {
	l.mu.Lock()
	procs := make([]*process, 0, len(l.procs))
	for _, p := range l.procs {
		procs = append(procs, p)
	}
	l.mu.Unlock()

	for _, p := range procs {
		if p.exited() {
			continue
		}
		_ = p.cmd.Process.Kill()
		<-p.done
	}
}

func (l *Launcher) wait(id string, p *process) {
	err := p.cmd.Wait()
	p.exitCode = exitCode(p.cmd, err)

	_, uerr := l.state.Mods.Update(id, func(m *mods.ModInfo) error {
		if m.ProcessID != nil && *m.ProcessID == p.pid {
			m.ProcessID = nil
		}
		return nil
	})
	if uerr != nil && !errors.Is(uerr, mods.ErrNotFound) {
		l.log.Warn("Failed to clear process link", "id", id, "error", uerr)
	}
	l.state.Terminal.Clear(id)

	l.log.Info("Mod exited", "id", id, "pid", p.pid, "exit_code", p.exitCode)
	if err := l.state.Handle.Emit(EventTerminated, TerminatedEvent{ID: id, ExitCode: p.exitCode}); err != nil {
		l.log.Debug("Terminated event not delivered", "id", id, "error", err)
	}
	close(p.done)
}

func (l *Launcher) command(info mods.ModInfo) *exec.Cmd {
	var cmd *exec.Cmd
	if l.opts.Wine != "" && runtime.GOOS != "windows" && strings.EqualFold(filepath.Ext(info.ExecutablePath), ".exe") {
		cmd = exec.Command(l.opts.Wine, info.ExecutablePath)
	} else {
		cmd = exec.Command(info.ExecutablePath)
	}
	cmd.Dir = info.Path
	cmd.Env = Environment(l.opts.TuneEnv, l.log)
	return cmd
}

func exitCode(cmd *exec.Cmd, err error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	if err != nil {
		return -1
	}
	return 0
}

