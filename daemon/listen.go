package daemon

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/firi/golangserver/dispatch"
	"github.com/firi/golangserver/langserver"
	"github.com/firi/golangserver/serverlog"
)

// StdioOptions configures ListenStdio.
type StdioOptions struct {
	Logger       serverlog.Logger
	DispatchOpts []dispatch.Option
}

// ListenStdio runs a single Dispatcher over the process's stdin/stdout,
// the mode an editor uses when it spawns the server itself. It blocks
// until the client disconnects, or until ctx is cancelled and the next
// frame (or EOF) has been read; see Dispatcher.Listen.
func ListenStdio(ctx context.Context, desc *langserver.Description, opts StdioOptions) error {
	d := dispatch.NewDispatcher(os.Stdin, os.Stdout, desc, opts.DispatchOpts...)
	return d.Listen(ctx)
}

// SocketOptions configures NewDaemon. Key names this daemon instance for
// socket-path derivation and lock-file bookkeeping — typically a
// workspace root, but any caller-chosen stable string works.
type SocketOptions struct {
	Key          string
	IdleTimeout  time.Duration
	Logger       serverlog.Logger
	DispatchOpts func() []dispatch.Option
}

// Daemon runs a Unix-socket server accepting multiple connections, each
// served by its own Dispatcher over the same langserver.Description. It
// is the generalized, clangd-process-free descendant of the teacher's
// Daemon: no project root, no clangd subprocess, no C++-specific request
// forwarding — just socket lifecycle, idle shutdown, and signal
// handling, all of which transfer unchanged to any dispatch engine.
type Daemon struct {
	key         string
	socketPath  string
	desc        *langserver.Description
	dispatchOpt func() []dispatch.Option
	logger      serverlog.Logger

	listener    net.Listener
	idleTimeout time.Duration
	idleTimer   *time.Timer
	mu          sync.Mutex
	shutdown    chan struct{}
	closeOnce   sync.Once

	connections   int
	totalRequests int64
	startTime     time.Time
}

// NewDaemon builds a socket-serving Daemon without starting it; call
// Run to start accepting connections.
func NewDaemon(desc *langserver.Description, opts SocketOptions) *Daemon {
	logger := opts.Logger
	if logger == nil {
		logger = serverlog.NullLogger{}
	}
	idleTimeout := opts.IdleTimeout
	if idleTimeout == 0 {
		idleTimeout = 30 * time.Minute
	}
	return &Daemon{
		key:         opts.Key,
		socketPath:  GetSocketPath(opts.Key),
		desc:        desc,
		dispatchOpt: opts.DispatchOpts,
		logger:      logger,
		idleTimeout: idleTimeout,
		shutdown:    make(chan struct{}),
		startTime:   time.Now(),
	}
}

// Run checks for a stale daemon, writes the lock file, starts the Unix
// socket listener, and blocks until shutdown — triggered by idle
// timeout, SIGTERM/SIGINT, or Stop.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.checkExistingDaemon(); err != nil {
		return err
	}
	if err := WriteLockFile(d.key, os.Getpid(), d.socketPath); err != nil {
		return fmt.Errorf("daemon: write lock file: %w", err)
	}
	defer RemoveLockFile(d.key)

	if err := d.startSocketServer(ctx); err != nil {
		return fmt.Errorf("daemon: start socket server: %w", err)
	}

	d.resetIdleTimer()
	d.setupSignalHandlers()

	select {
	case <-d.shutdown:
	case <-ctx.Done():
		d.Stop()
	}
	return nil
}

func (d *Daemon) checkExistingDaemon() error {
	lockInfo, err := ReadLockFile(d.key)
	if err != nil {
		return err
	}
	if lockInfo == nil {
		return nil
	}

	if IsProcessAlive(lockInfo.PID) {
		if IsDaemonStale(lockInfo) {
			d.logger.Info("existing daemon %d is stale, signalling it to stop", lockInfo.PID)
			syscall.Kill(lockInfo.PID, syscall.SIGTERM)
			time.Sleep(100 * time.Millisecond)
		} else {
			return fmt.Errorf("daemon: already running with pid %d", lockInfo.PID)
		}
	}

	CleanupSocket(lockInfo.SocketPath)
	RemoveLockFile(d.key)
	return nil
}

func (d *Daemon) startSocketServer(ctx context.Context) error {
	CleanupSocket(d.socketPath)

	listener, err := net.Listen("unix", d.socketPath)
	if err != nil {
		return err
	}
	d.listener = listener

	go d.acceptConnections(ctx)
	return nil
}

func (d *Daemon) acceptConnections(ctx context.Context) {
	defer d.listener.Close()
	defer CleanupSocket(d.socketPath)

	for {
		conn, err := d.listener.Accept()
		if err != nil {
			select {
			case <-d.shutdown:
				return
			default:
				d.logger.Error("accept error: %v", err)
				continue
			}
		}

		d.mu.Lock()
		d.connections++
		d.mu.Unlock()
		d.resetIdleTimer()

		go d.handleConnection(ctx, conn)
	}
}

func (d *Daemon) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	defer func() {
		d.mu.Lock()
		d.connections--
		d.mu.Unlock()
		d.resetIdleTimer()
	}()

	opts := []dispatch.Option{}
	if d.dispatchOpt != nil {
		opts = d.dispatchOpt()
	}
	connDispatcher := dispatch.NewDispatcher(conn, conn, d.desc, opts...)
	_ = connDispatcher.Listen(ctx)
}

func (d *Daemon) resetIdleTimer() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(d.idleTimeout, func() {
		d.mu.Lock()
		active := d.connections
		d.mu.Unlock()
		if active > 0 {
			// Not idle; the timer is re-armed when a connection ends.
			return
		}
		d.logger.Info("idle timeout reached, shutting down")
		d.Stop()
	})
}

func (d *Daemon) setupSignalHandlers() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigChan
		d.logger.Info("received signal %v", sig)
		d.Stop()
	}()
}

// Stop triggers a graceful shutdown; safe to call multiple times.
func (d *Daemon) Stop() {
	d.closeOnce.Do(func() {
		close(d.shutdown)
	})
}

// Status reports coarse daemon health, the generalized form of the
// teacher's "status" command response.
type Status struct {
	PID         int           `json:"pid"`
	Key         string        `json:"key"`
	Uptime      time.Duration `json:"uptimeNanoseconds"`
	Connections int           `json:"connections"`
}

func (d *Daemon) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Status{
		PID:         os.Getpid(),
		Key:         d.key,
		Uptime:      time.Since(d.startTime),
		Connections: d.connections,
	}
}
