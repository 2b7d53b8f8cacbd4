package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"tonielib/internal/config"
	"tonielib/internal/logging"
)

// Options configures a daemon instance.
type Options struct {
	Config     *config.Config
	ConfigPath string
	DataRoot   string
	Bind       string
	Logger     *slog.Logger
}

// Daemon serves the setup API and enforces single-instance execution.
type Daemon struct {
	cfg        *config.Config
	configPath string
	logger     *slog.Logger

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Bind         string
	ConfigPath   string
	LockFilePath string
}

// New constructs a daemon. ConfigPath names where saves land; the file does
// not need to exist yet because the setup wizard creates it.
func New(opts Options) (*Daemon, error) {
	if opts.Config == nil || opts.Logger == nil {
		return nil, errors.New("daemon requires config and logger")
	}
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.DefaultConfigPath
	}

	lockPath := filepath.Join(filepath.Dir(configPath), "tonielibd.lock")
	d := &Daemon{
		cfg:        opts.Config,
		configPath: configPath,
		logger:     opts.Logger,
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}
	d.api = newAPIServer(opts.Bind, d, opts.DataRoot, opts.Logger)
	return d, nil
}

// Start acquires the daemon lock and brings up the setup API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another tonielib daemon instance is already running")
	}

	d.warnUnwritableConfigDir()

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	d.cancel = cancel

	d.running.Store(true)
	d.logger.Info("tonielib daemon started",
		logging.String("lock", d.lockPath),
		logging.String("config", d.configPath))
	return nil
}

// Stop shuts down the API server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("tonielib daemon stopped")
}

// Close stops the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Status reports the current daemon state.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		Bind:         d.api.bind,
		ConfigPath:   d.configPath,
		LockFilePath: d.lockPath,
	}
}

// ConfigPath returns the path configuration saves are written to.
func (d *Daemon) ConfigPath() string {
	return d.configPath
}

// Saves fail with a permissions error when the config volume is mounted
// read-only; surfacing that at startup beats discovering it at the end of
// the wizard.
func (d *Daemon) warnUnwritableConfigDir() {
	dir := filepath.Dir(d.configPath)
	if err := unix.Access(dir, unix.W_OK); err != nil {
		d.logger.Warn("config directory is not writable, saves will fail",
			logging.String("directory", dir),
			logging.Error(err))
	}
}
