// Package cli implements the commands of the kiteflow binary.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/kiteflow"
	"github.com/aretw0/kiteflow/internal/config"
	"github.com/aretw0/kiteflow/internal/logging"
	"github.com/aretw0/kiteflow/pkg/adapters/file"
	"github.com/aretw0/kiteflow/pkg/adapters/redis"
	"github.com/aretw0/kiteflow/pkg/domain"
	"github.com/aretw0/kiteflow/pkg/observability"
	"github.com/aretw0/kiteflow/pkg/ports"
)

// ErrNoFlow is returned when neither a flow file nor a redis flow key is available.
var ErrNoFlow = errors.New("a flow file is required (or set redis.addr to load it from redis)")

// App carries the process wide state shared by every command.
type App struct {
	Config config.Config
	Logger *slog.Logger
	Debug  bool
	Out    io.Writer
	Err    io.Writer

	redis *redis.Adapter
}

// NewApp loads the configuration at configPath (optional) and builds the logger.
// With debug set, the log level is forced to debug.
func NewApp(configPath string, debug bool, out, errw io.Writer) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if debug {
		level = slog.LevelDebug
	}
	if errw == nil {
		errw = os.Stderr
	}
	if out == nil {
		out = os.Stdout
	}

	return &App{
		Config: cfg,
		Logger: logging.NewWithWriter(errw, level, logging.Format(cfg.LogFormat)),
		Debug:  debug,
		Out:    out,
		Err:    errw,
	}, nil
}

// Redis returns the shared redis adapter, or nil when redis is not configured.
func (a *App) Redis() *redis.Adapter {
	if a.redis == nil && a.Config.Redis.Addr != "" {
		rc := a.Config.Redis
		a.redis = redis.New(rc.Addr, rc.Password, rc.DB,
			redis.WithFlowKey(rc.FlowKey),
			redis.WithConfigKey(rc.ConfigKey),
			redis.WithQueueKey(rc.QueueKey),
			redis.WithDrain(rc.Drain),
		)
	}
	return a.redis
}

// SetRedis injects an adapter, used by tests.
func (a *App) SetRedis(adapter *redis.Adapter) {
	a.redis = adapter
}

// Close releases the redis connection, if any.
func (a *App) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

// Loader picks the flow source: the file at flowPath, or the redis flow key
// when flowPath is empty. It also returns a name for the flow.
func (a *App) Loader(flowPath string) (ports.FlowLoader, string, error) {
	if flowPath != "" {
		l := file.NewLoader(flowPath)
		return l, l.Name(), nil
	}
	if r := a.Redis(); r != nil {
		return r, a.Config.Redis.FlowKey, nil
	}
	return nil, "", ErrNoFlow
}

// configSource returns the plugin configuration source matching the loader:
// the redis hash for redis flows, the config file section otherwise.
func (a *App) configSource(flowPath string) ports.ConfigSource {
	if flowPath == "" && a.Redis() != nil {
		return a.Redis()
	}
	return a.Config.PluginSource()
}

// Engine builds an engine for flowPath with the application defaults,
// followed by opts.
func (a *App) Engine(ctx context.Context, flowPath string, opts ...kiteflow.Option) (*kiteflow.Engine, error) {
	loader, name, err := a.Loader(flowPath)
	if err != nil {
		return nil, err
	}

	base := []kiteflow.Option{
		kiteflow.WithLogger(a.Logger),
		kiteflow.WithName(name),
		kiteflow.WithStrictIDs(a.Config.StrictIDs),
		kiteflow.WithConfigSource(a.configSource(flowPath)),
	}
	if a.Debug {
		base = append(base, kiteflow.WithLifecycleHooks(observability.LoggingHooks(a.Logger)))
	}

	eng, err := kiteflow.NewWithContext(ctx, loader, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return eng, nil
}

// hooks merges the debug hooks with extra, so commands that install their own
// hooks keep debug tracing.
func (a *App) hooks(extra ...domain.LifecycleHooks) kiteflow.Option {
	if a.Debug {
		extra = append([]domain.LifecycleHooks{observability.LoggingHooks(a.Logger)}, extra...)
	}
	return kiteflow.WithLifecycleHooks(observability.Chain(extra...))
}
