package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/cado"
	"github.com/aretw0/cado/internal/logging"
	"github.com/aretw0/cado/pkg/adapters/file"
	"github.com/aretw0/cado/pkg/adapters/hcl"
	"github.com/aretw0/cado/pkg/adapters/loam"
	"github.com/aretw0/cado/pkg/adapters/process"
	"github.com/aretw0/cado/pkg/adapters/redis"
	"github.com/aretw0/cado/pkg/domain"
	"github.com/aretw0/cado/pkg/observability"
	"github.com/aretw0/cado/pkg/persistence"
	"github.com/aretw0/cado/pkg/persistence/middleware"
	"github.com/aretw0/cado/pkg/ports"
	"github.com/aretw0/cado/pkg/registry"
	"github.com/aretw0/cado/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
)

// App bundles what a command needs: the session manager and its
// collaborators.
type App struct {
	Options  Options
	Logger   *slog.Logger
	Manager  *session.Manager
	Metrics  *observability.Metrics
	Registry *prometheus.Registry
	closers  []func() error
}

// Setup builds the App described by opts. extra options are applied to
// the session manager after the defaults.
func Setup(opts Options, extra ...session.Option) (*App, error) {
	logger := createLogger(opts.Debug)
	app := &App{
		Options:  opts,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}
	app.Metrics = observability.NewMetrics(app.Registry)

	evaluator, err := newEvaluator(opts, logger)
	if err != nil {
		return nil, err
	}

	codec, err := newCodec(opts)
	if err != nil {
		return nil, err
	}

	hooks := app.Metrics.Hooks()
	if opts.Debug {
		hooks = hooks.Merge(observability.LogHooks(logger))
	}
	engineOpts := []cado.Option{
		cado.WithEvaluator(evaluator),
		cado.WithLogger(logger),
		cado.WithLifecycleHooks(hooks),
	}
	if opts.Timeout > 0 {
		engineOpts = append(engineOpts, cado.WithEvalTimeout(opts.Timeout))
	}

	mgrOpts := []session.Option{
		session.WithLogger(logger),
		session.WithEngineOptions(engineOpts...),
	}

	var store ports.NotebookStore
	if opts.RedisURL != "" {
		rs, err := redis.New(opts.RedisURL, redis.WithCodec(codec))
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, rs.Close)
		mgrOpts = append(mgrOpts, session.WithLocker(redis.NewLocker(rs.Client(), redis.DefaultPrefix)))
		store = rs
		logger.Debug("using redis store", "url", opts.RedisURL)
	} else {
		store, err = newLocalStore(opts, codec)
		if err != nil {
			return nil, err
		}
		logger.Debug("using local store", "store", opts.Store, "dir", opts.Dir)
	}

	app.Manager = session.NewManager(store, append(mgrOpts, extra...)...)
	return app, nil
}

// newLocalStore builds the directory backed store named by opts.Store.
func newLocalStore(opts Options, codec persistence.Codec) (ports.NotebookStore, error) {
	switch opts.Store {
	case "", StoreFile:
		return file.New(opts.Dir, file.WithCodec(codec)), nil
	case StoreLoam:
		if opts.Format == "yaml" {
			return nil, fmt.Errorf("the loam store keeps JSON documents; --format yaml is not supported")
		}
		dir := opts.Dir
		if dir == "" {
			dir = file.DefaultDir
		}
		return loam.New(dir, loam.WithCodec(codec))
	default:
		return nil, fmt.Errorf("unknown store %q (file, loam)", opts.Store)
	}
}

// Close releases connections held by the App.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// createLogger configures the application logger.
// In debug mode, it writes to Stderr (to separate from Stdout output).
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// newEvaluator routes hcl cells in-process and every other known language
// to an interpreter. evaluators.yaml entries override the built-in python
// and shell definitions.
func newEvaluator(opts Options, logger *slog.Logger) (*registry.Registry, error) {
	langs := process.Builtins()

	path := opts.EvaluatorsPath
	if path == "" {
		path = DefaultEvaluatorsPath
	}
	custom, err := process.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	for lang, cfg := range custom {
		langs[lang] = cfg
	}

	reg := registry.NewRegistry()
	reg.Register(domain.LanguageHCL, hcl.New(hcl.WithLogger(logger)))

	proc := process.New(
		process.WithLanguages(langs),
		process.WithBaseDir(filepath.Dir(path)),
		process.WithLogger(logger),
	)
	for _, lang := range proc.Languages() {
		if lang == domain.LanguageHCL {
			continue
		}
		reg.Register(lang, proc)
	}
	return reg, nil
}

// newCodec builds the document codec and its middleware chain:
// redaction first, then output stripping, encryption outermost.
func newCodec(opts Options) (persistence.Codec, error) {
	var base persistence.Codec = persistence.JSONCodec{Indent: true}
	switch opts.Format {
	case "", "json":
	case "yaml":
		base = persistence.YAMLCodec{}
	default:
		return nil, fmt.Errorf("unknown format %q (json, yaml)", opts.Format)
	}

	var mws []middleware.Middleware

	key := opts.EncryptionKey
	if key == "" {
		key = os.Getenv(EncryptionKeyEnv)
	}
	if key != "" {
		raw, err := hex.DecodeString(key)
		if err != nil {
			return nil, fmt.Errorf("encryption key must be hex encoded: %w", err)
		}
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: raw})
		if err != nil {
			return nil, err
		}
		mws = append(mws, enc)
	}
	if opts.StripOutputs {
		mws = append(mws, middleware.NewStripOutputsMiddleware())
	}
	if len(opts.Redact) > 0 {
		red, err := middleware.NewRedactMiddleware(opts.Redact)
		if err != nil {
			return nil, err
		}
		mws = append(mws, red)
	}

	return middleware.Chain(base, mws...), nil
}
