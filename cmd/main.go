package main

//go:generate swag init -g cmd/main.go -d ../ -o ../internal/app/docs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	osexec "os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"jobmon/internal/app/docs"
	"jobmon/internal/app/router"
	"jobmon/internal/module/settings"
	"jobmon/internal/module/slurm"
	"jobmon/internal/pkg/client/exec"
	"jobmon/internal/pkg/client/postgres"
	"jobmon/internal/pkg/client/ssh"
	"jobmon/internal/pkg/config"
	"jobmon/internal/pkg/jobpath"
	"jobmon/internal/pkg/jobs"
	"jobmon/internal/pkg/log"
	"jobmon/internal/pkg/metrics"
	"jobmon/internal/pkg/options"

	"github.com/alecthomas/kingpin/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/common/version"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           jobmon
// @version         0.1.0
// @description     Slurm job monitor across multiple clusters over SSH
// @schema			http
// @BasePath        /
func main() {
	var opts options.Server
	app := kingpin.New(filepath.Base(os.Args[0]), "Slurm job monitor across multiple clusters over SSH.")
	app.HelpFlag.Short('h')
	// Logging related flags
	app.Flag("log.level", "Log level, one of [debug, info, warn, error].").Default("info").EnumVar(&opts.Log.Level, log.Levels...)
	app.Flag("log.output", "Log output, one of [stdout, stderr, file].").Default("stderr").EnumVar(&opts.Log.Output, "stdout", "stderr", "file")
	app.Flag("log.format", "Log format, one of [json, text].").Default("text").EnumVar(&opts.Log.Format, "json", "text")
	app.Flag("log.file", "Log file path when --log.output=file.").PlaceHolder("PATH").StringVar(&opts.Log.File)
	// Server
	app.Flag("server.listen-addr", "Server listen address (e.g. :8080 or 127.0.0.1:8080)").Default(":8081").StringVar(&opts.Web.ListenAddr)
	app.Flag("server.shutdown-timeout", "Graceful shutdown timeout (e.g. 10s)").Default("10s").DurationVar(&opts.Web.ShutdownTimeout)
	app.Flag("web.rate-limit", "Requests per second allowed per client IP, 0 disables rate limiting.").Default("0").Float64Var(&opts.Web.RateLimit)
	app.Flag("web.rate-burst", "Token bucket burst per client IP.").Default("20").IntVar(&opts.Web.RateBurst)
	app.Flag("web.static-dir", "Directory with presentation files served at / (index.html).").PlaceHolder("DIR").StringVar(&opts.Web.StaticDir)
	// Documents
	app.Flag("config.file", "Configuration document (clusters, recent_jobs_count, refresh_interval).").Default("config.json").StringVar(&opts.ConfigFile)
	app.Flag("cache.file", "Job path cache document.").Default("job_log.json").StringVar(&opts.Cache.File)
	app.Flag("cache.dsn", "PostgreSQL DSN, stores the job path cache in PostgreSQL instead of --cache.file.").PlaceHolder("DSN").Envar("JOBMON_CACHE_DSN").StringVar(&opts.Cache.DSN)
	app.Flag("cache.max-conns", "Maximum PostgreSQL connections for --cache.dsn, 0 keeps the pgxpool default.").Default("0").IntVar(&opts.Cache.MaxConns)
	app.Flag("cache.max-idle", "Maximum idle time of a PostgreSQL connection for --cache.dsn, 0 keeps the pgxpool default.").Default("0s").DurationVar(&opts.Cache.MaxConnIdleTime)
	// SSH
	app.Flag("ssh.mode", "Remote command transport, one of [exec, native].").Default(options.SSHModeExec).EnumVar(&opts.SSH.Mode, options.SSHModeExec, options.SSHModeNative)
	app.Flag("ssh.timeout", "Timeout for each remote command (Go duration, e.g. 15s).").Default(exec.DefaultTimeout.String()).DurationVar(&opts.SSH.Timeout)
	app.Flag("ssh.user", "Login user for --ssh.mode=native (default $USER).").StringVar(&opts.SSH.User)
	app.Flag("ssh.port", "SSH port for --ssh.mode=native.").Default("22").IntVar(&opts.SSH.Port)
	app.Flag("ssh.identity", "Private key for --ssh.mode=native.").PlaceHolder("PATH").StringVar(&opts.SSH.IdentityFile)
	app.Flag("ssh.known-hosts", "known_hosts file for --ssh.mode=native (default ~/.ssh/known_hosts).").PlaceHolder("PATH").StringVar(&opts.SSH.KnownHostsFile)
	// Job output
	app.Flag("output.tail-lines", "Default number of lines returned from job output files (25-50).").Default("50").IntVar(&opts.Output.TailLines)
	app.Flag("output.search-workdir", "Search the job working directory when scontrol no longer knows the output paths.").Default("true").BoolVar(&opts.Output.SearchWorkDir)
	// Cross-flag validation
	app.PreAction(func(*kingpin.ParseContext) error {
		if strings.EqualFold(opts.Log.Output, "file") {
			if !isValidFilePath(opts.Log.File) {
				return fmt.Errorf("invalid --log.file path: %q", opts.Log.File)
			}
		}
		if opts.Output.TailLines < jobs.MinTailLines || opts.Output.TailLines > jobs.MaxTailLines {
			return fmt.Errorf("--output.tail-lines must be between %d and %d", jobs.MinTailLines, jobs.MaxTailLines)
		}
		if opts.Cache.MaxConns < 0 || opts.Cache.MaxConnIdleTime < 0 {
			return fmt.Errorf("--cache.max-conns and --cache.max-idle must not be negative")
		}
		if !isValidFilePath(opts.ConfigFile) || !isValidFilePath(opts.Cache.File) {
			return fmt.Errorf("invalid --config.file or --cache.file path")
		}
		return nil
	})
	app.Version(version.Print("jobmon"))

	_, err := app.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("failed to parse commandline arguments: %w", err))
		app.Usage(os.Args[1:])
		os.Exit(2)
	}
	// 创建 Logger
	logger, logClose, err := log.NewLogger(opts.Log.Output, opts.Log.Format, opts.Log.File, opts.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logClose()

	if err := run(opts, logger); err != nil {
		logger.Error("jobmon exited with error", slog.Any("err", err))
		logClose()
		os.Exit(1)
	}
}

func run(opts options.Server, logger *slog.Logger) error {
	logger.Info("starting jobmon", "version", version.Info(), "build_context", version.BuildContext())
	m := metrics.New()

	runner, closeRunner, err := newRunner(opts.SSH, logger)
	if err != nil {
		return err
	}
	defer closeRunner()
	runner = m.Instrument(runner)

	store, closeStore, err := newPathStore(opts.Cache, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	conf := config.NewStore(opts.ConfigFile, logger)
	cfg := conf.Load()
	logger.Info("config loaded", "path", opts.ConfigFile, "clusters", cfg.Clusters, "recent_jobs_count", cfg.RecentJobsCount)

	outputOpts := []jobs.OutputOption{jobs.WithTailLines(opts.Output.TailLines), jobs.WithMetrics(m)}
	if opts.Output.SearchWorkDir {
		outputOpts = append(outputOpts, jobs.WithWorkDirSearch())
	}
	slurmRouter := slurm.NewRouter(
		conf,
		jobs.NewCollector(runner, logger),
		jobs.NewOutputResolver(runner, store, logger, outputOpts...),
		jobs.NewGPUResolver(runner, logger),
		logger,
	)
	settingsRouter := settings.NewRouter(conf, logger)

	// Build router
	r := router.New(logger, router.Options{RateLimit: opts.Web.RateLimit, RateBurst: opts.Web.RateBurst})
	r.GET("/metrics", gin.WrapH(m.Handler()))
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	if version.Version != "" {
		docs.SwaggerInfo.Version = version.Version
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if opts.Web.StaticDir != "" {
		r.StaticFile("/", filepath.Join(opts.Web.StaticDir, "index.html"))
		r.Static("/static", opts.Web.StaticDir)
	}

	router.Register(
		slurmRouter,
		settingsRouter,
	)
	router.Mount(r)
	srv := &http.Server{
		Addr:              opts.Web.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in background
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", opts.Web.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
		// proceed to shutdown
	}
	logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), opts.Web.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("err", err))
	}
	logger.Info("server exiting")
	return nil
}

// newRunner 根据 --ssh.mode 创建远程命令执行器.
func newRunner(conf options.SSH, logger *slog.Logger) (exec.Runner, func(), error) {
	switch conf.Mode {
	case options.SSHModeNative:
		c, err := ssh.New(ssh.Conf{
			User:           conf.User,
			Port:           conf.Port,
			IdentityFile:   conf.IdentityFile,
			KnownHostsFile: conf.KnownHostsFile,
			Timeout:        conf.Timeout,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to create native ssh client: %w", err)
		}
		return c, c.Close, nil
	default:
		if _, err := osexec.LookPath("ssh"); err != nil {
			logger.Warn("ssh binary not found in PATH, remote commands will fail", "err", err)
		}
		return exec.New(osexec.CommandContext, conf.Timeout, logger), func() {}, nil
	}
}

// newPathStore 配置了 DSN 时使用 PostgreSQL, 否则使用本地 JSON 文件.
func newPathStore(conf options.Cache, logger *slog.Logger) (jobpath.Store, func(), error) {
	if conf.DSN == "" {
		logger.Info("job path cache", "backend", "file", "path", conf.File)
		return jobpath.NewFileStore(conf.File, logger), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := postgres.New(ctx, conf.DSN, postgres.PoolOptions(conf.MaxConns, conf.MaxConnIdleTime)...)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to connect to job path database: %w", err)
	}
	if err := db.EnsureJobPathSchema(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("unable to prepare job path schema: %w", err)
	}
	logger.Info("job path cache", "backend", "postgres")
	return jobpath.NewPostgresStore(db), db.Close, nil
}

// isValidFilePath performs a light-weight validation for file paths.
// It accepts both absolute and relative paths and rejects empty paths
// or paths that end with a path separator (which usually indicate a directory).
func isValidFilePath(p string) bool {
	if strings.TrimSpace(p) == "" {
		return false
	}
	// Reject paths that end with a separator, which imply directories
	if strings.HasSuffix(p, string(os.PathSeparator)) {
		return false
	}
	base := filepath.Base(p)
	if base == "." || base == string(os.PathSeparator) {
		return false
	}
	return true
}
