package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/iov-one/yieldshift/app"
	"github.com/iov-one/yieldshift/store"
	"github.com/iov-one/yieldshift/x/cash"
	"github.com/tendermint/tendermint/libs/log"
)

func cmdStart(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Run the engine.

The HTTP API and the heartbeat are served until the process receives SIGINT
or SIGTERM. State is kept in the data directory of the home directory.
`)
		fl.PrintDefaults()
	}
	var (
		configFl = fl.String("config", env("YIELDSHIFT_CONFIG", filepath.Join(os.Getenv("HOME"), ".yieldshiftd", "config.yaml")), "Path to the configuration file.")
	)
	fl.Parse(args)

	conf, err := loadConfig(*configFl)
	if err != nil {
		return fmt.Errorf("cannot load configuration: %s", err)
	}
	logger, err := newLogger(output, conf.LogLevel)
	if err != nil {
		return err
	}

	db, err := store.OpenLevelDB(conf.dataPath())
	if err != nil {
		return fmt.Errorf("cannot open database: %s", err)
	}
	defer db.Close()

	auth, err := conf.Authorizer()
	if err != nil {
		return err
	}
	pauser := &app.Switch{}
	engine, err := app.NewEngine(app.Config{
		Store:  db,
		Auth:   auth,
		Pools:  app.NewStoredPools(),
		Funds:  cash.NewCustody(cash.NewController(), conf.CustodyAddress()),
		Sink:   app.LogSink{},
		Pauser: pauser,
	})
	if err != nil {
		return err
	}

	srv := &server{
		engine:  engine,
		pauser:  pauser,
		auth:    auth,
		metrics: newMetrics(),
		logger:  logger,
		now:     time.Now,
	}
	srv.metrics.observe(engine)

	sch, err := newScheduler(srv, conf.Heartbeat)
	if err != nil {
		return fmt.Errorf("invalid heartbeat schedule: %s", err)
	}
	sch.Start()
	defer sch.Stop()

	hs := &http.Server{
		Addr:              conf.Listen,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- hs.ListenAndServe()
	}()
	logger.Info("serving", "listen", conf.Listen, "home", conf.Home)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		return fmt.Errorf("server failed: %s", err)
	case sig := <-sigc:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return hs.Shutdown(ctx)
}

func newLogger(out io.Writer, level string) (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(out)).With("module", "yieldshiftd")
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %s", err)
	}
	return log.NewFilter(logger, opt), nil
}
