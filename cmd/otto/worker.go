package main

import (
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/voidshard/otto/internal/utils"
	"github.com/voidshard/otto/pkg/api"
	"github.com/voidshard/otto/pkg/database"
	"github.com/voidshard/otto/pkg/queue"
)

const (
	docWorker = `Run a script execution worker`
)

type optsWorker struct {
	optsGeneral
	optsDatabase
	optsQueue

	MetricsAddr string `long:"metrics-addr" env:"METRICS_ADDR" default:"localhost:9100" description:"Address to serve metrics on"`

	DispatchMode   string `long:"dispatch-mode" env:"DISPATCH_MODE" default:"queue" choice:"queue" choice:"poll" description:"How the worker receives jobs"`
	MaxJobs        int    `long:"max-jobs" env:"MAX_JOBS" default:"4" description:"Jobs to run concurrently"`
	PerUserLimit   int    `long:"per-user-limit" env:"PER_USER_LIMIT" default:"0" description:"Max running jobs per user, 0 for no limit"`
	MaxRuntimeSecs int    `long:"max-runtime-secs" env:"MAX_RUNTIME_SECS" default:"3600" description:"Hard per-script runtime cap in seconds"`
	Interpreter    string `long:"interpreter" env:"INTERPRETER" default:"python3" description:"Interpreter used to run scripts"`
}

func (c *optsWorker) Execute(args []string) error {
	// A worker both executes scripts and (on start) reconciles jobs left
	// RUNNING by a dead predecessor. Run as many of these as you like;
	// claiming makes concurrent workers safe.
	tlsCfg, err := utils.TLSConfig(c.QueueTLSCaCert, c.QueueTLSCert, c.QueueTLSKey)
	if err != nil {
		panic(err)
	}

	opts := api.OptionsWorkerDefault()
	opts.DispatchMode = c.DispatchMode
	opts.MaxConcurrentJobs = c.MaxJobs
	opts.PerUserLimit = c.PerUserLimit
	opts.MaxRuntime = time.Duration(c.MaxRuntimeSecs) * time.Second
	opts.Interpreter = c.Interpreter

	svc, err := api.New(
		&database.Options{URL: c.databaseURL()},
		&queue.Options{URL: c.queueURL(), TLSConfig: tlsCfg},
		opts,
	)
	if err != nil {
		panic(err)
	}
	defer svc.Close()

	g := &errgroup.Group{}
	g.Go(func() error {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		return http.ListenAndServe(c.MetricsAddr, mux)
	})
	g.Go(func() error {
		exit := make(chan os.Signal, 1)
		signal.Notify(exit, os.Interrupt)
		<-exit
		os.Exit(0)
		return nil
	})
	return g.Wait()
}
