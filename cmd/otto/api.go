package main

import (
	"github.com/voidshard/otto/internal/utils"
	"github.com/voidshard/otto/pkg/api"
	"github.com/voidshard/otto/pkg/api/http/server"
	"github.com/voidshard/otto/pkg/database"
	"github.com/voidshard/otto/pkg/queue"
)

const (
	docApi = `Run the API server`
)

type optsAPI struct {
	optsGeneral
	optsDatabase
	optsQueue

	Addr string `long:"addr" env:"ADDR" description:"Address to bind to" default:"localhost:8100"`

	ScriptsDir string `long:"scripts-dir" env:"SCRIPTS_DIR" default:"/var/lib/otto/scripts" description:"Directory uploaded scripts are stored in"`
}

func (c *optsAPI) Execute(args []string) error {
	// This serves the API over HTTP. Configured with OptionsClientDefault
	// it runs no execution routines; scripts uploaded here are picked up
	// by whatever workers share the database and queue.
	tlsCfg, err := utils.TLSConfig(c.QueueTLSCaCert, c.QueueTLSCert, c.QueueTLSKey)
	if err != nil {
		panic(err)
	}

	svc, err := api.New(
		&database.Options{URL: c.databaseURL()},
		&queue.Options{URL: c.queueURL(), TLSConfig: tlsCfg},
		api.OptionsClientDefault(),
	)
	if err != nil {
		panic(err)
	}

	s := server.NewServer(c.Addr, c.ScriptsDir, c.Debug)
	return s.ServeForever(svc)
}
