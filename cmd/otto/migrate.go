package main

import (
	"log"

	"github.com/voidshard/otto/pkg/database"
)

const (
	docMigrate = `Apply database migrations`
)

type optsMigrate struct {
	optsGeneral
	optsDatabase
}

func (c *optsMigrate) Execute(args []string) error {
	err := database.Migrate(c.databaseURL())
	if err != nil {
		return err
	}
	log.Println("migrations applied")
	return nil
}
