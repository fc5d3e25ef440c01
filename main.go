package main

import (
	"flag"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"agentbazaar/migration"
	_ "agentbazaar/migration/migrations"
	"agentbazaar/seed"
	"agentbazaar/server"
	"agentbazaar/setup"
)

func main() {
	seedAgents := flag.Int("seed", 0, "seed the database with N demo agents and exit")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := setup.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	db, err := setup.OpenDB(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}

	if err := migration.RunAll(db); err != nil {
		log.WithError(err).Fatal("run migrations")
	}

	if *seedAgents > 0 {
		if err := seed.Run(db, *seedAgents); err != nil {
			log.WithError(err).Fatal("seed database")
		}
		log.WithField("agents", *seedAgents).Info("seeded demo data")
		return
	}

	handler := server.NewRouter(db, cfg, log)
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.WithField("addr", addr).Info("agentbazaar listening")
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
