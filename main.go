package main

import (
	"flag"
	"log"
	"os"

	"github.com/cmis/automation-backend/cmd"
)

func main() {
	shouldRunMigrations := flag.Bool("migrations", false, "Run database migrations")
	shouldRunServer := flag.Bool("server", false, "Run the API server")
	shouldRunWorker := flag.Bool("worker", false, "Run the task queue worker")
	flag.Parse()

	if !*shouldRunMigrations && !*shouldRunServer && !*shouldRunWorker {
		flag.Usage()
		os.Exit(2)
	}

	if *shouldRunMigrations {
		if err := cmd.RunMigrations(); err != nil {
			log.Fatal(err)
		}
	}
	if *shouldRunServer {
		if err := cmd.RunServer(); err != nil {
			log.Fatal(err)
		}
	}
	if *shouldRunWorker {
		if err := cmd.RunWorker(); err != nil {
			log.Fatal(err)
		}
	}
}
