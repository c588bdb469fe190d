package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/shopdb/internal/testutil"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	var dbOnly bool
	flag.BoolVar(&dbOnly, "db-only", false, "start only the database container")
	flag.Parse()

	usage := `
Run the shopdb testcontainers with the environment variables from the .env file.

Usage:

testcontainers [-h] [-db-only] [-f ENV_FILE_PATH]

ENV_FILE_PATH: path to the .env file
-db-only: start the database without a shopdb server, for running cmd/server locally

example
  testcontainers -f /path/to/something/.env
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	} else {
		log.Printf("No environment file specified, using current environment variables\n")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGTSTP, syscall.SIGQUIT)

	started := make(chan *testutil.TestContainers, 1)
	go func() {
		if dbOnly {
			tc, err := testutil.StartDatabase(nil)
			if err != nil {
				log.Fatalf("Failed to start database container: %v\n", err)
			}
			cfg := tc.DBConfig
			log.Printf("DB_TYPE=%s DB_HOST=%s DB_PORT=%s DB_DATABASE=%s DB_USER=%s DB_PASSWORD=%s\n",
				cfg.DBType, cfg.DBHost, cfg.DBPort, cfg.DBDatabase, cfg.DBUser, cfg.DBPassword)
			started <- tc
			return
		}
		tc, err := testutil.CreateAllTestContainers(nil)
		if err != nil {
			log.Fatalf("Failed to create test containers: %v\n", err)
		}
		started <- tc
	}()

	var testContainers *testutil.TestContainers
	select {
	case testContainers = <-started:
		log.Printf("Containers running, press Ctrl-C to stop\n")
	case sig := <-sigs:
		log.Printf("\nReceived signal: %v before containers started\n", sig)
		return
	}

	sig := <-sigs
	log.Printf("\nReceived signal: %v, terminating test containers...\n", sig)
	testContainers.Terminate(nil)
}
