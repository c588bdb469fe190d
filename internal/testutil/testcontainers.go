// Test container helpers. Used by the database integration tests and by the standalone
// cmd/testcontainers executable, which passes a nil *testing.T.
// Reads its settings from the environment, usually loaded from an .env file.

package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/localnerve/shopdb/internal/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

const shopdbImageName = "shopdb-test:latest"

type TestContainers struct {
	Network                *testcontainers.DockerNetwork
	DBContainer            testcontainers.Container
	ShopDBContainer        testcontainers.Container
	ShopDBBuilderContainer testcontainers.Container

	// DBConfig reaches the database through the host-mapped port
	DBConfig *config.Config
	// BaseURL reaches the shopdb container through the host-mapped port
	BaseURL string
}

func (tc *TestContainers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.ShopDBContainer != nil {
		if err := tc.ShopDBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate ShopDB: %v", err)
		}
	}
	if tc.ShopDBBuilderContainer != nil {
		if err := tc.ShopDBBuilderContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate ShopDB Builder: %v", err)
		}
	}
	if tc.DBContainer != nil {
		if err := tc.DBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate Database: %v", err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// StartDatabase starts the configured database image on a fresh network and waits until
// the application user can connect
func StartDatabase(t *testing.T) (*TestContainers, error) {
	ctx := context.Background()
	testContainers := &TestContainers{}

	nw, err := network.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create network: %w", err)
	}
	testContainers.Network = nw
	networkName := nw.Name

	dbType := envOr("DB_TYPE", "mariadb")
	dbNetworkName := envOr("DB_HOST", "db")
	tcpDbPort, err := nat.NewPort("tcp", envOr("DB_PORT", defaultDBPort(dbType)))
	if err != nil {
		testContainers.Terminate(t)
		return nil, fmt.Errorf("failed to create DB port: %w", err)
	}

	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        envOr("DB_IMAGE", defaultDBImage(dbType)),
			ExposedPorts: []string{string(tcpDbPort)},

			Env:        getDBInitEnvMap(dbType),
			WaitingFor: dbWaitStrategy(dbType, tcpDbPort),
			Networks:   []string{networkName},
			NetworkAliases: map[string][]string{
				networkName: {dbNetworkName},
			},
		},
		Started: true,
	})
	if err != nil {
		testContainers.Terminate(t)
		return nil, fmt.Errorf("failed to start database: %w", err)
	}
	testContainers.DBContainer = dbContainer

	dbHost, _ := dbContainer.Host(ctx)
	dbPort, _ := dbContainer.MappedPort(ctx, tcpDbPort)

	testContainers.DBConfig = &config.Config{
		DBType:            dbType,
		DBHost:            dbHost,
		DBPort:            dbPort.Port(),
		DBDatabase:        envOr("DB_DATABASE", "shopdb"),
		DBUser:            envOr("DB_USER", "shopdb"),
		DBPassword:        envOr("DB_PASSWORD", "shopdb-password"),
		DBConnectionLimit: 5,
		DBLogLevel:        "warn",
		PasswordSalt:      config.DefaultPasswordSalt,
		DefaultPageLimit:  100,
		MaxPageLimit:      100,
	}

	if dbType == "mysql" || dbType == "mariadb" {
		if err := waitForMySQL(testContainers.DBConfig); err != nil {
			testContainers.Terminate(t)
			return nil, err
		}
	}

	logMessage(t, "DB_HOST=%s DB_PORT=%s", dbHost, dbPort.Port())
	return testContainers, nil
}

// StartShopDB runs the shopdb image against the database container, building the image
// from the Dockerfile when it is not present locally
func (tc *TestContainers) StartShopDB(t *testing.T) error {
	ctx := context.Background()
	debugContainer := os.Getenv("DEBUG_CONTAINER")
	dbType := tc.DBConfig.DBType

	exists, err := imageExists(ctx, shopdbImageName)
	if err != nil {
		return fmt.Errorf("failed to check if image exists: %w", err)
	}

	shopdbPortNumber := envOr("PORT", "3000")
	tcpShopdbPort, err := nat.NewPort("tcp", shopdbPortNumber)
	if err != nil {
		return fmt.Errorf("failed to create ShopDB port: %w", err)
	}

	exposedPorts := []string{string(tcpShopdbPort)}
	if debugContainer == "true" {
		exposedPorts = append(exposedPorts, "2345/tcp")
	}

	hostConfigModifier := func(hostConfig *container.HostConfig) {
		if debugContainer == "true" {
			hostConfig.PortBindings = nat.PortMap{
				"2345/tcp": []nat.PortBinding{
					{HostIP: "127.0.0.1", HostPort: "2345"},
				},
			}
			hostConfig.CapAdd = []string{"SYS_PTRACE"}
			hostConfig.SecurityOpt = []string{"apparmor:unconfined"}
		}
	}

	var waitStrategy wait.Strategy
	waitStrategy = wait.ForHTTP("/health").WithPort(tcpShopdbPort).WithStartupTimeout(30 * time.Second)
	if debugContainer == "true" {
		waitStrategy = wait.ForLog("API server listening at: [::]:2345").WithStartupTimeout(5 * time.Minute)
	}

	request := testcontainers.ContainerRequest{
		ExposedPorts: exposedPorts,
		Env: map[string]string{
			"DB_TYPE":             dbType,
			"DB_HOST":             envOr("DB_HOST", "db"),
			"DB_PORT":             envOr("DB_PORT", defaultDBPort(dbType)),
			"DB_DATABASE":         tc.DBConfig.DBDatabase,
			"DB_USER":             tc.DBConfig.DBUser,
			"DB_PASSWORD":         tc.DBConfig.DBPassword,
			"DB_CONNECTION_LIMIT": envOr("DB_CONNECTION_LIMIT", "5"),
			"PASSWORD_SALT":       envOr("PASSWORD_SALT", config.DefaultPasswordSalt),
			"PORT":                shopdbPortNumber,
		},
		HostConfigModifier: hostConfigModifier,
		WaitingFor:         waitStrategy,
		Networks:           []string{tc.Network.Name},
	}

	if debugContainer == "true" {
		request.Entrypoint = []string{
			"/usr/local/bin/dlv",
			"--listen=:2345",
			"--headless=true",
			"--api-version=2",
			"--accept-multiclient",
			"exec",
			"./shopdb",
		}
	}

	if !exists {
		sessionID := uuid.New().String()
		buildArgs := map[string]*string{
			"RESOURCE_REAPER_SESSION_ID": &sessionID,
		}
		if debugContainer == "true" {
			buildArgs["DEBUG"] = &debugContainer
		}

		buildContext := envOr("TESTCONTAINERS_BUILD_CONTEXT", "../..")

		logMessage(t, "Image %s does not exist, building...", shopdbImageName)
		builder, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				FromDockerfile: testcontainers.FromDockerfile{
					Context:    buildContext,
					Dockerfile: "Dockerfile",
					Repo:       "shopdb-test-builder",
					Tag:        "latest",
					BuildArgs:  buildArgs,
					BuildOptionsModifier: func(opts *build.ImageBuildOptions) {
						opts.Target = "builder"
					},
					PrintBuildLog: true,
				},
			},
			Started: false,
		})
		if err != nil {
			return fmt.Errorf("failed to build shopdb-test-builder: %w", err)
		}
		tc.ShopDBBuilderContainer = builder

		nameParts := strings.Split(shopdbImageName, ":")
		request.FromDockerfile = testcontainers.FromDockerfile{
			Context:    buildContext,
			Dockerfile: "Dockerfile",
			Repo:       nameParts[0],
			Tag:        nameParts[1],
			KeepImage:  true,
			BuildArgs:  buildArgs,
			BuildOptionsModifier: func(opts *build.ImageBuildOptions) {
				opts.Target = "runtime"
			},
			PrintBuildLog: true,
		}
	} else {
		logMessage(t, "Image %s exists, reusing...", shopdbImageName)
		request.Image = shopdbImageName
	}

	shopdb, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: request,
		Started:          true,
	})
	if err != nil {
		return fmt.Errorf("failed to start ShopDB: %w", err)
	}
	tc.ShopDBContainer = shopdb

	host, _ := shopdb.Host(ctx)
	port, _ := shopdb.MappedPort(ctx, tcpShopdbPort)
	tc.BaseURL = fmt.Sprintf("http://%s:%s", host, port.Port())
	logMessage(t, "BASE_URL=%s", tc.BaseURL)

	return nil
}

// CreateAllTestContainers starts the database and a shopdb server in front of it
func CreateAllTestContainers(t *testing.T) (*TestContainers, error) {
	testContainers, err := StartDatabase(t)
	if err != nil {
		exitWithError(t, err, "Failed to start Database")
		return nil, err
	}

	if err := testContainers.StartShopDB(t); err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to start ShopDB")
		return nil, err
	}

	logMessage(t, "ShopDB testcontainers started successfully")
	return testContainers, nil
}

func getDBInitEnvMap(dbType string) map[string]string {
	switch dbType {
	case "postgres":
		return map[string]string{
			"POSTGRES_PASSWORD": envOr("DB_PASSWORD", "shopdb-password"),
			"POSTGRES_USER":     envOr("DB_USER", "shopdb"),
			"POSTGRES_DB":       envOr("DB_DATABASE", "shopdb"),
		}
	case "mariadb", "mysql":
		return map[string]string{
			"MYSQL_ROOT_PASSWORD": envOr("DB_ROOT_PASSWORD", "root-password"),
			"MYSQL_DATABASE":      envOr("DB_DATABASE", "shopdb"),
			"MYSQL_USER":          envOr("DB_USER", "shopdb"),
			"MYSQL_PASSWORD":      envOr("DB_PASSWORD", "shopdb-password"),
		}
	}
	return nil
}

func dbWaitStrategy(dbType string, port nat.Port) wait.Strategy {
	if dbType == "postgres" {
		// postgres restarts once after running its init scripts
		return wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second)
	}
	return wait.ForListeningPort(port).WithStartupTimeout(60 * time.Second)
}

func defaultDBImage(dbType string) string {
	switch dbType {
	case "postgres":
		return "postgres:17"
	case "mysql":
		return "mysql:8.4"
	}
	return "mariadb:11.4"
}

func defaultDBPort(dbType string) string {
	if dbType == "postgres" {
		return "5432"
	}
	return "3306"
}

func waitForMySQL(cfg *config.Config) error {
	db, err := sql.Open("mysql", fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBDatabase))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", cfg.DBType, err)
	}
	defer db.Close()

	for i := 0; i < 30; i++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		time.Sleep(1 * time.Second)
	}
	return fmt.Errorf("%s not ready after 30 seconds: %w", cfg.DBType, err)
}

func imageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}

	for _, image := range images {
		for _, tag := range image.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}

	return false, nil
}

func envOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func exitWithError(t *testing.T, err error, msg string) {
	if t != nil {
		t.Fatalf(msg+": %v", err)
	} else {
		fmt.Printf(msg+": %v\n", err)
		os.Exit(1)
	}
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
