package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strings"

    "github.com/joho/godotenv" // godotenv loads a local .env file into the process environment
)

// Config holds the runtime configuration shared by the HTTP server and its
// storage.  Each field corresponds to an environment variable.
type Config struct {
    Name          string // application name stamped on every log line
    Version       string // build version stamped on every log line
    Env           string // application environment (e.g. "dev", "prod")
    Port          string // HTTP port to listen on
    DBDriver      string // "mysql" or "sqlite3"
    DBUser        string // database username
    DBPass        string // database password (optional)
    DBHost        string // database host address
    DBPort        string // database port number
    DBName        string // database name
    SQLitePath    string // database file used when DBDriver is sqlite3
    JWTSecret     string // secret used to verify access tokens
    FloorPlanFile string // optional YAML file overriding the default floor plan
    MetricsPath   string // path serving Prometheus metrics
}

// Load reads configuration values from the environment and returns a
// Config.  A .env file in the working directory is loaded first when it
// exists.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
        log.Printf("config: .env not loaded: %v", err)
    }
    cfg := Config{
        Name:          envStr("APP_NAME", "gourmet-table"),
        Version:       envStr("APP_VERSION", "dev"),
        Env:           must("APP_ENV"),                       // environment (dev/test/prod)
        Port:          must("APP_PORT"),                      // port to bind the HTTP server
        DBDriver:      strings.ToLower(envStr("DB_DRIVER", "mysql")),
        JWTSecret:     must("JWT_SECRET"),                    // secret used for verifying JWTs
        FloorPlanFile: os.Getenv("FLOOR_PLAN_FILE"),          // empty keeps the built-in A-F layout
        MetricsPath:   envStr("METRICS_PATH", "/metrics"),
    }
    switch cfg.DBDriver {
    case "sqlite3", "sqlite":
        cfg.DBDriver = "sqlite3"
        cfg.SQLitePath = envStr("SQLITE_PATH", "data/gourmet.db")
    default:
        cfg.DBDriver = "mysql"
        cfg.DBUser = must("DB_USER")         // database user
        cfg.DBPass = os.Getenv("DB_PASS")    // database password (empty allowed)
        cfg.DBHost = must("DB_HOST")         // database host
        cfg.DBPort = must("DB_PORT")         // database port
        cfg.DBName = must("DB_NAME")         // database name
    }
    return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}
