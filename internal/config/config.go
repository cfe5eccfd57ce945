package config // package config loads application configuration from environment variables

import (
    "errors"  // errors builds the missing-secret sentinel
    "fmt"     // fmt wraps conversion errors with the offending key
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "strings" // strings splits comma separated lists
    "time"    // time expresses the token lifetime
)

// ErrMissingSecret is returned by Load when JWT_SECRET is unset or empty.
// There is no built-in fallback secret: tokens signed with a well known key
// would be forgeable by anyone.
var ErrMissingSecret = errors.New("missing required env var: JWT_SECRET")

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for costs and
// durations for lifetimes.
type Config struct {
    Env          string        // application environment (e.g. "dev", "prod")
    Port         string        // HTTP port to listen on
    DBUser       string        // database username
    DBPass       string        // database password (optional)
    DBHost       string        // database host address
    DBPort       string        // database port number
    DBName       string        // database name
    JWTSecret    string        // secret used to sign JWTs
    AccessTTL    time.Duration // access token time-to-live
    BcryptCost   int           // bcrypt cost for password hashing
    CORSOrigins  []string      // allowed CORS origins
    RabbitMQURL  string        // AMQP broker url; empty disables events
}

// Load reads configuration values from environment variables and returns a
// Config.  Only JWT_SECRET is mandatory; everything else has a development
// default.  Malformed integers are reported instead of silently replaced.
func Load() (Config, error) {
    cfg := Config{
        Env:         envStr("APP_ENV", "dev"),
        Port:        envStr("APP_PORT", "3000"),
        DBUser:      envStr("DB_USER", "root"),
        DBPass:      os.Getenv("DB_PASS"), // empty allowed
        DBHost:      envStr("DB_HOST", "127.0.0.1"),
        DBPort:      envStr("DB_PORT", "3306"),
        DBName:      envStr("DB_NAME", "altera"),
        JWTSecret:   os.Getenv("JWT_SECRET"),
        CORSOrigins: splitList(envStr("CORS_ALLOW_ORIGINS", "*")),
        RabbitMQURL: envStr("RABBITMQ_URL", os.Getenv("AMQP_URL")),
    }
    if cfg.JWTSecret == "" {
        return Config{}, ErrMissingSecret
    }

    ttlMin, err := envInt("ACCESS_TOKEN_TTL_MIN", 60)
    if err != nil {
        return Config{}, err
    }
    if ttlMin <= 0 {
        return Config{}, fmt.Errorf("ACCESS_TOKEN_TTL_MIN must be positive, got %d", ttlMin)
    }
    cfg.AccessTTL = time.Duration(ttlMin) * time.Minute

    if cfg.BcryptCost, err = envInt("BCRYPT_COST", 10); err != nil {
        return Config{}, err
    }
    return cfg, nil
}

// IsDev reports whether the application runs in a development environment.
func (c Config) IsDev() bool {
    return c.Env == "dev" || c.Env == "development" || c.Env == "local"
}

func envInt(key string, def int) (int, error) {
    s := os.Getenv(key)
    if s == "" {
        return def, nil
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        return 0, fmt.Errorf("invalid int for %s: %q", key, s)
    }
    return n, nil
}

func splitList(s string) []string {
    var out []string
    for _, p := range strings.Split(s, ",") {
        if p = strings.TrimSpace(p); p != "" {
            out = append(out, p)
        }
    }
    return out
}
