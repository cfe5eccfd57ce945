package config

// Redis backs the response cache of the comment listing.  The cache is an
// optimisation only: when Redis is not configured or unreachable the
// constructor returns nil and the cache middleware degrades to a no-op.

import (
    "context"
    "crypto/tls"
    "strconv"
    "time"

    "github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client using environment variables.
// Supported variables are:
//   REDIS_URL – full redis:// or rediss:// url (takes precedence)
//   REDIS_HOST and REDIS_PORT – hostname and port of the Redis server
//   REDIS_ADDR – host:port shorthand
//   REDIS_PASSWORD – optional password
//   REDIS_DB – database number (default 0)
//   REDIS_TLS – enable TLS when "true" or "1"
// Caching is opt-in: with none of REDIS_URL, REDIS_ADDR or REDIS_HOST set
// the function returns nil without dialing.
func NewRedisClient(ctx context.Context) *redis.Client {
    opts, ok := redisOptions()
    if !ok {
        return nil
    }
    client := redis.NewClient(opts)
    // Ping the server with a short timeout.  Return nil on failure.
    pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
    defer cancel()
    if err := client.Ping(pingCtx).Err(); err != nil {
        _ = client.Close()
        return nil
    }
    return client
}

func redisOptions() (*redis.Options, bool) {
    if url := envStr("REDIS_URL", ""); url != "" {
        opts, err := redis.ParseURL(url)
        if err != nil {
            return nil, false
        }
        return opts, true
    }
    addr := envStr("REDIS_ADDR", "")
    host, port := envStr("REDIS_HOST", ""), envStr("REDIS_PORT", "6379")
    if host != "" {
        addr = host + ":" + port
    }
    if addr == "" {
        return nil, false
    }
    dbNum, err := strconv.Atoi(envStr("REDIS_DB", "0"))
    if err != nil {
        dbNum = 0
    }
    opts := &redis.Options{
        Addr:     addr,
        Password: envStr("REDIS_PASSWORD", ""),
        DB:       dbNum,
    }
    if envBool("REDIS_TLS", false) {
        opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    return opts, true
}
