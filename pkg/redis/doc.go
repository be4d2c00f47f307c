// Package redis provides helpers for connecting to the Redis server that
// backs the production session store.
//
// It wraps the go-redis client with a retrying Connect and a health check
// closure. Configuration is described by the Config struct whose fields are
// populated from environment variables:
//
//	var cfg redis.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
package redis
