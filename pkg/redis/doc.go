// Package redis connects to Redis with go-redis v9 for the console's shared
// session store.
//
//	var cfg redis.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
// Connect retries the initial ping a configurable number of times before
// giving up. Healthcheck returns a probe suitable for httpserver.Check.
package redis
