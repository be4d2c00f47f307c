// Package mongo provides MongoDB connection management for the account
// storage backend: environment-driven configuration, connect retries,
// a health check closure, and error classification helpers.
//
//	client, err := mongo.New(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Disconnect(ctx)
//
//	db := client.Database(cfg.Database)
//
// Storage code classifies driver errors with IsNotFoundError and
// IsDuplicateKeyError instead of inspecting server error codes inline.
package mongo
