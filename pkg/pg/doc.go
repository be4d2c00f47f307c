// Package pg wires the pgx/v5 driver into the application: connection
// pooling with startup retries, goose schema migrations, a health check
// closure, and error classification helpers.
//
// Typical startup sequence:
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//	    return err
//	}
//
// Storage code classifies driver errors with IsNotFoundError and
// IsDuplicateKeyError rather than matching SQLSTATE codes inline.
package pg
