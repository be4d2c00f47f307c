// Package config loads application configuration from environment variables
// into tagged Go structs, with optional .env file support.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11. Each
// configuration type is parsed once per process and cached, so packages can
// call Load for their own config struct without coordinating:
//
//	type DatabaseConfig struct {
//	    Host string `env:"DB_HOST,required"`
//	    Port int    `env:"DB_PORT" envDefault:"5432"`
//	}
//
//	var db DatabaseConfig
//	if err := config.Load(&db); err != nil {
//	    log.Fatalf("parsing env: %v", err)
//	}
//
// Sentinel errors (ErrParsingConfig, ErrLoadingEnvFile, ErrNilPointer,
// ErrConfigNotLoaded) support errors.Is checks. Tests that mutate the
// environment between loads should call ResetCache.
package config
