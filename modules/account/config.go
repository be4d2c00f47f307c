package account

// Config holds the account module settings shared by the service and the
// HTTP handlers.
type Config struct {
	AppName           string `env:"APP_NAME" envDefault:"Starter Kit"`
	AppURL            string `env:"APP_URL" envDefault:"http://localhost:8080"`
	MinPasswordLength int    `env:"MIN_PASSWORD_LENGTH" envDefault:"8"`
}
