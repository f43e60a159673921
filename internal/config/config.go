package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Storage  StorageConfig  `mapstructure:"storage"  validate:"required"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"            validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gt=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret              string `mapstructure:"jwt_secret"                validate:"required,min=32"`
	TokenLifetimeMinutes   int    `mapstructure:"token_lifetime_minutes"    validate:"gt=0"`
	BcryptCost             int    `mapstructure:"bcrypt_cost"               validate:"gte=4,lte=31"`
	LoginAttemptsPerMinute int    `mapstructure:"login_attempts_per_minute" validate:"gt=0"`
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"dive,url"`
}

// StorageConfig controls where uploaded attachment bytes are written.
type StorageConfig struct {
	UploadDir string `mapstructure:"upload_dir" validate:"required"`
}

// SeedConfig describes the default accounts created at startup.
// Password is only required when seeding is enabled.
type SeedConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	ManagerEmail  string `mapstructure:"manager_email"  validate:"omitempty,email"`
	EmployeeEmail string `mapstructure:"employee_email" validate:"omitempty,email"`
	Password      string `mapstructure:"password"       validate:"required_if=Enabled true,omitempty,min=8,max=72"`
}
