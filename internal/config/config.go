package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Worker    WorkerConfig    `mapstructure:"worker" validate:"required"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database related settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// SchedulerConfig tunes the spaced-repetition scheduler.
type SchedulerConfig struct {
	// TargetRetention is the recall probability the scheduler aims for.
	TargetRetention float64 `mapstructure:"target_retention" validate:"required,gt=0,lt=1"`

	// MaxIntervalDays caps how far out a review can be scheduled.
	MaxIntervalDays int `mapstructure:"max_interval_days" validate:"required,gt=0"`

	// DisableFuzz turns off interval fuzzing for reproducible schedules.
	DisableFuzz bool `mapstructure:"disable_fuzz"`

	// ReviewRetries bounds how many times a review transaction is retried
	// on contention before the conflict is surfaced to the caller.
	ReviewRetries int `mapstructure:"review_retries" validate:"gte=0,lte=10"`
}

// WorkerConfig tunes the background task runner.
type WorkerConfig struct {
	Count     int `mapstructure:"count" validate:"required,gt=0"`
	QueueSize int `mapstructure:"queue_size" validate:"required,gt=0"`
}
