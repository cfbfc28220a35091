package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	ML        MLConfig        `mapstructure:"ml" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// SchedulerConfig holds optional overrides for the spaced-repetition
// scheduler. Zero values leave the corresponding built-in default untouched,
// mirroring srs.ParamsConfig.
type SchedulerConfig struct {
	MinEaseFactor     float64 `mapstructure:"min_ease_factor" validate:"gte=0"`
	MaxEaseFactor     float64 `mapstructure:"max_ease_factor" validate:"gte=0"`
	EaseFactorBonus   float64 `mapstructure:"ease_factor_bonus" validate:"gte=0"`
	EaseFactorPenalty float64 `mapstructure:"ease_factor_penalty" validate:"gte=0"`
	FirstInterval     int     `mapstructure:"first_interval" validate:"gte=0"`
	SecondInterval    int     `mapstructure:"second_interval" validate:"gte=0"`
}

// MLConfig contains the tunables of the mastery predictor and the
// exercise-format bandit.
type MLConfig struct {
	// MasteryRetrainEvery is the number of answered exercises between
	// mastery-model retrains within a session.
	MasteryRetrainEvery int `mapstructure:"mastery_retrain_every" validate:"required,gt=0"`

	// BanditEpsilon is the bandit's exploration rate.
	BanditEpsilon float64 `mapstructure:"bandit_epsilon" validate:"gte=0,lte=1"`

	// BanditRetrainThreshold is the buffer size at which a bandit arm first
	// becomes eligible for training.
	BanditRetrainThreshold int `mapstructure:"bandit_retrain_threshold" validate:"required,gt=0"`

	// BanditRetrainEvery controls the arm refit cadence once the threshold
	// has been crossed: 1 refits on every reward, N>1 only when the buffer
	// size is a multiple of N.
	BanditRetrainEvery int `mapstructure:"bandit_retrain_every" validate:"required,gte=1"`
}
