package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                int      `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel            string   `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	MaxUploadMB         int      `mapstructure:"max_upload_mb" validate:"gt=0"`
	ReadTimeoutSeconds  int      `mapstructure:"read_timeout_seconds" validate:"gt=0"`
	WriteTimeoutSeconds int      `mapstructure:"write_timeout_seconds" validate:"gt=0"`
	CORSAllowedOrigins  []string `mapstructure:"cors_allowed_origins"`
	Version             string   `mapstructure:"version"`
	Environment         string   `mapstructure:"environment"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL         string `mapstructure:"url" validate:"required,url"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// AuthConfig contains session and password settings.
type AuthConfig struct {
	SessionSecret          string `mapstructure:"session_secret" validate:"required,min=32"`
	SessionLifetimeMinutes int    `mapstructure:"session_lifetime_minutes" validate:"required,gt=0"`
	BCryptCost             int    `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
	CSRFEnforce            bool   `mapstructure:"csrf_enforce"`
	CookieSecure           bool   `mapstructure:"cookie_secure"`
	LoginRatePerMinute     int    `mapstructure:"login_rate_per_minute" validate:"gte=0"`
}

// RedisConfig locates the session registry. An empty Addr keeps sessions
// in process memory.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// StorageConfig locates the media bucket. An empty Endpoint selects the
// in-memory store.
type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key" validate:"required_with=Endpoint"`
	SecretKey string `mapstructure:"secret_key" validate:"required_with=Endpoint"`
	Bucket    string `mapstructure:"bucket" validate:"required_with=Endpoint"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	PublicURL string `mapstructure:"public_url" validate:"omitempty,url"`
}

// TelemetryConfig selects the trace exporter.
type TelemetryConfig struct {
	Exporter    string  `mapstructure:"exporter" validate:"oneof=none stdout"`
	ServiceName string  `mapstructure:"service_name" validate:"required"`
	SampleRate  float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// KafkaConfig enables content event publishing when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic" validate:"required_with=Brokers"`
}

// BootstrapConfig describes the admin account ensured at startup.
type BootstrapConfig struct {
	AdminUsername string `mapstructure:"admin_username"`
	AdminEmail    string `mapstructure:"admin_email" validate:"required_with=AdminUsername"`
	AdminPassword string `mapstructure:"admin_password" validate:"required_with=AdminUsername"`
}
