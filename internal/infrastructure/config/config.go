package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Log       LogConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Renderer  RendererConfig
	Document  DocumentConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Swagger   SwaggerConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxHeaderBytes  int
	MaxBodySize     int64
	TrustedProxies  []string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// Database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // sqlite, postgres
	Path            string // sqlite file, ":memory:" for in-memory
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	AutoMigrate     bool
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled   bool
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Storage types
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// StorageConfig holds PDF storage settings
type StorageConfig struct {
	Type              string // local, s3
	LocalPath         string
	MaxFileSize       int64
	Bucket            string
	Prefix            string
	Region            string
	Endpoint          string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	PresignExpiration time.Duration
}

// Renderer engines
const (
	EngineChromedp = "chromedp"
	EngineGofpdf   = "gofpdf"
)

// RendererConfig holds PDF renderer settings
type RendererConfig struct {
	Engine       string // chromedp, gofpdf
	RemoteURL    string // remote Chrome DevTools endpoint, optional
	Timeout      time.Duration
	NoSandbox    bool
	PaperSize    string
	Orientation  string
	MarginMM     int
	FontPath     string // TTF used by gofpdf for Thai text
	BoldFontPath string
}

// Number sources
const (
	NumberSourceCounter  = "counter"
	NumberSourceUUID     = "uuid"
	NumberSourceRedis    = "redis"
	NumberSourceDatabase = "database"
)

// CompanyConfig is the issuer block printed on every document
type CompanyConfig struct {
	Name        string
	Address1    string
	Address2    string
	Tel         string
	TaxID       string
	BankAccount string
	HeaderLogo  string
	FooterLogo  string
	Signature   string
}

// DocumentConfig holds document generation settings
type DocumentConfig struct {
	DefaultTaxRate   decimal.Decimal
	Currency         string
	NumberSource     string
	CounterWidth     int
	UUIDSuffixLength int
	DatePrefix       bool
	MaxAmount        decimal.Decimal
	TemplatesDir     string // overrides embedded templates when set
	AssetsDir        string
	MaxAssetSize     int64
	StrictThai       bool
	IdempotencyTTL   time.Duration
	Company          CompanyConfig
}

// CORSConfig holds cross-origin settings
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// RateLimitConfig holds per-client request limits
type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
	Burst    int
}

// SwaggerConfig holds Swagger documentation endpoint configuration
type SwaggerConfig struct {
	Enabled    bool
	AllowedIPs []string // IPs or CIDRs; empty allows everyone
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	DBTraceEnabled    bool    // Enable database query tracing (otelgorm)
	DBSlowQuery       time.Duration
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	LogsEnabled       bool // Export zap logs through the OTLP log bridge
	LogsLevel         string
	Profiling         ProfilingConfig
}

// ProfilingConfig holds Pyroscope continuous profiling settings
type ProfilingConfig struct {
	Enabled           bool
	ServerAddress     string
	BasicAuthUser     string
	BasicAuthPassword string
	SpanProfiles      bool // link CPU profiles to trace spans
	MutexProfileRate  int
	BlockProfileRate  int
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with BILLY_ prefix (e.g., BILLY_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/billy-doc")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return build(v)
}

// LoadFile loads configuration from an explicit TOML file
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return build(v)
}

func build(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("BILLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			IdleTimeout:     v.GetDuration("http.idle_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:  v.GetInt("http.max_header_bytes"),
			MaxBodySize:     v.GetInt64("http.max_body_size"),
			TrustedProxies:  v.GetStringSlice("http.trusted_proxies"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Path:            v.GetString("database.path"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
		},
		Redis: RedisConfig{
			Enabled:   v.GetBool("redis.enabled"),
			Host:      v.GetString("redis.host"),
			Port:      v.GetInt("redis.port"),
			Password:  v.GetString("redis.password"),
			DB:        v.GetInt("redis.db"),
			KeyPrefix: v.GetString("redis.key_prefix"),
		},
		Storage: StorageConfig{
			Type:              v.GetString("storage.type"),
			LocalPath:         v.GetString("storage.local_path"),
			MaxFileSize:       v.GetInt64("storage.max_file_size"),
			Bucket:            v.GetString("storage.bucket"),
			Prefix:            v.GetString("storage.prefix"),
			Region:            v.GetString("storage.region"),
			Endpoint:          v.GetString("storage.endpoint"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			UseSSL:            v.GetBool("storage.use_ssl"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
		},
		Renderer: RendererConfig{
			Engine:       v.GetString("renderer.engine"),
			RemoteURL:    v.GetString("renderer.remote_url"),
			Timeout:      v.GetDuration("renderer.timeout"),
			NoSandbox:    v.GetBool("renderer.no_sandbox"),
			PaperSize:    v.GetString("renderer.paper_size"),
			Orientation:  v.GetString("renderer.orientation"),
			MarginMM:     v.GetInt("renderer.margin_mm"),
			FontPath:     v.GetString("renderer.font_path"),
			BoldFontPath: v.GetString("renderer.bold_font_path"),
		},
		Document: DocumentConfig{
			Currency:         v.GetString("document.currency"),
			NumberSource:     v.GetString("document.number_source"),
			CounterWidth:     v.GetInt("document.counter_width"),
			UUIDSuffixLength: v.GetInt("document.uuid_suffix_length"),
			DatePrefix:       v.GetBool("document.date_prefix"),
			TemplatesDir:     v.GetString("document.templates_dir"),
			AssetsDir:        v.GetString("document.assets_dir"),
			MaxAssetSize:     v.GetInt64("document.max_asset_size"),
			StrictThai:       v.GetBool("document.strict_thai"),
			IdempotencyTTL:   v.GetDuration("document.idempotency_ttl"),
			Company: CompanyConfig{
				Name:        v.GetString("document.company.name"),
				Address1:    v.GetString("document.company.address1"),
				Address2:    v.GetString("document.company.address2"),
				Tel:         v.GetString("document.company.tel"),
				TaxID:       v.GetString("document.company.tax_id"),
				BankAccount: v.GetString("document.company.bank_account"),
				HeaderLogo:  v.GetString("document.company.header_logo"),
				FooterLogo:  v.GetString("document.company.footer_logo"),
				Signature:   v.GetString("document.company.signature"),
			},
		},
		CORS: CORSConfig{
			AllowOrigins:     v.GetStringSlice("cors.allow_origins"),
			AllowMethods:     v.GetStringSlice("cors.allow_methods"),
			AllowHeaders:     v.GetStringSlice("cors.allow_headers"),
			ExposeHeaders:    v.GetStringSlice("cors.expose_headers"),
			AllowCredentials: v.GetBool("cors.allow_credentials"),
			MaxAge:           v.GetDuration("cors.max_age"),
		},
		RateLimit: RateLimitConfig{
			Enabled:  v.GetBool("rate_limit.enabled"),
			Requests: v.GetInt("rate_limit.requests"),
			Window:   v.GetDuration("rate_limit.window"),
			Burst:    v.GetInt("rate_limit.burst"),
		},
		Swagger: SwaggerConfig{
			Enabled:    v.GetBool("swagger.enabled"),
			AllowedIPs: v.GetStringSlice("swagger.allowed_ips"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			DBSlowQuery:       v.GetDuration("telemetry.db_slow_query"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			LogsLevel:         v.GetString("telemetry.logs_level"),
			Profiling: ProfilingConfig{
				Enabled:           v.GetBool("telemetry.profiling.enabled"),
				ServerAddress:     v.GetString("telemetry.profiling.server_address"),
				BasicAuthUser:     v.GetString("telemetry.profiling.basic_auth_user"),
				BasicAuthPassword: v.GetString("telemetry.profiling.basic_auth_password"),
				SpanProfiles:      v.GetBool("telemetry.profiling.span_profiles"),
				MutexProfileRate:  v.GetInt("telemetry.profiling.mutex_profile_rate"),
				BlockProfileRate:  v.GetInt("telemetry.profiling.block_profile_rate"),
			},
		},
	}

	var err error
	if cfg.Document.DefaultTaxRate, err = parseDecimal(v, "document.default_tax_rate", "0.07"); err != nil {
		return nil, err
	}
	if cfg.Document.MaxAmount, err = parseDecimal(v, "document.max_amount", "1000000000"); err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseDecimal(v *viper.Viper, key, fallback string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		raw = fallback
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s: invalid decimal %q", key, raw)
	}
	return d, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "billy-doc"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 60 * time.Second // PDF rendering can be slow
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverSQLite
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/billy-doc.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "billy_doc"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}

	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "billy-doc:"
	}

	if cfg.Storage.Type == "" {
		cfg.Storage.Type = StorageLocal
	}
	if cfg.Storage.LocalPath == "" {
		cfg.Storage.LocalPath = "output"
	}
	if cfg.Storage.MaxFileSize == 0 {
		cfg.Storage.MaxFileSize = 10 << 20 // 10MB
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "ap-southeast-1"
	}
	if cfg.Storage.PresignExpiration == 0 {
		cfg.Storage.PresignExpiration = 15 * time.Minute
	}

	if cfg.Renderer.Engine == "" {
		cfg.Renderer.Engine = EngineChromedp
	}
	if cfg.Renderer.Timeout == 0 {
		cfg.Renderer.Timeout = 30 * time.Second
	}
	if cfg.Renderer.PaperSize == "" {
		cfg.Renderer.PaperSize = "A4"
	}
	if cfg.Renderer.Orientation == "" {
		cfg.Renderer.Orientation = "PORTRAIT"
	}
	if cfg.Renderer.MarginMM == 0 {
		cfg.Renderer.MarginMM = 15
	}
	if cfg.Renderer.FontPath == "" {
		cfg.Renderer.FontPath = "fonts/Sarabun-Regular.ttf"
	}
	if cfg.Renderer.BoldFontPath == "" {
		cfg.Renderer.BoldFontPath = "fonts/Sarabun-Bold.ttf"
	}

	if cfg.Document.Currency == "" {
		cfg.Document.Currency = "THB"
	}
	if cfg.Document.NumberSource == "" {
		cfg.Document.NumberSource = NumberSourceCounter
	}
	if cfg.Document.CounterWidth == 0 {
		cfg.Document.CounterWidth = 6
	}
	if cfg.Document.UUIDSuffixLength == 0 {
		cfg.Document.UUIDSuffixLength = 12
	}
	if cfg.Document.AssetsDir == "" {
		cfg.Document.AssetsDir = "assets"
	}
	if cfg.Document.MaxAssetSize == 0 {
		cfg.Document.MaxAssetSize = 10 << 20 // 10MB
	}
	if cfg.Document.IdempotencyTTL == 0 {
		cfg.Document.IdempotencyTTL = 24 * time.Hour
	}
	applyCompanyDefaults(&cfg.Document.Company)

	if len(cfg.CORS.AllowMethods) == 0 {
		cfg.CORS.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.CORS.AllowHeaders) == 0 {
		cfg.CORS.AllowHeaders = []string{"Content-Type", "X-Request-ID", "Idempotency-Key"}
	}
	if len(cfg.CORS.ExposeHeaders) == 0 {
		cfg.CORS.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	}
	if cfg.CORS.MaxAge == 0 {
		cfg.CORS.MaxAge = 12 * time.Hour
	}

	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 60
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = time.Minute
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 10
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 15 * time.Second
	}
	if cfg.Telemetry.DBSlowQuery == 0 {
		cfg.Telemetry.DBSlowQuery = 200 * time.Millisecond
	}
	if cfg.Telemetry.LogsLevel == "" {
		cfg.Telemetry.LogsLevel = "info"
	}
	if cfg.Telemetry.Profiling.ServerAddress == "" {
		cfg.Telemetry.Profiling.ServerAddress = "http://localhost:4040"
	}
}

func applyCompanyDefaults(c *CompanyConfig) {
	if c.Name == "" {
		c.Name = "บริษัท บิลลี่ ด็อก จำกัด"
	}
	if c.Address1 == "" {
		c.Address1 = "123 ถนนสุขุมวิท"
	}
	if c.Address2 == "" {
		c.Address2 = "แขวงคลองเตย เขตคลองเตย กรุงเทพฯ 10110"
	}
	if c.Tel == "" {
		c.Tel = "02-123-4567"
	}
	if c.TaxID == "" {
		c.TaxID = "0123456789012"
	}
	if c.BankAccount == "" {
		c.BankAccount = "123-4-56789-0"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch c.Storage.Type {
	case StorageLocal:
	case StorageS3:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required when storage.type is s3")
		}
	default:
		return fmt.Errorf("storage.type must be %q or %q, got %q", StorageLocal, StorageS3, c.Storage.Type)
	}

	switch c.Renderer.Engine {
	case EngineChromedp, EngineGofpdf:
	default:
		return fmt.Errorf("renderer.engine must be %q or %q, got %q", EngineChromedp, EngineGofpdf, c.Renderer.Engine)
	}

	switch c.Document.NumberSource {
	case NumberSourceCounter, NumberSourceUUID, NumberSourceDatabase:
	case NumberSourceRedis:
		if !c.Redis.Enabled {
			return fmt.Errorf("document.number_source redis requires redis.enabled")
		}
	default:
		return fmt.Errorf("document.number_source must be one of counter, uuid, redis, database, got %q", c.Document.NumberSource)
	}

	if c.Document.DefaultTaxRate.IsNegative() || c.Document.DefaultTaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("document.default_tax_rate must be between 0 and 1, got %s", c.Document.DefaultTaxRate)
	}
	if !c.Document.MaxAmount.IsPositive() {
		return fmt.Errorf("document.max_amount must be positive")
	}

	if c.RateLimit.Enabled && c.RateLimit.Requests <= 0 {
		return fmt.Errorf("rate_limit.requests must be positive")
	}

	if c.App.Env == "production" {
		if c.Database.Driver == DriverPostgres && c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		for _, origin := range c.CORS.AllowOrigins {
			if origin == "*" && c.CORS.AllowCredentials {
				return fmt.Errorf("cors.allow_origins cannot be '*' with credentials in production")
			}
		}
	}

	if c.Telemetry.Profiling.Enabled && c.Telemetry.Profiling.SpanProfiles && !c.Telemetry.Enabled {
		return fmt.Errorf("telemetry.profiling.span_profiles requires telemetry.enabled")
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN returns the postgres connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
