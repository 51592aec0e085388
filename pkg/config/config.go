package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/portfolio"
	ConfigFileName    = "portfolio.yml"

	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// RequiredVariables are the settings the server refuses to start without.
var RequiredVariables = []string{"JWT_SECRET", "DB_FILE", "FRONTEND_ORIGIN"}

// Config holds all portfolio backend settings
type Config struct {
	// JWTSecret is the HMAC key used to sign session tokens
	JWTSecret string `yaml:"jwt_secret" json:"-"`

	// JWTExpiry is the session token lifetime, e.g. "7d" or "12h"
	JWTExpiry string `yaml:"jwt_expiry" json:"jwt_expiry"`

	// BcryptRounds is the bcrypt cost factor for password hashing
	BcryptRounds int `yaml:"bcrypt_rounds" json:"bcrypt_rounds"`

	// DBFile is the path of the SQLite database file
	DBFile string `yaml:"db_file" json:"db_file"`

	// FrontendOrigins are the origins allowed by CORS
	FrontendOrigins []string `yaml:"frontend_origin" json:"frontend_origin"`

	Port        string `yaml:"port" json:"port"`
	BindAddress string `yaml:"bind_address" json:"bind_address"`

	// Environment is "production" or "development"
	Environment string `yaml:"app_env" json:"app_env"`

	LogLevel   string `yaml:"log_level" json:"log_level"`
	UploadsDir string `yaml:"uploads_dir" json:"uploads_dir"`

	// BackupDir holds snapshots and SQL exports
	BackupDir string `yaml:"backup_dir" json:"backup_dir"`

	// BackupRetention is how many snapshots (and exports) are kept
	BackupRetention int `yaml:"backup_retention" json:"backup_retention"`

	// BackupHour is the local hour of the daily backup
	BackupHour int `yaml:"backup_hour" json:"backup_hour"`

	Email EmailConfig    `yaml:"email" json:"email"`
	S3    BackupS3Config `yaml:"backup_s3" json:"backup_s3"`

	// AuditEnabled toggles the security audit log
	AuditEnabled bool `yaml:"audit_enabled" json:"audit_enabled"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// EmailConfig holds SMTP settings for contact notifications
type EmailConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	User     string `yaml:"user" json:"user"`
	Password string `yaml:"password" json:"-"`
	From     string `yaml:"from" json:"from"`
	To       string `yaml:"to" json:"to"`
}

// Configured reports whether enough SMTP settings are present to send mail
func (e EmailConfig) Configured() bool {
	return e.Host != "" && e.From != "" && e.To != ""
}

// BackupS3Config holds settings for off-site snapshot upload
type BackupS3Config struct {
	Bucket   string `yaml:"bucket" json:"bucket"`
	Prefix   string `yaml:"prefix" json:"prefix"`
	Region   string `yaml:"region" json:"region"`
	Endpoint string `yaml:"endpoint" json:"endpoint"`

	// Static credentials; the AWS default chain is used when empty
	AccessKeyID     string `yaml:"access_key_id" json:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" json:"-"`
}

// Enabled reports whether off-site upload is configured
func (s BackupS3Config) Enabled() bool {
	return s.Bucket != ""
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *Config
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// newDefault returns a config with default values
func newDefault() *Config {
	return &Config{
		JWTExpiry:       "7d",
		BcryptRounds:    10,
		FrontendOrigins: []string{},
		Port:            "8080",
		BindAddress:     "0.0.0.0",
		Environment:     EnvDevelopment,
		LogLevel:        "info",
		UploadsDir:      "./uploads",
		BackupDir:       "./backups",
		BackupRetention: 30,
		BackupHour:      2,
		Email:           EmailConfig{Port: 465},
		AuditEnabled:    true,
		sources:         make(map[string]string),
	}
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*Config, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("PORTFOLIO_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig Config
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	if err := config.applyEnvConfig(); err != nil {
		return nil, err
	}

	return config, nil
}

func attributeNames() []string {
	return []string{
		"jwt_secret", "jwt_expiry", "bcrypt_rounds", "db_file", "frontend_origin",
		"port", "bind_address", "app_env", "log_level", "uploads_dir",
		"backup_dir", "backup_retention", "backup_hour",
		"email_host", "email_port", "email_user", "email_password", "email_from", "email_to",
		"backup_s3_bucket", "backup_s3_prefix", "backup_s3_region", "backup_s3_endpoint",
		"backup_s3_access_key_id", "backup_s3_secret_access_key",
		"audit_enabled",
	}
}

func (c *Config) setString(dst *string, value, name, source string) {
	if value == "" {
		return
	}
	*dst = value
	c.sources[name] = source
}

func (c *Config) applyFileConfig(file *Config) {
	c.setString(&c.JWTSecret, file.JWTSecret, "jwt_secret", "file")
	c.setString(&c.JWTExpiry, file.JWTExpiry, "jwt_expiry", "file")
	c.setString(&c.DBFile, file.DBFile, "db_file", "file")
	c.setString(&c.Port, file.Port, "port", "file")
	c.setString(&c.BindAddress, file.BindAddress, "bind_address", "file")
	c.setString(&c.Environment, file.Environment, "app_env", "file")
	c.setString(&c.LogLevel, file.LogLevel, "log_level", "file")
	c.setString(&c.UploadsDir, file.UploadsDir, "uploads_dir", "file")
	c.setString(&c.BackupDir, file.BackupDir, "backup_dir", "file")
	c.setString(&c.Email.Host, file.Email.Host, "email_host", "file")
	c.setString(&c.Email.User, file.Email.User, "email_user", "file")
	c.setString(&c.Email.Password, file.Email.Password, "email_password", "file")
	c.setString(&c.Email.From, file.Email.From, "email_from", "file")
	c.setString(&c.Email.To, file.Email.To, "email_to", "file")
	c.setString(&c.S3.Bucket, file.S3.Bucket, "backup_s3_bucket", "file")
	c.setString(&c.S3.Prefix, file.S3.Prefix, "backup_s3_prefix", "file")
	c.setString(&c.S3.Region, file.S3.Region, "backup_s3_region", "file")
	c.setString(&c.S3.Endpoint, file.S3.Endpoint, "backup_s3_endpoint", "file")
	c.setString(&c.S3.AccessKeyID, file.S3.AccessKeyID, "backup_s3_access_key_id", "file")
	c.setString(&c.S3.SecretAccessKey, file.S3.SecretAccessKey, "backup_s3_secret_access_key", "file")

	if len(file.FrontendOrigins) > 0 {
		c.FrontendOrigins = file.FrontendOrigins
		c.sources["frontend_origin"] = "file"
	}
	if file.BcryptRounds != 0 {
		c.BcryptRounds = file.BcryptRounds
		c.sources["bcrypt_rounds"] = "file"
	}
	if file.BackupRetention != 0 {
		c.BackupRetention = file.BackupRetention
		c.sources["backup_retention"] = "file"
	}
	if file.BackupHour != 0 {
		c.BackupHour = file.BackupHour
		c.sources["backup_hour"] = "file"
	}
	if file.Email.Port != 0 {
		c.Email.Port = file.Email.Port
		c.sources["email_port"] = "file"
	}
}

func (c *Config) applyEnvConfig() error {
	c.setString(&c.JWTSecret, os.Getenv("JWT_SECRET"), "jwt_secret", "environment")
	c.setString(&c.JWTExpiry, os.Getenv("JWT_EXPIRY"), "jwt_expiry", "environment")
	c.setString(&c.DBFile, os.Getenv("DB_FILE"), "db_file", "environment")
	c.setString(&c.Port, os.Getenv("PORT"), "port", "environment")
	c.setString(&c.BindAddress, os.Getenv("BIND_ADDRESS"), "bind_address", "environment")
	c.setString(&c.Environment, os.Getenv("APP_ENV"), "app_env", "environment")
	c.setString(&c.LogLevel, os.Getenv("LOG_LEVEL"), "log_level", "environment")
	c.setString(&c.UploadsDir, os.Getenv("UPLOADS_DIR"), "uploads_dir", "environment")
	c.setString(&c.BackupDir, os.Getenv("BACKUP_DIR"), "backup_dir", "environment")
	c.setString(&c.Email.Host, os.Getenv("EMAIL_HOST"), "email_host", "environment")
	c.setString(&c.Email.User, os.Getenv("EMAIL_USER"), "email_user", "environment")
	c.setString(&c.Email.Password, os.Getenv("EMAIL_PASSWORD"), "email_password", "environment")
	c.setString(&c.Email.From, os.Getenv("EMAIL_FROM"), "email_from", "environment")
	c.setString(&c.Email.To, os.Getenv("EMAIL_TO"), "email_to", "environment")
	c.setString(&c.S3.Bucket, os.Getenv("BACKUP_S3_BUCKET"), "backup_s3_bucket", "environment")
	c.setString(&c.S3.Prefix, os.Getenv("BACKUP_S3_PREFIX"), "backup_s3_prefix", "environment")
	c.setString(&c.S3.Region, os.Getenv("BACKUP_S3_REGION"), "backup_s3_region", "environment")
	c.setString(&c.S3.Endpoint, os.Getenv("BACKUP_S3_ENDPOINT"), "backup_s3_endpoint", "environment")
	c.setString(&c.S3.AccessKeyID, os.Getenv("BACKUP_S3_ACCESS_KEY_ID"), "backup_s3_access_key_id", "environment")
	c.setString(&c.S3.SecretAccessKey, os.Getenv("BACKUP_S3_SECRET_ACCESS_KEY"), "backup_s3_secret_access_key", "environment")

	if val := os.Getenv("FRONTEND_ORIGIN"); val != "" {
		c.FrontendOrigins = splitAndTrim(val)
		c.sources["frontend_origin"] = "environment"
	}

	ints := []struct {
		env  string
		name string
		dst  *int
	}{
		{"BCRYPT_ROUNDS", "bcrypt_rounds", &c.BcryptRounds},
		{"BACKUP_RETENTION", "backup_retention", &c.BackupRetention},
		{"BACKUP_HOUR", "backup_hour", &c.BackupHour},
		{"EMAIL_PORT", "email_port", &c.Email.Port},
	}
	for _, v := range ints {
		val := os.Getenv(v.env)
		if val == "" {
			continue
		}
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", v.env, val, err)
		}
		*v.dst = i
		c.sources[v.name] = "environment"
	}

	if val := os.Getenv("AUDIT_ENABLED"); val != "" {
		c.AuditEnabled = val != "false" && val != "0" && val != "no"
		c.sources["audit_enabled"] = "environment"
	}
	return nil
}

// ConfigFilePath returns the path to the config file
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// IsProduction reports whether the process runs with APP_ENV=production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// IsDevelopment reports whether the process runs with APP_ENV=development
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// TokenTTL parses JWTExpiry. A trailing "d" is read as days, anything else
// must be a Go duration string.
func (c *Config) TokenTTL() (time.Duration, error) {
	return ParseExpiry(c.JWTExpiry)
}

// ParseExpiry parses expiry strings such as "7d", "36h" or "90m".
func ParseExpiry(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty expiry")
	}
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || days <= 0 {
			return 0, fmt.Errorf("invalid expiry %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid expiry %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid expiry %q", s)
	}
	return d, nil
}

// IsAllowedOrigin checks an Origin header against FrontendOrigins.
// Every origin is allowed in development.
func (c *Config) IsAllowedOrigin(origin string) bool {
	if c.IsDevelopment() {
		return true
	}
	for _, o := range c.FrontendOrigins {
		if o == origin {
			return true
		}
	}
	return false
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.DBFile == "" {
		missing = append(missing, "DB_FILE")
	}
	if len(c.FrontendOrigins) == 0 {
		missing = append(missing, "FRONTEND_ORIGIN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variable(s): %s", strings.Join(missing, ", "))
	}

	if _, err := c.TokenTTL(); err != nil {
		return fmt.Errorf("invalid JWT_EXPIRY: %w", err)
	}
	if c.BackupRetention < 1 {
		return fmt.Errorf("invalid BACKUP_RETENTION: must be at least 1, got %d", c.BackupRetention)
	}
	if c.BackupHour < 0 || c.BackupHour > 23 {
		return fmt.Errorf("invalid BACKUP_HOUR: must be between 0 and 23, got %d", c.BackupHour)
	}
	if c.Environment != EnvProduction && c.Environment != EnvDevelopment && c.Environment != "test" {
		return fmt.Errorf("invalid APP_ENV: %s", c.Environment)
	}

	return nil
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}

// Attributes returns all configuration attributes with their values and sources.
// Secrets are masked.
func (c *Config) Attributes() []Attribute {
	return []Attribute{
		{Name: "jwt_secret", Value: mask(c.JWTSecret), Source: c.Source("jwt_secret")},
		{Name: "jwt_expiry", Value: c.JWTExpiry, Source: c.Source("jwt_expiry")},
		{Name: "bcrypt_rounds", Value: strconv.Itoa(c.BcryptRounds), Source: c.Source("bcrypt_rounds")},
		{Name: "db_file", Value: c.DBFile, Source: c.Source("db_file")},
		{Name: "frontend_origin", Value: strings.Join(c.FrontendOrigins, ","), Source: c.Source("frontend_origin")},
		{Name: "port", Value: c.Port, Source: c.Source("port")},
		{Name: "bind_address", Value: c.BindAddress, Source: c.Source("bind_address")},
		{Name: "app_env", Value: c.Environment, Source: c.Source("app_env")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "uploads_dir", Value: c.UploadsDir, Source: c.Source("uploads_dir")},
		{Name: "backup_dir", Value: c.BackupDir, Source: c.Source("backup_dir")},
		{Name: "backup_retention", Value: strconv.Itoa(c.BackupRetention), Source: c.Source("backup_retention")},
		{Name: "backup_hour", Value: strconv.Itoa(c.BackupHour), Source: c.Source("backup_hour")},
		{Name: "email_host", Value: c.Email.Host, Source: c.Source("email_host")},
		{Name: "email_port", Value: strconv.Itoa(c.Email.Port), Source: c.Source("email_port")},
		{Name: "email_user", Value: c.Email.User, Source: c.Source("email_user")},
		{Name: "email_password", Value: mask(c.Email.Password), Source: c.Source("email_password")},
		{Name: "email_from", Value: c.Email.From, Source: c.Source("email_from")},
		{Name: "email_to", Value: c.Email.To, Source: c.Source("email_to")},
		{Name: "backup_s3_bucket", Value: c.S3.Bucket, Source: c.Source("backup_s3_bucket")},
		{Name: "backup_s3_prefix", Value: c.S3.Prefix, Source: c.Source("backup_s3_prefix")},
		{Name: "backup_s3_region", Value: c.S3.Region, Source: c.Source("backup_s3_region")},
		{Name: "backup_s3_endpoint", Value: c.S3.Endpoint, Source: c.Source("backup_s3_endpoint")},
		{Name: "backup_s3_access_key_id", Value: c.S3.AccessKeyID, Source: c.Source("backup_s3_access_key_id")},
		{Name: "backup_s3_secret_access_key", Value: mask(c.S3.SecretAccessKey), Source: c.Source("backup_s3_secret_access_key")},
		{Name: "audit_enabled", Value: strconv.FormatBool(c.AuditEnabled), Source: c.Source("audit_enabled")},
	}
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-24s %-40s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-24s %-40s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-24s %-40s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
