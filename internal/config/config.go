package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda "dev".
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
		// debug | info | warn | error
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	} `yaml:"server"`

	Storage struct {
		// appwrite | postgres
		Driver   string `yaml:"driver"`
		Appwrite struct {
			Endpoint     string `yaml:"endpoint"`
			ProjectID    string `yaml:"project_id"`
			APIKey       string `yaml:"api_key"`
			DatabaseID   string `yaml:"database_id"`
			CollectionID string `yaml:"collection_id"`
			Timeout      string `yaml:"timeout"`
		} `yaml:"appwrite"`
		Postgres struct {
			DSN             string `yaml:"dsn"`
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	Verify struct {
		// generate: nuevo código en cada invocación (resetea el flag)
		// reuse: reenvía el código ya almacenado
		Policy          string `yaml:"policy"`
		AccountCacheTTL string `yaml:"account_cache_ttl"`
	} `yaml:"verify"`

	Email struct {
		// resend | smtp
		Provider     string `yaml:"provider"`
		From         string `yaml:"from"`
		To           string `yaml:"to"` // destinatario fijo de revisión manual
		TemplatesDir string `yaml:"templates_dir"`
		Resend       struct {
			APIKey  string `yaml:"api_key"`
			BaseURL string `yaml:"base_url"`
			Timeout string `yaml:"timeout"`
		} `yaml:"resend"`
		SMTP struct {
			Host               string `yaml:"host"`
			Port               int    `yaml:"port"`
			Username           string `yaml:"username"`
			Password           string `yaml:"password"`
			TLS                string `yaml:"tls"`                  // auto | starttls | ssl | none
			InsecureSkipVerify bool   `yaml:"insecure_skip_verify"` // sólo dev
		} `yaml:"smtp"`
	} `yaml:"email"`
}

// Load lee el YAML, aplica defaults, overrides de env y valida.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	c.applyEnvOverrides()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// FromEnv arma la config sólo desde variables de entorno (modo -env).
func FromEnv() (*Config, error) {
	var c Config
	c.applyDefaults()
	c.applyEnvOverrides()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	// sane defaults
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "appwrite"
	}
	if c.Storage.Appwrite.Timeout == "" {
		c.Storage.Appwrite.Timeout = "10s"
	}
	if c.Storage.Postgres.MaxOpenConns == 0 {
		c.Storage.Postgres.MaxOpenConns = 5
	}
	if c.Storage.Postgres.MaxIdleConns == 0 {
		c.Storage.Postgres.MaxIdleConns = 2
	}
	if c.Storage.Postgres.ConnMaxLifetime == "" {
		c.Storage.Postgres.ConnMaxLifetime = "30m"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.Cache.Redis.Addr == "" {
		c.Cache.Redis.Addr = "localhost:6379"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "verify:"
	}
	if c.Verify.Policy == "" {
		c.Verify.Policy = "generate"
	}
	if c.Verify.AccountCacheTTL == "" {
		c.Verify.AccountCacheTTL = "1m"
	}
	if c.Email.Provider == "" {
		c.Email.Provider = "resend"
	}
	if c.Email.Resend.BaseURL == "" {
		c.Email.Resend.BaseURL = "https://api.resend.com"
	}
	if c.Email.Resend.Timeout == "" {
		c.Email.Resend.Timeout = "15s"
	}
	if c.Email.SMTP.Port == 0 {
		c.Email.SMTP.Port = 587
	}
	if c.Email.SMTP.TLS == "" {
		c.Email.SMTP.TLS = "auto"
	}
}

// applyEnvOverrides pisa valores con env. Mantiene los nombres del deployment
// original (Appwrite function + Resend) para no romper secrets ya provisionados.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.App.LogLevel = v
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}

	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("APPWRITE_ENDPOINT"); ok {
		c.Storage.Appwrite.Endpoint = v
	}
	if v, ok := getEnvStr("APPWRITE_PROJECT_ID"); ok {
		c.Storage.Appwrite.ProjectID = v
	}
	if v, ok := getEnvStr("APPWRITE_API_KEY"); ok {
		c.Storage.Appwrite.APIKey = v
	}
	if v, ok := getEnvStr("APPWRITE_DATABASE_ID"); ok {
		c.Storage.Appwrite.DatabaseID = v
	}
	if v, ok := getEnvStr("APPWRITE_USER_COLLECTION_ID"); ok {
		c.Storage.Appwrite.CollectionID = v
	}
	if v, ok := getEnvStr("POSTGRES_DSN"); ok {
		c.Storage.Postgres.DSN = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_IDLE_CONNS"); ok {
		c.Storage.Postgres.MaxIdleConns = v
	}

	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}

	if v, ok := getEnvStr("VERIFY_POLICY"); ok {
		c.Verify.Policy = v
	}
	if v, ok := getEnvStr("VERIFY_ACCOUNT_CACHE_TTL"); ok {
		c.Verify.AccountCacheTTL = v
	}

	if v, ok := getEnvStr("EMAIL_PROVIDER"); ok {
		c.Email.Provider = v
	}
	if v, ok := getEnvStr("EMAIL_FROM"); ok {
		c.Email.From = v
	}
	if v, ok := getEnvStr("EMAIL_TO"); ok {
		c.Email.To = v
	}
	if v, ok := getEnvStr("EMAIL_TEMPLATES_DIR"); ok {
		c.Email.TemplatesDir = v
	}
	if v, ok := getEnvStr("RESEND_API_KEY"); ok {
		c.Email.Resend.APIKey = v
	}
	if v, ok := getEnvStr("RESEND_BASE_URL"); ok {
		c.Email.Resend.BaseURL = v
	}
	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.Email.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.Email.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.Email.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.Email.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_TLS"); ok {
		c.Email.SMTP.TLS = v
	}
	if v, ok := getEnvBool("SMTP_INSECURE_SKIP_VERIFY"); ok {
		c.Email.SMTP.InsecureSkipVerify = v
	}
}

// Validate chequea combinaciones requeridas según driver/provider elegidos.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Storage.Driver) {
	case "appwrite":
		aw := c.Storage.Appwrite
		if aw.Endpoint == "" || aw.ProjectID == "" || aw.APIKey == "" {
			return fmt.Errorf("storage.appwrite: endpoint, project_id y api_key son requeridos")
		}
		if aw.DatabaseID == "" || aw.CollectionID == "" {
			return fmt.Errorf("storage.appwrite: database_id y collection_id son requeridos")
		}
	case "postgres":
		if strings.TrimSpace(c.Storage.Postgres.DSN) == "" {
			return fmt.Errorf("storage.postgres.dsn requerido")
		}
	default:
		return fmt.Errorf("storage.driver desconocido: %q", c.Storage.Driver)
	}

	switch strings.ToLower(c.Email.Provider) {
	case "resend":
		if c.Email.Resend.APIKey == "" {
			return fmt.Errorf("email.resend.api_key requerido (RESEND_API_KEY)")
		}
	case "smtp":
		if c.Email.SMTP.Host == "" {
			return fmt.Errorf("email.smtp.host requerido")
		}
	default:
		return fmt.Errorf("email.provider desconocido: %q", c.Email.Provider)
	}
	if c.Email.From == "" || c.Email.To == "" {
		return fmt.Errorf("email.from y email.to son requeridos")
	}

	switch strings.ToLower(c.Verify.Policy) {
	case "generate", "reuse":
	default:
		return fmt.Errorf("verify.policy desconocida: %q (generate|reuse)", c.Verify.Policy)
	}

	switch strings.ToLower(c.Cache.Kind) {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.kind desconocido: %q (memory|redis)", c.Cache.Kind)
	}

	// validate string durations
	for _, d := range []string{
		c.Storage.Appwrite.Timeout,
		c.Storage.Postgres.ConnMaxLifetime,
		c.Cache.Memory.DefaultTTL,
		c.Verify.AccountCacheTTL,
		c.Email.Resend.Timeout,
	} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return err
		}
	}
	return nil
}

// Duration parsea una duración ya validada; devuelve def si falta o es inválida.
func Duration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(s); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvCSV(key string) ([]string, bool) {
	s, ok := getEnvStr(key)
	if !ok {
		return nil, false
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out, true
}
