package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config configuración completa del servicio.
type Config struct {
	App        AppConfig
	DB         DBConfig
	JWT        JWTConfig
	HTTP       HTTPConfig
	Storage    StorageConfig
	Migrations MigrationsConfig
	Bidding    BiddingConfig
	Drafts     DraftsConfig
	Metrics    MetricsConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string // trace, debug, info, warn, error
}

// IsDevelopment indica si corre en modo desarrollo (habilita /api/auth/token).
func (c AppConfig) IsDevelopment() bool { return c.Env == "development" }

// DBConfig conexión PostgreSQL, por URL completa o por partes.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
	MinConns    int
}

// ConnectionString prefiere DATABASE_URL sobre el DSN armado por partes.
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN arma la URL postgres; usuario y contraseña van escapados.
func (c DBConfig) DSN() string {
	q := url.Values{"sslmode": []string{c.SSLMode}}
	return (&url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.DBName,
		RawQuery: q.Encode(),
	}).String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

func (c HTTPConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Drivers de almacenamiento soportados.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// StorageConfig elige el backend de persistencia. memory no persiste entre reinicios.
type StorageConfig struct {
	Driver string
}

// MigrationsConfig origen de las migraciones SQL (golang-migrate).
type MigrationsConfig struct {
	URL  string // ej. file://migrations
	Auto bool   // aplicar al arrancar
}

// BiddingConfig reglas de negocio configurables.
type BiddingConfig struct {
	EnforceDeadline bool // rechazar ofertas después del día del plazo
}

// DraftsConfig borradores de formularios en memoria.
type DraftsConfig struct {
	TTLMinutes int
}

// MetricsConfig exposición Prometheus.
type MetricsConfig struct {
	Enabled   bool
	Namespace string
}

// Validate revisa combinaciones que impedirían arrancar.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER inválido: %q (postgres o memory)", c.Storage.Driver)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET es requerido")
	}
	if c.JWT.Expiration <= 0 {
		return fmt.Errorf("JWT_EXPIRATION_MINUTES debe ser mayor que 0")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP_PORT fuera de rango: %d", c.HTTP.Port)
	}
	return nil
}

// defaults valores usados cuando ni el entorno ni el archivo definen la clave.
var defaults = map[string]any{
	"APP_ENV":                  "development",
	"APP_NAME":                 "cotizaciones-api",
	"LOG_LEVEL":                "info",
	"DATABASE_URL":             "",
	"DB_HOST":                  "localhost",
	"DB_PORT":                  5432,
	"DB_USER":                  "postgres",
	"DB_PASSWORD":              "",
	"DB_NAME":                  "cotizaciones",
	"DB_SSLMODE":               "disable",
	"DB_MAX_CONNS":             25,
	"DB_MIN_CONNS":             2,
	"JWT_SECRET":               "",
	"JWT_EXPIRATION_MINUTES":   60,
	"JWT_ISSUER":               "cotizaciones-api",
	"HTTP_HOST":                "0.0.0.0",
	"HTTP_PORT":                8080,
	"STORAGE_DRIVER":           StoragePostgres,
	"MIGRATIONS_URL":           "file://migrations",
	"MIGRATIONS_AUTO":          true,
	"BIDDING_ENFORCE_DEADLINE": true,
	"DRAFT_TTL_MINUTES":        120,
	"METRICS_ENABLED":          true,
	"METRICS_NAMESPACE":        "cotizaciones",
}

// configFiles archivos opcionales en formato env, en orden de búsqueda.
var configFiles = []string{".env", "config.env", "config/config.env"}

// Load lee la configuración. Prioridad: variables de entorno, luego el primer archivo
// de configFiles que exista, luego defaults.
func Load() (*Config, error) {
	v := viper.New()
	for k, def := range defaults {
		v.SetDefault(k, def)
	}
	v.SetConfigType("env")
	for _, f := range configFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		v.SetConfigFile(f)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("leer %s: %w", f, err)
		}
		break
	}
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("APP_ENV"),
			Name:     v.GetString("APP_NAME"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		DB: DBConfig{
			DatabaseURL: v.GetString("DATABASE_URL"),
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetInt("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			DBName:      v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			MaxConns:    v.GetInt("DB_MAX_CONNS"),
			MinConns:    v.GetInt("DB_MIN_CONNS"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("JWT_SECRET"),
			Expiration: v.GetInt("JWT_EXPIRATION_MINUTES"),
			Issuer:     v.GetString("JWT_ISSUER"),
		},
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER"))),
		},
		Migrations: MigrationsConfig{
			URL:  v.GetString("MIGRATIONS_URL"),
			Auto: v.GetBool("MIGRATIONS_AUTO"),
		},
		Bidding: BiddingConfig{
			EnforceDeadline: v.GetBool("BIDDING_ENFORCE_DEADLINE"),
		},
		Drafts: DraftsConfig{
			TTLMinutes: v.GetInt("DRAFT_TTL_MINUTES"),
		},
		Metrics: MetricsConfig{
			Enabled:   v.GetBool("METRICS_ENABLED"),
			Namespace: v.GetString("METRICS_NAMESPACE"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
