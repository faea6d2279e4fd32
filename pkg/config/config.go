package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde
// env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	DB        DBConfig
	JWT       JWTConfig
	HTTP      HTTPConfig
	Redis     RedisConfig
	NATS      NATSConfig
	Catalog   CatalogConfig
	Warehouse WarehouseConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig configuración de PostgreSQL. Si DatabaseURL no está vacío, se usa
// como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para
// caracteres especiales en la contraseña.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
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

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig cache de bodega primaria. Addr vacío desactiva el cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTLSecs  int
}

// NATSConfig listener de eventos de pedidos. URL vacía desactiva el listener.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
	QueueGroup    string
}

// CatalogConfig cliente del catálogo externo. BaseURL vacía desactiva el
// push de stock.
type CatalogConfig struct {
	BaseURL     string
	Token       string
	TimeoutSecs int
}

// WarehouseConfig valores por defecto de la bodega primaria creada en la
// inicialización.
type WarehouseConfig struct {
	PrimaryName string
	PrimarySlug string
}

// Load lee la configuración desde variables de entorno (y opcionalmente
// desde archivo .env / config.env). Las env vars tienen prioridad.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "bodegas-api"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "bodegas"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "bodegas-api"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Redis: RedisConfig{
			Addr:     getString(v, "REDIS_ADDR", ""),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
			TTLSecs:  getInt(v, "REDIS_TTL_SECONDS", 300),
		},
		NATS: NATSConfig{
			URL:           getString(v, "NATS_URL", ""),
			SubjectPrefix: getString(v, "NATS_SUBJECT_PREFIX", "orders.event"),
			QueueGroup:    getString(v, "NATS_QUEUE_GROUP", "bodegas-api"),
		},
		Catalog: CatalogConfig{
			BaseURL:     getString(v, "CATALOG_BASE_URL", ""),
			Token:       getString(v, "CATALOG_TOKEN", ""),
			TimeoutSecs: getInt(v, "CATALOG_TIMEOUT_SECONDS", 5),
		},
		Warehouse: WarehouseConfig{
			PrimaryName: getString(v, "PRIMARY_WAREHOUSE_NAME", "Bodega principal"),
			PrimarySlug: getString(v, "PRIMARY_WAREHOUSE_SLUG", "bodega-principal"),
		},
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
