package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config estructura principal de configuración
type Config struct {
	AMI      AMIConfig      `yaml:"ami"`
	Replay   ReplayConfig   `yaml:"replay"`
	Reporter ReporterConfig `yaml:"reporter"`
	API      APIConfig      `yaml:"api"`
	Auth     AuthConfig     `yaml:"auth"`
	Billing  BillingConfig  `yaml:"billing"`
}

// AMIConfig es la conexión al Asterisk Manager Interface de la que el
// traductor de eventos consume.
type AMIConfig struct {
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	Username          string `yaml:"username"`
	Secret            string `yaml:"secret"`
	ReconnectInterval int    `yaml:"reconnect_interval"`
}

// ReplayConfig controla el modo de reproducción desde archivo, usado
// para pruebas y depuración sin un Asterisk real.
type ReplayConfig struct {
	Path string `yaml:"path"`
	// Speed escala el tiempo entre eventos grabados; 0 reproduce tan
	// rápido como sea posible, sin dormir entre eventos.
	Speed float64 `yaml:"speed"`
}

// ReporterConfig controla el nivel y formato de la traza estructurada.
type ReporterConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// APIConfig es el servidor HTTP de solo-lectura que expone el estado
// del traductor (salud, estadísticas, últimos eventos).
type APIConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	EnableCORS bool   `yaml:"enable_cors"`
}

// AuthConfig protege las rutas administrativas de la API (por ahora
// sólo /admin/reconnect).
type AuthConfig struct {
	SecretKey string `yaml:"secret_key"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"` // bcrypt hash
}

// BillingConfig es la base de datos opcional de registro de eventos de
// llamada (CDR), para despliegues que quieran persistir el historial.
type BillingConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// Load carga la configuración desde archivo YAML
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error leyendo archivo de configuración: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parseando YAML: %w", err)
	}

	overrideWithEnv(cfg)

	return cfg, nil
}

// Default devuelve una configuración con valores razonables para
// desarrollo local y modo replay.
func Default() *Config {
	return &Config{
		AMI: AMIConfig{
			Host:              "127.0.0.1",
			Port:              5038,
			ReconnectInterval: 5,
		},
		Reporter: ReporterConfig{
			Level:  "info",
			Format: "console",
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
	}
}

// overrideWithEnv permite sobrescribir configuración con variables de entorno
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("CALLTRANSLATOR_AMI_HOST"); v != "" {
		cfg.AMI.Host = v
	}
	if v := os.Getenv("CALLTRANSLATOR_AMI_USERNAME"); v != "" {
		cfg.AMI.Username = v
	}
	if v := os.Getenv("CALLTRANSLATOR_AMI_SECRET"); v != "" {
		cfg.AMI.Secret = v
	}
	if v := os.Getenv("CALLTRANSLATOR_REPLAY_PATH"); v != "" {
		cfg.Replay.Path = v
	}
	if v := os.Getenv("CALLTRANSLATOR_LOG_LEVEL"); v != "" {
		cfg.Reporter.Level = v
	}
	if v := os.Getenv("CALLTRANSLATOR_DB_USERNAME"); v != "" {
		cfg.Billing.Username = v
	}
	if v := os.Getenv("CALLTRANSLATOR_DB_PASSWORD"); v != "" {
		cfg.Billing.Password = v
	}
	if v := os.Getenv("CALLTRANSLATOR_DB_HOST"); v != "" {
		cfg.Billing.Host = v
	}
	if v := os.Getenv("CALLTRANSLATOR_DB_DATABASE"); v != "" {
		cfg.Billing.Database = v
	}
	if v := os.Getenv("CALLTRANSLATOR_AUTH_SECRET"); v != "" {
		cfg.Auth.SecretKey = v
	}
}

// Address devuelve la dirección completa del servidor AMI
func (a AMIConfig) Address() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// Address devuelve la dirección completa del servidor API
func (a APIConfig) Address() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// DSN devuelve el Data Source Name para MySQL
func (b BillingConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		b.Username, b.Password, b.Host, b.Port, b.Database)
}
