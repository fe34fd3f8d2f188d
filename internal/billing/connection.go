// Package billing persists translated call events as call detail
// records, for deployments that want a historical log beyond whatever
// the live sinks show. It is entirely optional: the engine does not
// depend on it, and a deployment with Billing.Enabled=false never
// touches a database.
package billing

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"calltranslator/internal/config"
)

// Connection maneja el pool de conexiones a la base de datos
type Connection struct {
	DB *sql.DB
}

// NewConnection crea una nueva conexión a la base de datos
func NewConnection(cfg config.BillingConfig) (*Connection, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("billing: error abriendo conexión: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("billing: error conectando a la base de datos: %w", err)
	}

	return &Connection{DB: db}, nil
}

// Close cierra la conexión a la base de datos
func (c *Connection) Close() error {
	return c.DB.Close()
}

// schema is applied defensively by EnsureSchema, mirroring the
// auto-provisioning the rest of the stack does at startup rather than
// requiring an out-of-band migration step.
const schema = `
CREATE TABLE IF NOT EXISTS call_events (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	call_id VARCHAR(64) NOT NULL,
	kind VARCHAR(32) NOT NULL,
	caller_number VARCHAR(64),
	to_number VARCHAR(64),
	counterpart_number VARCHAR(64),
	reason VARCHAR(32),
	merged_id VARCHAR(64),
	recorded_at DATETIME NOT NULL,
	INDEX idx_call_id (call_id),
	INDEX idx_recorded_at (recorded_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
`

// EnsureSchema creates the call_events table if it does not exist yet.
func (c *Connection) EnsureSchema() error {
	_, err := c.DB.Exec(schema)
	if err != nil {
		return fmt.Errorf("billing: error creando esquema: %w", err)
	}
	return nil
}
