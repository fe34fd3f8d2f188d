package ami

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"calltranslator/internal/config"
	"calltranslator/internal/core"
	"calltranslator/internal/transport"
)

// Client is a live AMI transport: it holds one TCP connection to
// Asterisk, authenticates, and feeds every event it reads to a
// transport.Dispatcher until the connection dies or the context is
// cancelled. On disconnect it reconnects with a fixed backoff rather
// than giving up, since a momentary Asterisk restart should not kill
// the translator.
type Client struct {
	config *config.AMIConfig

	mu        sync.Mutex
	conn      net.Conn
	reader    *bufio.Reader
	writer    *bufio.Writer
	connected bool
}

// NewClient crea un nuevo cliente AMI
func NewClient(cfg *config.AMIConfig) *Client {
	return &Client{config: cfg}
}

// Run implements transport.Runner. It connects, authenticates, and
// then reads events until ctx is cancelled, reconnecting on I/O errors
// in between.
func (c *Client) Run(ctx context.Context, dispatch transport.Dispatcher) error {
	for {
		if err := c.connect(); err != nil {
			if !sleepOrDone(ctx, c.reconnectDelay()) {
				return ctx.Err()
			}
			continue
		}

		err := c.readEvents(ctx, dispatch)
		c.closeConn()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil && !sleepOrDone(ctx, c.reconnectDelay()) {
			return ctx.Err()
		}
	}
}

func (c *Client) reconnectDelay() time.Duration {
	n := c.config.ReconnectInterval
	if n <= 0 {
		n = 5
	}
	return time.Duration(n) * time.Second
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// connect establece conexión con el AMI y autentica.
func (c *Client) connect() error {
	addr := c.config.Address()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("ami: error conectando a %s: %w", addr, err)
	}

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	// Leer banner inicial
	if _, err := reader.ReadString('\n'); err != nil {
		conn.Close()
		return fmt.Errorf("ami: error leyendo banner: %w", err)
	}

	c.mu.Lock()
	c.conn, c.reader, c.writer = conn, reader, writer
	c.mu.Unlock()

	if err := c.login(); err != nil {
		c.closeConn()
		return err
	}

	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()

	return nil
}

// login autentica con el servidor AMI
func (c *Client) login() error {
	action := fmt.Sprintf("Action: Login\r\nUsername: %s\r\nSecret: %s\r\n\r\n",
		c.config.Username, c.config.Secret)

	if err := c.writeRaw(action); err != nil {
		return err
	}

	response, err := c.readOne()
	if err != nil {
		return err
	}

	if response["Response"] != "Success" {
		return fmt.Errorf("ami: login fallido: %s", response["Message"])
	}
	return nil
}

// readOne lee un bloque completo "Key: Value\r\n" terminado por línea vacía.
func (c *Client) readOne() (core.RawEvent, error) {
	fields := make(core.RawEvent)

	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if len(fields) == 0 {
				continue
			}
			break
		}

		parts := strings.SplitN(line, ": ", 2)
		if len(parts) == 2 {
			fields[parts[0]] = parts[1]
		}
	}

	return fields, nil
}

// readEvents lee eventos continuamente y los entrega al dispatcher,
// hasta que ctx se cancele o la lectura falle.
func (c *Client) readEvents(ctx context.Context, dispatch transport.Dispatcher) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		event, err := c.readOne()
		if err != nil {
			return err
		}
		dispatch.Dispatch(event)
	}
}

func (c *Client) writeRaw(s string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writer == nil {
		return fmt.Errorf("ami: no conectado")
	}
	if _, err := c.writer.WriteString(s); err != nil {
		return err
	}
	return c.writer.Flush()
}

// SendAction envía una acción arbitraria al AMI.
func (c *Client) SendAction(action string) error {
	return c.writeRaw(action)
}

// Ping envía la acción Ping.
func (c *Client) Ping() error {
	return c.SendAction("Action: Ping\r\n\r\n")
}

func (c *Client) closeConn() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.connected = false
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// Connected reports whether the client currently holds a live connection.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Close cierra la conexión actual. No detiene Run: la lectura falla y
// Run vuelve a conectar tras el intervalo de reconexión.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
