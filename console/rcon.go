package console

import (
	"sync"
	"time"

	"github.com/gorcon/rcon"
	"github.com/rs/zerolog/log"
)

// Client runs a remote-console command and returns its raw output.
type Client interface {
	Command(cmd string) (string, error)
}

// conn is the part of *rcon.Conn the client uses.
type conn interface {
	Execute(command string) (string, error)
	Close() error
}

type dialFunc func(addr, password string) (conn, error)

// RCON is a Client over a Minecraft RCON connection. Commands are serialized
// and a dropped connection is re-dialled once per command.
type RCON struct {
	addr     string
	password string
	dial     dialFunc

	mu   sync.Mutex
	conn conn
}

const dialTimeout = 5 * time.Second

func dialRCON(addr, password string) (conn, error) {
	c, err := rcon.Dial(addr, password, rcon.SetDialTimeout(dialTimeout))
	if err != nil {
		return nil, err
	}
	return c, nil
}

// New returns a client that dials lazily on its first command.
func New(addr, password string) *RCON {
	return &RCON{addr: addr, password: password, dial: dialRCON}
}

// Connect dials now if no connection is open.
func (c *RCON) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return nil
	}
	return c.connect()
}

func (c *RCON) connect() error {
	conn, err := c.dial(c.addr, c.password)
	if err != nil {
		return err
	}
	c.conn = conn
	return nil
}

func (c *RCON) Command(cmd string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if err := c.connect(); err != nil {
			return "", err
		}
	}
	out, err := c.conn.Execute(cmd)
	if err == nil {
		return out, nil
	}

	log.Warn().Err(err).Str("component", "console").Str("command", cmd).Msg("rcon command failed, reconnecting")
	c.conn.Close()
	c.conn = nil
	if err := c.connect(); err != nil {
		return "", err
	}
	return c.conn.Execute(cmd)
}

func (c *RCON) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
