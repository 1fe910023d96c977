package syncd

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/fathomdive/fathom/internal/database"
)

// Client frames logbook data for the sync daemon's wire protocol.
// It is used by the CLI and by other tools that submit dives.
type Client struct {
	conn    net.Conn
	timeout time.Duration
}

// Dial connects to a running sync daemon. addr is either a host:port
// pair or a unix socket path, matching the daemon's listen address.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	network := "unix"
	if isTCPAddr(addr) {
		network = "tcp"
	}

	conn, err := net.DialTimeout(network, addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("dialing sync daemon at %s: %w", addr, err)
	}
	return &Client{conn: conn, timeout: timeout}, nil
}

// Close terminates the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// SendDive submits a single logbook entry.
func (c *Client) SendDive(dive *database.Dive) error {
	return c.send(MsgDive, dive)
}

// SendFeedback submits a single feedback record.
func (c *Client) SendFeedback(fb *database.Feedback) error {
	return c.send(MsgFeedback, fb)
}

// SendBatch submits dives and feedback in one journaled message.
func (c *Client) SendBatch(batch *BatchMessage) error {
	return c.send(MsgBatch, batch)
}

// send frames a payload as [1 byte type][4 bytes length][JSON] and
// waits for the daemon's ACK byte.
func (c *Client) send(msgType MessageType, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}
	if len(data) > maxPayloadSize {
		return fmt.Errorf("payload exceeds %d bytes", maxPayloadSize)
	}

	frame := make([]byte, 5+len(data))
	frame[0] = byte(msgType)
	binary.BigEndian.PutUint32(frame[1:5], uint32(len(data)))
	copy(frame[5:], data)

	if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return err
	}
	if _, err := c.conn.Write(frame); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}

	ack := make([]byte, 1)
	if _, err := c.conn.Read(ack); err != nil {
		return fmt.Errorf("waiting for ack: %w", err)
	}
	if ack[0] != 0x00 {
		return fmt.Errorf("daemon rejected message (ack 0x%02x)", ack[0])
	}
	return nil
}
