// Package client consumes finalized slot updates from a proof node and
// verifies them locally. It speaks the framed binary stream over TCP and the
// JSON envelope over websocket; both carry the same types.Update payload.
package client

import (
	"net"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/Sovereign-Labs/solana-proofs/codec"
	"github.com/Sovereign-Labs/solana-proofs/types"
)

// DefaultDialTimeout bounds connection establishment.
const DefaultDialTimeout = 10 * time.Second

// Client reads updates from a proof node's framed TCP stream.
type Client struct {
	conn   net.Conn
	logger log.Logger
}

// Dial connects to a proof node's TCP publisher.
func Dial(address string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", address, DefaultDialTimeout)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", address)
	}
	return &Client{
		conn:   conn,
		logger: log.New("component", "proofclient"),
	}, nil
}

// ReadUpdate blocks until the next update frame arrives and decodes it.
// io.EOF is returned unchanged when the node closes the stream between
// frames; a frame cut short mid-payload decodes as an error.
func (c *Client) ReadUpdate() (*types.Update, error) {
	payload, err := codec.ReadFrame(c.conn)
	if err != nil {
		return nil, err
	}
	var update types.Update
	if err := codec.Unmarshal(payload, &update); err != nil {
		return nil, errors.Wrap(err, "decoding update frame")
	}
	return &update, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// WSClient reads updates from a proof node's websocket publisher.
type WSClient struct {
	conn *websocket.Conn
}

type wsEnvelope struct {
	Method string        `json:"method"`
	Result *types.Update `json:"result"`
}

// DialWS connects to a proof node's websocket endpoint, e.g.
// ws://127.0.0.1:10001/ws.
func DialWS(url string) (*WSClient, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", url)
	}
	return &WSClient{conn: conn}, nil
}

// ReadUpdate blocks until the next update envelope arrives.
func (c *WSClient) ReadUpdate() (*types.Update, error) {
	var env wsEnvelope
	if err := c.conn.ReadJSON(&env); err != nil {
		return nil, err
	}
	if env.Result == nil {
		return nil, errors.Errorf("envelope %q carries no update", env.Method)
	}
	return env.Result, nil
}

func (c *WSClient) Close() error {
	return c.conn.Close()
}
