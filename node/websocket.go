package node

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// SubUpdates is the envelope method name for update notifications on the
// websocket endpoint.
const SubUpdates = "subscribeUpdates"

type wsEnvelope struct {
	Method string      `json:"method"`
	Result interface{} `json:"result"`
}

type wsServer struct {
	node     *Node
	server   *http.Server
	listener net.Listener
	upgrader websocket.Upgrader
}

// startWebsocket serves JSON-encoded updates at /ws for consumers that
// prefer a self-describing feed over the framed binary stream.
func (n *Node) startWebsocket() error {
	listener, err := net.Listen("tcp", n.wsBindAddress)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", n.wsBindAddress)
	}

	ws := &wsServer{node: n, listener: listener}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", ws.handle)
	ws.server = &http.Server{Handler: mux}
	n.ws = ws

	n.logger.Info("Serving websocket updates", "addr", listener.Addr())
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		_ = ws.server.Serve(listener)
	}()
	return nil
}

// WSAddr returns the bound websocket listener address, or nil when the
// websocket server is disabled.
func (n *Node) WSAddr() net.Addr {
	if n.ws == nil {
		return nil
	}
	return n.ws.listener.Addr()
}

func (n *Node) stopWebsocket() {
	if n.ws != nil {
		n.ws.server.Close()
	}
}

func (ws *wsServer) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.node.logger.Debug("Websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	sub := ws.node.hub.subscribe()
	defer sub.Close()

	if update, ok := ws.node.latest(); ok {
		if err := conn.WriteJSON(wsEnvelope{Method: SubUpdates, Result: update}); err != nil {
			return
		}
	}

	for {
		select {
		case <-ws.node.quit:
			return
		case update := <-sub.Updates():
			if err := conn.WriteJSON(wsEnvelope{Method: SubUpdates, Result: update}); err != nil {
				return
			}
		}
	}
}
