package node

import (
	"net"

	"github.com/Sovereign-Labs/solana-proofs/codec"
	"github.com/Sovereign-Labs/solana-proofs/types"
)

// serveTCP accepts subscriber connections and serves each one independently.
// A failing subscriber affects nobody else.
func (n *Node) serveTCP(listener net.Listener) {
	defer n.wg.Done()
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-n.quit:
				return
			default:
			}
			n.logger.Warn("Accept failed", "err", err)
			continue
		}
		n.wg.Add(1)
		go n.serveSubscriber(conn)
	}
}

func (n *Node) serveSubscriber(conn net.Conn) {
	defer n.wg.Done()
	defer conn.Close()

	sub := n.hub.subscribe()
	defer sub.Close()

	logger := n.logger.New("subscriber", conn.RemoteAddr())
	logger.Debug("Subscriber connected")

	// Prime a fresh subscriber with the most recent update so it does not
	// have to wait a full slot before seeing data.
	if update, ok := n.latest(); ok {
		if err := n.writeUpdate(conn, update); err != nil {
			logger.Debug("Subscriber write failed", "err", err)
			return
		}
	}

	for {
		select {
		case <-n.quit:
			return
		case update := <-sub.Updates():
			if err := n.writeUpdate(conn, update); err != nil {
				logger.Debug("Subscriber write failed", "err", err)
				return
			}
		}
	}
}

func (n *Node) writeUpdate(conn net.Conn, update *types.Update) error {
	payload, err := codec.Marshal(update)
	if err != nil {
		// An unencodable update is a programming error, not a subscriber
		// condition; log loudly and keep the connection.
		n.logger.Error("Encoding update failed", "slot", update.Slot, "err", err)
		return nil
	}
	return codec.WriteFrame(conn, payload)
}
