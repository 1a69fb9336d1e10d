package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// NatsServer embeds a NATS server and holds one internal client
// connection that carries all replication traffic for the process.
// It satisfies the replication layer's Bus interface.
type NatsServer struct {
	ns   *server.Server
	conn *nats.Conn

	startupTimeout time.Duration
	host           string
	port           int

	// ready is closed once the internal connection is live. Consumers
	// wait on it instead of racing worker startup order.
	ready chan struct{}
}

func NewNatsServer(opts ...NatsServerOpt) (*NatsServer, error) {
	s := &NatsServer{
		startupTimeout: 10 * time.Second,
		host:           "127.0.0.1",
		ready:          make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	ns, err := server.NewServer(&server.Options{
		Host:   s.host,
		Port:   s.port,
		NoSigs: true, // Let the application handle signals
	})
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	s.ns = ns

	return s, nil
}

// Start runs the embedded server until ctx is cancelled. The ready
// channel closes once the internal client connection is established.
func (n *NatsServer) Start(ctx context.Context) error {
	n.ns.Start()
	defer func() {
		n.ns.Shutdown()
		n.ns.WaitForShutdown()
	}()

	if !n.ns.ReadyForConnections(n.startupTimeout) {
		return fmt.Errorf("nats server not ready for connections")
	}

	conn, err := nats.Connect(fmt.Sprintf("nats://%s:%d", n.host, n.port))
	if err != nil {
		return fmt.Errorf("creating nats client connection: %w", err)
	}
	defer conn.Close()

	n.conn = conn
	close(n.ready)

	slog.InfoContext(ctx, "message bus listening", "addr", n.ns.Addr())

	<-ctx.Done()
	return nil
}

// Ready returns a channel closed once subjects accept traffic.
func (n *NatsServer) Ready() <-chan struct{} {
	return n.ready
}

// Subscribe registers handler for every message on subject and returns
// the function that removes the subscription.
func (n *NatsServer) Subscribe(subject string, handler func(data []byte)) (func(), error) {
	if n.conn == nil {
		return nil, fmt.Errorf("message bus not started")
	}

	sub, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribing to %q: %w", subject, err)
	}
	return func() { sub.Unsubscribe() }, nil
}

// Publish sends one message on subject.
func (n *NatsServer) Publish(subject string, data []byte) error {
	if n.conn == nil {
		return fmt.Errorf("message bus not started")
	}
	return n.conn.Publish(subject, data)
}
