// Package client implements the sending side: a bounded packet queue
// drained over one TCP connection with automatic reconnect.
package client

import (
	"bufio"
	"net"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"

	"github.com/softkvm/softkvm/helpers"
	"github.com/softkvm/softkvm/log2"
	"github.com/softkvm/softkvm/wire"
)

const (
	// QueueCapacity bounds memory during server outages. Once full the
	// capture pipeline blocks, it does not drop silently.
	QueueCapacity = 1000

	dialTimeout    = 5 * time.Second
	writeTimeout   = 10 * time.Second
	reconnectDelay = 1 * time.Second
)

type Transport struct {
	alive *alive.Alive
	log   *log2.Log
	addr  string
	queue chan *wire.Packet

	conn net.Conn
	w    *bufio.Writer
	bo   helpers.Backoff
}

func NewTransport(a *alive.Alive, log *log2.Log, addr string) *Transport {
	return &Transport{
		alive: a,
		log:   log,
		addr:  addr,
		queue: make(chan *wire.Packet, QueueCapacity),
		bo:    helpers.Backoff{Min: 100 * time.Millisecond, Max: 5 * time.Second, K: 2},
	}
}

// Send enqueues one packet for delivery. Blocks when the queue is full
// until the sender loop catches up or the transport stops.
func (t *Transport) Send(p *wire.Packet) {
	select {
	case t.queue <- p:
	case <-t.alive.StopChan():
	}
}

func (t *Transport) Start() error {
	if !t.alive.Add(1) {
		return errors.Errorf("transport is stopping")
	}
	go t.run()
	return nil
}

func (t *Transport) run() {
	defer t.alive.Done()
	defer t.disconnect()
	stopch := t.alive.StopChan()
	for {
		select {
		case <-stopch:
			return
		case p := <-t.queue:
			t.deliver(p, stopch)
		}
	}
}

// deliver writes one packet, connecting first if needed. On a write
// failure the packet is lost; one immediate reconnect is attempted so the
// next packet finds a fresh connection, and a failed reconnect backs off
// for a fixed delay to avoid hammering a dead server.
func (t *Transport) deliver(p *wire.Packet, stopch <-chan struct{}) {
	if t.conn == nil {
		if !t.waitConnect(stopch) {
			return
		}
	}
	err := t.send(p)
	if err == nil {
		return
	}
	t.log.Errorf("send %s: %v", p, err)
	t.disconnect()
	if err := t.connect(); err != nil {
		t.log.Debugf("reconnect: %v", err)
		select {
		case <-time.After(reconnectDelay):
		case <-stopch:
		}
	}
}

func (t *Transport) send(p *wire.Packet) error {
	b, err := wire.FrameMarshal(p)
	if err != nil {
		return errors.Annotate(err, "marshal")
	}
	_ = t.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := helpers.WriteAll(t.w, b); err != nil {
		return errors.Annotate(err, "write")
	}
	return errors.Annotate(t.w.Flush(), "flush")
}

func (t *Transport) connect() error {
	conn, err := net.DialTimeout("tcp", t.addr, dialTimeout)
	if err != nil {
		return errors.Annotatef(err, "dial %s", t.addr)
	}
	t.conn = conn
	t.w = bufio.NewWriter(conn)
	t.log.Infof("connected to %s", t.addr)
	return nil
}

// waitConnect retries with backoff until connected or stopped. While it
// waits the queue fills up and Send blocks, which is the wanted
// backpressure.
func (t *Transport) waitConnect(stopch <-chan struct{}) bool {
	for {
		err := t.connect()
		if err == nil {
			t.bo.Reset()
			return true
		}
		t.log.Debugf("connect: %v", err)
		select {
		case <-time.After(t.bo.DelayAfter(false)):
		case <-stopch:
			return false
		}
	}
}

func (t *Transport) disconnect() {
	if t.conn != nil {
		_ = t.conn.Close()
		t.conn = nil
		t.w = nil
	}
}

// Ping sends a single ping packet over a fresh connection and returns
// once it is flushed. Used by the ping subcommand for reachability checks.
func Ping(log *log2.Log, addr string, timeout time.Duration) error {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return errors.Annotatef(err, "dial %s", addr)
	}
	defer conn.Close()
	p := wire.NewLegacy("PING", 0, 0)
	b, err := wire.FrameMarshal(p)
	if err != nil {
		return errors.Annotate(err, "marshal")
	}
	_ = conn.SetWriteDeadline(time.Now().Add(timeout))
	if err := helpers.WriteAll(conn, b); err != nil {
		return errors.Annotate(err, "write")
	}
	log.Infof("ping sent to %s id=%s", addr, p.ID)
	return nil
}
