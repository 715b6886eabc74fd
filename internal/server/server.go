// Package server implements the receiving side: a TCP listener that
// decodes framed packets and feeds them to a replay sink.
package server

import (
	"bufio"
	"io"
	"net"
	"sync"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"

	"github.com/softkvm/softkvm/helpers"
	"github.com/softkvm/softkvm/log2"
	"github.com/softkvm/softkvm/wire"
)

// Sink consumes decoded packets. Apply errors are logged and the
// connection keeps going; only protocol errors kill a connection.
type Sink interface {
	Apply(*wire.Packet) error
}

type Server struct {
	alive *alive.Alive
	log   *log2.Log
	sink  Sink
	ln    net.Listener

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	err   helpers.AtomicError
}

func NewServer(log *log2.Log, sink Sink) *Server {
	return &Server{
		alive: alive.NewAlive(),
		log:   log,
		sink:  sink,
		conns: make(map[net.Conn]struct{}, 4),
	}
}

// Listen binds the address and starts accepting. A bind failure is
// returned to the caller; it has no fallback.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Annotatef(err, "listen %s", addr)
	}
	s.ln = ln
	s.log.Infof("listening on %s", ln.Addr())
	s.alive.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Close stops accepting, closes every client connection, waits for their
// handlers to finish and returns the first accept-loop failure if any.
func (s *Server) Close() error {
	s.alive.Stop()
	if s.ln != nil {
		_ = s.ln.Close()
	}
	helpers.WithLock(&s.mu, func() {
		for conn := range s.conns {
			_ = conn.Close()
		}
	})
	s.alive.Wait()
	err, _ := s.err.Load()
	return err
}

func (s *Server) acceptLoop() {
	defer s.alive.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if s.alive.IsRunning() {
				s.log.Errorf("accept: %v", err)
				s.err.StoreOnce(errors.Annotate(err, "accept"))
				s.alive.Stop()
			}
			return
		}
		if !s.alive.Add(1) {
			_ = conn.Close()
			return
		}
		s.register(conn)
		go s.processConn(conn)
	}
}

// processConn reads frames until EOF or a protocol violation. A malformed
// frame closes the connection: after a framing error the stream offset is
// unknown and resynchronizing would replay garbage input.
func (s *Server) processConn(conn net.Conn) {
	defer s.alive.Done()
	defer s.unregister(conn)
	defer conn.Close()

	remote := conn.RemoteAddr()
	s.log.Infof("client connected %s", remote)
	var dec wire.Decoder
	dec.Attach(bufio.NewReader(conn), wire.DefaultReadLimit)
	for {
		p, err := dec.Read()
		if err != nil {
			if errors.Cause(err) == io.EOF {
				s.log.Infof("client disconnected %s", remote)
			} else if s.alive.IsRunning() {
				s.log.Errorf("client %s: %s", remote, errors.ErrorStack(err))
			}
			return
		}
		s.log.Debugf("recv %s", p)
		if err := s.sink.Apply(p); err != nil {
			s.log.Errorf("apply %s: %s", p, errors.ErrorStack(err))
		}
	}
}

func (s *Server) register(conn net.Conn) {
	helpers.WithLock(&s.mu, func() { s.conns[conn] = struct{}{} })
}

func (s *Server) unregister(conn net.Conn) {
	helpers.WithLock(&s.mu, func() { delete(s.conns, conn) })
}
