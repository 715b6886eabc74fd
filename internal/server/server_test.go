package server_test

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softkvm/softkvm/internal/server"
	"github.com/softkvm/softkvm/log2"
	"github.com/softkvm/softkvm/wire"
)

type recordSink struct {
	mu       sync.Mutex
	packets  []*wire.Packet
	applyErr error
	applied  chan struct{}
}

func newRecordSink(capacity int) *recordSink {
	return &recordSink{applied: make(chan struct{}, capacity)}
}

func (r *recordSink) Apply(p *wire.Packet) error {
	r.mu.Lock()
	r.packets = append(r.packets, p)
	r.mu.Unlock()
	r.applied <- struct{}{}
	return r.applyErr
}

func (r *recordSink) all() []*wire.Packet {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*wire.Packet(nil), r.packets...)
}

func (r *recordSink) waitApplied(t testing.TB, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.applied:
		case <-time.After(5 * time.Second):
			t.Fatalf("timeout waiting for packet %d/%d", i+1, n)
		}
	}
}

func startServer(t testing.TB, sink server.Sink) *server.Server {
	t.Helper()
	log := log2.NewTest(t, log2.LDebug)
	srv := server.NewServer(log, sink)
	require.NoError(t, srv.Listen("127.0.0.1:0"))
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

// Frames split across arbitrary write boundaries must reassemble.
func TestServerReceivesPartialWrites(t *testing.T) {
	t.Parallel()

	sink := newRecordSink(2)
	srv := startServer(t, sink)

	p1 := wire.New(wire.KeyPress{Key: 30})
	p2 := wire.New(wire.MouseMove{X: -2, Y: 9})
	b1, err := wire.FrameMarshal(p1)
	require.NoError(t, err)
	b2, err := wire.FrameMarshal(p2)
	require.NoError(t, err)
	stream := append(append([]byte(nil), b1...), b2...)

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	for _, chunk := range [][]byte{stream[:3], stream[3 : len(b1)+5], stream[len(b1)+5:]} {
		_, err = conn.Write(chunk)
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}

	sink.waitApplied(t, 2)
	packets := sink.all()
	require.Len(t, packets, 2)
	assert.Equal(t, p1.ID, packets[0].ID)
	assert.Equal(t, wire.KeyPress{Key: 30}, packets[0].Event)
	assert.Equal(t, p2.ID, packets[1].ID)
	assert.Equal(t, wire.MouseMove{X: -2, Y: 9}, packets[1].Event)
}

// A bad magic closes the connection without touching the sink.
func TestServerClosesMalformedConn(t *testing.T) {
	t.Parallel()

	sink := newRecordSink(1)
	srv := startServer(t, sink)

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte{0xde, 0xad, 0xbe, 0xef})
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	buf := make([]byte, 1)
	_, err = conn.Read(buf)
	assert.Error(t, err, "server must close the connection")
	assert.Empty(t, sink.all())
}

// Sink failures are logged, not fatal: the connection keeps decoding.
func TestServerSinkErrorKeepsConn(t *testing.T) {
	t.Parallel()

	sink := newRecordSink(2)
	sink.applyErr = assert.AnError
	srv := startServer(t, sink)

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	for _, p := range []*wire.Packet{
		wire.New(wire.KeyPress{Key: 30}),
		wire.New(wire.KeyRelease{Key: 30}),
	} {
		b, err := wire.FrameMarshal(p)
		require.NoError(t, err)
		_, err = conn.Write(b)
		require.NoError(t, err)
	}

	sink.waitApplied(t, 2)
	assert.Len(t, sink.all(), 2)
}

func TestServerClose(t *testing.T) {
	t.Parallel()

	sink := newRecordSink(1)
	log := log2.NewTest(t, log2.LDebug)
	srv := server.NewServer(log, sink)
	require.NoError(t, srv.Listen("127.0.0.1:0"))

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	assert.NoError(t, srv.Close())
	_, err = net.Dial("tcp", srv.Addr().String())
	assert.Error(t, err, "listener must be closed")
}
