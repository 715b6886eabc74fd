package wire

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/juju/errors"
)

// Frame wraps one encoded Packet with a fixed header so the stream is
// self-delimiting: a reader never has to guess where a packet ends and
// never discards buffered bytes on a short read.
//
//	magic  uint16 BE = 0x4B56 ("KV")
//	length uint16 BE = body byte count
//	body   = packet encoding, see below
//
// Packet body, all integers BigEndian:
//
//	id        uint8 length + bytes
//	timestamp uint64
//	tag       byte: 0x01 legacy, 0x02 typed
//	legacy:   type uint8 length + bytes, code uint16, value int32
//	typed:    event discriminant byte, then payload:
//	          1 KeyPress    key uint16
//	          2 KeyRelease  key uint16
//	          3 MouseMove   x int32, y int32
//	          4 MouseButton button uint8, pressed uint8
//	          5 MouseScroll dx int32, dy int32
//
// Discriminant values are the wire contract; do not renumber.
const (
	FrameMagic      = uint16(0x4b56)
	FrameHeaderSize = 2 /*magic*/ + 2 /*length*/

	DefaultReadLimit = 16 << 10
)

const (
	tagLegacy = byte(0x01)
	tagTyped  = byte(0x02)
)

const (
	evKeyPress    = byte(1)
	evKeyRelease  = byte(2)
	evMouseMove   = byte(3)
	evMouseButton = byte(4)
	evMouseScroll = byte(5)
)

var (
	ErrFrameInvalid     = fmt.Errorf("frame is invalid")
	ErrFrameLenOverflow = fmt.Errorf("frame is too large")
)

func FrameMarshal(p *Packet) ([]byte, error) {
	body, err := p.MarshalBinary()
	if err != nil {
		return nil, errors.Annotate(err, "marshal packet")
	}
	if len(body) > math.MaxUint16 {
		return nil, ErrFrameLenOverflow
	}
	b := make([]byte, FrameHeaderSize+len(body))
	binary.BigEndian.PutUint16(b[0:], FrameMagic)
	binary.BigEndian.PutUint16(b[2:], uint16(len(body)))
	copy(b[FrameHeaderSize:], body)
	return b, nil
}

func (p *Packet) MarshalBinary() ([]byte, error) {
	if len(p.ID) > math.MaxUint8 {
		return nil, errors.Errorf("packet id too long len=%d", len(p.ID))
	}
	var scratch [8]byte
	buf := bytes.NewBuffer(make([]byte, 0, 64))
	buf.WriteByte(byte(len(p.ID)))
	buf.WriteString(p.ID)
	binary.BigEndian.PutUint64(scratch[:], p.Timestamp)
	buf.Write(scratch[:8])

	switch {
	case p.Legacy != nil:
		if len(p.Legacy.Type) > math.MaxUint8 {
			return nil, errors.Errorf("legacy event type too long len=%d", len(p.Legacy.Type))
		}
		buf.WriteByte(tagLegacy)
		buf.WriteByte(byte(len(p.Legacy.Type)))
		buf.WriteString(p.Legacy.Type)
		binary.BigEndian.PutUint16(scratch[:], p.Legacy.Code)
		buf.Write(scratch[:2])
		binary.BigEndian.PutUint32(scratch[:], uint32(p.Legacy.Value))
		buf.Write(scratch[:4])

	case p.Event != nil:
		buf.WriteByte(tagTyped)
		switch e := p.Event.(type) {
		case KeyPress:
			buf.WriteByte(evKeyPress)
			binary.BigEndian.PutUint16(scratch[:], e.Key)
			buf.Write(scratch[:2])
		case KeyRelease:
			buf.WriteByte(evKeyRelease)
			binary.BigEndian.PutUint16(scratch[:], e.Key)
			buf.Write(scratch[:2])
		case MouseMove:
			buf.WriteByte(evMouseMove)
			binary.BigEndian.PutUint32(scratch[:], uint32(e.X))
			buf.Write(scratch[:4])
			binary.BigEndian.PutUint32(scratch[:], uint32(e.Y))
			buf.Write(scratch[:4])
		case MouseButton:
			buf.WriteByte(evMouseButton)
			buf.WriteByte(e.Button)
			if e.Pressed {
				buf.WriteByte(1)
			} else {
				buf.WriteByte(0)
			}
		case MouseScroll:
			buf.WriteByte(evMouseScroll)
			binary.BigEndian.PutUint32(scratch[:], uint32(e.DX))
			buf.Write(scratch[:4])
			binary.BigEndian.PutUint32(scratch[:], uint32(e.DY))
			buf.Write(scratch[:4])
		default:
			return nil, errors.Errorf("code error unknown event %T", p.Event)
		}

	default:
		return nil, errors.Errorf("packet without message id=%s", p.ID)
	}
	return buf.Bytes(), nil
}

func (p *Packet) UnmarshalBinary(b []byte) error {
	r := reader{b: b}
	idLen := r.u8()
	p.ID = string(r.take(int(idLen)))
	p.Timestamp = r.u64()
	tag := r.u8()
	if r.err != nil {
		return errors.Annotate(r.err, "packet body")
	}
	switch tag {
	case tagLegacy:
		typeLen := r.u8()
		le := &InputEvent{}
		le.Type = string(r.take(int(typeLen)))
		le.Code = r.u16()
		le.Value = int32(r.u32())
		p.Legacy = le
	case tagTyped:
		disc := r.u8()
		if r.err != nil {
			return errors.Annotate(r.err, "packet body")
		}
		switch disc {
		case evKeyPress:
			p.Event = KeyPress{Key: r.u16()}
		case evKeyRelease:
			p.Event = KeyRelease{Key: r.u16()}
		case evMouseMove:
			p.Event = MouseMove{X: int32(r.u32()), Y: int32(r.u32())}
		case evMouseButton:
			p.Event = MouseButton{Button: r.u8(), Pressed: r.u8() != 0}
		case evMouseScroll:
			p.Event = MouseScroll{DX: int32(r.u32()), DY: int32(r.u32())}
		default:
			return errors.Errorf("unknown event discriminant=%d", disc)
		}
	default:
		return errors.Errorf("unknown message tag=%d", tag)
	}
	if r.err != nil {
		return errors.Annotate(r.err, "packet body")
	}
	if r.pos != len(r.b) {
		return errors.Errorf("trailing garbage len=%d", len(r.b)-r.pos)
	}
	return nil
}

// reader is a cursor with sticky bounds error; a short body inside a
// complete frame is malformed data, not an incomplete read.
type reader struct {
	b   []byte
	pos int
	err error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos+n > len(r.b) {
		r.err = io.ErrUnexpectedEOF
		return nil
	}
	s := r.b[r.pos : r.pos+n]
	r.pos += n
	return s
}

func (r *reader) u8() byte {
	s := r.take(1)
	if s == nil {
		return 0
	}
	return s[0]
}

func (r *reader) u16() uint16 {
	s := r.take(2)
	if s == nil {
		return 0
	}
	return binary.BigEndian.Uint16(s)
}

func (r *reader) u32() uint32 {
	s := r.take(4)
	if s == nil {
		return 0
	}
	return binary.BigEndian.Uint32(s)
}

func (r *reader) u64() uint64 {
	s := r.take(8)
	if s == nil {
		return 0
	}
	return binary.BigEndian.Uint64(s)
}

// Decoder reads length-prefixed frames from a stream. Partial reads wait
// for more data; multiple packets per read are consumed one at a time.
type Decoder struct {
	r   *bufio.Reader
	max uint32
}

func (d *Decoder) Attach(r *bufio.Reader, max uint32) {
	d.r = r
	d.max = max
}

func (d *Decoder) Read() (*Packet, error) {
	header, err := d.r.Peek(FrameHeaderSize)
	switch err {
	case nil:
	case io.EOF:
		if len(header) == 0 {
			return nil, err
		}
		return nil, errors.Annotate(io.ErrUnexpectedEOF, "header")
	default:
		return nil, errors.Annotate(err, "header")
	}

	if magic := binary.BigEndian.Uint16(header[0:]); magic != FrameMagic {
		return nil, ErrFrameInvalid
	}
	bodyLen := binary.BigEndian.Uint16(header[2:])
	if uint32(bodyLen) > d.max {
		return nil, errors.Errorf("frameLen=%d exceeds max=%d", bodyLen, d.max)
	}

	if _, err = d.r.Discard(FrameHeaderSize); err != nil {
		return nil, errors.Annotate(err, "discard")
	}
	body := make([]byte, bodyLen)
	if _, err = io.ReadFull(d.r, body); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, errors.Annotate(err, "readfull")
	}

	p := &Packet{}
	if err = p.UnmarshalBinary(body); err != nil {
		return nil, errors.Annotate(err, "unmarshal")
	}
	return p, nil
}
