// Copyright 2026 The netpdu Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pdu

import (
	"encoding/binary"
	"fmt"

	"netpdu.dev/netpdu/pkg/tcpip/checksum"
	"netpdu.dev/netpdu/pkg/tcpip/header"
)

// TCP is a mutable TCP segment header. The fixed header is kept in wire
// (big-endian) order at all times; accessors convert on every call. The
// node owns its option list and its inner layer.
type TCP struct {
	hdr [header.TCPMinimumSize]byte

	// opts holds the stored options in wire order. NOP and EOL seen
	// during parsing are never stored.
	opts []header.TCPOption

	// optsSize is the encoded size of opts; paddedSize rounds it up to
	// the 32-bit alignment the data offset field requires.
	optsSize   int
	paddedSize int

	inner PDU
}

// NewTCP creates a TCP header with the given ports, no options, the
// default advertised window and every other field zero.
func NewTCP(dstPort, srcPort uint16) *TCP {
	t := &TCP{}
	h := t.view()
	h.SetDestinationPort(dstPort)
	h.SetSourcePort(srcPort)
	h.SetDataOffset(header.TCPMinimumSize)
	h.SetWindowSize(header.TCPDefaultWindowSize)
	return t
}

// ParseTCP constructs a TCP node from a captured buffer. Bytes beyond the
// header and options become a Raw inner layer; a buffer with nothing left
// after the options produces no inner layer. It fails with ErrTooShort if
// b cannot hold the fixed header or the option region the header declares,
// and with ErrTruncatedOption if an option's declared length overruns the
// region. A failed parse returns no partially built node.
func ParseTCP(b []byte) (*TCP, error) {
	if len(b) < header.TCPMinimumSize {
		return nil, fmt.Errorf("%w: got %d bytes, need %d for a TCP header", ErrTooShort, len(b), header.TCPMinimumSize)
	}

	t := &TCP{}
	copy(t.hdr[:], b)

	doff := int(t.view().DataOffset())
	if doff < header.TCPMinimumSize {
		return nil, fmt.Errorf("%w: data offset %d smaller than the fixed header", ErrTooShort, doff)
	}
	if doff > len(b) {
		return nil, fmt.Errorf("%w: data offset %d exceeds the %d-byte buffer", ErrTooShort, doff, len(b))
	}

	region := b[header.TCPMinimumSize:doff]
	for i := 0; i < len(region); {
		opt, n, err := header.ParseTCPOption(region[i:])
		if err != nil {
			return nil, err
		}
		switch opt.Kind {
		case header.TCPOptionNOP:
			i += n
		case header.TCPOptionEOL:
			// The rest of the region is padding, not options.
			i = len(region)
		default:
			t.appendOption(opt)
			i += n
		}
	}

	if rest := b[doff:]; len(rest) > 0 {
		t.inner = NewRaw(rest)
	}
	return t, nil
}

func (t *TCP) view() header.TCP {
	return header.TCP(t.hdr[:])
}

// SourcePort returns the source port.
func (t *TCP) SourcePort() uint16 { return t.view().SourcePort() }

// SetSourcePort sets the source port.
func (t *TCP) SetSourcePort(port uint16) { t.view().SetSourcePort(port) }

// DestinationPort returns the destination port.
func (t *TCP) DestinationPort() uint16 { return t.view().DestinationPort() }

// SetDestinationPort sets the destination port.
func (t *TCP) SetDestinationPort(port uint16) { t.view().SetDestinationPort(port) }

// SequenceNumber returns the sequence number.
func (t *TCP) SequenceNumber() uint32 { return t.view().SequenceNumber() }

// SetSequenceNumber sets the sequence number.
func (t *TCP) SetSequenceNumber(seq uint32) { t.view().SetSequenceNumber(seq) }

// AckNumber returns the acknowledgement number.
func (t *TCP) AckNumber() uint32 { return t.view().AckNumber() }

// SetAckNumber sets the acknowledgement number.
func (t *TCP) SetAckNumber(ack uint32) { t.view().SetAckNumber(ack) }

// DataOffset returns the header length in bytes currently recorded in the
// data offset field. Serialization recomputes it from the stored options.
func (t *TCP) DataOffset() uint8 { return t.view().DataOffset() }

// Flags returns the flags byte.
func (t *TCP) Flags() header.TCPFlags { return t.view().Flags() }

// SetFlags replaces the flags byte.
func (t *TCP) SetFlags(flags header.TCPFlags) { t.view().SetFlags(flags) }

// Flag reports whether all control bits in f are set.
func (t *TCP) Flag(f header.TCPFlags) bool {
	if f == 0 {
		return false
	}
	return t.Flags().Contains(f)
}

// SetFlag sets or clears the control bits in f, leaving the others alone.
func (t *TCP) SetFlag(f header.TCPFlags, on bool) {
	if on {
		t.SetFlags(t.Flags() | f)
	} else {
		t.SetFlags(t.Flags() &^ f)
	}
}

// WindowSize returns the advertised window.
func (t *TCP) WindowSize() uint16 { return t.view().WindowSize() }

// SetWindowSize sets the advertised window.
func (t *TCP) SetWindowSize(win uint16) { t.view().SetWindowSize(win) }

// Checksum returns the checksum field. Zero means "not computed": the
// field is recomputed during serialization when a network-layer parent is
// available, and reset to zero after every serialization.
func (t *TCP) Checksum() uint16 { return t.view().Checksum() }

// SetChecksum sets an explicit checksum. A non-zero value suppresses
// checksum computation for the next serialization.
func (t *TCP) SetChecksum(xsum uint16) { t.view().SetChecksum(xsum) }

// UrgentPointer returns the urgent pointer.
func (t *TCP) UrgentPointer() uint16 { return t.view().UrgentPointer() }

// SetUrgentPointer sets the urgent pointer.
func (t *TCP) SetUrgentPointer(up uint16) { t.view().SetUrgentPointer(up) }

// SetPayload replaces the inner layer with a Raw node holding a copy of b.
func (t *TCP) SetPayload(b []byte) {
	t.inner = NewRaw(b)
}

// AddOption appends an option with the given kind and a copy of value.
// The caller's slice is not retained. It fails with
// ErrOptionSpaceExceeded when the padded option bytes would no longer fit
// the 4-bit data offset field.
func (t *TCP) AddOption(kind uint8, value []byte) error {
	opt := header.TCPOption{Kind: kind}
	if len(value) > 0 {
		opt.Value = make([]byte, len(value))
		copy(opt.Value, value)
	}
	newSize := t.optsSize + opt.EncodedSize()
	if padded(newSize) > header.TCPMaximumOptionSize {
		return fmt.Errorf("%w: %d option bytes", ErrOptionSpaceExceeded, newSize)
	}
	t.appendOption(opt)
	return nil
}

// appendOption stores opt, which must already own its value buffer.
func (t *TCP) appendOption(opt header.TCPOption) {
	t.opts = append(t.opts, opt)
	t.optsSize += opt.EncodedSize()
	t.paddedSize = padded(t.optsSize)
}

func padded(n int) int {
	return (n + 3) &^ 3
}

// Options returns a deep copy of the stored options in wire order.
func (t *TCP) Options() []header.TCPOption {
	if len(t.opts) == 0 {
		return nil
	}
	out := make([]header.TCPOption, len(t.opts))
	for i, o := range t.opts {
		out[i] = copyOption(o)
	}
	return out
}

// FindOption returns the first stored option of the given kind. The
// returned option owns its own copy of the value.
func (t *TCP) FindOption(kind uint8) (header.TCPOption, bool) {
	if o := t.findOption(kind); o != nil {
		return copyOption(*o), true
	}
	return header.TCPOption{}, false
}

func (t *TCP) findOption(kind uint8) *header.TCPOption {
	for i := range t.opts {
		if t.opts[i].Kind == kind {
			return &t.opts[i]
		}
	}
	return nil
}

func copyOption(o header.TCPOption) header.TCPOption {
	c := header.TCPOption{Kind: o.Kind}
	if len(o.Value) > 0 {
		c.Value = make([]byte, len(o.Value))
		copy(c.Value, o.Value)
	}
	return c
}

// AddMSSOption appends a maximum segment size option.
func (t *TCP) AddMSSOption(mss uint16) error {
	var v [2]byte
	binary.BigEndian.PutUint16(v[:], mss)
	return t.AddOption(header.TCPOptionMSS, v[:])
}

// MSSOption returns the value of the first maximum segment size option.
// An option with an unexpected length is reported as absent.
func (t *TCP) MSSOption() (uint16, bool) {
	o := t.findOption(header.TCPOptionMSS)
	if o == nil || o.Len() != 2 {
		return 0, false
	}
	return binary.BigEndian.Uint16(o.Value), true
}

// AddWindowScaleOption appends a window scale option.
func (t *TCP) AddWindowScaleOption(shift uint8) error {
	return t.AddOption(header.TCPOptionWS, []byte{shift})
}

// WindowScaleOption returns the shift count of the first window scale
// option.
func (t *TCP) WindowScaleOption() (uint8, bool) {
	o := t.findOption(header.TCPOptionWS)
	if o == nil || o.Len() != 1 {
		return 0, false
	}
	return o.Value[0], true
}

// AddSACKPermittedOption appends a SACK-permitted marker option.
func (t *TCP) AddSACKPermittedOption() error {
	return t.AddOption(header.TCPOptionSACKPermitted, nil)
}

// SACKPermittedOption reports whether a SACK-permitted option is present.
func (t *TCP) SACKPermittedOption() bool {
	return t.findOption(header.TCPOptionSACKPermitted) != nil
}

// AddSACKOption appends a SACK option carrying the given block edges.
func (t *TCP) AddSACKOption(edges []uint32) error {
	var v []byte
	if len(edges) > 0 {
		v = make([]byte, 4*len(edges))
		for i, e := range edges {
			binary.BigEndian.PutUint32(v[4*i:], e)
		}
	}
	return t.AddOption(header.TCPOptionSACK, v)
}

// SACKOption returns the block edges of the first SACK option. An option
// whose length is not a multiple of 4 is reported as absent.
func (t *TCP) SACKOption() ([]uint32, bool) {
	o := t.findOption(header.TCPOptionSACK)
	if o == nil || o.Len()%4 != 0 {
		return nil, false
	}
	var edges []uint32
	for i := 0; i < o.Len(); i += 4 {
		edges = append(edges, binary.BigEndian.Uint32(o.Value[i:]))
	}
	return edges, true
}

// AddTimestampOption appends a timestamp option with the given timestamp
// value and echo reply.
func (t *TCP) AddTimestampOption(value, reply uint32) error {
	var v [8]byte
	binary.BigEndian.PutUint32(v[:], value)
	binary.BigEndian.PutUint32(v[4:], reply)
	return t.AddOption(header.TCPOptionTS, v[:])
}

// TimestampOption returns the timestamp value and echo reply of the first
// timestamp option.
func (t *TCP) TimestampOption() (value, reply uint32, ok bool) {
	o := t.findOption(header.TCPOptionTS)
	if o == nil || o.Len() != 8 {
		return 0, 0, false
	}
	return binary.BigEndian.Uint32(o.Value), binary.BigEndian.Uint32(o.Value[4:]), true
}

// AddAltChecksumOption appends an alternate checksum algorithm option.
func (t *TCP) AddAltChecksumOption(algorithm uint8) error {
	return t.AddOption(header.TCPOptionAltChecksum, []byte{algorithm})
}

// AltChecksumOption returns the algorithm of the first alternate checksum
// option.
func (t *TCP) AltChecksumOption() (uint8, bool) {
	o := t.findOption(header.TCPOptionAltChecksum)
	if o == nil || o.Len() != 1 {
		return 0, false
	}
	return o.Value[0], true
}

// RawOptionsSize returns the encoded size of the stored options before
// alignment padding.
func (t *TCP) RawOptionsSize() int {
	return t.optsSize
}

// PaddedOptionsSize returns the option bytes rounded up to the 32-bit
// alignment the data offset field requires.
func (t *TCP) PaddedOptionsSize() int {
	return t.paddedSize
}

// HeaderSize implements PDU.HeaderSize.
func (t *TCP) HeaderSize() int {
	return header.TCPMinimumSize + t.paddedSize
}

// Inner implements PDU.Inner.
func (t *TCP) Inner() PDU {
	return t.inner
}

// SetInner implements PDU.SetInner.
func (t *TCP) SetInner(p PDU) {
	t.inner = p
}

// Clone implements PDU.Clone.
func (t *TCP) Clone() PDU {
	n := &TCP{
		hdr:        t.hdr,
		optsSize:   t.optsSize,
		paddedSize: t.paddedSize,
	}
	if len(t.opts) > 0 {
		n.opts = make([]header.TCPOption, len(t.opts))
		for i, o := range t.opts {
			n.opts[i] = copyOption(o)
		}
	}
	if t.inner != nil {
		n.inner = t.inner.Clone()
	}
	return n
}

// writeTo implements PDU.writeTo. The checksum is computed over the whole
// remaining buffer, which already holds the serialized inner layers, but
// only when the field is unset and the parent exposes pseudo-header
// inputs. The in-memory checksum field is reset to zero afterwards in
// either case, so every serialization re-derives it.
func (t *TCP) writeTo(b []byte, parent PDU) {
	hs := t.HeaderSize()
	t.view().SetDataOffset(uint8(hs))

	off := header.TCPMinimumSize
	for _, o := range t.opts {
		off += header.EncodeTCPOption(b[off:], o)
	}
	for off < hs {
		b[off] = header.TCPOptionNOP
		off++
	}

	copy(b, t.hdr[:])

	if t.view().Checksum() == 0 {
		if net, ok := parent.(NetworkLayer); ok {
			xsum := header.PseudoHeaderChecksum(header.TCPProtocolNumber, net.SourceAddress(), net.DestinationAddress(), uint16(len(b)))
			xsum = checksum.Checksum(b, xsum)
			header.TCP(b).SetChecksum(^xsum)
		}
	}
	t.view().SetChecksum(0)
}
