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
	"fmt"

	"netpdu.dev/netpdu/pkg/tcpip"
	"netpdu.dev/netpdu/pkg/tcpip/header"
)

// IPv4 is a mutable IPv4 header node. It implements NetworkLayer, so a
// TCP node enclosed in it gets its pseudo-header checksum computed during
// serialization. Like TCP, the fixed header is kept in wire order.
type IPv4 struct {
	hdr [header.IPv4MinimumSize]byte

	// opts holds the raw option bytes, already padded to a 4-byte
	// multiple as the wire requires. This layer does not interpret them.
	opts []byte

	inner PDU
}

const defaultTTL = 64

// NewIPv4 creates an IPv4 header addressed from src to dst, with the
// default TTL and every other field zero.
func NewIPv4(dst, src tcpip.Address) *IPv4 {
	i := &IPv4{}
	i.view().Encode(&header.IPv4Fields{
		IHL:     header.IPv4MinimumSize,
		TTL:     defaultTTL,
		SrcAddr: src,
		DstAddr: dst,
	})
	return i
}

// ParseIPv4 constructs an IPv4 node from a captured buffer. The payload
// is parsed as TCP when the protocol field says so, and wrapped as Raw
// otherwise.
func ParseIPv4(b []byte) (*IPv4, error) {
	if len(b) < header.IPv4MinimumSize {
		return nil, fmt.Errorf("%w: got %d bytes, need %d for an IPv4 header", ErrTooShort, len(b), header.IPv4MinimumSize)
	}

	i := &IPv4{}
	copy(i.hdr[:], b)

	hlen := int(i.view().HeaderLength())
	if hlen < header.IPv4MinimumSize {
		return nil, fmt.Errorf("%w: header length %d smaller than the fixed header", ErrTooShort, hlen)
	}
	if hlen > len(b) {
		return nil, fmt.Errorf("%w: header length %d exceeds the %d-byte buffer", ErrTooShort, hlen, len(b))
	}

	if hlen > header.IPv4MinimumSize {
		i.opts = make([]byte, hlen-header.IPv4MinimumSize)
		copy(i.opts, b[header.IPv4MinimumSize:hlen])
	}

	if rest := b[hlen:]; len(rest) > 0 {
		if i.view().TransportProtocol() == header.TCPProtocolNumber {
			t, err := ParseTCP(rest)
			if err != nil {
				return nil, err
			}
			i.inner = t
		} else {
			i.inner = NewRaw(rest)
		}
	}
	return i, nil
}

func (i *IPv4) view() header.IPv4 {
	return header.IPv4(i.hdr[:])
}

// SourceAddress implements NetworkLayer.SourceAddress.
func (i *IPv4) SourceAddress() tcpip.Address { return i.view().SourceAddress() }

// SetSourceAddress sets the source address.
func (i *IPv4) SetSourceAddress(addr tcpip.Address) { i.view().SetSourceAddress(addr) }

// DestinationAddress implements NetworkLayer.DestinationAddress.
func (i *IPv4) DestinationAddress() tcpip.Address { return i.view().DestinationAddress() }

// SetDestinationAddress sets the destination address.
func (i *IPv4) SetDestinationAddress(addr tcpip.Address) { i.view().SetDestinationAddress(addr) }

// TOS returns the type of service field.
func (i *IPv4) TOS() uint8 { return i.view().TOS() }

// SetTOS sets the type of service field.
func (i *IPv4) SetTOS(v uint8) { i.view().SetTOS(v) }

// ID returns the identification field.
func (i *IPv4) ID() uint16 { return i.view().ID() }

// SetID sets the identification field.
func (i *IPv4) SetID(v uint16) { i.view().SetID(v) }

// TTL returns the time to live field.
func (i *IPv4) TTL() uint8 { return i.view().TTL() }

// SetTTL sets the time to live field.
func (i *IPv4) SetTTL(v uint8) { i.view().SetTTL(v) }

// Protocol returns the protocol field.
func (i *IPv4) Protocol() uint8 { return i.view().Protocol() }

// SetProtocol sets the protocol field.
func (i *IPv4) SetProtocol(v uint8) { i.view().SetProtocol(v) }

// TotalLength returns the total length field as currently recorded.
// Serialization recomputes it from the chain.
func (i *IPv4) TotalLength() uint16 { return i.view().TotalLength() }

// Checksum returns the header checksum field. The same zero-means-unset
// convention as TCP applies.
func (i *IPv4) Checksum() uint16 { return i.view().Checksum() }

// SetChecksum sets an explicit header checksum.
func (i *IPv4) SetChecksum(xsum uint16) { i.view().SetChecksum(xsum) }

// SetPayload replaces the inner layer with a Raw node holding a copy of b.
func (i *IPv4) SetPayload(b []byte) {
	i.SetInner(NewRaw(b))
}

// HeaderSize implements PDU.HeaderSize.
func (i *IPv4) HeaderSize() int {
	return header.IPv4MinimumSize + len(i.opts)
}

// Inner implements PDU.Inner.
func (i *IPv4) Inner() PDU {
	return i.inner
}

// SetInner implements PDU.SetInner. Enclosing a TCP node records TCP's
// protocol number in the header.
func (i *IPv4) SetInner(p PDU) {
	i.inner = p
	if _, ok := p.(*TCP); ok {
		i.view().SetProtocol(uint8(header.TCPProtocolNumber))
	}
}

// Clone implements PDU.Clone.
func (i *IPv4) Clone() PDU {
	n := &IPv4{hdr: i.hdr}
	if len(i.opts) > 0 {
		n.opts = make([]byte, len(i.opts))
		copy(n.opts, i.opts)
	}
	if i.inner != nil {
		n.inner = i.inner.Clone()
	}
	return n
}

// writeTo implements PDU.writeTo. Header length and total length are
// finalized in the node before the copy, so a parsed copy of the output
// reads the same values. The header checksum follows the TCP node's
// convention: computed only when unset, reset in memory afterwards.
func (i *IPv4) writeTo(b []byte, parent PDU) {
	hs := i.HeaderSize()
	i.hdr[0] = (header.IPv4Version << 4) | uint8(hs/4)
	i.view().SetTotalLength(uint16(len(b)))

	copy(b[header.IPv4MinimumSize:hs], i.opts)
	copy(b, i.hdr[:])

	h := header.IPv4(b)
	if h.Checksum() == 0 {
		h.SetChecksum(^h.CalculateChecksum())
	}
	i.view().SetChecksum(0)
}
