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

// Package pdu models protocol layers as a chain of nodes. Each node owns
// the next inner layer; a chain is serialized outer header first in the
// buffer but inner layer first in time, so an outer layer's checksum can
// cover the bytes its payload already produced.
package pdu

import (
	"errors"
	"fmt"

	"netpdu.dev/netpdu/pkg/tcpip"
	"netpdu.dev/netpdu/pkg/tcpip/header"
)

var (
	// ErrTooShort is returned when a buffer is shorter than the fixed
	// header being parsed, or shorter than the option region the header
	// declares.
	ErrTooShort = errors.New("buffer too short for header")

	// ErrTruncatedOption is returned when an option's declared length
	// overruns the option region.
	ErrTruncatedOption = header.ErrTruncatedOption

	// ErrOptionSpaceExceeded is returned when adding an option would push
	// the padded option size past what the 4-bit data offset field can
	// describe.
	ErrOptionSpaceExceeded = errors.New("TCP option space exceeded")
)

// PDU is a single protocol layer. The interface is sealed: the set of
// layer kinds is the closed set implemented in this package.
type PDU interface {
	// HeaderSize returns the size of this layer's header, including any
	// options and their padding, but excluding inner layers.
	HeaderSize() int

	// Inner returns the owned inner layer, or nil.
	Inner() PDU

	// SetInner replaces the owned inner layer. The node takes ownership
	// of p.
	SetInner(p PDU)

	// Clone returns a deep copy of this layer and everything it owns.
	Clone() PDU

	// writeTo writes this layer's header at the start of b. b spans from
	// this layer's first byte to the end of the chain, and any inner
	// layers have already been written into it. parent is the enclosing
	// layer, or nil.
	writeTo(b []byte, parent PDU)
}

// NetworkLayer is the capability a network-layer node exposes so that the
// transport layer it encloses can compute a pseudo-header checksum. A
// parent that does not implement it simply disables checksum computation.
type NetworkLayer interface {
	SourceAddress() tcpip.Address
	DestinationAddress() tcpip.Address
}

// Size returns the number of bytes the whole chain rooted at p occupies on
// the wire.
func Size(p PDU) int {
	n := 0
	for ; p != nil; p = p.Inner() {
		n += p.HeaderSize()
	}
	return n
}

// Serialize encodes the whole chain rooted at p into a new buffer.
func Serialize(p PDU) []byte {
	b := make([]byte, Size(p))
	SerializeTo(b, p)
	return b
}

// SerializeTo encodes the whole chain rooted at p into b and returns the
// number of bytes written. Callers are expected to size b using Size; a
// smaller buffer is a programming error and panics.
func SerializeTo(b []byte, p PDU) int {
	n := Size(p)
	if len(b) < n {
		panic(fmt.Sprintf("pdu: output buffer holds %d bytes, chain needs %d", len(b), n))
	}
	serializeInto(b[:n], p, nil)
	return n
}

func serializeInto(b []byte, p PDU, parent PDU) {
	if inner := p.Inner(); inner != nil {
		serializeInto(b[p.HeaderSize():], inner, p)
	}
	p.writeTo(b, parent)
}

// Raw is a leaf layer wrapping an opaque payload. It owns its bytes.
type Raw struct {
	data  []byte
	inner PDU
}

// NewRaw returns a Raw holding a copy of b.
func NewRaw(b []byte) *Raw {
	r := &Raw{}
	if len(b) > 0 {
		r.data = make([]byte, len(b))
		copy(r.data, b)
	}
	return r
}

// Data returns the wrapped payload. The slice is owned by the node;
// callers must not hold it across mutations.
func (r *Raw) Data() []byte {
	return r.data
}

// HeaderSize implements PDU.HeaderSize.
func (r *Raw) HeaderSize() int {
	return len(r.data)
}

// Inner implements PDU.Inner.
func (r *Raw) Inner() PDU {
	return r.inner
}

// SetInner implements PDU.SetInner.
func (r *Raw) SetInner(p PDU) {
	r.inner = p
}

// Clone implements PDU.Clone.
func (r *Raw) Clone() PDU {
	n := NewRaw(r.data)
	if r.inner != nil {
		n.inner = r.inner.Clone()
	}
	return n
}

func (r *Raw) writeTo(b []byte, parent PDU) {
	copy(b, r.data)
}
