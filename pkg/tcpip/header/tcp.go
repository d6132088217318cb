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

package header

import (
	"encoding/binary"
	"errors"

	"netpdu.dev/netpdu/pkg/tcpip"
	"netpdu.dev/netpdu/pkg/tcpip/checksum"
)

const (
	tcpSrcPort    = 0
	tcpDstPort    = 2
	tcpSeqNum     = 4
	tcpAckNum     = 8
	tcpDataOffset = 12
	tcpFlags      = 13
	tcpWinSize    = 14
	tcpChecksum   = 16
	tcpUrgentPtr  = 18
)

// TCPFlags is the dedicated type for TCP flags.
type TCPFlags uint8

// Intersects returns true iff there are flags common to both f and o.
func (f TCPFlags) Intersects(o TCPFlags) bool {
	return f&o != 0
}

// Contains returns true iff all the flags in o are contained within f.
func (f TCPFlags) Contains(o TCPFlags) bool {
	return f&o == o
}

// String implements fmt.Stringer.String.
func (f TCPFlags) String() string {
	flagsStr := []byte("FSRPAUEC")
	for i := range flagsStr {
		if f&(1<<uint(i)) == 0 {
			flagsStr[i] = ' '
		}
	}
	return string(flagsStr)
}

// Flags that may be set in a TCP segment.
const (
	TCPFlagFin TCPFlags = 1 << iota
	TCPFlagSyn
	TCPFlagRst
	TCPFlagPsh
	TCPFlagAck
	TCPFlagUrg
	TCPFlagEce
	TCPFlagCwr
)

// Options that may be present in a TCP segment.
const (
	// TCPOptionEOL marks the end of the option list. The rest of the
	// option region is padding.
	TCPOptionEOL = 0

	// TCPOptionNOP is a single-byte no-operation option, used for
	// padding and alignment.
	TCPOptionNOP = 1

	// TCPOptionMSS carries the maximum segment size.
	TCPOptionMSS = 2

	// TCPOptionWS carries the window scale shift count.
	TCPOptionWS = 3

	// TCPOptionSACKPermitted advertises that SACK is usable on the
	// connection.
	TCPOptionSACKPermitted = 4

	// TCPOptionSACK carries a list of selectively acknowledged ranges.
	TCPOptionSACK = 5

	// TCPOptionTS carries the timestamp and timestamp echo reply values.
	TCPOptionTS = 8

	// TCPOptionAltChecksum selects an alternate checksum algorithm
	// (RFC 1146).
	TCPOptionAltChecksum = 14
)

// ErrTruncatedOption is returned when an option's declared length overruns
// the option region, or when its kind requires a length byte that is not
// present. A declared length below the 2-byte kind+length prefix is
// reported the same way rather than being allowed to wrap.
var ErrTruncatedOption = errors.New("truncated TCP option")

// TCPFields contains the fields of a TCP segment. It is used to describe the
// fields of a segment that needs to be encoded.
type TCPFields struct {
	// SrcPort is the "source port" field of a TCP segment.
	SrcPort uint16

	// DstPort is the "destination port" field of a TCP segment.
	DstPort uint16

	// SeqNum is the "sequence number" field of a TCP segment.
	SeqNum uint32

	// AckNum is the "acknowledgement number" field of a TCP segment.
	AckNum uint32

	// DataOffset is the "data offset" field of a TCP segment. It is the
	// length of the TCP header in bytes.
	DataOffset uint8

	// Flags is the "flags" field of a TCP segment.
	Flags TCPFlags

	// WindowSize is the "window size" field of a TCP segment.
	WindowSize uint16

	// Checksum is the "checksum" field of a TCP segment.
	Checksum uint16

	// UrgentPointer is the "urgent pointer" field of a TCP segment.
	UrgentPointer uint16
}

// TCP represents a TCP header stored in a byte array.
type TCP []byte

const (
	// TCPMinimumSize is the minimum size of a valid TCP segment, i.e. the
	// size of the fixed header with no options.
	TCPMinimumSize = 20

	// TCPHeaderMaximumSize is the maximum header size of a TCP segment.
	// The data offset field is 4 bits wide and counts 32-bit words, so
	// header plus options can never exceed 15*4 bytes.
	TCPHeaderMaximumSize = 60

	// TCPMaximumOptionSize is the largest amount of option bytes, after
	// padding, that can follow the fixed header.
	TCPMaximumOptionSize = TCPHeaderMaximumSize - TCPMinimumSize

	// TCPDefaultWindowSize is the window size a freshly constructed
	// segment advertises.
	TCPDefaultWindowSize = 32678

	// TCPProtocolNumber is TCP's transport protocol number.
	TCPProtocolNumber tcpip.TransportProtocolNumber = 6
)

// SourcePort returns the "source port" field of the TCP header.
func (b TCP) SourcePort() uint16 {
	return binary.BigEndian.Uint16(b[tcpSrcPort:])
}

// DestinationPort returns the "destination port" field of the TCP header.
func (b TCP) DestinationPort() uint16 {
	return binary.BigEndian.Uint16(b[tcpDstPort:])
}

// SequenceNumber returns the "sequence number" field of the TCP header.
func (b TCP) SequenceNumber() uint32 {
	return binary.BigEndian.Uint32(b[tcpSeqNum:])
}

// AckNumber returns the "ack number" field of the TCP header.
func (b TCP) AckNumber() uint32 {
	return binary.BigEndian.Uint32(b[tcpAckNum:])
}

// DataOffset returns the "data offset" field of the TCP header. The return
// is the length of the TCP header in bytes.
func (b TCP) DataOffset() uint8 {
	return (b[tcpDataOffset] >> 4) * 4
}

// Payload returns the data in the TCP segment.
func (b TCP) Payload() []byte {
	return b[b.DataOffset():]
}

// Flags returns the flags field of the TCP header.
func (b TCP) Flags() TCPFlags {
	return TCPFlags(b[tcpFlags])
}

// WindowSize returns the "window size" field of the TCP header.
func (b TCP) WindowSize() uint16 {
	return binary.BigEndian.Uint16(b[tcpWinSize:])
}

// Checksum returns the "checksum" field of the TCP header.
func (b TCP) Checksum() uint16 {
	return binary.BigEndian.Uint16(b[tcpChecksum:])
}

// UrgentPointer returns the "urgent pointer" field of the TCP header.
func (b TCP) UrgentPointer() uint16 {
	return binary.BigEndian.Uint16(b[tcpUrgentPtr:])
}

// SetSourcePort sets the "source port" field of the TCP header.
func (b TCP) SetSourcePort(port uint16) {
	binary.BigEndian.PutUint16(b[tcpSrcPort:], port)
}

// SetDestinationPort sets the "destination port" field of the TCP header.
func (b TCP) SetDestinationPort(port uint16) {
	binary.BigEndian.PutUint16(b[tcpDstPort:], port)
}

// SetSequenceNumber sets the sequence number field of the TCP header.
func (b TCP) SetSequenceNumber(seq uint32) {
	binary.BigEndian.PutUint32(b[tcpSeqNum:], seq)
}

// SetAckNumber sets the ack number field of the TCP header.
func (b TCP) SetAckNumber(ack uint32) {
	binary.BigEndian.PutUint32(b[tcpAckNum:], ack)
}

// SetDataOffset sets the data offset field of the TCP header. headerLen is
// the length of the TCP header in bytes.
func (b TCP) SetDataOffset(headerLen uint8) {
	b[tcpDataOffset] = (headerLen / 4) << 4
}

// SetFlags sets the flags field of the TCP header.
func (b TCP) SetFlags(flags TCPFlags) {
	b[tcpFlags] = uint8(flags)
}

// SetWindowSize sets the window size field of the TCP header.
func (b TCP) SetWindowSize(rcvwnd uint16) {
	binary.BigEndian.PutUint16(b[tcpWinSize:], rcvwnd)
}

// SetChecksum sets the checksum field of the TCP header.
func (b TCP) SetChecksum(xsum uint16) {
	checksum.Put(b[tcpChecksum:], xsum)
}

// SetUrgentPointer sets the urgent pointer field of the TCP header.
func (b TCP) SetUrgentPointer(urgentPointer uint16) {
	binary.BigEndian.PutUint16(b[tcpUrgentPtr:], urgentPointer)
}

// Options returns a slice that holds the unparsed TCP options in the segment.
func (b TCP) Options() []byte {
	return b[TCPMinimumSize:b.DataOffset()]
}

// CalculateChecksum calculates the checksum of the TCP segment's header,
// given the checksum of the network-layer pseudo-header and the checksum of
// the payload.
func (b TCP) CalculateChecksum(partialChecksum uint16) uint16 {
	// Calculate the rest of the checksum.
	return checksum.Checksum(b[:b.DataOffset()], partialChecksum)
}

// IsChecksumValid returns true iff the TCP header's checksum is valid.
func (b TCP) IsChecksumValid(src, dst tcpip.Address, payloadChecksum uint16, totalLen uint16) bool {
	xsum := PseudoHeaderChecksum(TCPProtocolNumber, src, dst, totalLen)
	xsum = checksum.Combine(xsum, payloadChecksum)
	return b.CalculateChecksum(xsum) == 0xffff
}

// Encode encodes all the fields of the TCP header.
func (b TCP) Encode(t *TCPFields) {
	b.SetSourcePort(t.SrcPort)
	b.SetDestinationPort(t.DstPort)
	b.SetSequenceNumber(t.SeqNum)
	b.SetAckNumber(t.AckNum)
	b.SetDataOffset(t.DataOffset)
	b.SetFlags(t.Flags)
	b.SetWindowSize(t.WindowSize)
	b.SetChecksum(t.Checksum)
	b.SetUrgentPointer(t.UrgentPointer)
}

// TCPOption is a single decoded TCP option. Value is owned by the option;
// ParseTCPOption copies it out of the source buffer. NOP and EOL are kind
// only, with no value.
type TCPOption struct {
	// Kind is the option kind byte.
	Kind uint8

	// Value is the option payload, excluding the kind and length bytes.
	// It is nil for the single-byte NOP and EOL kinds and for options
	// with a zero-length payload.
	Value []byte
}

// Len returns the length of the option payload, excluding the 2-byte
// kind+length prefix.
func (o TCPOption) Len() int {
	return len(o.Value)
}

// EncodedSize returns the number of bytes the option occupies on the wire.
func (o TCPOption) EncodedSize() int {
	if o.Kind == TCPOptionNOP {
		return 1
	}
	return 2 + len(o.Value)
}

// ParseTCPOption decodes the first option in b, which must be a slice of the
// segment's option region. It returns the option and the number of bytes
// consumed.
//
// NOP consumes one byte and returns a value-less option the caller should
// skip rather than store. EOL consumes one byte and means the rest of the
// region is padding; scanning must stop. Every other kind carries a length
// byte that counts itself and the kind byte, so a declared length below 2,
// or one that overruns b, fails with ErrTruncatedOption.
func ParseTCPOption(b []byte) (TCPOption, int, error) {
	if len(b) == 0 {
		return TCPOption{}, 0, ErrTruncatedOption
	}
	kind := b[0]
	if kind == TCPOptionNOP || kind == TCPOptionEOL {
		return TCPOption{Kind: kind}, 1, nil
	}
	if len(b) < 2 {
		return TCPOption{}, 0, ErrTruncatedOption
	}
	l := int(b[1])
	if l < 2 || l > len(b) {
		return TCPOption{}, 0, ErrTruncatedOption
	}
	var value []byte
	if l > 2 {
		value = make([]byte, l-2)
		copy(value, b[2:l])
	}
	return TCPOption{Kind: kind, Value: value}, l, nil
}

// EncodeTCPOption writes opt at the start of b and returns the number of
// bytes written. NOP is written as its bare kind byte; every other kind,
// including an explicit EOL, is written with its length byte. The caller
// must have sized b to hold opt.EncodedSize() bytes.
func EncodeTCPOption(b []byte, opt TCPOption) int {
	if opt.Kind == TCPOptionNOP {
		b[0] = opt.Kind
		return 1
	}
	b[0] = opt.Kind
	b[1] = uint8(len(opt.Value) + 2)
	copy(b[2:], opt.Value)
	return len(opt.Value) + 2
}
