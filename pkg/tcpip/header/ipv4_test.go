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

package header_test

import (
	"testing"

	"netpdu.dev/netpdu/pkg/tcpip"
	"netpdu.dev/netpdu/pkg/tcpip/header"
)

func TestIPv4Encode(t *testing.T) {
	b := make(header.IPv4, header.IPv4MinimumSize)
	fields := &header.IPv4Fields{
		IHL:         header.IPv4MinimumSize,
		TOS:         0x10,
		TotalLength: 60,
		ID:          0x1c46,
		TTL:         64,
		Protocol:    uint8(header.TCPProtocolNumber),
		SrcAddr:     tcpip.AddrFrom4([4]byte{172, 16, 10, 99}),
		DstAddr:     tcpip.AddrFrom4([4]byte{172, 16, 10, 12}),
	}
	b.Encode(fields)

	if got := header.IPVersion(b); got != header.IPv4Version {
		t.Errorf("IPVersion = %d, want %d", got, header.IPv4Version)
	}
	if got, want := b.HeaderLength(), uint8(header.IPv4MinimumSize); got != want {
		t.Errorf("b.HeaderLength() = %d, want %d", got, want)
	}
	if got, want := b.TOS(), uint8(0x10); got != want {
		t.Errorf("b.TOS() = %#x, want %#x", got, want)
	}
	if got, want := b.TotalLength(), uint16(60); got != want {
		t.Errorf("b.TotalLength() = %d, want %d", got, want)
	}
	if got, want := b.ID(), uint16(0x1c46); got != want {
		t.Errorf("b.ID() = %#x, want %#x", got, want)
	}
	if got, want := b.TTL(), uint8(64); got != want {
		t.Errorf("b.TTL() = %d, want %d", got, want)
	}
	if got, want := b.TransportProtocol(), header.TCPProtocolNumber; got != want {
		t.Errorf("b.TransportProtocol() = %d, want %d", got, want)
	}
	if got, want := b.SourceAddress(), fields.SrcAddr; got != want {
		t.Errorf("b.SourceAddress() = %s, want %s", got, want)
	}
	if got, want := b.DestinationAddress(), fields.DstAddr; got != want {
		t.Errorf("b.DestinationAddress() = %s, want %s", got, want)
	}
}

// TestIPv4Checksum uses the classic worked example header whose correct
// checksum is 0xb1e6.
func TestIPv4Checksum(t *testing.T) {
	b := header.IPv4{
		0x45, 0x00, 0x00, 0x3c,
		0x1c, 0x46, 0x40, 0x00,
		0x40, 0x06, 0x00, 0x00,
		0xac, 0x10, 0x0a, 0x63,
		0xac, 0x10, 0x0a, 0x0c,
	}
	xsum := ^b.CalculateChecksum()
	if want := uint16(0xb1e6); xsum != want {
		t.Fatalf("^b.CalculateChecksum() = %#x, want %#x", xsum, want)
	}

	// A header carrying its correct checksum sums to 0xffff.
	b.SetChecksum(xsum)
	if got := b.CalculateChecksum(); got != 0xffff {
		t.Errorf("checksum over checksummed header = %#x, want 0xffff", got)
	}
}

func TestIPv4IsValid(t *testing.T) {
	mkHeader := func(hlen uint8, tlen uint16) header.IPv4 {
		b := make(header.IPv4, header.IPv4MinimumSize)
		b[0] = (header.IPv4Version << 4) | (hlen / 4)
		b.SetTotalLength(tlen)
		return b
	}
	testCases := []struct {
		name    string
		b       header.IPv4
		pktSize int
		want    bool
	}{
		{"TooShort", make(header.IPv4, header.IPv4MinimumSize-1), header.IPv4MinimumSize - 1, false},
		{"HeaderLengthBelowMinimum", mkHeader(16, 20), 20, false},
		{"HeaderLongerThanTotal", mkHeader(24, 20), 20, false},
		{"TotalLongerThanPacket", mkHeader(20, 40), 20, false},
		{"Valid", mkHeader(20, 20), 20, true},
		{"ValidWithPayload", mkHeader(20, 40), 40, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.b.IsValid(tc.pktSize); got != tc.want {
				t.Errorf("IsValid(%d) = %t, want %t", tc.pktSize, got, tc.want)
			}
		})
	}
}
