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

// Package tcpip provides the primitive types shared by the wire codec
// and the PDU layer-chain packages.
package tcpip

import "fmt"

// AddressSize is the size of an IPv4 address in bytes.
const AddressSize = 4

// Address is an IPv4 address stored in network byte order.
type Address [AddressSize]byte

// AddrFrom4 returns an Address initialized with addr.
func AddrFrom4(addr [AddressSize]byte) Address {
	return Address(addr)
}

// AddrFrom4Slice returns an Address initialized from the first 4 bytes of
// addr. It panics if len(addr) != 4.
func AddrFrom4Slice(addr []byte) Address {
	if len(addr) != AddressSize {
		panic(fmt.Sprintf("bad address length (%d bytes)", len(addr)))
	}
	var a Address
	copy(a[:], addr)
	return a
}

// As4 returns the address as a 4-byte array.
func (a Address) As4() [AddressSize]byte {
	return a
}

// AsSlice returns a copy of the address bytes.
func (a Address) AsSlice() []byte {
	b := a
	return b[:]
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", a[0], a[1], a[2], a[3])
}

// TransportProtocolNumber is the number of a transport protocol.
type TransportProtocolNumber uint32

// NetworkProtocolNumber is the EtherType of a network protocol.
type NetworkProtocolNumber uint32
