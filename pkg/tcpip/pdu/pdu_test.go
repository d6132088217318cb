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

package pdu_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"netpdu.dev/netpdu/pkg/tcpip"
	"netpdu.dev/netpdu/pkg/tcpip/pdu"
)

func TestSizeWalksChain(t *testing.T) {
	tcp := pdu.NewTCP(80, 1234)
	tcp.SetPayload([]byte("hello"))
	ip := pdu.NewIPv4(tcpip.AddrFrom4([4]byte{10, 0, 0, 2}), tcpip.AddrFrom4([4]byte{10, 0, 0, 1}))
	ip.SetInner(tcp)

	if got, want := pdu.Size(ip), 20+20+5; got != want {
		t.Errorf("Size(ip) = %d, want %d", got, want)
	}
	if got, want := pdu.Size(tcp), 20+5; got != want {
		t.Errorf("Size(tcp) = %d, want %d", got, want)
	}
}

func TestSerializeToSmallBufferPanics(t *testing.T) {
	tcp := pdu.NewTCP(80, 1234)
	defer func() {
		if recover() == nil {
			t.Error("SerializeTo with an undersized buffer did not panic")
		}
	}()
	pdu.SerializeTo(make([]byte, tcp.HeaderSize()-1), tcp)
}

func TestSerializeToOversizedBuffer(t *testing.T) {
	tcp := pdu.NewTCP(80, 1234)
	b := make([]byte, 64)
	for i := range b {
		b[i] = 0xee
	}
	n := pdu.SerializeTo(b, tcp)
	if n != tcp.HeaderSize() {
		t.Fatalf("SerializeTo = %d, want %d", n, tcp.HeaderSize())
	}
	for i := n; i < len(b); i++ {
		if b[i] != 0xee {
			t.Fatalf("byte %d beyond the chain was overwritten", i)
		}
	}
}

func TestRawOwnsItsData(t *testing.T) {
	src := []byte("abc")
	r := pdu.NewRaw(src)
	src[0] = 'X'
	if diff := cmp.Diff([]byte("abc"), r.Data()); diff != "" {
		t.Errorf("Raw aliases the caller's buffer (-want +got):\n%s", diff)
	}
}

func TestRawClone(t *testing.T) {
	r := pdu.NewRaw([]byte("abc"))
	c := r.Clone().(*pdu.Raw)
	c.Data()[0] = 'X'
	if diff := cmp.Diff([]byte("abc"), r.Data()); diff != "" {
		t.Errorf("clone aliases the original (-want +got):\n%s", diff)
	}
}

func TestRawSerialize(t *testing.T) {
	r := pdu.NewRaw([]byte{1, 2, 3, 4})
	if diff := cmp.Diff([]byte{1, 2, 3, 4}, pdu.Serialize(r)); diff != "" {
		t.Errorf("Serialize(Raw) mismatch (-want +got):\n%s", diff)
	}
}
