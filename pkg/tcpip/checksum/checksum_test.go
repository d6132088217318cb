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

package checksum

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestChecksumer(t *testing.T) {
	testCases := []struct {
		name string
		data [][]byte
		want uint16
	}{
		{
			name: "empty",
			want: 0,
		},
		{
			name: "OneOddView",
			data: [][]byte{
				{1, 9, 0, 5, 4},
			},
			want: 1294,
		},
		{
			name: "TwoOddViews",
			data: [][]byte{
				{1, 9, 0, 5, 4},
				{4, 3, 7, 1, 2, 123},
			},
			want: 33819,
		},
		{
			name: "OneEvenView",
			data: [][]byte{
				{1, 9, 0, 5},
			},
			want: 270,
		},
		{
			name: "TwoEvenViews",
			data: [][]byte{
				{98, 1, 9, 0},
				{9, 0, 5, 4},
			},
			want: 30981,
		},
		{
			name: "ThreeViews",
			data: [][]byte{
				{77, 11, 33, 0, 55, 44},
				{98, 1, 9, 0, 5, 4},
				{4, 3, 7, 1, 2, 123, 99},
			},
			want: 34236,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var all bytes.Buffer
			var c Checksumer
			for _, b := range tc.data {
				c.Add(b)
				// Append to the buffer. We will check the checksum as a whole later.
				if _, err := all.Write(b); err != nil {
					t.Fatalf("all.Write(b) = _, %s; want _, nil", err)
				}
			}
			if got, want := c.Checksum(), tc.want; got != want {
				t.Errorf("c.Checksum() = %d, want %d", got, want)
			}
			if got, want := Checksum(all.Bytes(), 0 /* initial */), tc.want; got != want {
				t.Errorf("Checksum(flatten tc.data) = %d, want %d", got, want)
			}
		})
	}
}

// referenceChecksum accumulates the entire sum in a uint32 and folds once at
// the end, a deliberately different formulation than calculateChecksum's
// per-pass folding.
func referenceChecksum(buf []byte, initial uint16) uint16 {
	v := uint32(initial)
	l := len(buf)
	if l&1 != 0 {
		l--
		v += uint32(buf[l]) << 8
	}
	for i := 0; i < l; i += 2 {
		v += (uint32(buf[i]) << 8) + uint32(buf[i+1])
	}
	for v>>16 != 0 {
		v = (v & 0xffff) + v>>16
	}
	return uint16(v)
}

func TestChecksumMatchesReference(t *testing.T) {
	bufSizes := []int{0, 1, 2, 3, 4, 7, 8, 15, 16, 31, 32, 63, 64, 127, 128, 255, 256, 257, 1023, 1024}

	// Ensure same buffer generation for test consistency.
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		buf := make([]byte, bufSizes[i%len(bufSizes)])
		initial := uint16(rnd.Intn(65536))
		rnd.Read(buf)

		if got, want := Checksum(buf, initial), referenceChecksum(buf, initial); got != want {
			t.Fatalf("checksum for (buf = %x, initial = %d) got: %d, want: %d", buf, initial, got, want)
		}
	}
}

func TestCombine(t *testing.T) {
	for _, tc := range []struct {
		a, b, want uint16
	}{
		{0, 0, 0},
		{0xffff, 1, 1},
		{0x8000, 0x8000, 1},
		{0x1234, 0x4321, 0x5555},
	} {
		if got := Combine(tc.a, tc.b); got != tc.want {
			t.Errorf("Combine(%#x, %#x) = %#x, want %#x", tc.a, tc.b, got, tc.want)
		}
	}
}
