// Copyright 2019-2022 Intel Corporation. All Rights Reserved.
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

package cpumask

import (
	"errors"
	"testing"
)

func maskWithBits(size int, bits ...int) CPUMask {
	m := New(size)
	for _, b := range bits {
		m.Set(b)
	}
	return m
}

func TestParse(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		size    int
		bits    []int
		wantErr bool
	}{
		{
			name:  "single digit",
			input: "f",
			size:  8,
			bits:  []int{0, 1, 2, 3},
		},
		{
			name:  "leading zeros",
			input: "0000000f",
			size:  8,
			bits:  []int{0, 1, 2, 3},
		},
		{
			name:  "single bit",
			input: "00000001",
			size:  8,
			bits:  []int{0},
		},
		{
			name:  "uppercase",
			input: "F0",
			size:  8,
			bits:  []int{4, 5, 6, 7},
		},
		{
			name:  "two groups",
			input: "ff,00000000",
			size:  8,
			bits:  []int{32, 33, 34, 35, 36, 37, 38, 39},
		},
		{
			name:  "group straddle",
			input: "1,80000000",
			size:  8,
			bits:  []int{31, 32},
		},
		{
			name:  "trailing newline",
			input: "3\n",
			size:  8,
			bits:  []int{0, 1},
		},
		{
			name:  "trailing garbage ignored",
			input: "3 \n",
			size:  8,
			bits:  []int{0, 1},
		},
		{
			name:  "all zero",
			input: "00000000,00000000",
			size:  8,
			bits:  nil,
		},
		{
			name:    "empty",
			input:   "",
			size:    8,
			wantErr: true,
		},
		{
			name:    "no hex digits",
			input:   ",,\n",
			size:    8,
			wantErr: true,
		},
		{
			name:    "garbage inside digits",
			input:   "12g4",
			size:    8,
			wantErr: true,
		},
		{
			name:    "space inside digits",
			input:   "12 34",
			size:    8,
			wantErr: true,
		},
	}

	for _, tc := range cases {
		test := tc
		t.Run(test.name, func(t *testing.T) {
			m := New(test.size)
			err := m.Parse(test.input)

			if test.wantErr {
				if err == nil {
					t.Fatalf("expected parse of %q to fail", test.input)
				}
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Fatalf("expected *ParseError, got %T", err)
				}
				if m.Count() != 0 {
					t.Fatalf("mask not zeroed after failed parse: %s", m)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error parsing %q: %v", test.input, err)
			}
			want := maskWithBits(test.size, test.bits...)
			if !m.Equal(want) {
				t.Fatalf("parsed %q: expected %s got %s", test.input, want, m)
			}
		})
	}
}

func TestParseZeroesPreviousContents(t *testing.T) {
	m := maskWithBits(8, 1, 5, 17)

	if err := m.Parse("not a mask"); err == nil {
		t.Fatal("expected parse failure")
	}
	if m.Count() != 0 {
		t.Fatalf("stale bits left in mask: %s", m)
	}
}

func TestString(t *testing.T) {
	cases := []struct {
		name string
		mask CPUMask
		want string
	}{
		{
			name: "empty",
			mask: New(8),
			want: "0",
		},
		{
			name: "bit zero",
			mask: maskWithBits(8, 0),
			want: "1",
		},
		{
			name: "low nibble",
			mask: maskWithBits(8, 0, 1, 2, 3),
			want: "f",
		},
		{
			name: "high group",
			mask: maskWithBits(8, 32),
			want: "1,00000000",
		},
		{
			name: "both groups",
			mask: maskWithBits(8, 0, 35),
			want: "8,00000001",
		},
		{
			name: "small mask",
			mask: maskWithBits(4, 31),
			want: "80000000",
		},
	}

	for _, tc := range cases {
		test := tc
		t.Run(test.name, func(t *testing.T) {
			if got := test.mask.String(); got != test.want {
				t.Fatalf("expected %q got %q", test.want, got)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	patterns := []func(size int) CPUMask{
		func(size int) CPUMask { return New(size) },
		func(size int) CPUMask { return maskWithBits(size, 0) },
		func(size int) CPUMask { return maskWithBits(size, size*8-1) },
		func(size int) CPUMask {
			m := New(size)
			for i := 0; i < size*8; i += 2 {
				m.Set(i)
			}
			return m
		},
		func(size int) CPUMask {
			m := New(size)
			for i := 0; i < size*8; i++ {
				m.Set(i)
			}
			return m
		},
		func(size int) CPUMask {
			m := New(size)
			for i := 0; i < size*8; i += 7 {
				m.Set(i)
			}
			return m
		},
	}

	for _, size := range []int{4, 8, 16, 32, 128} {
		for i, mk := range patterns {
			m := mk(size)
			parsed, err := Parse(size, m.String())
			if err != nil {
				t.Fatalf("size %d pattern %d: parse(%q): %v", size, i, m.String(), err)
			}
			if !parsed.Equal(m) {
				t.Fatalf("size %d pattern %d: roundtrip %q: got %s", size, i, m.String(), parsed)
			}
		}
	}
}

func TestSetIsSetCount(t *testing.T) {
	m := New(8)

	if m.Count() != 0 {
		t.Fatalf("fresh mask not empty")
	}

	m.Set(0)
	m.Set(63)
	m.Set(63) // idempotent
	m.Set(-1) // out of range, ignored
	m.Set(64) // out of range, ignored

	if m.Count() != 2 {
		t.Fatalf("expected 2 bits set, got %d", m.Count())
	}
	if !m.IsSet(0) || !m.IsSet(63) {
		t.Fatalf("expected bits 0 and 63 set: %s", m)
	}
	if m.IsSet(1) || m.IsSet(64) || m.IsSet(-1) {
		t.Fatalf("unexpected bits reported set")
	}

	m.Zero()
	if m.Count() != 0 {
		t.Fatalf("mask not empty after Zero()")
	}
}

func TestCloneAndCopyInto(t *testing.T) {
	m := maskWithBits(8, 3, 40)

	clone := m.Clone()
	if !clone.Equal(m) {
		t.Fatalf("clone differs from original")
	}
	clone.Set(5)
	if m.IsSet(5) {
		t.Fatalf("clone aliases original storage")
	}

	dst := make([]byte, m.Size())
	m.CopyInto(dst)
	if !CPUMask(dst).Equal(m) {
		t.Fatalf("CopyInto result differs from original")
	}
}
