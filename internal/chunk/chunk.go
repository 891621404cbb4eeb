// SPDX-License-Identifier: EPL-2.0

// Package chunk rebuilds RIFF and FORM containers from bounds-checked chunks
// before they reach a decoder that trusts the declared sizes.
package chunk

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrOverrun is returned for a chunk that claims more bytes than remain.
	ErrOverrun = errors.New("chunk overruns input")
	// ErrUndersized is returned for a chunk shorter than its minimum size.
	ErrUndersized = errors.New("chunk too short")
	// ErrShort is returned for input without a complete container preamble.
	ErrShort = errors.New("input shorter than the container preamble")
)

// Preamble is the container ID, its size and the form type.
const (
	Preamble = 12
	header   = 8
)

// Layout describes an IFF-style container.
type Layout struct {
	// Order is the byte order of the size fields.
	Order binary.ByteOrder
	// Keep lists the chunk IDs the decoder reads. Every other chunk is
	// checked and dropped.
	Keep []string
	// Stream is the sample data chunk. It may run past the end of the input,
	// as truncated and streamed files do; its size is clamped to the bytes
	// present and the walk stops there.
	Stream string
	// MinSize maps chunk IDs to their smallest valid size.
	MinSize map[string]uint32
}

// Rebuild returns a copy of the container in data holding only the kept
// chunks, in their original order. Any chunk other than Stream that claims
// more bytes than remain, or falls below its MinSize, is rejected.
func (l Layout) Rebuild(data []byte) (*bytes.Reader, error) {
	if len(data) < Preamble {
		return nil, ErrShort
	}

	out := make([]byte, Preamble, len(data))
	copy(out, data[:Preamble])

	for pos := Preamble; pos+header <= len(data); {
		id := string(data[pos : pos+4])
		n := int64(l.Order.Uint32(data[pos+4:]))
		body := pos + header
		left := int64(len(data) - body)

		if least, ok := l.MinSize[id]; ok && n < int64(least) {
			return nil, fmt.Errorf("%w: %q is %d bytes, needs %d", ErrUndersized, id, n, least)
		}

		last := false
		if n > left {
			if id != l.Stream {
				return nil, fmt.Errorf("%w: %q claims %d bytes, %d left", ErrOverrun, id, n, left)
			}
			n, last = left, true
		}

		if slices.Contains(l.Keep, id) || id == l.Stream {
			out = append(out, data[pos:pos+4]...)
			out = l.Order.AppendUint32(out, uint32(n))
			out = append(out, data[body:body+int(n)]...)
			if n&1 == 1 {
				out = append(out, 0)
			}
		}
		if last {
			break
		}

		pos = body + int(n+n&1)
	}

	l.Order.PutUint32(out[4:8], uint32(len(out)-header))

	return bytes.NewReader(out), nil
}
