// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root

package roaring

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Cookies and framing bytes of the two serialization formats. Everything on
// the wire is little-endian.
const (
	serialCookieRun   = 0x3BF8 // followed by uint16 size-1 and packed run flags
	serialCookieNoRun = 0x3BF0 // followed by uint32 size and an offset header

	serializationArrayUint32 = 1 // native framing: packed uint32 values
	serializationContainer   = 2 // native framing: per-container layout
)

var (
	// ErrInvalidCookie is returned when a portable buffer does not start
	// with a known cookie.
	ErrInvalidCookie = errors.New("roaring: invalid serialization cookie")

	// ErrCorruptedInput is returned when a serialized buffer is truncated
	// or internally inconsistent.
	ErrCorruptedInput = errors.New("roaring: corrupted serialized input")
)

// PortableSizeInBytes returns the exact length of the ToBytes output.
func (rb *Bitmap) PortableSizeInBytes() int {
	size := rb.highlow.size()
	n := 4 * size // descriptive header
	if rb.hasRunContainers() {
		n += 4 + (size+7)/8
	} else {
		n += 6 + 4*size
	}
	for _, c := range rb.highlow.containers {
		n += containerPortableSize(unwrap(c))
	}
	return n
}

func (rb *Bitmap) hasRunContainers() bool {
	for _, c := range rb.highlow.containers {
		if unwrap(c).typecode() == typeRun {
			return true
		}
	}
	return false
}

func containerPortableSize(c container) int {
	switch c := c.(type) {
	case *arrayContainer:
		return 2 * len(c.content)
	case *bitmapContainer:
		return bitmapSizeInBytes
	case *runContainer:
		return 2 + 4*len(c.runs)
	}
	return 0
}

// ToBytes serializes the bitmap into the portable format.
func (rb *Bitmap) ToBytes() []byte {
	size := rb.highlow.size()
	hasRun := rb.hasRunContainers()
	buf := make([]byte, 0, rb.PortableSizeInBytes())

	if hasRun {
		buf = binary.LittleEndian.AppendUint16(buf, serialCookieRun)
		buf = binary.LittleEndian.AppendUint16(buf, uint16(size-1))
		flags := make([]byte, (size+7)/8)
		for i, c := range rb.highlow.containers {
			if unwrap(c).typecode() == typeRun {
				flags[i/8] |= 1 << (i % 8)
			}
		}
		buf = append(buf, flags...)
	} else {
		buf = binary.LittleEndian.AppendUint16(buf, serialCookieNoRun)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(size))
	}

	for i, c := range rb.highlow.containers {
		buf = binary.LittleEndian.AppendUint16(buf, rb.highlow.keys[i])
		buf = binary.LittleEndian.AppendUint16(buf, uint16(unwrap(c).getCardinality()-1))
	}

	if !hasRun {
		offset := len(buf) + 4*size
		for _, c := range rb.highlow.containers {
			buf = binary.LittleEndian.AppendUint32(buf, uint32(offset))
			offset += containerPortableSize(unwrap(c))
		}
	}

	for _, c := range rb.highlow.containers {
		buf = appendContainerPortable(buf, unwrap(c))
	}
	return buf
}

func appendContainerPortable(buf []byte, c container) []byte {
	switch c := c.(type) {
	case *arrayContainer:
		for _, v := range c.content {
			buf = binary.LittleEndian.AppendUint16(buf, v)
		}
	case *bitmapContainer:
		for _, w := range c.bits {
			buf = binary.LittleEndian.AppendUint64(buf, w)
		}
	case *runContainer:
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(c.runs)))
		for _, iv := range c.runs {
			buf = binary.LittleEndian.AppendUint16(buf, iv.start)
			buf = binary.LittleEndian.AppendUint16(buf, iv.last-iv.start)
		}
	}
	return buf
}

// FromBytes parses a bitmap from the portable format, validating that every
// container recovers exactly as declared.
func FromBytes(buf []byte) (*Bitmap, error) {
	if len(buf) < 2 {
		return nil, fmt.Errorf("%w: buffer too short", ErrCorruptedInput)
	}
	cookie := binary.LittleEndian.Uint16(buf)
	pos := 2

	var size int
	var flags []byte
	switch cookie {
	case serialCookieRun:
		if len(buf) < pos+2 {
			return nil, fmt.Errorf("%w: missing container count", ErrCorruptedInput)
		}
		size = int(binary.LittleEndian.Uint16(buf[pos:])) + 1
		pos += 2
		nFlags := (size + 7) / 8
		if len(buf) < pos+nFlags {
			return nil, fmt.Errorf("%w: missing run flags", ErrCorruptedInput)
		}
		flags = buf[pos : pos+nFlags]
		pos += nFlags
	case serialCookieNoRun:
		if len(buf) < pos+4 {
			return nil, fmt.Errorf("%w: missing container count", ErrCorruptedInput)
		}
		size = int(binary.LittleEndian.Uint32(buf[pos:]))
		pos += 4
	default:
		return nil, fmt.Errorf("%w: 0x%04x", ErrInvalidCookie, cookie)
	}

	if len(buf) < pos+4*size {
		return nil, fmt.Errorf("%w: truncated descriptive header", ErrCorruptedInput)
	}
	keys := make([]uint16, size)
	cards := make([]int, size)
	for i := 0; i < size; i++ {
		keys[i] = binary.LittleEndian.Uint16(buf[pos:])
		cards[i] = int(binary.LittleEndian.Uint16(buf[pos+2:])) + 1
		pos += 4
		if i > 0 && keys[i] <= keys[i-1] {
			return nil, fmt.Errorf("%w: keys out of order", ErrCorruptedInput)
		}
	}

	if cookie == serialCookieNoRun {
		// offsets are redundant when parsing sequentially
		if len(buf) < pos+4*size {
			return nil, fmt.Errorf("%w: truncated offset header", ErrCorruptedInput)
		}
		pos += 4 * size
	}

	rb := NewWithCapacity(size)
	for i := 0; i < size; i++ {
		var c container
		var err error
		switch {
		case flags != nil && flags[i/8]&(1<<(i%8)) != 0:
			c, pos, err = parseRunContainer(buf, pos)
		case cards[i] > arrayMaxSize:
			c, pos, err = parseBitmapContainer(buf, pos)
		default:
			c, pos, err = parseArrayContainer(buf, pos, cards[i])
		}
		if err != nil {
			return nil, err
		}
		if c.getCardinality() != cards[i] {
			return nil, fmt.Errorf("%w: container cardinality mismatch", ErrCorruptedInput)
		}
		rb.highlow.appendContainer(keys[i], c)
	}
	return rb, nil
}

func parseArrayContainer(buf []byte, pos, card int) (container, int, error) {
	if card < 1 || len(buf) < pos+2*card {
		return nil, 0, fmt.Errorf("%w: truncated array container", ErrCorruptedInput)
	}
	content := make([]uint16, card)
	for i := range content {
		content[i] = binary.LittleEndian.Uint16(buf[pos:])
		pos += 2
		if i > 0 && content[i] <= content[i-1] {
			return nil, 0, fmt.Errorf("%w: array values out of order", ErrCorruptedInput)
		}
	}
	return &arrayContainer{content: content}, pos, nil
}

func parseBitmapContainer(buf []byte, pos int) (container, int, error) {
	if len(buf) < pos+bitmapSizeInBytes {
		return nil, 0, fmt.Errorf("%w: truncated bitmap container", ErrCorruptedInput)
	}
	c := newBitmapContainer()
	for i := range c.bits {
		c.bits[i] = binary.LittleEndian.Uint64(buf[pos:])
		pos += 8
	}
	c.card = int32(c.bits.Count())
	return c, pos, nil
}

func parseRunContainer(buf []byte, pos int) (container, int, error) {
	if len(buf) < pos+2 {
		return nil, 0, fmt.Errorf("%w: truncated run container", ErrCorruptedInput)
	}
	n := int(binary.LittleEndian.Uint16(buf[pos:]))
	pos += 2
	if len(buf) < pos+4*n {
		return nil, 0, fmt.Errorf("%w: truncated run container", ErrCorruptedInput)
	}
	runs := make([]interval16, n)
	for i := range runs {
		start := binary.LittleEndian.Uint16(buf[pos:])
		length := binary.LittleEndian.Uint16(buf[pos+2:])
		pos += 4
		if int(start)+int(length) > 0xFFFF {
			return nil, 0, fmt.Errorf("%w: run overflows container", ErrCorruptedInput)
		}
		runs[i] = interval16{start: start, last: start + length}
		if i > 0 && runs[i].start <= runs[i-1].last {
			return nil, 0, fmt.Errorf("%w: runs out of order", ErrCorruptedInput)
		}
	}
	return &runContainer{runs: runs}, pos, nil
}

// WriteTo writes the portable format to w.
func (rb *Bitmap) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(rb.ToBytes())
	return int64(n), err
}

// ReadFrom replaces rb's contents with a portable bitmap read from r.
func (rb *Bitmap) ReadFrom(r io.Reader) (int64, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return int64(len(buf)), err
	}
	parsed, err := FromBytes(buf)
	if err != nil {
		return int64(len(buf)), err
	}
	rb.highlow = parsed.highlow
	return int64(len(buf)), nil
}

// Serialize encodes the bitmap in the native format, choosing whichever of
// the container framing and the packed value array is smaller.
func (rb *Bitmap) Serialize() []byte {
	card := int(rb.GetCardinality())
	arrayLen := 1 + 4*card
	containerLen := 5 + rb.nativeBodySizeInBytes()

	if arrayLen <= containerLen {
		buf := make([]byte, 1, arrayLen)
		buf[0] = serializationArrayUint32
		rb.Range(func(x uint32) bool {
			buf = binary.LittleEndian.AppendUint32(buf, x)
			return true
		})
		return buf
	}

	buf := make([]byte, 0, containerLen)
	buf = append(buf, serializationContainer)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(containerLen))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(rb.highlow.size()))
	for i, c := range rb.highlow.containers {
		inner := unwrap(c)
		buf = binary.LittleEndian.AppendUint16(buf, rb.highlow.keys[i])
		buf = append(buf, byte(inner.typecode()))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(containerPortableSize(inner)))
		buf = appendContainerPortable(buf, inner)
	}
	return buf
}

func (rb *Bitmap) nativeBodySizeInBytes() int {
	n := 4
	for _, c := range rb.highlow.containers {
		n += 7 + containerPortableSize(unwrap(c))
	}
	return n
}

// Deserialize decodes a buffer produced by Serialize, dispatching on the
// leading framing byte.
func Deserialize(buf []byte) (*Bitmap, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrCorruptedInput)
	}
	switch buf[0] {
	case serializationArrayUint32:
		if (len(buf)-1)%4 != 0 {
			return nil, fmt.Errorf("%w: misaligned value array", ErrCorruptedInput)
		}
		rb := New()
		for pos := 1; pos < len(buf); pos += 4 {
			rb.Add(binary.LittleEndian.Uint32(buf[pos:]))
		}
		return rb, nil
	case serializationContainer:
		if len(buf) < 9 {
			return nil, fmt.Errorf("%w: buffer too short", ErrCorruptedInput)
		}
		if int(binary.LittleEndian.Uint32(buf[1:])) != len(buf) {
			return nil, fmt.Errorf("%w: length mismatch", ErrCorruptedInput)
		}
		return deserializeNative(buf[5:])
	default:
		return nil, fmt.Errorf("%w: unknown serialization type %d", ErrCorruptedInput, buf[0])
	}
}

func deserializeNative(buf []byte) (*Bitmap, error) {
	size := int(binary.LittleEndian.Uint32(buf))
	pos := 4
	if size > (len(buf)-pos)/7 {
		return nil, fmt.Errorf("%w: container count too large", ErrCorruptedInput)
	}
	rb := NewWithCapacity(size)
	lastKey := -1
	for i := 0; i < size; i++ {
		if len(buf) < pos+7 {
			return nil, fmt.Errorf("%w: truncated container header", ErrCorruptedInput)
		}
		key := binary.LittleEndian.Uint16(buf[pos:])
		tc := ctype(buf[pos+2])
		payload := int(binary.LittleEndian.Uint32(buf[pos+3:]))
		pos += 7
		if int(key) <= lastKey {
			return nil, fmt.Errorf("%w: keys out of order", ErrCorruptedInput)
		}
		lastKey = int(key)
		if len(buf) < pos+payload {
			return nil, fmt.Errorf("%w: truncated container payload", ErrCorruptedInput)
		}

		var c container
		var err error
		next := pos + payload
		switch tc {
		case typeArray:
			if payload%2 != 0 {
				return nil, fmt.Errorf("%w: misaligned array container", ErrCorruptedInput)
			}
			c, pos, err = parseArrayContainer(buf, pos, payload/2)
		case typeBitmap:
			if payload != bitmapSizeInBytes {
				return nil, fmt.Errorf("%w: bad bitmap container size", ErrCorruptedInput)
			}
			c, pos, err = parseBitmapContainer(buf, pos)
		case typeRun:
			c, pos, err = parseRunContainer(buf, pos)
		default:
			return nil, fmt.Errorf("%w: unknown container type %d", ErrCorruptedInput, tc)
		}
		switch {
		case err != nil:
			return nil, err
		case pos != next:
			return nil, fmt.Errorf("%w: container payload size mismatch", ErrCorruptedInput)
		case c.getCardinality() == 0:
			return nil, fmt.Errorf("%w: empty container", ErrCorruptedInput)
		}
		rb.highlow.appendContainer(key, c)
	}
	if pos != len(buf) {
		return nil, fmt.Errorf("%w: trailing bytes", ErrCorruptedInput)
	}
	return rb, nil
}
