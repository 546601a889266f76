// Package reader implements a bounds-checked little-endian cursor over a
// byte slice, the primitive the rest of the dissection pipeline reads
// through.
package reader

import (
	"encoding/binary"
	"math"

	"github.com/amoeba/ac-pcap-parser/internal/core"
)

// Reader is a cursor over a byte slice. The zero value is not usable; use
// New. Reader does not copy the underlying slice.
type Reader struct {
	data   []byte
	pos    int
	origin int // byte offset that Align/read_string16l padding is relative to
}

// New returns a Reader positioned at the start of data.
func New(data []byte) *Reader {
	return &Reader{data: data}
}

// SetOrigin fixes the reference point string alignment is computed from.
// The AC wire format aligns strings to the start of the payload region,
// not the cursor's absolute position (see design notes on string padding).
func (r *Reader) SetOrigin(origin int) {
	r.origin = origin
}

// Pos returns the current cursor offset.
func (r *Reader) Pos() int { return r.pos }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

func (r *Reader) need(n int) error {
	if n < 0 || r.Remaining() < n {
		return core.ErrTruncatedInput
	}
	return nil
}

// ReadU8 reads one byte.
func (r *Reader) ReadU8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

// ReadU16 reads a little-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadU32 reads a little-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadU64 reads a little-endian uint64.
func (r *Reader) ReadU64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

// ReadI8 reads one signed byte.
func (r *Reader) ReadI8() (int8, error) {
	v, err := r.ReadU8()
	return int8(v), err
}

// ReadI16 reads a little-endian int16.
func (r *Reader) ReadI16() (int16, error) {
	v, err := r.ReadU16()
	return int16(v), err
}

// ReadI32 reads a little-endian int32.
func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

// ReadI64 reads a little-endian int64.
func (r *Reader) ReadI64() (int64, error) {
	v, err := r.ReadU64()
	return int64(v), err
}

// ReadF32 reads a little-endian IEEE-754 float32.
func (r *Reader) ReadF32() (float32, error) {
	v, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadF64 reads a little-endian IEEE-754 float64.
func (r *Reader) ReadF64() (float64, error) {
	v, err := r.ReadU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadBool reads a single byte; any nonzero value is true.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadU8()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// ReadBytes reads and returns the next n bytes as a copy.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.data[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

// Peek returns the next n bytes without advancing the cursor.
func (r *Reader) Peek(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	return r.data[r.pos : r.pos+n], nil
}

// Skip advances the cursor by n bytes without returning them.
func (r *Reader) Skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.pos += n
	return nil
}

// Align advances the cursor so that (pos - origin) is a multiple of n.
func (r *Reader) Align(n int) error {
	if n <= 0 {
		return core.ErrBadAlignment
	}
	rel := r.pos - r.origin
	pad := (n - (rel % n)) % n
	if pad == 0 {
		return nil
	}
	return r.Skip(pad)
}

// ReadString16L reads a length-prefixed string: a little-endian uint16
// length followed by that many bytes, then aligns the cursor to a 4-byte
// boundary relative to the reader's origin.
func (r *Reader) ReadString16L() (string, error) {
	n, err := r.ReadU16()
	if err != nil {
		return "", err
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	if err := r.Align(4); err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadCompressedU32 reads the protocol's variable-length unsigned integer:
// values below 0x80 are a single byte; otherwise the top two bits of the
// first byte select a 2-byte or 4-byte encoding, with the remaining 14 or
// 30 bits (big-endian within the field) holding the value.
func (r *Reader) ReadCompressedU32() (uint32, error) {
	b0, err := r.ReadU8()
	if err != nil {
		return 0, err
	}
	if b0&0x80 == 0 {
		return uint32(b0), nil
	}
	if b0&0x40 == 0 {
		b1, err := r.ReadU8()
		if err != nil {
			return 0, err
		}
		return (uint32(b0&0x3F) << 8) | uint32(b1), nil
	}
	b1, err := r.ReadU8()
	if err != nil {
		return 0, err
	}
	b2, err := r.ReadU8()
	if err != nil {
		return 0, err
	}
	b3, err := r.ReadU8()
	if err != nil {
		return 0, err
	}
	return (uint32(b0&0x3F) << 24) | (uint32(b1) << 16) | (uint32(b2) << 8) | uint32(b3), nil
}

// PackableHashTable is a length-prefixed (key, value) table, used by
// decoders such as SetAppraiseInfo's property dictionaries. bucketHint is
// an internal sizing hint the protocol carries alongside the entry count;
// it does not change the number of entries read.
type PackableHashTable[K comparable, V any] struct {
	BucketHint uint32
	Entries    map[K]V
}

// ReadPackableHashtable reads a packable hashtable: entry count (u32),
// bucket-size hint (u32), then that many (key, value) pairs via readKV.
func ReadPackableHashtable[K comparable, V any](r *Reader, readKV func(*Reader) (K, V, error)) (PackableHashTable[K, V], error) {
	count, err := r.ReadU32()
	if err != nil {
		return PackableHashTable[K, V]{}, err
	}
	bucketHint, err := r.ReadU32()
	if err != nil {
		return PackableHashTable[K, V]{}, err
	}
	// count is wire-supplied; cap the map's size hint at the reader's
	// remaining bytes (an entry is never smaller than one byte) so a
	// corrupt huge count can't force an oversized bucket-array allocation
	// before a single entry is actually read.
	entries := make(map[K]V, min(int(count), r.Remaining()))
	for i := uint32(0); i < count; i++ {
		k, v, err := readKV(r)
		if err != nil {
			return PackableHashTable[K, V]{}, err
		}
		entries[k] = v
	}
	return PackableHashTable[K, V]{BucketHint: bucketHint, Entries: entries}, nil
}
