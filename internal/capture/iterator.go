// Package capture reads a packet-capture file record by record, without
// holding the whole file in memory.
package capture

import (
	"errors"
	"io"
	"os"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/amoeba/ac-pcap-parser/internal/core"
)

// Iterator reads capture records from a pcap or pcapng file in order.
type Iterator struct {
	f        *os.File
	r        recordReader
	linkType layers.LinkType
}

// recordReader is satisfied by classicAdapter and ngAdapter, which wrap
// pcapgo.Reader and pcapgo.NgReader.
type recordReader interface {
	ReadPacketData() (data []byte, ci captureInfo, err error)
}

type captureInfo struct {
	timestampSec, timestampUsec uint32
}

// Open opens path and sniffs whether it is classic pcap or pcapng format.
func Open(path string) (*Iterator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	br := &bufferedSniffer{f: f}
	magic, err := br.peekMagic()
	if err != nil {
		f.Close()
		return nil, core.ErrContainerCorrupt
	}

	switch magic {
	case pcapMagicLE, pcapMagicBE:
		r, err := pcapgo.NewReader(f)
		if err != nil {
			f.Close()
			return nil, core.ErrContainerCorrupt
		}
		return &Iterator{f: f, r: classicAdapter{r}, linkType: r.LinkType()}, nil
	case pcapngMagic:
		r, err := pcapgo.NewNgReader(f, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			f.Close()
			return nil, core.ErrContainerCorrupt
		}
		return &Iterator{f: f, r: ngAdapter{r}, linkType: r.LinkType()}, nil
	default:
		f.Close()
		return nil, core.ErrContainerCorrupt
	}
}

// LinkType reports the capture's link-layer type.
func (it *Iterator) LinkType() layers.LinkType {
	return it.linkType
}

// Next returns the next capture record, or io.EOF once the file is
// exhausted.
func (it *Iterator) Next() (core.CaptureRecord, error) {
	data, ci, err := it.r.ReadPacketData()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return core.CaptureRecord{}, io.EOF
		}
		return core.CaptureRecord{}, core.ErrContainerCorrupt
	}
	return core.CaptureRecord{
		TsSec:  ci.timestampSec,
		TsUsec: ci.timestampUsec,
		Data:   data,
	}, nil
}

// Close releases the underlying file handle.
func (it *Iterator) Close() error {
	return it.f.Close()
}

const (
	pcapMagicLE = 0xa1b2c3d4
	pcapMagicBE = 0xd4c3b2a1
	pcapngMagic = 0x0a0d0d0a
)

type bufferedSniffer struct {
	f *os.File
}

func (b *bufferedSniffer) peekMagic() (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(b.f, buf[:]); err != nil {
		return 0, err
	}
	if _, err := b.f.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	return uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]), nil
}

type classicAdapter struct{ r *pcapgo.Reader }

func (a classicAdapter) ReadPacketData() ([]byte, captureInfo, error) {
	data, ci, err := a.r.ReadPacketData()
	if err != nil {
		return nil, captureInfo{}, err
	}
	sec := uint32(ci.Timestamp.Unix())
	usec := uint32(ci.Timestamp.Nanosecond() / 1000)
	return data, captureInfo{timestampSec: sec, timestampUsec: usec}, nil
}

type ngAdapter struct{ r *pcapgo.NgReader }

func (a ngAdapter) ReadPacketData() ([]byte, captureInfo, error) {
	data, ci, err := a.r.ReadPacketData()
	if err != nil {
		return nil, captureInfo{}, err
	}
	sec := uint32(ci.Timestamp.Unix())
	usec := uint32(ci.Timestamp.Nanosecond() / 1000)
	return data, captureInfo{timestampSec: sec, timestampUsec: usec}, nil
}
