package capture

import (
	"bytes"
	"io"
	"os"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

func writeClassicPcap(t *testing.T, packets [][]byte) string {
	t.Helper()

	var buf bytes.Buffer
	w := pcapgo.NewWriter(&buf)
	if err := w.WriteFileHeader(65535, layers.LinkTypeEthernet); err != nil {
		t.Fatalf("WriteFileHeader: %v", err)
	}
	base := time.Unix(1700000000, 0)
	for i, p := range packets {
		ci := gopacket.CaptureInfo{
			Timestamp:     base.Add(time.Duration(i) * time.Second),
			CaptureLength: len(p),
			Length:        len(p),
		}
		if err := w.WritePacket(ci, p); err != nil {
			t.Fatalf("WritePacket: %v", err)
		}
	}

	f, err := os.CreateTemp(t.TempDir(), "capture-*.pcap")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return f.Name()
}

func TestIteratorReadsClassicPcap(t *testing.T) {
	packets := [][]byte{
		make([]byte, 20),
		make([]byte, 30),
	}
	path := writeClassicPcap(t, packets)

	it, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer it.Close()

	if it.LinkType() != layers.LinkTypeEthernet {
		t.Fatalf("LinkType = %v, want Ethernet", it.LinkType())
	}

	count := 0
	for {
		rec, err := it.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if len(rec.Data) == 0 {
			t.Fatal("empty record data")
		}
		count++
	}
	if count != len(packets) {
		t.Fatalf("count = %d, want %d", count, len(packets))
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "garbage-*.pcap")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	f.Write([]byte{0x00, 0x01, 0x02, 0x03, 0x04})
	f.Close()

	if _, err := Open(f.Name()); err == nil {
		t.Fatal("Open succeeded on garbage input")
	}
}
