package parse

import (
	"bytes"
	"encoding/binary"
	"net"
	"os"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// buildUDPFrame assembles a minimal Ethernet+IPv4+UDP frame carrying udpPayload.
func buildUDPFrame(t *testing.T, srcPort, dstPort uint16, udpPayload []byte) []byte {
	t.Helper()

	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0, 1, 2, 3, 4, 5},
		DstMAC:       net.HardwareAddr{6, 7, 8, 9, 10, 11},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.IPv4(10, 0, 0, 1),
		DstIP:    net.IPv4(10, 0, 0, 2),
	}
	udp := &layers.UDP{
		SrcPort: layers.UDPPort(srcPort),
		DstPort: layers.UDPPort(dstPort),
	}
	udp.SetNetworkLayerForChecksum(ip)

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, eth, ip, udp, gopacket.Payload(udpPayload)); err != nil {
		t.Fatalf("SerializeLayers: %v", err)
	}
	return buf.Bytes()
}

func acHeader(seq, flags uint32, session uint16) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:], seq)
	binary.LittleEndian.PutUint32(buf[4:], flags)
	binary.LittleEndian.PutUint32(buf[8:], 0) // checksum, unchecked by the framer
	binary.LittleEndian.PutUint16(buf[12:], session)
	binary.LittleEndian.PutUint16(buf[14:], 0)
	return buf
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func writePcap(t *testing.T, frames [][]byte) string {
	t.Helper()
	var b bytes.Buffer
	w := pcapgo.NewWriter(&b)
	if err := w.WriteFileHeader(65535, layers.LinkTypeEthernet); err != nil {
		t.Fatalf("WriteFileHeader: %v", err)
	}
	base := time.Unix(1700000000, 0)
	for i, f := range frames {
		ci := gopacket.CaptureInfo{
			Timestamp:     base.Add(time.Duration(i) * time.Millisecond),
			CaptureLength: len(f),
			Length:        len(f),
		}
		if err := w.WritePacket(ci, f); err != nil {
			t.Fatalf("WritePacket: %v", err)
		}
	}
	f, err := os.CreateTemp(t.TempDir(), "parse-*.pcap")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	f.Write(b.Bytes())
	f.Close()
	return f.Name()
}

func TestCaptureSingleQualitiesUpdateInt(t *testing.T) {
	var appPayload []byte
	appPayload = append(appPayload, le32(0x02CE)...) // Qualities_UpdateInt opcode
	appPayload = append(appPayload, 1)                // sequence
	appPayload = append(appPayload, le32(0xA0000001)...)
	appPayload = append(appPayload, le32(0x11)...) // Level
	appPayload = append(appPayload, le32(50)...)

	udpPayload := append(acHeader(1, 0, 42), appPayload...)
	frame := buildUDPFrame(t, 9000, 5555, udpPayload) // server -> client

	path := writePcap(t, [][]byte{frame})

	result, err := Capture(path, DefaultConfig())
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if len(result.Messages) != 1 {
		t.Fatalf("len(Messages) = %d, want 1", len(result.Messages))
	}
	if result.Messages[0].MessageType != "Qualities_UpdateInt" {
		t.Fatalf("MessageType = %q", result.Messages[0].MessageType)
	}

	e := result.Entities.Get(0xA0000001)
	if e == nil {
		t.Fatal("entity 0xA0000001 not found")
	}
}

func TestCaptureEmptyFile(t *testing.T) {
	path := writePcap(t, nil)

	result, err := Capture(path, DefaultConfig())
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if len(result.Packets) != 0 || len(result.Messages) != 0 || result.Entities.Len() != 0 {
		t.Fatalf("result = %+v", result)
	}
}

func TestCaptureFragmentedMessageOutOfOrder(t *testing.T) {
	var full []byte
	full = append(full, le32(0x9999)...) // unknown opcode, arbitrary body
	full = append(full, []byte("0123456789ABCDEF")...)

	half := len(full) / 2
	part0 := full[:half]
	part1 := full[half:]

	fragHeader := func(idx uint16) []byte {
		h := acHeader(1, 1<<2, 42) // FlagFragment
		frag := make([]byte, 12)
		binary.LittleEndian.PutUint32(frag[0:], 7) // group id
		binary.LittleEndian.PutUint16(frag[4:], 2) // count
		binary.LittleEndian.PutUint16(frag[6:], idx)
		binary.LittleEndian.PutUint32(frag[8:], 0)
		return append(h, frag...)
	}

	udp1 := append(fragHeader(1), part1...)
	udp0 := append(fragHeader(0), part0...)

	frame1 := buildUDPFrame(t, 9000, 5555, udp1)
	frame0 := buildUDPFrame(t, 9000, 5555, udp0)

	path := writePcap(t, [][]byte{frame1, frame0})

	result, err := Capture(path, DefaultConfig())
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if len(result.Packets[0].MessageIDs) != 0 {
		t.Fatalf("first packet should not yield a message before reassembly completes")
	}
	if len(result.Messages) != 1 {
		t.Fatalf("len(Messages) = %d, want 1", len(result.Messages))
	}
}
