package transport

import (
	"github.com/google/gopacket/layers"

	"github.com/amoeba/ac-pcap-parser/internal/core"
)

// Datagram is one UDP datagram's AC transport header plus the application
// payload that follows the header and its optional blocks.
type Datagram struct {
	Src, Dst  Endpoint
	Direction core.Direction
	Header    core.TransportHeader
	Payload   []byte
}

// Frame strips link/IP/UDP framing from a captured record and parses the
// AC transport header, classifying direction via rule. Unsupported link
// types, non-UDP datagrams and non-AC traffic return
// core.ErrUnsupportedLink/ErrUnsupportedProto/ErrPacketTooShort/
// ErrTruncatedHeader and should be skipped by the caller rather than
// treated as fatal. Unknown flag bits return the parsed Datagram together
// with core.ErrUnknownFlag.
func Frame(linkType layers.LinkType, rec core.CaptureRecord, rule PortRule) (Datagram, error) {
	network, err := stripLink(linkType, rec.Data)
	if err != nil {
		return Datagram{}, err
	}

	proto, srcAddr, dstAddr, transportData, err := stripIP(network)
	if err != nil {
		return Datagram{}, err
	}

	srcPort, dstPort, payload, err := stripUDP(proto, transportData)
	if err != nil {
		return Datagram{}, err
	}

	src := Endpoint{Addr: srcAddr, Port: srcPort}
	dst := Endpoint{Addr: dstAddr, Port: dstPort}
	dir := rule.Classify(src, dst)

	hdr, appPayload, hdrErr := ParseHeader(payload)
	if hdrErr != nil && hdrErr != core.ErrUnknownFlag {
		return Datagram{}, hdrErr
	}

	return Datagram{
		Src:       src,
		Dst:       dst,
		Direction: dir,
		Header:    hdr,
		Payload:   appPayload,
	}, hdrErr
}
