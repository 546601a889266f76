// Package transport strips Ethernet/IP/UDP framing from a captured link-layer
// frame and parses the AC transport header that rides inside the UDP
// payload.
package transport

import (
	"encoding/binary"
	"net/netip"

	"github.com/google/gopacket/layers"

	"github.com/amoeba/ac-pcap-parser/internal/core"
)

const (
	ethernetHeaderLen = 14
	vlanHeaderLen     = 4

	etherTypeIPv4 = 0x0800
	etherTypeIPv6 = 0x86DD
	etherTypeVLAN = 0x8100
	etherTypeQinQ = 0x88A8

	ipv4HeaderMinLen = 20
	ipv6HeaderLen    = 40

	udpHeaderLen = 8
	protocolUDP  = 17
)

// Endpoint identifies one side of a UDP conversation.
type Endpoint struct {
	Addr netip.Addr
	Port uint16
}

// stripLink removes the link-layer header for the given pcap LinkType and
// returns the network-layer payload. Ethernet, raw IP, and loopback
// (Null/Loop, which carry a 4-byte address-family header) are supported.
func stripLink(linkType layers.LinkType, data []byte) ([]byte, error) {
	switch linkType {
	case layers.LinkTypeEthernet:
		return stripEthernet(data)
	case layers.LinkTypeRaw:
		return data, nil
	case layers.LinkTypeNull, layers.LinkTypeLoop:
		if len(data) < 4 {
			return nil, core.ErrPacketTooShort
		}
		return data[4:], nil
	default:
		return nil, core.ErrUnsupportedLink
	}
}

func stripEthernet(data []byte) ([]byte, error) {
	if len(data) < ethernetHeaderLen {
		return nil, core.ErrPacketTooShort
	}

	etherType := binary.BigEndian.Uint16(data[12:14])
	offset := ethernetHeaderLen

	for etherType == etherTypeVLAN || etherType == etherTypeQinQ {
		if len(data) < offset+vlanHeaderLen {
			return nil, core.ErrPacketTooShort
		}
		etherType = binary.BigEndian.Uint16(data[offset+2 : offset+4])
		offset += vlanHeaderLen
	}

	if etherType != etherTypeIPv4 && etherType != etherTypeIPv6 {
		return nil, core.ErrUnsupportedProto
	}

	return data[offset:], nil
}

// stripIP removes the IPv4/IPv6 header and returns the transport-protocol
// number, the source/destination addresses, and the remaining payload.
func stripIP(data []byte) (proto uint8, src, dst netip.Addr, payload []byte, err error) {
	if len(data) < 1 {
		return 0, netip.Addr{}, netip.Addr{}, nil, core.ErrPacketTooShort
	}

	switch data[0] >> 4 {
	case 4:
		return stripIPv4(data)
	case 6:
		return stripIPv6(data)
	default:
		return 0, netip.Addr{}, netip.Addr{}, nil, core.ErrUnsupportedProto
	}
}

func stripIPv4(data []byte) (uint8, netip.Addr, netip.Addr, []byte, error) {
	if len(data) < ipv4HeaderMinLen {
		return 0, netip.Addr{}, netip.Addr{}, nil, core.ErrPacketTooShort
	}

	ihl := int(data[0]&0x0F) * 4
	if ihl < ipv4HeaderMinLen || len(data) < ihl {
		return 0, netip.Addr{}, netip.Addr{}, nil, core.ErrPacketTooShort
	}

	proto := data[9]
	src, ok := netip.AddrFromSlice(data[12:16])
	if !ok {
		return 0, netip.Addr{}, netip.Addr{}, nil, core.ErrPacketTooShort
	}
	dst, ok := netip.AddrFromSlice(data[16:20])
	if !ok {
		return 0, netip.Addr{}, netip.Addr{}, nil, core.ErrPacketTooShort
	}

	return proto, src, dst, data[ihl:], nil
}

func stripIPv6(data []byte) (uint8, netip.Addr, netip.Addr, []byte, error) {
	if len(data) < ipv6HeaderLen {
		return 0, netip.Addr{}, netip.Addr{}, nil, core.ErrPacketTooShort
	}

	proto := data[6]
	src, ok := netip.AddrFromSlice(data[8:24])
	if !ok {
		return 0, netip.Addr{}, netip.Addr{}, nil, core.ErrPacketTooShort
	}
	dst, ok := netip.AddrFromSlice(data[24:40])
	if !ok {
		return 0, netip.Addr{}, netip.Addr{}, nil, core.ErrPacketTooShort
	}

	return proto, src, dst, data[ipv6HeaderLen:], nil
}

// stripUDP removes the UDP header and returns the ports and payload. AC
// traffic is UDP-only; any other transport protocol is rejected.
func stripUDP(proto uint8, data []byte) (srcPort, dstPort uint16, payload []byte, err error) {
	if proto != protocolUDP {
		return 0, 0, nil, core.ErrUnsupportedProto
	}
	if len(data) < udpHeaderLen {
		return 0, 0, nil, core.ErrPacketTooShort
	}
	srcPort = binary.BigEndian.Uint16(data[0:2])
	dstPort = binary.BigEndian.Uint16(data[2:4])
	return srcPort, dstPort, data[udpHeaderLen:], nil
}
