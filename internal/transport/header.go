package transport

import (
	"github.com/amoeba/ac-pcap-parser/internal/core"
	"github.com/amoeba/ac-pcap-parser/internal/reader"
)

// Transport header flag bits. Three of them gate an optional block after
// the fixed 16-byte header, read in this order: FlagRetransmissionRequest,
// FlagAckSequence, FlagFragment. The other known bits carry no block.
const (
	FlagRetransmission        uint32 = 1 << 0
	FlagEncryptedChecksum     uint32 = 1 << 1
	FlagFragment              uint32 = 1 << 2
	FlagServerSwitch          uint32 = 1 << 8
	FlagFlow                  uint32 = 1 << 9
	FlagWeenieOrderedEvent    uint32 = 1 << 10
	FlagRetransmissionRequest uint32 = 1 << 11
	FlagRejectRetransmission  uint32 = 1 << 12
	FlagAckSequence           uint32 = 1 << 13
	FlagLoginRequest          uint32 = 1 << 14
	FlagWeenieOrdered         uint32 = 1 << 15
	FlagServerSwitchMessage   uint32 = 1 << 16
	FlagEchoRequest           uint32 = 1 << 22
	FlagEchoResponse          uint32 = 1 << 23
	FlagFlow2                 uint32 = 1 << 24

	knownFlagMask = FlagRetransmission | FlagEncryptedChecksum | FlagFragment |
		FlagServerSwitch | FlagFlow | FlagWeenieOrderedEvent | FlagRetransmissionRequest |
		FlagRejectRetransmission | FlagAckSequence | FlagLoginRequest | FlagWeenieOrdered |
		FlagServerSwitchMessage | FlagEchoRequest | FlagEchoResponse | FlagFlow2

	headerFixedLen = 16
)

// ParseHeader reads the fixed transport header and its optional blocks from
// payload, in the block order given above the flag constants. Unknown flag bits are
// reported via core.ErrUnknownFlag but do not themselves prevent the known
// blocks from being parsed.
func ParseHeader(payload []byte) (core.TransportHeader, []byte, error) {
	if len(payload) < headerFixedLen {
		return core.TransportHeader{}, nil, core.ErrTruncatedHeader
	}

	r := reader.New(payload)

	seq, _ := r.ReadU32()
	flags, _ := r.ReadU32()
	checksum, _ := r.ReadU32()
	sessionID, _ := r.ReadU16()
	t, _ := r.ReadU16()

	hdr := core.TransportHeader{
		Sequence:  seq,
		Flags:     flags,
		Checksum:  checksum,
		SessionID: sessionID,
		Time:      t,
	}

	var unknownFlag error
	if flags&^knownFlagMask != 0 {
		unknownFlag = core.ErrUnknownFlag
	}

	if flags&FlagRetransmissionRequest != 0 {
		count, err := r.ReadU32()
		if err != nil {
			return hdr, nil, core.ErrTruncatedHeader
		}
		// count is wire-supplied; cap the preallocation hint at what the
		// reader could actually still hold so a corrupt huge count can't
		// force a multi-gigabyte allocation before the bounds-checked
		// reads below ever run.
		seqs := make([]uint32, 0, min(int(count), r.Remaining()/4))
		for i := uint32(0); i < count; i++ {
			s, err := r.ReadU32()
			if err != nil {
				return hdr, nil, core.ErrTruncatedHeader
			}
			seqs = append(seqs, s)
		}
		hdr.RetransmitRequested = seqs
	}

	if flags&FlagAckSequence != 0 {
		ack, err := r.ReadU32()
		if err != nil {
			return hdr, nil, core.ErrTruncatedHeader
		}
		hdr.AckSequence = ack
	}

	if flags&FlagFragment != 0 {
		groupID, err1 := r.ReadU32()
		count, err2 := r.ReadU16()
		index, err3 := r.ReadU16()
		queueID, err4 := r.ReadU32()
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return hdr, nil, core.ErrTruncatedHeader
		}
		hdr.Fragment = &core.FragmentHeader{
			GroupID:       groupID,
			FragmentCount: count,
			FragmentIndex: index,
			QueueID:       queueID,
		}
	}

	rest, err := r.Peek(r.Remaining())
	if err != nil {
		rest = nil
	}

	return hdr, rest, unknownFlag
}

// StreamID composes a session ID and direction into a single key so that
// fragment tracking never conflates client-to-server and server-to-client
// groups that happen to share a group ID.
func StreamID(sessionID uint16, dir core.Direction) uint64 {
	return uint64(sessionID)<<8 | uint64(dir)
}

// PortRule classifies a UDP datagram's direction from its port pair. AC
// servers listen on a fixed, configured port; traffic addressed to it is
// client-to-server, traffic originating from it is server-to-client.
type PortRule struct {
	ServerPort uint16
}

// Classify returns the direction of a UDP datagram given the parsed
// endpoints, or DirectionUnknown if neither port matches the server port.
func (p PortRule) Classify(src, dst Endpoint) core.Direction {
	switch p.ServerPort {
	case dst.Port:
		return core.DirectionClientToServer
	case src.Port:
		return core.DirectionServerToClient
	default:
		return core.DirectionUnknown
	}
}
