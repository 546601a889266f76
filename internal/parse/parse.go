// Package parse orchestrates the full pipeline: capture iteration,
// transport framing, fragment reassembly, message dissection, and entity
// extraction, in that order.
package parse

import (
	"errors"
	"io"
	"time"

	"github.com/amoeba/ac-pcap-parser/internal/capture"
	"github.com/amoeba/ac-pcap-parser/internal/core"
	"github.com/amoeba/ac-pcap-parser/internal/entity"
	"github.com/amoeba/ac-pcap-parser/internal/fragment"
	"github.com/amoeba/ac-pcap-parser/internal/message"
	"github.com/amoeba/ac-pcap-parser/internal/metrics"
	"github.com/amoeba/ac-pcap-parser/internal/transport"
)

// Config bounds the tunable parts of the pipeline: which side of the
// conversation is the server, and how much fragment state to carry.
type Config struct {
	ServerPort uint16
	Fragment   fragment.Config
}

// DefaultConfig mirrors the defaults used when no configuration is given.
func DefaultConfig() Config {
	return Config{ServerPort: 9000, Fragment: fragment.DefaultConfig()}
}

// ParsedPacket is one capture record's outcome: which messages (if any) it
// produced, in delivery order.
type ParsedPacket struct {
	ID         uint64
	Timestamp  time.Time
	Direction  core.Direction
	MessageIDs []uint64
}

// Diagnostics counts the recoverable conditions encountered while parsing,
// for observability: every skipped packet and every group dropped for a
// conflict or for age is counted here. A group the assembler evicts to stay
// within its capacity limit is not counted.
type Diagnostics struct {
	PacketsSkippedUnsupported int
	PacketsSkippedTruncated   int
	UnknownFlags              int
	FragmentConflicts         int
	StalePartials             int
	DecodeFailures            int
}

// Result is everything one parse call returns.
type Result struct {
	Packets     []ParsedPacket
	Messages    []core.ParsedMessage
	Entities    *entity.Database
	Tally       entity.Tally
	Diagnostics Diagnostics
}

// Capture runs the full pipeline over the capture file at path.
func Capture(path string, cfg Config) (Result, error) {
	it, err := capture.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer it.Close()

	rule := transport.PortRule{ServerPort: cfg.ServerPort}
	assembler := fragment.New(cfg.Fragment)
	extractor := entity.NewExtractor()

	result := Result{Entities: extractor.Database()}

	var packetID uint64
	for {
		rec, err := it.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Result{}, err
		}
		packetID++

		dgram, err := transport.Frame(it.LinkType(), rec, rule)
		switch {
		case errors.Is(err, core.ErrUnsupportedLink), errors.Is(err, core.ErrUnsupportedProto):
			result.Diagnostics.PacketsSkippedUnsupported++
			metrics.PacketsSkippedTotal.WithLabelValues("unsupported").Inc()
			continue
		case errors.Is(err, core.ErrPacketTooShort), errors.Is(err, core.ErrTruncatedHeader):
			result.Diagnostics.PacketsSkippedTruncated++
			metrics.PacketsSkippedTotal.WithLabelValues("truncated").Inc()
			continue
		case errors.Is(err, core.ErrUnknownFlag):
			result.Diagnostics.UnknownFlags++
			metrics.PacketsSkippedTotal.WithLabelValues("unknown_flag").Inc()
			continue
		case err != nil:
			result.Diagnostics.PacketsSkippedTruncated++
			metrics.PacketsSkippedTotal.WithLabelValues("truncated").Inc()
			continue
		}

		metrics.PacketsProcessedTotal.WithLabelValues(dgram.Direction.String()).Inc()
		metrics.FragmentGroupsActive.Set(float64(assembler.ActiveGroups()))

		payload, ready := resolvePayload(assembler, dgram, rec, &result.Diagnostics)
		if !ready {
			// A fragment that did not complete its group yields no
			// messages, but the packet itself is still listed.
			result.Packets = append(result.Packets, ParsedPacket{
				ID:        packetID,
				Timestamp: rec.Timestamp(),
				Direction: dgram.Direction,
			})
			continue
		}

		appPayload := core.ApplicationPayload{
			PacketID:  packetID,
			Direction: dgram.Direction,
			Timestamp: rec.Timestamp(),
			Data:      payload,
		}

		msgs := message.Dissect(appPayload)
		ids := make([]uint64, 0, len(msgs))
		for _, m := range msgs {
			if m.Err != nil {
				result.Diagnostics.DecodeFailures++
				metrics.DecodeFailuresTotal.Inc()
			}
			metrics.MessagesDissectedTotal.WithLabelValues(m.MessageType).Inc()
			extractor.Apply(m)
			ids = append(ids, m.ID)
			result.Messages = append(result.Messages, m)
		}

		result.Packets = append(result.Packets, ParsedPacket{
			ID:         packetID,
			Timestamp:  rec.Timestamp(),
			Direction:  dgram.Direction,
			MessageIDs: ids,
		})
	}

	result.Tally = extractor.Tally()
	metrics.EntitiesTracked.Set(float64(result.Entities.Len()))
	return result, nil
}

// resolvePayload returns the application payload ready for dissection, or
// ready=false if the packet was a non-terminal fragment (or was dropped as
// a stale/conflicting fragment).
func resolvePayload(a *fragment.Assembler, dgram transport.Datagram, rec core.CaptureRecord, diag *Diagnostics) ([]byte, bool) {
	if dgram.Header.Fragment == nil {
		return dgram.Payload, true
	}

	streamID := transport.StreamID(dgram.Header.SessionID, dgram.Direction)
	res := a.Add(streamID, *dgram.Header.Fragment, rec.Timestamp(), dgram.Payload)
	switch {
	case errors.Is(res.Err, core.ErrFragmentConflict):
		diag.FragmentConflicts++
		metrics.FragmentConflictsTotal.Inc()
		return nil, false
	case errors.Is(res.Err, core.ErrStalePartial):
		diag.StalePartials++
		metrics.FragmentGroupsStaleTotal.Inc()
		return nil, false
	case res.Complete != nil:
		return res.Complete, true
	default:
		return nil, false
	}
}
