// Package message turns a defragmented application payload into the
// sequence of typed messages it carries.
package message

import (
	"fmt"

	"github.com/amoeba/ac-pcap-parser/internal/core"
	"github.com/amoeba/ac-pcap-parser/internal/reader"
)

// OrderedGameEvent is the decoded form of the 0xF7B0 envelope: ordering
// identifiers plus whatever the sub-event's own decoder produced in Body.
// Body is nil when the sub-event has no typed decoder (raw-tail capture).
type OrderedGameEvent struct {
	OrderedObjectID uint32
	OrderedSequence uint32
	EventType       string
	Body            any
}

type topLevelDecoder func(*reader.Reader) (any, error)

var topLevelDecoders = map[Opcode]struct {
	name    string
	decoder topLevelDecoder
}{
	OpcodeQualitiesPrivateUpdateInt: {"Qualities_PrivateUpdateInt", wrap(readQualitiesPrivateUpdateInt)},
	OpcodeQualitiesUpdateInt:        {"Qualities_UpdateInt", wrap(readQualitiesUpdateInt)},
	OpcodeQualitiesUpdateInstanceId: {"Qualities_UpdateInstanceId", wrap(readQualitiesUpdateInstanceId)},
	OpcodeQualitiesPrivateUpdateAttribute2ndLvl: {
		"Qualities_PrivateUpdateAttribute2ndLevel", wrap(readQualitiesPrivateUpdateAttribute2ndLevel),
	},
	OpcodeMovementSetObjectMovement:  {"Movement_SetObjectMovement", wrap(readMovementSetObjectMovement)},
	OpcodeEffectsSoundEvent:          {"Effects_SoundEvent", wrap(readEffectsSoundEvent)},
	OpcodeEffectsPlayScriptType:      {"Effects_PlayScriptType", wrap(readEffectsPlayScriptType)},
	OpcodeCommunicationTextboxString: {"Communication_TextboxString", wrap(readCommunicationTextboxString)},
	OpcodeInventoryPickupEvent:       {"Inventory_PickupEvent", wrap(readInventoryPickupEvent)},
	OpcodeItemObjDescEvent:           {"Item_ObjDescEvent", wrap(readItemObjDescEvent)},
}

// gameEventDecoders dispatches ordered-event sub-types. deferred marks a
// decoder that cannot reconstruct its body's byte length (the schema is
// unknown), so the dissector must treat a clean decode the same as an
// unknown sub-event: raw-tail capture and stop.
var gameEventDecoders = map[GameEventType]struct {
	decoder  topLevelDecoder
	deferred bool
}{
	EventCharacterCharacterOptionsEvent: {wrap(readCharacterCharacterOptionsEvent), true},
	EventItemSetAppraiseInfo:            {wrap(readItemSetAppraiseInfo), true},
	EventItemServerSaysContainId:        {wrap(readItemServerSaysContainId), false},
	EventItemWearItem:                   {wrap(readItemWearItem), false},
	EventLoginPlayerDescription:         {wrap(readLoginPlayerDescription), true},
	EventMagicUpdateEnchantment:         {wrap(readMagicUpdateEnchantment), true},
	EventMagicDispelEnchantment:         {wrap(readMagicDispelEnchantment), false},
}

// wrap adapts a typed read function to the untyped decoder signature the
// dispatch tables share.
func wrap[T any](fn func(*reader.Reader) (T, error)) topLevelDecoder {
	return func(r *reader.Reader) (any, error) {
		return fn(r)
	}
}

// Dissect decodes every message in payload, in wire order. A known opcode
// whose decoder fails (its fields run past the end of the payload) yields a
// ParsedMessage with Err set and RawBytes holding the payload from that
// opcode on, which ends the loop.
// An unknown opcode consumes the rest of the payload as that message's
// trailing bytes and ends the loop, since its true length is unknowable.
func Dissect(payload core.ApplicationPayload) []core.ParsedMessage {
	r := reader.New(payload.Data)
	r.SetOrigin(0)

	var out []core.ParsedMessage
	nextID := payload.PacketID << 16

	for r.Remaining() > 0 {
		start := r.Pos()
		opRaw, err := r.ReadU32()
		if err != nil {
			// Fewer than 4 bytes remain: there is no further opcode to
			// read. Surface what's left as an unnamed trailing fragment.
			tail, _ := r.ReadBytes(r.Remaining())
			out = append(out, core.ParsedMessage{
				ID:          nextID,
				MessageType: "Message_incomplete",
				Direction:   payload.Direction,
				Timestamp:   payload.Timestamp,
				RawBytes:    tail,
				Err:         core.ErrDecodeFailure,
			})
			break
		}
		op := Opcode(opRaw)
		nextID++

		if op == OpcodeOrderedGameEvent {
			msg, stop := dissectEnvelope(r, payload, nextID, start)
			out = append(out, msg)
			if stop {
				break
			}
			continue
		}

		if entry, ok := topLevelDecoders[op]; ok {
			fields, decErr := entry.decoder(r)
			msg := core.ParsedMessage{
				ID:          nextID,
				Opcode:      uint32(op),
				MessageType: entry.name,
				Direction:   payload.Direction,
				Timestamp:   payload.Timestamp,
				Fields:      fields,
			}
			if decErr != nil {
				msg.Err = fmt.Errorf("%w: %s: %v", core.ErrDecodeFailure, entry.name, decErr)
				msg.RawBytes = payload.Data[start:]
				out = append(out, msg)
				break
			}
			if r.Remaining() > 0 {
				trailing, _ := r.Peek(r.Remaining())
				msg.TrailingBytes = trailing
			}
			out = append(out, msg)
			continue
		}

		// Unknown top-level opcode: raw-tail capture, then stop.
		tail, _ := r.ReadBytes(r.Remaining())
		out = append(out, core.ParsedMessage{
			ID:          nextID,
			Opcode:      uint32(op),
			MessageType: fmt.Sprintf("Message_%04X", uint32(op)),
			Direction:   payload.Direction,
			Timestamp:   payload.Timestamp,
			RawBytes:    tail,
		})
		break
	}

	return out
}

// dissectEnvelope decodes the 0xF7B0 ordered-event envelope and its
// sub-event body. stop reports whether the dissector must end the payload
// loop (true when the envelope header was truncated, or the sub-event
// decoder failed, is deferred, or is unknown).
func dissectEnvelope(r *reader.Reader, payload core.ApplicationPayload, id uint64, start int) (core.ParsedMessage, bool) {
	orderedObjectID, err1 := r.ReadU32()
	orderedSequence, err2 := r.ReadU32()
	eventTypeRaw, err3 := r.ReadU32()
	if err1 != nil || err2 != nil || err3 != nil {
		tail := payload.Data[start:]
		return core.ParsedMessage{
			ID:          id,
			Opcode:      uint32(OpcodeOrderedGameEvent),
			MessageType: "Ordered_GameEvent",
			Direction:   payload.Direction,
			Timestamp:   payload.Timestamp,
			RawBytes:    tail,
			Err:         core.ErrDecodeFailure,
		}, true
	}

	evt := GameEventType(eventTypeRaw)
	envelope := OrderedGameEvent{
		OrderedObjectID: orderedObjectID,
		OrderedSequence: orderedSequence,
		EventType:       evt.Name(),
	}

	if entry, ok := gameEventDecoders[evt]; ok {
		body, decErr := entry.decoder(r)
		if decErr != nil {
			tail, _ := r.ReadBytes(r.Remaining())
			envelope.Body = nil
			return core.ParsedMessage{
				ID:          id,
				Opcode:      uint32(OpcodeOrderedGameEvent),
				MessageType: evt.Name(),
				Direction:   payload.Direction,
				Timestamp:   payload.Timestamp,
				Fields:      envelope,
				RawBytes:    tail,
				Err:         fmt.Errorf("%w: %s: %v", core.ErrDecodeFailure, evt.Name(), decErr),
			}, true
		}
		envelope.Body = body

		if entry.deferred {
			// The decoder read at most the leading fields; what's left is this
			// sub-event's undecoded body, not the next message. Stop the
			// same way an unknown sub-event does.
			tail, _ := r.ReadBytes(r.Remaining())
			return core.ParsedMessage{
				ID:          id,
				Opcode:      uint32(OpcodeOrderedGameEvent),
				MessageType: evt.Name(),
				Direction:   payload.Direction,
				Timestamp:   payload.Timestamp,
				Fields:      envelope,
				RawBytes:    tail,
			}, true
		}

		var trailing []byte
		if r.Remaining() > 0 {
			trailing, _ = r.Peek(r.Remaining())
		}
		return core.ParsedMessage{
			ID:            id,
			Opcode:        uint32(OpcodeOrderedGameEvent),
			MessageType:   evt.Name(),
			Direction:     payload.Direction,
			Timestamp:     payload.Timestamp,
			Fields:        envelope,
			TrailingBytes: trailing,
		}, false
	}

	// Unknown sub-event: the remainder of the payload is this message's raw
	// bytes; the envelope itself still decoded cleanly, but there is no way
	// to know where this sub-event's body ends. Still use the symbolic name
	// when the reference table names this code, even without a decoder.
	tail, _ := r.ReadBytes(r.Remaining())
	return core.ParsedMessage{
		ID:          id,
		Opcode:      uint32(OpcodeOrderedGameEvent),
		MessageType: evt.Name(),
		Direction:   payload.Direction,
		Timestamp:   payload.Timestamp,
		Fields:      envelope,
		RawBytes:    tail,
	}, true
}
