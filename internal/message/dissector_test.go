package message

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/amoeba/ac-pcap-parser/internal/core"
)

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func le16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func TestDissectQualitiesUpdateInt(t *testing.T) {
	var data []byte
	data = append(data, le32(uint32(OpcodeQualitiesUpdateInt))...)
	data = append(data, 1)                     // sequence
	data = append(data, le32(0xA0000001)...)   // object id
	data = append(data, le32(0x11)...)         // key (Level)
	data = append(data, le32(50)...)           // value

	payload := core.ApplicationPayload{PacketID: 1, Direction: core.DirectionServerToClient, Timestamp: time.Unix(0, 0), Data: data}
	msgs := Dissect(payload)

	if len(msgs) != 1 {
		t.Fatalf("len(msgs) = %d, want 1", len(msgs))
	}
	m := msgs[0]
	if m.MessageType != "Qualities_UpdateInt" || m.Err != nil {
		t.Fatalf("m = %+v", m)
	}
	fields, ok := m.Fields.(QualitiesUpdateInt)
	if !ok {
		t.Fatalf("Fields type = %T", m.Fields)
	}
	if fields.ObjectID != 0xA0000001 || fields.Key != "Level" || fields.Value != 50 {
		t.Fatalf("fields = %+v", fields)
	}
}

func TestDissectOrderedGameEventWearItem(t *testing.T) {
	var data []byte
	data = append(data, le32(uint32(OpcodeOrderedGameEvent))...)
	data = append(data, le32(0xB)...) // ordered object id
	data = append(data, le32(3)...)   // ordered sequence
	data = append(data, le32(0x0023)...) // event type: Item_WearItem
	data = append(data, le32(0xC)...) // object id
	data = append(data, le32(0x1)...) // location

	payload := core.ApplicationPayload{Direction: core.DirectionServerToClient, Data: data}
	msgs := Dissect(payload)

	if len(msgs) != 1 {
		t.Fatalf("len(msgs) = %d, want 1", len(msgs))
	}
	m := msgs[0]
	if m.MessageType != "Item_WearItem" {
		t.Fatalf("MessageType = %q", m.MessageType)
	}
	envelope, ok := m.Fields.(OrderedGameEvent)
	if !ok {
		t.Fatalf("Fields type = %T", m.Fields)
	}
	body, ok := envelope.Body.(ItemWearItem)
	if !ok {
		t.Fatalf("Body type = %T", envelope.Body)
	}
	if body.ObjectID != 0xC || body.Location != 0x1 {
		t.Fatalf("body = %+v", body)
	}
}

func TestDissectUnknownOpcodeStopsLoop(t *testing.T) {
	var data []byte
	data = append(data, le32(0x9999)...)
	tail := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	data = append(data, tail...)
	// If the loop incorrectly continued, it would try to read another
	// opcode from these trailing bytes.
	data = append(data, le32(uint32(OpcodeInventoryPickupEvent))...)

	payload := core.ApplicationPayload{Data: data}
	msgs := Dissect(payload)

	if len(msgs) != 1 {
		t.Fatalf("len(msgs) = %d, want 1", len(msgs))
	}
	m := msgs[0]
	if m.MessageType != "Message_9999" {
		t.Fatalf("MessageType = %q", m.MessageType)
	}
	if len(m.RawBytes) != len(tail)+4 {
		t.Fatalf("RawBytes len = %d, want %d", len(m.RawBytes), len(tail)+4)
	}
}

func TestDissectTotality(t *testing.T) {
	var data []byte
	data = append(data, le32(uint32(OpcodeInventoryPickupEvent))...)
	data = append(data, le32(1)...)
	data = append(data, le16(2)...)
	data = append(data, le16(3)...)

	payload := core.ApplicationPayload{Data: data}
	msgs := Dissect(payload)

	total := 0
	for _, m := range msgs {
		total += len(m.RawBytes) + len(m.TrailingBytes)
	}
	// The decoded fields themselves account for the remaining bytes of
	// data: opcode(4) + fixed fields(8) = 12, matching len(data).
	if len(data) != 12 {
		t.Fatalf("test data len = %d", len(data))
	}
	if total != 0 {
		t.Fatalf("unexpected raw/trailing bytes for fully-consumed message: %d", total)
	}
}
