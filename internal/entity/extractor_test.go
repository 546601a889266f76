package entity

import (
	"testing"
	"time"

	"github.com/amoeba/ac-pcap-parser/internal/core"
	"github.com/amoeba/ac-pcap-parser/internal/message"
)

func TestApplyQualitiesUpdateInt(t *testing.T) {
	x := NewExtractor()
	x.Apply(core.ParsedMessage{
		MessageType: "Qualities_UpdateInt",
		Timestamp:   time.Unix(1, 0),
		Fields: message.QualitiesUpdateInt{
			ObjectID: 0xA0000001,
			Key:      "Level",
			Value:    50,
		},
	})

	e := x.Database().Get(0xA0000001)
	if e == nil {
		t.Fatal("entity not created")
	}
	v := e.Properties[PropertyKey{Category: "PropertyInt", Name: "Level"}]
	if v != int32(50) {
		t.Fatalf("Level = %v, want 50", v)
	}
	if x.Tally().Extracted["Qualities_UpdateInt"] != 1 {
		t.Fatalf("tally = %+v", x.Tally())
	}
}

func TestApplyMagicDispelRemovesEnchantment(t *testing.T) {
	x := NewExtractor()
	spell := message.LayeredSpellId{ID: 42, Layer: 1}
	e := x.Database().Upsert(0xB)
	e.Properties[enchantmentKey(spell)] = "active"

	x.Apply(core.ParsedMessage{
		MessageType: "Magic_DispelEnchantment",
		Fields: message.OrderedGameEvent{
			OrderedObjectID: 0xB,
			Body:            message.MagicDispelEnchantment{SpellID: spell},
		},
	})

	if _, ok := e.Properties[enchantmentKey(spell)]; ok {
		t.Fatal("enchantment not removed")
	}
}

func TestApplyUnrecognizedMessageNoop(t *testing.T) {
	x := NewExtractor()
	x.Apply(core.ParsedMessage{MessageType: "Message_9999"})

	if x.Database().Len() != 0 {
		t.Fatalf("Len = %d, want 0", x.Database().Len())
	}
	if x.Tally().Seen["Message_9999"] != 1 {
		t.Fatalf("tally = %+v", x.Tally())
	}
}

func TestExtractionIsDeterministicAcrossSplitStreams(t *testing.T) {
	msgs := []core.ParsedMessage{
		{MessageType: "Qualities_UpdateInt", Fields: message.QualitiesUpdateInt{ObjectID: 1, Key: "Level", Value: 10}},
		{MessageType: "Qualities_UpdateInt", Fields: message.QualitiesUpdateInt{ObjectID: 1, Key: "Age", Value: 5}},
	}

	whole := NewExtractor()
	for _, m := range msgs {
		whole.Apply(m)
	}

	split := NewExtractor()
	split.Apply(msgs[0])
	split.Apply(msgs[1])

	wantLevel := whole.Database().Get(1).Properties[PropertyKey{Category: "PropertyInt", Name: "Level"}]
	gotLevel := split.Database().Get(1).Properties[PropertyKey{Category: "PropertyInt", Name: "Level"}]
	if wantLevel != gotLevel {
		t.Fatalf("Level mismatch: %v != %v", wantLevel, gotLevel)
	}
}
