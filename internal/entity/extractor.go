package entity

import (
	"fmt"

	"github.com/amoeba/ac-pcap-parser/internal/core"
	"github.com/amoeba/ac-pcap-parser/internal/message"
)

// Tally is a per-message-type count of how many messages were seen and how
// many actually produced a database update.
type Tally struct {
	Seen      map[string]int
	Extracted map[string]int
}

func newTally() Tally {
	return Tally{Seen: make(map[string]int), Extracted: make(map[string]int)}
}

func (t Tally) record(messageType string, extracted bool) {
	t.Seen[messageType]++
	if extracted {
		t.Extracted[messageType]++
	}
}

// Extractor folds a delivery-ordered ParsedMessage stream into a Database.
// Extraction is a pure fold: replaying the same stream through a fresh
// Extractor yields a byte-identical database, since every update is an
// upsert keyed by ids already present on the message.
type Extractor struct {
	db    *Database
	tally Tally
}

// NewExtractor returns an Extractor that accumulates into a fresh Database.
func NewExtractor() *Extractor {
	return &Extractor{db: NewDatabase(), tally: newTally()}
}

// Database returns the database accumulated so far.
func (x *Extractor) Database() *Database {
	return x.db
}

// Tally returns the per-type seen/extracted counts accumulated so far.
func (x *Extractor) Tally() Tally {
	return x.tally
}

// Apply folds one message into the database, updating the tally
// regardless of whether the message type is recognized.
func (x *Extractor) Apply(m core.ParsedMessage) {
	if m.Err != nil {
		x.tally.record(m.MessageType, false)
		return
	}

	switch fields := m.Fields.(type) {
	case message.QualitiesUpdateInt:
		e := x.db.Upsert(fields.ObjectID)
		e.Properties[PropertyKey{Category: "PropertyInt", Name: fields.Key}] = fields.Value
		e.LastSeen = m.Timestamp
		x.tally.record(m.MessageType, true)

	case message.QualitiesUpdateInstanceId:
		e := x.db.Upsert(fields.ObjectID)
		e.Properties[PropertyKey{Category: "PropertyInstanceId", Name: fields.Key}] = fields.Value
		e.LastSeen = m.Timestamp
		x.tally.record(m.MessageType, true)

	case message.QualitiesPrivateUpdateInt:
		e := x.db.Upsert(x.db.SelfCharacter())
		e.Properties[PropertyKey{Category: "PropertyInt", Name: fields.Key}] = fields.Value
		e.LastSeen = m.Timestamp
		x.tally.record(m.MessageType, true)

	case message.OrderedGameEvent:
		x.applyOrderedEvent(m, fields)

	default:
		x.tally.record(m.MessageType, false)
	}
}

func (x *Extractor) applyOrderedEvent(m core.ParsedMessage, envelope message.OrderedGameEvent) {
	switch body := envelope.Body.(type) {
	case message.ItemSetAppraiseInfo:
		e := x.db.Upsert(body.ObjectID)
		e.LastSeen = m.Timestamp
		x.tally.record(m.MessageType, true)

	case message.MagicUpdateEnchantment:
		e := x.db.Upsert(envelope.OrderedObjectID)
		e.LastSeen = m.Timestamp
		// The enchantment body is deferred (not decoded), so the specific
		// layer cannot be upserted; the entity touch itself is recorded.
		x.tally.record(m.MessageType, true)

	case message.LoginPlayerDescription:
		// The bulk character payload is deferred (not decoded); the
		// envelope's ordered_object_id is the only field this message
		// carries that identifies the local player, so that's what
		// establishes self-character identity.
		x.db.SetSelfCharacter(envelope.OrderedObjectID)
		e := x.db.Upsert(envelope.OrderedObjectID)
		e.LastSeen = m.Timestamp
		x.tally.record(m.MessageType, true)

	case message.MagicDispelEnchantment:
		e := x.db.Upsert(envelope.OrderedObjectID)
		delete(e.Properties, enchantmentKey(body.SpellID))
		e.LastSeen = m.Timestamp
		x.tally.record(m.MessageType, true)

	default:
		x.tally.record(m.MessageType, false)
	}
}

func enchantmentKey(spell message.LayeredSpellId) PropertyKey {
	return PropertyKey{Category: "Enchantment", Name: enchantmentName(spell)}
}

func enchantmentName(spell message.LayeredSpellId) string {
	return fmt.Sprintf("%d/%d", spell.ID, spell.Layer)
}
