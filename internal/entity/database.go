// Package entity folds a delivery-ordered message stream into a database of
// in-world objects ("weenies") and their property bags.
package entity

import "time"

// PropertyKey is a categorized key on an entity's property bag. Category
// distinguishes int properties, instance-id references, and vitals so that
// symbolic names that happen to collide across categories never overwrite
// each other. Name is already resolved (e.g. "Level", "Owner") by the
// message package's property tables before it reaches the extractor.
type PropertyKey struct {
	Category string
	Name     string
}

// Entity is one in-world object accumulated from the message stream.
type Entity struct {
	ID         uint32
	Properties map[PropertyKey]any
	LastSeen   time.Time
}

func newEntity(id uint32) *Entity {
	return &Entity{ID: id, Properties: make(map[PropertyKey]any)}
}

// EnchantmentKey identifies one active spell layer on an entity.
type EnchantmentKey struct {
	SpellID uint32
	Layer   uint16
}

// Database is the accumulated set of entities discovered in a capture. The
// zero value is not usable; use NewDatabase.
type Database struct {
	entities     map[uint32]*Entity
	selfCharacter uint32 // 0 until a Login_PlayerDescription establishes it
}

// NewDatabase returns an empty Database.
func NewDatabase() *Database {
	return &Database{entities: make(map[uint32]*Entity)}
}

// Upsert returns the entity for id, creating it if this is the first time
// it has been referenced. Messages reference entity ids that may not yet
// exist; extraction always upserts rather than validating existence.
func (d *Database) Upsert(id uint32) *Entity {
	e, ok := d.entities[id]
	if !ok {
		e = newEntity(id)
		d.entities[id] = e
	}
	return e
}

// Get returns the entity for id, or nil if it has never been referenced.
func (d *Database) Get(id uint32) *Entity {
	return d.entities[id]
}

// SetSelfCharacter records which entity id is the local player. It is
// called each time a Login_PlayerDescription message is extracted; the
// latest one wins.
func (d *Database) SetSelfCharacter(id uint32) {
	d.selfCharacter = id
}

// SelfCharacter returns the local-player entity id, or 0 if it has not yet
// been established by a Login_PlayerDescription message.
func (d *Database) SelfCharacter() uint32 {
	return d.selfCharacter
}

// Len returns the number of distinct entities in the database.
func (d *Database) Len() int {
	return len(d.entities)
}

// All returns every entity in the database. Order is unspecified.
func (d *Database) All() []*Entity {
	out := make([]*Entity, 0, len(d.entities))
	for _, e := range d.entities {
		out = append(out, e)
	}
	return out
}
