package message

import (
	"github.com/amoeba/ac-pcap-parser/internal/reader"
)

// MovementType names the wire's movement-type discriminant.
var movementTypeNames = map[uint8]string{
	0: "Invalid",
	1: "General",
	2: "RawCommand",
	3: "InterpertedMotionState",
	4: "StopCompletely",
	5: "MoveToObject",
	6: "MoveToPosition",
	7: "TurnToObject",
	8: "TurnToHeading",
	9: "Jump",
}

func movementTypeName(v uint8) string {
	if name, ok := movementTypeNames[v]; ok {
		return name
	}
	return "Unknown"
}

// MovementData is the fixed-size prefix of a movement update. The
// remainder of the structure varies by MovementType and is not decoded;
// callers that need it should consult TrailingBytes on the owning message.
type MovementData struct {
	ObjectMovementSequence       uint16
	ObjectServerControlSequence  uint16
	Autonomous                   uint8
	MovementType                 string
}

func readMovementData(r *reader.Reader) (MovementData, error) {
	seq, err := r.ReadU16()
	if err != nil {
		return MovementData{}, err
	}
	ctrlSeq, err := r.ReadU16()
	if err != nil {
		return MovementData{}, err
	}
	autonomous, err := r.ReadU8()
	if err != nil {
		return MovementData{}, err
	}
	typeRaw, err := r.ReadU8()
	if err != nil {
		return MovementData{}, err
	}
	return MovementData{
		ObjectMovementSequence:      seq,
		ObjectServerControlSequence: ctrlSeq,
		Autonomous:                  autonomous,
		MovementType:                movementTypeName(typeRaw),
	}, nil
}

// QualitiesPrivateUpdateInt is opcode 0x02CD: a private (self-character)
// integer property update.
type QualitiesPrivateUpdateInt struct {
	Sequence uint8
	Key      string
	Value    int32
}

func readQualitiesPrivateUpdateInt(r *reader.Reader) (QualitiesPrivateUpdateInt, error) {
	seq, err := r.ReadU8()
	if err != nil {
		return QualitiesPrivateUpdateInt{}, err
	}
	keyRaw, err := r.ReadU32()
	if err != nil {
		return QualitiesPrivateUpdateInt{}, err
	}
	value, err := r.ReadI32()
	if err != nil {
		return QualitiesPrivateUpdateInt{}, err
	}
	return QualitiesPrivateUpdateInt{Sequence: seq, Key: PropertyIntName(keyRaw), Value: value}, nil
}

// QualitiesUpdateInt is opcode 0x02CE: an integer property update targeting
// an arbitrary entity.
type QualitiesUpdateInt struct {
	Sequence uint8
	ObjectID uint32
	Key      string
	Value    int32
}

func readQualitiesUpdateInt(r *reader.Reader) (QualitiesUpdateInt, error) {
	seq, err := r.ReadU8()
	if err != nil {
		return QualitiesUpdateInt{}, err
	}
	objectID, err := r.ReadU32()
	if err != nil {
		return QualitiesUpdateInt{}, err
	}
	keyRaw, err := r.ReadU32()
	if err != nil {
		return QualitiesUpdateInt{}, err
	}
	value, err := r.ReadI32()
	if err != nil {
		return QualitiesUpdateInt{}, err
	}
	return QualitiesUpdateInt{Sequence: seq, ObjectID: objectID, Key: PropertyIntName(keyRaw), Value: value}, nil
}

// QualitiesUpdateInstanceId is opcode 0x02DA: an instance-id reference
// property update (e.g. Owner, Container, Wielder).
type QualitiesUpdateInstanceId struct {
	Sequence uint8
	ObjectID uint32
	Key      string
	Value    uint32
}

func readQualitiesUpdateInstanceId(r *reader.Reader) (QualitiesUpdateInstanceId, error) {
	seq, err := r.ReadU8()
	if err != nil {
		return QualitiesUpdateInstanceId{}, err
	}
	objectID, err := r.ReadU32()
	if err != nil {
		return QualitiesUpdateInstanceId{}, err
	}
	keyRaw, err := r.ReadU32()
	if err != nil {
		return QualitiesUpdateInstanceId{}, err
	}
	value, err := r.ReadU32()
	if err != nil {
		return QualitiesUpdateInstanceId{}, err
	}
	return QualitiesUpdateInstanceId{Sequence: seq, ObjectID: objectID, Key: PropertyInstanceIDName(keyRaw), Value: value}, nil
}

// QualitiesPrivateUpdateAttribute2ndLevel is opcode 0x02E9: a private vital
// (health/stamina/mana) update.
type QualitiesPrivateUpdateAttribute2ndLevel struct {
	Sequence uint8
	Key      string
	Value    uint32
}

func readQualitiesPrivateUpdateAttribute2ndLevel(r *reader.Reader) (QualitiesPrivateUpdateAttribute2ndLevel, error) {
	seq, err := r.ReadU8()
	if err != nil {
		return QualitiesPrivateUpdateAttribute2ndLevel{}, err
	}
	keyRaw, err := r.ReadU32()
	if err != nil {
		return QualitiesPrivateUpdateAttribute2ndLevel{}, err
	}
	value, err := r.ReadU32()
	if err != nil {
		return QualitiesPrivateUpdateAttribute2ndLevel{}, err
	}
	return QualitiesPrivateUpdateAttribute2ndLevel{Sequence: seq, Key: VitalName(keyRaw), Value: value}, nil
}

// MovementSetObjectMovement is opcode 0xF74C.
type MovementSetObjectMovement struct {
	ObjectID               uint32
	ObjectInstanceSequence uint16
	MovementData           MovementData
}

func readMovementSetObjectMovement(r *reader.Reader) (MovementSetObjectMovement, error) {
	objectID, err := r.ReadU32()
	if err != nil {
		return MovementSetObjectMovement{}, err
	}
	seq, err := r.ReadU16()
	if err != nil {
		return MovementSetObjectMovement{}, err
	}
	md, err := readMovementData(r)
	if err != nil {
		return MovementSetObjectMovement{}, err
	}
	return MovementSetObjectMovement{ObjectID: objectID, ObjectInstanceSequence: seq, MovementData: md}, nil
}

// EffectsSoundEvent is opcode 0xF750.
type EffectsSoundEvent struct {
	ObjectID  uint32
	SoundType uint32
	Volume    float32
}

func readEffectsSoundEvent(r *reader.Reader) (EffectsSoundEvent, error) {
	objectID, err := r.ReadU32()
	if err != nil {
		return EffectsSoundEvent{}, err
	}
	soundType, err := r.ReadU32()
	if err != nil {
		return EffectsSoundEvent{}, err
	}
	volume, err := r.ReadF32()
	if err != nil {
		return EffectsSoundEvent{}, err
	}
	return EffectsSoundEvent{ObjectID: objectID, SoundType: soundType, Volume: volume}, nil
}

// EffectsPlayScriptType is opcode 0xF755.
type EffectsPlayScriptType struct {
	ObjectID   uint32
	ScriptType uint32
	Speed      float32
}

func readEffectsPlayScriptType(r *reader.Reader) (EffectsPlayScriptType, error) {
	objectID, err := r.ReadU32()
	if err != nil {
		return EffectsPlayScriptType{}, err
	}
	scriptType, err := r.ReadU32()
	if err != nil {
		return EffectsPlayScriptType{}, err
	}
	speed, err := r.ReadF32()
	if err != nil {
		return EffectsPlayScriptType{}, err
	}
	return EffectsPlayScriptType{ObjectID: objectID, ScriptType: scriptType, Speed: speed}, nil
}

// chatTypeNames maps CommunicationTextboxString's chat-type discriminant.
var chatTypeNames = map[uint32]string{
	0: "Default",
	1: "System",
	5: "Magic",
}

func chatTypeName(v uint32) string {
	if name, ok := chatTypeNames[v]; ok {
		return name
	}
	return "Unknown"
}

// CommunicationTextboxString is opcode 0xF7E0.
type CommunicationTextboxString struct {
	Text     string
	ChatType string
}

func readCommunicationTextboxString(r *reader.Reader) (CommunicationTextboxString, error) {
	text, err := r.ReadString16L()
	if err != nil {
		return CommunicationTextboxString{}, err
	}
	chatTypeRaw, err := r.ReadU32()
	if err != nil {
		return CommunicationTextboxString{}, err
	}
	return CommunicationTextboxString{Text: text, ChatType: chatTypeName(chatTypeRaw)}, nil
}

// InventoryPickupEvent is opcode 0xF74A.
type InventoryPickupEvent struct {
	ObjectID               uint32
	ObjectInstanceSequence uint16
	ObjectPositionSequence uint16
}

func readInventoryPickupEvent(r *reader.Reader) (InventoryPickupEvent, error) {
	objectID, err := r.ReadU32()
	if err != nil {
		return InventoryPickupEvent{}, err
	}
	instanceSeq, err := r.ReadU16()
	if err != nil {
		return InventoryPickupEvent{}, err
	}
	positionSeq, err := r.ReadU16()
	if err != nil {
		return InventoryPickupEvent{}, err
	}
	return InventoryPickupEvent{ObjectID: objectID, ObjectInstanceSequence: instanceSeq, ObjectPositionSequence: positionSeq}, nil
}

// ItemObjDescEvent is opcode 0xF625, a direct (non-enveloped) supplemental
// message carrying an object's icon/overlay description. The description
// body is skipped, not decoded; the instance and visual sequence numbers
// are the last four bytes of the payload.
type ItemObjDescEvent struct {
	ObjectID         uint32
	InstanceSequence uint16
	VisualSequence   uint16
}

func readItemObjDescEvent(r *reader.Reader) (ItemObjDescEvent, error) {
	objectID, err := r.ReadU32()
	if err != nil {
		return ItemObjDescEvent{}, err
	}
	if err := r.Skip(r.Remaining() - 4); err != nil {
		return ItemObjDescEvent{}, err
	}
	instanceSeq, err := r.ReadU16()
	if err != nil {
		return ItemObjDescEvent{}, err
	}
	visualSeq, err := r.ReadU16()
	if err != nil {
		return ItemObjDescEvent{}, err
	}
	return ItemObjDescEvent{ObjectID: objectID, InstanceSequence: instanceSeq, VisualSequence: visualSeq}, nil
}

// Ordered-envelope (0xF7B0) sub-event decoders. Every envelope message also
// carries OrderedObjectID/OrderedSequence/EventType, attached by the
// dissector rather than repeated on each struct.

// ItemServerSaysContainId is event type 0x0022.
type ItemServerSaysContainId struct {
	ObjectID      uint32
	ContainerID   uint32
	SlotIndex     uint32
	ContainerType uint32
}

func readItemServerSaysContainId(r *reader.Reader) (ItemServerSaysContainId, error) {
	objectID, err := r.ReadU32()
	if err != nil {
		return ItemServerSaysContainId{}, err
	}
	containerID, err := r.ReadU32()
	if err != nil {
		return ItemServerSaysContainId{}, err
	}
	slotIndex, err := r.ReadU32()
	if err != nil {
		return ItemServerSaysContainId{}, err
	}
	containerType, err := r.ReadU32()
	if err != nil {
		return ItemServerSaysContainId{}, err
	}
	return ItemServerSaysContainId{
		ObjectID:      objectID,
		ContainerID:   containerID,
		SlotIndex:     slotIndex,
		ContainerType: containerType,
	}, nil
}

// ItemWearItem is event type 0x0023.
type ItemWearItem struct {
	ObjectID uint32
	Location uint32
}

func readItemWearItem(r *reader.Reader) (ItemWearItem, error) {
	objectID, err := r.ReadU32()
	if err != nil {
		return ItemWearItem{}, err
	}
	location, err := r.ReadU32()
	if err != nil {
		return ItemWearItem{}, err
	}
	return ItemWearItem{ObjectID: objectID, Location: location}, nil
}

// ItemSetAppraiseInfo is event type 0x00C9. The property dictionaries that
// follow Success are not decoded; see design notes on deferred fields.
type ItemSetAppraiseInfo struct {
	ObjectID uint32
	Flags    uint32
	Success  bool
}

func readItemSetAppraiseInfo(r *reader.Reader) (ItemSetAppraiseInfo, error) {
	objectID, err := r.ReadU32()
	if err != nil {
		return ItemSetAppraiseInfo{}, err
	}
	flags, err := r.ReadU32()
	if err != nil {
		return ItemSetAppraiseInfo{}, err
	}
	success, err := r.ReadBool()
	if err != nil {
		return ItemSetAppraiseInfo{}, err
	}
	return ItemSetAppraiseInfo{ObjectID: objectID, Flags: flags, Success: success}, nil
}

// LayeredSpellId names one active enchantment layer on a spell.
type LayeredSpellId struct {
	ID    uint32
	Layer uint16
}

// MagicDispelEnchantment is event type 0x02C7.
type MagicDispelEnchantment struct {
	SpellID LayeredSpellId
}

func readMagicDispelEnchantment(r *reader.Reader) (MagicDispelEnchantment, error) {
	spellID, err := r.ReadU16()
	if err != nil {
		return MagicDispelEnchantment{}, err
	}
	layer, err := r.ReadU16()
	if err != nil {
		return MagicDispelEnchantment{}, err
	}
	return MagicDispelEnchantment{SpellID: LayeredSpellId{ID: uint32(spellID), Layer: layer}}, nil
}

// MagicUpdateEnchantment is event type 0x02C2. The enchantment body is not
// decoded; see design notes on deferred fields.
type MagicUpdateEnchantment struct{}

func readMagicUpdateEnchantment(_ *reader.Reader) (MagicUpdateEnchantment, error) {
	return MagicUpdateEnchantment{}, nil
}

// CharacterCharacterOptionsEvent is event type 0x00F7. The options payload
// is not decoded; see design notes on deferred fields.
type CharacterCharacterOptionsEvent struct{}

func readCharacterCharacterOptionsEvent(_ *reader.Reader) (CharacterCharacterOptionsEvent, error) {
	return CharacterCharacterOptionsEvent{}, nil
}

// LoginPlayerDescription is event type 0x0013. The bulk character payload
// is not decoded; see design notes on deferred fields. The envelope's
// ordered_object_id is still used to learn the local player's entity id.
type LoginPlayerDescription struct{}

func readLoginPlayerDescription(_ *reader.Reader) (LoginPlayerDescription, error) {
	return LoginPlayerDescription{}, nil
}
