package message

import "fmt"

// PropertyKey identifies one typed slot on an entity's property bag.
// Category distinguishes the numeric namespace (int property, vital,
// instance-id reference, ...) so that two different categories never
// collide on the same raw code.
type PropertyKey struct {
	Category string
	Code     uint32
}

// Name returns the symbolic name for the key, falling back to
// <Category>_<decimal> for codes outside the reference table.
func (k PropertyKey) Name() string {
	var table map[uint32]string
	switch k.Category {
	case "PropertyInt":
		table = propertyIntNames
	case "Vital":
		table = vitalNames
	case "PropertyInstanceId":
		table = propertyInstanceIDNames
	}
	if name, ok := table[k.Code]; ok {
		return name
	}
	return fmt.Sprintf("%s_%d", k.Category, k.Code)
}

var propertyIntNames = map[uint32]string{
	0x05: "Age",
	0x10: "ArmorLevel",
	0x11: "Level",
	0x6F: "Value",
}

var vitalNames = map[uint32]string{
	1: "Health",
	2: "Stamina",
	3: "Mana",
}

var propertyInstanceIDNames = map[uint32]string{
	1: "Owner",
	2: "Container",
	3: "Wielder",
}

// PropertyIntName looks up a PropertyInt code.
func PropertyIntName(code uint32) string {
	return PropertyKey{Category: "PropertyInt", Code: code}.Name()
}

// VitalName looks up a Vital code.
func VitalName(code uint32) string {
	return PropertyKey{Category: "Vital", Code: code}.Name()
}

// PropertyInstanceIDName looks up a PropertyInstanceId code.
func PropertyInstanceIDName(code uint32) string {
	return PropertyKey{Category: "PropertyInstanceId", Code: code}.Name()
}

func hexName(category string, code uint32) string {
	return fmt.Sprintf("%s_%04X", category, code)
}
