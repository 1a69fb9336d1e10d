package game

// attributeIds maps the short attribute names used in type
// declarations to their canonical identifiers.
var attributeIds = map[string]string{
	"health":  "creature.health",
	"mana":    "creature.mana",
	"stamina": "creature.stamina",
	"armor":   "creature.armor",
	"speed":   "creature.speed",
}

// AttributeId resolves a declared attribute name to its canonical
// identifier. An unknown name is treated as already canonical rather
// than an error.
func AttributeId(name string) string {
	if id, ok := attributeIds[name]; ok {
		return id
	}
	return name
}
