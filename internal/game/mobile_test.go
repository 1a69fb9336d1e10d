package game

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestAttributeId_Fallback(t *testing.T) {
	tests := map[string]struct {
		name string
		exp  string
	}{
		"known attribute":  {name: "health", exp: "creature.health"},
		"another known":    {name: "armor", exp: "creature.armor"},
		"unknown passes":   {name: "luck", exp: "luck"},
		"canonical passes": {name: "creature.health", exp: "creature.health"},
		"empty passes":     {name: "", exp: ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "attribute id", AttributeId(tt.name), tt.exp)
		})
	}
}

func TestSpawnMobile_AppliesAttributes(t *testing.T) {
	world := NewWorldState(true)
	rep := testManager(t, world, newTestBus(), guardType(t))

	m, err := world.SpawnMobile(rep, "guard", "guard-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.InstanceId == "" {
		t.Error("expected instance id")
	}

	health, ok := m.Attribute("health")
	testutil.AssertEqual(t, "health found", ok, true)
	testutil.AssertEqual(t, "health", health, float64(20))

	// "ferity" is not a well-known attribute; the name itself is the
	// identifier.
	ferity, ok := m.Attribute("ferity")
	testutil.AssertEqual(t, "ferity found", ok, true)
	testutil.AssertEqual(t, "ferity", ferity, float64(3))

	_, ok = m.Attribute("mana")
	testutil.AssertEqual(t, "mana found", ok, false)
}

func TestMobile_SetAttribute(t *testing.T) {
	world := NewWorldState(true)
	rep := testManager(t, world, newTestBus(), guardType(t))

	m, err := world.SpawnMobile(rep, "guard", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m.SetAttribute("health", 5)
	health, _ := m.Attribute("health")
	testutil.AssertEqual(t, "health", health, float64(5))

	// The mobile is still a regular replicated entity.
	if _, ok := world.Lookup(m.Id); !ok {
		t.Error("mobile should be registered in the world")
	}
}
