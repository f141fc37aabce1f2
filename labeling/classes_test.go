package labeling

import (
	"sync"
	"testing"

	"go.viam.com/test"
)

func TestRegistryExactLookup(t *testing.T) {
	registry := NewRegistry()

	info := registry.ClassInfo("sphere")
	test.That(t, info.ID, test.ShouldEqual, 10)
	test.That(t, info.OrientationAgnostic, test.ShouldBeTrue)

	// lookups are case-insensitive
	info = registry.ClassInfo("Sphere")
	test.That(t, info.ID, test.ShouldEqual, 10)
	info = registry.ClassInfo("CHAIR")
	test.That(t, info.ID, test.ShouldEqual, 4)
	test.That(t, info.OrientationAgnostic, test.ShouldBeFalse)
}

func TestRegistryFuzzyLookup(t *testing.T) {
	registry := NewRegistry()

	// round wins over plain table regardless of word order
	info := registry.ClassInfo("RoundTable_02")
	test.That(t, info.ID, test.ShouldEqual, 3)
	test.That(t, info.OrientationAgnostic, test.ShouldBeTrue)
	info = registry.ClassInfo("table_round_marble")
	test.That(t, info.ID, test.ShouldEqual, 3)

	info = registry.ClassInfo("dining_table")
	test.That(t, info.ID, test.ShouldEqual, 2)
	info = registry.ClassInfo("OfficeChair3")
	test.That(t, info.ID, test.ShouldEqual, 4)
	info = registry.ClassInfo("wall_segment_north")
	test.That(t, info.ID, test.ShouldEqual, 1)
	info = registry.ClassInfo("Floor_Tile")
	test.That(t, info.ID, test.ShouldEqual, 0)
	test.That(t, info.OrientationAgnostic, test.ShouldBeTrue)
}

func TestRegistryUnknown(t *testing.T) {
	registry := NewRegistry()
	info := registry.ClassInfo("mystery_blob")
	test.That(t, info.ID, test.ShouldEqual, -1)
	test.That(t, info.OrientationAgnostic, test.ShouldBeFalse)
}

func TestRegistryRegister(t *testing.T) {
	registry := NewRegistry()

	registry.Register("Barrel", 12, true)
	info := registry.ClassInfo("barrel")
	test.That(t, info.ID, test.ShouldEqual, 12)
	test.That(t, info.OrientationAgnostic, test.ShouldBeTrue)

	// registration overwrites, keyed by lower-cased name
	registry.Register("BARREL", 13, false)
	info = registry.ClassInfo("Barrel")
	test.That(t, info.ID, test.ShouldEqual, 13)
	test.That(t, info.OrientationAgnostic, test.ShouldBeFalse)

	// duplicate ids are permitted
	registry.Register("keg", 13, false)
	test.That(t, registry.ClassInfo("keg").ID, test.ShouldEqual, 13)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			registry.Register("crate", id, false)
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				registry.ClassInfo("crate")
				registry.ClassInfo("RoundTable_02")
			}
		}()
	}
	wg.Wait()

	test.That(t, registry.ClassInfo("crate").ID, test.ShouldBeGreaterThanOrEqualTo, 0)
}
