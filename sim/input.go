package sim

import (
	"github.com/pthm-cable/moodbiome/mood"
	"github.com/pthm-cable/moodbiome/telemetry"
)

// SelectCategory makes name the category spawned by pointer input. An
// unknown name leaves the selection unchanged and reports false.
func (s *Sim) SelectCategory(name string) bool {
	id, ok := s.table.Lookup(name)
	if !ok {
		return false
	}
	s.selected = id
	return true
}

// SelectCategoryID is SelectCategory by table index.
func (s *Sim) SelectCategoryID(id mood.ID) bool {
	if !s.table.Valid(id) {
		return false
	}
	s.selected = id
	return true
}

// Selected returns the selected category, or mood.None.
func (s *Sim) Selected() mood.ID {
	return s.selected
}

// Spawn adds one entity of the given category immediately. Invalid
// categories are a no-op.
func (s *Sim) Spawn(x, y float32, cat mood.ID) bool {
	if _, ok := s.pop.Spawn(s.rng, x, y, cat, s.tick); !ok {
		return false
	}
	s.collector.RecordSpawns(1)
	return true
}

// OnPointerMove spawns one entity of the selected category with the
// configured probability.
func (s *Sim) OnPointerMove(x, y float32) {
	if s.selected == mood.None {
		return
	}
	if s.rng.Float64() < s.cfg.Input.MoveSpawnChance {
		s.Spawn(x, y, s.selected)
	}
}

// OnPointerClick spawns a burst of the selected category and raises a
// spawn burst event for cosmetic collaborators.
func (s *Sim) OnPointerClick(x, y float32) {
	if s.selected == mood.None {
		return
	}
	n := 0
	for i := 0; i < s.cfg.Input.ClickBurst; i++ {
		if s.Spawn(x, y, s.selected) {
			n++
		}
	}
	if n > 0 {
		s.emitPending(telemetry.NewSpawnBurstEvent(s.tick, x, y, s.selected, n))
	}
}

// OnResize updates the bounds used by the next step's reflection check.
// Non-positive sizes are ignored.
func (s *Sim) OnResize(width, height float32) {
	if !(width > 0 && height > 0) {
		return
	}
	s.bounds.Width = width
	s.bounds.Height = height
}
