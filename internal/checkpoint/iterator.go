package checkpoint

import "github.com/brandonbuckley/uber-top100-POIs/internal/model"

// Iterator yields the POIs a resumed run still has to process, in input
// order. Membership in the checkpoint set (by POI id) decides what is
// skipped, so a resumed run never re-geocodes finished work.
type Iterator struct {
	pending []model.POI
	skipped int
	pos     int
}

// Resume builds an Iterator over the POIs not yet present in the
// checkpointed records.
func Resume(pois []model.POI, done []model.Record) *Iterator {
	seen := make(map[int64]bool, len(done))
	for _, rec := range done {
		seen[rec.POI.ID] = true
	}

	it := &Iterator{pending: make([]model.POI, 0, len(pois))}
	for _, p := range pois {
		if seen[p.ID] {
			it.skipped++
			continue
		}
		it.pending = append(it.pending, p)
	}
	return it
}

// Next returns the next unprocessed POI, or false when the batch is done.
func (it *Iterator) Next() (model.POI, bool) {
	if it.pos >= len(it.pending) {
		return model.POI{}, false
	}
	p := it.pending[it.pos]
	it.pos++
	return p, true
}

// Remaining returns how many POIs are still to be yielded.
func (it *Iterator) Remaining() int {
	return len(it.pending) - it.pos
}

// Skipped returns how many POIs were already covered by the checkpoint.
func (it *Iterator) Skipped() int {
	return it.skipped
}
