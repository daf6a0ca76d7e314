package ledger

import (
	"github.com/google/uuid"
)

// FindOrphans returns the children whose main document is missing.
func FindOrphans(records []Record) []Record {
	ids := make(map[uuid.UUID]struct{}, len(records))
	for _, r := range records {
		ids[r.ID] = struct{}{}
	}

	var orphans []Record

	for _, r := range records {
		if r.ParentDocumentID == nil {
			continue
		}

		if _, ok := ids[*r.ParentDocumentID]; !ok {
			orphans = append(orphans, r)
		}
	}

	return orphans
}

// RepairOrphans drops every orphaned child and keeps everything else in its
// original order.
func RepairOrphans(records []Record) (kept, removed []Record) {
	orphans := FindOrphans(records)
	if len(orphans) == 0 {
		return records, nil
	}

	return without(records, idSet(orphans)), orphans
}

// Delete removes a document together with every child posted under it and
// the other half of a legacy linked pair. A single leg of a movement cannot be
// deleted on its own; batch lines can.
func Delete(records []Record, id uuid.UUID) (kept, removed []Record, err error) {
	var target *Record

	for i := range records {
		if records[i].ID == id {
			target = &records[i]
			break
		}
	}

	if target == nil {
		return nil, nil, ErrNotFound
	}

	if target.Role.IsLeg() {
		return nil, nil, ErrDeleteLeg
	}

	drop := map[uuid.UUID]struct{}{id: {}}

	if target.LinkedTransactionID != nil {
		drop[*target.LinkedTransactionID] = struct{}{}
	}

	for _, r := range records {
		if r.ParentDocumentID != nil && *r.ParentDocumentID == id {
			drop[r.ID] = struct{}{}
		}

		// The pair may only point one way.
		if r.LinkedTransactionID != nil && *r.LinkedTransactionID == id {
			drop[r.ID] = struct{}{}
		}
	}

	for _, r := range records {
		if _, ok := drop[r.ID]; ok {
			removed = append(removed, r)
		}
	}

	return without(records, drop), removed, nil
}

func idSet(records []Record) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(records))
	for _, r := range records {
		set[r.ID] = struct{}{}
	}

	return set
}

func without(records []Record, drop map[uuid.UUID]struct{}) []Record {
	kept := make([]Record, 0, len(records))

	for _, r := range records {
		if _, ok := drop[r.ID]; ok {
			continue
		}

		kept = append(kept, r)
	}

	return kept
}
