package crosswalk

// ResolvePolicy controls how an OCC mapping to multiple SOC codes is
// resolved after deduplication.
type ResolvePolicy string

const (
	// ResolveStrict drops every row of an OCC that still maps to more
	// than one distinct SOC: ambiguity is excluded, not guessed.
	ResolveStrict ResolvePolicy = "strict"

	// ResolveExpand keeps all deduplicated pairs; downstream consumers
	// pick a dominant SOC per OCC themselves.
	ResolveExpand ResolvePolicy = "expand"

	// ResolvePreferSpecific keeps one row per OCC, preferring a SOC that
	// is not a bare major-group code, then first occurrence.
	ResolvePreferSpecific ResolvePolicy = "prefer-specific"
)

// Dedup removes duplicate (occ, soc) pairs, keeping first-occurrence
// order.
func Dedup(rows []Row) []Row {
	seen := make(map[Row]bool, len(rows))
	out := rows[:0:0]
	for _, r := range rows {
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

// Resolve applies the conflict policy to deduplicated rows. The second
// return is the number of ambiguous OCC codes dropped (strict policy
// only; the other policies never drop whole OCC codes).
func Resolve(rows []Row, policy ResolvePolicy) ([]Row, int) {
	switch policy {
	case ResolveExpand:
		return rows, 0
	case ResolvePreferSpecific:
		return preferSpecific(rows), 0
	default:
		return dropAmbiguous(rows)
	}
}

// dropAmbiguous removes every OCC that maps to more than one SOC.
func dropAmbiguous(rows []Row) ([]Row, int) {
	// Rows are already deduplicated, so the per-OCC row count equals the
	// number of distinct SOC codes it maps to.
	perOcc := make(map[string]int, len(rows))
	for _, r := range rows {
		perOcc[r.Occ]++
	}

	dropped := 0
	for _, n := range perOcc {
		if n > 1 {
			dropped++
		}
	}

	out := rows[:0:0]
	for _, r := range rows {
		if perOcc[r.Occ] == 1 {
			out = append(out, r)
		}
	}
	return out, dropped
}

// preferSpecific keeps one row per OCC: the first whose SOC is not a
// major-group code, falling back to the first row seen.
func preferSpecific(rows []Row) []Row {
	type pick struct {
		row      Row
		specific bool
		order    int
	}
	picks := make(map[string]pick, len(rows))
	var occOrder []string

	for i, r := range rows {
		specific := !IsMajorGroup(r.Soc)
		cur, ok := picks[r.Occ]
		if !ok {
			picks[r.Occ] = pick{row: r, specific: specific, order: i}
			occOrder = append(occOrder, r.Occ)
			continue
		}
		if specific && !cur.specific {
			picks[r.Occ] = pick{row: r, specific: true, order: cur.order}
		}
	}

	out := make([]Row, 0, len(occOrder))
	for _, occ := range occOrder {
		out = append(out, picks[occ].row)
	}
	return out
}
