package knowledge

import "sort"

// Consolidate merges the evidence of several attempts of the same learner and
// keeps, for each skill, the element with the latest CreatedAt. When two
// elements share a timestamp the one seen first wins. The inputs are not
// modified; the result is ordered by skill ID.
func Consolidate(lists ...[]Element) []Element {
	latest := make(map[string]Element)
	for _, list := range lists {
		for _, e := range list {
			if cur, ok := latest[e.SkillID]; ok && !e.CreatedAt.After(cur.CreatedAt) {
				continue
			}
			latest[e.SkillID] = e
		}
	}

	out := make([]Element, 0, len(latest))
	for _, e := range latest {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SkillID < out[j].SkillID })
	return out
}
