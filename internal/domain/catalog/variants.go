package catalog

import "strings"

// IDVariants expands a single identifier into its equivalent string forms:
// the trimmed id, its lowercase form, and — for colon-delimited ids like
// "prefix:suffix" — the bare suffix in both forms. The result preserves
// insertion order and contains no duplicates or empty strings.
func IDVariants(id string) []string {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil
	}

	variants := make([]string, 0, 4)
	seen := make(map[string]struct{}, 4)
	push := func(v string) {
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
	}

	push(trimmed)
	push(strings.ToLower(trimmed))
	if idx := strings.Index(trimmed, ":"); idx > -1 && idx < len(trimmed)-1 {
		suffix := trimmed[idx+1:]
		push(suffix)
		push(strings.ToLower(suffix))
	}
	return variants
}

// Variants collects the canonical identifier variant set of a raw record:
// every identifier-bearing field present on the record, expanded through
// IDVariants and normalized to trimmed lowercase. Two records for the same
// underlying item across feeds are judged equivalent only by intersecting
// these sets. A record with no identifier fields yields an empty set and
// cannot be linked to anything.
func Variants(raw RawItem) IDSet {
	candidates := make([]string, 0, 16)
	push := func(v string) {
		if strings.TrimSpace(v) != "" {
			candidates = append(candidates, v)
		}
	}

	push(raw.ID)
	push(raw.MainID)
	push(raw.TemplateID)
	push(raw.DevName)
	push(raw.BackendValue)
	push(raw.CosmeticID)
	push(raw.OfferID)

	for _, entry := range raw.ShopHistory {
		push(entry)
	}
	if da := raw.DisplayAsset; da != nil {
		push(da.TemplateID)
		push(da.CosmeticID)
	}
	for _, grant := range raw.Grants {
		push(grant)
	}
	// Nested sub-items contribute their primary id only; their own alias
	// fields belong to their own variant sets.
	for _, nested := range raw.Items {
		push(nested.ID)
	}
	for _, tag := range raw.VariantTags {
		push(tag)
	}
	push(MapItem(raw).ID)

	set := make(IDSet, len(candidates)*2)
	for _, candidate := range candidates {
		for _, v := range IDVariants(candidate) {
			set.Add(normalizeID(v))
		}
	}
	return set
}

// AddVariants merges the variant set of a raw record into target. A bare
// string id is normalized and added directly.
func AddVariants(target IDSet, raw RawItem) {
	target.Union(Variants(raw))
}

// normalizeID trims and lowercases an identifier. The variant sets and every
// set derived from them (on sale, on promotion, new) hold only this form.
func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
