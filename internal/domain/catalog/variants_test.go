package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDVariants(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want []string
	}{
		{
			name: "plain lowercase id yields single variant",
			id:   "cid_outfit_banana",
			want: []string{"cid_outfit_banana"},
		},
		{
			name: "mixed case id yields both forms",
			id:   "CID_Outfit_Banana",
			want: []string{"CID_Outfit_Banana", "cid_outfit_banana"},
		},
		{
			name: "colon id yields suffix forms",
			id:   "AthenaCharacter:CID_Banana",
			want: []string{
				"AthenaCharacter:CID_Banana",
				"athenacharacter:cid_banana",
				"CID_Banana",
				"cid_banana",
			},
		},
		{
			name: "surrounding whitespace is trimmed",
			id:   "  cid_x  ",
			want: []string{"cid_x"},
		},
		{
			name: "trailing colon contributes no suffix",
			id:   "prefix:",
			want: []string{"prefix:"},
		},
		{
			name: "empty id yields nothing",
			id:   "",
			want: nil,
		},
		{
			name: "blank id yields nothing",
			id:   "   ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IDVariants(tt.id))
		})
	}
}

func TestVariants_CollectsEveryIdentifierField(t *testing.T) {
	raw := RawItem{
		ID:           "CID_Alpha",
		MainID:       "cid_alpha_main",
		TemplateID:   "AthenaCharacter:CID_Alpha",
		DevName:      "[VIRTUAL]Alpha Outfit",
		BackendValue: "AthenaCharacter:cid_alpha",
		CosmeticID:   "cid_alpha_shop",
		OfferID:      "v2:/offer123",
		ShopHistory:  []string{"2024-05-01", "CID_Alpha_Historic"},
		Grants:       []string{"AthenaDance:EID_Alpha"},
		Items: []RawItem{
			{ID: "CID_Nested", TemplateID: "ignored:nested_alias"},
		},
		VariantTags: []string{"Stage2"},
		DisplayAsset: &RawDisplayAsset{
			TemplateID: "DA_Featured_Alpha",
			CosmeticID: "cid_alpha_asset",
		},
	}

	set := Variants(raw)

	// Every field contributes its lowercase form.
	for _, want := range []string{
		"cid_alpha",
		"cid_alpha_main",
		"athenacharacter:cid_alpha",
		"[virtual]alpha outfit",
		"cid_alpha_shop",
		"v2:/offer123",
		"cid_alpha_historic",
		"athenadance:eid_alpha",
		"cid_nested",
		"stage2",
		"da_featured_alpha",
		"cid_alpha_asset",
	} {
		assert.True(t, set.Has(want), "missing variant %q", want)
	}

	// Colon-delimited ids contribute their bare suffix.
	assert.True(t, set.Has("eid_alpha"))
	assert.True(t, set.Has("/offer123"))

	// Nested sub-item alias fields do not leak into the parent set.
	assert.False(t, set.Has("nested_alias"))

	// The set is fully lowercase.
	for v := range set {
		assert.NotContains(t, v, "A")
	}
}

func TestVariants_ColonSuffixProperty(t *testing.T) {
	// For a primary id "a:b", the set holds the id, its lowercase form,
	// the suffix, and the lowercase suffix.
	set := Variants(RawItem{ID: "a:b"})
	require.True(t, set.Has("a:b"))
	require.True(t, set.Has("b"))
}

func TestVariants_EmptyRecord(t *testing.T) {
	assert.Equal(t, 0, Variants(RawItem{}).Len())
}

func TestIDSet(t *testing.T) {
	s := NewIDSet("a", "b")
	s.Add("")
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("c"))

	other := NewIDSet("c")
	s.Union(other)
	assert.True(t, s.Has("c"))

	clone := s.Clone()
	clone.Add("d")
	assert.False(t, s.Has("d"))
}
