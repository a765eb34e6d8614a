package catalog

// RawItem is a catalog- or shop-feed record in the loose shape the upstream
// feeds actually serve. Every field is optional; the feeds disagree on which
// identifier field is populated and whether classifier fields are flat
// strings or nested objects, so mapping is capability-based: a field
// contributes only when present and non-empty.
type RawItem struct {
	ID           string
	MainID       string
	TemplateID   string
	DevName      string
	BackendValue string
	CosmeticID   string
	OfferID      string

	Name   string
	Type   Classifier
	Rarity Classifier

	// Added is the flat inclusion date; IntroducedAt is the nested
	// introduction date served by the other endpoint generation.
	Added        string
	IntroducedAt string

	Images RawImages

	// ShopHistory holds historical listing identifier strings.
	ShopHistory []string
	// Grants holds identifiers of items granted by this listing.
	Grants []string
	// Items holds nested sub-item records for bundle-shaped entries.
	Items []RawItem
	// VariantTags holds nested variant option tags.
	VariantTags []string

	DisplayAsset *RawDisplayAsset
}

// Classifier is a feed field that appears either as a bare string or as an
// object carrying value and id forms, depending on the endpoint generation.
type Classifier struct {
	Value string
	ID    string
	Flat  string
}

// Resolve picks the first populated form, falling back to def.
func (c Classifier) Resolve(def string) string {
	switch {
	case c.Value != "":
		return c.Value
	case c.ID != "":
		return c.ID
	case c.Flat != "":
		return c.Flat
	default:
		return def
	}
}

// RawImages holds the image URL fields a record may carry.
type RawImages struct {
	Icon      string
	SmallIcon string
	Featured  string
}

// First returns the first populated image URL.
func (im RawImages) First() string {
	switch {
	case im.Icon != "":
		return im.Icon
	case im.SmallIcon != "":
		return im.SmallIcon
	default:
		return im.Featured
	}
}

// RawDisplayAsset is the synthetic visual asset some shop entries advertise
// instead of an enumerated item list.
type RawDisplayAsset struct {
	TemplateID string
	CosmeticID string
}
