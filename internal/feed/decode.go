package feed

import (
	"github.com/go-faster/jx"

	"lootshop/internal/domain/catalog"
	"lootshop/internal/domain/shop"
)

// The feeds are loosely shaped: fields come and go between endpoint
// generations and scalar fields occasionally change type. Decoding is
// therefore capability-based — a field contributes when present with a
// usable type and is skipped otherwise — and a malformed record never fails
// the surrounding pass.

// str reads a string value, tolerating any other type by skipping it.
func str(d *jx.Decoder) (string, error) {
	if d.Next() != jx.String {
		return "", d.Skip()
	}
	return d.Str()
}

// num reads a number value into a pointer, tolerating non-numbers.
func num(d *jx.Decoder) (*float64, error) {
	if d.Next() != jx.Number {
		return nil, d.Skip()
	}
	v, err := d.Float64()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// decodeClassifier reads a field that is either a bare string or an object
// with value/id forms.
func decodeClassifier(d *jx.Decoder) (catalog.Classifier, error) {
	var c catalog.Classifier
	switch d.Next() {
	case jx.String:
		v, err := d.Str()
		if err != nil {
			return c, err
		}
		c.Flat = v
		return c, nil
	case jx.Object:
		return c, d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "value":
				c.Value, err = str(d)
			case "id":
				c.ID, err = str(d)
			default:
				err = d.Skip()
			}
			return err
		})
	default:
		return c, d.Skip()
	}
}

// decodeStringArray reads an array of strings, skipping non-string elements.
func decodeStringArray(d *jx.Decoder) ([]string, error) {
	if d.Next() != jx.Array {
		return nil, d.Skip()
	}
	var out []string
	err := d.Arr(func(d *jx.Decoder) error {
		v, err := str(d)
		if err != nil {
			return err
		}
		if v != "" {
			out = append(out, v)
		}
		return nil
	})
	return out, err
}

// decodeGrants reads the grants array, accepting both bare id strings and
// {id} objects.
func decodeGrants(d *jx.Decoder) ([]string, error) {
	if d.Next() != jx.Array {
		return nil, d.Skip()
	}
	var out []string
	err := d.Arr(func(d *jx.Decoder) error {
		switch d.Next() {
		case jx.String:
			v, err := d.Str()
			if err != nil {
				return err
			}
			if v != "" {
				out = append(out, v)
			}
			return nil
		case jx.Object:
			return d.Obj(func(d *jx.Decoder, key string) error {
				if key != "id" {
					return d.Skip()
				}
				v, err := str(d)
				if err != nil {
					return err
				}
				if v != "" {
					out = append(out, v)
				}
				return nil
			})
		default:
			return d.Skip()
		}
	})
	return out, err
}

// decodeVariantTags reads the variants array and flattens the nested option
// tags: [{options: [{tag}]}].
func decodeVariantTags(d *jx.Decoder) ([]string, error) {
	if d.Next() != jx.Array {
		return nil, d.Skip()
	}
	var tags []string
	err := d.Arr(func(d *jx.Decoder) error {
		if d.Next() != jx.Object {
			return d.Skip()
		}
		return d.Obj(func(d *jx.Decoder, key string) error {
			if key != "options" || d.Next() != jx.Array {
				return d.Skip()
			}
			return d.Arr(func(d *jx.Decoder) error {
				if d.Next() != jx.Object {
					return d.Skip()
				}
				return d.Obj(func(d *jx.Decoder, key string) error {
					if key != "tag" {
						return d.Skip()
					}
					v, err := str(d)
					if err != nil {
						return err
					}
					if v != "" {
						tags = append(tags, v)
					}
					return nil
				})
			})
		})
	})
	return tags, err
}

// decodeDisplayAsset reads the newDisplayAsset object.
func decodeDisplayAsset(d *jx.Decoder) (*catalog.RawDisplayAsset, error) {
	if d.Next() != jx.Object {
		return nil, d.Skip()
	}
	var da catalog.RawDisplayAsset
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "templateId":
			da.TemplateID, err = str(d)
		case "cosmeticId":
			da.CosmeticID, err = str(d)
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if da.TemplateID == "" && da.CosmeticID == "" {
		return nil, nil
	}
	return &da, nil
}

// decodeRawItem reads one feed record in either endpoint generation's shape.
func decodeRawItem(d *jx.Decoder) (catalog.RawItem, error) {
	var raw catalog.RawItem
	if d.Next() != jx.Object {
		return raw, d.Skip()
	}
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			raw.ID, err = str(d)
		case "mainId":
			raw.MainID, err = str(d)
		case "templateId":
			raw.TemplateID, err = str(d)
		case "devName":
			raw.DevName, err = str(d)
		case "backendValue":
			raw.BackendValue, err = str(d)
		case "cosmeticId":
			raw.CosmeticID, err = str(d)
		case "offerId":
			raw.OfferID, err = str(d)
		case "name":
			raw.Name, err = str(d)
		case "type":
			raw.Type, err = decodeClassifier(d)
		case "rarity":
			raw.Rarity, err = decodeClassifier(d)
		case "added":
			raw.Added, err = str(d)
		case "introduction":
			if d.Next() != jx.Object {
				return d.Skip()
			}
			err = d.Obj(func(d *jx.Decoder, key string) error {
				if key != "added" {
					return d.Skip()
				}
				var e error
				raw.IntroducedAt, e = str(d)
				return e
			})
		case "images":
			if d.Next() != jx.Object {
				return d.Skip()
			}
			err = d.Obj(func(d *jx.Decoder, key string) error {
				var e error
				switch key {
				case "icon":
					raw.Images.Icon, e = str(d)
				case "smallIcon":
					raw.Images.SmallIcon, e = str(d)
				case "featured":
					raw.Images.Featured, e = str(d)
				default:
					e = d.Skip()
				}
				return e
			})
		case "shopHistory":
			raw.ShopHistory, err = decodeStringArray(d)
		case "grants":
			raw.Grants, err = decodeGrants(d)
		case "items":
			raw.Items, err = decodeRawItems(d)
		case "variants":
			raw.VariantTags, err = decodeVariantTags(d)
		case "newDisplayAsset":
			raw.DisplayAsset, err = decodeDisplayAsset(d)
		default:
			err = d.Skip()
		}
		return err
	})
	return raw, err
}

// decodeRawItems reads an array of feed records.
func decodeRawItems(d *jx.Decoder) ([]catalog.RawItem, error) {
	if d.Next() != jx.Array {
		return nil, d.Skip()
	}
	var out []catalog.RawItem
	err := d.Arr(func(d *jx.Decoder) error {
		raw, err := decodeRawItem(d)
		if err != nil {
			return err
		}
		out = append(out, raw)
		return nil
	})
	return out, err
}

// decodeCatalogResponse reads the catalog endpoint body: {"data": [record]}.
func decodeCatalogResponse(body []byte) ([]catalog.RawItem, error) {
	var items []catalog.RawItem
	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "data" {
			return d.Skip()
		}
		var err error
		items, err = decodeRawItems(d)
		return err
	})
	return items, err
}

// decodeNewResponse reads the current new-items endpoint, collecting records
// from every known bucket: data.items as a plain array, the keyed buckets
// br/all/featured/new, and the older data.br.items shape.
func decodeNewResponse(body []byte) ([]catalog.RawItem, error) {
	var buckets []catalog.RawItem
	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "data" {
			return d.Skip()
		}
		if d.Next() != jx.Object {
			return d.Skip()
		}
		return d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "items":
				switch d.Next() {
				case jx.Array:
					items, err := decodeRawItems(d)
					if err != nil {
						return err
					}
					buckets = append(buckets, items...)
					return nil
				case jx.Object:
					return d.Obj(func(d *jx.Decoder, key string) error {
						switch key {
						case "br", "all", "featured", "new":
							items, err := decodeRawItems(d)
							if err != nil {
								return err
							}
							buckets = append(buckets, items...)
							return nil
						default:
							return d.Skip()
						}
					})
				default:
					return d.Skip()
				}
			case "br":
				if d.Next() != jx.Object {
					return d.Skip()
				}
				return d.Obj(func(d *jx.Decoder, key string) error {
					if key != "items" {
						return d.Skip()
					}
					items, err := decodeRawItems(d)
					if err != nil {
						return err
					}
					buckets = append(buckets, items...)
					return nil
				})
			default:
				return d.Skip()
			}
		})
	})
	return buckets, err
}

// decodeLegacyNewResponse reads the deprecated new-items endpoint:
// data.items as an array, or data itself as an array.
func decodeLegacyNewResponse(body []byte) ([]catalog.RawItem, error) {
	var items []catalog.RawItem
	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "data" {
			return d.Skip()
		}
		switch d.Next() {
		case jx.Array:
			var err error
			items, err = decodeRawItems(d)
			return err
		case jx.Object:
			return d.Obj(func(d *jx.Decoder, key string) error {
				if key != "items" {
					return d.Skip()
				}
				var err error
				items, err = decodeRawItems(d)
				return err
			})
		default:
			return d.Skip()
		}
	})
	return items, err
}

// decodeShopEntry reads one shop listing in either schema generation.
func decodeShopEntry(d *jx.Decoder) (shop.Entry, error) {
	var entry shop.Entry
	if d.Next() != jx.Object {
		return entry, d.Skip()
	}
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "offerId":
			entry.OfferID, err = str(d)
		case "offerID":
			// Legacy casing; the properly-cased field wins when both exist.
			v, e := str(d)
			if e == nil && entry.OfferID == "" {
				entry.OfferID = v
			}
			err = e
		case "devName":
			entry.DevName, err = str(d)
		case "regularPrice":
			entry.RegularPrice, err = num(d)
		case "finalPrice":
			entry.FinalPrice, err = num(d)
		case "price":
			entry.Price, err = num(d)
		case "brItems":
			entry.Items, err = decodeRawItems(d)
		case "items":
			entry.AltItems, err = decodeRawItems(d)
		case "bundle":
			if d.Next() != jx.Object {
				return d.Skip()
			}
			err = d.Obj(func(d *jx.Decoder, key string) error {
				if key != "name" {
					return d.Skip()
				}
				var e error
				entry.BundleName, e = str(d)
				return e
			})
		case "bundleName":
			entry.FlatBundleName, err = str(d)
		case "layout":
			if d.Next() != jx.Object {
				return d.Skip()
			}
			err = d.Obj(func(d *jx.Decoder, key string) error {
				if key != "name" {
					return d.Skip()
				}
				var e error
				entry.LayoutName, e = str(d)
				return e
			})
		case "newDisplayAsset":
			entry.DisplayAsset, err = decodeDisplayAsset(d)
		default:
			err = d.Skip()
		}
		return err
	})
	return entry, err
}

// decodeShopResponse reads the shop endpoint body: {"data": {"entries": [entry]}}.
func decodeShopResponse(body []byte) ([]shop.Entry, error) {
	var entries []shop.Entry
	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "data" {
			return d.Skip()
		}
		if d.Next() != jx.Object {
			return d.Skip()
		}
		return d.Obj(func(d *jx.Decoder, key string) error {
			if key != "entries" || d.Next() != jx.Array {
				return d.Skip()
			}
			return d.Arr(func(d *jx.Decoder) error {
				entry, err := decodeShopEntry(d)
				if err != nil {
					return err
				}
				entries = append(entries, entry)
				return nil
			})
		})
	})
	return entries, err
}
