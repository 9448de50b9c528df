package chainref

import (
	"path/filepath"
	"strings"
)

// RecordType identifies one of the reference-data files kept per chain.
type RecordType string

const (
	Account  RecordType = "account"
	Asset    RecordType = "asset"
	Binary   RecordType = "binary"
	Contract RecordType = "contract"
	Entity   RecordType = "entity"
	Pool     RecordType = "pool"
)

// FileSuffix is the extension shared by every record file.
const FileSuffix = ".json"

// AllRecordTypes returns the record types in their declared processing order.
func AllRecordTypes() []RecordType {
	return []RecordType{Account, Asset, Binary, Contract, Entity, Pool}
}

// ParseRecordType maps a tag to its RecordType.
func ParseRecordType(tag string) (RecordType, error) {
	t := RecordType(tag)
	if _, ok := layouts[t]; !ok {
		return "", &UnknownRecordTypeError{Tag: tag}
	}
	return t, nil
}

// FileName returns the file name records of this type are stored under.
func (t RecordType) FileName() string { return string(t) + FileSuffix }

// RecordTypeForPath resolves the record type from a path's base name
// (for example "osmosis/asset.json").
func RecordTypeForPath(path string) (RecordType, bool) {
	base := filepath.Base(filepath.ToSlash(path))
	if !strings.HasSuffix(base, FileSuffix) {
		return "", false
	}
	t, err := ParseRecordType(strings.TrimSuffix(base, FileSuffix))
	if err != nil {
		return "", false
	}
	return t, true
}

// FieldKind constrains the JSON value a field may hold.
type FieldKind int

const (
	KindString FieldKind = iota // non-empty string when required
	KindDigits                  // string of ASCII digits
	KindPair                    // array of exactly two non-empty strings
)

// FieldSpec declares one field of a record layout.
type FieldSpec struct {
	Name     string
	Kind     FieldKind
	Required bool
	// NonEmpty forces minLength 1 on an optional string.
	NonEmpty bool
}

// Layout is the declarative shape of a record type. Field order is the
// canonical key order.
type Layout struct {
	Type        RecordType
	Fields      []FieldSpec
	IdentityKey string
}

// Field looks up a field spec by name.
func (l Layout) Field(name string) (FieldSpec, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Required returns the names of the required fields in declared order.
func (l Layout) Required() []string {
	var out []string
	for _, f := range l.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

func req(name string, kind FieldKind) FieldSpec {
	return FieldSpec{Name: name, Kind: kind, Required: true}
}

func opt(name string) FieldSpec { return FieldSpec{Name: name, Kind: KindString} }

var socialFields = []FieldSpec{
	opt("website"),
	opt("telegram"),
	opt("twitter"),
	opt("discord"),
	opt("coinmarketcap"),
	opt("coingecko"),
}

func labelled(t RecordType) Layout {
	return Layout{
		Type: t,
		Fields: []FieldSpec{
			req("id", KindString),
			req("entity", KindString),
			req("label", KindString),
		},
		IdentityKey: "id",
	}
}

// Entities are keyed by their entity name.
var layouts = map[RecordType]Layout{
	Account: labelled(Account),
	Asset: {
		Type: Asset,
		Fields: append([]FieldSpec{
			req("id", KindString),
			req("name", KindString),
			req("symbol", KindString),
			req("decimals", KindDigits),
			{Name: "entity", Kind: KindString, NonEmpty: true},
			opt("circ_supply_api"),
			opt("icon"),
		}, socialFields...),
		IdentityKey: "id",
	},
	Binary:   labelled(Binary),
	Contract: labelled(Contract),
	Entity: {
		Type:        Entity,
		Fields:      append([]FieldSpec{req("entity", KindString)}, socialFields...),
		IdentityKey: "entity",
	},
	Pool: {
		Type: Pool,
		Fields: []FieldSpec{
			req("id", KindString),
			req("lp_token_id", KindString),
			req("asset_ids", KindPair),
			req("dex", KindString),
			req("type", KindString),
		},
		IdentityKey: "id",
	},
}

// LayoutOf returns the layout registered for t.
func LayoutOf(t RecordType) (Layout, error) {
	l, ok := layouts[t]
	if !ok {
		return Layout{}, &UnknownRecordTypeError{Tag: string(t)}
	}
	return l, nil
}
