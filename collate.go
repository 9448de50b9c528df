package chainref

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Collator compares record keys using en-US collation. Identity values are
// compared with numeric ordering of digit runs ("2" < "10"); every other key
// uses plain collation. A Collator is not safe for concurrent use.
type Collator struct {
	text *collate.Collator
	ids  *collate.Collator
}

// NewCollator returns a Collator for American English.
func NewCollator() *Collator {
	return &Collator{
		text: collate.New(language.AmericanEnglish),
		ids:  collate.New(language.AmericanEnglish, collate.Numeric),
	}
}

// Text compares two non-identity values.
func (c *Collator) Text(a, b string) int { return c.text.CompareString(a, b) }

// ID compares two identity values.
func (c *Collator) ID(a, b string) int { return c.ids.CompareString(a, b) }
