package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Category names one of the five point counters tracked per user
type Category string

const (
	CategoryDojos       Category = "dojos"
	CategoryPendejos    Category = "pendejos"
	CategoryMimidos     Category = "mimidos"
	CategoryCastitontos Category = "castitontos"
	CategoryChescos     Category = "chescos" // tally only, never part of the total
)

// Categories lists every category in display order
var Categories = []Category{
	CategoryDojos,
	CategoryPendejos,
	CategoryMimidos,
	CategoryCastitontos,
	CategoryChescos,
}

// ParseCategory validates a category name
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Points holds one value per category. Used both for running counters and for deltas.
type Points struct {
	Dojos       float64 `bson:"dojos" json:"dojos"`
	Pendejos    float64 `bson:"pendejos" json:"pendejos"`
	Mimidos     float64 `bson:"mimidos" json:"mimidos"`
	Castitontos float64 `bson:"castitontos" json:"castitontos"`
	Chescos     float64 `bson:"chescos" json:"chescos"`
}

// Get returns the value for a category
func (p Points) Get(c Category) float64 {
	switch c {
	case CategoryDojos:
		return p.Dojos
	case CategoryPendejos:
		return p.Pendejos
	case CategoryMimidos:
		return p.Mimidos
	case CategoryCastitontos:
		return p.Castitontos
	case CategoryChescos:
		return p.Chescos
	}
	return 0
}

// Add adds amount to the counter for c
func (p *Points) Add(c Category, amount float64) {
	switch c {
	case CategoryDojos:
		p.Dojos = AddExact(p.Dojos, amount)
	case CategoryPendejos:
		p.Pendejos = AddExact(p.Pendejos, amount)
	case CategoryMimidos:
		p.Mimidos = AddExact(p.Mimidos, amount)
	case CategoryCastitontos:
		p.Castitontos = AddExact(p.Castitontos, amount)
	case CategoryChescos:
		p.Chescos = AddExact(p.Chescos, amount)
	}
}

// Plus returns p + o per category
func (p Points) Plus(o Points) Points {
	for _, c := range Categories {
		p.Add(c, o.Get(c))
	}
	return p
}

// Minus returns p - o per category
func (p Points) Minus(o Points) Points {
	for _, c := range Categories {
		p.Add(c, -o.Get(c))
	}
	return p
}

// IsZero reports whether every category is zero
func (p Points) IsZero() bool {
	return p == Points{}
}

// Total is dojos minus the three penalty categories. Chescos do not count.
func (p Points) Total() float64 {
	return decimal.NewFromFloat(p.Dojos).
		Sub(decimal.NewFromFloat(p.Pendejos)).
		Sub(decimal.NewFromFloat(p.Mimidos)).
		Sub(decimal.NewFromFloat(p.Castitontos)).
		InexactFloat64()
}

// PointDelta is a partial set of per-category amounts.
// Categories absent from the map are left untouched when applied.
type PointDelta map[Category]float64

// Points converts the delta to a full Points value with zeros for absent categories
func (d PointDelta) Points() Points {
	var p Points
	for c, v := range d {
		p.Add(c, v)
	}
	return p
}

// ParsePointDelta validates the keys of a raw category->amount map
func ParsePointDelta(raw map[string]float64) (PointDelta, error) {
	delta := make(PointDelta, len(raw))
	for k, v := range raw {
		c, err := ParseCategory(k)
		if err != nil {
			return nil, err
		}
		delta[c] = AddExact(delta[c], v)
	}
	return delta, nil
}

// AddExact adds two amounts in decimal so repeated fractional increments never drift
func AddExact(a, b float64) float64 {
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).InexactFloat64()
}

// MulExact multiplies two amounts in decimal
func MulExact(a, b float64) float64 {
	return decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)).InexactFloat64()
}
