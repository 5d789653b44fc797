package domain

import (
	"encoding/json"
	"sort"
)

type SKUSet map[string]struct{}

func NewSKUSet(skus ...string) SKUSet {
	out := make(SKUSet, len(skus))
	for _, sku := range skus {
		out[sku] = struct{}{}
	}
	return out
}

func (s SKUSet) Add(sku string) {
	s[sku] = struct{}{}
}

func (s SKUSet) Has(sku string) bool {
	_, ok := s[sku]
	return ok
}

func (s SKUSet) Len() int {
	return len(s)
}

func (s SKUSet) Clone() SKUSet {
	out := make(SKUSet, len(s))
	for sku := range s {
		out[sku] = struct{}{}
	}
	return out
}

func (s SKUSet) Intersect(other SKUSet) SKUSet {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := SKUSet{}
	for sku := range small {
		if large.Has(sku) {
			out.Add(sku)
		}
	}
	return out
}

// Sorted returns the members in ascending order.
func (s SKUSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for sku := range s {
		out = append(out, sku)
	}
	sort.Strings(out)
	return out
}

func (s SKUSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *SKUSet) UnmarshalJSON(raw []byte) error {
	var skus []string
	if err := json.Unmarshal(raw, &skus); err != nil {
		return err
	}
	*s = NewSKUSet(skus...)
	return nil
}
