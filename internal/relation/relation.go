// Package relation checks properties of a finite binary relation on integers:
// reflexivity, symmetry, transitivity, and therefore equivalence.
//
// The carrier set is taken to be every value appearing in some pair, so a
// relation is reflexive when each such value relates to itself. The empty
// relation is vacuously reflexive, symmetric, and transitive.
package relation

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Sentinel errors for relation operations.
var (
	// ErrParse indicates malformed relation text.
	ErrParse = errors.New("relation: parse error")
	// ErrNotEquivalence indicates an operation that needs an equivalence relation.
	ErrNotEquivalence = errors.New("relation: not an equivalence relation")
)

// Pair is an ordered pair (From, To) meaning From relates to To.
type Pair struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// String renders the pair as "(a,b)".
func (p Pair) String() string {
	return fmt.Sprintf("(%d,%d)", p.From, p.To)
}

// Reverse returns (To, From).
func (p Pair) Reverse() Pair {
	return Pair{From: p.To, To: p.From}
}

// Relation is an immutable set of pairs.
type Relation struct {
	set map[Pair]struct{}
	// succ maps each element to the elements it relates to.
	succ map[int][]int
}

// New builds a relation from pairs. Duplicate pairs collapse.
func New(pairs ...Pair) *Relation {
	r := &Relation{
		set:  make(map[Pair]struct{}, len(pairs)),
		succ: make(map[int][]int),
	}
	for _, p := range pairs {
		if _, ok := r.set[p]; ok {
			continue
		}
		r.set[p] = struct{}{}
		r.succ[p.From] = append(r.succ[p.From], p.To)
	}
	for k := range r.succ {
		slices.Sort(r.succ[k])
	}
	return r
}

// Default returns the relation
// {(0,0),(0,1),(0,3),(1,0),(1,1),(2,2),(3,0),(3,3)}.
func Default() *Relation {
	return New(
		Pair{0, 0}, Pair{0, 1}, Pair{0, 3},
		Pair{1, 0}, Pair{1, 1},
		Pair{2, 2},
		Pair{3, 0}, Pair{3, 3},
	)
}

// Len returns the number of distinct pairs.
func (r *Relation) Len() int { return len(r.set) }

// Contains reports whether a relates to b.
func (r *Relation) Contains(a, b int) bool {
	_, ok := r.set[Pair{a, b}]
	return ok
}

// Pairs returns the pairs sorted by (From, To).
func (r *Relation) Pairs() []Pair {
	out := make([]Pair, 0, len(r.set))
	for p := range r.set {
		out = append(out, p)
	}
	slices.SortFunc(out, comparePairs)
	return out
}

// Elements returns every value appearing in a pair, sorted ascending.
func (r *Relation) Elements() []int {
	seen := make(map[int]struct{}, 2*len(r.set))
	for p := range r.set {
		seen[p.From] = struct{}{}
		seen[p.To] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for e := range seen {
		out = append(out, e)
	}
	slices.Sort(out)
	return out
}

// String renders the relation as "{(a,b), ...}" in sorted order.
func (r *Relation) String() string {
	pairs := r.Pairs()
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func comparePairs(a, b Pair) int {
	if c := cmp.Compare(a.From, b.From); c != 0 {
		return c
	}
	return cmp.Compare(a.To, b.To)
}
