package relation

import (
	"fmt"
	"slices"
)

// Violation explains why a property fails. Only the fields relevant to the
// property are set.
type Violation struct {
	// Missing is the pair whose absence breaks the property.
	Missing Pair `json:"missing"`
	// Because lists the present pairs that require Missing: the pair itself
	// for symmetry, the chain a->b, b->c for transitivity, empty for
	// reflexivity.
	Because []Pair `json:"because,omitempty"`
}

// String renders the violation for humans.
func (v Violation) String() string {
	switch len(v.Because) {
	case 0:
		return fmt.Sprintf("missing %s", v.Missing)
	case 1:
		return fmt.Sprintf("%s present but %s missing", v.Because[0], v.Missing)
	default:
		return fmt.Sprintf("%s and %s present but %s missing", v.Because[0], v.Because[1], v.Missing)
	}
}

// Report summarizes the properties of a relation. A nil violation means the
// property holds.
type Report struct {
	Reflexive   bool `json:"reflexive"`
	Symmetric   bool `json:"symmetric"`
	Transitive  bool `json:"transitive"`
	Equivalence bool `json:"equivalence"`

	ReflexiveViolation  *Violation `json:"reflexive_violation,omitempty"`
	SymmetricViolation  *Violation `json:"symmetric_violation,omitempty"`
	TransitiveViolation *Violation `json:"transitive_violation,omitempty"`
}

// IsReflexive reports whether every element relates to itself.
func (r *Relation) IsReflexive() bool {
	return r.reflexiveViolation() == nil
}

// IsSymmetric reports whether every pair's reverse is present.
func (r *Relation) IsSymmetric() bool {
	return r.symmetricViolation() == nil
}

// IsTransitive reports whether a->b and b->c always imply a->c.
func (r *Relation) IsTransitive() bool {
	return r.transitiveViolation() == nil
}

// IsEquivalence reports whether the relation is reflexive, symmetric, and
// transitive.
func (r *Relation) IsEquivalence() bool {
	return r.IsReflexive() && r.IsSymmetric() && r.IsTransitive()
}

// Check evaluates all properties and records the first violation of each,
// in sorted pair order.
func (r *Relation) Check() Report {
	rep := Report{
		ReflexiveViolation:  r.reflexiveViolation(),
		SymmetricViolation:  r.symmetricViolation(),
		TransitiveViolation: r.transitiveViolation(),
	}
	rep.Reflexive = rep.ReflexiveViolation == nil
	rep.Symmetric = rep.SymmetricViolation == nil
	rep.Transitive = rep.TransitiveViolation == nil
	rep.Equivalence = rep.Reflexive && rep.Symmetric && rep.Transitive
	return rep
}

// Lines renders the report as the four verdict lines "(a) R is reflexive."
// through "(d) R is an equivalence relation.", negated where a property fails.
func (rep Report) Lines() []string {
	verdict := func(tag string, ok bool, property string) string {
		if ok {
			return fmt.Sprintf("(%s) R is %s.", tag, property)
		}
		return fmt.Sprintf("(%s) R is not %s.", tag, property)
	}
	return []string{
		verdict("a", rep.Reflexive, "reflexive"),
		verdict("b", rep.Symmetric, "symmetric"),
		verdict("c", rep.Transitive, "transitive"),
		verdict("d", rep.Equivalence, "an equivalence relation"),
	}
}

// Classes returns the equivalence classes, each sorted, ordered by their
// smallest element.
func (r *Relation) Classes() ([][]int, error) {
	if !r.IsEquivalence() {
		return nil, ErrNotEquivalence
	}

	var classes [][]int
	assigned := make(map[int]bool)
	for _, e := range r.Elements() {
		if assigned[e] {
			continue
		}
		class := slices.Clone(r.succ[e])
		for _, m := range class {
			assigned[m] = true
		}
		classes = append(classes, class)
	}
	return classes, nil
}

func (r *Relation) reflexiveViolation() *Violation {
	for _, e := range r.Elements() {
		if !r.Contains(e, e) {
			return &Violation{Missing: Pair{e, e}}
		}
	}
	return nil
}

func (r *Relation) symmetricViolation() *Violation {
	for _, p := range r.Pairs() {
		if !r.Contains(p.To, p.From) {
			return &Violation{Missing: p.Reverse(), Because: []Pair{p}}
		}
	}
	return nil
}

func (r *Relation) transitiveViolation() *Violation {
	for _, ab := range r.Pairs() {
		for _, c := range r.succ[ab.To] {
			if !r.Contains(ab.From, c) {
				return &Violation{
					Missing: Pair{ab.From, c},
					Because: []Pair{ab, {ab.To, c}},
				}
			}
		}
	}
	return nil
}
