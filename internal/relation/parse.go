package relation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Parse reads a relation written as parenthesized pairs, for example
// "{(0,0), (0,1), (1,0)}". Outer braces are optional and pairs may be
// separated by commas, semicolons, or whitespace. Empty input yields the
// empty relation.
func Parse(text string) (*Relation, error) {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "{") {
		if !strings.HasSuffix(s, "}") {
			return nil, fmt.Errorf("%w: unbalanced braces", ErrParse)
		}
		s = s[1 : len(s)-1]
	}

	var pairs []Pair
	for i := 0; i < len(s); {
		c := rune(s[i])
		switch {
		case unicode.IsSpace(c) || c == ',' || c == ';':
			i++
		case c == '(':
			end := strings.IndexByte(s[i:], ')')
			if end < 0 {
				return nil, fmt.Errorf("%w: unclosed '(' at offset %d", ErrParse, i)
			}
			p, err := parsePair(s[i+1 : i+end])
			if err != nil {
				return nil, fmt.Errorf("%w: pair at offset %d: %v", ErrParse, i, err)
			}
			pairs = append(pairs, p)
			i += end + 1
		default:
			return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrParse, c, i)
		}
	}
	return New(pairs...), nil
}

func parsePair(body string) (Pair, error) {
	a, b, ok := strings.Cut(body, ",")
	if !ok {
		return Pair{}, fmt.Errorf("want two comma-separated integers, got %q", body)
	}
	from, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return Pair{}, err
	}
	to, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return Pair{}, err
	}
	return Pair{From: from, To: to}, nil
}
