// Package floorplan is the static seat directory of the dining room.  A
// seat is addressed by its table letter and a zero-based index within the
// table, and is written on the wire as a token such as "A3".  The plan is
// loaded once at startup and never changes while the process runs.
package floorplan

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultTables and DefaultSeatsPerTable describe the built-in layout:
// six tables A to F with nine seats each.
var DefaultTables = []string{"A", "B", "C", "D", "E", "F"}

const DefaultSeatsPerTable = 9

// Seat identifies one chair.  It is a value and carries no state.
type Seat struct {
	Table string
	Index int
}

// Token renders the seat in its wire form, e.g. "A3".
func (s Seat) Token() string { return s.Table + strconv.Itoa(s.Index) }

func (s Seat) String() string { return s.Token() }

// Plan is the set of tables and the number of seats at each.
type Plan struct {
	Tables        []string `yaml:"tables"`
	SeatsPerTable int      `yaml:"seats_per_table"`

	order map[string]int
}

// Default returns the built-in A-F x 9 layout.
func Default() *Plan {
	p, _ := New(DefaultTables, DefaultSeatsPerTable)
	return p
}

// New validates and builds a plan.  Table ids are upper-cased letters.
func New(tables []string, seatsPerTable int) (*Plan, error) {
	p := &Plan{SeatsPerTable: seatsPerTable}
	for _, t := range tables {
		p.Tables = append(p.Tables, strings.ToUpper(strings.TrimSpace(t)))
	}
	if err := p.init(); err != nil {
		return nil, err
	}
	return p, nil
}

// Load reads a plan from a YAML file of the form
//
//	tables: [A, B, C]
//	seats_per_table: 6
//
// An empty path yields the default plan.
func Load(path string) (*Plan, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read floor plan: %w", err)
	}
	var raw Plan
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse floor plan: %w", err)
	}
	if len(raw.Tables) == 0 {
		raw.Tables = DefaultTables
	}
	if raw.SeatsPerTable == 0 {
		raw.SeatsPerTable = DefaultSeatsPerTable
	}
	return New(raw.Tables, raw.SeatsPerTable)
}

func (p *Plan) init() error {
	if len(p.Tables) == 0 {
		return errors.New("floor plan has no tables")
	}
	if p.SeatsPerTable < 1 {
		return fmt.Errorf("floor plan seats_per_table must be positive, got %d", p.SeatsPerTable)
	}
	p.order = make(map[string]int, len(p.Tables))
	for i, t := range p.Tables {
		if t == "" || strings.IndexFunc(t, func(r rune) bool { return r < 'A' || r > 'Z' }) >= 0 {
			return fmt.Errorf("floor plan table id %q must be letters only", t)
		}
		if _, dup := p.order[t]; dup {
			return fmt.Errorf("floor plan table id %q listed twice", t)
		}
		p.order[t] = i
	}
	return nil
}

// Capacity is the total number of seats in the room.
func (p *Plan) Capacity() int { return len(p.Tables) * p.SeatsPerTable }

// Contains reports whether the seat exists in this plan.
func (p *Plan) Contains(s Seat) bool {
	_, ok := p.order[s.Table]
	return ok && s.Index >= 0 && s.Index < p.SeatsPerTable
}

// Parse turns a token into a seat of this plan.  Case and surrounding
// space are ignored.
func (p *Plan) Parse(token string) (Seat, error) {
	s, err := ParseToken(token)
	if err != nil {
		return Seat{}, err
	}
	if !p.Contains(s) {
		return Seat{}, fmt.Errorf("seat %q is not on the floor plan", s.Token())
	}
	return s, nil
}

// ParseToken splits a token into table letters and index without checking
// it against any plan.
func ParseToken(token string) (Seat, error) {
	t := strings.ToUpper(strings.TrimSpace(token))
	cut := strings.IndexFunc(t, func(r rune) bool { return r >= '0' && r <= '9' })
	if cut <= 0 {
		return Seat{}, fmt.Errorf("malformed seat token %q", token)
	}
	table, digits := t[:cut], t[cut:]
	if strings.IndexFunc(table, func(r rune) bool { return r < 'A' || r > 'Z' }) >= 0 {
		return Seat{}, fmt.Errorf("malformed seat token %q", token)
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return Seat{}, fmt.Errorf("malformed seat token %q", token)
	}
	return Seat{Table: table, Index: n}, nil
}

// Resolution is the outcome of resolving a batch of requested tokens.
type Resolution struct {
	Seats      []Seat   // valid, distinct seats in plan order
	Invalid    []string // tokens that are malformed or not on the plan
	Duplicates []string // tokens requested more than once
}

// Resolve parses every token, collecting invalid and repeated ones instead
// of stopping at the first problem.
func (p *Plan) Resolve(tokens []string) Resolution {
	var res Resolution
	seen := make(map[Seat]bool, len(tokens))
	for _, tok := range tokens {
		s, err := p.Parse(tok)
		if err != nil {
			res.Invalid = append(res.Invalid, tok)
			continue
		}
		if seen[s] {
			res.Duplicates = append(res.Duplicates, s.Token())
			continue
		}
		seen[s] = true
		res.Seats = append(res.Seats, s)
	}
	p.Sort(res.Seats)
	return res
}

// Sort orders seats by table position on the plan, then by index.
func (p *Plan) Sort(seats []Seat) {
	sort.Slice(seats, func(i, j int) bool {
		a, b := seats[i], seats[j]
		if a.Table != b.Table {
			return p.rank(a.Table) < p.rank(b.Table)
		}
		return a.Index < b.Index
	})
}

func (p *Plan) rank(table string) int {
	if i, ok := p.order[table]; ok {
		return i
	}
	return len(p.order)
}

// Tokens renders seats in wire form.
func Tokens(seats []Seat) []string {
	out := make([]string, len(seats))
	for i, s := range seats {
		out[i] = s.Token()
	}
	return out
}
