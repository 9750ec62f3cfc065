package roster

import (
	"strings"
)

// Size is the fixed number of slots in a roster.
const Size = 6

type Entry struct {
	Name     string
	Nickname *string // nil when the line had no ':'
}

// Vacant reports whether the slot is padding.
func (e Entry) Vacant() bool { return e.Name == "" }

// Roster is always exactly Size entries; the array type enforces it.
type Roster [Size]Entry

// Set maps a team identifier (file name without extension) to its roster.
type Set map[string]Roster

// Parse turns the text of a team file into a Roster. It never fails: lines
// with an empty name are skipped, anything past the sixth entry is dropped
// and missing slots are left vacant.
func Parse(text string) Roster {
	var r Roster
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if n == Size {
			break
		}
		e, ok := parseLine(line)
		if !ok {
			continue
		}
		r[n] = e
		n++
	}
	return r
}

func parseLine(line string) (Entry, bool) {
	parts := strings.Split(strings.TrimSpace(line), ":")
	name := parts[0]
	if strings.TrimSpace(name) == "" {
		return Entry{}, false
	}

	e := Entry{Name: name}
	if len(parts) > 1 {
		// a nickname may itself contain ':'; the pieces are rejoined with spaces
		nick := strings.Join(parts[1:], " ")
		e.Nickname = &nick
	}
	return e, true
}

// Format writes r back out in team file syntax. Vacant slots are omitted.
func Format(r Roster) string {
	var b strings.Builder
	for _, e := range r {
		if e.Vacant() {
			continue
		}
		b.WriteString(e.Name)
		if e.Nickname != nil {
			b.WriteByte(':')
			b.WriteString(*e.Nickname)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
