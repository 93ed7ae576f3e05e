package core

import (
	"fmt"
	"slices"
	"sort"
	"sync"
)

// ProfileAuto selects the first registered profile whose required columns
// all appear in the file header.
const ProfileAuto = "auto"

// Profile maps the column names of one input convention onto canonical fields.
type Profile struct {
	Key     string           // Unique identifier: "standard"
	Label   string           // Display name
	Order   int              // Detection order for ProfileAuto, lowest first
	Columns map[string]Field // Source header -> canonical field (exact match)
}

// Header returns the profile's column names in canonical field order.
func (p Profile) Header() []string {
	order := []Field{FieldTitle, FieldReleaseYear, FieldGenre, FieldRating, FieldDirector, FieldActors}
	byField := make(map[Field]string, len(p.Columns))
	for col, f := range p.Columns {
		byField[f] = col
	}
	header := make([]string, 0, len(order))
	for _, f := range order {
		if col, ok := byField[f]; ok {
			header = append(header, col)
		}
	}
	return header
}

// RequiredFields are the fields every row must carry a column for. Rating
// and actors may be left out of a file entirely.
var RequiredFields = []Field{FieldTitle, FieldReleaseYear, FieldGenre, FieldDirector}

// Matches reports whether header has the profile's column for every
// required field.
func (p Profile) Matches(header []string) bool {
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		seen[h] = true
	}

	found := 0
	for col, f := range p.Columns {
		if !slices.Contains(RequiredFields, f) {
			continue
		}
		if !seen[col] {
			return false
		}
		found++
	}
	return found == len(RequiredFields)
}

// Adapt converts a source record into a canonical Row. Columns the
// profile does not know are dropped.
func (p Profile) Adapt(line int, fields map[string]string) Row {
	row := Row{Line: line, Values: make(map[Field]string, len(p.Columns))}
	for col, f := range p.Columns {
		if v, ok := fields[col]; ok {
			row.Values[f] = v
		}
	}
	return row
}

var (
	registry   = make(map[string]Profile)
	registryMu sync.RWMutex
)

// Register adds a profile to the registry.
// Panics if a profile with the same key is already registered.
func Register(p Profile) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if p.Key == ProfileAuto {
		panic("profile key is reserved: " + ProfileAuto)
	}
	if _, exists := registry[p.Key]; exists {
		panic(fmt.Sprintf("profile already registered: %s", p.Key))
	}

	registry[p.Key] = p
}

// Get returns a profile by key.
// Returns false if not found.
func Get(key string) (Profile, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	p, ok := registry[key]
	return p, ok
}

// All returns all registered profiles in detection order.
func All() []Profile {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Profile, 0, len(registry))
	for _, p := range registry {
		result = append(result, p)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Order != result[j].Order {
			return result[i].Order < result[j].Order
		}
		return result[i].Key < result[j].Key
	})

	return result
}

// Resolve picks the profile for a load. key may be ProfileAuto, in which
// case header decides through Matches; with no match the first registered
// profile is used so the missing columns surface as row errors.
func Resolve(key string, header []string) (Profile, error) {
	if key != ProfileAuto && key != "" {
		p, ok := Get(key)
		if !ok {
			return Profile{}, fmt.Errorf("%w: %s", ErrUnknownProfile, key)
		}
		return p, nil
	}

	all := All()
	if len(all) == 0 {
		return Profile{}, fmt.Errorf("%w: none registered", ErrUnknownProfile)
	}
	for _, p := range all {
		if p.Matches(header) {
			return p, nil
		}
	}
	return all[0], nil
}

// ProfileCount returns the number of registered profiles.
func ProfileCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}
