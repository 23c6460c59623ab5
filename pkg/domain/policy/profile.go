package policy

import (
	"fmt"
	"strings"
)

// ProfileName identifies a preset selection of categories.
type ProfileName string

const (
	ProfileStrict   ProfileName = "strict"
	ProfileBalanced ProfileName = "balanced"
	ProfileMinimal  ProfileName = "minimal"
	// ProfileCustom is reported for selections that match no preset.
	ProfileCustom ProfileName = "custom"
)

// Profile is a named preset of enabled categories.
type Profile struct {
	Name        ProfileName
	Title       string
	Description string
	Categories  []CategoryID
}

var profiles = []Profile{
	{
		Name:        ProfileStrict,
		Title:       "Strict",
		Description: "Maximum privacy - all protections enabled",
		Categories: []CategoryID{
			CategoryAI, CategoryPrivacy, CategoryTelemetry, CategorySecurity,
			CategoryAutofill, CategorySync, CategoryPermissions, CategoryBrave,
		},
	},
	{
		Name:        ProfileBalanced,
		Title:       "Balanced",
		Description: "Good privacy with some convenience",
		Categories: []CategoryID{
			CategoryAI, CategoryPrivacy, CategoryTelemetry, CategorySecurity,
			CategorySync, CategoryBrave,
		},
	},
	{
		Name:        ProfileMinimal,
		Title:       "Minimal",
		Description: "Basic privacy - only essentials",
		Categories:  []CategoryID{CategoryAI, CategoryTelemetry, CategoryBrave},
	},
}

// Profiles returns the presets in display order.
func Profiles() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}

// LookupProfile resolves a profile by name, case-insensitively.
func LookupProfile(name string) (Profile, error) {
	want := ProfileName(strings.ToLower(strings.TrimSpace(name)))
	for _, p := range profiles {
		if p.Name == want {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
}

// Selection is an immutable snapshot of which categories are enabled.
// Every modifier returns a new Selection and leaves the receiver untouched.
type Selection struct {
	// bit i is set when categories[i] is enabled
	mask uint32
}

// NewSelection enables exactly the given categories.
func NewSelection(ids ...CategoryID) (Selection, error) {
	var sel Selection
	for _, id := range ids {
		idx := categoryIndex(id)
		if idx < 0 {
			return Selection{}, fmt.Errorf("%w: %q", ErrUnknownCategory, id)
		}
		sel.mask |= 1 << idx
	}
	return sel, nil
}

// SelectionFor returns the selection of a preset.
func SelectionFor(p Profile) Selection {
	sel, err := NewSelection(p.Categories...)
	if err != nil {
		// profiles only reference declared categories
		panic(err)
	}
	return sel
}

// ParseCategories parses a comma separated category list such as "ai,sync".
func ParseCategories(list string) (Selection, error) {
	var ids []CategoryID
	for _, part := range strings.Split(list, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		ids = append(ids, CategoryID(part))
	}
	return NewSelection(ids...)
}

func (s Selection) Enabled(id CategoryID) bool {
	idx := categoryIndex(id)
	return idx >= 0 && s.mask&(1<<idx) != 0
}

// IDs lists the enabled categories in merge order.
func (s Selection) IDs() []CategoryID {
	var ids []CategoryID
	for i, c := range categories {
		if s.mask&(1<<i) != 0 {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

func (s Selection) Len() int {
	return len(s.IDs())
}

// Toggle flips one category. Unknown IDs leave the selection unchanged.
func (s Selection) Toggle(id CategoryID) Selection {
	idx := categoryIndex(id)
	if idx < 0 {
		return s
	}
	return Selection{mask: s.mask ^ (1 << idx)}
}

// ToggleAll disables everything when any category is enabled, otherwise
// enables everything.
func (s Selection) ToggleAll() Selection {
	if s.mask != 0 {
		return Selection{}
	}
	return Selection{mask: 1<<len(categories) - 1}
}

// Profile names the preset this selection matches, or ProfileCustom.
func (s Selection) Profile() ProfileName {
	for _, p := range profiles {
		if SelectionFor(p) == s {
			return p.Name
		}
	}
	return ProfileCustom
}

// PolicyCount is the number of category policies the selection contributes,
// counted per category as the menu displays them.
func (s Selection) PolicyCount() int {
	n := 0
	for i, c := range categories {
		if s.mask&(1<<i) != 0 {
			n += len(c.Policies)
		}
	}
	return n
}
