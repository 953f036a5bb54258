// Package category defines the fixed perspective categories that all
// activity is classified under. The set is closed: categories are defined at
// compile time and never created or destroyed at runtime.
package category

// Category identifies one of the four perspective categories.
type Category string

const (
	Builder      Category = "builder"
	Contributor  Category = "contributor"
	Integrator   Category = "integrator"
	Experimenter Category = "experimenter"
)

// All returns the categories in canonical display order. Callers must not
// mutate the returned slice.
func All() []Category {
	return ordered
}

var ordered = []Category{Builder, Contributor, Integrator, Experimenter}

// Count is the number of perspective categories.
const Count = 4

// Info holds display metadata for a category.
type Info struct {
	ID       Category `json:"id"`
	Label    string   `json:"label"`
	Icon     string   `json:"icon"`
	Color    string   `json:"color"`
	Examples []string `json:"examples"`
}

var registry = map[Category]Info{
	Builder: {
		ID:    Builder,
		Label: "Builder",
		Icon:  "hammer",
		Color: "#E8590C",
		Examples: []string{
			"ship a feature on a side project",
			"write a blog post or essay",
			"prototype something new",
		},
	},
	Contributor: {
		ID:    Contributor,
		Label: "Contributor",
		Icon:  "users",
		Color: "#1971C2",
		Examples: []string{
			"review a pull request for someone else",
			"mentor or pair with a colleague",
			"answer questions in a community",
		},
	},
	Integrator: {
		ID:    Integrator,
		Label: "Integrator",
		Icon:  "layers",
		Color: "#2F9E44",
		Examples: []string{
			"plan the upcoming week",
			"clear an admin backlog",
			"tend to health or household routines",
		},
	},
	Experimenter: {
		ID:    Experimenter,
		Label: "Experimenter",
		Icon:  "flask",
		Color: "#9C36B5",
		Examples: []string{
			"try an unfamiliar tool or language",
			"read up on a new domain",
			"run a small experiment with no goal attached",
		},
	},
}

// Lookup returns display metadata for a category. The second return value is
// false for unknown ids.
func Lookup(c Category) (Info, bool) {
	info, ok := registry[c]
	return info, ok
}

// Valid reports whether c is one of the known categories.
func Valid(c Category) bool {
	_, ok := registry[c]
	return ok
}

// complementary maps each category to the two categories a user should shift
// time toward when this one dominates. The pairing is a fixed editorial
// choice, not computed from the data.
var complementary = map[Category][2]Category{
	Builder:      {Contributor, Experimenter},
	Contributor:  {Builder, Integrator},
	Integrator:   {Experimenter, Builder},
	Experimenter: {Integrator, Contributor},
}

// Complementary returns the two rebalance targets for an overconcentrated
// category.
func Complementary(c Category) [2]Category {
	return complementary[c]
}

// legacyTypes maps the pre-category project "type" field to a category. Used
// only by the one-time backfill of records created before categories existed.
var legacyTypes = map[string]Category{
	"development": Builder,
	"design":      Builder,
	"writing":     Builder,
	"community":   Contributor,
	"mentoring":   Contributor,
	"opensource":  Contributor,
	"volunteer":   Contributor,
	"operations":  Integrator,
	"planning":    Integrator,
	"admin":       Integrator,
	"health":      Integrator,
	"research":    Experimenter,
	"learning":    Experimenter,
	"hobby":       Experimenter,
}

// FromLegacyType resolves a legacy project type to a category. The second
// return value is false when the type has no mapping; such projects are left
// untouched by the backfill.
func FromLegacyType(legacyType string) (Category, bool) {
	c, ok := legacyTypes[legacyType]
	return c, ok
}
