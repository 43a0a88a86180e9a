package filter

// Rule matches one listing field against keyword lists. Excludes win
// over includes; an empty includes list accepts everything the
// excludes let through.
type Rule struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// Rules is the content of a filter rule file.
type Rules struct {
	Filters []Rule `yaml:"filters"`
}
