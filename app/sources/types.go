package sources

// Source is a single feed source from the registry.
type Source struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Registry is the persisted form of the source list.
type Registry struct {
	Sources []Source `yaml:"sources"`
}
