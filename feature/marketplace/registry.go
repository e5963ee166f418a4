package marketplace

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Registry maps HIT nicknames to HIT IDs.
type Registry struct {
	hits map[string]string
}

type registryFile struct {
	Hits map[string]string `yaml:"hits"`
}

// LoadRegistry reads a nickname registry from a YAML file.
// An empty path yields an empty registry.
func LoadRegistry(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return &Registry{hits: map[string]string{}}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "marketplace: read nicknames %s", path)
	}
	return ParseRegistry(data)
}

// ParseRegistry decodes registry YAML.
func ParseRegistry(data []byte) (*Registry, error) {
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "marketplace: parse nicknames")
	}

	hits := make(map[string]string, len(f.Hits))
	for nick, id := range f.Hits {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, eris.Errorf("marketplace: nickname %q has no HIT ID", nick)
		}
		hits[nick] = id
	}
	return &Registry{hits: hits}, nil
}

// Lookup returns the HIT ID registered under nickname.
func (r *Registry) Lookup(nickname string) (string, bool) {
	if r == nil {
		return "", false
	}
	id, ok := r.hits[nickname]
	return id, ok
}

// Len returns the number of registered nicknames.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.hits)
}
