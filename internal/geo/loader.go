package geo

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// tableFile is the on-disk shape of a region override file:
//
//	regions:
//	  - code: PA
//	    name: Paris
//	    lat: 48.8566
//	    lng: 2.3522
//	    radius_m: 60000
//	    country: fr
//	    locale: fr
type tableFile struct {
	Regions []RegionProfile `yaml:"regions"`
}

// LoadTable reads region profiles from a YAML file and layers them over base.
// An empty path returns base unchanged.
func LoadTable(path string, base *Table) (*Table, error) {
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: read region table %s", path)
	}
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "geo: parse region table")
	}
	for i := range f.Regions {
		f.Regions[i].Locale = ParseLocale(string(f.Regions[i].Locale))
	}
	if base == nil {
		return NewTable(f.Regions), nil
	}
	return base.Merge(f.Regions), nil
}
