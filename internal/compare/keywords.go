package compare

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Vocabulary holds the curated keyword sets the classifier tests descriptions
// against. Sets are matched as lower-case substrings, in the priority order
// parts, labor, materials, sublet.
type Vocabulary struct {
	PartKeywords     []string `yaml:"part_keywords"`
	LaborKeywords    []string `yaml:"labor_keywords"`
	MaterialKeywords []string `yaml:"material_keywords"`
	SubletKeywords   []string `yaml:"sublet_keywords"`
}

// DefaultVocabulary returns the compiled-in keyword sets.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		PartKeywords: []string{
			"bumper", "fender", "grille", "headlamp", "head lamp", "tail lamp",
			"taillamp", "fog lamp", "hood", "door shell", "mirror", "molding",
			"moulding", "bracket", "absorber", "reinforcement", "radiator",
			"condenser", "quarter panel", "rocker panel", "windshield",
			"glass", "emblem", "nameplate", "sensor", "camera", "splash shield",
			"liner", "support", "tie bar", "strut", "spoiler",
		},
		LaborKeywords: []string{
			"alignment", "aim ", "calibrat", "diagnos", "scan", "measure",
			"road test", "set up", "setup", "adjust", "evacuate", "recharge",
			"detail", "mask ", "pre-repair", "post-repair",
		},
		MaterialKeywords: []string{
			"paint suppl", "paint material", "shop suppl", "clear coat",
			"clearcoat", "primer", "sealant", "seam sealer", "flex additive",
			"color tint", "corrosion protection", "hazardous waste", "tape",
			"covering material",
		},
		SubletKeywords: []string{
			"sublet", "outsourc", "tow ", "towing", "vendor", "outside service",
		},
	}
}

// LoadVocabulary reads keyword overrides from a YAML file. Sets left empty in
// the file keep their defaults, so a file may override just one set.
func LoadVocabulary(path string) (Vocabulary, error) {
	vocab := DefaultVocabulary()

	data, err := os.ReadFile(path)
	if err != nil {
		return vocab, fmt.Errorf("reading vocabulary file: %w", err)
	}

	var overrides Vocabulary
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return vocab, fmt.Errorf("parsing vocabulary file: %w", err)
	}

	if len(overrides.PartKeywords) > 0 {
		vocab.PartKeywords = overrides.PartKeywords
	}
	if len(overrides.LaborKeywords) > 0 {
		vocab.LaborKeywords = overrides.LaborKeywords
	}
	if len(overrides.MaterialKeywords) > 0 {
		vocab.MaterialKeywords = overrides.MaterialKeywords
	}
	if len(overrides.SubletKeywords) > 0 {
		vocab.SubletKeywords = overrides.SubletKeywords
	}
	return vocab, nil
}
