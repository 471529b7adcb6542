package categories

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
)

//go:embed default_categories.yaml
var defaultSeed []byte

type seedFile struct {
	Categories []models.Category `yaml:"categories"`
}

// DefaultSeed returns the built-in categories used to populate an empty store.
func DefaultSeed() []models.Category {
	cats, err := parseSeed(defaultSeed)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in category seed: %v", err))
	}
	return cats
}

// FindConfigFile looks for filename in the working directory, ./config and
// the user's ~/.config/wealthwise directory.
func FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".config", "wealthwise", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// LoadSeed reads categories from a YAML file. Both a top-level "categories"
// key and a bare list are accepted. An empty filename yields the built-in
// seed; a missing file is an error.
func LoadSeed(filename string) ([]models.Category, error) {
	if filename == "" {
		return DefaultSeed(), nil
	}

	path, err := FindConfigFile(filename)
	if err != nil {
		return nil, fmt.Errorf("category seed %s: %w", filename, err)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("error reading category seed: %w", err)
	}
	return parseSeed(data)
}

func parseSeed(data []byte) ([]models.Category, error) {
	var wrapped seedFile
	if err := yaml.Unmarshal(data, &wrapped); err == nil && len(wrapped.Categories) > 0 {
		return validateSeed(wrapped.Categories)
	}

	var list []models.Category
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("error parsing category seed: %w", err)
	}
	return validateSeed(list)
}

func validateSeed(cats []models.Category) ([]models.Category, error) {
	for i, c := range cats {
		if c.Name == "" {
			return nil, fmt.Errorf("category %d has no name", i)
		}
		if !c.Type.Valid() {
			return nil, fmt.Errorf("category %s has invalid type %q", c.Name, c.Type)
		}
		if c.ID == "" {
			cats[i].ID = Slug(c.Name)
		}
		if cats[i].Subcategories == nil {
			cats[i].Subcategories = []string{}
		}
	}
	return cats, nil
}
