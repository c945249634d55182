package augment

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/augment/pkg/errors"
)

// Recipe is a named, ordered list of steps.
type Recipe struct {
	Name  string `json:"name,omitempty" toml:"name" bson:"name,omitempty"`
	Steps []Step `json:"steps" toml:"steps" bson:"steps"`
}

// NewRecipe builds a recipe from already constructed operations.
func NewRecipe(name string, ops ...Op) Recipe {
	r := Recipe{Name: name, Steps: make([]Step, len(ops))}
	for i, op := range ops {
		r.Steps[i] = StepOf(op)
	}
	return r
}

// ParseRecipe decodes a TOML recipe. Unknown keys are rejected so that a
// misspelled parameter does not silently fall back to its default.
func ParseRecipe(data []byte) (Recipe, error) {
	var r Recipe
	md, err := toml.Decode(string(data), &r)
	if err != nil {
		return Recipe{}, errors.Wrap(errors.ErrCodeInvalidRecipe, err, "parse recipe")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Recipe{}, errors.New(errors.ErrCodeInvalidRecipe, "unknown recipe key %q", undecoded[0].String())
	}
	if _, err := r.Ops(); err != nil {
		return Recipe{}, err
	}
	return r, nil
}

// LoadRecipe reads and parses the TOML recipe at path.
func LoadRecipe(path string) (Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Recipe{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "recipe not found: %s", path)
		}
		return Recipe{}, fmt.Errorf("read recipe: %w", err)
	}
	r, err := ParseRecipe(data)
	if err != nil {
		return Recipe{}, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Ops builds every step in order.
func (r Recipe) Ops() ([]Op, error) {
	if len(r.Steps) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidRecipe, "recipe has no steps")
	}
	ops := make([]Op, len(r.Steps))
	for i, s := range r.Steps {
		op, err := s.Build()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		ops[i] = op
	}
	return ops, nil
}

// Hash identifies the operations of the recipe, ignoring its name and any
// difference between implicit and explicit defaults.
func (r Recipe) Hash() (string, error) {
	ops, err := r.Ops()
	if err != nil {
		return "", err
	}
	steps := make([]Step, len(ops))
	for i, op := range ops {
		steps[i] = StepOf(op)
	}
	data, err := json.Marshal(steps)
	if err != nil {
		return "", fmt.Errorf("encode recipe: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// TOML encodes the recipe in the format [ParseRecipe] reads.
func (r Recipe) TOML() ([]byte, error) {
	data, err := toml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode recipe: %w", err)
	}
	return data, nil
}
