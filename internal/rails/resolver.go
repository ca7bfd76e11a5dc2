package rails

import (
	"os"
	"path/filepath"
)

// Components are the conventional artifacts related to one model. Empty
// fields mean the artifact does not exist on disk. Resolution is purely by
// filesystem naming convention; file contents are never parsed.
type Components struct {
	Model      string            `json:"model,omitempty"`
	Controller string            `json:"controller,omitempty"`
	Views      []string          `json:"views,omitempty"`
	Specs      map[string]string `json:"specs,omitempty"` // model/controller/request
	Migration  string            `json:"migration,omitempty"`
	Factory    string            `json:"factory,omitempty"`
	Serializer string            `json:"serializer,omitempty"`
}

// Resolver locates convention-named files under an application root.
type Resolver struct {
	rootDir string
}

// NewResolver creates a resolver for the given application root.
func NewResolver(rootDir string) *Resolver {
	return &Resolver{rootDir: rootDir}
}

// Components resolves the conventional paths for a model name.
func (r *Resolver) Components(model string) *Components {
	snake := CamelToSnake(model)
	plural := Pluralize(snake)

	c := &Components{Specs: map[string]string{}}

	c.Model = r.existing(filepath.Join("app", "models", snake+".rb"))
	c.Controller = r.existing(filepath.Join("app", "controllers", plural+"_controller.rb"))
	c.Serializer = r.existing(filepath.Join("app", "serializers", snake+"_serializer.rb"))
	c.Factory = r.existing(filepath.Join("spec", "factories", plural+".rb"))

	if p := r.existing(filepath.Join("spec", "models", snake+"_spec.rb")); p != "" {
		c.Specs["model"] = p
	}
	if p := r.existing(filepath.Join("spec", "controllers", plural+"_controller_spec.rb")); p != "" {
		c.Specs["controller"] = p
	}
	if p := r.existing(filepath.Join("spec", "requests", plural+"_spec.rb")); p != "" {
		c.Specs["request"] = p
	}

	viewsDir := filepath.Join(r.rootDir, "app", "views", plural)
	if entries, err := os.ReadDir(viewsDir); err == nil {
		for _, e := range entries {
			if !e.IsDir() {
				c.Views = append(c.Views, filepath.Join("app", "views", plural, e.Name()))
			}
		}
	}

	// Migration files are timestamp-prefixed; match by suffix.
	pattern := filepath.Join(r.rootDir, "db", "migrate", "*_create_"+plural+".rb")
	if matches, err := filepath.Glob(pattern); err == nil && len(matches) > 0 {
		if rel, err := filepath.Rel(r.rootDir, matches[0]); err == nil {
			c.Migration = rel
		}
	}

	return c
}

// existing returns the relative path if it exists on disk, else "".
func (r *Resolver) existing(rel string) string {
	if _, err := os.Stat(filepath.Join(r.rootDir, rel)); err != nil {
		return ""
	}
	return rel
}
