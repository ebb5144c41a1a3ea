// Package scaffold materializes slash-command templates into the
// assistant's commands directory.
package scaffold

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// frontMatter is the YAML header written before each command body.
type frontMatter struct {
	Description string `yaml:"description"`
}

// Materialize writes each template to targetDir as <name>.md with a
// front-matter header followed by the body. The directory (and any
// parents) is created if absent. Pre-existing files with the same name
// are silently overwritten: scaffolded commands carry no user state
// and are always regenerable.
func Materialize(targetDir string, templates []Template) error {
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("create commands directory: %w", err)
	}

	for _, tmpl := range templates {
		content, err := Render(tmpl)
		if err != nil {
			return err
		}
		path := filepath.Join(targetDir, tmpl.Name+".md")
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return fmt.Errorf("write command %q: %w", tmpl.Name, err)
		}
	}
	return nil
}

// Render produces the file content for a single template.
func Render(tmpl Template) ([]byte, error) {
	header, err := yaml.Marshal(frontMatter{Description: tmpl.Description})
	if err != nil {
		return nil, fmt.Errorf("marshal front matter for %q: %w", tmpl.Name, err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n\n")
	buf.WriteString(tmpl.Body)
	return buf.Bytes(), nil
}
