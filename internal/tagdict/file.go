package tagdict

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type tagsFile struct {
	Tags []string `yaml:"tags"`
}

// LoadFile reads a YAML tags file and replaces the dictionary's entries.
// The file holds a single `tags:` sequence of strings.
func (d *Dictionary) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("tagdict: read %s: %w", path, err)
	}

	var tf tagsFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return fmt.Errorf("tagdict: parse %s: %w", path, err)
	}
	if len(tf.Tags) == 0 {
		return fmt.Errorf("tagdict: %s contains no tags", path)
	}

	d.Replace(tf.Tags)
	return nil
}
