package permissions

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

// ruleFile is the shape of a table file: a top-level "grant" list.
type ruleFile struct {
	Grant []Rule `json:"grant" yaml:"grant" toml:"grant"`
}

// Load reads a permission table file and compiles it. The format follows
// the file extension: .yaml/.yml, .toml, or .json. logger may be nil.
func Load(path string, logger *zap.Logger) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read permission table: %w", err)
	}

	var file ruleFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	case ".toml":
		err = toml.Unmarshal(data, &file)
	case ".json":
		err = sonic.Unmarshal(data, &file)
	default:
		return nil, fmt.Errorf("unsupported permission table format: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse permission table: %w", err)
	}

	return NewTable(file.Grant, logger), nil
}
