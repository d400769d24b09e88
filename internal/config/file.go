package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/previewgo/internal/ctyconv"
	"github.com/specialistvlad/previewgo/internal/story"
	"github.com/zclconf/go-cty/cty"
)

// fileConfig is the shape of previewgo.hcl.
type fileConfig struct {
	Stories      string        `hcl:"stories,optional"`
	Suffix       string        `hcl:"suffix,optional"`
	Listen       string        `hcl:"listen,optional"`
	Framework    string        `hcl:"framework,optional"`
	InitialStory string        `hcl:"initial_story,optional"`
	Watch        *bool         `hcl:"watch,optional"`
	Hot          *bool         `hcl:"hot,optional"`
	Debounce     string        `hcl:"debounce,optional"`
	Parameters   cty.Value     `hcl:"parameters,optional"`
	Log          *fileLog      `hcl:"log,block"`
	Features     *fileFeatures `hcl:"features,block"`
}

type fileLog struct {
	Format string `hcl:"format,optional"`
	Level  string `hcl:"level,optional"`
}

type fileFeatures struct {
	StoryStoreV7 *bool `hcl:"story_store_v7,optional"`
}

// LoadFile applies the project file at path on top of cfg. A relative
// stories path is resolved against the file's directory. When optional is
// set, a missing file is not an error.
func LoadFile(path string, cfg *Config, optional bool) error {
	src, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}
	var fc fileConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &fc); diags.HasErrors() {
		return fmt.Errorf("failed to decode config file %s: %w", path, diags)
	}

	if fc.Stories != "" {
		cfg.StoriesPath = fc.Stories
		if !filepath.IsAbs(fc.Stories) {
			cfg.StoriesPath = filepath.Join(filepath.Dir(path), fc.Stories)
		}
	}
	setString(&cfg.Suffix, fc.Suffix)
	setString(&cfg.Listen, fc.Listen)
	setString(&cfg.Framework, fc.Framework)
	setString(&cfg.InitialStory, fc.InitialStory)
	if fc.Watch != nil {
		cfg.Watch = *fc.Watch
	}
	if fc.Hot != nil {
		cfg.Hot = *fc.Hot
	}
	if fc.Debounce != "" {
		d, err := time.ParseDuration(fc.Debounce)
		if err != nil {
			return fmt.Errorf("config file %s: invalid debounce: %w", path, err)
		}
		cfg.Debounce = d
	}
	if fc.Log != nil {
		setString(&cfg.LogFormat, fc.Log.Format)
		setString(&cfg.LogLevel, fc.Log.Level)
	}
	if fc.Features != nil && fc.Features.StoryStoreV7 != nil {
		cfg.StoryStoreV7 = *fc.Features.StoryStoreV7
	}

	params, err := ctyconv.ObjectToMap(fc.Parameters)
	if err != nil {
		return fmt.Errorf("config file %s: parameters: %w", path, err)
	}
	if params != nil {
		cfg.Parameters = story.MergeParameters(cfg.Parameters, params)
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
