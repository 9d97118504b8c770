// Package manifest decodes plugin.hcl files into plugin descriptors.
//
// A manifest file holds one or more plugin blocks:
//
//	plugin "Addon" {
//	  version    = "1.2.0"
//	  main       = "addon"
//	  depend     = ["Core"]
//	  softdepend = ["Motd"]
//	  metadata   = { website = "https://example.org" }
//	}
package manifest

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/lamphost/internal/ctxlog"
	"github.com/vk/lamphost/internal/plugin"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// FileName is the manifest name the disk manager looks for.
const FileName = "plugin.hcl"

// Manifest is one decoded plugin block.
type Manifest struct {
	Descriptor plugin.Descriptor
	// Main names the compiled entrypoint the plugin binds to.
	Main string
	// Filename is the file the block was read from.
	Filename string
}

type fileRoot struct {
	Plugins []*pluginBlock `hcl:"plugin,block"`
	Remain  hcl.Body       `hcl:",remain"`
}

type pluginBlock struct {
	Name        string         `hcl:"name,label"`
	Version     string         `hcl:"version"`
	Main        string         `hcl:"main"`
	Description string         `hcl:"description,optional"`
	Authors     []string       `hcl:"authors,optional"`
	Depend      []string       `hcl:"depend,optional"`
	SoftDepend  []string       `hcl:"softdepend,optional"`
	Metadata    hcl.Expression `hcl:"metadata,optional"`
	DefRange    hcl.Range      `hcl:",def_range"`
}

// Load reads and decodes the manifest at path.
func Load(ctx context.Context, path string) ([]Manifest, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	return Parse(ctx, path, src)
}

// Parse decodes manifest source. filename is used in diagnostics only.
func Parse(ctx context.Context, filename string, src []byte) ([]Manifest, error) {
	logger := ctxlog.FromContext(ctx).With("file", filename)

	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", filename, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", filename, diags)
	}

	out := make([]Manifest, 0, len(root.Plugins))
	seen := make(map[string]hcl.Range, len(root.Plugins))
	for _, block := range root.Plugins {
		key := strings.ToLower(block.Name)
		if prev, ok := seen[key]; ok {
			return nil, fmt.Errorf("%s: plugin %q is already declared at %s", block.DefRange, block.Name, prev)
		}
		seen[key] = block.DefRange

		m, err := translate(block, filename)
		if err != nil {
			return nil, err
		}
		logger.Debug("Decoded plugin manifest.", "plugin", m.Descriptor.Name, "main", m.Main)
		out = append(out, m)
	}
	return out, nil
}

func translate(block *pluginBlock, filename string) (Manifest, error) {
	desc := plugin.Descriptor{
		Name:        strings.TrimSpace(block.Name),
		Version:     block.Version,
		Description: block.Description,
		Authors:     block.Authors,
		Depend:      block.Depend,
		SoftDepend:  block.SoftDepend,
	}
	if err := desc.Validate(); err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", block.DefRange, err)
	}
	if strings.TrimSpace(block.Main) == "" {
		return Manifest{}, fmt.Errorf("%s: plugin %q must set main", block.DefRange, desc.Name)
	}

	meta, err := decodeMetadata(block.Metadata)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: plugin %q: %w", block.DefRange, desc.Name, err)
	}
	desc.Metadata = meta

	return Manifest{Descriptor: desc, Main: block.Main, Filename: filename}, nil
}

// decodeMetadata evaluates a metadata expression into a flat string map.
// An absent attribute yields a nil map.
func decodeMetadata(expr hcl.Expression) (map[string]string, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to evaluate metadata: %w", diags)
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("metadata must be a constant value")
	}

	conv, err := convert.Convert(val, cty.Map(cty.String))
	if err != nil {
		return nil, fmt.Errorf("metadata must be a map of strings: %w", err)
	}

	var out map[string]string
	if err := gocty.FromCtyValue(conv, &out); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	return out, nil
}
