// Package print is a disk plugin entrypoint that writes its manifest
// metadata when enabled.
package print

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/vk/lamphost/internal/ctxlog"
	"github.com/vk/lamphost/internal/managers/disk"
	"github.com/vk/lamphost/internal/plugin"
)

// Entrypoint is the manifest main value that binds to this package.
const Entrypoint = "print"

// Plugin prints the metadata of its descriptor.
type Plugin struct {
	desc plugin.Descriptor
	outW io.Writer
}

var _ plugin.Plugin = (*Plugin)(nil)

// Factory returns a disk factory whose plugins write to outW. A nil writer
// means os.Stdout.
func Factory(outW io.Writer) disk.Factory {
	if outW == nil {
		outW = os.Stdout
	}
	return func(desc plugin.Descriptor) plugin.Plugin {
		return &Plugin{desc: desc, outW: outW}
	}
}

func (p *Plugin) OnInitialize(context.Context) error { return nil }

// OnEnable writes every metadata entry, sorted by key.
func (p *Plugin) OnEnable(ctx context.Context) error {
	ctxlog.FromContext(ctx).Info("Printing metadata", "plugin", p.desc.Name)

	if len(p.desc.Metadata) == 0 {
		_, err := fmt.Fprintf(p.outW, "%s: (no metadata)\n", p.desc.Name)
		return err
	}

	// Sort keys for consistent output
	keys := make([]string, 0, len(p.desc.Metadata))
	for k := range p.desc.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err := fmt.Fprintf(p.outW, "%s: %s = %q\n", p.desc.Name, k, p.desc.Metadata[k]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Plugin) OnDisable(context.Context) error { return nil }
