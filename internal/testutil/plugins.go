package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/lamphost/internal/plugin"
)

// Journal records lifecycle callbacks across many fake plugins, in call order.
type Journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *Journal) add(entry string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
}

// Entries returns the recorded callbacks as "event:Name" strings.
func (j *Journal) Entries() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, len(j.entries))
	copy(out, j.entries)
	return out
}

// Count returns how often entry was recorded.
func (j *Journal) Count(entry string) int {
	n := 0
	for _, e := range j.Entries() {
		if e == entry {
			n++
		}
	}
	return n
}

// FakePlugin records its callbacks into a Journal. Setting one of the Fail
// fields makes the matching callback return an error; PanicOn makes it panic.
type FakePlugin struct {
	Name    string
	Journal *Journal

	FailInit    bool
	FailEnable  bool
	FailDisable bool
	PanicOn     string

	// OnDisableHook runs inside OnDisable, before it returns.
	OnDisableHook func()
}

var _ plugin.Plugin = (*FakePlugin)(nil)

func (p *FakePlugin) record(event string, fail bool) error {
	if p.Journal != nil {
		p.Journal.add(event + ":" + p.Name)
	}
	if p.PanicOn == event {
		panic(fmt.Sprintf("%s exploded during %s", p.Name, event))
	}
	if fail {
		return fmt.Errorf("%s refused to %s", p.Name, event)
	}
	return nil
}

func (p *FakePlugin) OnInitialize(context.Context) error {
	return p.record("init", p.FailInit)
}

func (p *FakePlugin) OnEnable(context.Context) error {
	return p.record("enable", p.FailEnable)
}

func (p *FakePlugin) OnDisable(context.Context) error {
	if p.OnDisableHook != nil {
		p.OnDisableHook()
	}
	return p.record("disable", p.FailDisable)
}
