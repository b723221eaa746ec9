package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/bnema/modctl/internal/download"
	"github.com/bnema/modctl/internal/mods"
)

var _ download.Hooks = (*Metrics)(nil)

func TestDownloadCounters(t *testing.T) {
	m := New(mods.NewRegistry())

	m.OnBytes(100)
	m.OnBytes(50)
	m.OnBytes(-1)
	m.OnFinished(1)
	m.OnFailed(2, false)
	m.OnFailed(3, true)
	m.OnFailed(4, true)

	if got := testutil.ToFloat64(m.downloadBytes); got != 150 {
		t.Fatalf("expected 150 bytes, got %v", got)
	}
	if got := testutil.ToFloat64(m.downloads.WithLabelValues(ResultFinished)); got != 1 {
		t.Fatalf("expected 1 finished, got %v", got)
	}
	if got := testutil.ToFloat64(m.downloads.WithLabelValues(ResultError)); got != 1 {
		t.Fatalf("expected 1 error, got %v", got)
	}
	if got := testutil.ToFloat64(m.downloads.WithLabelValues(ResultCancelled)); got != 2 {
		t.Fatalf("expected 2 cancelled, got %v", got)
	}
}

func TestRegistryGauges(t *testing.T) {
	r := mods.NewRegistry()
	m := New(r)

	_ = r.Insert("a", mods.ModInfo{Name: "A", MetadataVersion: mods.Ptr(uint32(1))})
	_ = r.Insert("b", mods.ModInfo{Name: "B", MetadataVersion: mods.Ptr(uint32(1)), ProcessID: mods.Ptr(42)})

	expected := `
# HELP modctl_registry_mods Number of mods in the registry
# TYPE modctl_registry_mods gauge
modctl_registry_mods 2
# HELP modctl_running_mods Number of mods with a running process
# TYPE modctl_running_mods gauge
modctl_running_mods 1
`
	if err := testutil.GatherAndCompare(m.Gatherer(), strings.NewReader(expected), "modctl_registry_mods", "modctl_running_mods"); err != nil {
		t.Fatalf("unexpected gauges: %v", err)
	}
}
