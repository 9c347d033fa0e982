// SPDX-License-Identifier: MPL-2.0

package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_Observe(t *testing.T) {
	t.Parallel()

	r := New()
	r.Observe("configure", 20*time.Millisecond, nil)
	r.Observe("configure", 10*time.Millisecond, nil)
	r.Observe("build", time.Second, errors.New("boom"))

	if got := testutil.ToFloat64(r.stepsTotal.WithLabelValues("configure", OutcomeOK)); got != 2 {
		t.Errorf("configure ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.stepsTotal.WithLabelValues("build", OutcomeError)); got != 1 {
		t.Errorf("build error = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(r.stepDurationSeconds); got != 2 {
		t.Errorf("duration series = %d, want 2", got)
	}
}

func TestRecorder_Time(t *testing.T) {
	t.Parallel()

	r := New()
	want := errors.New("install failed")
	if err := r.Time("install", func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("Time() error = %v, want %v", err, want)
	}
	if got := testutil.ToFloat64(r.stepsTotal.WithLabelValues("install", OutcomeError)); got != 1 {
		t.Errorf("install error = %v, want 1", got)
	}
}

func TestRecorder_SetVersionReplacesPrevious(t *testing.T) {
	t.Parallel()

	r := New()
	r.SetVersion("0.0.0", "no-tags")
	r.SetVersion("1.2.4-4", "none")

	if got := testutil.CollectAndCount(r.versionInfo); got != 1 {
		t.Errorf("version_info series = %d, want 1", got)
	}
	if got := testutil.ToFloat64(r.versionInfo.WithLabelValues("1.2.4-4", "none")); got != 1 {
		t.Errorf("version_info = %v, want 1", got)
	}
}

func TestRecorder_WriteTextfile(t *testing.T) {
	t.Parallel()

	r := New()
	r.SetRequirements(3)
	r.Observe("configure", time.Millisecond, nil)

	path := filepath.Join(t.TempDir(), "lbrecipe.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	out := string(data)
	for _, want := range []string{
		"lbrecipe_requirements 3",
		`lbrecipe_steps_total{outcome="ok",step="configure"} 1`,
		"# TYPE lbrecipe_step_duration_seconds histogram",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %q:\n%s", want, out)
		}
	}
}

func TestRecorder_WriteTextfileBadPath(t *testing.T) {
	t.Parallel()

	if err := New().WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")); err == nil {
		t.Error("WriteTextfile() should fail when the directory does not exist")
	}
}
