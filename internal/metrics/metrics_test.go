package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStatus(t *testing.T) {
	if Status(nil) != "ok" {
		t.Errorf("Status(nil) = %v, want ok", Status(nil))
	}
	if Status(errors.New("x")) != "error" {
		t.Errorf("Status(err) = %v, want error", Status(errors.New("x")))
	}
}

func TestRecordSync(t *testing.T) {
	beforeUp := testutil.ToFloat64(SyncedLinksTotal.WithLabelValues("up"))
	beforeErr := testutil.ToFloat64(SyncRunsTotal.WithLabelValues("error"))

	RecordSync(3, 1, time.Millisecond, nil)
	RecordSync(5, 5, time.Millisecond, errors.New("denied"))

	if got := testutil.ToFloat64(SyncedLinksTotal.WithLabelValues("up")) - beforeUp; got != 3 {
		t.Errorf("up links recorded = %v, want 3", got)
	}
	if got := testutil.ToFloat64(SyncRunsTotal.WithLabelValues("error")) - beforeErr; got != 1 {
		t.Errorf("failed runs recorded = %v, want 1", got)
	}
}

func TestRecordImport(t *testing.T) {
	before := testutil.ToFloat64(ImportedLinksTotal.WithLabelValues("skipped"))
	RecordImport(1, 2)
	if got := testutil.ToFloat64(ImportedLinksTotal.WithLabelValues("skipped")) - before; got != 2 {
		t.Errorf("skipped recorded = %v, want 2", got)
	}
}
