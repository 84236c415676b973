package observability

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-curator/internal/types"
)

func TestObserveAttempt(t *testing.T) {
	before := testutil.ToFloat64(ProviderAttemptsTotal.WithLabelValues("gemini-flash", "ok"))
	downBefore := testutil.ToFloat64(ProviderAttemptsTotal.WithLabelValues("gemini-flash", string(types.CodeProviderDown)))

	ObserveAttempt("gemini-flash", "", 120*time.Millisecond)
	ObserveAttempt("gemini-flash", types.CodeProviderDown, time.Second)

	assert.Equal(t, before+1, testutil.ToFloat64(ProviderAttemptsTotal.WithLabelValues("gemini-flash", "ok")))
	assert.Equal(t, downBefore+1, testutil.ToFloat64(ProviderAttemptsTotal.WithLabelValues("gemini-flash", string(types.CodeProviderDown))))
}

func TestObserveSelection(t *testing.T) {
	before := testutil.ToFloat64(SelectionsTotal.WithLabelValues(StatusFailed))
	ObserveSelection(StatusFailed)
	assert.Equal(t, before+1, testutil.ToFloat64(SelectionsTotal.WithLabelValues(StatusFailed)))
}

func TestWriteMetricsFile(t *testing.T) {
	ObserveSelection(StatusSuccess)
	path := filepath.Join(t.TempDir(), "curator.prom")

	require.NoError(t, WriteMetricsFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "resume_curator_selections_total")
	assert.Contains(t, string(data), `status="success"`)
}

func TestWriteMetricsFile_BadPath(t *testing.T) {
	err := WriteMetricsFile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"))
	assert.Error(t, err)
}
