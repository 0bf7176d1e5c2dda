package prometheus

import (
	"errors"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prom.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestCollector(t *testing.T) {
	reg := prom.NewRegistry()
	c, err := New(reg)
	require.NoError(t, err)

	c.RecordWrite(10, nil)
	c.RecordWrite(5, nil)
	c.RecordWrite(0, errors.New("disk full"))
	c.RecordRotation("size", 15, time.Second)
	c.RecordRotation("time", 0, time.Minute)
	c.RecordUpload(15, 20*time.Millisecond, false, nil)
	c.RecordUpload(0, 0, true, nil)
	c.RecordUpload(3, time.Millisecond, false, errors.New("denied"))
	c.RecordRecovery(4, nil)

	assert.Equal(t, 2.0, counterValue(t, c.writes))
	assert.Equal(t, 15.0, counterValue(t, c.writeBytes))
	assert.Equal(t, 1.0, counterValue(t, c.writeErrors))
	assert.Equal(t, 1.0, counterValue(t, c.rotations.WithLabelValues("size")))
	assert.Equal(t, 1.0, counterValue(t, c.rotations.WithLabelValues("time")))
	assert.Equal(t, 1.0, counterValue(t, c.uploads.WithLabelValues("ok")))
	assert.Equal(t, 1.0, counterValue(t, c.uploads.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, counterValue(t, c.uploads.WithLabelValues("error")))
	assert.Equal(t, 15.0, counterValue(t, c.uploadBytes))
	assert.Equal(t, 4.0, counterValue(t, c.recoveredFiles))
	assert.Equal(t, 0.0, counterValue(t, c.recoveryErrors))
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prom.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}
