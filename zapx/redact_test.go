package zapx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedactingCore_MasksListedKeys(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := zap.New(NewRedactingCore(core))

	l.Info("submitted", zap.String("job_label", "customer-42-secret"), zap.String("other", "visible"))

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "visible", fields["other"])
		assert.NotEqual(t, "customer-42-secret", fields["job_label"])
		assert.Equal(t, mask("customer-42-secret"), fields["job_label"])
	}
}

func TestMask_ShortStringsFullyMasked(t *testing.T) {
	assert.Equal(t, "****", mask("abcd"))
	assert.Equal(t, "****", mask("a"))
}

func TestMask_PreservesEnds(t *testing.T) {
	out := mask("0123456789")
	assert.Equal(t, byte('0'), out[0])
	assert.Equal(t, byte('1'), out[1])
	assert.Equal(t, byte('8'), out[len(out)-2])
	assert.Equal(t, byte('9'), out[len(out)-1])
	for i := 2; i < len(out)-2; i++ {
		assert.Equal(t, byte('*'), out[i])
	}
}

func TestRedactingCore_CheckRespectsLevel(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	l := zap.New(NewRedactingCore(core))

	l.Info("ignored", zap.String("job_label", "x"))
	assert.Len(t, logs.All(), 0)

	l.Error("kept", zap.String("job_label", "x"))
	assert.Len(t, logs.All(), 1)
}
