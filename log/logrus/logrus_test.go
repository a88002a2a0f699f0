package logrus

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/regioncache"
)

func TestLevelsAndFields(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	l := New(base)

	l.Debug("d", nil)
	l.Info("cache set 2 keys in 1 ms", regioncache.Fields{"region": "users", "keys": 2})
	l.Warn("w", nil)
	l.Error("cache set failed", regioncache.Fields{"err": errors.New("boom")})

	entries := hook.AllEntries()
	require.Len(t, entries, 4)
	assert.Equal(t, logrus.DebugLevel, entries[0].Level)
	assert.Equal(t, "regioncache", entries[0].Data["component"])

	assert.Equal(t, logrus.InfoLevel, entries[1].Level)
	assert.Equal(t, "users", entries[1].Data["region"])
	assert.Equal(t, 2, entries[1].Data["keys"])

	assert.Equal(t, logrus.WarnLevel, entries[2].Level)
	assert.Equal(t, logrus.ErrorLevel, entries[3].Level)
	assert.EqualError(t, entries[3].Data[logrus.ErrorKey].(error), "boom")
}
