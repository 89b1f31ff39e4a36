package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinMigrationsAreOrdered(t *testing.T) {
	m := NewMigrator(nil)
	ordered := m.Ordered()

	require.NotEmpty(t, ordered)
	for i, mig := range ordered {
		assert.Equal(t, i+1, mig.ID)
		assert.Len(t, mig.Checksum, 64)
		assert.NotEmpty(t, mig.SQL)
	}
	assert.Equal(t, "create_signals", ordered[0].Name)
}

func TestChecksumIsStable(t *testing.T) {
	assert.Equal(t, calculateChecksum("SELECT 1"), calculateChecksum("SELECT 1"))
	assert.NotEqual(t, calculateChecksum("SELECT 1"), calculateChecksum("SELECT 2"))
}

func TestBuildStatus(t *testing.T) {
	m := NewMigrator(nil)
	ordered := m.Ordered()
	at := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	applied := map[int]MigrationRecord{
		1: {ID: 1, Name: ordered[0].Name, Checksum: ordered[0].Checksum, AppliedAt: at},
	}
	statuses := buildStatus(ordered, applied)
	require.Len(t, statuses, len(ordered))
	assert.Equal(t, "applied", statuses[0].Status)
	assert.True(t, statuses[0].AppliedAt.Equal(at))
	assert.Equal(t, "pending", statuses[1].Status)
	assert.False(t, statuses[1].Applied)

	applied[1] = MigrationRecord{ID: 1, Checksum: "deadbeef"}
	statuses = buildStatus(ordered, applied)
	assert.Equal(t, "checksum_mismatch", statuses[0].Status)
}
