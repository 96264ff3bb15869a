package cpengine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHardLinkLedger_RecordAndLookup_RoundTrips(t *testing.T) {
	t.Parallel()

	l := NewHardLinkLedger()
	id := FileInformation{Device: 1, Inode: 2}

	_, ok := l.Lookup(id)
	require.False(t, ok)

	l.Record(id, "/dst/a")

	got, ok := l.Lookup(id)
	require.True(t, ok)
	require.Equal(t, "/dst/a", got)
}

func TestHardLinkLedger_InvalidID_NeverStored(t *testing.T) {
	t.Parallel()

	l := NewHardLinkLedger()
	var zero FileInformation

	l.Record(zero, "/dst/a")

	_, ok := l.Lookup(zero)
	require.False(t, ok)
}

func TestSymlinkLedger_RecordAndContains_RoundTrips(t *testing.T) {
	t.Parallel()

	l := NewSymlinkLedger()
	id := FileInformation{Device: 3, Inode: 4}

	require.False(t, l.Contains(id))

	l.Record(id)

	require.True(t, l.Contains(id))
}
