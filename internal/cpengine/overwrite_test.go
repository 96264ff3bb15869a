package cpengine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerify_NoClobber_Skips(t *testing.T) {
	t.Parallel()

	got := verify(NewNoClobberOverwrite(), "/dst", nil)
	require.Equal(t, decisionSkip, got)
}

func TestVerify_Clobber_Proceeds(t *testing.T) {
	t.Parallel()

	got := verify(NewClobberOverwrite(ClobberStandard), "/dst", nil)
	require.Equal(t, decisionProceed, got)
}

func TestVerify_InteractiveConfirmed_Proceeds(t *testing.T) {
	t.Parallel()

	confirm := func(string) bool { return true }
	got := verify(NewInteractiveOverwrite(ClobberStandard), "/dst", confirm)
	require.Equal(t, decisionProceed, got)
}

func TestVerify_InteractiveDeclined_Skips(t *testing.T) {
	t.Parallel()

	confirm := func(string) bool { return false }
	got := verify(NewInteractiveOverwrite(ClobberStandard), "/dst", confirm)
	require.Equal(t, decisionSkip, got)
}

func TestVerify_InteractiveNilConfirm_Skips(t *testing.T) {
	t.Parallel()

	got := verify(NewInteractiveOverwrite(ClobberStandard), "/dst", nil)
	require.Equal(t, decisionSkip, got)
}
