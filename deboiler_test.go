package deboiler

import (
	"testing"

	"github.com/globality-corp/deboiler/dom"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsPerformanceModeWithMultipleWorkers(t *testing.T) {
	_, err := New(Config{OperationMode: ModePerformance, NProcesses: 2})
	require.Error(t, err)

	var precond *PreconditionError
	require.ErrorAs(t, err, &precond)
}

func TestNew_AllowsPerformanceModeWithOneWorker(t *testing.T) {
	db, err := New(Config{OperationMode: ModePerformance, NProcesses: 1})
	require.NoError(t, err)
	require.NotNil(t, db)
}

func TestNew_DefaultsApplied(t *testing.T) {
	db, err := New(Config{})
	require.NoError(t, err)
	require.Equal(t, 0.9, db.cfg.IoUMax)
	require.NotEmpty(t, db.cfg.CandidateTags)
	require.Equal(t, 1, db.cfg.NProcesses)
	require.NotNil(t, db.cfg.Logger)
}

func TestMode_String(t *testing.T) {
	require.Equal(t, "memory", ModeMemory.String())
	require.Equal(t, "performance", ModePerformance.String())
	require.Equal(t, "unknown", Mode(99).String())
}

func TestBoilerplate_EmptyBeforeFit(t *testing.T) {
	db, err := New(Config{})
	require.NoError(t, err)
	require.Empty(t, db.Boilerplate())
}

func TestBoilerplate_ReturnsDefensiveCopy(t *testing.T) {
	db, err := New(Config{})
	require.NoError(t, err)
	db.boilerplate = map[dom.Signature]struct{}{"real": {}}

	b1 := db.Boilerplate()
	b1["forged"] = struct{}{}
	require.NotContains(t, db.boilerplate, dom.Signature("forged"))
}
