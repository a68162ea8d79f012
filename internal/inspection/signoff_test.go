package inspection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignOffOverwritesPreviousSignature(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	r := NewReport("r1", "Bracket", "u1")
	assert.Equal(t, Unsigned, SignatureStateOf(r, RoleSupervisor))

	r = SignOff(r, RoleSupervisor, "looks good", t1)
	r = SignOff(r, RoleSupervisor, "rechecked", t2)

	sig := r.Signatures[RoleSupervisor]
	assert.True(t, sig.Signed)
	assert.Equal(t, "rechecked", sig.Comment)
	assert.Equal(t, t2, sig.Timestamp)
	assert.Equal(t, Signed, SignatureStateOf(r, RoleSupervisor))
	assert.Len(t, r.Signatures, 1)
}

func TestSignOffDoesNotShareSignatureMap(t *testing.T) {
	base := NewReport("r1", "Bracket", "u1")
	signed := SignOff(base, RoleCustomer, "", time.Now())
	assert.Empty(t, base.Signatures)
	assert.Len(t, signed.Signatures, 1)
}

func TestPendingSignatures(t *testing.T) {
	required := []Role{RoleInspector, RoleSupervisor, RoleCustomer}
	r := SignOff(NewReport("r1", "Bracket", "u1"), RoleSupervisor, "ok", time.Now())
	assert.Equal(t, []Role{RoleInspector, RoleCustomer}, PendingSignatures(r, required))
}

func TestCompleteInspectionIsTerminal(t *testing.T) {
	r := NewReport("r1", "Bracket", "u1")
	assert.Nil(t, r.FinalStatus)

	r = CompleteInspection(r, InspectionFail)
	require.True(t, r.IsComplete)
	require.NotNil(t, r.FinalStatus)
	assert.Equal(t, InspectionFail, *r.FinalStatus)

	r = CompleteInspection(r, InspectionPass)
	r = AddParameter(r)
	r = SignOff(r, RoleCustomer, "late", time.Now())
	assert.True(t, r.IsComplete)
	assert.Equal(t, InspectionFail, *r.FinalStatus)
}

func TestSummarize(t *testing.T) {
	r := NewReport("r1", "Bracket", "u1")
	r = AddParameter(AddParameter(AddParameter(r)))
	r = UpdateParameter(r, 1, ParameterPatch{Nominal: ptr(1.0), ToleranceValue: ptr(0.1), Actual: ptr(1.05)})
	r = UpdateParameter(r, 2, ParameterPatch{Nominal: ptr(1.0), ToleranceValue: ptr(0.1), Actual: ptr(1.5)})

	s := Summarize(r, []Role{RoleInspector})
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.Passed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Pending)
	assert.Equal(t, InspectionFail, s.SuggestedStatus)
	assert.Equal(t, []Role{RoleInspector}, s.PendingSignatures)

	r = RemoveParameter(r, 2)
	assert.Equal(t, InspectionConditional, Summarize(r, nil).SuggestedStatus)
	r = RemoveParameter(r, 3)
	assert.Equal(t, InspectionPass, Summarize(r, nil).SuggestedStatus)
}

func TestLookupGDTSymbol(t *testing.T) {
	s, ok := LookupGDTSymbol("⌖")
	require.True(t, ok)
	assert.Equal(t, "Position", s.Name)

	_, ok = LookupGDTSymbol("?")
	assert.False(t, ok)
}
