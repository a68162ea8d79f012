package draft

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inspectroom/internal/inspection"
	"inspectroom/internal/kvstore"
)

func setupCache(t *testing.T) (*Cache, *kvstore.Store) {
	t.Helper()
	kv, err := kvstore.Open("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return NewCache(kv), kv
}

func sampleReport() inspection.Report {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	nominal, value, actual, symbol := 10.0, 0.5, 10.4, "⌖"
	tt := inspection.ToleranceBilateral

	r := inspection.NewReport("rep-1", "Landing gear strut", "user-1")
	r = inspection.UpdateProductDetails(r, map[string]*string{"partNumber": &symbol})
	r = inspection.AddParameter(inspection.AddParameter(r))
	r = inspection.UpdateParameter(r, 1, inspection.ParameterPatch{
		Nominal: &nominal, ToleranceType: &tt, ToleranceValue: &value, Actual: &actual, GDTSymbol: &symbol,
	})
	r = inspection.AddParameterEvidence(r, 1, inspection.Evidence{CapturedAt: at, ImageData: "data:image/png;base64,AA==", Caption: "bore"})
	r = inspection.AddReportEvidence(r, inspection.Evidence{CapturedAt: at, ImageData: "data:image/png;base64,AQ=="})
	r = inspection.SignOff(r, inspection.RoleSupervisor, "ok", at)
	return inspection.CompleteInspection(r, inspection.InspectionPass)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "inspection_draft_abc", Key("abc"))
}

func TestRoundTripIsDeepEqual(t *testing.T) {
	ctx := context.Background()
	c, _ := setupCache(t)
	want := sampleReport()

	require.NoError(t, c.Save(ctx, want))
	got, ok, err := c.Load(ctx, want.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestLoadMissing(t *testing.T) {
	c, _ := setupCache(t)
	_, ok, err := c.Load(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadMalformed(t *testing.T) {
	ctx := context.Background()
	c, kv := setupCache(t)
	require.NoError(t, kv.Put(ctx, Key("rep-1"), []byte("{not json")))

	exists, err := c.Exists(ctx, "rep-1")
	require.NoError(t, err)
	assert.True(t, exists)

	_, ok, err := c.Load(ctx, "rep-1")
	assert.True(t, ok)
	assert.ErrorIs(t, err, ErrMalformedDraft)
}

func TestLoadRejectsForeignDraft(t *testing.T) {
	ctx := context.Background()
	c, kv := setupCache(t)
	require.NoError(t, kv.Put(ctx, Key("rep-2"), []byte(`{"id":"rep-1"}`)))
	_, _, err := c.Load(ctx, "rep-2")
	assert.ErrorIs(t, err, ErrMalformedDraft)
}

func TestDiscard(t *testing.T) {
	ctx := context.Background()
	c, _ := setupCache(t)
	require.NoError(t, c.Save(ctx, sampleReport()))
	require.NoError(t, c.Discard(ctx, "rep-1"))
	exists, err := c.Exists(ctx, "rep-1")
	require.NoError(t, err)
	assert.False(t, exists)
}
