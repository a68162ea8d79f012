package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inspectroom/internal/draft"
	"inspectroom/internal/inspection"
	"inspectroom/internal/kvstore"
)

var errNotFound = errors.New("not found")

type fakeRepo struct {
	mu      sync.Mutex
	reports map[string]inspection.Report
	saved   []inspection.Report
	saveErr error
}

func (f *fakeRepo) Get(_ context.Context, id string) (inspection.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[id]
	if !ok {
		return inspection.Report{}, errNotFound
	}
	return r, nil
}

func (f *fakeRepo) Save(_ context.Context, r inspection.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.reports[r.ID] = r
	f.saved = append(f.saved, r)
	return nil
}

// gatedImages blocks each Generate call until a result is sent on its gate.
type gatedImages struct {
	calls chan chan imageResult
}

type imageResult struct {
	img string
	err error
}

func (g *gatedImages) Generate(ctx context.Context, name, code string) (string, error) {
	gate := make(chan imageResult)
	g.calls <- gate
	res := <-gate
	return res.img, res.err
}

type fixture struct {
	m      *Manager
	repo   *fakeRepo
	cache  *draft.Cache
	kv     *kvstore.Store
	images *gatedImages
}

func setup(t *testing.T) fixture {
	t.Helper()
	kv, err := kvstore.Open("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	repo := &fakeRepo{reports: map[string]inspection.Report{
		"rep-1": inspection.NewReport("rep-1", "Turbine blade", "user-1"),
	}}
	cache := draft.NewCache(kv)
	images := &gatedImages{calls: make(chan chan imageResult, 4)}
	m := NewManager(repo, cache, images, nil)
	fixed := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }
	return fixture{m: m, repo: repo, cache: cache, kv: kv, images: images}
}

func ptr[T any](v T) *T { return &v }

func TestOpenWithoutDraftUsesCanonical(t *testing.T) {
	f := setup(t)
	s, err := f.m.Open(context.Background(), "rep-1", DecisionAsk)
	require.NoError(t, err)
	v := s.View()
	assert.Equal(t, SourceCanonical, v.Source)
	assert.Equal(t, f.repo.reports["rep-1"], v.Report)
	assert.Empty(t, v.Notices)
}

func TestOpenUnknownReport(t *testing.T) {
	f := setup(t)
	_, err := f.m.Open(context.Background(), "missing", DecisionKeep)
	assert.ErrorIs(t, err, errNotFound)
}

func TestMutationsWriteThroughAndDraftSurvivesExit(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	s, err := f.m.Open(ctx, "rep-1", DecisionAsk)
	require.NoError(t, err)

	_, err = s.AddParameter(ctx)
	require.NoError(t, err)
	want, err := s.UpdateParameter(ctx, 1, inspection.ParameterPatch{
		Nominal: ptr(10.0), ToleranceValue: ptr(0.5), Actual: ptr(10.4),
	})
	require.NoError(t, err)

	cached, ok, err := f.cache.Load(ctx, "rep-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, cached)

	f.m.Close("rep-1")
	_, err = f.m.Get("rep-1")
	assert.ErrorIs(t, err, ErrNotOpen)
	_, err = s.AddParameter(ctx)
	assert.ErrorIs(t, err, ErrNotOpen)

	exists, err := f.cache.Exists(ctx, "rep-1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Empty(t, f.repo.saved)
}

func TestReopenWithDraftRequiresDecision(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	s, err := f.m.Open(ctx, "rep-1", DecisionAsk)
	require.NoError(t, err)
	edited, err := s.AddParameter(ctx)
	require.NoError(t, err)
	f.m.Close("rep-1")

	_, err = f.m.Open(ctx, "rep-1", DecisionAsk)
	assert.ErrorIs(t, err, ErrDraftDecisionRequired)

	s, err = f.m.Open(ctx, "rep-1", DecisionKeep)
	require.NoError(t, err)
	assert.Equal(t, SourceDraft, s.View().Source)
	assert.Equal(t, edited, s.Report())
}

func TestReopenDiscardUsesCanonicalAndDropsDraft(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	s, err := f.m.Open(ctx, "rep-1", DecisionAsk)
	require.NoError(t, err)
	_, err = s.AddParameter(ctx)
	require.NoError(t, err)
	f.m.Close("rep-1")

	s, err = f.m.Open(ctx, "rep-1", DecisionDiscard)
	require.NoError(t, err)
	assert.Equal(t, SourceCanonical, s.View().Source)
	assert.Empty(t, s.Report().Parameters)

	exists, err := f.cache.Exists(ctx, "rep-1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCorruptDraftFallsBackWithNotice(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	require.NoError(t, f.kv.Put(ctx, draft.Key("rep-1"), []byte("{broken")))

	s, err := f.m.Open(ctx, "rep-1", DecisionKeep)
	require.NoError(t, err)
	v := s.View()
	assert.Equal(t, SourceCanonical, v.Source)
	require.Len(t, v.Notices, 1)
	assert.Equal(t, NoticeMalformedDraft, v.Notices[0].Kind)

	assert.Len(t, s.TakeNotices(), 1)
	assert.Empty(t, s.TakeNotices())
}

func TestOpenReturnsLiveSessionToOtherParticipants(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	a, err := f.m.Open(ctx, "rep-1", DecisionAsk)
	require.NoError(t, err)
	_, err = a.AddParameter(ctx)
	require.NoError(t, err)

	b, err := f.m.Open(ctx, "rep-1", DecisionAsk)
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestUpdateParameterRejectsInvalidPatchUntouched(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	s, err := f.m.Open(ctx, "rep-1", DecisionAsk)
	require.NoError(t, err)
	before, err := s.AddParameter(ctx)
	require.NoError(t, err)

	_, err = s.UpdateParameter(ctx, 1, inspection.ParameterPatch{Nominal: ptr(3.0), ToleranceValue: ptr(-1.0)})
	assert.ErrorIs(t, err, inspection.ErrNegativeTolerance)
	assert.Equal(t, before, s.Report())
}

func TestSignOffAndComplete(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	s, err := f.m.Open(ctx, "rep-1", DecisionAsk)
	require.NoError(t, err)

	r, err := s.SignOff(ctx, inspection.RoleSupervisor, "ok")
	require.NoError(t, err)
	assert.Equal(t, f.m.now(), r.Signatures[inspection.RoleSupervisor].Timestamp)

	_, err = s.SignOff(ctx, inspection.Role("NOBODY"), "")
	assert.ErrorIs(t, err, ErrInvalidRole)
	_, err = s.Complete(ctx, inspection.InspectionStatus("MAYBE"))
	assert.ErrorIs(t, err, ErrInvalidFinalStatus)

	r, err = s.Complete(ctx, inspection.InspectionPass)
	require.NoError(t, err)
	assert.True(t, r.IsComplete)
	require.Len(t, f.repo.saved, 1)
	assert.Equal(t, r, f.repo.saved[0])

	_, err = s.Complete(ctx, inspection.InspectionFail)
	assert.ErrorIs(t, err, ErrReportComplete)
	_, err = s.AddParameter(ctx)
	assert.ErrorIs(t, err, ErrReportComplete)
	_, err = s.SignOff(ctx, inspection.RoleCustomer, "late")
	assert.ErrorIs(t, err, ErrReportComplete)

	assert.Equal(t, inspection.InspectionPass, *s.Report().FinalStatus)
}

func TestEvidenceIsStamped(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	s, err := f.m.Open(ctx, "rep-1", DecisionAsk)
	require.NoError(t, err)
	r, err := s.AddReportEvidence(ctx, inspection.Evidence{ImageData: "data:image/png;base64,AA=="})
	require.NoError(t, err)
	assert.Equal(t, f.m.now(), r.Evidence[0].CapturedAt)

	_, err = s.AddParameter(ctx)
	require.NoError(t, err)
	r, err = s.AddParameterEvidence(ctx, 1, inspection.Evidence{ImageData: "x", Caption: "a"})
	require.NoError(t, err)
	p, _ := r.Parameter(1)
	require.Len(t, p.Evidence, 1)

	r, err = s.RemoveParameterEvidence(ctx, 1, 5)
	require.NoError(t, err)
	p, _ = r.Parameter(1)
	assert.Len(t, p.Evidence, 1)
}

func openWithSymbol(t *testing.T, f fixture) *Session {
	t.Helper()
	ctx := context.Background()
	s, err := f.m.Open(ctx, "rep-1", DecisionAsk)
	require.NoError(t, err)
	_, err = s.AddParameter(ctx)
	require.NoError(t, err)
	_, err = s.UpdateParameter(ctx, 1, inspection.ParameterPatch{GDTSymbol: ptr("⌖")})
	require.NoError(t, err)
	return s
}

func gdtImage(t *testing.T, s *Session) *string {
	t.Helper()
	p, ok := s.Report().Parameter(1)
	require.True(t, ok)
	return p.GDTImage
}

func TestGenerateImageSuccessMergesIntoLatestState(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	s := openWithSymbol(t, f)

	r, err := s.GenerateImage(ctx, 1)
	require.NoError(t, err)
	p, _ := r.Parameter(1)
	require.NotNil(t, p.GDTImage)
	assert.Equal(t, inspection.GDTImageLoading, *p.GDTImage)

	gate := <-f.images.calls
	_, err = s.UpdateParameter(ctx, 1, inspection.ParameterPatch{Description: ptr("True position")})
	require.NoError(t, err)

	gate <- imageResult{img: "data:image/png;base64,AA=="}
	f.m.Wait()

	p, _ = s.Report().Parameter(1)
	assert.Equal(t, "True position", p.Description)
	require.NotNil(t, p.GDTImage)
	assert.Equal(t, "data:image/png;base64,AA==", *p.GDTImage)

	cached, _, err := f.cache.Load(ctx, "rep-1")
	require.NoError(t, err)
	assert.Equal(t, s.Report(), cached)
}

func TestGenerateImageFailureClearsLoadingAndNotifies(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	s := openWithSymbol(t, f)

	_, err := s.GenerateImage(ctx, 1)
	require.NoError(t, err)
	gate := <-f.images.calls
	gate <- imageResult{err: errors.New("quota exceeded")}
	f.m.Wait()

	assert.Nil(t, gdtImage(t, s))
	notices := s.TakeNotices()
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeImageGenerationFailed, notices[0].Kind)
	assert.Equal(t, 1, notices[0].ParameterID)
}

func TestGenerateImageDropsStaleCompletion(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	s := openWithSymbol(t, f)

	_, err := s.GenerateImage(ctx, 1)
	require.NoError(t, err)
	first := <-f.images.calls
	_, err = s.GenerateImage(ctx, 1)
	require.NoError(t, err)
	second := <-f.images.calls

	second <- imageResult{img: "new"}
	first <- imageResult{img: "old"}
	f.m.Wait()

	img := gdtImage(t, s)
	require.NotNil(t, img)
	assert.Equal(t, "new", *img)
}

func TestGenerateImagePreconditions(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	s, err := f.m.Open(ctx, "rep-1", DecisionAsk)
	require.NoError(t, err)

	before := s.Report()
	r, err := s.GenerateImage(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, before, r)

	_, err = s.AddParameter(ctx)
	require.NoError(t, err)
	_, err = s.GenerateImage(ctx, 1)
	assert.ErrorIs(t, err, ErrNoGDTSymbol)

	_, err = s.UpdateParameter(ctx, 1, inspection.ParameterPatch{GDTSymbol: ptr("#")})
	require.NoError(t, err)
	_, err = s.GenerateImage(ctx, 1)
	assert.ErrorIs(t, err, ErrUnknownGDTSymbol)
}

func TestImageCompletionAfterCloseIsDropped(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	s := openWithSymbol(t, f)

	_, err := s.GenerateImage(ctx, 1)
	require.NoError(t, err)
	gate := <-f.images.calls
	f.m.Close("rep-1")
	gate <- imageResult{err: errors.New("timeout")}
	f.m.Wait()

	reopened, err := f.m.Open(ctx, "rep-1", DecisionKeep)
	require.NoError(t, err)
	assert.Equal(t, SourceDraft, reopened.View().Source)
	assert.Nil(t, gdtImage(t, reopened))
	assert.Empty(t, reopened.TakeNotices())
}

func TestCompleteDropsPendingImage(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	s := openWithSymbol(t, f)

	_, err := s.GenerateImage(ctx, 1)
	require.NoError(t, err)
	gate := <-f.images.calls

	r, err := s.Complete(ctx, inspection.InspectionPass)
	require.NoError(t, err)
	p, _ := r.Parameter(1)
	assert.Nil(t, p.GDTImage)

	gate <- imageResult{img: "data:image/png;base64,AAAA"}
	f.m.Wait()

	assert.Nil(t, gdtImage(t, s))
	stored, err := f.repo.Get(ctx, "rep-1")
	require.NoError(t, err)
	assert.True(t, stored.IsComplete)
	p, _ = stored.Parameter(1)
	assert.Nil(t, p.GDTImage)
}

func TestCompleteCanBeRetriedAfterSaveFailure(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	s, err := f.m.Open(ctx, "rep-1", DecisionAsk)
	require.NoError(t, err)

	f.repo.saveErr = errors.New("connection reset")
	_, err = s.Complete(ctx, inspection.InspectionFail)
	assert.ErrorContains(t, err, "connection reset")
	assert.False(t, s.Report().IsComplete)
	_, err = s.AddParameter(ctx)
	require.NoError(t, err)

	f.repo.saveErr = nil
	r, err := s.Complete(ctx, inspection.InspectionFail)
	require.NoError(t, err)
	assert.True(t, r.IsComplete)
	require.Len(t, f.repo.saved, 1)
	assert.Equal(t, r, f.repo.saved[0])
}

func TestParseDecision(t *testing.T) {
	for in, want := range map[string]Decision{"": DecisionAsk, "ask": DecisionAsk, "keep": DecisionKeep, "discard": DecisionDiscard} {
		got, err := ParseDecision(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseDecision("maybe")
	assert.ErrorIs(t, err, ErrInvalidDecision)
}
