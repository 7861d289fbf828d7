package diagnosis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"veglia/internal/domain"
	"veglia/internal/upload"
)

var testPolicy = domain.RiskPolicy{MinimumRiskScore: 5, MaxSummaryCount: 2, MaxInfoCount: 3}

func day(n int) time.Time {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

type fakeSummaries struct {
	stored []domain.ExposureSummary
	err    error
}

func (f *fakeSummaries) Append(ctx context.Context, s domain.ExposureSummary) error { return nil }

func (f *fakeSummaries) ListAll(ctx context.Context) ([]domain.ExposureSummary, error) {
	return f.stored, f.err
}

type fakeCountries struct{ codes []string }

func (f *fakeCountries) List(ctx context.Context) ([]domain.CountryOfInterest, error) {
	out := make([]domain.CountryOfInterest, 0, len(f.codes))
	for _, c := range f.codes {
		out = append(out, domain.CountryOfInterest{Code: c, SelectedAt: day(0)})
	}
	return out, nil
}

func (f *fakeCountries) Replace(ctx context.Context, codes []string) error { return nil }

type fakePolicy struct {
	policy domain.RiskPolicy
	err    error
}

func (f fakePolicy) Current(ctx context.Context) (domain.RiskPolicy, error) {
	return f.policy, f.err
}

type fakeTransport struct {
	serverTime    time.Time
	serverTimeErr error
	submitErr     error

	submittedToken   string
	submittedPayload *upload.Payload
}

func (f *fakeTransport) ServerTime(ctx context.Context) (time.Time, error) {
	return f.serverTime, f.serverTimeErr
}

func (f *fakeTransport) Submit(ctx context.Context, token string, payload upload.Payload) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submittedToken = token
	f.submittedPayload = &payload
	return nil
}

type fakeMarker struct{ marked bool }

func (f *fakeMarker) MarkPositive(ctx context.Context) error {
	f.marked = true
	return nil
}

func storedHistory() []domain.ExposureSummary {
	mk := func(checkDay int, risks ...int) domain.ExposureSummary {
		s := domain.ExposureSummary{Date: day(checkDay), LastExposureDate: day(checkDay - 1), MatchedKeyCount: len(risks)}
		for _, r := range risks {
			s.ExposureInfos = append(s.ExposureInfos, domain.ExposureInfo{Date: day(checkDay - 1), TotalRiskScore: r})
		}
		return s
	}
	return []domain.ExposureSummary{
		mk(1, 99, 98),
		mk(2, 10, 20),
		mk(3, 30, 40, 50),
	}
}

func TestUploadSuccess(t *testing.T) {
	summaries := &fakeSummaries{stored: storedHistory()}
	transport := &fakeTransport{serverTime: day(30)}
	marker := &fakeMarker{}
	svc := New(summaries, &fakeCountries{codes: []string{"DE", "DK"}}, fakePolicy{policy: testPolicy}, transport, marker, zap.NewNop())

	require.NoError(t, svc.Upload(context.Background(), "123456"))

	assert.True(t, marker.marked, "successful upload transitions to Positive")
	assert.Equal(t, "123456", transport.submittedToken)
	require.NotNil(t, transport.submittedPayload)
	assert.Equal(t, day(30), transport.submittedPayload.ServerDate)
	assert.Equal(t, []string{"DE", "DK"}, transport.submittedPayload.Countries)

	// Caps applied: the two most recent summaries, their infos ranked.
	require.Len(t, transport.submittedPayload.Summaries, 2)
	total := 0
	for _, rec := range transport.submittedPayload.Summaries {
		total += len(rec.ExposureInfos)
	}
	assert.LessOrEqual(t, total, testPolicy.MaxInfoCount)
}

func TestUploadTransportFailureLeavesStateUntouched(t *testing.T) {
	transport := &fakeTransport{serverTime: day(30), submitErr: errors.New("502")}
	marker := &fakeMarker{}
	svc := New(&fakeSummaries{stored: storedHistory()}, &fakeCountries{}, fakePolicy{policy: testPolicy}, transport, marker, zap.NewNop())

	err := svc.Upload(context.Background(), "123456")

	require.Error(t, err)
	assert.False(t, marker.marked, "no Positive transition on a failed submit")
}

func TestUploadServerTimeFailure(t *testing.T) {
	transport := &fakeTransport{serverTimeErr: errors.New("unreachable")}
	marker := &fakeMarker{}
	svc := New(&fakeSummaries{stored: storedHistory()}, &fakeCountries{}, fakePolicy{policy: testPolicy}, transport, marker, zap.NewNop())

	require.Error(t, svc.Upload(context.Background(), "123456"))
	assert.False(t, marker.marked)
	assert.Nil(t, transport.submittedPayload)
}

func TestUploadPolicyUnavailable(t *testing.T) {
	transport := &fakeTransport{serverTime: day(30)}
	marker := &fakeMarker{}
	svc := New(&fakeSummaries{stored: storedHistory()}, &fakeCountries{}, fakePolicy{err: errors.New("down")}, transport, marker, zap.NewNop())

	require.Error(t, svc.Upload(context.Background(), "123456"))
	assert.Nil(t, transport.submittedPayload, "an unbounded payload is never submitted")
}

func TestUploadRetryUsesIdenticalInputs(t *testing.T) {
	summaries := &fakeSummaries{stored: storedHistory()}
	transport := &fakeTransport{serverTime: day(30), submitErr: errors.New("502")}
	marker := &fakeMarker{}
	svc := New(summaries, &fakeCountries{}, fakePolicy{policy: testPolicy}, transport, marker, zap.NewNop())

	require.Error(t, svc.Upload(context.Background(), "123456"))

	transport.submitErr = nil
	require.NoError(t, svc.Upload(context.Background(), "123456"))
	assert.True(t, marker.marked)
	require.Len(t, transport.submittedPayload.Summaries, 2)
}
