package httpadapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veglia/internal/domain"
)

func day(n int) time.Time {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

type fakeStatusFlow struct {
	status   domain.ExposureStatus
	notified bool
	cycles   []domain.CheckResult
}

func (f *fakeStatusFlow) Current(ctx context.Context) (domain.ExposureStatus, error) {
	return f.status, nil
}

func (f *fakeStatusFlow) Acknowledge(ctx context.Context) (domain.ExposureStatus, error) {
	if f.status.Kind == domain.StatusExposed {
		f.status.Acknowledged = true
	}
	return f.status, nil
}

func (f *fakeStatusFlow) Reset(ctx context.Context) error {
	f.status = domain.None()
	return nil
}

func (f *fakeStatusFlow) ProcessCheckCycle(ctx context.Context, serverDate time.Time, raw domain.CheckResult) (domain.ExposureStatus, bool, error) {
	f.cycles = append(f.cycles, raw)
	return f.status, f.notified, nil
}

type fakeUploader struct {
	err   error
	token string
}

func (f *fakeUploader) Upload(ctx context.Context, token string) error {
	f.token = token
	return f.err
}

type fakeCountryPrefs struct{ codes []string }

func (f *fakeCountryPrefs) Countries(ctx context.Context) ([]domain.CountryOfInterest, error) {
	out := make([]domain.CountryOfInterest, 0, len(f.codes))
	for _, c := range f.codes {
		out = append(out, domain.CountryOfInterest{Code: c, SelectedAt: day(0)})
	}
	return out, nil
}

func (f *fakeCountryPrefs) SetCountries(ctx context.Context, codes []string) error {
	for _, c := range codes {
		if len(c) != 2 {
			return errors.New("invalid code")
		}
	}
	f.codes = codes
	return nil
}

func newTestServer(flow *fakeStatusFlow, uploader *fakeUploader) (*httptest.Server, *fakeCountryPrefs) {
	prefs := &fakeCountryPrefs{}
	srv := New(flow, uploader, prefs)
	return httptest.NewServer(srv.Routes()), prefs
}

func TestGetStatus(t *testing.T) {
	flow := &fakeStatusFlow{status: domain.Exposed(day(8), false)}
	ts, _ := newTestServer(flow, &fakeUploader{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestPostCheck(t *testing.T) {
	flow := &fakeStatusFlow{status: domain.Exposed(day(8), false), notified: true}
	ts, _ := newTestServer(flow, &fakeUploader{})
	defer ts.Close()

	body := `{"server_date":"2026-03-11T00:00:00Z","days_since_last_exposure":2,` +
		`"matched_key_count":1,"maximum_risk_score":10,"risk_score_sum":10}`
	resp, err := http.Post(ts.URL+"/v1/check", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, flow.cycles, 1)
	assert.Equal(t, 1, flow.cycles[0].MatchedKeyCount)
	assert.Equal(t, 10, flow.cycles[0].MaximumRiskScore)
}

func TestPostCheckRejectsBadJSON(t *testing.T) {
	ts, _ := newTestServer(&fakeStatusFlow{}, &fakeUploader{})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/v1/check", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPostUploadRequiresToken(t *testing.T) {
	uploader := &fakeUploader{}
	ts, _ := newTestServer(&fakeStatusFlow{}, uploader)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/v1/upload", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, uploader.token)
}

func TestPostUploadTransportFailure(t *testing.T) {
	uploader := &fakeUploader{err: errors.New("rejected")}
	ts, _ := newTestServer(&fakeStatusFlow{}, uploader)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/v1/upload", "application/json", strings.NewReader(`{"token":"123456"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestPutCountries(t *testing.T) {
	ts, prefs := newTestServer(&fakeStatusFlow{}, &fakeUploader{})
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/v1/countries",
		strings.NewReader(`{"countries":["DE","DK"]}`))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []string{"DE", "DK"}, prefs.codes)
}

func TestPostAcknowledge(t *testing.T) {
	flow := &fakeStatusFlow{status: domain.Exposed(day(8), false)}
	ts, _ := newTestServer(flow, &fakeUploader{})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/v1/status/acknowledge", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, flow.status.Acknowledged)
}
