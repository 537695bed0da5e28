package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/ownerassign/ownerassign/internal/jobs"
	"github.com/ownerassign/ownerassign/internal/provision"
)

type stubProvisioner struct {
	calls [][]int64
}

func (s *stubProvisioner) Provision(ctx context.Context, ids []int64) provision.Report {
	s.calls = append(s.calls, ids)
	var report provision.Report
	for _, id := range ids {
		report.Results = append(report.Results, provision.Result{ListingID: id, Outcome: provision.OutcomeCreated})
	}
	return report
}

type stubSweep struct {
	ids []int64
	err error
}

func (s stubSweep) AdminOwnedWithEmail(ctx context.Context) ([]int64, error) {
	return s.ids, s.err
}

func task(t *testing.T, ids []int64) *asynq.Task {
	t.Helper()
	tk, err := NewProvisionListingsTask(ProvisionListingsPayload{ListingIDs: ids})
	require.NoError(t, err)
	return tk
}

func TestProvisionTaskPayload(t *testing.T) {
	tk := task(t, []int64{3, 4})
	assert.Equal(t, TaskProvisionListings, tk.Type())
	var payload ProvisionListingsPayload
	require.NoError(t, json.Unmarshal(tk.Payload(), &payload))
	assert.Equal(t, []int64{3, 4}, payload.ListingIDs)
}

func TestProvisionJobExplicitIDs(t *testing.T) {
	prov := &stubProvisioner{}
	job := &ProvisionJob{Provisioner: prov, Sweep: stubSweep{ids: []int64{99}}}

	require.NoError(t, job.Handle(context.Background(), task(t, []int64{12, 7})))
	assert.Equal(t, [][]int64{{12, 7}}, prov.calls)
}

func TestProvisionJobSweep(t *testing.T) {
	prov := &stubProvisioner{}
	metrics := jobmetrics.NewMetrics(prometheus.NewRegistry())
	job := &ProvisionJob{Provisioner: prov, Sweep: stubSweep{ids: []int64{5, 6}}, Metrics: metrics}

	require.NoError(t, job.Handle(context.Background(), task(t, nil)))
	assert.Equal(t, [][]int64{{5, 6}}, prov.calls)
}

func TestProvisionJobSweepNothingToDo(t *testing.T) {
	prov := &stubProvisioner{}
	job := &ProvisionJob{Provisioner: prov, Sweep: stubSweep{}}

	require.NoError(t, job.Handle(context.Background(), task(t, nil)))
	assert.Empty(t, prov.calls)
}

func TestProvisionJobErrors(t *testing.T) {
	prov := &stubProvisioner{}
	lookupErr := errors.New("db down")

	err := (&ProvisionJob{Provisioner: prov, Sweep: stubSweep{err: lookupErr}}).Handle(context.Background(), task(t, nil))
	assert.ErrorIs(t, err, lookupErr)

	err = (&ProvisionJob{Provisioner: prov}).Handle(context.Background(), asynq.NewTask(TaskProvisionListings, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = (&ProvisionJob{Provisioner: prov}).Handle(context.Background(), task(t, nil))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	var unconfigured *ProvisionJob
	assert.Error(t, unconfigured.Handle(context.Background(), task(t, nil)))
	assert.Empty(t, prov.calls)
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func TestHealthReportsPending(t *testing.T) {
	h := NewHandler(stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 4}}, nil)
	rr := httptest.NewRecorder()
	h.health(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"queue":"default","pending":4}`, rr.Body.String())
}

func TestHealthWithoutInspector(t *testing.T) {
	h := NewHandler(nil, nil)
	rr := httptest.NewRecorder()
	h.health(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	assert.JSONEq(t, `{"queue":"default","pending":0}`, rr.Body.String())
}
