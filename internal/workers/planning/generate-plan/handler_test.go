package generateplan

import (
	"context"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unipath-planner/internal/common/config"
	apperrors "unipath-planner/internal/common/errors"
	"unipath-planner/internal/common/logger"
	"unipath-planner/internal/models"
	"unipath-planner/internal/store"
)

type fakePlanner struct {
	rec store.Record
	err error
	got models.Profile
}

func (f *fakePlanner) Submit(_ context.Context, p models.Profile) (store.Record, error) {
	f.got = p
	return f.rec, f.err
}

func createTestHandler(t *testing.T, p Planner) *Handler {
	return NewHandler(LoadConfig(config.WorkerConfig{}), p, logger.NewTestLogger(t))
}

func TestLoadConfig(t *testing.T) {
	assert.Equal(t, 2*time.Minute, LoadConfig(config.WorkerConfig{}).Timeout)
	assert.Equal(t, 90*time.Second, LoadConfig(config.WorkerConfig{Timeout: 90000}).Timeout)
	assert.Equal(t, 0, LoadConfig(config.WorkerConfig{}).MaxRetries)
}

func activatedJob(retries int32, variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:       4503599627370497,
		Type:      TaskType,
		Retries:   retries,
		Variables: variables,
	}}
}

const profileVars = `{"profile":{"name":"周同学","contact":"wx_zhou","university":"武汉大学","major":"软件工程","grade":"大三","rank":"5/150","englishLevel":"CET-6 560","targetDirection":"软件工程","confusion":"要不要出国"}}`

func TestHandle_GenerationFailureIsThrown(t *testing.T) {
	for _, err := range []error{
		apperrors.NewUpstreamStatusError(503, "overloaded"),
		apperrors.NewQuotaExhaustedError("402"),
		apperrors.NewPlanValidationError([]string{"swot: required"}),
	} {
		gw := &recordingGateway{}
		h := createTestHandler(t, &fakePlanner{err: err})

		h.Handle(fakeJobClient{gw: gw}, activatedJob(3, profileVars))

		code := string(apperrors.CodeOf(err))
		assert.Empty(t, gw.failed, code)
		assert.Empty(t, gw.completed, code)
		require.Len(t, gw.thrown, 1, code)
		assert.Equal(t, code, gw.thrown[0].ErrorCode)
		assert.Equal(t, int64(4503599627370497), gw.thrown[0].JobKey)
	}
}

func TestHandle_StorageRetriesCappedByConfig(t *testing.T) {
	storageErr := apperrors.NewStorageError("save", assert.AnError)

	gw := &recordingGateway{}
	h := NewHandler(LoadConfig(config.WorkerConfig{MaxRetries: 1}), &fakePlanner{err: storageErr}, logger.NewTestLogger(t))
	h.Handle(fakeJobClient{gw: gw}, activatedJob(3, profileVars))
	require.Len(t, gw.failed, 1)
	assert.Equal(t, int32(1), gw.failed[0].Retries)
	assert.Empty(t, gw.thrown)

	gw = &recordingGateway{}
	h = createTestHandler(t, &fakePlanner{err: storageErr})
	h.Handle(fakeJobClient{gw: gw}, activatedJob(3, profileVars))
	assert.Empty(t, gw.failed)
	require.Len(t, gw.thrown, 1)
}

func TestHandle_Completes(t *testing.T) {
	gw := &recordingGateway{}
	p := &fakePlanner{rec: store.Record{
		ID:   "0190c3f4-0000-7000-8000-000000000002",
		Plan: models.Plan{ProductRecommendation: models.RecommendSunrise},
	}}
	h := createTestHandler(t, p)

	h.Handle(fakeJobClient{gw: gw}, activatedJob(3, profileVars))

	require.Len(t, gw.completed, 1)
	assert.Contains(t, gw.completed[0].Variables, `"planId":"0190c3f4-0000-7000-8000-000000000002"`)
	assert.Contains(t, gw.completed[0].Variables, `"productRecommendation":"Sunrise"`)
	assert.Equal(t, "周同学", p.got.Name)
	assert.Empty(t, gw.thrown)
}

func TestHandle_UnreadableVariablesAreThrown(t *testing.T) {
	gw := &recordingGateway{}
	h := createTestHandler(t, &fakePlanner{})

	h.Handle(fakeJobClient{gw: gw}, activatedJob(3, `{"profile":`))

	require.Len(t, gw.thrown, 1)
	assert.Equal(t, string(apperrors.ErrCodeInvalidProfile), gw.thrown[0].ErrorCode)
}

func TestHandler_Execute_Success(t *testing.T) {
	p := &fakePlanner{rec: store.Record{
		ID:   "0190c3f4-0000-7000-8000-000000000001",
		Plan: models.Plan{Summary: "稳步推进", ProductRecommendation: models.RecommendHarvest},
	}}
	h := createTestHandler(t, p)

	out, err := h.Execute(context.Background(), &Input{Profile: models.Profile{Name: "周同学"}})
	require.NoError(t, err)
	assert.Equal(t, "0190c3f4-0000-7000-8000-000000000001", out.PlanID)
	assert.Equal(t, models.RecommendHarvest, out.ProductRecommendation)
	assert.Equal(t, "稳步推进", out.Plan.Summary)
	assert.Equal(t, "周同学", p.got.Name)
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		code      apperrors.ErrorCode
		retryable bool
	}{
		{"rejected credential", apperrors.NewConfigurationError("401"), apperrors.ErrCodeConfiguration, false},
		{"quota", apperrors.NewQuotaExhaustedError("402"), apperrors.ErrCodeQuotaExhausted, false},
		{"upstream", apperrors.NewUpstreamStatusError(502, "bad gateway"), apperrors.ErrCodeUpstream, false},
		{"malformed plan", apperrors.NewPlanValidationError([]string{"swot: required"}), apperrors.ErrCodePlanValidationFailed, false},
		{"invalid profile", apperrors.NewInvalidProfileError([]string{"confusion"}), apperrors.ErrCodeInvalidProfile, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestHandler(t, &fakePlanner{err: tt.err})

			out, err := h.Execute(context.Background(), &Input{})
			require.Error(t, err)
			assert.Nil(t, out)

			bpmn := apperrors.ConvertToBPMNError(apperrors.AsStandardError(err))
			assert.Equal(t, string(tt.code), bpmn.Code)
			assert.Equal(t, tt.retryable, bpmn.Retries > 0)
		})
	}
}
