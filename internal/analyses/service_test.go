package analyses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sport-backend/internal/extract"
	"sport-backend/internal/llm"
	"sport-backend/internal/profile"
	"sport-backend/internal/recommendation"
	"sport-backend/internal/recommendation/rectest"
)

func floatp(v float64) *float64 { return &v }

func TestAnalyzeNilProfile(t *testing.T) {
	client := &fakeClient{reply: always(rectest.JSON(rectest.Full("Swimming", 80)))}
	_, err := newTestService(client, recommendation.VersionV3, true).Analyze(context.Background(), nil)

	assert.ErrorIs(t, err, ErrProfileRequired)
	assert.Zero(t, client.Calls())
}

func TestAnalyzeInvalidProfile(t *testing.T) {
	client := &fakeClient{reply: always(rectest.JSON(rectest.Full("Swimming", 80)))}
	_, err := newTestService(client, recommendation.VersionV3, true).Analyze(context.Background(), &profile.Profile{Height: floatp(20)})

	var perr *profile.ValidationError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "height", perr.Field)
	assert.Zero(t, client.Calls())
}

func TestAnalyzeWithoutCredential(t *testing.T) {
	client := &fakeClient{reply: always("{}")}
	_, err := newTestService(client, recommendation.VersionV3, false).Analyze(context.Background(), &profile.Profile{})

	assert.ErrorIs(t, err, llm.ErrNoCredential)
	assert.Zero(t, client.Calls())
}

func TestAnalyzeReturnsValidatedDocument(t *testing.T) {
	client := &fakeClient{reply: always("```json\n" + rectest.JSON(rectest.Full("Natation", 88)) + "\n```")}
	svc := newTestService(client, recommendation.VersionV3, true)

	doc, err := svc.Analyze(context.Background(), &profile.Profile{LanguageCode: "fr", Height: floatp(180), Weight: floatp(81)})
	require.NoError(t, err)

	assert.Equal(t, "Natation", doc.Sport)
	assert.Equal(t, 88, doc.Score)
	assert.Len(t, doc.Benefits, 5)
	assert.Len(t, doc.Precautions, 4)
	assert.Len(t, doc.Exercises, 3)
	require.NotNil(t, doc.TrainingPlan)
	assert.NotEmpty(t, doc.Alternatives)

	require.Equal(t, 1, client.Calls())
	req := client.requests[0]
	assert.Equal(t, "fr", req.Language)
	assert.Equal(t, "test-model", req.Model)
	assert.Equal(t, 8192, req.MaxTokens)
	assert.True(t, req.JSONMode)
	require.NotNil(t, req.Temperature)
	assert.InDelta(t, 0.3, *req.Temperature, 1e-9)
	require.NotNil(t, req.TopP)
	assert.InDelta(t, 0.9, *req.TopP, 1e-9)
	assert.Contains(t, req.Prompt, "BMI: 25.0")
	assert.Contains(t, req.System, `"fr"`)
}

func TestAnalyzeRetriesThenSucceeds(t *testing.T) {
	bad := rectest.Core("Swimming", 80)
	bad["benefits"] = []any{"a", "b", "c", "d"}
	client := &fakeClient{reply: func(attempt int, _ llm.Request) (string, error) {
		if attempt == 1 {
			return rectest.JSON(bad), nil
		}
		return rectest.JSON(rectest.Core("Swimming", 80)), nil
	}}
	svc := newTestService(client, recommendation.VersionV1, true)

	res, err := svc.Recommend(context.Background(), &profile.Profile{})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Report.Attempts)
	assert.Equal(t, []extract.Kind{extract.KindValidation, extract.KindSuccess}, res.Report.Outcomes)
	assert.Equal(t, "Swimming", res.Document.Sport)
}

func TestAnalyzeExhaustion(t *testing.T) {
	client := &fakeClient{reply: always("I cannot answer that.")}
	res, err := newTestService(client, recommendation.VersionV1, true).Recommend(context.Background(), &profile.Profile{})

	var xerr *extract.Error
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, extract.CategoryMalformedOutput, xerr.Category)
	assert.Equal(t, 3, client.Calls())
	assert.Equal(t, 3, res.Report.Attempts)
	assert.Empty(t, res.Document.Sport)
	assert.Equal(t, "malformed_output", FailureCategory(err))
}

func TestPlan(t *testing.T) {
	client := &fakeClient{reply: always("Here is your plan: " + rectest.JSON(rectest.Plan(3)))}
	svc := newTestService(client, recommendation.VersionV1, true)

	plan, err := svc.Plan(context.Background(), &profile.Profile{}, "  Tennis ")
	require.NoError(t, err)

	assert.Len(t, plan.Weeks, 3)
	assert.Len(t, plan.Weeks[0].Sessions, 3)
	require.Equal(t, 1, client.Calls())
	assert.Contains(t, client.requests[0].Prompt, "Tennis")
}

func TestPlanRequiresSport(t *testing.T) {
	client := &fakeClient{reply: always("{}")}
	_, err := newTestService(client, recommendation.VersionV1, true).Plan(context.Background(), &profile.Profile{}, " ")

	assert.ErrorIs(t, err, ErrSportRequired)
	assert.Zero(t, client.Calls())
}

func TestAnalyzeConcurrentRequestsStayIsolated(t *testing.T) {
	languages := []string{"en", "fr", "de", "es", "pt", "it", "nl", "pl"}
	client := &fakeClient{reply: func(_ int, req llm.Request) (string, error) {
		return rectest.JSON(rectest.Core("sport-"+req.Language, 70)), nil
	}}
	svc := newTestService(client, recommendation.VersionV1, true)

	var wg sync.WaitGroup
	errs := make(chan error, len(languages)*4)
	for i := 0; i < 4; i++ {
		for _, lang := range languages {
			wg.Add(1)
			go func(lang string) {
				defer wg.Done()
				doc, err := svc.Analyze(context.Background(), &profile.Profile{LanguageCode: lang})
				if err != nil {
					errs <- err
					return
				}
				if doc.Sport != "sport-"+lang {
					errs <- fmt.Errorf("language %s got %s", lang, doc.Sport)
				}
			}(lang)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	assert.Equal(t, len(languages)*4, client.Calls())
}

func TestAnalyzeCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := &fakeClient{reply: func(int, llm.Request) (string, error) {
		cancel()
		return "", &llm.TransportError{Provider: "fake", Err: errors.New("aborted")}
	}}
	_, err := newTestService(client, recommendation.VersionV1, true).Analyze(ctx, &profile.Profile{})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, client.Calls())
	assert.Equal(t, "canceled", FailureCategory(err))
}

func TestFailureCategory(t *testing.T) {
	assert.Equal(t, "", FailureCategory(nil))
	assert.Equal(t, "not_configured", FailureCategory(llm.ErrNoCredential))
	assert.Equal(t, "backend_unavailable", FailureCategory(&extract.Error{Category: extract.CategoryBackendUnavailable}))
	assert.Equal(t, "internal", FailureCategory(errors.New("boom")))
	assert.True(t, strings.HasPrefix(FailureCategory(fmt.Errorf("wrap: %w", context.DeadlineExceeded)), "cancel"))
}
