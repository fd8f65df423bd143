// internal/workers/housing/calculate-housing-score/handler.go
package calculatehousingscore

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "homematch-workers/internal/common/errors"
	"homematch-workers/internal/common/logger"
	"homematch-workers/internal/common/metrics"
	"homematch-workers/internal/common/observability"
	"homematch-workers/internal/common/validation"
	"homematch-workers/internal/dataset"
	"homematch-workers/internal/matching"
	"homematch-workers/internal/models"
	"homematch-workers/internal/preferences"
)

const TaskType = "calculate-housing-score"

type Handler struct {
	config    *Config
	store     *dataset.Store
	scorer    *matching.Scorer
	validator *validation.Validator
	obs       *observability.Observability
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(
	config *Config,
	store *dataset.Store,
	scorer *matching.Scorer,
	validator *validation.Validator,
	obs *observability.Observability,
	log logger.Logger,
) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		store:     store,
		scorer:    scorer,
		validator: validator,
		obs:       obs,
		errors:    apperrors.NewErrorHandler(log, apperrors.WithMaxRetries(config.MaxRetries)),
		logger:    log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.decode(job)
	if err != nil {
		h.fail(ctx, client, job, err, start)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.fail(ctx, client, job, err, start)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "completed")
}

func (h *Handler) decode(job entities.Job) (*Input, error) {
	vars, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, apperrors.NewParseError(err)
	}
	if h.validator != nil {
		res, err := h.validator.Validate(TaskType, vars)
		if err != nil {
			return nil, err
		}
		if !res.Valid {
			return nil, apperrors.NewInvalidPreferencesError(res.Summary())
		}
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, apperrors.NewParseError(err)
	}
	return &input, nil
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidPreferencesError("input cannot be nil")
	}

	prefs, err := preferences.Parse(input.Preferences)
	if err != nil {
		if errors.Is(err, preferences.ErrInvalidPreferences) {
			return nil, apperrors.NewInvalidPreferencesError(err.Error())
		}
		return nil, err
	}

	listing, err := h.resolveListing(input)
	if err != nil {
		return nil, err
	}

	result := h.scorer.Evaluate(listing, prefs)
	metrics.ListingsScored.Inc()

	h.logger.Debug("listing scored", map[string]interface{}{
		"listing": listing.Name,
		"score":   result.Score,
	})

	return &Output{
		ListingName:  listing.Name,
		Score:        result.Score,
		Explanation:  result.Explanation,
		Factors:      result.Factors,
		MatchPercent: matching.MatchPercent(result.Score, h.config.MaxPossible),
	}, nil
}

func (h *Handler) resolveListing(input *Input) (models.Listing, error) {
	if input.Listing != nil && strings.TrimSpace(input.Listing.Name) != "" {
		return *input.Listing, nil
	}

	name := strings.TrimSpace(input.ListingName)
	if name == "" || h.store == nil {
		return models.Listing{}, apperrors.NewListingNotFoundError(name)
	}
	listing, ok := h.store.Find(name)
	if !ok {
		return models.Listing{}, apperrors.NewListingNotFoundError(name)
	}
	return listing, nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error, start time.Time) {
	code := apperrors.AsStandard(err).Code
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(code)).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "failed")
	h.errors.HandleJobError(ctx, client, job, err)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
