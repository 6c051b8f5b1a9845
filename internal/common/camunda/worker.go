package camunda

import (
	"context"
	"encoding/json"
	"time"

	"job-applier/internal/common/config"
	"job-applier/internal/common/errors"
	"job-applier/internal/common/logger"
	"job-applier/internal/common/metrics"
	"job-applier/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler reports the job outcome to the engine itself and returns the
// error it reported, if any, so the worker can count it.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

// Worker is one open job worker.
type Worker struct {
	worker   worker.JobWorker
	taskType string
	logger   logger.Logger
}

// StartWorker opens a job worker for taskType. It returns nil when the
// worker is disabled in configuration.
func StartWorker(
	client zbc.Client,
	taskType string,
	wcfg config.WorkerConfig,
	handler JobHandler,
	obs *observability.Observability,
	log logger.Logger,
) *Worker {
	log = log.WithFields(map[string]interface{}{"taskType": taskType})
	if !wcfg.Enabled {
		log.Info("worker disabled", nil)
		return nil
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(Instrument(taskType, handler, obs)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started", map[string]interface{}{
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})

	return &Worker{worker: jobWorker, taskType: taskType, logger: log}
}

// Instrument adapts handler to the Zeebe callback signature and records
// worker metrics around every job.
func Instrument(taskType string, handler JobHandler, obs *observability.Observability) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()

		err := handler.Handle(client, job)

		elapsed := time.Since(start)
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())

		status := "completed"
		if err != nil {
			status = "failed"
			metrics.WorkerJobsFailed.WithLabelValues(taskType, string(errors.AsStandard(err).Code)).Inc()
		} else {
			metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		}
		obs.RecordJob(context.Background(), taskType, status, elapsed)
	}
}

// Stop closes the job worker and waits for in-flight jobs.
func (w *Worker) Stop() {
	if w == nil {
		return
	}
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}

// CompleteJob sends output as the job's result variables.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}, log logger.Logger) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		log.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return errors.NewEngineError("complete job", err, false)
	}

	if _, err := cmd.Send(ctx); err != nil {
		log.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return errors.NewEngineError("complete job", err, true)
	}

	log.Info("job completed successfully", map[string]interface{}{"jobKey": job.Key})
	return nil
}

// DecodeVariables unmarshals the job variables into v.
func DecodeVariables(job entities.Job, v interface{}) error {
	if err := json.Unmarshal([]byte(job.Variables), v); err != nil {
		return errors.NewInvalidInputError("parse variables: " + err.Error())
	}
	return nil
}
