package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	activityModel "github.com/wso2/identity-metadirectory-service/internal/activity/model"
	activityService "github.com/wso2/identity-metadirectory-service/internal/activity/service"
	"github.com/wso2/identity-metadirectory-service/internal/connectedsystem/model"
	csStore "github.com/wso2/identity-metadirectory-service/internal/connectedsystem/store"
	"github.com/wso2/identity-metadirectory-service/internal/connector"
	drService "github.com/wso2/identity-metadirectory-service/internal/deferredref/service"
	deletionService "github.com/wso2/identity-metadirectory-service/internal/deletion/service"
	exportModel "github.com/wso2/identity-metadirectory-service/internal/export/model"
	exportService "github.com/wso2/identity-metadirectory-service/internal/export/service"
	exportStore "github.com/wso2/identity-metadirectory-service/internal/export/store"
	mvModel "github.com/wso2/identity-metadirectory-service/internal/metaverse/model"
	mvStore "github.com/wso2/identity-metadirectory-service/internal/metaverse/store"
	reconcileService "github.com/wso2/identity-metadirectory-service/internal/reconcile/service"
	syncModel "github.com/wso2/identity-metadirectory-service/internal/syncrule/model"
	syncStore "github.com/wso2/identity-metadirectory-service/internal/syncrule/store"
	"github.com/wso2/identity-metadirectory-service/internal/system/config"
	errors2 "github.com/wso2/identity-metadirectory-service/internal/system/errors"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
	taskModel "github.com/wso2/identity-metadirectory-service/internal/task/model"
	taskStore "github.com/wso2/identity-metadirectory-service/internal/task/store"
)

const defaultTaskPollInterval = 5 * time.Second

// StartSyncWorkers launches the dispatcher pool. Each worker polls the
// durable task queue and runs claimed tasks to completion; tasks are
// claimed at most once across the pool.
func StartSyncWorkers() {

	cfg := config.GetMDSRuntime().Config.Sync
	count := cfg.WorkerCount
	if count <= 0 {
		count = 1
	}
	poll := time.Duration(cfg.TaskPollIntervalSeconds) * time.Second
	if poll <= 0 {
		poll = defaultTaskPollInterval
	}

	log.GetLogger().Info(fmt.Sprintf("Starting %d sync dispatcher worker(s), poll interval %s", count, poll))
	for i := 0; i < count; i++ {
		go runSyncWorker(i, poll)
	}
}

func runSyncWorker(workerID int, poll time.Duration) {

	logger := log.GetLogger()
	p := newPipeline()
	for {
		task, err := taskStore.ClaimNextTask(time.Now().UTC())
		if err != nil {
			logger.Error(fmt.Sprintf("Worker %d failed to claim task: %v", workerID, err))
			time.Sleep(poll)
			continue
		}
		if task == nil {
			time.Sleep(poll)
			continue
		}
		logger.Info(fmt.Sprintf("Worker %d picked up task %s (%s)", workerID, task.TaskID, task.Kind))
		p.execute(*task)
	}
}

// pipeline bundles the services one dispatcher worker drives. Each
// worker owns its own instance.
type pipeline struct {
	reconciler *reconcileService.Reconciler
	resolver   *drService.Resolver
	exporter   *exportService.Exporter
	recorder   *activityService.Recorder
	now        func() time.Time
}

func newPipeline() *pipeline {

	reconciler := reconcileService.NewReconciler()
	return &pipeline{
		reconciler: reconciler,
		resolver:   drService.NewResolver(reconciler),
		exporter:   exportService.NewExporter(),
		recorder:   activityService.NewRecorder(),
		now:        time.Now,
	}
}

func (p *pipeline) execute(task taskModel.WorkerTask) {

	logger := log.GetLogger()
	started := p.now().UTC()
	summary := &taskModel.RunSummary{TaskID: task.TaskID}

	var err error
	switch task.Kind {
	case taskModel.KindFullImport:
		err = p.runImport(task, summary, false)
	case taskModel.KindDeltaImport:
		err = p.runImport(task, summary, true)
	case taskModel.KindExport:
		err = p.runExport(task, summary)
	case taskModel.KindDeleteConnectedSystem:
		err = p.runDeleteConnectedSystem(task, summary)
	case taskModel.KindDeletionSweep:
		err = p.runDeletionSweep(task, summary)
	default:
		err = errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.TASK_EXECUTION.Code,
			Message:     errors2.TASK_EXECUTION.Message,
			Description: fmt.Sprintf("Unknown task kind: %s", task.Kind),
		}, nil)
	}

	finished := p.now().UTC()
	status := string(taskModel.TaskCompleted)
	reason := ""
	if err != nil {
		status = string(taskModel.TaskFailed)
		reason = err.Error()
		logger.Error(fmt.Sprintf("Task %s (%s) failed: %v", task.TaskID, task.Kind, err))
		if storeErr := taskStore.FailTask(task.TaskID, finished, reason); storeErr != nil {
			logger.Error(fmt.Sprintf("Failed to mark task %s as failed: %v", task.TaskID, storeErr))
		}
	} else {
		logger.Info(fmt.Sprintf("Task %s (%s) completed: %d creates, %d updates, %d deletes, %d unchanged, %d errors",
			task.TaskID, task.Kind, summary.Creates, summary.Updates, summary.Deletes, summary.NoChange, summary.Errors))
		if storeErr := taskStore.CompleteTask(task.TaskID, finished); storeErr != nil {
			logger.Error(fmt.Sprintf("Failed to mark task %s as completed: %v", task.TaskID, storeErr))
		}
	}

	p.recorder.Flush(activityModel.RunRecord{
		TaskID:        task.TaskID,
		Kind:          string(task.Kind),
		SystemID:      task.Params.SystemID,
		Status:        status,
		FailureReason: reason,
		Creates:       summary.Creates,
		Updates:       summary.Updates,
		Deletes:       summary.Deletes,
		NoChange:      summary.NoChange,
		Errors:        summary.Errors,
		StartedAt:     started,
		FinishedAt:    finished,
	})

	logger.Audit(log.AuditEvent{
		InitiatorID:   "sync-dispatcher",
		InitiatorType: log.InitiatorTypeSystem,
		TargetID:      task.TaskID,
		TargetType:    log.TargetTypeWorkerTask,
		ActionID:      auditActionForKind(task.Kind),
		Data:          summary,
	})
}

func auditActionForKind(kind taskModel.TaskKind) string {

	switch kind {
	case taskModel.KindFullImport:
		return log.ActionFullImportRun
	case taskModel.KindDeltaImport:
		return log.ActionDeltaImportRun
	case taskModel.KindExport:
		return log.ActionExportRun
	case taskModel.KindDeleteConnectedSystem:
		return log.ActionDeleteConnected
	case taskModel.KindDeletionSweep:
		return log.ActionDeletionSweep
	default:
		return string(kind)
	}
}

// runImport drives a full or delta import from the system's connector.
// Full imports additionally retire connected objects the stream no
// longer carries; delta imports rely on explicit deletion markers.
func (p *pipeline) runImport(task taskModel.WorkerTask, summary *taskModel.RunSummary, delta bool) error {

	conn, err := connector.Get(task.Params.SystemID)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var objects <-chan connector.ImportedObject
	var errs <-chan error
	if delta {
		objects, errs = conn.DeltaImport(ctx)
	} else {
		objects, errs = conn.FullImport(ctx)
	}

	seen := make(map[string]bool)
	for imported := range objects {
		if imported.Deleted {
			p.removeImported(task, imported, summary)
			continue
		}
		seen[importKey(imported.TypeID, imported.ExternalID)] = true
		p.absorbImported(task, imported, summary)
	}
	if streamErr := <-errs; streamErr != nil {
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.TASK_EXECUTION.Code,
			Message:     errors2.TASK_EXECUTION.Message,
			Description: fmt.Sprintf("Import stream for system %s failed", task.Params.SystemID),
		}, streamErr)
	}

	if !delta {
		p.retireMissing(task, seen, summary)
	}
	return nil
}

func importKey(typeID, externalID string) string {

	return typeID + "/" + externalID
}

// absorbImported persists one imported object, settles any exports it
// confirms and reconciles it into the metaverse.
func (p *pipeline) absorbImported(task taskModel.WorkerTask, imported connector.ImportedObject,
	summary *taskModel.RunSummary) {

	logger := log.GetLogger()
	systemID := task.Params.SystemID

	existing, err := csStore.GetConnectedObjectByExternalID(systemID, imported.TypeID, imported.ExternalID)
	if err != nil {
		summary.Errors++
		p.recorder.RecordItem(task.TaskID, "", "", "error", err.Error())
		logger.Error(fmt.Sprintf("Failed to look up object %s/%s: %v", imported.TypeID, imported.ExternalID, err))
		return
	}

	object := model.ConnectedObject{
		ObjectID:            uuid.NewString(),
		SystemID:            systemID,
		TypeID:              imported.TypeID,
		ExternalID:          imported.ExternalID,
		SecondaryExternalID: imported.SecondaryExternalID,
		Attributes:          imported.Attributes,
		LastImportedAt:      p.now().UTC(),
	}
	if existing != nil {
		object.ObjectID = existing.ObjectID
		object.MvoID = existing.MvoID
	}
	if err := csStore.UpsertConnectedObject(object); err != nil {
		summary.Errors++
		p.recorder.RecordItem(task.TaskID, object.ObjectID, "", "error", err.Error())
		logger.Error(fmt.Sprintf("Failed to store object %s: %v", object.ObjectID, err))
		return
	}

	if _, err := p.exporter.ConfirmImported(object); err != nil {
		logger.Warn(fmt.Sprintf("Export confirmation for object %s failed: %v", object.ObjectID, err))
	}

	result, err := p.reconciler.ReconcileObject(object)
	if err != nil {
		summary.Errors++
		p.recorder.RecordItem(task.TaskID, object.ObjectID, "", "error", err.Error())
		logger.Error(fmt.Sprintf("Reconciliation of object %s failed: %v", object.ObjectID, err))
		return
	}

	switch result.Action {
	case reconcileService.ActionProjected:
		summary.Creates++
	case reconcileService.ActionJoined, reconcileService.ActionUpdated, reconcileService.ActionDisconnected:
		summary.Updates++
	default:
		summary.NoChange++
	}
	p.recorder.RecordItem(task.TaskID, object.ObjectID, result.MvoID, string(result.Action), "")

	// A newly reachable object may be the target other objects deferred
	// references against.
	if result.MvoID != "" {
		ids := []string{object.ExternalID}
		if object.SecondaryExternalID != "" {
			ids = append(ids, object.SecondaryExternalID)
		}
		if _, err := p.resolver.ResolveFor(ids...); err != nil {
			logger.Warn(fmt.Sprintf("Deferred reference replay for object %s failed: %v", object.ObjectID, err))
		}
	}
}

// removeImported handles a delta import deletion marker.
func (p *pipeline) removeImported(task taskModel.WorkerTask, imported connector.ImportedObject,
	summary *taskModel.RunSummary) {

	existing, err := csStore.GetConnectedObjectByExternalID(task.Params.SystemID, imported.TypeID, imported.ExternalID)
	if err != nil {
		summary.Errors++
		p.recorder.RecordItem(task.TaskID, "", "", "error", err.Error())
		log.GetLogger().Error(fmt.Sprintf("Failed to look up deleted object %s/%s: %v",
			imported.TypeID, imported.ExternalID, err))
		return
	}
	if existing == nil {
		summary.NoChange++
		p.recorder.RecordItem(task.TaskID, "", "", "no_change", "object already absent")
		return
	}
	p.retireObject(task, *existing, summary)
}

// retireMissing retires connected objects of the system that a full
// import no longer reported.
func (p *pipeline) retireMissing(task taskModel.WorkerTask, seen map[string]bool,
	summary *taskModel.RunSummary) {

	objects, err := csStore.GetConnectedObjectsBySystem(task.Params.SystemID)
	if err != nil {
		summary.Errors++
		log.GetLogger().Error(fmt.Sprintf("Failed to scan system %s for obsolete objects: %v",
			task.Params.SystemID, err))
		return
	}
	for _, object := range objects {
		if seen[importKey(object.TypeID, object.ExternalID)] {
			continue
		}
		p.retireObject(task, object, summary)
	}
}

// retireObject removes a connected object that vanished from its
// source: disconnect from the metaverse, drop its export queue, delete
// the snapshot and let the deletion rule decide the metaverse object's
// fate.
func (p *pipeline) retireObject(task taskModel.WorkerTask, object model.ConnectedObject,
	summary *taskModel.RunSummary) {

	logger := log.GetLogger()
	mvoID := object.MvoID

	if object.IsLinked() {
		if _, err := p.reconciler.Disconnect(object); err != nil {
			summary.Errors++
			p.recorder.RecordItem(task.TaskID, object.ObjectID, mvoID, "error", err.Error())
			logger.Error(fmt.Sprintf("Failed to disconnect object %s: %v", object.ObjectID, err))
			return
		}
	}
	if err := exportStore.DeleteChangesForObject(object.ObjectID); err != nil {
		logger.Warn(fmt.Sprintf("Failed to drop export queue of object %s: %v", object.ObjectID, err))
	}
	if err := csStore.DeleteConnectedObject(object.ObjectID); err != nil {
		summary.Errors++
		p.recorder.RecordItem(task.TaskID, object.ObjectID, mvoID, "error", err.Error())
		logger.Error(fmt.Sprintf("Failed to delete object %s: %v", object.ObjectID, err))
		return
	}
	summary.Deletes++
	p.recorder.RecordItem(task.TaskID, object.ObjectID, mvoID, "removed", "")

	if mvoID != "" {
		if err := p.applyDeletionRule(task, mvoID, object.SystemID, summary); err != nil {
			summary.Errors++
			logger.Error(fmt.Sprintf("Deletion rule evaluation for metaverse object %s failed: %v", mvoID, err))
		}
	}
}

// applyDeletionRule evaluates the metaverse type's deletion rule after
// a connected object from systemID disconnected.
func (p *pipeline) applyDeletionRule(task taskModel.WorkerTask, mvoID, systemID string,
	summary *taskModel.RunSummary) error {

	mvo, err := mvStore.GetMetaverseObject(mvoID)
	if err != nil {
		return err
	}
	if mvo == nil || mvo.Status == mvModel.StatusDeleted {
		return nil
	}
	objectType, err := mvStore.GetObjectType(mvo.TypeID)
	if err != nil {
		return err
	}
	if objectType == nil {
		return nil
	}
	remaining, err := csStore.CountLinkedObjects(mvoID)
	if err != nil {
		return err
	}

	now := p.now().UTC()
	decision := deletionService.EvaluateDisconnect(*objectType, systemID, remaining, now)
	switch decision.Action {
	case deletionService.ActionSchedule:
		if err := mvStore.ScheduleMetaverseDeletion(mvoID, decision.ScheduledAt, now); err != nil {
			return err
		}
		log.GetLogger().Audit(log.AuditEvent{
			InitiatorID:   "sync-dispatcher",
			InitiatorType: log.InitiatorTypeSystem,
			TargetID:      mvoID,
			TargetType:    log.TargetTypeMetaverseObject,
			ActionID:      log.ActionScheduleDeletion,
			Data:          map[string]interface{}{"scheduled_at": decision.ScheduledAt},
		})
		return nil
	case deletionService.ActionDelete:
		return p.deleteMvo(task, *mvo, summary)
	default:
		return nil
	}
}

// deleteMvo deprovisions the still-linked connected objects per their
// outbound sync rules, unlinks them and tombstones the metaverse object.
func (p *pipeline) deleteMvo(task taskModel.WorkerTask, mvo mvModel.MetaverseObject,
	summary *taskModel.RunSummary) error {

	logger := log.GetLogger()
	linked, err := csStore.GetConnectedObjectsByMvo(mvo.MvoID)
	if err != nil {
		return err
	}

	now := p.now().UTC()
	for _, object := range linked {
		rules, err := syncStore.GetSyncRulesForSystemType(object.SystemID, mvo.TypeID)
		if err != nil {
			return err
		}
		if deletionService.DeprovisionActionFor(rules, object.SystemID) == syncModel.DeprovisionRequestDelete {
			change := exportModel.PendingChange{
				ChangeID:      uuid.NewString(),
				ObjectID:      object.ObjectID,
				SystemID:      object.SystemID,
				Status:        exportModel.StatusPending,
				DeleteRequest: true,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := exportStore.AddPendingChange(change); err != nil {
				return err
			}
			logger.Audit(log.AuditEvent{
				InitiatorID:   "sync-dispatcher",
				InitiatorType: log.InitiatorTypeSystem,
				TargetID:      object.ObjectID,
				TargetType:    log.TargetTypeConnectedObject,
				ActionID:      log.ActionDeprovision,
				Data:          map[string]interface{}{"mvo_id": mvo.MvoID},
			})
		}
		if err := csStore.UnlinkConnectedObject(object.ObjectID); err != nil {
			return err
		}
	}

	if err := mvStore.MarkMetaverseDeleted(mvo.MvoID, now); err != nil {
		return err
	}
	p.recorder.RecordItem(task.TaskID, "", mvo.MvoID, "mvo_deleted", "")
	logger.Audit(log.AuditEvent{
		InitiatorID:   "sync-dispatcher",
		InitiatorType: log.InitiatorTypeSystem,
		TargetID:      mvo.MvoID,
		TargetType:    log.TargetTypeMetaverseObject,
		ActionID:      log.ActionDeleteMvo,
	})
	return nil
}

func (p *pipeline) runExport(task taskModel.WorkerTask, summary *taskModel.RunSummary) error {

	stats, err := p.exporter.DispatchPending(context.Background(), task.Params.SystemID)
	if err != nil {
		return err
	}
	summary.Updates += stats.Delivered
	summary.Errors += stats.Failed + stats.Abandoned
	log.GetLogger().Info(fmt.Sprintf("Export run for system %s: %d delivered, %d failed, %d abandoned",
		task.Params.SystemID, stats.Delivered, stats.Failed, stats.Abandoned))
	return nil
}

// runDeleteConnectedSystem tears a connected system down: disconnect
// every object, optionally run the metaverse deletion rules for the
// objects they were linked to, then remove the snapshots and the system
// itself.
func (p *pipeline) runDeleteConnectedSystem(task taskModel.WorkerTask, summary *taskModel.RunSummary) error {

	logger := log.GetLogger()
	systemID := task.Params.SystemID

	objects, err := csStore.GetConnectedObjectsBySystem(systemID)
	if err != nil {
		return err
	}
	for _, object := range objects {
		mvoID := object.MvoID
		if object.IsLinked() {
			if _, err := p.reconciler.Disconnect(object); err != nil {
				summary.Errors++
				p.recorder.RecordItem(task.TaskID, object.ObjectID, mvoID, "error", err.Error())
				logger.Error(fmt.Sprintf("Failed to disconnect object %s: %v", object.ObjectID, err))
				continue
			}
			if task.Params.EvaluateMvoDeletionRules {
				if err := p.applyDeletionRule(task, mvoID, systemID, summary); err != nil {
					summary.Errors++
					logger.Error(fmt.Sprintf("Deletion rule evaluation for metaverse object %s failed: %v",
						mvoID, err))
				}
			}
		}
		if err := exportStore.DeleteChangesForObject(object.ObjectID); err != nil {
			logger.Warn(fmt.Sprintf("Failed to drop export queue of object %s: %v", object.ObjectID, err))
		}
		summary.Deletes++
		p.recorder.RecordItem(task.TaskID, object.ObjectID, mvoID, "removed", "")
	}

	if err := csStore.DeleteConnectedObjectsBySystem(systemID); err != nil {
		return err
	}
	if err := csStore.DeleteConnectedSystem(systemID); err != nil {
		return err
	}
	connector.Unregister(systemID)
	return nil
}

// runDeletionSweep tombstones metaverse objects whose scheduled
// deletion time has passed.
func (p *pipeline) runDeletionSweep(task taskModel.WorkerTask, summary *taskModel.RunSummary) error {

	now := p.now().UTC()
	due, err := mvStore.GetExpiredScheduledObjects(now)
	if err != nil {
		return err
	}
	for _, mvo := range due {
		if !deletionService.SweepDue(mvo, now) {
			continue
		}
		if err := p.deleteMvo(task, mvo, summary); err != nil {
			summary.Errors++
			p.recorder.RecordItem(task.TaskID, "", mvo.MvoID, "error", err.Error())
			log.GetLogger().Error(fmt.Sprintf("Failed to delete metaverse object %s: %v", mvo.MvoID, err))
			continue
		}
		summary.Deletes++
	}
	return nil
}
