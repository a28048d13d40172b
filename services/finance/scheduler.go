package finance

import (
	"shulebook_go/config"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReconcileScheduler runs the reconciliation pass on a cron schedule.
// SyncAll is idempotent, so overlapping or repeated runs are harmless.
type ReconcileScheduler struct {
	cron *cron.Cron
	svc  *ReconcileService
}

func NewReconcileScheduler() *ReconcileScheduler {
	return &ReconcileScheduler{
		cron: cron.New(),
		svc:  NewReconcileService(),
	}
}

// Start registers the nightly job and launches the cron loop.
func (rs *ReconcileScheduler) Start() {
	spec := config.AppConfig.ReconcileCronSpec
	_, err := rs.cron.AddFunc(spec, func() {
		corrected, err := rs.svc.SyncAll()
		if err != nil {
			logrus.WithError(err).Error("scheduled reconciliation failed")
			return
		}
		logrus.WithField("corrected", corrected).Info("scheduled reconciliation completed")
	})
	if err != nil {
		logrus.WithError(err).Errorf("invalid reconcile cron spec %q, scheduler disabled", spec)
		return
	}

	rs.cron.Start()
	logrus.WithField("spec", spec).Info("reconciliation scheduler started")
}

// Stop halts the cron loop; a running job finishes first.
func (rs *ReconcileScheduler) Stop() {
	if rs.cron != nil {
		ctx := rs.cron.Stop()
		<-ctx.Done()
	}
}
