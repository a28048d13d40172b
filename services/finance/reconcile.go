package finance

import (
	"shulebook_go/database"
	"shulebook_go/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReconcileService re-derives cached invoice fields from source rows.
// Out-of-band writes (imports, manual SQL fixes) can leave the cached
// totals stale; this pass brings them back in line.
type ReconcileService struct {
	db *gorm.DB
}

func NewReconcileService() *ReconcileService {
	return &ReconcileService{db: database.GetDB()}
}

// SyncAll recomputes every invoice and returns how many needed correcting.
// Each invoice commits in its own transaction, so a failure on one leaves
// the rest untouched and the job can simply be re-run. Running it twice in
// a row corrects nothing the second time.
func (s *ReconcileService) SyncAll() (int, error) {
	var ids []uint
	if err := s.db.Model(&models.Invoice{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return 0, err
	}

	corrected := 0
	failed := 0
	for _, id := range ids {
		changed, err := s.syncOne(id)
		if err != nil {
			failed++
			logrus.WithError(err).WithField("invoice_id", id).Warn("reconciliation failed for invoice")
			continue
		}
		if changed {
			corrected++
		}
	}

	logrus.WithFields(logrus.Fields{
		"invoices":  len(ids),
		"corrected": corrected,
		"failed":    failed,
	}).Info("ledger reconciliation finished")

	return corrected, nil
}

// syncOne recomputes a single invoice under its row lock. Either the full
// recomputation commits or the invoice is left as it was.
func (s *ReconcileService) syncOne(id uint) (bool, error) {
	changed := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&inv, id).Error; err != nil {
			return err
		}

		var err error
		changed, err = recomputeInvoice(tx, &inv)
		return err
	})
	return changed, err
}
