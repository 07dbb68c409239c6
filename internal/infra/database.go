package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"andespos/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// and applies the SQL objects GORM cannot express (sequences for the
// correlative sale and credit note numbering).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := db.AutoMigrate(
		&model.User{},
		&model.Client{},
		&model.BankAccount{},
		&model.CashSession{},
		&model.SessionBankBalance{},
		&model.Movement{},
		&model.Sale{},
		&model.SaleItem{},
		&model.PaymentEntry{},
		&model.PaymentAllocation{},
		&model.ClientWallet{},
		&model.WalletEntry{},
		&model.CreditNote{},
		&model.CreditNoteItem{},
		&model.RefundDetail{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	// Correlative document numbers come from sequences so that concurrent
	// transactions never collide
	patches := []string{
		`CREATE SEQUENCE IF NOT EXISTS sale_number_seq START 1`,
		`CREATE SEQUENCE IF NOT EXISTS credit_note_number_seq START 1`,
		// At most one open session per branch, enforced at the database
		// level as the last line of defense
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_open_session_per_branch
		   ON cash_sessions (branch_id) WHERE status = 'abierta'`,
	}
	for _, p := range patches {
		if err := db.Exec(p).Error; err != nil {
			return nil, fmt.Errorf("schema patch: %w", err)
		}
	}

	return db, nil
}
