package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/giftcraft/ingest/app/models"
	"github.com/giftcraft/ingest/internal/pkg/env"
	"github.com/giftcraft/ingest/internal/pkg/webhook"
)

// openTestDB connects to TEST_MYSQL_DSN or skips. The DSN must carry
// clientFoundRows=true, like the production one.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := env.GetEnv("TEST_MYSQL_DSN", "")
	if dsn == "" {
		t.Skip("Skipping MySQL-dependent test: TEST_MYSQL_DSN not set")
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Skipf("Skipping MySQL-dependent test: %v", err)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		t.Skipf("Skipping MySQL-dependent test: %v", err)
	}

	require.NoError(t, db.Migrator().DropTable(&models.Invoice{}, &models.Subscription{}))
	require.NoError(t, db.AutoMigrate(&models.Subscription{}, &models.Invoice{}))
	t.Cleanup(func() {
		_ = db.Migrator().DropTable(&models.Invoice{}, &models.Subscription{})
		_ = sqlDB.Close()
	})
	return db
}

func TestGormRepository_TransitionAndInvoice(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	sub := models.Subscription{ExternalSubscriptionID: "sub_it", Status: models.SubscriptionStatusActive, PlanAmountMinor: 100, Currency: "INR"}
	require.NoError(t, db.Create(&sub).Error)

	repo := NewRepository(db)
	found, err := repo.FindByExternalID(ctx, "sub_it")
	require.NoError(t, err)
	assert.Equal(t, sub.ID, found.ID)

	_, err = repo.FindByExternalID(ctx, "missing")
	assert.ErrorIs(t, err, webhook.ErrEntityNotFound)

	upd := SubscriptionUpdate{Status: models.SubscriptionStatusCharged, SyncPeriod: true, PaidCount: 1}
	ok, err := repo.ApplyTransition(ctx, sub.ID, upd, AllowedPredecessors(upd.Status))
	require.NoError(t, err)
	assert.True(t, ok)

	// identical re-application is still reported as written
	ok, err = repo.ApplyTransition(ctx, sub.ID, upd, AllowedPredecessors(upd.Status))
	require.NoError(t, err)
	assert.True(t, ok)

	newer := SubscriptionUpdate{Status: models.SubscriptionStatusCharged, SyncPeriod: true, PaidCount: 4}
	ok, err = repo.ApplyTransition(ctx, sub.ID, newer, AllowedPredecessors(newer.Status))
	require.NoError(t, err)
	assert.True(t, ok)

	older := SubscriptionUpdate{Status: models.SubscriptionStatusCharged, SyncPeriod: true, PaidCount: 3}
	ok, err = repo.ApplyTransition(ctx, sub.ID, older, AllowedPredecessors(older.Status))
	require.NoError(t, err)
	assert.False(t, ok)
	var stored models.Subscription
	require.NoError(t, db.First(&stored, sub.ID).Error)
	assert.Equal(t, 4, stored.PaidCount)

	ok, err = repo.ApplyTransition(ctx, sub.ID, SubscriptionUpdate{Status: models.SubscriptionStatusPending}, AllowedPredecessors(models.SubscriptionStatusPending))
	require.NoError(t, err)
	assert.False(t, ok)

	for i := 0; i < 2; i++ {
		inv := &models.Invoice{SubscriptionID: sub.ID, ExternalInvoiceID: "inv_1", ExternalPaymentID: "pay_1", AmountMinor: 100, Currency: "INR", Status: models.InvoiceStatusPaid}
		require.NoError(t, repo.UpsertInvoice(ctx, inv))
	}
	var count int64
	require.NoError(t, db.Model(&models.Invoice{}).Where("subscription_id = ?", sub.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
