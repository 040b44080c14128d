package services

import (
	"context"
	"testing"
	"time"

	"github.com/elchascon/botilleria/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createWorker(t *testing.T, db *gorm.DB, name, base string, active bool) models.Worker {
	t.Helper()
	w := models.Worker{Name: name, BaseShift: base, Active: true}
	require.NoError(t, db.Create(&w).Error)
	if !active {
		require.NoError(t, db.Model(&models.Worker{}).Where("id = ?", w.ID).Update("active", false).Error)
		w.Active = false
	}
	return w
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestShift_GetOrCreateActiveReusesTodaysShift(t *testing.T) {
	db := newDB(t)
	w := createWorker(t, db, "Pedro", models.ShiftNight, true)

	start := time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC)
	svc := NewShiftService(db)
	svc.loc = time.UTC
	svc.WithClock(fixedClock(start))

	first, err := svc.GetOrCreateActive(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-14", first.Date)
	assert.Equal(t, models.ShiftNight, first.ShiftType)
	assert.True(t, first.Active)
	assert.True(t, start.Equal(first.StartedAt))
	require.NotNil(t, first.Worker)
	assert.Equal(t, "Pedro", first.Worker.Name)

	svc.WithClock(fixedClock(start.Add(90 * time.Minute)))
	again, err := svc.GetOrCreateActive(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, int64(1), count(t, db, &models.Shift{}))
}

func TestShift_NewDayNewShift(t *testing.T) {
	db := newDB(t)
	w := createWorker(t, db, "Camila", models.ShiftDay, true)

	svc := NewShiftService(db)
	svc.loc = time.UTC
	svc.WithClock(fixedClock(time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)))
	monday, err := svc.GetOrCreateActive(context.Background(), w.ID)
	require.NoError(t, err)

	svc.WithClock(fixedClock(time.Date(2026, 3, 15, 11, 0, 0, 0, time.UTC)))
	tuesday, err := svc.GetOrCreateActive(context.Background(), w.ID)
	require.NoError(t, err)

	assert.NotEqual(t, monday.ID, tuesday.ID)
	assert.Equal(t, "2026-03-15", tuesday.Date)
}

func TestShift_DayFollowsStoreTimezone(t *testing.T) {
	loc := time.FixedZone("CLT", -3*3600)
	svc := &ShiftService{loc: loc, now: fixedClock(time.Date(2026, 3, 15, 2, 30, 0, 0, time.UTC))}
	assert.Equal(t, "2026-03-14", svc.Today())
}

func TestShift_CloseThenReopen(t *testing.T) {
	db := newDB(t)
	w := createWorker(t, db, "Pedro", models.ShiftDay, true)
	ctx := context.Background()

	svc := NewShiftService(db)
	svc.loc = time.UTC
	end := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	svc.WithClock(fixedClock(time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)))

	sh, err := svc.GetOrCreateActive(ctx, w.ID)
	require.NoError(t, err)

	svc.WithClock(fixedClock(end))
	closed, err := svc.Close(ctx, sh.ID)
	require.NoError(t, err)
	assert.False(t, closed.Active)
	require.NotNil(t, closed.EndedAt)
	assert.True(t, end.Equal(*closed.EndedAt))

	_, err = svc.Close(ctx, sh.ID)
	assert.ErrorIs(t, err, ErrShiftNotActive)

	reopened, err := svc.GetOrCreateActive(ctx, w.ID)
	require.NoError(t, err)
	assert.NotEqual(t, sh.ID, reopened.ID, "a closed shift is not reused")
}

func TestShift_Errors(t *testing.T) {
	db := newDB(t)
	svc := NewShiftService(db)
	ctx := context.Background()

	_, err := svc.GetOrCreateActive(ctx, 99)
	assert.ErrorIs(t, err, ErrWorkerNotFound)

	gone := createWorker(t, db, "Ex", models.ShiftDay, false)
	_, err = svc.GetOrCreateActive(ctx, gone.ID)
	assert.ErrorIs(t, err, ErrWorkerInactive)

	_, err = svc.Close(ctx, 12345)
	assert.ErrorIs(t, err, ErrShiftNotFound)
}

func TestShift_ActiveWorkers(t *testing.T) {
	db := newDB(t)
	createWorker(t, db, "Zoe", models.ShiftDay, true)
	createWorker(t, db, "Ana", models.ShiftNight, true)
	createWorker(t, db, "Ex", models.ShiftDay, false)

	ws, err := NewShiftService(db).ActiveWorkers(context.Background())
	require.NoError(t, err)
	require.Len(t, ws, 2)
	assert.Equal(t, "Ana", ws[0].Name)
	assert.Equal(t, "Zoe", ws[1].Name)
}
