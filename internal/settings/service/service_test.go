package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zkvault/internal/settings/models"
	"zkvault/internal/settings/store"
	dErrors "zkvault/pkg/domain-errors"
)

func ptr[T any](v T) *T { return &v }

func TestService(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults before first save", func(t *testing.T) {
		got, err := New(store.NewInMemoryStore()).Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.Settings{AutoApprove: false, ExpiryDays: 30}, got)
	})

	t.Run("partial update keeps other fields", func(t *testing.T) {
		svc := New(store.NewInMemoryStore())
		_, err := svc.Update(ctx, models.Patch{ExpiryDays: ptr(90)})
		require.NoError(t, err)
		got, err := svc.Update(ctx, models.Patch{AutoApprove: ptr(true)})
		require.NoError(t, err)
		assert.Equal(t, models.Settings{AutoApprove: true, ExpiryDays: 90}, got)
	})

	t.Run("expiry bounds", func(t *testing.T) {
		svc := New(store.NewInMemoryStore())
		for _, days := range []int{0, 366, -1} {
			_, err := svc.Update(ctx, models.Patch{ExpiryDays: ptr(days)})
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), "days=%d", days)
		}
		for _, days := range []int{1, 365} {
			_, err := svc.Update(ctx, models.Patch{ExpiryDays: ptr(days)})
			assert.NoError(t, err, "days=%d", days)
		}
	})
}

func TestFileWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"expiryDays": 7}`), 0o600))

	svc := New(store.NewInMemoryStore())
	w := NewFileWatcher(path, svc, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	assert.Eventually(t, func() bool {
		s, err := svc.Get(context.Background())
		return err == nil && s.ExpiryDays == 7
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(`{"autoApprove": true}`), 0o600))

	assert.Eventually(t, func() bool {
		s, err := svc.Get(context.Background())
		return err == nil && s.AutoApprove && s.ExpiryDays == 7
	}, 5*time.Second, 20*time.Millisecond)
}

func TestFileWatcherApplyRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"expiryDays": 1000}`), 0o600))

	svc := New(store.NewInMemoryStore())
	err := NewFileWatcher(path, svc, nil).Apply(context.Background())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	got, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Default(), got)
}
