package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/easel/pkg/adapters/memory"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/ports"
	"github.com/aretw0/easel/pkg/session"
)

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("open then save", func(t *testing.T) {
		mgr := session.NewManager("checkout", memory.NewStore())

		sess, err := mgr.Open(ctx, "add cache tier", "wip")
		require.NoError(t, err)
		assert.NotEmpty(t, sess.ID)
		assert.Equal(t, "add cache tier", sess.Name)
		assert.Equal(t, domain.EditSessionOpen, sess.Status)
		assert.Equal(t, "checkout", sess.DiagramID)
		assert.True(t, mgr.EditingActive())

		current, err := mgr.CurrentSession(ctx)
		require.NoError(t, err)
		require.NotNil(t, current)
		assert.Equal(t, sess.ID, current.ID)

		saved, err := mgr.Save(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.EditSessionSaved, saved.Status)
		assert.False(t, mgr.EditingActive())

		// The closed session stays readable as the current one.
		current, err = mgr.CurrentSession(ctx)
		require.NoError(t, err)
		require.NotNil(t, current)
		assert.Equal(t, domain.EditSessionSaved, current.Status)
	})

	t.Run("no session before first open", func(t *testing.T) {
		mgr := session.NewManager("checkout", memory.NewStore())

		current, err := mgr.CurrentSession(ctx)
		require.NoError(t, err)
		assert.Nil(t, current)
		assert.False(t, mgr.EditingActive())
	})

	t.Run("open while open fails", func(t *testing.T) {
		mgr := session.NewManager("checkout", memory.NewStore())

		_, err := mgr.Open(ctx, "first", "")
		require.NoError(t, err)

		_, err = mgr.Open(ctx, "second", "")
		assert.ErrorIs(t, err, domain.ErrSessionActive)
	})

	t.Run("save without session fails", func(t *testing.T) {
		mgr := session.NewManager("checkout", memory.NewStore())

		_, err := mgr.Save(ctx)
		assert.ErrorIs(t, err, domain.ErrNoEditSession)
		_, err = mgr.Cancel(ctx)
		assert.ErrorIs(t, err, domain.ErrNoEditSession)
	})

	t.Run("cancel closes the session", func(t *testing.T) {
		store := memory.NewStore()
		mgr := session.NewManager("checkout", store)

		sess, err := mgr.Open(ctx, "abandoned", "")
		require.NoError(t, err)

		canceled, err := mgr.Cancel(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.EditSessionCanceled, canceled.Status)
		assert.False(t, mgr.EditingActive())

		// The store keeps the canceled session for the audit trail.
		stored, err := store.Load(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.EditSessionCanceled, stored.Status)
	})

	t.Run("current session is a copy", func(t *testing.T) {
		mgr := session.NewManager("checkout", memory.NewStore())

		_, err := mgr.Open(ctx, "wip", "")
		require.NoError(t, err)

		current, err := mgr.CurrentSession(ctx)
		require.NoError(t, err)
		current.Status = domain.EditSessionCanceled

		assert.True(t, mgr.EditingActive())
	})
}

func TestManagerResume(t *testing.T) {
	ctx := context.Background()

	t.Run("saved session resumes", func(t *testing.T) {
		mgr := session.NewManager("checkout", memory.NewStore())

		sess, err := mgr.Open(ctx, "draft", "")
		require.NoError(t, err)
		_, err = mgr.Save(ctx)
		require.NoError(t, err)

		resumed, err := mgr.Resume(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, sess.ID, resumed.ID)
		assert.Equal(t, domain.EditSessionOpen, resumed.Status)
		assert.True(t, mgr.EditingActive())
	})

	t.Run("canceled session does not resume", func(t *testing.T) {
		mgr := session.NewManager("checkout", memory.NewStore())

		sess, err := mgr.Open(ctx, "abandoned", "")
		require.NoError(t, err)
		_, err = mgr.Cancel(ctx)
		require.NoError(t, err)

		_, err = mgr.Resume(ctx, sess.ID)
		assert.ErrorIs(t, err, domain.ErrSessionClosed)
		assert.False(t, mgr.EditingActive())
	})

	t.Run("unknown session does not resume", func(t *testing.T) {
		mgr := session.NewManager("checkout", memory.NewStore())

		_, err := mgr.Resume(ctx, "no-such-session")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("resume blocked while another session is open", func(t *testing.T) {
		mgr := session.NewManager("checkout", memory.NewStore())

		first, err := mgr.Open(ctx, "first", "")
		require.NoError(t, err)
		_, err = mgr.Save(ctx)
		require.NoError(t, err)
		_, err = mgr.Open(ctx, "second", "")
		require.NoError(t, err)

		_, err = mgr.Resume(ctx, first.ID)
		assert.ErrorIs(t, err, domain.ErrSessionActive)
	})
}

func TestManagerLocking(t *testing.T) {
	ctx := context.Background()

	t.Run("second editor fails fast", func(t *testing.T) {
		store := memory.NewStore()
		locker := memory.NewLocker()
		alice := session.NewManager("checkout", store, session.WithLocker(locker))
		bob := session.NewManager("checkout", store, session.WithLocker(locker))

		_, err := alice.Open(ctx, "alice edits", "")
		require.NoError(t, err)

		_, err = bob.Open(ctx, "bob edits", "")
		assert.ErrorIs(t, err, ports.ErrLockHeld)
		assert.False(t, bob.EditingActive())
	})

	t.Run("closing releases the lock", func(t *testing.T) {
		store := memory.NewStore()
		locker := memory.NewLocker()
		alice := session.NewManager("checkout", store, session.WithLocker(locker))
		bob := session.NewManager("checkout", store, session.WithLocker(locker))

		_, err := alice.Open(ctx, "alice edits", "")
		require.NoError(t, err)
		_, err = alice.Save(ctx)
		require.NoError(t, err)

		_, err = bob.Open(ctx, "bob edits", "")
		assert.NoError(t, err)
	})

	t.Run("different diagrams do not contend", func(t *testing.T) {
		locker := memory.NewLocker()
		checkout := session.NewManager("checkout", memory.NewStore(), session.WithLocker(locker))
		billing := session.NewManager("billing", memory.NewStore(), session.WithLocker(locker))

		_, err := checkout.Open(ctx, "checkout edits", "")
		require.NoError(t, err)

		_, err = billing.Open(ctx, "billing edits", "")
		assert.NoError(t, err)
	})
}

func TestManagerList(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager("checkout", memory.NewStore())

	open := func(name string) string {
		t.Helper()
		sess, err := mgr.Open(ctx, name, "")
		require.NoError(t, err)
		return sess.ID
	}

	first := open("first")
	_, err := mgr.Save(ctx)
	require.NoError(t, err)
	second := open("second")
	_, err = mgr.Cancel(ctx)
	require.NoError(t, err)
	third := open("third")
	_, err = mgr.Save(ctx)
	require.NoError(t, err)

	sessions, err := mgr.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, []string{first, second, third}, []string{sessions[0].ID, sessions[1].ID, sessions[2].ID})
	assert.Equal(t, domain.EditSessionSaved, sessions[0].Status)
	assert.Equal(t, domain.EditSessionCanceled, sessions[1].Status)
	assert.Equal(t, domain.EditSessionSaved, sessions[2].Status)
}
