package access

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/gamegate/internal/membership"
	"github.com/m3rciful/gamegate/internal/userstatus"
)

const (
	mainChan  membership.ChatRef = "@gamechannel"
	verifChan membership.ChatRef = "-1001234567890"
	adminID   int64              = 42
)

type memStore struct {
	rows   map[int64]userstatus.Status
	writes int
}

func newMemStore() *memStore { return &memStore{rows: map[int64]userstatus.Status{}} }

func (m *memStore) row(id int64) userstatus.Status {
	st, ok := m.rows[id]
	if !ok {
		st = userstatus.Status{UserID: id}
	}
	return st
}

func (m *memStore) Ensure(_ context.Context, id int64) error {
	m.rows[id] = m.row(id)
	return nil
}

func (m *memStore) SetSubscribed(_ context.Context, id int64, v bool) error {
	m.writes++
	st := m.row(id)
	st.Subscribed = v
	m.rows[id] = st
	return nil
}

func (m *memStore) SetVerified(_ context.Context, id int64, v bool) error {
	m.writes++
	st := m.row(id)
	st.VerifJoined = v
	m.rows[id] = st
	return nil
}

func (m *memStore) MarkRegistered(_ context.Context, id int64) error {
	m.writes++
	st := m.row(id)
	st.Registered = true
	m.rows[id] = st
	return nil
}

func (m *memStore) GetStatus(_ context.Context, id int64) (userstatus.Status, error) {
	return m.row(id), nil
}

type fakeChecker struct {
	member map[membership.ChatRef]bool
	fail   map[membership.ChatRef]error
	calls  []membership.ChatRef
}

func (f *fakeChecker) Check(_ context.Context, chat membership.ChatRef, _ int64) (membership.Result, error) {
	f.calls = append(f.calls, chat)
	if err := f.fail[chat]; err != nil {
		return membership.Result{}, err
	}
	return membership.Result{Chat: chat, Member: f.member[chat]}, nil
}

func newService(t *testing.T, store userstatus.Store, checker MembershipChecker) (*Service, *[]Level) {
	t.Helper()
	var levels []Level
	svc, err := NewService(Options{
		Store:    store,
		Checker:  checker,
		Channels: Channels{Main: mainChan, Verification: verifChan},
		Links: Links{
			StartWebApp:    "https://game.example/start",
			GameSlotWebApp: "https://game.example/slot",
			Subscribe:      "https://t.me/+invite",
			Support:        "https://t.me/discussion",
		},
		AdminID:    adminID,
		OnDecision: func(_ string, l Level) { levels = append(levels, l) },
	})
	require.NoError(t, err)
	return svc, &levels
}

func TestNewServiceValidates(t *testing.T) {
	_, err := NewService(Options{Checker: &fakeChecker{}, Channels: Channels{Main: mainChan, Verification: verifChan}})
	assert.Error(t, err)
	_, err = NewService(Options{Store: newMemStore(), Channels: Channels{Main: mainChan, Verification: verifChan}})
	assert.Error(t, err)
	_, err = NewService(Options{Store: newMemStore(), Checker: &fakeChecker{}, Channels: Channels{Main: mainChan}})
	assert.Error(t, err)
}

func TestStartLevels(t *testing.T) {
	ctx := context.Background()

	t.Run("full access", func(t *testing.T) {
		store := newMemStore()
		svc, levels := newService(t, store, &fakeChecker{member: map[membership.ChatRef]bool{mainChan: true, verifChan: true}})

		reply, err := svc.Start(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, TextAccessGranted, reply.Text)
		require.NotNil(t, reply.Button)
		assert.Equal(t, Button{Text: BtnOpenGame, URL: "https://game.example/start", WebApp: true}, *reply.Button)
		assert.Equal(t, userstatus.Status{UserID: 1, Subscribed: true, VerifJoined: true, Registered: true}, store.rows[1])
		assert.Equal(t, []Level{FullAccess}, *levels)
	})

	t.Run("partial", func(t *testing.T) {
		store := newMemStore()
		svc, _ := newService(t, store, &fakeChecker{member: map[membership.ChatRef]bool{mainChan: true}})

		reply, err := svc.Start(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, TextJoinDiscussion, reply.Text)
		require.NotNil(t, reply.Button)
		assert.Equal(t, Button{Text: BtnJoinDiscussion, URL: "https://t.me/discussion"}, *reply.Button)
		assert.False(t, store.rows[2].Registered)
	})

	t.Run("none even when verified", func(t *testing.T) {
		store := newMemStore()
		svc, _ := newService(t, store, &fakeChecker{member: map[membership.ChatRef]bool{verifChan: true}})

		reply, err := svc.Start(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, TextSubscribe, reply.Text)
		require.NotNil(t, reply.Button)
		assert.Equal(t, BtnSubscribe, reply.Button.Text)
		assert.Equal(t, userstatus.Status{UserID: 3, VerifJoined: true, Registered: true}, store.rows[3])
	})
}

func TestStartLookupFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	for _, failing := range []membership.ChatRef{mainChan, verifChan} {
		store := newMemStore()
		store.rows[5] = userstatus.Status{UserID: 5, Subscribed: true}
		checker := &fakeChecker{
			member: map[membership.ChatRef]bool{mainChan: true, verifChan: true},
			fail:   map[membership.ChatRef]error{failing: errors.New("chat not found")},
		}
		svc, levels := newService(t, store, checker)

		reply, err := svc.Start(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, Reply{Text: TextLookupFailed}, reply)
		assert.Zero(t, store.writes)
		assert.Equal(t, userstatus.Status{UserID: 5, Subscribed: true}, store.rows[5])
		assert.Empty(t, *levels)
	}
}

func TestGameSlot(t *testing.T) {
	ctx := context.Background()

	store := newMemStore()
	checker := &fakeChecker{member: map[membership.ChatRef]bool{verifChan: true}}
	svc, _ := newService(t, store, checker)
	reply, err := svc.GameSlot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, TextGameSlotGranted, reply.Text)
	require.NotNil(t, reply.Button)
	assert.Equal(t, "https://game.example/slot", reply.Button.URL)
	assert.Equal(t, []membership.ChatRef{verifChan}, checker.calls)
	assert.Zero(t, store.writes)

	svc, _ = newService(t, store, &fakeChecker{})
	reply, err = svc.GameSlot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, Reply{Text: TextGameSlotDenied}, reply)

	svc, _ = newService(t, store, &fakeChecker{fail: map[membership.ChatRef]error{verifChan: errors.New("boom")}})
	reply, err = svc.GameSlot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, Reply{Text: TextStatusFailed}, reply)
}

func TestTextTrigger(t *testing.T) {
	ctx := context.Background()

	t.Run("full access marks registered", func(t *testing.T) {
		store := newMemStore()
		store.rows[7] = userstatus.Status{UserID: 7, Subscribed: true, VerifJoined: true}
		checker := &fakeChecker{}
		svc, _ := newService(t, store, checker)

		reply, err := svc.Text(ctx, 7, "  Я Зарегистрировался ")
		require.NoError(t, err)
		assert.Equal(t, TextAccessGranted, reply.Text)
		require.NotNil(t, reply.Button)
		assert.True(t, reply.Button.WebApp)
		assert.True(t, store.rows[7].Registered)
		assert.Empty(t, checker.calls)
	})

	t.Run("not yet", func(t *testing.T) {
		store := newMemStore()
		store.rows[8] = userstatus.Status{UserID: 8, Subscribed: true}
		svc, _ := newService(t, store, &fakeChecker{})

		reply, err := svc.Text(ctx, 8, "я зарегистрировался")
		require.NoError(t, err)
		assert.Equal(t, Reply{Text: TextNotYet}, reply)
		assert.False(t, store.rows[8].Registered)
	})

	t.Run("other text does not mutate", func(t *testing.T) {
		store := newMemStore()
		svc, _ := newService(t, store, &fakeChecker{})

		reply, err := svc.Text(ctx, 9, "hello")
		require.NoError(t, err)
		assert.Equal(t, Reply{Text: TextTextFallback}, reply)
		assert.Zero(t, store.writes)
		assert.Empty(t, store.rows)
	})
}

func TestCheck(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.rows[adminID] = userstatus.Status{UserID: adminID, Subscribed: true, Registered: true}
	svc, _ := newService(t, store, &fakeChecker{})

	_, ok, err := svc.Check(ctx, 100, []string{"12345"})
	require.NoError(t, err)
	assert.False(t, ok)

	reply, ok, err := svc.Check(ctx, adminID, []string{"12345"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Статус пользователя 12345:\nПодписка: ❌\nВерификация: ❌\nРегистрация: ❌", reply.Text)

	reply, ok, err = svc.Check(ctx, adminID, []string{"abc"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Статус пользователя 42:\nПодписка: ✅\nВерификация: ❌\nРегистрация: ✅", reply.Text)

	reply, _, err = svc.Check(ctx, adminID, nil)
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Статус пользователя 42:")
}

func TestCheckWithoutAdminConfigured(t *testing.T) {
	svc, err := NewService(Options{
		Store:    newMemStore(),
		Checker:  &fakeChecker{},
		Channels: Channels{Main: mainChan, Verification: verifChan},
	})
	require.NoError(t, err)
	_, ok, err := svc.Check(context.Background(), 0, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}
