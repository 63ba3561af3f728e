package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"guardtoken/core/events"
	"guardtoken/core/state"
	"guardtoken/storage"
)

func testAddr(b byte) [20]byte {
	var addr [20]byte
	addr[19] = b
	return addr
}

func testHash(b byte) [32]byte {
	var hash [32]byte
	hash[31] = b
	return hash
}

func TestIsValidCodeHashDefaultsFalse(t *testing.T) {
	reg := New(state.NewManager(storage.NewMemDB()), testAddr(1))
	ok, err := reg.IsValidCodeHash(testHash(0xaa))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSetCodeHashRequiresGovernance(t *testing.T) {
	governance := testAddr(1)
	reg := New(state.NewManager(storage.NewMemDB()), governance)

	err := reg.SetCodeHash(testAddr(2), testHash(0xaa), true)
	require.ErrorIs(t, err, ErrNotAuthorized)

	ok, err := reg.IsValidCodeHash(testHash(0xaa))
	require.NoError(t, err)
	require.False(t, ok, "rejected update must not mutate the allow-list")
}

func TestSetCodeHashApproveAndRevoke(t *testing.T) {
	governance := testAddr(1)
	reg := New(state.NewManager(storage.NewMemDB()), governance)
	hash := testHash(0xaa)

	require.NoError(t, reg.SetCodeHash(governance, hash, true))
	ok, err := reg.IsValidCodeHash(hash)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, reg.SetCodeHash(governance, hash, false))
	ok, err = reg.IsValidCodeHash(hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSetCodeHashEmitsEvent(t *testing.T) {
	governance := testAddr(1)
	reg := New(state.NewManager(storage.NewMemDB()), governance)
	recorder := &events.Recorder{}
	reg.SetEmitter(recorder)
	hash := testHash(0xaa)

	require.NoError(t, reg.SetCodeHash(governance, hash, true))
	evts := recorder.Drain()
	require.Len(t, evts, 1)
	require.Equal(t, events.TypeCodeHashUpdated, evts[0].Type)
	require.Equal(t, "true", evts[0].Attributes["approved"])
}
