package auth

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreAuthenticate(t *testing.T) {
	s := NewStore()
	s.AddUser("u", "pw")

	require.True(t, s.Authenticate("u", "pw"))
	require.False(t, s.Authenticate("u", "wrong"))
	require.False(t, s.Authenticate("ghost", "pw"))
}

func TestStoreRemoveUser(t *testing.T) {
	s := NewStore()
	s.AddUser("u", "pw")
	s.RemoveUser("u")

	require.False(t, s.Authenticate("u", "pw"))
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore()
	s.AddUser("u", "pw")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			require.True(t, s.Authenticate("u", "pw"))
		}()
	}

	wg.Wait()
}
