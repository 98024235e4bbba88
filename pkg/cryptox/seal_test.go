package cryptox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSealRoundTrip(t *testing.T) {
	s, err := NewSealer([]byte("test-master-key"))
	require.NoError(t, err)

	sealed, err := s.Seal([]byte("invite-token"))
	require.NoError(t, err)
	require.NotContains(t, string(sealed), "invite-token")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, "invite-token", string(plain))

	// Fresh nonce every time
	again, err := s.Seal([]byte("invite-token"))
	require.NoError(t, err)
	require.NotEqual(t, sealed, again)
}

func TestOpenRejectsTampering(t *testing.T) {
	s, err := NewSealer([]byte("k1"))
	require.NoError(t, err)
	other, err := NewSealer([]byte("k2"))
	require.NoError(t, err)

	sealed, err := s.Seal([]byte("secret"))
	require.NoError(t, err)

	_, err = other.Open(sealed)
	require.Error(t, err)

	sealed[len(sealed)-1] ^= 0xff
	_, err = s.Open(sealed)
	require.Error(t, err)

	_, err = s.Open([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrSealedTooShort)
}

func TestLoadSealer(t *testing.T) {
	t.Run("ephemeral without path", func(t *testing.T) {
		s, ephemeral, err := LoadSealer("")
		require.NoError(t, err)
		require.True(t, ephemeral)
		require.NotNil(t, s)
	})

	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token.key")
		require.NoError(t, os.WriteFile(path, []byte("file-key"), 0o600))

		s, ephemeral, err := LoadSealer(path)
		require.NoError(t, err)
		require.False(t, ephemeral)

		ref, err := NewSealer([]byte("file-key"))
		require.NoError(t, err)
		sealed, err := ref.Seal([]byte("x"))
		require.NoError(t, err)
		plain, err := s.Open(sealed)
		require.NoError(t, err)
		require.Equal(t, "x", string(plain))
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := LoadSealer(filepath.Join(t.TempDir(), "absent"))
		require.Error(t, err)
	})
}
