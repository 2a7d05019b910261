// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactories builds each Store implementation against a temp directory
// so both run the same behavioral tests.
func storeFactories(t *testing.T) map[string]func() Store {
	return map[string]func() Store{
		"sqlite": func() Store {
			s, err := Open(filepath.Join(t.TempDir(), "state.db"))
			require.NoError(t, err)
			return s
		},
		"memory": func() Store {
			return NewMemoryStore()
		},
	}
}

func TestStore_SetGetClear(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory()
			defer s.Close()

			_, err := s.Get(KeyLastConversation)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(KeyLastConversation, "c1"))
			value, err := s.Get(KeyLastConversation)
			require.NoError(t, err)
			assert.Equal(t, "c1", value)

			// Overwrite replaces the value.
			require.NoError(t, s.Set(KeyLastConversation, "c2"))
			value, err = s.Get(KeyLastConversation)
			require.NoError(t, err)
			assert.Equal(t, "c2", value)

			require.NoError(t, s.Clear(KeyLastConversation))
			_, err = s.Get(KeyLastConversation)
			assert.ErrorIs(t, err, ErrNotFound)

			// Clearing an absent key is fine.
			require.NoError(t, s.Clear("never-set"))
		})
	}
}

func TestStore_KeysAreIndependent(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory()
			defer s.Close()

			require.NoError(t, s.Set(KeyLastConversation, "c1"))
			require.NoError(t, s.Set(KeyLastGroup, "g1"))
			require.NoError(t, s.Clear(KeyLastConversation))

			value, err := s.Get(KeyLastGroup)
			require.NoError(t, err)
			assert.Equal(t, "g1", value)
		})
	}
}

func TestSQLiteStore_PersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(KeyLastGroup, "g7"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	value, err := s.Get(KeyLastGroup)
	require.NoError(t, err)
	assert.Equal(t, "g7", value)
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Set("k", "v"))
}
