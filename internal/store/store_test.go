package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore_PutGet(t *testing.T) {
	s := New()
	require.False(t, s.Put("s__c", 42))

	v, ok := s.Get("s__c")
	require.True(t, ok)
	require.Equal(t, 42, v)

	obj, ok := s.Object("s__c")
	require.True(t, ok)
	require.Equal(t, "s__c", obj.ID)
	require.Equal(t, 42, obj.Value)
}

func TestStore_PutReportsReplacement(t *testing.T) {
	s := New()
	s.Put("s__c", 1)
	require.True(t, s.Put("s__c", 2))

	v, _ := s.Get("s__c")
	require.Equal(t, 2, v)
	require.Equal(t, 1, s.Len())
}

func TestStore_MissingID(t *testing.T) {
	s := New()
	_, ok := s.Get("nope")
	require.False(t, ok)
	require.False(t, s.Has("nope"))
}

func TestNewSeeded(t *testing.T) {
	s := NewSeeded(map[string]any{"logger__default": "log", "path__default": "/tmp"})
	require.True(t, s.Has("logger__default"))
	require.Equal(t, []string{"logger__default", "path__default"}, s.IDs())
}
