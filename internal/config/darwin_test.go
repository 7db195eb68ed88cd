//go:build darwin

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"howett.net/plist"
)

func TestDecodePlist(t *testing.T) {
	devOnly := true
	data, err := plist.Marshal(plistConfig{
		FavoritesV2:              []int{3000, 5173, 3000, 70000},
		ShowOnlyDevelopmentPorts: &devOnly,
	}, plist.BinaryFormat)
	require.NoError(t, err)

	cfg := decodePlist(data)
	require.NotNil(t, cfg)
	assert.Equal(t, []uint16{3000, 5173}, cfg.Favorites)
	assert.True(t, cfg.ShowOnlyDevelopmentPorts)
	assert.False(t, cfg.GroupByProcess)
}

func TestDecodePlist_EmptyOrInvalid(t *testing.T) {
	data, err := plist.Marshal(plistConfig{}, plist.XMLFormat)
	require.NoError(t, err)
	assert.Nil(t, decodePlist(data))

	assert.Nil(t, decodePlist([]byte("not a plist")))
}
