package holdings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/allenshen-svg/fund-assistant/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_SeedsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "holdings.json")
	defaults := []model.Holding{{Code: "000216", Name: "华安黄金ETF联接A", Type: "黄金"}}

	m, err := NewManager(path, defaults)
	require.NoError(t, err)
	assert.Equal(t, defaults, m.List())
	_, err = os.Stat(path)
	require.NoError(t, err, "holdings file should be created")

	// An existing (even empty) file wins over defaults.
	_, err = m.Remove("000216")
	require.NoError(t, err)
	m2, err := NewManager(path, defaults)
	require.NoError(t, err)
	assert.Empty(t, m2.List())
}

func TestManager_AddRemove(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "holdings.json"), nil)
	require.NoError(t, err)

	h, err := m.Add(model.Holding{Code: " 008586 ", Name: ""})
	require.NoError(t, err)
	assert.Equal(t, "008586", h.Code)
	assert.Equal(t, "008586", h.Name)
	assert.Equal(t, model.DefaultSectorType, h.Type)

	_, err = m.Add(model.Holding{Code: "000001", Name: "华夏成长", Type: "未知类型"})
	assert.ErrorIs(t, err, ErrInvalidType)

	_, err = m.Add(model.Holding{Code: "008586", Type: "AI/科技"})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = m.Add(model.Holding{Code: "12345"})
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = m.Remove("000000")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{"008586"}, m.Codes())
	removed, err := m.Remove("008586")
	require.NoError(t, err)
	assert.Equal(t, "008586", removed.Code)
	assert.Empty(t, m.Codes())
}

func TestManager_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holdings.json")
	m, err := NewManager(path, nil)
	require.NoError(t, err)
	_, err = m.Add(model.Holding{Code: "005693", Name: "广发军工联接C", Type: "军工"})
	require.NoError(t, err)

	list, exists, err := LoadState(path)
	require.NoError(t, err)
	assert.True(t, exists)
	require.Len(t, list, 1)
	assert.Equal(t, "军工", list[0].Type)
}

func TestNewManager_CoercesUnknownStoredType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holdings.json")
	require.NoError(t, SaveState(path, []model.Holding{{Code: "000001", Name: "华夏成长", Type: "旧分类"}}))

	m, err := NewManager(path, nil)
	require.NoError(t, err)
	list := m.List()
	require.Len(t, list, 1)
	assert.Equal(t, model.DefaultSectorType, list[0].Type)
}

func TestLoadState_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holdings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err := NewManager(path, nil)
	assert.Error(t, err)
}
