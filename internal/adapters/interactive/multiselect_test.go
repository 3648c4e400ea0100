package interactive

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
)

func press(m multiSelectModel, keys ...tea.KeyMsg) multiSelectModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(multiSelectModel)
	}
	return m
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMultiSelectModel(t *testing.T) {
	items := []MultiSelectItem{{ID: "Escrow", Detail: "call"}, {ID: "Vault", Detail: "upgrade"}, {ID: "Router", Detail: "upgrade"}}

	t.Run("enter needs a selection", func(t *testing.T) {
		m := press(newMultiSelectModel(items, "Withdraw"), keyEnter)
		assert.False(t, m.confirmed)
		assert.NotEmpty(t, m.View())
	})

	t.Run("toggle and confirm", func(t *testing.T) {
		m := press(newMultiSelectModel(items, "Withdraw"), keySpace, keyDown, keyDown, keySpace, keyEnter)
		require.True(t, m.confirmed)
		assert.Equal(t, []models.ContractID{"Escrow", "Router"}, m.chosen())
		assert.Empty(t, m.View())
	})

	t.Run("a toggles all", func(t *testing.T) {
		m := press(newMultiSelectModel(items, "Withdraw"), runes("a"))
		assert.Len(t, m.chosen(), 3)
		m = press(m, runes("a"))
		assert.Empty(t, m.chosen())
	})

	t.Run("quit is not a confirmation", func(t *testing.T) {
		m := press(newMultiSelectModel(items, "Withdraw"), keySpace, runes("q"))
		assert.True(t, m.quit)
		assert.False(t, m.confirmed)
	})

	t.Run("cursor stays in range", func(t *testing.T) {
		m := press(newMultiSelectModel(items, "Withdraw"), tea.KeyMsg{Type: tea.KeyUp}, keyDown, keyDown, keyDown, keyDown)
		assert.Equal(t, 2, m.cursor)
	})
}

func TestPrompter_SelectMany(t *testing.T) {
	p := NewPrompter(&config.RuntimeConfig{NonInteractive: true})

	got, err := p.SelectMany([]MultiSelectItem{{ID: "Vault"}}, "Withdraw")
	require.NoError(t, err)
	assert.Equal(t, []models.ContractID{"Vault"}, got)

	_, err = p.SelectMany([]MultiSelectItem{{ID: "Vault"}, {ID: "Escrow"}}, "Withdraw")
	assert.ErrorIs(t, err, ErrNonInteractive)

	_, err = p.SelectMany(nil, "Withdraw")
	assert.Error(t, err)
}
