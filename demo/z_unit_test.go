package demo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zintix-labs/slipdesk/dto"
)

func TestCatalogFromEmbed(t *testing.T) {
	c, err := Catalog()
	require.NoError(t, err)
	ids := []int{}
	for _, ty := range c.All() {
		ids = append(ids, ty.ID)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids)
	assert.Empty(t, c.Missing())
}

func TestSlips(t *testing.T) {
	assert.Equal(t, []string{"chat_export", "mixed"}, SlipNames())
}

func TestDemoDesk(t *testing.T) {
	d, err := NewDesk()
	require.NoError(t, err)
	defer d.Close()

	resp, err := d.Edit(&dto.EditRequest{Text: Slips()["chat_export"], Mode: "Open"})
	require.NoError(t, err)
	assert.Equal(t, "12-50\n34=100\n56=100\n5 200\n123 40\n", resp.Text)
	assert.Len(t, resp.Result.Groups[2], 3)
	assert.Len(t, resp.Result.Groups[1], 1)
	assert.Len(t, resp.Result.Groups[3], 1)
	assert.False(t, resp.Blocked)

	games, err := d.Games(context.Background())
	require.NoError(t, err)
	assert.Len(t, games, 3)
	groups, err := d.Groups(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, groups, 2)
}
