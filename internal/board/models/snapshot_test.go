package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "taskboard/pkg/domain-errors"
)

func TestSnapshot_OrdersByPosition(t *testing.T) {
	board := mustBoard(t, "Personal Board")
	todo, doing := mustColumn(t, "To do"), mustColumn(t, "Doing")
	require.NoError(t, board.AddColumn(todo))
	require.NoError(t, board.AddColumn(doing))
	sleep, work := mustCard(t, "Sleep"), mustCard(t, "Work")
	require.NoError(t, board.AddCardToColumn(todo.ID(), sleep))
	require.NoError(t, board.AddCardToColumn(todo.ID(), work))

	require.NoError(t, board.UpdateColumnPositionInBoard(doing.ID(), 1))
	require.NoError(t, board.UpdateCardPriorityInColumn(todo.ID(), work.ID(), 1))

	snap := board.Snapshot()
	require.Len(t, snap.Columns, 2)
	assert.Equal(t, "Doing", snap.Columns[0].Title)
	assert.Equal(t, 1, snap.Columns[0].PositionInBoard)
	assert.Equal(t, "To do", snap.Columns[1].Title)
	require.Len(t, snap.Columns[1].Cards, 2)
	assert.Equal(t, "Work", snap.Columns[1].Cards[0].Title)
	assert.Equal(t, "Sleep", snap.Columns[1].Cards[1].Title)
	assert.Equal(t, todo.ID(), snap.Columns[1].Cards[1].ColumnID)
	assert.Empty(t, snap.Columns[0].Cards)
}

func TestRestore_RoundTrip(t *testing.T) {
	board := boardWithColumns(t, 3)
	fillColumn(t, board, board.Columns()[1], 4)
	snap := board.Snapshot()
	snap.Version = 7

	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	var decoded BoardSnapshot
	require.NoError(t, json.Unmarshal(raw, &decoded))

	restored, err := Restore(decoded)
	require.NoError(t, err)
	assert.Equal(t, snap, restored.Snapshot())
	assert.Equal(t, 7, restored.Version())
}

func TestRestore_RejectsCorruptedSnapshots(t *testing.T) {
	board := boardWithColumns(t, 2)
	fillColumn(t, board, board.Columns()[0], 3)

	t.Run("duplicate column position", func(t *testing.T) {
		snap := board.Snapshot().Clone()
		snap.Columns[1].PositionInBoard = 1
		_, err := Restore(snap)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidRange))
	})

	t.Run("gap in card priorities", func(t *testing.T) {
		snap := board.Snapshot().Clone()
		snap.Columns[0].Cards[2].Priority = 5
		_, err := Restore(snap)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidRange))
	})

	t.Run("card linked to another column", func(t *testing.T) {
		snap := board.Snapshot().Clone()
		snap.Columns[0].Cards[0].ColumnID = snap.Columns[1].ID
		_, err := Restore(snap)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidRange))
	})

	t.Run("same card in two columns", func(t *testing.T) {
		snap := board.Snapshot().Clone()
		dup := snap.Columns[0].Cards[0]
		dup.ColumnID = snap.Columns[1].ID
		dup.Priority = 1
		snap.Columns[1].Cards = append(snap.Columns[1].Cards, dup)
		_, err := Restore(snap)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyPresent))
	})

	t.Run("empty title", func(t *testing.T) {
		snap := board.Snapshot().Clone()
		snap.Columns[0].Title = ""
		_, err := Restore(snap)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeRequiredField))
	})
}

func TestSnapshotClone_IsDeep(t *testing.T) {
	board := boardWithColumns(t, 1)
	fillColumn(t, board, board.Columns()[0], 2)
	snap := board.Snapshot()

	clone := snap.Clone()
	clone.Columns[0].Cards[0].Title = "changed"
	clone.Columns[0].Title = "changed"

	assert.Equal(t, "k", snap.Columns[0].Cards[0].Title)
	assert.Equal(t, "c", snap.Columns[0].Title)
}
