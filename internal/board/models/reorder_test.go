package models

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "taskboard/pkg/domain"
)

// Property tests drive random command sequences against a board and check
// the ordering laws after every step. A fixed seed keeps failures replayable.

func TestOrderingProperties_RandomSequences(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))

	for round := 0; round < 50; round++ {
		board := mustBoard(t, "Random")
		for step := 0; step < 60; step++ {
			applyRandomCommand(t, rng, board)
			require.NoError(t, board.CheckInvariants(), "round %d step %d", round, step)
		}
	}
}

func applyRandomCommand(t *testing.T, rng *rand.Rand, board *Board) {
	t.Helper()
	columns := board.Columns()

	switch op := rng.IntN(5); {
	case op == 0 || len(columns) == 0:
		require.NoError(t, board.AddColumn(mustColumn(t, "c")))
	case op == 1:
		column := columns[rng.IntN(len(columns))]
		require.NoError(t, board.AddCardToColumn(column.ID(), mustCard(t, "k")))
	case op == 2:
		column := columns[rng.IntN(len(columns))]
		require.NoError(t, board.UpdateColumnPositionInBoard(column.ID(), 1+rng.IntN(len(columns)+2)))
	case op == 3:
		column := columns[rng.IntN(len(columns))]
		if column.Len() == 0 {
			return
		}
		card := column.Cards()[rng.IntN(column.Len())]
		require.NoError(t, board.UpdateCardPriorityInColumn(column.ID(), card.ID(), 1+rng.IntN(column.Len()+2)))
	default:
		from := columns[rng.IntN(len(columns))]
		to := columns[rng.IntN(len(columns))]
		if from.Len() == 0 {
			return
		}
		card := from.Cards()[rng.IntN(from.Len())]
		require.NoError(t, board.MoveCardBetweenColumns(card.ID(), from.ID(), to.ID(), 1+rng.IntN(to.Len()+2)))
	}
}

func TestOrderingProperties_Idempotence(t *testing.T) {
	board := boardWithColumns(t, 4)
	for _, column := range board.Columns() {
		before := board.Snapshot()
		require.NoError(t, board.UpdateColumnPositionInBoard(column.ID(), column.PositionInBoard()))
		assert.Equal(t, before, board.Snapshot())
	}
}

func TestOrderingProperties_ClampLaw(t *testing.T) {
	for n := 1; n <= 5; n++ {
		for start := 1; start <= n; start++ {
			for beyond := n + 1; beyond <= n+3; beyond++ {
				clamped := boardWithColumns(t, n)
				exact := cloneBoard(t, clamped)
				target := clamped.Columns()[start-1].ID()

				require.NoError(t, clamped.UpdateColumnPositionInBoard(target, beyond))
				require.NoError(t, exact.UpdateColumnPositionInBoard(target, n))
				assert.Equal(t, exact.Snapshot(), clamped.Snapshot(), "n=%d start=%d beyond=%d", n, start, beyond)
			}
		}
	}
}

func TestOrderingProperties_AppendLaw(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	board := boardWithColumns(t, 3)
	column := board.Columns()[0]

	for i := 0; i < 20; i++ {
		if column.Len() > 0 {
			card := column.Cards()[rng.IntN(column.Len())]
			require.NoError(t, board.UpdateCardPriorityInColumn(column.ID(), card.ID(), 1+rng.IntN(column.Len())))
		}
		card := mustCard(t, "k")
		require.NoError(t, board.AddCardToColumn(column.ID(), card))
		assert.Equal(t, column.Len(), card.Priority())
	}

	require.NoError(t, board.UpdateColumnPositionInBoard(column.ID(), 3))
	extra := mustColumn(t, "extra")
	require.NoError(t, board.AddColumn(extra))
	assert.Equal(t, 4, extra.PositionInBoard())
}

func TestOrderingProperties_RemovalClosesGap(t *testing.T) {
	for n := 1; n <= 6; n++ {
		for k := 1; k <= n; k++ {
			board := boardWithColumns(t, 2)
			from, to := board.Columns()[0], board.Columns()[1]
			cards := make([]*Card, n)
			for i := range cards {
				cards[i] = mustCard(t, "k")
				require.NoError(t, board.AddCardToColumn(from.ID(), cards[i]))
			}

			require.NoError(t, board.MoveCardBetweenColumns(cards[k-1].ID(), from.ID(), to.ID(), 1))

			for i, card := range cards {
				switch {
				case i+1 < k:
					assert.Equal(t, i+1, card.Priority())
				case i+1 > k:
					assert.Equal(t, i, card.Priority())
				}
			}
			assert.Equal(t, n-1, from.Len())
		}
	}
}

func TestOrderingProperties_MoveComposition(t *testing.T) {
	for a := 1; a <= 4; a++ {
		for b := 0; b <= 4; b++ {
			for target := 1; target <= b+2; target++ {
				board := boardWithColumns(t, 2)
				from, to := board.Columns()[0], board.Columns()[1]
				fillColumn(t, board, from, a)
				fillColumn(t, board, to, b)
				moved := from.Cards()[0]

				require.NoError(t, board.MoveCardBetweenColumns(moved.ID(), from.ID(), to.ID(), target))

				assert.Equal(t, a-1, from.Len())
				assert.Equal(t, b+1, to.Len())
				assert.Equal(t, min(target, b+1), moved.Priority())
				assert.Equal(t, to.ID(), moved.ColumnID())
				require.NoError(t, board.CheckInvariants())
			}
		}
	}
}

func TestReposition_DoesNotDuplicateWhenClamped(t *testing.T) {
	board := boardWithColumns(t, 3)
	first := board.Columns()[0]

	require.NoError(t, board.UpdateColumnPositionInBoard(first.ID(), 100))

	positions := make(map[int]id.ColumnID)
	for _, column := range board.Columns() {
		_, dup := positions[column.PositionInBoard()]
		require.False(t, dup, "position %d assigned twice", column.PositionInBoard())
		positions[column.PositionInBoard()] = column.ID()
	}
	assert.Equal(t, first.ID(), positions[3])
}

func boardWithColumns(t *testing.T, n int) *Board {
	t.Helper()
	board := mustBoard(t, "Board")
	for i := 0; i < n; i++ {
		require.NoError(t, board.AddColumn(mustColumn(t, "c")))
	}
	return board
}

func fillColumn(t *testing.T, board *Board, column *Column, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, board.AddCardToColumn(column.ID(), mustCard(t, "k")))
	}
}

func cloneBoard(t *testing.T, board *Board) *Board {
	t.Helper()
	clone, err := Restore(board.Snapshot())
	require.NoError(t, err)
	return clone
}
