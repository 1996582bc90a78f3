package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "taskboard/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string with a required field message", func(t *testing.T) {
		_, err := ParseBoardID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		assert.Equal(t, "Please, ensure you enter BoardId.", err.Error())
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseColumnID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		assert.Equal(t, "The informed ColumnId is invalid.", err.Error())
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseCardID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseUserID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, UserID(validUUID), id)
	})
}

func TestParseID_HostileInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE boards;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Unicode zero-width space", "550e8400\u200B-e29b-41d4-a716-446655440000", true},
		{"Empty string", "", true},
		{"Nil UUID", uuid.Nil.String(), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBoardID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()

	t.Run("all accept valid UUID", func(t *testing.T) {
		_, errBoard := ParseBoardID(validUUID)
		_, errColumn := ParseColumnID(validUUID)
		_, errCard := ParseCardID(validUUID)
		_, errUser := ParseUserID(validUUID)

		require.NoError(t, errBoard)
		require.NoError(t, errColumn)
		require.NoError(t, errCard)
		require.NoError(t, errUser)
	})

	for _, input := range []string{"", "invalid", uuid.Nil.String()} {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errBoard := ParseBoardID(input)
			_, errColumn := ParseColumnID(input)
			_, errCard := ParseCardID(input)
			_, errUser := ParseUserID(input)

			require.Error(t, errBoard)
			require.Error(t, errColumn)
			require.Error(t, errCard)
			require.Error(t, errUser)
		})
	}
}

func TestIDs_JSONRoundTrip(t *testing.T) {
	type payload struct {
		Board  BoardID  `json:"board"`
		Column ColumnID `json:"column"`
		Card   CardID   `json:"card"`
	}
	in := payload{Board: NewBoardID(), Column: NewColumnID()}

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), in.Board.String())

	var out payload
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
	assert.True(t, out.Card.IsNil(), "detached references stay nil")
}
