package protocol_test

import (
	"testing"

	"github.com/aretw0/cado/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    protocol.Command
		wantErr error
	}{
		{
			name:  "update code",
			input: `{"type": "update-cell-code", "cell_id": "c1", "code": "a = 1"}`,
			want:  &protocol.UpdateCellCode{CellID: "c1", Code: "a = 1"},
		},
		{
			name:  "empty code is a value",
			input: `{"type": "update-cell-code", "cell_id": "c1", "code": ""}`,
			want:  &protocol.UpdateCellCode{CellID: "c1"},
		},
		{
			name:  "input names",
			input: `{"type": "update-cell-input-names", "cell_id": "c1", "input_names": ["a", "b"]}`,
			want:  &protocol.UpdateCellInputNames{CellID: "c1", InputNames: []string{"a", "b"}},
		},
		{
			name:  "new cell with index",
			input: `{"type": "new-cell", "index": 2}`,
			want:  &protocol.NewCell{Index: intPtr(2)},
		},
		{
			name:  "new cell appends",
			input: `{"type": "new-cell"}`,
			want:  &protocol.NewCell{},
		},
		{
			name:  "get notebook",
			input: `{"type": "get-notebook"}`,
			want:  &protocol.GetNotebook{},
		},
		{
			name:    "unknown type",
			input:   `{"type": "explode"}`,
			wantErr: protocol.ErrUnknownType,
		},
		{
			name:    "missing type",
			input:   `{"cell_id": "c1"}`,
			wantErr: protocol.ErrUnknownType,
		},
		{
			name:    "missing field",
			input:   `{"type": "run-cell"}`,
			wantErr: protocol.ErrInvalidMessage,
		},
		{
			name:    "unused field",
			input:   `{"type": "run-cell", "cell_id": "c1", "cell": "c2"}`,
			wantErr: protocol.ErrInvalidMessage,
		},
		{
			name:    "wrong field type",
			input:   `{"type": "reorder-cells", "cell_ids": "c1"}`,
			wantErr: protocol.ErrInvalidMessage,
		},
		{
			name:    "not json",
			input:   `{"type":`,
			wantErr: protocol.ErrInvalidMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := protocol.Parse([]byte(tt.input))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKind(t *testing.T) {
	_, err := protocol.Parse([]byte(`{"type": "nope"}`))
	assert.Equal(t, "unknown_type", protocol.Kind(err))

	_, err = protocol.Parse([]byte(`{"type": "run-cell"}`))
	assert.Equal(t, "invalid_message", protocol.Kind(err))
}

func intPtr(i int) *int { return &i }
