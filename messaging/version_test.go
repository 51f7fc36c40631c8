// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Version
		wantErr bool
	}{
		{"2.0", V2, false},
		{"1", V1, false},
		{"v1.1", Version{Major: 1, Minor: 1}, false},
		{" 3.12 ", Version{Major: 3, Minor: 12}, false},
		{"", Version{}, true},
		{"1.0a", Version{}, true},
		{"1.0.0", Version{}, true},
		{"two", Version{}, true},
		{"1.0-beta", Version{}, true},
		{"01.0", Version{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseVersion(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVersion_Ordering(t *testing.T) {
	t.Parallel()

	v10 := Version{Major: 1, Minor: 0}
	v11 := Version{Major: 1, Minor: 1}
	v20 := Version{Major: 2, Minor: 0}

	assert.Equal(t, 0, v10.Compare(V1))
	assert.Equal(t, -1, v10.Compare(v11))
	assert.Equal(t, 1, v20.Compare(v11))
	assert.True(t, v11.Less(v20))
	assert.False(t, v20.Less(v20))

	assert.True(t, v10.IsCompatible(v11))
	assert.False(t, v11.IsCompatible(v20))
}

func TestVersion_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2.0", V2.String())
	assert.Equal(t, "1.10", Version{Major: 1, Minor: 10}.String())
	assert.True(t, Version{}.IsZero())
	assert.False(t, V1.IsZero())
}
