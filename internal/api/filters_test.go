package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talonops/talon/internal/errors"
)

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    string
		wantErr bool
	}{
		{
			name:  "single filter",
			input: []string{"OS=Windows"},
			want:  "platform_name:'Windows'",
		},
		{
			name:  "multi value",
			input: []string{"Role=Server,DC"},
			want:  "product_type_desc:['Server','DC']",
		},
		{
			name:  "chained filters",
			input: []string{"OS=Windows", "Domain=CORP"},
			want:  "platform_name:'Windows'+machine_domain:'CORP'",
		},
		{
			name:  "value containing equals",
			input: []string{"LastSeen=>=2026-01-01T00:00:00Z"},
			want:  "last_seen:'>=2026-01-01T00:00:00Z'",
		},
		{
			name:  "key is case insensitive",
			input: []string{"hostname=WEB-01"},
			want:  "hostname:'WEB-01'",
		},
		{
			name:    "missing equals",
			input:   []string{"Hostname"},
			wantErr: true,
		},
		{
			name:    "unknown key",
			input:   []string{"Colour=blue"},
			wantErr: true,
		},
		{
			name:    "empty value",
			input:   []string{"OS="},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseFilters(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Query())
		})
	}
}

func TestEmptyFilter(t *testing.T) {
	f, err := ParseFilters(nil)
	require.NoError(t, err)
	assert.True(t, f.Empty())
	assert.Equal(t, "", f.Query())
}

func TestFilterAttributesDocumented(t *testing.T) {
	// Every documented attribute must map to a wire field.
	for _, attr := range HostFilterAttributes {
		_, err := ParseFilters([]string{attr.Name + "=x"})
		assert.NoError(t, err, "attribute %s should parse", attr.Name)
	}
}
