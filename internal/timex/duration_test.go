package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "1d", want: 24 * time.Hour},
		{in: "30d", want: 720 * time.Hour},
		{in: "0d", want: 0},
		{in: "45m", want: 45 * time.Minute},
		{in: "1h30m", want: 90 * time.Minute},
		{in: "xd", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDurationUnmarshalJSON(t *testing.T) {
	var s struct {
		TTL Duration `json:"ttl"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"ttl":"30d"}`), &s))
	assert.Equal(t, Days(30), s.TTL.Duration)

	require.NoError(t, json.Unmarshal([]byte(`{"ttl":3600000000000}`), &s))
	assert.Equal(t, time.Hour, s.TTL.Duration)

	assert.Error(t, json.Unmarshal([]byte(`{"ttl":true}`), &s))
	assert.Error(t, json.Unmarshal([]byte(`{"ttl":"not-a-duration"}`), &s))
}

func TestDurationMarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{Duration: time.Hour})
	require.NoError(t, err)
	assert.Equal(t, `"1h0m0s"`, string(b))
}
