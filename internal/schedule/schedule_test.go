package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    Clock
		wantErr bool
	}{
		{in: "02:30", want: Clock{Hour: 2, Minute: 30}},
		{in: "23:59", want: Clock{Hour: 23, Minute: 59}},
		{in: "7:05", want: Clock{Hour: 7, Minute: 5}},
		{in: " 00:00 ", want: Clock{}},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "12:5", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClockString(t *testing.T) {
	assert.Equal(t, "02:30", Clock{Hour: 2, Minute: 30}.String())
}

func TestNext(t *testing.T) {
	at := Clock{Hour: 2, Minute: 30}

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "later today",
			now:  time.Date(2024, 3, 10, 1, 0, 0, 0, ist),
			want: time.Date(2024, 3, 10, 2, 30, 0, 0, ist),
		},
		{
			name: "already passed",
			now:  time.Date(2024, 3, 10, 9, 0, 0, 0, ist),
			want: time.Date(2024, 3, 11, 2, 30, 0, 0, ist),
		},
		{
			name: "exactly now rolls to tomorrow",
			now:  time.Date(2024, 3, 10, 2, 30, 0, 0, ist),
			want: time.Date(2024, 3, 11, 2, 30, 0, 0, ist),
		},
		{
			name: "now in another zone",
			now:  time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC), // 01:30 IST on the 10th
			want: time.Date(2024, 3, 10, 2, 30, 0, 0, ist),
		},
		{
			name: "month boundary",
			now:  time.Date(2024, 3, 31, 23, 0, 0, 0, ist),
			want: time.Date(2024, 4, 1, 2, 30, 0, 0, ist),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Next(tt.now, at, ist)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
			assert.True(t, got.After(tt.now))
		})
	}
}

func TestWait(t *testing.T) {
	assert.NoError(t, Wait(context.Background(), time.Millisecond))
	assert.NoError(t, Wait(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Wait(ctx, time.Hour), context.Canceled)
}

func TestHours(t *testing.T) {
	assert.Equal(t, "7.5", Hours(7*time.Hour+30*time.Minute))
	assert.Equal(t, "0.0", Hours(time.Minute))
}

func TestDescribe(t *testing.T) {
	now := time.Date(2024, 3, 10, 1, 0, 0, 0, ist)
	assert.Equal(t, "2 hours from now", Describe(now, now.Add(2*time.Hour)))
}
