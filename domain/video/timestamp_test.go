package video

import (
	"testing"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Timestamp
		wantErr bool
		errMsg  string
	}{
		{
			name:  "valid colon timestamp",
			input: "01:30:45",
			want:  Timestamp{Hours: 1, Minutes: 30, Seconds: 45},
		},
		{
			name:  "single digit hour",
			input: "9:05:00",
			want:  Timestamp{Hours: 9, Minutes: 5, Seconds: 0},
		},
		{
			name:  "schedule sheet format",
			input: "10h20m00s",
			want:  Timestamp{Hours: 10, Minutes: 20, Seconds: 0},
		},
		{
			name:  "schedule sheet format single digit hour",
			input: "9h05m30s",
			want:  Timestamp{Hours: 9, Minutes: 5, Seconds: 30},
		},
		{
			name:  "surrounding whitespace",
			input: "  10:00:00 ",
			want:  Timestamp{Hours: 10},
		},
		{
			name:  "all zeros",
			input: "00:00:00",
			want:  Timestamp{},
		},
		{
			name:    "unknown marker",
			input:   "???",
			wantErr: true,
			errMsg:  "unknown",
		},
		{
			name:    "missing leading zero in minutes",
			input:   "01:3:45",
			wantErr: true,
			errMsg:  "invalid timestamp format",
		},
		{
			name:    "wrong separator - dash",
			input:   "01-30-45",
			wantErr: true,
			errMsg:  "invalid timestamp format",
		},
		{
			name:    "too few parts",
			input:   "01:30",
			wantErr: true,
			errMsg:  "invalid timestamp format",
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
			errMsg:  "invalid timestamp format",
		},
		{
			name:    "minutes too high",
			input:   "01:60:00",
			wantErr: true,
			errMsg:  "minutes must be 0-59",
		},
		{
			name:    "seconds too high in schedule format",
			input:   "10h30m60s",
			wantErr: true,
			errMsg:  "seconds must be 0-59",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseTimestamp(%q) expected error, got nil", tt.input)
					return
				}
				if tt.errMsg != "" && !contains(err.Error(), tt.errMsg) {
					t.Errorf("ParseTimestamp(%q) error = %v, want error containing %q", tt.input, err, tt.errMsg)
				}
				return
			}

			if err != nil {
				t.Errorf("ParseTimestamp(%q) unexpected error: %v", tt.input, err)
				return
			}

			if got != tt.want {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTimestamp_Offset(t *testing.T) {
	tests := []struct {
		ts   Timestamp
		want string
	}{
		{Timestamp{10, 0, 0}, "10:00:00"},
		{Timestamp{9, 5, 7}, "9:05:07"},
		{Timestamp{0, 0, 0}, "0:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.ts.Offset(); got != tt.want {
				t.Errorf("Offset() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTimestamp_Sub(t *testing.T) {
	start := Timestamp{10, 0, 0}
	end := Timestamp{10, 20, 0}

	if got := end.Sub(start); got != 1200 {
		t.Errorf("Sub() = %d, want 1200", got)
	}
	if got := start.Sub(end); got != -1200 {
		t.Errorf("Sub() = %d, want -1200", got)
	}
}

func TestTimestamp_Before(t *testing.T) {
	early := Timestamp{1, 0, 0}
	late := Timestamp{1, 0, 1}

	if !early.Before(late) {
		t.Error("expected early.Before(late)")
	}
	if late.Before(early) {
		t.Error("late.Before(early) should be false")
	}
	if early.Before(early) {
		t.Error("timestamp should not be before itself")
	}
}

// contains checks if s contains substr
func contains(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
