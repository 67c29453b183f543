package core

import "testing"

func TestParseHealthStatus(t *testing.T) {
	tests := []struct {
		in   string
		want HealthStatus
	}{
		{"healthy", HealthHealthy},
		{"unhealthy", HealthUnhealthy},
		{"starting", HealthStarting},
		{"Up 3 hours (healthy)", HealthHealthy},
		{"Up 3 hours (unhealthy)", HealthUnhealthy},
		{"Up 10 seconds (health: starting)", HealthStarting},
		{"Restarting (0) 2 seconds ago", HealthNone},
		{"Exited (0) 2 hours ago", HealthNone},
		{"", HealthNone},
	}
	for _, tt := range tests {
		if got := ParseHealthStatus(tt.in); got != tt.want {
			t.Fatalf("ParseHealthStatus(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
