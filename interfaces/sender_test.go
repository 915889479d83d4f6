package interfaces

import (
	"errors"
	"testing"
)

// TestSenderConfigValidate tests the Validate method of SenderConfig.
func TestSenderConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  SenderConfig
		wantErr error
	}{
		{
			name:    "valid real config",
			config:  SenderConfig{UseSimulation: false, DialTimeout: 10000},
			wantErr: nil,
		},
		{
			name:    "valid simulation config",
			config:  SenderConfig{UseSimulation: true, DialTimeout: 1},
			wantErr: nil,
		},
		{
			name:    "zero timeout",
			config:  SenderConfig{DialTimeout: 0},
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative timeout",
			config:  SenderConfig{DialTimeout: -5},
			wantErr: ErrInvalidTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
