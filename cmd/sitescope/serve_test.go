package main

import (
	"testing"

	"github.com/nao1215/sitescope/internal/config"
)

func TestNewServeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewServeCmd()

	if cmd.Use != "serve" {
		t.Errorf("unexpected Use: got %q", cmd.Use)
	}

	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{config.FlagListen, "l", config.DefaultListenAddr},
		{config.FlagStageDelay, "", config.DefaultStageDelay.String()},
		{config.FlagSave, "", "false"},
		{"shutdown-timeout", "", config.DefaultShutdownTimeout.String()},
	}
	for _, tt := range tests {
		flag := cmd.Flags().Lookup(tt.name)
		if flag == nil {
			t.Errorf("expected %s flag", tt.name)
			continue
		}
		if flag.Shorthand != tt.shorthand {
			t.Errorf("%s: expected shorthand %q, got %q", tt.name, tt.shorthand, flag.Shorthand)
		}
		if flag.DefValue != tt.defValue {
			t.Errorf("%s: expected default %q, got %q", tt.name, tt.defValue, flag.DefValue)
		}
	}

	if err := cmd.Args(cmd, []string{"https://example.com"}); err == nil {
		t.Error("expected serve to reject arguments")
	}
}
