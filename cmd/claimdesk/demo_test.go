package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/claimdesk/internal/common"
	"github.com/Veraticus/claimdesk/internal/engine"
	"github.com/Veraticus/claimdesk/internal/llm"
)

func TestRunDemo(t *testing.T) {
	tests := []struct {
		gateway engine.Gateway
		name    string
	}{
		{name: "engine mock gateway", gateway: engine.NewMockGateway()},
		{name: "llm gateway over mock provider", gateway: llm.NewGateway(llm.NewMockClient(), llm.Config{}, common.DiscardLogger())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, runDemo(context.Background(), &out, tt.gateway))

			for _, want := range []string{
				"Policyholder files claim on POL-1",
				"Current estimate: $1,500.00 (Repair Shop)",
				"Current estimate: $1,800.00 (Insurance Agent)",
				"Policyholder: confirm_pickup → Closed",
				"closed or rejected",
				"CLAIM REJECTED: Fraud suspected",
			} {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}
