package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallback(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"What is the average?", SatisfactionReply},
		{"SATISFACTION please", SatisfactionReply},
		{"Which district is best?", RegionReply},
		{"compare each region", RegionReply},
		{"infrastructure overview", InfrastructureReply},
		{"how many staff are there", ResourcesReply},
		{"bed capacity", ResourcesReply},
		{"resources by area", ResourcesReply},
		{"hello there", GenericReply},
		{"", GenericReply},

		// priority order
		{"average score per district", SatisfactionReply},
		{"district infrastructure", RegionReply},
		{"infrastructure and staff", InfrastructureReply},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, Fallback(tt.message))
		})
	}
}

func TestFallback_Deterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		assert.Equal(t, RegionReply, Fallback("district"))
	}
}

func TestFormatTable(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text unchanged",
			input: "No tables here.\nJust text.",
			want:  "No tables here.\nJust text.",
		},
		{
			name:  "cells are trimmed and wrapped",
			input: "Intro\nRegion |  Avg\n|---|---|\n Samarkand| 4.2 \nDone",
			want:  "Intro\n| Region | Avg |\n|---|---|\n| Samarkand | 4.2 |\nDone",
		},
		{
			name:  "already formatted rows keep their shape",
			input: "| a | b |\n| :-- | --: |\n| 1 | 2 |",
			want:  "| a | b |\n| :-- | --: |\n| 1 | 2 |",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTable(tt.input))
		})
	}
}
