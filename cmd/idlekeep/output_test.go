package main

import (
	"testing"

	"github.com/napolitain/idlekeep/internal/models"
)

func TestFormatting(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"costs sorted", formatCosts(models.Costs{"wood": 50, "stone": 20}), "stone 20, wood 50"},
		{"empty costs", formatCosts(nil), ""},
		{"rates", formatRates([]models.Rate{{Resource: "food", Amount: 0.5}}, "/s"), "food 0.5/s"},
		{"requires", formatRequires(map[models.BuildingID]int{"quarry": 1, "farm": 3}), "farm x3, quarry x1"},
		{"unlocked", lockMark(true), ""},
		{"locked", lockMark(false), "locked"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}
