package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestIsCorrect(t *testing.T) {
	tests := []struct {
		name      string
		canonical interface{}
		submitted interface{}
		want      bool
	}{
		{"same scalar", datatypes.JSON(`"B"`), json.RawMessage(`"B"`), true},
		{"different scalar", datatypes.JSON(`"B"`), json.RawMessage(`"C"`), false},
		{"case sensitive", datatypes.JSON(`"b"`), json.RawMessage(`"B"`), false},
		{"number vs string", datatypes.JSON(`3`), json.RawMessage(`"3"`), true},
		{"float formatting", datatypes.JSON(`1.50`), json.RawMessage(`"1.5"`), true},
		{"bool vs string", datatypes.JSON(`true`), json.RawMessage(`"true"`), true},
		{"list any order", datatypes.JSON(`["A","C"]`), json.RawMessage(`["C","A"]`), true},
		{"list missing element", datatypes.JSON(`["A","C"]`), json.RawMessage(`["A"]`), false},
		{"list extra element", datatypes.JSON(`["A","C"]`), json.RawMessage(`["A","B","C"]`), false},
		{"list vs scalar", datatypes.JSON(`["A"]`), json.RawMessage(`"A"`), false},
		{"scalar vs list", datatypes.JSON(`"A"`), json.RawMessage(`["A"]`), false},
		{"numeric list", datatypes.JSON(`[1,2]`), json.RawMessage(`["2","1"]`), true},
		{"submitted null", datatypes.JSON(`"A"`), json.RawMessage(`null`), false},
		{"submitted empty", datatypes.JSON(`"A"`), json.RawMessage(nil), false},
		{"canonical null", datatypes.JSON(`null`), json.RawMessage(`null`), false},
		{"invalid json", datatypes.JSON(`"A"`), json.RawMessage(`{broken`), false},
		{"go values", []string{"x", "y"}, []interface{}{"y", "x"}, true},
		{"object scalar", datatypes.JSON(`{"a":1}`), json.RawMessage(`{"b":2}`), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCorrect(tt.canonical, tt.submitted))
		})
	}
}

func TestIsCorrectPermutationInvariant(t *testing.T) {
	canonical := datatypes.JSON(`["A","B","C"]`)
	perms := []string{`["A","B","C"]`, `["A","C","B"]`, `["B","A","C"]`, `["B","C","A"]`, `["C","A","B"]`, `["C","B","A"]`}
	for _, p := range perms {
		assert.True(t, IsCorrect(canonical, json.RawMessage(p)), p)
		assert.True(t, IsCorrect(json.RawMessage(p), canonical), p)
	}
}
