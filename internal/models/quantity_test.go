package models

import (
	"encoding/json"
	"testing"
)

func TestQuantity_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantSet bool
		wantN   int
	}{
		{"null", `null`, false, 0},
		{"blank string", `""`, false, 0},
		{"number", `10`, true, 10},
		{"numeric string", `"7"`, true, 7},
		{"negative clamps", `-3`, true, 0},
		{"fraction truncates", `4.9`, true, 4},
		{"garbage string", `"abc"`, false, 0},
		{"out of range number is unset", `1e20`, false, 0},
		{"out of range string is unset", `"1e20"`, false, 0},
		{"large negative clamps", `-1e20`, true, 0},
		{"at the limit", `1000000000`, true, 1000000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Quantity
			if err := json.Unmarshal([]byte(tt.input), &q); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			n, ok := q.Get()
			if ok != tt.wantSet || n != tt.wantN {
				t.Errorf("got (%d, %v), want (%d, %v)", n, ok, tt.wantN, tt.wantSet)
			}
		})
	}
}

func TestQuantity_MarshalJSON(t *testing.T) {
	card := struct {
		A Quantity `json:"a"`
		B Quantity `json:"b"`
	}{A: Qty(5)}

	data, err := json.Marshal(card)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"a":5,"b":null}` {
		t.Errorf("got %s", data)
	}
}

func TestCardClone_IsDeep(t *testing.T) {
	card := &Card{
		ID:         "card_1",
		Operations: []*Operation{{ID: "op_1", Items: []*Item{{ID: "item_1", Quantity: 1}}, ElapsedSeconds: Seconds(5)}},
		Logs:       []LogEntry{{ID: "log_1"}},
	}
	cp := card.Clone()
	cp.Operations[0].Items[0].GoodCount = 1
	*cp.Operations[0].ElapsedSeconds = 99
	cp.Logs[0].ID = "changed"

	if card.Operations[0].Items[0].GoodCount != 0 {
		t.Error("item shared between clone and original")
	}
	if *card.Operations[0].ElapsedSeconds != 5 {
		t.Error("elapsed pointer shared between clone and original")
	}
	if card.Logs[0].ID != "log_1" {
		t.Error("logs shared between clone and original")
	}
}

func TestCollection_FindCardByBarcode(t *testing.T) {
	col := &Collection{Cards: []*Card{{ID: "card_1", Barcode: "0000000000017"}}}
	if got := col.FindCard("0000000000017"); got == nil || got.ID != "card_1" {
		t.Errorf("FindCard by barcode = %v", got)
	}
	if got := col.FindCard("missing"); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
