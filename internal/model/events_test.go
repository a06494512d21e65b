package model

import (
	"encoding/json"
	"testing"
)

func TestNewGameTokenEventJSONStringFields(t *testing.T) {
	payload := NewGameTokenEvent{
		Owner:           "0x1111111111111111111111111111111111111111",
		ID:              "115792089237316195423570985008687907853269984665640564039457584007913129639935",
		AttackStrength:  "7",
		DefenseStrength: "3",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, key := range []string{"id", "attack_strength", "defense_strength"} {
		if _, ok := decoded[key].(string); !ok {
			t.Fatalf("%s should be string", key)
		}
	}
}

func TestEventRecordCarriesDecodedPayload(t *testing.T) {
	record := EventRecord{
		ChainID:     43113,
		BlockNumber: 100,
		TxHash:      "0xdef",
		LogIndex:    2,
		EventName:   KindRoundEnded,
		Decoded:     RoundEndedEvent{DamagedPlayers: []string{EmptyAccount}},
	}

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded struct {
		EventName string `json:"event_name"`
		Decoded   struct {
			DamagedPlayers []string `json:"damaged_players"`
		} `json:"decoded"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.EventName != "RoundEnded" {
		t.Fatalf("event name mismatch: %s", decoded.EventName)
	}
	if len(decoded.Decoded.DamagedPlayers) != 1 || decoded.Decoded.DamagedPlayers[0] != EmptyAccount {
		t.Fatalf("damaged players mismatch: %+v", decoded.Decoded.DamagedPlayers)
	}
}

func TestEventKinds(t *testing.T) {
	events := []Event{
		NewPlayerEvent{},
		NewBattleEvent{},
		NewGameTokenEvent{},
		BattleMoveEvent{},
		RoundEndedEvent{},
		BattleEndedEvent{},
	}

	kinds := AllKinds()
	if len(kinds) != len(events) {
		t.Fatalf("expected %d kinds, got %d", len(events), len(kinds))
	}
	for i, ev := range events {
		if ev.Kind() != kinds[i] {
			t.Fatalf("kind %d mismatch: %s != %s", i, ev.Kind(), kinds[i])
		}
	}
}
