package domain

import (
	"encoding/json"
	"testing"
)

func TestResultID_Unmarshal(t *testing.T) {
	tests := []struct {
		raw     string
		want    ResultID
		numeric bool
	}{
		{`42`, "42", true},
		{`"42"`, "42", true},
		{`"local-1f2e"`, "local-1f2e", false},
		{`null`, "", false},
		{`0`, "0", false},
		{`-3`, "-3", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var id ResultID
			if err := json.Unmarshal([]byte(tt.raw), &id); err != nil {
				t.Fatalf("unmarshal %s: %v", tt.raw, err)
			}
			if id != tt.want {
				t.Errorf("id = %q, want %q", id, tt.want)
			}
			if _, ok := id.Numeric(); ok != tt.numeric {
				t.Errorf("Numeric() ok = %v, want %v", ok, tt.numeric)
			}
		})
	}
}

func TestCombatResult_KeyStableForSamePayload(t *testing.T) {
	a := &CombatResult{Result: OutcomeVictory, Duration: 30}
	b := &CombatResult{Result: OutcomeVictory, Duration: 30}
	if a.Key() != b.Key() {
		t.Errorf("Key() differs for identical payloads: %q vs %q", a.Key(), b.Key())
	}
	c := &CombatResult{Result: OutcomeDefeat, Duration: 30}
	if a.Key() == c.Key() {
		t.Error("Key() equal for different payloads")
	}
	d := &CombatResult{ID: "9"}
	if d.Key() != "id:9" {
		t.Errorf("Key() = %q, want %q", d.Key(), "id:9")
	}
}

func TestPrepareInfo_CountsSkipLeft(t *testing.T) {
	info := &PrepareInfo{RoomID: 3, Players: []PrepareSlot{
		{UserID: 1, Status: PlayerReady, IsReady: true},
		{UserID: 2, Status: PlayerJoined},
		{UserID: 3, Status: PlayerLeft, IsReady: true},
	}}
	if got := info.ActiveCount(); got != 2 {
		t.Errorf("ActiveCount() = %d, want 2", got)
	}
	if got := info.ReadyCount(); got != 1 {
		t.Errorf("ReadyCount() = %d, want 1", got)
	}
	if !info.Matches(3) || info.Matches(4) {
		t.Error("Matches() does not compare room ids")
	}
	var nilInfo *PrepareInfo
	if nilInfo.Matches(3) {
		t.Error("nil PrepareInfo matched")
	}
}

func TestErrorForCode(t *testing.T) {
	if ErrorForCode(CodeRoomFull) != ErrCapacity {
		t.Error("ROOM_FULL should map to ErrCapacity")
	}
	if ErrorForCode("SOMETHING_ELSE") != nil {
		t.Error("unknown code should map to nil")
	}
	if !IsRejection(ErrWrongPassword) {
		t.Error("ErrWrongPassword should be a rejection")
	}
	if IsRejection(ErrSocketUnavailable) {
		t.Error("ErrSocketUnavailable should not be a rejection")
	}
}
