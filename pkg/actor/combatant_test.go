package actor

import "testing"

func TestNewCombatant(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		isPlayer  bool
		wantMaxHP int
	}{
		{"player", PlayerID, true, PlayerMaxHP},
		{"enemy", "goblin", false, EnemyMaxHP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCombatant(tt.id, tt.isPlayer, 7)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if c.HP != tt.wantMaxHP || c.MaxHP != tt.wantMaxHP {
				t.Errorf("Expected hp %d/%d, got %d/%d", tt.wantMaxHP, tt.wantMaxHP, c.HP, c.MaxHP)
			}
			if c.IsPlayer != tt.isPlayer {
				t.Errorf("Expected IsPlayer %v, got %v", tt.isPlayer, c.IsPlayer)
			}
			if c.Initiative != 7 {
				t.Errorf("Expected initiative 7, got %d", c.Initiative)
			}
			if c.TempDefense != 0 || len(c.StatusEffects) != 0 {
				t.Errorf("Expected a clean combatant, got %+v", c)
			}
		})
	}
}

func TestNewStatBlock(t *testing.T) {
	block, err := NewStatBlock("troll", false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if block.AC() != BaseAC {
		t.Errorf("Expected AC %d, got %d", BaseAC, block.AC())
	}
}
