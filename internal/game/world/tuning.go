package world

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arcadeworks/arena/internal/game/entity"
)

// Duration is a time.Duration that unmarshals from YAML strings like "2s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// MonsterTuning defines the stats for one monster kind. Damage and reward
// ranges are dice expressions; "1d8+7" is uniform over 8..15.
type MonsterTuning struct {
	HP             int      `yaml:"hp"`
	Icons          []string `yaml:"icons"`
	DetectionRange float64  `yaml:"detection_range"`
	AttackRange    float64  `yaml:"attack_range"`
	MoveSpeed      float64  `yaml:"move_speed"`
	// AttackDice is the damage dealt to a player per monster strike.
	AttackDice string `yaml:"attack_dice"`
	// HitDice is the damage a player's strike deals to this kind.
	HitDice string `yaml:"hit_dice"`
	// ExpDice and ScoreDice are the kill rewards.
	ExpDice   string `yaml:"exp_dice"`
	ScoreDice string `yaml:"score_dice"`
}

// Tuning collects every gameplay knob of the simulation. Zero values are
// filled from DefaultTuning by LoadTuning, so partial YAML files only
// override what they name.
type Tuning struct {
	NormalCount int           `yaml:"normal_count"`
	ItemCount   int           `yaml:"item_count"`
	Normal      MonsterTuning `yaml:"normal"`
	Boss        MonsterTuning `yaml:"boss"`

	ItemScores map[entity.ItemKind]int `yaml:"item_scores"`
	ShieldHeal int                     `yaml:"shield_heal"`

	DuelDice     string `yaml:"duel_dice"`
	DuelWinScore int    `yaml:"duel_win_score"`

	// AttackCooldown is the minimum time between strikes of one monster.
	AttackCooldown Duration `yaml:"attack_cooldown"`
	// MoveGate is the frame-rate gate on monster movement.
	MoveGate Duration `yaml:"move_gate"`
	// RequestTTL expires pending duel requests; zero disables expiry.
	RequestTTL Duration `yaml:"request_ttl"`
}

// DefaultTuning returns the stock arena tuning.
func DefaultTuning() Tuning {
	return Tuning{
		NormalCount: 5,
		ItemCount:   3,
		Normal: MonsterTuning{
			HP:             30,
			Icons:          []string{"👹", "👾", "🤖"},
			DetectionRange: 150,
			AttackRange:    40,
			MoveSpeed:      4.0,
			AttackDice:     "1d6+2",  // 3..8
			HitDice:        "1d11+4", // 5..15
			ExpDice:        "1d11+14",
			ScoreDice:      "1d6+2",
		},
		Boss: MonsterTuning{
			HP:             150,
			Icons:          []string{"🐲"},
			DetectionRange: 200,
			AttackRange:    60,
			MoveSpeed:      5.0,
			AttackDice:     "1d8+7", // 8..15
			HitDice:        "1d6+2", // 3..8
			ExpDice:        "1d26+49",
			ScoreDice:      "1d11+19",
		},
		ItemScores: map[entity.ItemKind]int{
			entity.ItemGem:    20,
			entity.ItemWeapon: 15,
			entity.ItemShield: 10,
			entity.ItemCoin:   25,
		},
		ShieldHeal:     25,
		DuelDice:       "1d11+14", // 15..25
		DuelWinScore:   50,
		AttackCooldown: Duration(2 * time.Second),
		MoveGate:       Duration(16 * time.Millisecond),
		RequestTTL:     Duration(time.Minute),
	}
}

// LoadTuning reads a YAML tuning file layered over DefaultTuning.
//
// Precondition: path must name a readable YAML file.
// Postcondition: Returns a validated Tuning or a non-nil error.
func LoadTuning(path string) (Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("reading tuning file: %w", err)
	}

	t := DefaultTuning()
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tuning{}, fmt.Errorf("parsing tuning file %q: %w", path, err)
	}

	if err := t.Validate(); err != nil {
		return Tuning{}, fmt.Errorf("tuning file %q: %w", path, err)
	}
	return t, nil
}

// Validate checks the tuning invariants.
func (t Tuning) Validate() error {
	if t.NormalCount < 0 {
		return fmt.Errorf("normal_count must be >= 0, got %d", t.NormalCount)
	}
	if t.ItemCount < 0 {
		return fmt.Errorf("item_count must be >= 0, got %d", t.ItemCount)
	}
	for name, mt := range map[string]MonsterTuning{"normal": t.Normal, "boss": t.Boss} {
		if mt.HP < 1 {
			return fmt.Errorf("%s.hp must be >= 1, got %d", name, mt.HP)
		}
		if len(mt.Icons) == 0 {
			return fmt.Errorf("%s.icons must not be empty", name)
		}
		if mt.MoveSpeed <= 0 {
			return fmt.Errorf("%s.move_speed must be > 0", name)
		}
	}
	if t.DuelWinScore < 0 {
		return fmt.Errorf("duel_win_score must be >= 0, got %d", t.DuelWinScore)
	}
	return nil
}
