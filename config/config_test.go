package config

import (
	"os"
	"path/filepath"
	"testing"
	_ "time/tzdata"
)

func TestDefaultsEnableEverything(t *testing.T) {
	c := Defaults()
	for _, f := range []Feature{FeatureCheckin, FeatureTodo, FeatureBadgeWall, FeatureCustomEmoji} {
		if !c.FeatureEnabled(f) {
			t.Errorf("feature %s disabled by default", f)
		}
	}
	if c.CheckinBasePoints != 10 || c.CheckinConsecutiveBonus != 5 || c.MountPath != "/custom-plugin" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
}

func TestMasterSwitchOverridesModules(t *testing.T) {
	c := Defaults()
	c.PluginEnabled = false
	if c.FeatureEnabled(FeatureTodo) {
		t.Fatal("todo enabled with plugin switched off")
	}
	c.PluginEnabled = true
	c.TodoEnabled = false
	if c.FeatureEnabled(FeatureTodo) || !c.FeatureEnabled(FeatureCheckin) {
		t.Fatal("module flag not honoured")
	}
}

func TestLoadJSONConfigKeepsUnsetFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"checkin": {"Enabled": false, "BasePoints": 7, "LotteryPrizes": "a|b"},
		"badge_wall": {"Public": false},
		"database": {"Driver": "sqlite"}
	}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	c := AppConfig{}
	applyFeatureDefaults(&c)
	if err := loadJSONConfig(path, &c); err != nil {
		t.Fatalf("load: %v", err)
	}
	applyDefaults(&c)

	if c.CheckinEnabled || c.BadgeWallPublic {
		t.Fatal("explicit false flags ignored")
	}
	if !c.TodoEnabled || !c.CheckinLotteryEnabled {
		t.Fatal("absent flags lost their default")
	}
	if c.CheckinBasePoints != 7 || c.CheckinLotteryPrizes != "a|b" || c.DBDriver != "sqlite" {
		t.Fatalf("values not loaded: %+v", c)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CHECKIN_BASE_POINTS", "25")
	t.Setenv("TODO_ENABLED", "false")
	c := Defaults()
	applyEnvOverrides(&c)
	if c.CheckinBasePoints != 25 {
		t.Fatalf("base points = %d", c.CheckinBasePoints)
	}
	if c.TodoEnabled {
		t.Fatal("TODO_ENABLED=false ignored")
	}
}

func TestLocation(t *testing.T) {
	c := Defaults()
	c.Timezone = "Asia/Shanghai"
	if c.Location().String() != "Asia/Shanghai" {
		t.Fatalf("location = %s", c.Location())
	}
	c.Timezone = "Not/AZone"
	if c.Location() == nil {
		t.Fatal("nil location")
	}
}
