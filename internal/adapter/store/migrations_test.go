package store

import (
	"strings"
	"testing"

	"semdex/config"
)

func TestCheckMigrationFresh(t *testing.T) {
	s := openStore(t)

	result, err := s.CheckMigration(config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !result.NeedsMigration {
		t.Error("fresh store should need migration")
	}
	if result.NeedsRebuild {
		t.Error("fresh store should not need rebuild")
	}
	if result.Reason != "initializing schema version" {
		t.Errorf("reason = %q", result.Reason)
	}
	if result.OldVersion != 0 || result.NewVersion != CurrentSchemaVersion {
		t.Errorf("versions = %d -> %d", result.OldVersion, result.NewVersion)
	}
}

func TestMigrateSetsSchema(t *testing.T) {
	s := openStore(t)
	cfg := config.DefaultConfig()

	if err := s.Migrate(cfg); err != nil {
		t.Fatal(err)
	}

	info, err := s.GetSchemaInfo()
	if err != nil {
		t.Fatal(err)
	}
	if info.Version != CurrentSchemaVersion {
		t.Errorf("version = %d, want %d", info.Version, CurrentSchemaVersion)
	}
	if info.ConfigHash != ComputeConfigHash(cfg) {
		t.Errorf("config hash = %q", info.ConfigHash)
	}

	result, err := s.CheckMigration(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if result.NeedsMigration || result.NeedsRebuild {
		t.Errorf("settled store reports migration=%v rebuild=%v", result.NeedsMigration, result.NeedsRebuild)
	}
}

func TestConfigChangeForcesRebuild(t *testing.T) {
	s := openStore(t)

	if err := s.Migrate(config.DefaultConfig()); err != nil {
		t.Fatal(err)
	}

	changed := config.DefaultConfig()
	changed.Analyze.MaxFileSizeMB = 99

	needs, reason, err := s.NeedsRebuild(changed)
	if err != nil {
		t.Fatal(err)
	}
	if !needs {
		t.Error("config change should force rebuild")
	}
	if reason != "index configuration changed" {
		t.Errorf("reason = %q", reason)
	}
}

func TestNewerVersionForcesRebuild(t *testing.T) {
	s := openStore(t)

	if err := s.SetSchemaInfo(&SchemaInfo{Version: CurrentSchemaVersion + 1}); err != nil {
		t.Fatal(err)
	}

	result, err := s.CheckMigration(config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !result.NeedsRebuild {
		t.Error("newer on-disk version should force rebuild")
	}
	if !strings.Contains(result.Reason, "newer version") {
		t.Errorf("reason = %q", result.Reason)
	}
}

func TestConfigHashStable(t *testing.T) {
	a := ComputeConfigHash(config.DefaultConfig())
	b := ComputeConfigHash(config.DefaultConfig())
	if a != b {
		t.Errorf("hash unstable: %q vs %q", a, b)
	}

	changed := config.DefaultConfig()
	changed.Embedding.Model = "other-model"
	if ComputeConfigHash(changed) == a {
		t.Error("hash ignores embedding model")
	}
}
