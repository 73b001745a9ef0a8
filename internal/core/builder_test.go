package core

import (
	"testing"

	"modefind/config"
	"modefind/internal/query"
	"modefind/util"
)

func TestBuild_Eval(t *testing.T) {
	q, err := query.Parse("2 21 21 22")
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Query = &q
	cfg.Size = 1

	mode, err := Build(cfg, util.NewLogger(0), nil)
	if err != nil {
		t.Fatal(err)
	}
	em, ok := mode.(*EvalMode)
	if !ok {
		t.Fatalf("expected *EvalMode, got %T", mode)
	}
	if em.Query.Size != 1 {
		t.Errorf("size = %d, want 1 after -s", em.Query.Size)
	}
}

func TestBuild_Batch(t *testing.T) {
	cfg := config.Default()
	cfg.Batch = true
	cfg.Strategy = "bidirectional"

	mode, err := Build(cfg, util.NewLogger(0), nil)
	if err != nil {
		t.Fatal(err)
	}
	bm, ok := mode.(*BatchMode)
	if !ok {
		t.Fatalf("expected *BatchMode, got %T", mode)
	}
	if bm.Finder.Strategy.Name() != "bidirectional" {
		t.Errorf("strategy = %s", bm.Finder.Strategy.Name())
	}
}

func TestBuild_Listen(t *testing.T) {
	cfg := config.Default()
	cfg.Listen = true
	cfg.LocalPort = 8080

	mode, err := Build(cfg, util.NewLogger(0), nil)
	if err != nil {
		t.Fatal(err)
	}
	lm, ok := mode.(*ListenMode)
	if !ok {
		t.Fatalf("expected *ListenMode, got %T", mode)
	}
	if lm.Address != ":8080" || lm.Network != "tcp" {
		t.Errorf("address/network = %s/%s", lm.Address, lm.Network)
	}
	if lm.Answer.Cache == nil {
		t.Error("expected an answer cache with the default size")
	}
}

func TestBuild_ListenNoCache(t *testing.T) {
	cfg := config.Default()
	cfg.Listen = true
	cfg.UDP = true
	cfg.CacheSize = 0

	mode, err := Build(cfg, util.NewLogger(0), nil)
	if err != nil {
		t.Fatal(err)
	}
	lm := mode.(*ListenMode)
	if lm.Network != "udp" || lm.Answer.Cache != nil {
		t.Errorf("network=%s cache=%v", lm.Network, lm.Answer.Cache)
	}
}

func TestBuild_Connect(t *testing.T) {
	cfg := config.Default()
	cfg.Connect = "127.0.0.1:7100"
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	mode, err := Build(cfg, util.NewLogger(0), nil)
	if err != nil {
		t.Fatal(err)
	}
	cm, ok := mode.(*ConnectMode)
	if !ok {
		t.Fatalf("expected *ConnectMode, got %T", mode)
	}
	if cm.Address != "127.0.0.1:7100" {
		t.Errorf("address = %s", cm.Address)
	}
}

func TestBuild_UnknownStrategy(t *testing.T) {
	cfg := config.Default()
	cfg.Strategy = "sideways"
	if _, err := Build(cfg, util.NewLogger(0), nil); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestBuild_EvalWithoutQuery(t *testing.T) {
	if _, err := Build(config.Default(), util.NewLogger(0), nil); err == nil {
		t.Error("expected error when eval mode has no query")
	}
}
