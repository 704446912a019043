package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"mediasig/internal/testsupport"
)

func TestDepsReportsAvailableTools(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBinaries())
	script := filepath.Join(env.baseDir, "audfprint.py")
	testsupport.WriteFile(t, script, 8)
	env.cfg.Tools.AudfprintScript = script
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"deps", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("deps: %v\n%s", err, out)
	}
	var report depsReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(report.Dependencies) != 5 {
		t.Fatalf("expected 5 dependencies, got %d", len(report.Dependencies))
	}
	for _, dep := range report.Dependencies {
		if !dep.Available {
			t.Fatalf("expected %s available: %s", dep.Name, dep.Detail)
		}
	}

	out, _, err = runCLI(t, []string{"deps"}, env.configPath)
	if err != nil {
		t.Fatalf("deps table: %v", err)
	}
	requireContains(t, out, "Dependencies")
	requireContains(t, out, "FFprobe")
	requireContains(t, out, "OK")
}

func TestDepsFailsWhenRequiredToolMissing(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Tools.AudfprintScript = filepath.Join(env.baseDir, "missing", "audfprint.py")
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"deps"}, env.configPath)
	if err == nil {
		t.Fatal("expected deps to report not ready")
	}
	requireContains(t, err.Error(), "audfprint")
	requireContains(t, out, "ERROR")
}
