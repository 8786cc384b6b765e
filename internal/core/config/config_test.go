package config

import (
	"os"
	"path/filepath"
	"testing"
)

func write(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadAppliesDefaults(t *testing.T) {
	c, err := Load(write(t, "app:\n  name: portal-test\n"))
	if err != nil {
		t.Fatal(err)
	}
	if c.App.Name != "portal-test" || c.App.HTTP.Port != 8080 {
		t.Fatalf("app = %+v", c.App)
	}
	if c.DB.Driver != "sqlite" || c.Session.Store != "memory" || c.Session.Secret == "" {
		t.Fatalf("defaults not applied: %+v %+v", c.DB, c.Session)
	}
	if c.Security.BcryptCost != 12 || c.Workflow.StrictTransitions {
		t.Fatalf("security/workflow = %+v %+v", c.Security, c.Workflow)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("APP_APP_HTTP_PORT", "9090")
	t.Setenv("APP_WORKFLOW_STRICT_TRANSITIONS", "true")
	c, err := Load(write(t, "app:\n  name: x\n"))
	if err != nil {
		t.Fatal(err)
	}
	if c.App.HTTP.Port != 9090 || !c.Workflow.StrictTransitions {
		t.Fatalf("env not applied: port=%d strict=%v", c.App.HTTP.Port, c.Workflow.StrictTransitions)
	}
}

func TestValidate(t *testing.T) {
	if _, err := Load(write(t, "app:\n  env: production\n")); err == nil {
		t.Fatal("production without a session secret accepted")
	}
	if _, err := Load(write(t, "session:\n  store: redis\n")); err == nil {
		t.Fatal("redis sessions without redis.addr accepted")
	}
	if _, err := Load(write(t, "session:\n  store: disk\n")); err == nil {
		t.Fatal("unknown session store accepted")
	}
}
