package agent

import "testing"

func TestGetProvider_Resolution(t *testing.T) {
	mgr := NewManager(Config{
		ActiveProvider: "gemini",
		Agents: map[string]AgentConfig{
			"planner": {Provider: "groq"},
		},
	})

	// Role override wins over the global provider.
	if p := mgr.GetProvider("planner"); p != mgr.providers["groq"] {
		t.Error("planner should resolve to its groq override")
	}
	// No override: global active provider.
	if p := mgr.GetProvider("explainer"); p != mgr.providers["gemini"] {
		t.Error("explainer should resolve to the global provider")
	}
}

func TestGetProvider_Fallback(t *testing.T) {
	mgr := NewManager(Config{})
	if p := mgr.GetProvider("anything"); p != mgr.providers["groq"] {
		t.Error("empty config should fall back to groq")
	}

	mgr = NewManager(Config{ActiveProvider: "no-such-provider"})
	if p := mgr.GetProvider("anything"); p != mgr.providers["groq"] {
		t.Error("unknown active provider should fall back to groq")
	}
}

func TestSetGlobalProvider(t *testing.T) {
	mgr := NewManager(Config{ActiveProvider: "groq"})

	if err := mgr.SetGlobalProvider("gemini"); err != nil {
		t.Fatalf("SetGlobalProvider: %v", err)
	}
	if mgr.GetActiveProvider() != "gemini" {
		t.Errorf("active = %q, want gemini", mgr.GetActiveProvider())
	}

	if err := mgr.SetGlobalProvider("claude"); err == nil {
		t.Error("expected error for unregistered provider")
	}
}

func TestProviders(t *testing.T) {
	names := NewManager(Config{}).Providers()
	if len(names) != 2 {
		t.Fatalf("Providers() = %v, want 2 entries", names)
	}
	seen := map[string]bool{}
	for _, n := range names {
		seen[n] = true
	}
	if !seen["groq"] || !seen["gemini"] {
		t.Errorf("Providers() = %v", names)
	}
}
