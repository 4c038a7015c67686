package keybinds

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultRegistry_Match(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		context Context
		key     string
		want    Action
		found   bool
	}{
		{ContextNormal, "enter", ActionSelect, true},
		{ContextNormal, "n", ActionCreatePost, true},
		{ContextNormal, "/", ActionFilterUsers, true},
		{ContextNormal, "ctrl+c", ActionQuitForce, true},
		{ContextComments, "esc", ActionCloseModal, true},
		{ContextComments, "ctrl+c", ActionQuitForce, true},
		{ContextCreatePost, "ctrl+s", ActionSubmitPost, true},
		{ContextCreatePost, "q", "", false},
		{ContextHelp, "x", "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.context)+"/"+tt.key, func(t *testing.T) {
			got, ok := r.Match(tt.context, tt.key)
			if ok != tt.found || got != tt.want {
				t.Errorf("Match(%s, %q) = %q, %v; want %q, %v", tt.context, tt.key, got, ok, tt.want, tt.found)
			}
		})
	}
}

func TestDefaultRegistry_IsValid(t *testing.T) {
	result := NewValidator().ValidateRegistry(NewDefaultRegistry())
	if result.HasErrors() {
		t.Errorf("default registry has errors:\n%s", result.String())
	}
}

func TestMatchMultiKey(t *testing.T) {
	r := NewDefaultRegistry()

	_, complete, partial := r.MatchMultiKey(ContextNormal, "g")
	if complete || !partial {
		t.Fatalf("first g: complete=%v partial=%v, want partial", complete, partial)
	}

	action, complete, _ := r.MatchMultiKey(ContextNormal, "g")
	if !complete || action != ActionGoToTop {
		t.Errorf("gg = %q complete=%v, want %q", action, complete, ActionGoToTop)
	}

	// broken sequence
	r.MatchMultiKey(ContextNormal, "g")
	if _, complete, _ := r.MatchMultiKey(ContextNormal, "x"); complete {
		t.Error("gx should not match")
	}

	// plain keys pass through
	action, complete, partial = r.MatchMultiKey(ContextNormal, "j")
	if !complete || partial || action != ActionNavigateDown {
		t.Errorf("j = %q complete=%v partial=%v", action, complete, partial)
	}
}

func TestGetBindingString(t *testing.T) {
	r := NewDefaultRegistry()

	if got := r.GetBindingString(ContextNormal, ActionNavigateDown); got != "down/j" {
		t.Errorf("GetBindingString() = %q, want %q", got, "down/j")
	}
	if got := r.GetBindingString(ContextHelp, ActionQuitForce); got != "ctrl+c" {
		t.Errorf("expected global fallback, got %q", got)
	}
	if got := r.GetBindingString(ContextHelp, ActionCreatePost); got != "unbound" {
		t.Errorf("expected unbound, got %q", got)
	}
}

func TestListBindings_IncludesGlobal(t *testing.T) {
	bindings := NewDefaultRegistry().ListBindings(ContextError)

	var sawGlobal bool
	for _, b := range bindings {
		if b.Context == ContextGlobal && b.Key == "ctrl+c" {
			sawGlobal = true
		}
	}
	if !sawGlobal {
		t.Error("expected global bindings in the list")
	}
	if bindings[0].Context != ContextError {
		t.Error("expected context bindings first")
	}
}

func TestClone_IsIndependent(t *testing.T) {
	r := NewDefaultRegistry()
	clone := r.Clone()
	clone.Register(ContextNormal, "z", ActionQuit)

	if r.HasBinding(ContextNormal, "z") {
		t.Error("modifying the clone changed the original")
	}
}

func writeKeybinds(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keybinds.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOrDefault_AppliesOverrides(t *testing.T) {
	path := writeKeybinds(t, `{
  "version": "1.0",
  // replace n with c
  "normal": {
    "create_post": "c, N",
  },
}`)

	r, err := LoadOrDefault(path)
	if err != nil {
		t.Fatalf("LoadOrDefault() error: %v", err)
	}

	if action, _ := r.Match(ContextNormal, "c"); action != ActionCreatePost {
		t.Errorf("c = %q, want create_post", action)
	}
	if action, _ := r.Match(ContextNormal, "N"); action != ActionCreatePost {
		t.Errorf("N = %q, want create_post", action)
	}
	if r.HasBinding(ContextNormal, "n") {
		t.Error("default key n should be replaced")
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	r, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error: %v", err)
	}
	if !r.HasBinding(ContextNormal, "q") {
		t.Error("expected default bindings")
	}
}

func TestLoadOrDefault_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"malformed", `{"normal": `, "failed to load"},
		{"unknown action", `{"normal": {"explode": "x"}}`, "unknown action"},
		{"modifier only", `{"normal": {"quit": "ctrl+"}}`, "modifier without key"},
		{"no way to close", `{"comments": {"close_modal": ""}}`, "has no key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadOrDefault(writeKeybinds(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidator_Warnings(t *testing.T) {
	r := NewDefaultRegistry()
	r.Register(ContextHelp, "ctrl+c", ActionCloseModal)

	result := NewValidator().ValidateRegistry(r)
	if result.HasErrors() {
		t.Fatalf("unexpected errors:\n%s", result.String())
	}
	if !result.HasWarnings() {
		t.Fatal("expected warnings for the rebound reserved key")
	}
	if !strings.Contains(result.String(), "reserved key rebound") {
		t.Errorf("unexpected warnings:\n%s", result.String())
	}
}

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{Type: "conflict", Context: ContextNormal, Key: "q", Message: "key bound 2 times"}
	want := "[conflict] q in context 'normal': key bound 2 times"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
