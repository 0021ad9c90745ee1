package di

import (
	"strings"
	"testing"
)

func TestContainerInstanceRegistration(t *testing.T) {
	c := NewContainer()
	c.Register("config", "some-config")

	got := c.Get("config")
	if got != "some-config" {
		t.Fatalf("got %v", got)
	}
}

func TestContainerLazySingletonFactory(t *testing.T) {
	c := NewContainer()

	builds := 0
	c.RegisterFactory("svc", func(sr ServiceRegistry) any {
		builds++
		return "instance"
	})

	if builds != 0 {
		t.Fatal("factory ran before first Get")
	}

	for i := 0; i < 3; i++ {
		if got := c.Get("svc"); got != "instance" {
			t.Fatalf("got %v", got)
		}
	}

	if builds != 1 {
		t.Fatalf("factory ran %d times, want 1", builds)
	}
}

func TestContainerUnknownServicePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unregistered service")
		}
	}()

	NewContainer().Get("nope")
}

func TestContainerDependencyChain(t *testing.T) {
	c := NewContainer()

	c.Register("leaf", 7)
	c.RegisterFactory("root", func(sr ServiceRegistry) any {
		return sr.Get("leaf").(int) * 2
	})

	if got := c.Get("root"); got != 14 {
		t.Fatalf("got %v, want 14", got)
	}
}

func TestContainerCircularDependencyPanics(t *testing.T) {
	c := NewContainer()

	c.RegisterFactory("a", func(sr ServiceRegistry) any { return sr.Get("b") })
	c.RegisterFactory("b", func(sr ServiceRegistry) any { return sr.Get("a") })

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on circular dependency")
		}
		if msg, ok := r.(string); !ok || !strings.Contains(msg, "circular") {
			t.Fatalf("unexpected panic value: %v", r)
		}
	}()

	c.Get("a")
}

func TestTokens(t *testing.T) {
	c := NewContainer()

	tok := NewToken[int]("answer")
	RegisterToken(c, tok, func(sr ServiceRegistry) int {
		return 42
	})

	if got := GetToken(c, tok); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
	if tok.Name() != "answer" {
		t.Fatalf("token name %q", tok.Name())
	}
}

func TestTokenTypeMismatchPanics(t *testing.T) {
	c := NewContainer()
	c.Register("svc", "a string")

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on type mismatch")
		}
	}()

	GetToken(c, NewToken[int]("svc"))
}
