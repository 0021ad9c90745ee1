// Package di implements a minimal service container with lazy singleton
// factories and generically typed lookup tokens.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry is the read side of the container.
type ServiceRegistry interface {
	// Get returns the named service, building it on first use. It panics on
	// unknown names; registration happens at startup, so a miss is a wiring
	// bug rather than a runtime condition.
	Get(name string) any
}

// Container registers services and factories for later resolution.
type Container interface {
	ServiceRegistry
	// Register stores an already built service instance.
	Register(name string, service any)
	// RegisterFactory stores a factory invoked lazily on first Get.
	RegisterFactory(name string, factory func(ServiceRegistry) any)
}

type container struct {
	mu        sync.Mutex
	factories map[string]func(ServiceRegistry) any
	instances map[string]any
	building  map[string]bool
}

func NewContainer() Container {
	return &container{
		factories: make(map[string]func(ServiceRegistry) any),
		instances: make(map[string]any),
		building:  make(map[string]bool),
	}
}

func (c *container) Register(name string, service any) {
	c.mu.Lock()
	c.instances[name] = service
	c.mu.Unlock()
}

func (c *container) RegisterFactory(name string, factory func(ServiceRegistry) any) {
	c.mu.Lock()
	c.factories[name] = factory
	c.mu.Unlock()
}

func (c *container) Get(name string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolve(name)
}

// resolve runs with c.mu held; factories resolve their own dependencies
// through a view reusing the held lock.
func (c *container) resolve(name string) any {
	if instance, ok := c.instances[name]; ok {
		return instance
	}

	factory, ok := c.factories[name]
	if !ok {
		panic(fmt.Sprintf("di: service %q not registered", name))
	}

	if c.building[name] {
		panic(fmt.Sprintf("di: circular dependency resolving %q", name))
	}
	c.building[name] = true
	defer delete(c.building, name)

	instance := factory(lockedView{c})
	c.instances[name] = instance
	return instance
}

type lockedView struct {
	c *container
}

func (v lockedView) Get(name string) any {
	return v.c.resolve(name)
}

// Token names a service together with its concrete type.
type Token[T any] struct {
	name string
}

func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

func (t Token[T]) Name() string { return t.name }

// RegisterToken registers a typed lazy factory for the token's service.
func RegisterToken[T any](c Container, token Token[T], factory func(ServiceRegistry) T) {
	c.RegisterFactory(token.name, func(sr ServiceRegistry) any {
		return factory(sr)
	})
}

// GetToken resolves the token's service with its static type restored.
func GetToken[T any](sr ServiceRegistry, token Token[T]) T {
	raw := sr.Get(token.name)

	typed, ok := raw.(T)
	if !ok {
		panic(fmt.Sprintf("di: service %q has type %T, want %T", token.name, raw, typed))
	}
	return typed
}
