package middleware

import (
	"testing"
)

func TestMiddleware_Chain(t *testing.T) {
	type handler func(int) int

	add10 := func(h handler) handler {
		return func(n int) int {
			return h(n) + 10
		}
	}

	multiply2 := func(h handler) handler {
		return func(n int) int {
			return h(n) * 2
		}
	}

	base := func(n int) int {
		return n
	}

	chained := Chain(add10, multiply2)(base)
	result := chained(5)

	if result != 20 {
		t.Errorf("Expected 20, got %d", result)
	}
}

func TestMiddleware_ChainEmpty(t *testing.T) {
	type handler func(string) string

	base := func(s string) string {
		return s
	}

	chained := Chain[handler]()(base)
	result := chained("test")

	if result != "test" {
		t.Errorf("Expected 'test', got %s", result)
	}
}

func TestMiddleware_ChainOrder(t *testing.T) {
	type handler func([]string) []string

	appendA := func(h handler) handler {
		return func(s []string) []string {
			result := h(s)
			return append(result, "A")
		}
	}

	appendB := func(h handler) handler {
		return func(s []string) []string {
			result := h(s)
			return append(result, "B")
		}
	}

	base := func(s []string) []string {
		return append(s, "base")
	}

	chained := Chain(appendA, appendB)(base)
	result := chained([]string{})

	expected := []string{"base", "B", "A"}
	if len(result) != len(expected) {
		t.Fatalf("Expected length %d, got %d", len(expected), len(result))
	}

	for i, v := range result {
		if v != expected[i] {
			t.Errorf("At index %d: expected %s, got %s", i, expected[i], v)
		}
	}
}

func TestMiddleware_ChainState(t *testing.T) {
	type handler func() int

	counter := 0

	increment := func(h handler) handler {
		return func() int {
			counter++
			return h() + counter
		}
	}

	base := func() int {
		return 0
	}

	chained := Chain(increment, increment, increment)(base)

	result1 := chained()
	if result1 != 9 {
		t.Errorf("First call: expected 9, got %d", result1)
	}

	result2 := chained()
	if result2 != 18 {
		t.Errorf("Second call: expected 18, got %d", result2)
	}
}

func BenchmarkMiddleware_Chain(b *testing.B) {
	type handler func(int) int

	add := func(n int) func(handler) handler {
		return func(h handler) handler {
			return func(x int) int {
				return h(x) + n
			}
		}
	}

	base := func(n int) int {
		return n
	}

	chained := Chain(add(1), add(2), add(3))(base)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		chained(0)
	}
}
