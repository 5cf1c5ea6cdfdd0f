package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type user struct {
	ID   string
	Name string
}

func TestIsAbsent(t *testing.T) {
	var nilUser *user
	var nilAny any
	var typedNil any = nilUser
	var nilSlice []int
	var nilMap map[string]int
	var nilFunc func()

	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"nil pointer", IsAbsent(nilUser), true},
		{"pointer", IsAbsent(&user{ID: "1"}), false},
		{"nil interface", IsAbsent(nilAny), true},
		{"typed nil in interface", IsAbsent(typedNil), true},
		{"non-nil interface", IsAbsent[any]("A"), false},
		{"nil slice", IsAbsent(nilSlice), true},
		{"empty slice", IsAbsent([]int{}), false},
		{"nil map", IsAbsent(nilMap), true},
		{"nil func", IsAbsent(nilFunc), true},
		{"string", IsAbsent(""), false},
		{"int", IsAbsent(0), false},
		{"struct", IsAbsent(user{}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestIDMatcher_SameItem(t *testing.T) {
	byValue := ByID(func(s *string) string { return *s })
	a, a2, b := ptr("A"), ptr("A"), ptr("B")

	assert.True(t, byValue.SameItem(nil, nil))
	assert.False(t, byValue.SameItem(nil, a))
	assert.False(t, byValue.SameItem(a, nil))
	assert.True(t, byValue.SameItem(a, a))
	assert.True(t, byValue.SameItem(a, a2))
	assert.False(t, byValue.SameItem(a, b))

	t.Run("constant identity", func(t *testing.T) {
		m := ByID(func(s *string) int { return 1 })
		assert.True(t, m.SameItem(a, b))
	})

	t.Run("absent identity", func(t *testing.T) {
		m := ByID(func(s *string) *string {
			if *s == "nullItemId" {
				return nil
			}
			return s
		})
		assert.False(t, m.SameItem(ptr("nullItemId"), b))
		assert.False(t, m.SameItem(b, ptr("nullItemId")))
		assert.True(t, m.SameItem(ptr("nullItemId"), ptr("nullItemId")))
	})

	t.Run("unstable identity", func(t *testing.T) {
		next := 0
		m := ByID(func(s *string) int {
			next++
			return next
		})
		assert.False(t, m.SameItem(a, a))
	})

	t.Run("uncomparable identity", func(t *testing.T) {
		m := ByID(func(s *string) any { return []string{*s} })
		assert.NotPanics(t, func() {
			assert.False(t, m.SameItem(a, a2))
			assert.False(t, m.SameItem(a, b))
		})
		assert.True(t, m.SameItem(nil, nil))
	})

	t.Run("uncomparable field in identity", func(t *testing.T) {
		type key struct{ v any }
		m := ByID(func(s *string) key { return key{v: map[string]int{*s: 1}} })
		assert.NotPanics(t, func() {
			assert.False(t, m.SameItem(a, a2))
		})
	})

	t.Run("mixed identity types", func(t *testing.T) {
		m := ByID(func(s *string) any {
			if *s == "A" {
				return *s
			}
			return []byte(*s)
		})
		assert.True(t, m.SameItem(a, a2))
		assert.False(t, m.SameItem(a, b))
		assert.False(t, m.SameItem(b, ptr("B")))
	})

	t.Run("nil id func", func(t *testing.T) {
		var m IDMatcher[*string, string]
		assert.False(t, m.SameItem(a, a))
		assert.True(t, m.SameItem(nil, nil))
	})
}

func TestIDMatcher_SameContent(t *testing.T) {
	m := ByID(func(u *user) string { return u.ID })

	assert.True(t, m.SameContent(nil, nil))
	assert.False(t, m.SameContent(nil, &user{ID: "1"}))
	assert.False(t, m.SameContent(&user{ID: "1"}, nil))
	assert.True(t, m.SameContent(&user{ID: "1", Name: "A"}, &user{ID: "1", Name: "A"}))
	assert.False(t, m.SameContent(&user{ID: "1", Name: "A"}, &user{ID: "1", Name: "B"}))

	byName := m.WithContent(func(a, b *user) bool { return a.Name == b.Name })
	assert.True(t, byName.SameContent(&user{ID: "1", Name: "A"}, &user{ID: "2", Name: "A"}))
	assert.True(t, byName.SameContent(nil, nil))
}

func TestFuncs(t *testing.T) {
	f := Funcs[string]{
		Item: func(a, b string) bool { return a[0] == b[0] },
	}

	assert.True(t, f.SameItem("apple", "avocado"))
	assert.False(t, f.SameItem("apple", "banana"))
	assert.False(t, f.SameContent("apple", "avocado"))
	assert.True(t, f.SameContent("apple", "apple"))

	var empty Funcs[string]
	assert.False(t, empty.SameItem("a", "a"))
}

func ptr(s string) *string {
	return &s
}
