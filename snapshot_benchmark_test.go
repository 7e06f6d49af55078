package formstate

import (
	"fmt"
	"path/filepath"
	"testing"
)

// benchStore builds a store with forms×fields registered entries.
func benchStore(b *testing.B, forms, fields int) *Store {
	b.Helper()
	coord := NewCoordinator(nil)
	for i := 0; i < forms; i++ {
		formID := fmt.Sprintf("form-%d", i)
		coord.RegisterForm(formID)
		for j := 0; j < fields; j++ {
			v := FieldValidity{IsValid: j%3 != 0, IsDirty: j%2 == 0}
			if err := coord.RegisterField(formID, fmt.Sprintf("field-%d", j), v); err != nil {
				b.Fatal(err)
			}
		}
	}
	return coord.Store()
}

func BenchmarkCreateSnapshot_Small(b *testing.B) {
	store := benchStore(b, 1, 10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := CreateSnapshot(store); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCreateSnapshot_Large(b *testing.B) {
	store := benchStore(b, 50, 100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := CreateSnapshot(store); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkWriteSnapshot(b *testing.B) {
	snap, err := CreateSnapshot(benchStore(b, 10, 50))
	if err != nil {
		b.Fatal(err)
	}
	path := filepath.Join(b.TempDir(), "state.json")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := WriteSnapshot(snap, path); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRegisterField(b *testing.B) {
	coord := NewCoordinator(nil)
	coord.RegisterForm("f1")
	ids := make([]string, 20)
	for i := range ids {
		ids[i] = fmt.Sprintf("field-%d", i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = coord.RegisterField("f1", ids[i%len(ids)], FieldValidity{IsValid: i%2 == 0})
	}
}

func BenchmarkValidateField(b *testing.B) {
	rules := RuleSet{RuleEmail: 0, RuleMinLength: 3, RuleMaxLength: 64}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ValidateField("someone@example.com", rules)
	}
}
