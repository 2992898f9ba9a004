package domain

import (
	"reflect"
	"testing"
)

func TestRoleSet_NamesAreSorted(t *testing.T) {
	s := NewRoleSet("ROLE_USER", "ROLE_ADMIN", "ROLE_OPERATOR", "ROLE_ADMIN")
	want := []string{"ROLE_ADMIN", "ROLE_OPERATOR", "ROLE_USER"}
	if !reflect.DeepEqual(s.Names(), want) {
		t.Fatalf("Names() = %v, want %v", s.Names(), want)
	}
}

func TestRoleSet_PrimaryIsDeterministic(t *testing.T) {
	s := NewRoleSet("ROLE_USER", "ROLE_ADMIN")
	for i := 0; i < 50; i++ {
		if got := s.Primary("ROLE_USER"); got != "ROLE_ADMIN" {
			t.Fatalf("Primary() = %q on iteration %d, want ROLE_ADMIN", got, i)
		}
	}
}

func TestRoleSet_PrimaryFallback(t *testing.T) {
	if got := NewRoleSet().Primary(DefaultRoleName); got != DefaultRoleName {
		t.Fatalf("empty set Primary() = %q, want %q", got, DefaultRoleName)
	}
}
