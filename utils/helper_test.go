package utils

import "testing"

func TestIsValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "site.manager@buildtrack.in"}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false, want true", email)
		}
	}
	invalid := []string{"", "plain", "a@b", "@b.co", "a b@c.co"}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true, want false", email)
		}
	}
}

func TestUniqueSlice(t *testing.T) {
	got := UniqueSlice([]int{3, 1, 3, 2, 1})
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	seen := map[int]bool{}
	for _, v := range got {
		if seen[v] {
			t.Fatalf("duplicate %d survived", v)
		}
		seen[v] = true
	}
}

func TestDereferencePtr(t *testing.T) {
	v := 42
	if got := DereferencePtr(&v); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
	if got := DereferencePtr[int](nil); got != 0 {
		t.Fatalf("nil without default: got %d, want 0", got)
	}
	if got := DereferencePtr(nil, 7); got != 7 {
		t.Fatalf("nil with default: got %d, want 7", got)
	}
}

func TestJwtRoundTrip(t *testing.T) {
	token, err := JwtGenerate(12, "ADMIN")
	if err != nil {
		t.Fatalf("JwtGenerate: %v", err)
	}
	parsed, err := JwtValidate(token)
	if err != nil {
		t.Fatalf("JwtValidate: %v", err)
	}
	claims, ok := parsed.Claims.(*JwtCustomClaim)
	if !ok {
		t.Fatal("claims have unexpected type")
	}
	if claims.ID != 12 || claims.Role != "ADMIN" {
		t.Fatalf("claims = %+v, want id 12 role ADMIN", claims)
	}
}

func TestJwtValidate_RejectsGarbage(t *testing.T) {
	if _, err := JwtValidate("not-a-token"); err == nil {
		t.Fatal("garbage token must not validate")
	}
}
