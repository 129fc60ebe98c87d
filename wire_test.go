package steward

import "testing"

func TestGrantsRoundTrip(t *testing.T) {
	src := AccessGrantSet{
		{
			TenantID:    "org_1",
			ScopeType:   ScopeOrg,
			ScopeID:     "org_1",
			Permissions: PermissionMap{DomainOrganization: ActionRead},
		},
		{
			TenantID:  "org_1",
			ScopeType: ScopeUnit,
			ScopeID:   "unit_9",
			Permissions: PermissionMap{
				DomainLeases:      ActionRead | ActionCreate | ActionUpdate | ActionDelete,
				DomainMaintenance: ActionRead,
			},
		},
	}

	data, err := EncodeGrants(src)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeGrants(data)
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != len(src) {
		t.Fatalf("decoded %d entries, want %d", len(got), len(src))
	}
	for i, want := range src {
		e := got[i]
		if e.TenantID != want.TenantID || e.ScopeType != want.ScopeType || e.ScopeID != want.ScopeID {
			t.Fatalf("entry %d = %+v, want %+v", i, e, want)
		}
		for d, m := range want.Permissions {
			if e.Permissions[d] != m {
				t.Fatalf("entry %d domain %s = %v, want %v", i, d, e.Permissions[d], m)
			}
		}
	}
}

func TestDecodeGrantsEmpty(t *testing.T) {
	grants, err := DecodeGrants(nil)
	if err != nil {
		t.Fatal(err)
	}
	if grants != nil {
		t.Fatalf("expected nil, got %v", grants)
	}

	grants, err = DecodeGrants([]byte("[]"))
	if err != nil {
		t.Fatal(err)
	}
	if grants != nil {
		t.Fatalf("expected nil, got %v", grants)
	}
}

func TestDecodeGrantsMalformed(t *testing.T) {
	if _, err := DecodeGrants([]byte("{not json")); err == nil {
		t.Fatal("expected error")
	}
}
