package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/steward/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"OrgID", id.NewOrgID, "org_"},
		{"PropertyID", id.NewPropertyID, "prop_"},
		{"UnitID", id.NewUnitID, "unit_"},
		{"AssetID", id.NewAssetID, "asset_"},
		{"MembershipID", id.NewMembershipID, "mbr_"},
		{"PolicyID", id.NewPolicyID, "pol_"},
		{"AssignmentID", id.NewAssignmentID, "asgn_"},
		{"TemplateID", id.NewTemplateID, "tmpl_"},
		{"TemplateItemID", id.NewTemplateItemID, "titm_"},
		{"BindingID", id.NewBindingID, "bind_"},
		{"DecisionLogID", id.NewDecisionLogID, "declog_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	i := id.New(id.PrefixProperty)
	if i.IsNil() {
		t.Fatal("expected non-nil ID")
	}
	if i.Prefix() != id.PrefixProperty {
		t.Errorf("expected prefix %q, got %q", id.PrefixProperty, i.Prefix())
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
	}{
		{"OrgID", id.NewOrgID, id.ParseOrgID},
		{"PropertyID", id.NewPropertyID, id.ParsePropertyID},
		{"UnitID", id.NewUnitID, id.ParseUnitID},
		{"AssetID", id.NewAssetID, id.ParseAssetID},
		{"MembershipID", id.NewMembershipID, id.ParseMembershipID},
		{"PolicyID", id.NewPolicyID, id.ParsePolicyID},
		{"AssignmentID", id.NewAssignmentID, id.ParseAssignmentID},
		{"TemplateID", id.NewTemplateID, id.ParseTemplateID},
		{"TemplateItemID", id.NewTemplateItemID, id.ParseTemplateItemID},
		{"BindingID", id.NewBindingID, id.ParseBindingID},
		{"DecisionLogID", id.NewDecisionLogID, id.ParseDecisionLogID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.newFn()
			parsed, err := tt.parseFn(original.String())
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if parsed.String() != original.String() {
				t.Errorf("round-trip mismatch: %q != %q", parsed.String(), original.String())
			}
		})
	}
}

func TestCrossTypeRejection(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		parseFn func(string) (id.ID, error)
	}{
		{"ParseOrgID rejects prop_", id.NewPropertyID().String(), id.ParseOrgID},
		{"ParsePropertyID rejects unit_", id.NewUnitID().String(), id.ParsePropertyID},
		{"ParseUnitID rejects asset_", id.NewAssetID().String(), id.ParseUnitID},
		{"ParseAssetID rejects mbr_", id.NewMembershipID().String(), id.ParseAssetID},
		{"ParseMembershipID rejects pol_", id.NewPolicyID().String(), id.ParseMembershipID},
		{"ParsePolicyID rejects asgn_", id.NewAssignmentID().String(), id.ParsePolicyID},
		{"ParseAssignmentID rejects tmpl_", id.NewTemplateID().String(), id.ParseAssignmentID},
		{"ParseTemplateID rejects bind_", id.NewBindingID().String(), id.ParseTemplateID},
		{"ParseBindingID rejects org_", id.NewOrgID().String(), id.ParseBindingID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.parseFn(tt.input)
			if err == nil {
				t.Errorf("expected error for cross-type parse of %q, got nil", tt.input)
			}
		})
	}
}

func TestParseAny(t *testing.T) {
	ids := []id.ID{
		id.NewOrgID(),
		id.NewPropertyID(),
		id.NewUnitID(),
		id.NewAssetID(),
		id.NewMembershipID(),
		id.NewPolicyID(),
		id.NewAssignmentID(),
		id.NewTemplateID(),
		id.NewBindingID(),
	}

	for _, i := range ids {
		t.Run(i.String(), func(t *testing.T) {
			parsed, err := id.ParseAny(i.String())
			if err != nil {
				t.Fatalf("ParseAny(%q) failed: %v", i.String(), err)
			}
			if parsed.String() != i.String() {
				t.Errorf("round-trip mismatch: %q != %q", parsed.String(), i.String())
			}
		})
	}
}

func TestParseWithPrefix(t *testing.T) {
	i := id.NewPropertyID()
	parsed, err := id.ParseWithPrefix(i.String(), id.PrefixProperty)
	if err != nil {
		t.Fatalf("ParseWithPrefix failed: %v", err)
	}
	if parsed.String() != i.String() {
		t.Errorf("mismatch: %q != %q", parsed.String(), i.String())
	}

	_, err = id.ParseWithPrefix(i.String(), id.PrefixUnit)
	if err == nil {
		t.Error("expected error for wrong prefix")
	}
}

func TestParseEmpty(t *testing.T) {
	_, err := id.Parse("")
	if err == nil {
		t.Error("expected error for empty string")
	}
}

func TestNilID(t *testing.T) {
	var i id.ID
	if !i.IsNil() {
		t.Error("zero-value ID should be nil")
	}
	if i.String() != "" {
		t.Errorf("expected empty string, got %q", i.String())
	}
	if i.Prefix() != "" {
		t.Errorf("expected empty prefix, got %q", i.Prefix())
	}
}

func TestMarshalUnmarshalText(t *testing.T) {
	original := id.NewMembershipID()
	data, err := original.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}

	var restored id.ID
	if unmarshalErr := restored.UnmarshalText(data); unmarshalErr != nil {
		t.Fatalf("UnmarshalText failed: %v", unmarshalErr)
	}
	if restored.String() != original.String() {
		t.Errorf("mismatch: %q != %q", restored.String(), original.String())
	}

	// Nil round-trip.
	var nilID id.ID
	data, err = nilID.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText(nil) failed: %v", err)
	}
	var restored2 id.ID
	if err := restored2.UnmarshalText(data); err != nil {
		t.Fatalf("UnmarshalText(nil) failed: %v", err)
	}
	if !restored2.IsNil() {
		t.Error("expected nil after round-trip of nil ID")
	}
}

func TestValueScan(t *testing.T) {
	original := id.NewPolicyID()
	val, err := original.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var scanned id.ID
	if scanErr := scanned.Scan(val); scanErr != nil {
		t.Fatalf("Scan failed: %v", scanErr)
	}
	if scanned.String() != original.String() {
		t.Errorf("mismatch: %q != %q", scanned.String(), original.String())
	}

	// Nil round-trip.
	var nilID id.ID
	val, err = nilID.Value()
	if err != nil {
		t.Fatalf("Value(nil) failed: %v", err)
	}
	if val != nil {
		t.Errorf("expected nil value for nil ID, got %v", val)
	}

	var scanned2 id.ID
	if err := scanned2.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) failed: %v", err)
	}
	if !scanned2.IsNil() {
		t.Error("expected nil after scan of nil")
	}
}

func TestUniqueness(t *testing.T) {
	a := id.NewPropertyID()
	b := id.NewPropertyID()
	if a.String() == b.String() {
		t.Errorf("two consecutive NewPropertyID() calls returned the same ID: %q", a.String())
	}
}
