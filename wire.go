package steward

import (
	"encoding/json"
	"fmt"
)

// GrantRecord is the transport form of one AccessEntry, suitable for
// embedding in a signed credential. Permissions carry action letters, not
// raw integers, for auditability and forward compatibility.
type GrantRecord struct {
	TenantID    string            `json:"t"`
	ScopeType   ScopeType         `json:"s"`
	ScopeID     string            `json:"i"`
	Permissions map[string]string `json:"p"`
}

// EncodeGrants serializes a grant set into its ordered transport form.
func EncodeGrants(grants AccessGrantSet) ([]byte, error) {
	records := make([]GrantRecord, 0, len(grants))
	for _, e := range grants {
		records = append(records, GrantRecord{
			TenantID:    e.TenantID,
			ScopeType:   e.ScopeType,
			ScopeID:     e.ScopeID,
			Permissions: e.Permissions.Encode(),
		})
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("steward: encode grants: %w", err)
	}
	return data, nil
}

// DecodeGrants deserializes a grant set from its transport form. The data
// comes out of a verified credential, so permission strings take the
// lenient parse.
func DecodeGrants(data []byte) (AccessGrantSet, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var records []GrantRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("steward: decode grants: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	grants := make(AccessGrantSet, 0, len(records))
	for _, r := range records {
		grants = append(grants, AccessEntry{
			TenantID:    r.TenantID,
			ScopeType:   r.ScopeType,
			ScopeID:     r.ScopeID,
			Permissions: DecodePermissions(r.Permissions),
		})
	}
	return grants, nil
}
