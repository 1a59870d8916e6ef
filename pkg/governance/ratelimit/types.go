package ratelimit

// Scope is the dimension a rate limit applies to.
type Scope string

const (
	// ScopeUser limits requests per individual caller.
	ScopeUser Scope = "user"

	// ScopeTenant limits requests per tenant across all of its users.
	ScopeTenant Scope = "tenant"
)

// Usage reports the counter state for one scope within a window.
type Usage struct {
	Scope     Scope  `json:"scope"`
	Current   int64  `json:"current"`
	Limit     int64  `json:"limit"`
	Remaining int64  `json:"remaining"`
	WindowKey string `json:"window_key"`
}

// Decision is the outcome of a quota check.
type Decision struct {
	Allowed bool    `json:"allowed"`
	Usages  []Usage `json:"usages"`
}

// GetUsage returns the usage entry for a scope, or nil.
func (d *Decision) GetUsage(scope Scope) *Usage {
	for i := range d.Usages {
		if d.Usages[i].Scope == scope {
			return &d.Usages[i]
		}
	}
	return nil
}
