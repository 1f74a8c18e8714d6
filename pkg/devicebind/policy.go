package devicebind

// Decision is the outcome of evaluating a login request against the current
// binding state.
type Decision int

const (
	// DecisionAllow lets the request proceed
	DecisionAllow Decision = iota
	// DecisionDeny rejects the request unconditionally; the approved flag
	// has no effect on it
	DecisionDeny
	// DecisionRequireApproval asks the caller to resubmit with approved=true
	DecisionRequireApproval
	// decisionMigrate is internal: the request is allowable but requires a
	// store migration first. The service turns it into Allow or Deny
	// depending on the migration result.
	decisionMigrate
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionDeny:
		return "deny"
	case DecisionRequireApproval:
		return "require-approval"
	case decisionMigrate:
		return "migrate"
	}
	return "unknown"
}

// DenyReasonDeviceClaimed is the only deny reason the policy produces
const DenyReasonDeviceClaimed = "device-claimed-by-other-user"

// bindingState is the resolved view the policy evaluates: the active device
// for the requesting user and the active owner of the requested device, each
// empty when no binding exists. Resolution consults the cache first and the
// store on cache miss; by the time evaluate runs, empty means absent.
type bindingState struct {
	userDevice string // device the user is actively bound to
	deviceUser string // user the device is actively bound to
}

// evaluate applies the decision table, first match wins:
//
//  1. device already bound to the same user        -> Allow, no mutation
//  2. device bound to a different user             -> Deny, unconditionally
//  3. user bound to a different device             -> RequireApproval,
//     or migrate when approved
//  4. user has no active device                    -> migrate (first binding)
func evaluate(state bindingState, userID, deviceID string, approved bool) Decision {
	if state.deviceUser == userID || state.userDevice == deviceID {
		return DecisionAllow
	}
	if state.deviceUser != "" {
		return DecisionDeny
	}
	if state.userDevice != "" && !approved {
		return DecisionRequireApproval
	}
	return decisionMigrate
}
