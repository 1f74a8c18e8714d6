package devicebind

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		state    bindingState
		userID   string
		deviceID string
		approved bool
		want     Decision
	}{
		{
			name:     "no bindings, first login migrates",
			state:    bindingState{},
			userID:   "u1",
			deviceID: "d1",
			want:     decisionMigrate,
		},
		{
			name:     "device bound to same user allows",
			state:    bindingState{userDevice: "d1", deviceUser: "u1"},
			userID:   "u1",
			deviceID: "d1",
			want:     DecisionAllow,
		},
		{
			name:     "device bound to another user denies",
			state:    bindingState{deviceUser: "u2"},
			userID:   "u1",
			deviceID: "d1",
			want:     DecisionDeny,
		},
		{
			name:     "approval does not override device conflict",
			state:    bindingState{deviceUser: "u2"},
			userID:   "u1",
			deviceID: "d1",
			approved: true,
			want:     DecisionDeny,
		},
		{
			name:     "conflict wins over the user's own binding",
			state:    bindingState{userDevice: "d0", deviceUser: "u2"},
			userID:   "u1",
			deviceID: "d1",
			approved: true,
			want:     DecisionDeny,
		},
		{
			name:     "new device without approval asks for it",
			state:    bindingState{userDevice: "d0"},
			userID:   "u1",
			deviceID: "d1",
			want:     DecisionRequireApproval,
		},
		{
			name:     "new device with approval migrates",
			state:    bindingState{userDevice: "d0"},
			userID:   "u1",
			deviceID: "d1",
			approved: true,
			want:     decisionMigrate,
		},
		{
			name:     "free device, approved flag irrelevant for first binding",
			state:    bindingState{},
			userID:   "u1",
			deviceID: "d1",
			approved: true,
			want:     decisionMigrate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evaluate(tt.state, tt.userID, tt.deviceID, tt.approved)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "allow", DecisionAllow.String())
	assert.Equal(t, "deny", DecisionDeny.String())
	assert.Equal(t, "require-approval", DecisionRequireApproval.String())
}
