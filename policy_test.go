package cachestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicyResolution(t *testing.T) {
	cases := []struct {
		policy       Policy
		networkFirst bool
		dualRead     bool
		fallback     bool
		cacheUpdate  bool
	}{
		{PolicyNoCache, true, false, false, false},
		{PolicyCacheOnly, false, false, false, false},
		{PolicyCacheFirst, false, true, true, true},
		{PolicyNetworkFirst, true, false, true, true},
		{PolicyBoth, false, true, true, true},
	}

	for _, tc := range cases {
		t.Run(tc.policy.String(), func(t *testing.T) {
			assert.Equal(t, tc.networkFirst, tc.policy.networkFirst(), "networkFirst")
			assert.Equal(t, tc.dualRead, tc.policy.dualRead(), "dualRead")
			assert.Equal(t, tc.fallback, tc.policy.fallback(), "fallback")
			assert.Equal(t, tc.cacheUpdate, tc.policy.cacheUpdate(), "cacheUpdate")
		})
	}
}

func TestPolicyValid(t *testing.T) {
	assert.False(t, PolicyDefault.Valid())
	assert.False(t, Policy(-1).Valid())
	assert.False(t, Policy(42).Valid())
	for p := PolicyNoCache; p <= PolicyBoth; p++ {
		assert.True(t, p.Valid(), p.String())
	}
}

func TestKindIsRead(t *testing.T) {
	assert.True(t, KindAggregate.IsRead())
	assert.True(t, KindQuery.IsRead())
	assert.True(t, KindQueryWithQuery.IsRead())
	assert.False(t, KindSave.IsRead())
	assert.False(t, KindRemove.IsRead())
	assert.False(t, KindRemoveWithQuery.IsRead())
}
