package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		subscribed, verified bool
		want                 Level
	}{
		{true, true, FullAccess},
		{true, false, Partial},
		{false, true, None},
		{false, false, None},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Evaluate(tc.subscribed, tc.verified), "sub=%v verif=%v", tc.subscribed, tc.verified)
	}
}

func TestIsTrigger(t *testing.T) {
	assert.True(t, IsTrigger("я зарегистрировался"))
	assert.True(t, IsTrigger("  Я ЗАРЕГИСТРИРОВАЛСЯ \n"))
	assert.False(t, IsTrigger("я зарегистрировался!"))
	assert.False(t, IsTrigger("привет"))
}
