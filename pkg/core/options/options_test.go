package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeOptions struct {
	N int
}

func withN(n int) Option {
	return func(o interface{}) {
		if opt, ok := o.(*fakeOptions); ok {
			opt.N = n
		}
	}
}

func TestApplyRunsOptionsInOrder(t *testing.T) {
	o := fakeOptions{N: 1}
	Apply(&o, withN(2), withN(3))
	assert.Equal(t, 3, o.N)
}

func TestApplyNoOptionsLeavesDefaults(t *testing.T) {
	o := fakeOptions{N: 7}
	Apply(&o)
	assert.Equal(t, 7, o.N)
}
