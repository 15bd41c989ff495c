package initialized_test

import (
	"testing"

	"github.com/pasqal-io/formmap/assertions/initialized"
	"gotest.tools/v3/assert"
)

func TestMake(t *testing.T) {
	witness := initialized.Make()
	assert.Assert(t, witness.IsSet())
	witness.Assert()
}

func TestZeroPanics(t *testing.T) {
	var witness initialized.IsInitialized
	assert.Assert(t, !witness.IsSet())
	defer func() {
		assert.Equal(t, recover(), "Struct was not initialized")
	}()
	witness.Assert()
}
