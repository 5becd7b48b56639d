package cmds

import (
	"bytes"
	"testing"

	"github.com/lainio/err2/assert"
)

func TestValidateTime(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	err := ValidateTime("21:45")
	assert.NoError(err)
	err = ValidateTime("01:37:48")
	assert.NoError(err)
	err = ValidateTime("24:00:00")
	assert.Error(err)
	err = ValidateTime("noon")
	assert.Error(err)
}

func TestFprintln(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	var b bytes.Buffer
	Fprintln(&b, "ping", "ok")
	assert.Equal(b.String(), "ping ok\n")

	Fprintln(nil, "nothing happens")
	Fprintf(nil, "%s", "nothing happens")
}
