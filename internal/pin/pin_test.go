package pin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"periph.io/x/conn/v3/gpio"
)

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("NO_SUCH_PIN")
	assert.Error(t, err)
}

func TestLevel(t *testing.T) {
	assert.Equal(t, 1, level(gpio.High))
	assert.Equal(t, 0, level(gpio.Low))
}
