package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullInfo(t *testing.T) {
	info := FullInfo()
	assert.True(t, strings.HasPrefix(info, "wordshift "+Version))
	assert.Contains(t, info, "built: "+BuildDate)
}
