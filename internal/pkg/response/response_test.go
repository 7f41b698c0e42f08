package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Count(t *testing.T) {
	assert.Equal(t, 0, New(nil).Count)
	assert.Equal(t, 3, New([]int{1, 2, 3}).Count)
	assert.Equal(t, 0, New([]string{}).Count)
	assert.Equal(t, 1, New(map[string]int{"a": 1}).Count)
	assert.Equal(t, 1, New(struct{}{}).Count)

	var m map[string]int
	assert.Equal(t, 0, New(m).Count)
}

func TestFail_JSON(t *testing.T) {
	b, err := json.Marshal(Fail("job not found or not running", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":-1,"results":null,"detail":"job not found or not running"}`, string(b))
}
