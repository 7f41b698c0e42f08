package jobs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rosterHeader = "             JOBID    PARTITION                           NAME    STATE       TIME   TIME_LIMIT        TRES_PER_NODE          SUBMIT_TIME  NODES NODELIST(REASON)"

func TestParseRoster_Empty(t *testing.T) {
	assert.Empty(t, ParseRoster(""))
	assert.Empty(t, ParseRoster("\n\n"))
	assert.Empty(t, ParseRoster(rosterHeader+"\n"))
	assert.NotNil(t, ParseRoster(""))
}

func TestParseRoster_LastColumnKeepsSpaces(t *testing.T) {
	out := rosterHeader + "\n" +
		"           1234567      booster                          train  PENDING       0:00     1:00:00   gres/gpu:4  2024-05-01T10:00:00      2 (Resources needed)\n" +
		"\n" +
		"           1234568      booster                           eval  RUNNING      12:01     2:00:00   gres/gpu:4  2024-05-01T09:00:00      1 jwb[0012-0013]\n"

	jobs := ParseRoster(out)
	require.Len(t, jobs, 2)

	assert.Equal(t, 10, jobs[0].Len())
	id, ok := jobs[0].Get("JOBID")
	assert.True(t, ok)
	assert.Equal(t, "1234567", id)
	reason, _ := jobs[0].Get("NODELIST(REASON)")
	assert.Equal(t, "(Resources needed)", reason)

	state, _ := jobs[1].Get("STATE")
	assert.Equal(t, "RUNNING", state)
	nodes, _ := jobs[1].Get("NODELIST(REASON)")
	assert.Equal(t, "jwb[0012-0013]", nodes)

	_, ok = jobs[1].Get("ACCOUNT")
	assert.False(t, ok)
}

func TestParseRoster_ShortLinePadsMissingColumns(t *testing.T) {
	jobs := ParseRoster("JOBID NAME STATE\n42 sim\n")
	require.Len(t, jobs, 1)

	state, ok := jobs[0].Get("STATE")
	assert.True(t, ok)
	assert.Equal(t, "", state)
	assert.Equal(t, []string{"JOBID", "NAME", "STATE"}, jobs[0].Columns())
}

func TestJobRecord_MarshalKeepsHeaderOrder(t *testing.T) {
	jobs := ParseRoster("STATE JOBID NAME\nRUNNING 7 a \"quoted\" name\n")
	require.Len(t, jobs, 1)

	b, err := json.Marshal(jobs)
	require.NoError(t, err)
	assert.Equal(t, `[{"STATE":"RUNNING","JOBID":"7","NAME":"a \"quoted\" name"}]`, string(b))
}

func TestNewJobRecord(t *testing.T) {
	r := NewJobRecord([]string{"A", "B"}, "1")
	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"A":"1","B":""}`, string(b))
}

func TestSplitFieldsN(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c d  e"}, splitFieldsN("  a   b c d  e  ", 3))
	assert.Equal(t, []string{"a b"}, splitFieldsN("a b", 1))
	assert.Nil(t, splitFieldsN("   ", 3))
}
