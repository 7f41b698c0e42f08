package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const scontrolOut = `JobId=4242 JobName=train
   UserId=alice(1000) GroupId=alice(1000) MCS_label=N/A
   JobState=RUNNING Reason=None Dependency=(null)
   NodeList=jwb[0012-0013]
   WorkDir=/p/home/alice/run
   StdErr=(null)
   StdIn=/dev/null
   StdOut=/p/home/alice/run/slurm-4242.out
   TresPerNode=gres/gpu:4
`

func TestParseJobDetail(t *testing.T) {
	d := ParseJobDetail(scontrolOut)
	assert.Equal(t, "4242", d.JobID)
	assert.Equal(t, "RUNNING", d.JobState)
	assert.Equal(t, "/p/home/alice/run", d.WorkDir)
	assert.Equal(t, "/p/home/alice/run/slurm-4242.out", d.StdOut)
	assert.Equal(t, "", d.StdErr)
	assert.Equal(t, "jwb[0012-0013]", d.NodeList)
	assert.Equal(t, "gres/gpu:4", d.Gres)
}

func TestParseJobDetail_EmptyValueIsAbsent(t *testing.T) {
	d := ParseJobDetail("JobId=1 StdOut= StdErr=/tmp/e.err")
	assert.Equal(t, "", d.StdOut)
	assert.Equal(t, "/tmp/e.err", d.StdErr)
}

func TestParseJobDetail_FirstRecordWins(t *testing.T) {
	d := ParseJobDetail("JobId=1 StdOut=/a.out\n\nJobId=2 StdOut=/b.out")
	assert.Equal(t, "1", d.JobID)
	assert.Equal(t, "/a.out", d.StdOut)
}
