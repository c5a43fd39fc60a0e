package result

import (
	"bytes"
	"testing"
	"time"

	"github.com/bnstruct/pebl/dag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNetworkDedupsAndSortsAscending(t *testing.T) {
	r := New(3, 0)
	netA, _ := dag.FromEdgeString(3, "0,1")
	netB, _ := dag.FromEdgeString(3, "1,2")

	r.AddNetwork(netA, 5.0)
	r.AddNetwork(netB, 1.0)
	r.AddNetwork(netA, 7.0) // dedup, replaces score

	require.Len(t, r.Entries, 2)
	assert.Equal(t, 1.0, r.Entries[0].Score)
	assert.Equal(t, 7.0, r.Entries[1].Score)
}

func TestAddNetworkCapsSize(t *testing.T) {
	r := New(2, 2)
	net1, _ := dag.FromEdgeString(2, "0,1")
	net2 := dag.New(2)
	net3, _ := dag.FromEdgeString(2, "1,0")

	r.AddNetwork(net1, 1.0)
	r.AddNetwork(net2, 2.0)
	r.AddNetwork(net3, 3.0)

	require.Len(t, r.Entries, 2)
	assert.Equal(t, 2.0, r.Entries[0].Score)
	assert.Equal(t, 3.0, r.Entries[1].Score)
}

func TestStartStopRunClosesDanglingRun(t *testing.T) {
	r := New(1, 0)
	t0 := time.Now()
	r.StartRun("host-a", t0)
	r.StartRun("host-b", t0.Add(time.Second)) // implicitly closes host-a

	require.Len(t, r.Runs, 2)
	assert.False(t, r.Runs[0].End.IsZero())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	r := New(2, 0)
	net, _ := dag.FromEdgeString(2, "0,1")
	r.AddNetwork(net, 1.5)
	r.StartRun("host", time.Now())
	r.StopRun(time.Now())

	var buf bytes.Buffer
	require.NoError(t, r.Encode(&buf))

	decoded, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, r.Entries, decoded.Entries)
	assert.Equal(t, r.NumVariables, decoded.NumVariables)
}
