package concurrent

import (
	"context"
	"testing"

	"github.com/lintang-b-s/offlinenav/pkg/datastructure"
	"github.com/stretchr/testify/assert"
)

func TestWorkerPool(t *testing.T) {
	const jobs = 200
	workers := NewWorkerPool[RouteQueryParam, int](8, jobs)

	for i := 0; i < jobs; i++ {
		workers.AddJob(NewRouteQueryParam(context.Background(), i, 17.385, 78.4867, 17.4401, 78.3489))
	}

	workers.Close()
	workers.Start(func(job RouteQueryParam) int {
		return job.Index * 2
	})
	workers.Wait()

	seen := make(map[int]bool, jobs)
	for result := range workers.CollectResults() {
		seen[result] = true
	}
	assert.Len(t, seen, jobs)
	for i := 0; i < jobs; i++ {
		assert.True(t, seen[i*2])
	}
}

func TestWorkerPoolEdgeMetadataBatch(t *testing.T) {
	workers := NewWorkerPool[EdgeMetadataBatchParam, int32](2, 2)
	workers.AddJob(NewEdgeMetadataBatchParam(0, []datastructure.EdgeMetadata{{StreetName: "a"}, {StreetName: "b"}}))
	workers.AddJob(NewEdgeMetadataBatchParam(2, []datastructure.EdgeMetadata{{StreetName: "c"}}))
	workers.Close()
	workers.Start(func(job EdgeMetadataBatchParam) int32 {
		return job.FirstEdgeID + int32(len(job.Metadata))
	})
	workers.Wait()

	total := int32(0)
	for result := range workers.CollectResults() {
		total += result
	}
	assert.Equal(t, int32(5), total)
}

func TestWorkerPoolNoJobs(t *testing.T) {
	workers := NewWorkerPool[RouteQueryParam, int](4, 0)
	workers.Close()
	workers.Start(func(job RouteQueryParam) int { return 1 })
	workers.Wait()

	count := 0
	for range workers.CollectResults() {
		count++
	}
	assert.Equal(t, 0, count)
}
