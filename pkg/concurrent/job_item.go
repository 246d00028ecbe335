package concurrent

import (
	"context"

	"github.com/lintang-b-s/offlinenav/pkg/datastructure"
)

type RouteQueryParam struct {
	Ctx    context.Context
	Index  int
	SrcLat float64
	SrcLon float64
	DstLat float64
	DstLon float64
}

func NewRouteQueryParam(ctx context.Context, index int, srcLat, srcLon, dstLat, dstLon float64) RouteQueryParam {
	return RouteQueryParam{
		Ctx:    ctx,
		Index:  index,
		SrcLat: srcLat,
		SrcLon: srcLon,
		DstLat: dstLat,
		DstLon: dstLon,
	}
}

// EdgeMetadataBatchParam consecutive edges starting at FirstEdgeID.
type EdgeMetadataBatchParam struct {
	FirstEdgeID int32
	Metadata    []datastructure.EdgeMetadata
}

func NewEdgeMetadataBatchParam(firstEdgeID int32, metadata []datastructure.EdgeMetadata) EdgeMetadataBatchParam {
	return EdgeMetadataBatchParam{
		FirstEdgeID: firstEdgeID,
		Metadata:    metadata,
	}
}

type JobI interface {
	RouteQueryParam | EdgeMetadataBatchParam
}

type Job[T JobI] struct {
	ID      int
	JobItem T
}
type JobFunc[T JobI, G any] func(job T) G
