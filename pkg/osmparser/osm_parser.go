package osmparser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lintang-b-s/offlinenav/pkg/datastructure"
	"github.com/lintang-b-s/offlinenav/pkg/geo"
	"github.com/lintang-b-s/offlinenav/pkg/store"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"go.uber.org/zap"
)

type NodeType int

const (
	END_NODE NodeType = iota + 1
	BETWEEN_NODE
	JUNCTION_NODE
)

type nodeCoord struct {
	lat float64
	lon float64
}

type node struct {
	id    int64
	coord nodeCoord
}

type OsmParser struct {
	log         *zap.Logger
	defaultCity string
	simplify    bool

	wayNodeMap      map[int64]NodeType
	acceptedNodeMap map[int64]nodeCoord
	barrierNodes    map[int64]struct{}
}

// NewOSMParser simplify collapses the nodes between two junctions (or barriers) of a way into a single
// edge, otherwise every pair of consecutive way nodes is an edge.
func NewOSMParser(log *zap.Logger, defaultCity string, simplify bool) *OsmParser {
	return &OsmParser{
		log:             log,
		defaultCity:     defaultCity,
		simplify:        simplify,
		wayNodeMap:      make(map[int64]NodeType),
		acceptedNodeMap: make(map[int64]nodeCoord),
		barrierNodes:    make(map[int64]struct{}),
	}
}

var (
	skipHighway = map[string]struct{}{
		"footway":                {},
		"construction":           {},
		"cycleway":               {},
		"path":                   {},
		"pedestrian":             {},
		"busway":                 {},
		"steps":                  {},
		"bridleway":              {},
		"corridor":               {},
		"street_lamp":            {},
		"bus_stop":               {},
		"crossing":               {},
		"cyclist_waiting_aid":    {},
		"elevator":               {},
		"emergency_bay":          {},
		"emergency_access_point": {},
		"give_way":               {},
		"phone":                  {},
		"ladder":                 {},
		"milestone":              {},
		"passing_place":          {},
		"platform":               {},
		"speed_camera":           {},
		"track":                  {},
		"bus_guideway":           {},
		"speed_display":          {},
		"stop":                   {},
		"toll_gantry":            {},
		"traffic_mirror":         {},
		"traffic_signals":        {},
		"trailhead":              {},
		"proposed":               {},
		"abandoned":              {},
	}
)

// ParseResult road graph & the addresses tagged on osm nodes.
type ParseResult struct {
	Graph     *datastructure.RawGraph
	Addresses []store.Address
}

// ParseFile parses an .osm.pbf or .osm (xml) file.
func (p *OsmParser) ParseFile(ctx context.Context, mapFile string) (*ParseResult, error) {
	f, err := os.Open(mapFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	isXML := strings.EqualFold(filepath.Ext(mapFile), ".osm") || strings.HasSuffix(strings.ToLower(mapFile), ".osm.xml")

	newScanner := func() (osm.Scanner, error) {
		if _, err := f.Seek(0, 0); err != nil {
			return nil, err
		}
		if isXML {
			return osmxml.New(ctx, f), nil
		}
		// must not be parallel
		return osmpbf.New(ctx, f, 1), nil
	}

	return p.Parse(ctx, newScanner)
}

// Parse reads the map twice: the first pass marks the nodes used by road ways, the second
// reads node coordinates & addresses and then splits every road way into edges.
// the scanner has to return nodes before ways, as osm files do.
func (p *OsmParser) Parse(ctx context.Context, newScanner func() (osm.Scanner, error)) (*ParseResult, error) {
	scanner, err := newScanner()
	if err != nil {
		return nil, err
	}

	countWays := 0
	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok || len(way.Nodes) < 2 || !acceptOsmWay(way) {
			continue
		}
		if (countWays+1)%50000 == 0 {
			p.log.Info("reading openstreetmap ways...", zap.Int("ways", countWays+1))
		}
		countWays++

		for i, wayNode := range way.Nodes {
			id := int64(wayNode.ID)
			if _, ok := p.wayNodeMap[id]; !ok {
				if i == 0 || i == len(way.Nodes)-1 {
					p.wayNodeMap[id] = END_NODE
				} else {
					p.wayNodeMap[id] = BETWEEN_NODE
				}
			} else {
				p.wayNodeMap[id] = JUNCTION_NODE
			}
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("scan osm ways: %w", err)
	}
	scanner.Close()

	scanner, err = newScanner()
	if err != nil {
		return nil, err
	}
	defer scanner.Close()

	result := &ParseResult{
		Graph:     datastructure.NewRawGraph(),
		Addresses: make([]store.Address, 0),
	}

	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			p.processNode(o, result)
		case *osm.Way:
			if len(o.Nodes) < 2 || !acceptOsmWay(o) {
				continue
			}
			if err := p.processWay(o, result.Graph); err != nil {
				return nil, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan osm: %w", err)
	}

	p.log.Info("openstreetmap parsed",
		zap.Int("ways", countWays),
		zap.Int("nodes", len(result.Graph.Nodes)),
		zap.Int("edges", len(result.Graph.Edges)),
		zap.Int("addresses", len(result.Addresses)))

	return result, nil
}

func (p *OsmParser) processNode(n *osm.Node, result *ParseResult) {
	id := int64(n.ID)
	if _, ok := p.wayNodeMap[id]; ok {
		p.acceptedNodeMap[id] = nodeCoord{lat: n.Lat, lon: n.Lon}
	}

	if n.Tags.Find("barrier") != "" || n.Tags.Find("ford") != "" {
		p.barrierNodes[id] = struct{}{}
	}

	if street := n.Tags.Find("addr:street"); street != "" {
		city := n.Tags.Find("addr:city")
		if city == "" {
			city = p.defaultCity
		}
		result.Addresses = append(result.Addresses, store.NewAddress(street, city, n.Lat, n.Lon))
	}
}

type wayDirection struct {
	oneWay  bool
	forward bool
}

func isRestricted(value string) bool {
	switch value {
	case "no", "restricted", "military", "emergency", "private", "permit":
		return true
	}
	return false
}

func getWayDirection(way *osm.Way) wayDirection {
	forwardRestricted := isRestricted(way.Tags.Find("vehicle:forward")) || isRestricted(way.Tags.Find("motor_vehicle:forward"))
	backwardRestricted := isRestricted(way.Tags.Find("vehicle:backward")) || isRestricted(way.Tags.Find("motor_vehicle:backward"))

	switch way.Tags.Find("oneway") {
	case "yes", "true", "1":
		return wayDirection{oneWay: true, forward: true}
	case "-1", "reverse":
		return wayDirection{oneWay: true, forward: false}
	case "no", "false", "0":
	default:
		junction := way.Tags.Find("junction")
		if junction == "roundabout" || junction == "circular" || way.Tags.Find("highway") == "motorway" {
			return wayDirection{oneWay: true, forward: true}
		}
	}

	if forwardRestricted && !backwardRestricted {
		return wayDirection{oneWay: true, forward: false}
	}
	if backwardRestricted && !forwardRestricted {
		return wayDirection{oneWay: true, forward: true}
	}
	return wayDirection{oneWay: false, forward: true}
}

func wayMetadata(way *osm.Way) datastructure.EdgeMetadata {
	name := way.Tags.Find("name")
	if name == "" {
		name = way.Tags.Find("ref")
	}
	return datastructure.EdgeMetadata{
		StreetName: name,
		RoadClass:  way.Tags.Find("highway"),
		OsmWayID:   int64(way.ID),
	}
}

// processWay splits the way at junction & barrier nodes (every node when not simplifying) and at
// nodes missing from the extract.
func (p *OsmParser) processWay(way *osm.Way, raw *datastructure.RawGraph) error {
	direction := getWayDirection(way)
	meta := wayMetadata(way)

	waySegment := []node{}
	for i, wayNode := range way.Nodes {
		id := int64(wayNode.ID)
		coord, ok := p.acceptedNodeMap[id]
		if !ok {
			if err := p.addEdge(waySegment, meta, direction, raw); err != nil {
				return err
			}
			waySegment = []node{}
			continue
		}

		nodeData := node{id: id, coord: coord}
		waySegment = append(waySegment, nodeData)

		last := i == len(way.Nodes)-1
		if len(waySegment) > 1 && (last || p.isSegmentBoundary(id)) {
			if err := p.addEdge(waySegment, meta, direction, raw); err != nil {
				return err
			}
			waySegment = []node{nodeData}
		}
	}
	return nil
}

func (p *OsmParser) isSegmentBoundary(nodeID int64) bool {
	if !p.simplify {
		return true
	}
	if _, ok := p.barrierNodes[nodeID]; ok {
		return true
	}
	return p.wayNodeMap[nodeID] == JUNCTION_NODE
}

func (p *OsmParser) addEdge(segment []node, meta datastructure.EdgeMetadata, direction wayDirection,
	raw *datastructure.RawGraph) error {
	if len(segment) < 2 {
		return nil
	}
	from, to := segment[0], segment[len(segment)-1]
	if from.id == to.id && len(segment) == 2 {
		return nil
	}

	distance := 0.0
	for i := 1; i < len(segment); i++ {
		distance += geo.HaversineMeters(segment[i-1].coord.lat, segment[i-1].coord.lon,
			segment[i].coord.lat, segment[i].coord.lon)
	}

	for _, n := range []node{from, to} {
		if !raw.HasNode(n.id) {
			if err := raw.AddNode(n.id, n.coord.lat, n.coord.lon); err != nil {
				return err
			}
		}
	}

	if direction.oneWay && !direction.forward {
		from, to = to, from
	}
	return raw.AddEdge(from.id, to.id, distance, direction.oneWay, meta)
}

func acceptOsmWay(way *osm.Way) bool {
	highway := way.Tags.Find("highway")
	junction := way.Tags.Find("junction")
	if highway != "" {
		if _, ok := skipHighway[highway]; !ok {
			return true
		}
	} else if way.Tags.Find("route") == "road" {
		return true
	} else if junction != "" {
		return true
	}
	return false
}
