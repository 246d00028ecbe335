package datastructure

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// node-link json as written by networkx.node_link_data, either at the top level or nested
// under "graph".
type nodeLinkGraph struct {
	Directed *bool          `json:"directed"`
	Nodes    []nodeLinkNode `json:"nodes"`
	Links    []nodeLinkEdge `json:"links"`
	Edges    []nodeLinkEdge `json:"edges"`
}

type nodeLinkDocument struct {
	nodeLinkGraph
	Graph *nodeLinkGraph `json:"graph"`
}

type nodeLinkNode struct {
	ID  json.RawMessage `json:"id"`
	X   *float64        `json:"x"`
	Y   *float64        `json:"y"`
	Lat *float64        `json:"lat"`
	Lon *float64        `json:"lon"`
}

type nodeLinkEdge struct {
	Source  json.RawMessage `json:"source"`
	Target  json.RawMessage `json:"target"`
	Length  *float64        `json:"length"`
	Oneway  json.RawMessage `json:"oneway"`
	Name    json.RawMessage `json:"name"`
	Highway json.RawMessage `json:"highway"`
	OsmID   json.RawMessage `json:"osmid"`
}

func ReadNodeLinkJSON(r io.Reader) (*RawGraph, error) {
	var doc nodeLinkDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: node-link json: %v", ErrMalformedGraph, err)
	}

	g := doc.nodeLinkGraph
	if doc.Graph != nil && len(doc.Graph.Nodes) > 0 {
		g = *doc.Graph
	}

	directed := true
	if g.Directed != nil {
		directed = *g.Directed
	}

	raw := NewRawGraph()
	for _, n := range g.Nodes {
		id, err := parseJSONID(n.ID)
		if err != nil {
			return nil, err
		}

		lat, lon := n.Lat, n.Lon
		if n.Y != nil && n.X != nil {
			lat, lon = n.Y, n.X
		}
		if lat == nil || lon == nil {
			return nil, fmt.Errorf("%w: node %d has no coordinate", ErrMalformedGraph, id)
		}
		if err := raw.AddNode(id, *lat, *lon); err != nil {
			return nil, err
		}
	}

	links := g.Links
	if len(links) == 0 {
		links = g.Edges
	}
	for _, e := range links {
		from, err := parseJSONID(e.Source)
		if err != nil {
			return nil, err
		}
		to, err := parseJSONID(e.Target)
		if err != nil {
			return nil, err
		}

		var length float64
		if e.Length != nil {
			length = *e.Length
		} else if length, err = raw.EdgeLength(from, to); err != nil {
			return nil, err
		}

		// in a directed export each link is one arc, the oneway attribute only matters otherwise.
		oneway := directed
		if !directed {
			oneway = parseJSONBool(e.Oneway)
		}

		meta := EdgeMetadata{
			StreetName: strings.Join(parseJSONStrings(e.Name), "; "),
		}
		if classes := parseJSONStrings(e.Highway); len(classes) > 0 {
			meta.RoadClass = classes[0]
		}
		if ids := parseJSONStrings(e.OsmID); len(ids) > 0 {
			meta.OsmWayID, _ = strconv.ParseInt(ids[0], 10, 64)
		}

		if err := raw.AddEdge(from, to, length, oneway, meta); err != nil {
			return nil, err
		}
	}

	return raw, nil
}

// parseJSONID node ids may be numbers or numeric strings.
func parseJSONID(msg json.RawMessage) (int64, error) {
	var num json.Number
	if err := json.Unmarshal(msg, &num); err == nil {
		if id, err := num.Int64(); err == nil {
			return id, nil
		}
	}
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		if id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: node id %s is not an integer", ErrMalformedGraph, string(msg))
}

// parseJSONStrings accepts a string, a number or a list of them.
func parseJSONStrings(msg json.RawMessage) []string {
	if len(msg) == 0 {
		return []string{}
	}
	var list []json.RawMessage
	if err := json.Unmarshal(msg, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, parseJSONStrings(item)...)
		}
		return out
	}
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		if s == "" {
			return []string{}
		}
		return []string{s}
	}
	var num json.Number
	if err := json.Unmarshal(msg, &num); err == nil {
		return []string{num.String()}
	}
	return []string{}
}

func parseJSONBool(msg json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(msg, &b); err == nil {
		return b
	}
	var list []bool
	if err := json.Unmarshal(msg, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return strings.EqualFold(s, "true") || s == "yes" || s == "1"
	}
	return false
}
