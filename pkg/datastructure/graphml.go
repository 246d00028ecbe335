package datastructure

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lintang-b-s/offlinenav/pkg/util"
)

type graphmlKey struct {
	ID       string `xml:"id,attr"`
	For      string `xml:"for,attr"`
	AttrName string `xml:"attr.name,attr"`
}

type graphmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

type graphmlNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphmlData `xml:"data"`
}

type graphmlEdge struct {
	Source   string        `xml:"source,attr"`
	Target   string        `xml:"target,attr"`
	Directed string        `xml:"directed,attr"`
	Data     []graphmlData `xml:"data"`
}

type graphmlGraph struct {
	EdgeDefault string `xml:"edgedefault,attr"`
}

// ReadGraphML parses the graphml export of osmnx. node coordinates come from the "y" (lat) and
// "x" (lon) attributes, edge length from "length" (meter, great-circle length when absent).
// in a directed graph every <edge> is one arc, in an undirected graph it is traversable both ways.
func ReadGraphML(r io.Reader) (*RawGraph, error) {
	dec := xml.NewDecoder(r)

	nodeKeys := make(map[string]string)
	edgeKeys := make(map[string]string)
	directed := true
	raw := NewRawGraph()
	edges := make([]graphmlEdge, 0)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: graphml: %v", ErrMalformedGraph, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "key":
			var k graphmlKey
			if err := dec.DecodeElement(&k, &start); err != nil {
				return nil, fmt.Errorf("%w: graphml key: %v", ErrMalformedGraph, err)
			}
			switch k.For {
			case "node":
				nodeKeys[k.ID] = k.AttrName
			case "edge":
				edgeKeys[k.ID] = k.AttrName
			}
		case "graph":
			for _, attr := range start.Attr {
				if attr.Name.Local == "edgedefault" {
					directed = attr.Value != "undirected"
				}
			}
		case "node":
			var n graphmlNode
			if err := dec.DecodeElement(&n, &start); err != nil {
				return nil, fmt.Errorf("%w: graphml node: %v", ErrMalformedGraph, err)
			}
			if err := addGraphMLNode(raw, n, nodeKeys); err != nil {
				return nil, err
			}
		case "edge":
			var e graphmlEdge
			if err := dec.DecodeElement(&e, &start); err != nil {
				return nil, fmt.Errorf("%w: graphml edge: %v", ErrMalformedGraph, err)
			}
			edges = append(edges, e)
		}
	}

	// edges may be written before the nodes they reference.
	for _, e := range edges {
		if err := addGraphMLEdge(raw, e, edgeKeys, directed); err != nil {
			return nil, err
		}
	}

	return raw, nil
}

func addGraphMLNode(raw *RawGraph, n graphmlNode, nodeKeys map[string]string) error {
	id, err := strconv.ParseInt(strings.TrimSpace(n.ID), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: node id %q is not an integer", ErrMalformedGraph, n.ID)
	}

	var lat, lon float64
	var hasLat, hasLon bool
	for _, d := range n.Data {
		switch nodeKeys[d.Key] {
		case "y":
			lat, err = strconv.ParseFloat(strings.TrimSpace(d.Value), 64)
			hasLat = err == nil
		case "x":
			lon, err = strconv.ParseFloat(strings.TrimSpace(d.Value), 64)
			hasLon = err == nil
		}
	}
	if !hasLat || !hasLon {
		return fmt.Errorf("%w: node %d has no coordinate", ErrMalformedGraph, id)
	}

	return raw.AddNode(id, lat, lon)
}

func addGraphMLEdge(raw *RawGraph, e graphmlEdge, edgeKeys map[string]string, directed bool) error {
	from, err := strconv.ParseInt(strings.TrimSpace(e.Source), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: edge source %q is not an integer", ErrMalformedGraph, e.Source)
	}
	to, err := strconv.ParseInt(strings.TrimSpace(e.Target), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: edge target %q is not an integer", ErrMalformedGraph, e.Target)
	}

	length := -1.0
	hasLength := false
	meta := EdgeMetadata{}
	for _, d := range e.Data {
		value := strings.TrimSpace(d.Value)
		switch edgeKeys[d.Key] {
		case "length":
			length, err = strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("%w: edge %d-%d length %q", ErrMalformedGraph, from, to, value)
			}
			hasLength = true
		case "name":
			meta.StreetName = strings.Join(util.ParseListLiteral(value), "; ")
		case "highway":
			if classes := util.ParseListLiteral(value); len(classes) > 0 {
				meta.RoadClass = classes[0]
			}
		case "osmid":
			if ids := util.ParseListLiteral(value); len(ids) > 0 {
				meta.OsmWayID, _ = strconv.ParseInt(ids[0], 10, 64)
			}
		}
	}

	if !hasLength {
		length, err = raw.EdgeLength(from, to)
		if err != nil {
			return err
		}
	}

	edgeDirected := directed
	switch e.Directed {
	case "true":
		edgeDirected = true
	case "false":
		edgeDirected = false
	}

	return raw.AddEdge(from, to, length, edgeDirected, meta)
}
