// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

package spatial

import (
	"math"
	"sort"

	"github.com/civic-mind/civicmesh/internal/geo"
)

// DefaultMaxEntries is the default node capacity.
const DefaultMaxEntries = 9

// Rect is an axis-aligned rectangle in degree space. X is longitude and Y
// is latitude. A point is a degenerate rectangle with Min == Max.
type Rect struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Point returns the degenerate rectangle for a single coordinate.
func Point(lat, lon float64) Rect {
	return Rect{MinX: lon, MinY: lat, MaxX: lon, MaxY: lat}
}

// Intersects reports whether r and o overlap: two rectangles intersect iff
// neither is entirely left/right/above/below the other. Touching edges count
// as an intersection.
func (r Rect) Intersects(o Rect) bool {
	return !(r.MinX > o.MaxX || o.MinX > r.MaxX || r.MinY > o.MaxY || o.MinY > r.MaxY)
}

// CenterLat returns the latitude of the rectangle's center.
func (r Rect) CenterLat() float64 { return (r.MinY + r.MaxY) / 2 }

// CenterLon returns the longitude of the rectangle's center.
func (r Rect) CenterLon() float64 { return (r.MinX + r.MaxX) / 2 }

func (r Rect) extend(o Rect) Rect {
	return Rect{
		MinX: math.Min(r.MinX, o.MinX),
		MinY: math.Min(r.MinY, o.MinY),
		MaxX: math.Max(r.MaxX, o.MaxX),
		MaxY: math.Max(r.MaxY, o.MaxY),
	}
}

func (r Rect) area() float64 {
	return (r.MaxX - r.MinX) * (r.MaxY - r.MinY)
}

// emptyRect is the identity for extend.
var emptyRect = Rect{
	MinX: math.Inf(1), MinY: math.Inf(1),
	MaxX: math.Inf(-1), MaxY: math.Inf(-1),
}

// Entry is a leaf record: a rectangle plus the caller's payload.
type Entry struct {
	Rect    Rect
	Payload any
}

type node struct {
	rect     Rect
	leaf     bool
	entries  []Entry // leaf nodes only
	children []*node // internal nodes only
}

// Index is a bounding-rectangle tree over 2-D points and rectangles.
type Index struct {
	root       *node
	maxEntries int
	minEntries int
	size       int
}

// New creates an empty index. maxEntries is the node capacity; values below
// 4 are raised to 4, and the minimum fill is ceil(0.4 * max) with a floor
// of 2.
func New(maxEntries int) *Index {
	if maxEntries < 4 {
		maxEntries = 4
	}
	minEntries := int(math.Ceil(float64(maxEntries) * 0.4))
	if minEntries < 2 {
		minEntries = 2
	}
	return &Index{
		root:       &node{rect: emptyRect, leaf: true},
		maxEntries: maxEntries,
		minEntries: minEntries,
	}
}

// Len returns the number of entries in the index.
func (ix *Index) Len() int { return ix.size }

// Insert adds a leaf entry. When a node exceeds the capacity it is split
// along its longer axis into two nodes of roughly equal entry count;
// splitting the root grows the tree height by one.
func (ix *Index) Insert(rect Rect, payload any) {
	sibling := ix.insert(ix.root, Entry{Rect: rect, Payload: payload})
	if sibling != nil {
		old := ix.root
		ix.root = &node{
			rect:     old.rect.extend(sibling.rect),
			leaf:     false,
			children: []*node{old, sibling},
		}
	}
	ix.size++
}

// insert places the entry under n and returns a new sibling node when n had
// to split, for the caller to attach one level up.
func (ix *Index) insert(n *node, e Entry) *node {
	n.rect = n.rect.extend(e.Rect)

	if n.leaf {
		n.entries = append(n.entries, e)
		if len(n.entries) > ix.maxEntries {
			return ix.splitLeaf(n)
		}
		return nil
	}

	child := chooseSubtree(n.children, e.Rect)
	if sibling := ix.insert(child, e); sibling != nil {
		n.children = append(n.children, sibling)
		if len(n.children) > ix.maxEntries {
			return ix.splitInternal(n)
		}
	}
	return nil
}

// chooseSubtree picks the child whose rectangle needs the least area
// enlargement to cover r.
func chooseSubtree(children []*node, r Rect) *node {
	best := children[0]
	bestGrowth := best.rect.extend(r).area() - best.rect.area()
	for _, c := range children[1:] {
		growth := c.rect.extend(r).area() - c.rect.area()
		if growth < bestGrowth {
			bestGrowth = growth
			best = c
		}
	}
	return best
}

func (ix *Index) splitLeaf(n *node) *node {
	vertical := n.rect.MaxX-n.rect.MinX > n.rect.MaxY-n.rect.MinY
	sort.Slice(n.entries, func(i, j int) bool {
		if vertical {
			return n.entries[i].Rect.MinX < n.entries[j].Rect.MinX
		}
		return n.entries[i].Rect.MinY < n.entries[j].Rect.MinY
	})

	at := (len(n.entries) + 1) / 2
	sibling := &node{leaf: true, entries: append([]Entry(nil), n.entries[at:]...)}
	n.entries = n.entries[:at]

	n.rect = leafBBox(n.entries)
	sibling.rect = leafBBox(sibling.entries)
	return sibling
}

func (ix *Index) splitInternal(n *node) *node {
	vertical := n.rect.MaxX-n.rect.MinX > n.rect.MaxY-n.rect.MinY
	sort.Slice(n.children, func(i, j int) bool {
		if vertical {
			return n.children[i].rect.MinX < n.children[j].rect.MinX
		}
		return n.children[i].rect.MinY < n.children[j].rect.MinY
	})

	at := (len(n.children) + 1) / 2
	sibling := &node{leaf: false, children: append([]*node(nil), n.children[at:]...)}
	n.children = n.children[:at]

	n.rect = childBBox(n.children)
	sibling.rect = childBBox(sibling.children)
	return sibling
}

func leafBBox(entries []Entry) Rect {
	r := emptyRect
	for _, e := range entries {
		r = r.extend(e.Rect)
	}
	return r
}

func childBBox(children []*node) Rect {
	r := emptyRect
	for _, c := range children {
		r = r.extend(c.rect)
	}
	return r
}

// Search returns every entry whose rectangle intersects the query rectangle.
func (ix *Index) Search(query Rect) []Entry {
	var results []Entry
	searchNode(ix.root, query, &results)
	return results
}

func searchNode(n *node, query Rect, results *[]Entry) {
	if !n.rect.Intersects(query) {
		return
	}
	if n.leaf {
		for _, e := range n.entries {
			if e.Rect.Intersects(query) {
				*results = append(*results, e)
			}
		}
		return
	}
	for _, c := range n.children {
		searchNode(c, query, results)
	}
}

// SearchWithinRadius returns the entries whose center lies within
// radiusMeters of the given point. The degree-space bounding square is a
// superset prefilter; candidates are confirmed with an exact haversine
// distance.
func (ix *Index) SearchWithinRadius(lat, lon, radiusMeters float64) []Entry {
	box := geo.BoundingBoxForRadius(lat, lon, radiusMeters)
	candidates := ix.Search(Rect{
		MinX: box.MinLon, MinY: box.MinLat,
		MaxX: box.MaxLon, MaxY: box.MaxLat,
	})

	results := candidates[:0]
	for _, e := range candidates {
		if geo.Distance(lat, lon, e.Rect.CenterLat(), e.Rect.CenterLon()) <= radiusMeters {
			results = append(results, e)
		}
	}
	return results
}
