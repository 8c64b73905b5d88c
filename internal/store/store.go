// Package store provides the in-memory graph store backing the pipeline's
// stage-chain graph. Vertices are stage keys; their properties accumulate
// run statistics that the drawer renders as labels.
package store

import (
	"sync"

	"github.com/dominikbraun/graph"
)

// ChainStore is a graph.Store for the stage chain with mutable vertex
// properties, so per-stage statistics can be attached after validation.
type ChainStore interface {
	graph.Store[string, string]
	UpdateVertex(key string, options ...func(*graph.VertexProperties))
}

type MemoryStore struct {
	lock             sync.RWMutex
	vertices         map[string]string
	vertexProperties map[string]*graph.VertexProperties

	// outEdges and inEdges store all outgoing and ingoing edges for all
	// vertices, keyed by the hash of the opposite vertex for O(1) access.
	outEdges map[string]map[string]graph.Edge[string]
	inEdges  map[string]map[string]graph.Edge[string]
}

func NewMemoryStore() ChainStore {
	return &MemoryStore{
		vertices:         make(map[string]string),
		vertexProperties: make(map[string]*graph.VertexProperties),
		outEdges:         make(map[string]map[string]graph.Edge[string]),
		inEdges:          make(map[string]map[string]graph.Edge[string]),
	}
}

func (s *MemoryStore) AddVertex(key, value string, p graph.VertexProperties) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.vertices[key]; ok {
		return graph.ErrVertexAlreadyExists
	}

	s.vertices[key] = value
	s.vertexProperties[key] = &p

	return nil
}

func (s *MemoryStore) ListVertices() ([]string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	hashes := make([]string, 0, len(s.vertices))
	for k := range s.vertices {
		hashes = append(hashes, k)
	}

	return hashes, nil
}

func (s *MemoryStore) VertexCount() (int, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return len(s.vertices), nil
}

func (s *MemoryStore) Vertex(key string) (string, graph.VertexProperties, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	v, ok := s.vertices[key]
	if !ok {
		return v, graph.VertexProperties{}, graph.ErrVertexNotFound
	}

	p := s.vertexProperties[key]

	return v, *p, nil
}

func (s *MemoryStore) RemoveVertex(key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.vertices[key]; !ok {
		return graph.ErrVertexNotFound
	}

	if edges, ok := s.inEdges[key]; ok {
		if len(edges) > 0 {
			return graph.ErrVertexHasEdges
		}
		delete(s.inEdges, key)
	}

	if edges, ok := s.outEdges[key]; ok {
		if len(edges) > 0 {
			return graph.ErrVertexHasEdges
		}
		delete(s.outEdges, key)
	}

	delete(s.vertices, key)
	delete(s.vertexProperties, key)

	return nil
}

func (s *MemoryStore) AddEdge(sourceHash, targetHash string, edge graph.Edge[string]) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.outEdges[sourceHash]; !ok {
		s.outEdges[sourceHash] = make(map[string]graph.Edge[string])
	}

	s.outEdges[sourceHash][targetHash] = edge

	if _, ok := s.inEdges[targetHash]; !ok {
		s.inEdges[targetHash] = make(map[string]graph.Edge[string])
	}

	s.inEdges[targetHash][sourceHash] = edge

	return nil
}

func (s *MemoryStore) UpdateVertex(key string, options ...func(*graph.VertexProperties)) {
	s.lock.Lock()
	defer s.lock.Unlock()

	props, ok := s.vertexProperties[key]
	if !ok {
		return
	}

	for _, opt := range options {
		opt(props)
	}
}

func (s *MemoryStore) UpdateEdge(sourceHash, targetHash string, edge graph.Edge[string]) error {
	if _, err := s.Edge(sourceHash, targetHash); err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.outEdges[sourceHash][targetHash] = edge
	s.inEdges[targetHash][sourceHash] = edge

	return nil
}

func (s *MemoryStore) RemoveEdge(sourceHash, targetHash string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.inEdges[targetHash], sourceHash)
	delete(s.outEdges[sourceHash], targetHash)

	return nil
}

func (s *MemoryStore) Edge(sourceHash, targetHash string) (graph.Edge[string], error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	sourceEdges, ok := s.outEdges[sourceHash]
	if !ok {
		return graph.Edge[string]{}, graph.ErrEdgeNotFound
	}

	edge, ok := sourceEdges[targetHash]
	if !ok {
		return graph.Edge[string]{}, graph.ErrEdgeNotFound
	}

	return edge, nil
}

func (s *MemoryStore) ListEdges() ([]graph.Edge[string], error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	res := make([]graph.Edge[string], 0)
	for _, edges := range s.outEdges {
		for _, edge := range edges {
			res = append(res, edge)
		}
	}

	return res, nil
}
