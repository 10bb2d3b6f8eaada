package queue

import (
	"container/heap"
	"context"
	"sort"
	"sync"

	"onboard/internal/verification/models"
	id "onboard/pkg/domain"
	"onboard/pkg/platform/sentinel"
)

type entry struct {
	req *models.VerificationRequest
	// seq is a monotonic arrival counter; it breaks priority ties so
	// equal-priority requests dequeue in true arrival order even when
	// their timestamps collide.
	seq uint64
}

type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	ri, rj := h[i].req.Priority.Rank(), h[j].req.Priority.Rank()
	if ri != rj {
		return ri < rj
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(*entry)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// InMemoryQueue is a heap-backed queue for tests and single-node runs.
type InMemoryQueue struct {
	mu      sync.Mutex
	entries entryHeap
	nextSeq uint64
}

func NewMemory() *InMemoryQueue {
	return &InMemoryQueue{}
}

func (q *InMemoryQueue) Push(_ context.Context, req *models.VerificationRequest) (Placement, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	placement := Placement{Position: 1}
	myRank := req.Priority.Rank()
	for _, e := range q.entries {
		if e.req.Priority.Rank() <= myRank {
			placement.Position++
			placement.Backlog += e.req.Priority.AverageServiceTime()
		}
	}

	e := &entry{req: req, seq: q.nextSeq}
	q.nextSeq++
	heap.Push(&q.entries, e)
	return placement, nil
}

func (q *InMemoryQueue) Pop(_ context.Context) (*models.VerificationRequest, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return nil, sentinel.ErrNotFound
	}
	e := heap.Pop(&q.entries).(*entry)
	return e.req, nil
}

// Remove withdraws a waiting request by ID.
func (q *InMemoryQueue) Remove(_ context.Context, verificationID id.VerificationID) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, e := range q.entries {
		if e.req.ID == verificationID {
			heap.Remove(&q.entries, i)
			return nil
		}
	}
	return sentinel.ErrNotFound
}

// List returns the queue in dequeue order with up-to-date positions.
func (q *InMemoryQueue) List(_ context.Context) ([]*models.VerificationRequest, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	ordered := make([]*entry, len(q.entries))
	copy(ordered, q.entries)
	sort.Slice(ordered, func(i, j int) bool {
		ri, rj := ordered[i].req.Priority.Rank(), ordered[j].req.Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return ordered[i].seq < ordered[j].seq
	})

	out := make([]*models.VerificationRequest, len(ordered))
	for i, e := range ordered {
		req := *e.req
		req.QueuePosition = i + 1
		out[i] = &req
	}
	return out, nil
}

func (q *InMemoryQueue) DepthByPriority(_ context.Context) (map[models.Priority]int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	depth := make(map[models.Priority]int)
	for _, e := range q.entries {
		depth[e.req.Priority]++
	}
	return depth, nil
}
