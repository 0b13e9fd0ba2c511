package internal

// CommitQueue keeps the cells touched around a commit: the ones with a
// staged write, and the ones flagged as changed by the last commit.
type CommitQueue struct {
	pending []NodeID
	changed []NodeID
}

func NewCommitQueue() *CommitQueue {
	return &CommitQueue{
		pending: make([]NodeID, 0),
		changed: make([]NodeID, 0),
	}
}

func (q *CommitQueue) Enqueue(id NodeID) {
	q.pending = append(q.pending, id)
}

// Len returns the number of queued writes, cancelled ones included.
func (q *CommitQueue) Len() int {
	return len(q.pending)
}

// Commit resets the cells changed by the previous commit, then applies every
// pending write. It returns the number of cells that changed.
func (q *CommitQueue) Commit(cells map[NodeID]*cell, tick Tick) int {
	for _, id := range q.changed {
		if c, ok := cells[id]; ok {
			c.changed = false
		}
	}
	q.changed = q.changed[:0]

	for _, id := range q.pending {
		c, ok := cells[id]
		if !ok || !c.commit(tick) {
			continue
		}
		q.changed = append(q.changed, id)
	}
	q.pending = q.pending[:0]

	return len(q.changed)
}

// mailbox holds the requests posted to one reaction slot.
type mailbox struct {
	requests []Request
}

func (m *mailbox) post(r Request) {
	m.requests = append(m.requests, r)
}

func (m *mailbox) empty() bool {
	return len(m.requests) == 0
}

func (m *mailbox) drain() []Request {
	requests := m.requests
	m.requests = nil
	return requests
}
