package search

import "fmt"

const noCell = -1

// Queue is a monotone bucket priority queue over small non-negative integer
// priorities. Bucket i heads an intrusive singly linked chain of cells whose
// priority is i; the links live in the cells' own records, so enqueueing
// never allocates once the bucket array has grown to fit.
type Queue struct {
	records []Record
	buckets []int
	cursor  int
	used    int
	count   int
}

func (q *Queue) reset(records []Record) {
	q.records = records
	q.buckets = q.buckets[:0]
	q.cursor = 0
	q.used = 0
	q.count = 0
}

// Len returns the number of enqueued cells.
func (q *Queue) Len() int { return q.count }

// Enqueue pushes cell at the head of the bucket for its current priority.
func (q *Queue) Enqueue(cell int) {
	p := q.records[cell].Priority()
	if p < 0 {
		panic(fmt.Sprintf("search: negative priority %d for cell %d", p, cell))
	}
	for p >= len(q.buckets) {
		q.buckets = append(q.buckets, noCell)
	}
	if p >= q.used {
		q.used = p + 1
	}
	if p < q.cursor {
		q.cursor = p
	}
	q.records[cell].next = q.buckets[p]
	q.buckets[p] = cell
	q.count++
}

// Change moves cell out of the bucket for oldPriority and re-enqueues it at
// its new priority, which must not be higher.
func (q *Queue) Change(cell, oldPriority int) {
	if oldPriority < 0 || oldPriority >= len(q.buckets) {
		panic(fmt.Sprintf("search: cell %d not queued at priority %d", cell, oldPriority))
	}
	cur := q.buckets[oldPriority]
	if cur == cell {
		q.buckets[oldPriority] = q.records[cell].next
	} else {
		for cur != noCell && q.records[cur].next != cell {
			cur = q.records[cur].next
		}
		if cur == noCell {
			panic(fmt.Sprintf("search: cell %d not queued at priority %d", cell, oldPriority))
		}
		q.records[cur].next = q.records[cell].next
	}
	q.records[cell].next = noCell
	q.count--
	q.Enqueue(cell)
}

// PopMinimum removes and returns a cell of the lowest priority. The cursor
// only moves forward between enqueues of lower priorities.
func (q *Queue) PopMinimum() (int, bool) {
	if q.count == 0 {
		return noCell, false
	}
	for ; q.cursor < q.used; q.cursor++ {
		cell := q.buckets[q.cursor]
		if cell == noCell {
			continue
		}
		q.buckets[q.cursor] = q.records[cell].next
		q.records[cell].next = noCell
		q.count--
		return cell, true
	}
	return noCell, false
}

// Clear empties every bucket used since the last Clear.
func (q *Queue) Clear() {
	for i := 0; i < q.used; i++ {
		q.buckets[i] = noCell
	}
	q.cursor = 0
	q.used = 0
	q.count = 0
}
