package game

import (
	"container/heap"
	"time"
)

// TaskKind identifies what a scheduled task drives.
type TaskKind int

const (
	TaskTick  TaskKind = iota // 1 Hz countdown step
	TaskSpawn                 // target relocation
)

func (k TaskKind) String() string {
	switch k {
	case TaskTick:
		return "tick"
	case TaskSpawn:
		return "spawn"
	}
	return "unknown"
}

// Task is a unit of deferred work. Session and Gen identify the session and
// timer run that scheduled it; a task whose pair no longer matches the live
// values is stale and is dropped on delivery.
type Task struct {
	Kind    TaskKind
	Session uint64
	Gen     uint64
}

// Scheduler delivers a task back to the controller after a delay.
// There is no cancel: superseded tasks are discarded by generation.
type Scheduler interface {
	Schedule(after time.Duration, t Task)
}

// VirtualScheduler is a deterministic Scheduler driven by Advance.
// It is used by tests and by headless simulation.
type VirtualScheduler struct {
	now   time.Duration
	seq   uint64
	queue taskQueue
}

// NewVirtualScheduler returns an empty scheduler at virtual time zero.
func NewVirtualScheduler() *VirtualScheduler {
	return &VirtualScheduler{}
}

// Schedule queues t to be delivered after the given delay.
func (v *VirtualScheduler) Schedule(after time.Duration, t Task) {
	if after < 0 {
		after = 0
	}
	v.seq++
	heap.Push(&v.queue, &queuedTask{due: v.now + after, seq: v.seq, task: t})
}

// Now returns the current virtual time.
func (v *VirtualScheduler) Now() time.Duration {
	return v.now
}

// Pending returns the number of queued tasks, stale ones included.
func (v *VirtualScheduler) Pending() int {
	return len(v.queue)
}

// Tasks returns a copy of the queued tasks in delivery order.
func (v *VirtualScheduler) Tasks() []Task {
	cp := make(taskQueue, len(v.queue))
	copy(cp, v.queue)
	out := make([]Task, 0, len(cp))
	for cp.Len() > 0 {
		out = append(out, heap.Pop(&cp).(*queuedTask).task)
	}
	return out
}

// NextDue returns the delay until the next queued task.
func (v *VirtualScheduler) NextDue() (time.Duration, bool) {
	if len(v.queue) == 0 {
		return 0, false
	}
	return v.queue[0].due - v.now, true
}

// Advance moves virtual time forward by d, delivering every task that falls
// due in order, including tasks scheduled by earlier deliveries.
// Returns the number of delivered tasks.
func (v *VirtualScheduler) Advance(d time.Duration, fire func(Task)) int {
	target := v.now + d
	fired := 0
	for len(v.queue) > 0 && v.queue[0].due <= target {
		qt := heap.Pop(&v.queue).(*queuedTask)
		v.now = qt.due
		fire(qt.task)
		fired++
	}
	v.now = target
	return fired
}

type queuedTask struct {
	due  time.Duration
	seq  uint64
	task Task
}

// taskQueue orders by due time, then by scheduling order.
type taskQueue []*queuedTask

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].seq < q[j].seq
}

func (q taskQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *taskQueue) Push(x any) { *q = append(*q, x.(*queuedTask)) }

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return it
}
