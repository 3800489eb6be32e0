/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package dataloader

import (
	"github.com/viaduct-dev/viaduct/concurrent/promise"
)

// Task is one queued load: a key plus the promise its waiters hold. A task settles at most once;
// later Complete/SetError calls are no-ops (the promise's resolver enforces it).
type Task struct {
	key      Key
	promise  *promise.Promise
	resolver *promise.Resolver

	// next links the task into its TaskList.
	next *Task
}

func newTask(key Key) *Task {
	task := &Task{key: key}
	task.promise, task.resolver = promise.New()
	return task
}

// Key returns the key the task loads.
func (t *Task) Key() Key {
	return t.key
}

// Complete settles the task with a value.
func (t *Task) Complete(value interface{}) {
	t.resolver.Resolve(value)
}

// SetError settles the task with an error.
func (t *Task) SetError(err error) {
	t.resolver.Reject(err)
}

// Settled reports whether the task already settled.
func (t *Task) Settled() bool {
	return t.promise.Settled()
}

// TaskList is a singly-linked batch of tasks in enqueue order. The batch loader walks it with the
// Begin/End iterator pair:
//
//	for iter, end := tasks.Begin(), tasks.End(); iter != end; iter = iter.Next() {
//		load(iter.Key(), iter.Task)
//	}
type TaskList struct {
	first *Task
	last  *Task
	size  int
}

// Empty reports whether the list holds no tasks.
func (tasks *TaskList) Empty() bool {
	return tasks.first == nil
}

// Size returns the number of tasks.
func (tasks *TaskList) Size() int {
	return tasks.size
}

// push appends a task.
func (tasks *TaskList) push(task *Task) {
	if tasks.last == nil {
		tasks.first = task
	} else {
		tasks.last.next = task
	}
	tasks.last = task
	tasks.size++
}

// split cuts the list into chunks of at most maxBatchSize tasks; 0 keeps it whole.
func (tasks *TaskList) split(maxBatchSize int) []*TaskList {
	if maxBatchSize <= 0 || tasks.size <= maxBatchSize {
		return []*TaskList{tasks}
	}

	var batches []*TaskList
	batch := &TaskList{}
	for task := tasks.first; task != nil; {
		next := task.next
		task.next = nil
		batch.push(task)
		if batch.size == maxBatchSize {
			batches = append(batches, batch)
			batch = &TaskList{}
		}
		task = next
	}
	if !batch.Empty() {
		batches = append(batches, batch)
	}
	return batches
}

// TaskIterator points at one task of a TaskList; the zero iterator is the End sentinel.
type TaskIterator struct {
	*Task
}

// Begin returns an iterator at the first task.
func (tasks *TaskList) Begin() TaskIterator {
	return TaskIterator{tasks.first}
}

// End returns the past-the-end iterator.
func (tasks *TaskList) End() TaskIterator {
	return TaskIterator{nil}
}

// Next advances to the following task.
func (iter TaskIterator) Next() TaskIterator {
	return TaskIterator{iter.Task.next}
}
