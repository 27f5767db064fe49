package fileops

import (
	"os"

	"github.com/oakridge-labs/swagconfd/internal/core"
)

// step records one path's pre-transaction state so Rollback can restore it.
type step struct {
	path    string
	existed bool
	content []byte
	perm    os.FileMode
}

// Transaction batches writes/removes across one or more paths, locked in a
// fixed order via LockTable.LockMany, snapshotting each path's prior content
// so a failure partway through can be rolled back. The configops operations
// do not use it: they write a backup and the config as two separate atomic
// writes under the config's path lock.
type Transaction struct {
	locks   *LockTable
	unlock  func()
	steps   []step
	touched map[string]bool
	done    bool
}

// Begin locks every path up front and snapshots its current content.
func Begin(locks *LockTable, paths ...string) (*Transaction, error) {
	unlock := locks.LockMany(paths)
	tx := &Transaction{locks: locks, unlock: unlock, touched: make(map[string]bool)}

	for _, p := range paths {
		s := step{path: p}
		info, err := os.Stat(p)
		if err == nil {
			s.existed = true
			s.perm = info.Mode()
			content, rerr := ReadCapped(p, info.Size()+1)
			if rerr != nil {
				unlock()
				return nil, rerr
			}
			s.content = content
		} else if !os.IsNotExist(err) {
			unlock()
			return nil, core.Wrap(core.KindIOFailure, "transaction_begin", p, err)
		}
		tx.steps = append(tx.steps, s)
	}
	return tx, nil
}

// Write atomically replaces path's content within the transaction. path must
// have been included in Begin's path list.
func (tx *Transaction) Write(path string, content []byte, perm os.FileMode) error {
	tx.touched[path] = true
	return WriteAtomic(path, content, perm)
}

// Delete removes path within the transaction.
func (tx *Transaction) Delete(path string) error {
	tx.touched[path] = true
	return Remove(path)
}

// Commit releases the transaction's locks, finalizing every change made so
// far. Safe to call exactly once.
func (tx *Transaction) Commit() {
	if tx.done {
		return
	}
	tx.done = true
	tx.unlock()
}

// Rollback restores every touched path to its pre-Begin content (or removes
// it, if it did not previously exist) and releases the locks. Best-effort:
// the first restoration failure is returned, but remaining paths are still
// attempted.
func (tx *Transaction) Rollback() error {
	if tx.done {
		return nil
	}
	defer func() {
		tx.done = true
		tx.unlock()
	}()

	var first error
	for _, s := range tx.steps {
		if !tx.touched[s.path] {
			continue
		}
		var err error
		if s.existed {
			err = WriteAtomic(s.path, s.content, s.perm)
		} else {
			err = Remove(s.path)
			if core.KindOf(err) == core.KindNotFound {
				err = nil
			}
		}
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}
