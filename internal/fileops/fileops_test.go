package fileops

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakridge-labs/swagconfd/internal/core"
)

func TestWriteAtomicAndReadCapped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.conf")

	require.NoError(t, WriteAtomic(path, []byte("hello"), 0o644))
	content, err := ReadCapped(path, 1024)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	require.NoError(t, WriteAtomic(path, []byte("goodbye"), 0o644))
	content, err = ReadCapped(path, 1024)
	require.NoError(t, err)
	assert.Equal(t, "goodbye", string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no leftover temp files")
}

func TestReadCappedRejectsOversize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.conf")
	require.NoError(t, WriteAtomic(path, []byte("0123456789"), 0o644))

	_, err := ReadCapped(path, 5)
	require.Error(t, err)
	assert.Equal(t, core.KindInvalidInput, core.KindOf(err))
}

func TestReadCappedNotFound(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadCapped(filepath.Join(dir, "missing.conf"), 1024)
	require.Error(t, err)
	assert.Equal(t, core.KindNotFound, core.KindOf(err))
}

func TestLockTableDisjointPathsDoNotBlock(t *testing.T) {
	lt := NewLockTable()
	var wg sync.WaitGroup
	wg.Add(1)

	started := make(chan struct{}, 2)

	unlockA := lt.Lock("/a")
	go func() {
		defer wg.Done()
		started <- struct{}{}
		unlockB := lt.Lock("/b")
		defer unlockB()
	}()

	<-started
	wg.Wait()
	unlockA()
}

func TestLockTableSerializesSamePath(t *testing.T) {
	lt := NewLockTable()
	var order []int
	var mu sync.Mutex
	var wg sync.WaitGroup
	var inside, overlaps int32

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			unlock := lt.Lock("/shared")
			defer unlock()
			if atomic.AddInt32(&inside, 1) > 1 {
				atomic.AddInt32(&overlaps, 1)
			}
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			atomic.AddInt32(&inside, -1)
		}(i)
	}
	wg.Wait()
	assert.Len(t, order, 5)
	assert.Zero(t, atomic.LoadInt32(&overlaps), "two holders of the same path lock overlapped")
}

func TestTransactionCommit(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.conf")
	pathB := filepath.Join(dir, "b.conf")
	require.NoError(t, WriteAtomic(pathA, []byte("a1"), 0o644))

	lt := NewLockTable()
	tx, err := Begin(lt, pathA, pathB)
	require.NoError(t, err)

	require.NoError(t, tx.Write(pathA, []byte("a2"), 0o644))
	require.NoError(t, tx.Write(pathB, []byte("b1"), 0o644))
	tx.Commit()

	contentA, err := ReadCapped(pathA, 1024)
	require.NoError(t, err)
	assert.Equal(t, "a2", string(contentA))
}

func TestTransactionRollback(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.conf")
	require.NoError(t, WriteAtomic(pathA, []byte("original"), 0o644))

	lt := NewLockTable()
	tx, err := Begin(lt, pathA)
	require.NoError(t, err)

	require.NoError(t, tx.Write(pathA, []byte("mutated"), 0o644))
	require.NoError(t, tx.Rollback())

	content, err := ReadCapped(pathA, 1024)
	require.NoError(t, err)
	assert.Equal(t, "original", string(content))
}

func TestTransactionRollbackRemovesCreatedFile(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "new.conf")

	lt := NewLockTable()
	tx, err := Begin(lt, pathA)
	require.NoError(t, err)

	require.NoError(t, tx.Write(pathA, []byte("fresh"), 0o644))
	require.NoError(t, tx.Rollback())

	_, err = os.Stat(pathA)
	assert.True(t, os.IsNotExist(err))
}
