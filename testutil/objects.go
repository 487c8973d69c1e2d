package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/BerniceZTT/works_end/models"
)

// ErrInjected 注入的存储故障
var ErrInjected = errors.New("injected object store failure")

// FakeObjectStore 记录写入和删除的内存对象存储
type FakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	seq     int

	// FailOnPut 第 N 次 Put 返回 ErrInjected，0 表示不注入
	FailOnPut int
	puts      int

	Deleted []string
}

// NewFakeObjectStore 创建空存储
func NewFakeObjectStore() *FakeObjectStore {
	return &FakeObjectStore{objects: make(map[string][]byte)}
}

// Put 写入对象，ID 形如 folder/obj-1-name
func (f *FakeObjectStore) Put(_ context.Context, data []byte, name, _, folder string) (models.StoredObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if f.FailOnPut > 0 && f.puts == f.FailOnPut {
		return models.StoredObject{}, ErrInjected
	}
	f.seq++
	id := fmt.Sprintf("%s/obj-%d-%s", folder, f.seq, name)
	f.objects[id] = append([]byte(nil), data...)
	return models.StoredObject{ID: id, URL: "https://files.test/" + id}, nil
}

// Delete 删除对象，不存在时不报错
func (f *FakeObjectStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, id)
	f.Deleted = append(f.Deleted, id)
	return nil
}

// Has 对象是否仍然存在
func (f *FakeObjectStore) Has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[id]
	return ok
}

// Len 当前存储的对象数
func (f *FakeObjectStore) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}
