package testutil

import (
	"context"
	"sync"

	"github.com/BerniceZTT/works_end/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryProposalStore 内存版提案存储，行为和 MongoDB 实现一致：
// 读写都经过 BSON 编解码，Save 按版本号做乐观锁
type MemoryProposalStore struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID][]byte

	// BeforeSave 在每次 Save 比较版本之前调用，可用来模拟并发写入
	BeforeSave func(id primitive.ObjectID)
	// AfterSave 在写入成功后调用，返回错误时 Save 把它返回给调用方，模拟写成功但确认丢失
	AfterSave func(id primitive.ObjectID) error
	// Saves 成功保存的次数
	Saves int
}

// NewMemoryProposalStore 创建空存储
func NewMemoryProposalStore() *MemoryProposalStore {
	return &MemoryProposalStore{docs: make(map[primitive.ObjectID][]byte)}
}

// FindByID 返回文档的独立副本
func (s *MemoryProposalStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.WorkProposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decode(id)
}

// Insert 写入新文档
func (s *MemoryProposalStore) Insert(_ context.Context, proposal *models.WorkProposal) error {
	if proposal.ID.IsZero() {
		proposal.ID = primitive.NewObjectID()
	}
	raw, err := bson.Marshal(proposal)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[proposal.ID] = raw
	return nil
}

// Save 版本号一致时写回并递增版本
func (s *MemoryProposalStore) Save(_ context.Context, proposal *models.WorkProposal) error {
	if s.BeforeSave != nil {
		s.BeforeSave(proposal.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.decode(proposal.ID)
	if err != nil {
		return err
	}
	if current.Version != proposal.Version {
		return models.ErrVersionConflict
	}

	next := *proposal
	next.Version++
	raw, err := bson.Marshal(next)
	if err != nil {
		return err
	}
	s.docs[proposal.ID] = raw
	proposal.Version = next.Version
	s.Saves++
	if s.AfterSave != nil {
		return s.AfterSave(proposal.ID)
	}
	return nil
}

// Put 直接写入文档，不检查版本，测试用来准备数据或模拟其他写入者
func (s *MemoryProposalStore) Put(proposal *models.WorkProposal) {
	raw, err := bson.Marshal(proposal)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[proposal.ID] = raw
}

// PutRaw 写入任意 BSON 文档，用于模拟历史数据形态
func (s *MemoryProposalStore) PutRaw(id primitive.ObjectID, doc interface{}) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[id] = raw
}

// Get 读取当前文档，不存在时返回 nil
func (s *MemoryProposalStore) Get(id primitive.ObjectID) *models.WorkProposal {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.decode(id)
	if err != nil {
		return nil
	}
	return p
}

func (s *MemoryProposalStore) decode(id primitive.ObjectID) (*models.WorkProposal, error) {
	raw, ok := s.docs[id]
	if !ok {
		return nil, models.ErrProposalNotFound
	}
	var p models.WorkProposal
	if err := bson.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
