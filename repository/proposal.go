package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/BerniceZTT/works_end/models"
	"github.com/BerniceZTT/works_end/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ProposalRepository 提案文档存储，每个提案一份文档
type ProposalRepository struct {
	coll *mongo.Collection
}

// NewProposalRepository 创建提案存储
func NewProposalRepository(coll *mongo.Collection) *ProposalRepository {
	return &ProposalRepository{coll: coll}
}

// FindByID 根据ID加载完整提案
func (r *ProposalRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.WorkProposal, error) {
	result, err := ExecuteDbOperation(func() (interface{}, error) {
		var proposal models.WorkProposal
		if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&proposal); err != nil {
			return nil, err
		}
		return &proposal, nil
	}, 3)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrProposalNotFound
		}
		return nil, fmt.Errorf("查询提案失败: %w", err)
	}
	return result.(*models.WorkProposal), nil
}

// Insert 新建提案
func (r *ProposalRepository) Insert(ctx context.Context, proposal *models.WorkProposal) error {
	if proposal.ID.IsZero() {
		proposal.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, proposal)
	if err != nil {
		return fmt.Errorf("创建提案失败: %w", err)
	}
	utils.LogDbOperation("insert", ProposalsCollection, proposal.ID.Hex(), proposal.SerialNumber)
	return nil
}

// Save 整份文档写回，以 version 做乐观锁
//
// 过滤条件带上读取时的版本号，未命中说明文档已被修改或已删除。
func (r *ProposalRepository) Save(ctx context.Context, proposal *models.WorkProposal) error {
	expected := proposal.Version
	next := *proposal
	next.Version = expected + 1

	filter := bson.M{"_id": proposal.ID, "version": expected}
	result, err := ExecuteDbOperation(func() (interface{}, error) {
		return r.coll.ReplaceOne(ctx, filter, next)
	}, 3)
	if err != nil {
		return fmt.Errorf("保存提案失败: %w", err)
	}

	if result.(*mongo.UpdateResult).MatchedCount == 0 {
		count, err := r.coll.CountDocuments(ctx, bson.M{"_id": proposal.ID})
		if err != nil {
			return fmt.Errorf("保存提案失败: %w", err)
		}
		if count == 0 {
			return models.ErrProposalNotFound
		}
		return models.ErrVersionConflict
	}

	proposal.Version = next.Version
	utils.LogDbOperation("replace", ProposalsCollection, filter, next.Version)
	return nil
}
