package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BerniceZTT/works_end/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	// 集合名
	ProposalsCollection        = "workProposals"
	ApiOperationLogsCollection = "apiOperationLogs"
)

var managedCollections = []string{
	ProposalsCollection,
	ApiOperationLogsCollection,
}

var (
	client *mongo.Client
	db     *mongo.Database
	ctx    = context.Background()
)

// InitMongoDB 初始化MongoDB连接
func InitMongoDB(uri, dbName string) error {
	// 设置连接超时
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// 创建客户端
	var err error
	clientOptions := options.Client().ApplyURI(uri)
	client, err = mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return fmt.Errorf("连接MongoDB失败: %w", err)
	}

	// 检查连接
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping MongoDB失败: %w", err)
	}

	// 选择数据库
	db = client.Database(dbName)
	utils.Logger.Info().Str("database", dbName).Msg("已连接到MongoDB")

	return nil
}

// CloseMongoDB 关闭MongoDB连接
func CloseMongoDB() {
	if client != nil {
		if err := client.Disconnect(ctx); err != nil {
			utils.Logger.Error().Err(err).Msg("断开MongoDB连接失败")
			return
		}
		utils.Logger.Info().Msg("已断开MongoDB连接")
	}
}

// Connected 是否已建立连接
func Connected() bool {
	return db != nil
}

// Collection 返回指定名称的集合
func Collection(name string) *mongo.Collection {
	if db == nil {
		panic("MongoDB尚未初始化")
	}
	return db.Collection(name)
}

// ExecuteDbOperation 执行数据库操作，提供错误处理和重试机制
func ExecuteDbOperation(operation func() (interface{}, error), retries int) (interface{}, error) {
	if retries <= 0 {
		retries = 3
	}

	var lastErr error
	for i := 0; i < retries; i++ {
		result, err := operation()
		if err == nil {
			return result, nil
		}

		lastErr = err

		// 如果是不可重试的错误，立即返回
		if !isRetryableError(err) {
			break
		}
		utils.Logger.Error().Err(err).Msgf("数据库操作失败，重试 (%d/%d)", i+1, retries)

		// 延迟后重试
		time.Sleep(time.Duration(500*(i+1)) * time.Millisecond)
	}

	return nil, lastErr
}

// isRetryableError 判断错误是否可重试
func isRetryableError(err error) bool {
	// MongoDB可重试错误代码
	retryableCodes := map[int]bool{
		6:     true, // HostUnreachable
		7:     true, // HostNotFound
		89:    true, // NetworkTimeout
		91:    true, // ShutdownInProgress
		189:   true, // PrimarySteppedDown
		10107: true, // NotMaster
		13436: true, // NotMasterNoSlaveOk
		11600: true, // InterruptedAtShutdown
		11602: true, // InterruptedDueToReplStateChange
		10058: true, // ConnectionReset
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return retryableCodes[int(cmdErr.Code)]
	}

	// 检查常见网络错误
	return isNetworkError(err)
}

// isNetworkError 检查是否是网络错误
func isNetworkError(err error) bool {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	errMsg := strings.ToLower(err.Error())
	networkErrors := []string{
		"connection refused",
		"connection reset",
		"connection closed",
		"no reachable servers",
		"server selection error",
	}

	for _, ne := range networkErrors {
		if strings.Contains(errMsg, ne) {
			return true
		}
	}

	return false
}

// InitializeCollections 初始化数据库集合
func InitializeCollections() error {
	for _, collName := range managedCollections {
		// 检查集合是否存在
		collExists, err := CollectionExists(collName)
		if err != nil {
			return fmt.Errorf("检查集合失败: %w", err)
		}

		// 如果不存在则创建
		if !collExists {
			if err := db.CreateCollection(ctx, collName); err != nil {
				return fmt.Errorf("创建集合失败: %w", err)
			}
			utils.Logger.Info().Str("collection", collName).Msg("创建集合成功")
		} else {
			utils.Logger.Info().Str("collection", collName).Msg("集合已存在")
		}
	}

	return ensureProposalIndexes()
}

// ensureProposalIndexes 提案编号唯一
func ensureProposalIndexes() error {
	_, err := Collection(ProposalsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "serialNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "appointedEngineer.id", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("创建索引失败: %w", err)
	}
	return nil
}

// CollectionExists 检查集合是否存在
func CollectionExists(collName string) (bool, error) {
	collections, err := db.ListCollectionNames(ctx, bson.M{"name": collName})
	if err != nil {
		return false, err
	}

	for _, name := range collections {
		if name == collName {
			return true, nil
		}
	}

	return false, nil
}

// GetDatabaseStatus 获取数据库状态
func GetDatabaseStatus() (map[string]interface{}, error) {
	if db == nil {
		return nil, errors.New("MongoDB尚未初始化")
	}
	result := make(map[string]interface{})

	for _, collName := range managedCollections {
		count, err := db.Collection(collName).CountDocuments(ctx, bson.M{})
		if err != nil {
			utils.Logger.Error().Err(err).Str("collection", collName).Msg("获取集合计数失败")
			result[collName] = map[string]interface{}{
				"count": 0,
				"error": err.Error(),
			}
			continue
		}
		result[collName] = map[string]interface{}{
			"count": count,
		}
	}

	return result, nil
}
