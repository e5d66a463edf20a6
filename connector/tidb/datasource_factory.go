package tidb

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	logger2 "krc20-indexer/logger"
	"krc20-indexer/model"
)

var (
	db   *gorm.DB
	once sync.Once
)

const defaultBatchSize = 200

var tblCreateSqlMap = make(map[string]string)

func init() {
	tblCreateSqlMap["token_activities"] = "CREATE TABLE IF NOT EXISTS `token_activities` (\n    `block_timestamp` datetime(3) NOT NULL COMMENT 'Timestamp of the block carrying the operation',\n    `daa_score` bigint(20) unsigned NOT NULL COMMENT 'DAA score of the block carrying the operation',\n    `block_hash` varchar(64) NOT NULL COMMENT 'Hash of the block carrying the operation',\n    `tx_index` int(11) NOT NULL COMMENT 'Index of the transaction among the non-coinbase transactions of the block',\n    `tx_id` varchar(64) NOT NULL COMMENT 'Transaction id',\n    `type` varchar(16) NOT NULL COMMENT 'deploy  mint  transfer',\n    `tick` varchar(255) NOT NULL COMMENT 'Token tick',\n    `amt` decimal(39, 0) DEFAULT NULL COMMENT 'Amount',\n    `from_address` varchar(128) DEFAULT NULL COMMENT 'from field of the payload',\n    `to_address` varchar(128) DEFAULT NULL COMMENT 'to field of the payload',\n    `receiver` varchar(128) DEFAULT NULL COMMENT 'Address receiving the first output',\n    `payload` text COMMENT 'Operation as JSON',\n    PRIMARY KEY (`block_hash`, `tx_index`)\n);\n"
	tblCreateSqlMap["block_batches"] = "CREATE TABLE IF NOT EXISTS `block_batches` (\n    `block_hash` varchar(64) NOT NULL COMMENT 'Block hash',\n    `daa_score` bigint(20) unsigned NOT NULL COMMENT 'DAA score of the block',\n    `block_timestamp` datetime(3) NOT NULL COMMENT 'Timestamp of the block',\n    `transactions` int(11) NOT NULL COMMENT 'Non-coinbase transactions scanned',\n    `operations` int(11) NOT NULL COMMENT 'KRC-20 operations detected',\n    `merkle_root` varchar(64) DEFAULT NULL COMMENT 'Merkle root over the operations',\n    PRIMARY KEY (`block_hash`),\n    KEY `idx_block_batches_daa_score` (`daa_score`)\n);\n"
}

type Config struct {
	TiDBUser     string `json:"tidb_user" toml:"tidb_user"`
	TiDBPassword string `json:"tidb_password" toml:"tidb_password"`
	TiDBHost     string `json:"tidb_host" toml:"tidb_host"`
	TiDBPort     string `json:"tidb_port" toml:"tidb_port"`
	TiDBDBName   string `json:"tidb_db_name" toml:"tidb_db_name"`
}

// GetConfigFromFile reads a .toml or .json configuration file.
func GetConfigFromFile(fileName string) (*Config, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}

	var config Config
	switch filepath.Ext(fileName) {
	case ".toml":
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("parse %s: %w", fileName, err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("parse %s: %w", fileName, err)
		}
	}
	return &config, nil
}

// ApplyEnv overrides fields with the tidb_* environment variables that are set.
func (c *Config) ApplyEnv() {
	overrides := map[string]*string{
		"tidb_user":     &c.TiDBUser,
		"tidb_password": &c.TiDBPassword,
		"tidb_host":     &c.TiDBHost,
		"tidb_port":     &c.TiDBPort,
		"tidb_db_name":  &c.TiDBDBName,
	}
	for name, field := range overrides {
		if v, ok := os.LookupEnv(name); ok {
			*field = v
		}
	}
}

func (c *Config) DSN() string {
	dsn := mysqldriver.NewConfig()
	dsn.User = c.TiDBUser
	dsn.Passwd = c.TiDBPassword
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(c.TiDBHost, c.TiDBPort)
	dsn.DBName = c.TiDBDBName
	dsn.ParseTime = true
	dsn.Params = map[string]string{"charset": "utf8mb4"}
	return dsn.FormatDSN()
}

func createDB(config *Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(config.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// GetDBInstance opens the shared connection on first use.
func GetDBInstance(config *Config) (*gorm.DB, error) {
	var err error
	once.Do(func() {
		db, err = createDB(config)
	})
	return db, err
}

// GetDBInstanceByEnv opens the shared connection from the tidb_* environment
// variables only.
func GetDBInstanceByEnv() (*gorm.DB, error) {
	config := &Config{}
	config.ApplyEnv()
	return GetDBInstance(config)
}

func JudgeTableExistOrNot(db *gorm.DB, tableName string) bool {
	return db.Migrator().HasTable(tableName)
}

func CreateTableIfNotExist[T any](db *gorm.DB, tableName string) error {
	if JudgeTableExistOrNot(db, tableName) {
		return nil
	}

	fileSql, ok := tblCreateSqlMap[tableName]
	if ok && db.Dialector.Name() == "mysql" {
		if err := db.Exec(fileSql).Error; err != nil {
			return fmt.Errorf("create table %s failed: %w", tableName, err)
		}
		return nil
	}

	if err := db.AutoMigrate(new(T)); err != nil {
		return fmt.Errorf("create table %s failed: %w", tableName, err)
	}
	return nil
}

func batchUpsert[T any](db *gorm.DB, datas []T, batchSize int, table_name string) error {
	if len(datas) == 0 {
		return nil
	}

	var logger = logger2.GetLogger()
	for i := 0; i < len(datas); i += batchSize {
		end := i + batchSize
		if end > len(datas) {
			end = len(datas)
		}

		err := db.Table(table_name).Clauses(clause.OnConflict{
			UpdateAll: true,
		}).Create(datas[i:end]).Error

		if err != nil {
			return err
		}
	}

	logger.Infof("Upsert into db successed, items %d %s", len(datas), table_name)
	return nil
}

// CreateTables creates every table the indexer writes.
func CreateTables(db *gorm.DB) error {
	if err := CreateTableIfNotExist[model.TokenActivity](db, model.TokenActivity{}.TableName()); err != nil {
		return err
	}
	if err := CreateTableIfNotExist[model.TokenDeploy](db, model.TokenDeploy{}.TableName()); err != nil {
		return err
	}
	return CreateTableIfNotExist[model.BlockBatch](db, model.BlockBatch{}.TableName())
}

// ProcessUpsert writes one processing run in a single transaction.
func ProcessUpsert(db *gorm.DB, tokenActivities []*model.TokenActivity, tokenDeploys []*model.TokenDeploy, blockBatches []*model.BlockBatch) error {
	if err := CreateTables(db); err != nil {
		return err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := batchUpsert(tx, tokenActivities, defaultBatchSize, model.TokenActivity{}.TableName()); err != nil {
		tx.Rollback()
		return err
	}

	if err := batchUpsert(tx, tokenDeploys, defaultBatchSize, model.TokenDeploy{}.TableName()); err != nil {
		tx.Rollback()
		return err
	}

	if err := batchUpsert(tx, blockBatches, defaultBatchSize, model.BlockBatch{}.TableName()); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}
