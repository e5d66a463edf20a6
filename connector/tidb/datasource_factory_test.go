package tidb

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"krc20-indexer/model"
)

func TestGetConfigFromFile(t *testing.T) {
	dir := t.TempDir()

	tomlFile := filepath.Join(dir, "db.toml")
	require.NoError(t, os.WriteFile(tomlFile, []byte(`
tidb_user = "root"
tidb_host = "127.0.0.1"
tidb_port = "4000"
tidb_db_name = "krc20"
`), 0644))

	config, err := GetConfigFromFile(tomlFile)
	require.NoError(t, err)
	require.Equal(t, &Config{TiDBUser: "root", TiDBHost: "127.0.0.1", TiDBPort: "4000", TiDBDBName: "krc20"}, config)

	jsonFile := filepath.Join(dir, "db.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(`{"tidb_user":"admin","tidb_password":"pw"}`), 0644))

	config, err = GetConfigFromFile(jsonFile)
	require.NoError(t, err)
	require.Equal(t, "admin", config.TiDBUser)
	require.Equal(t, "pw", config.TiDBPassword)

	badFile := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(badFile, []byte("tidb_user = "), 0644))
	_, err = GetConfigFromFile(badFile)
	require.Error(t, err)

	_, err = GetConfigFromFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("tidb_host", "db.internal")
	t.Setenv("tidb_password", "")

	config := &Config{TiDBUser: "root", TiDBHost: "localhost", TiDBPassword: "secret"}
	config.ApplyEnv()

	require.Equal(t, "root", config.TiDBUser)
	require.Equal(t, "db.internal", config.TiDBHost)
	require.Equal(t, "", config.TiDBPassword)
}

func TestDSN(t *testing.T) {
	config := &Config{TiDBUser: "root", TiDBPassword: "pw", TiDBHost: "127.0.0.1", TiDBPort: "4000", TiDBDBName: "krc20"}
	dsn := config.DSN()

	require.True(t, strings.HasPrefix(dsn, "root:pw@tcp(127.0.0.1:4000)/krc20?"), dsn)
	require.Contains(t, dsn, "parseTime=true")
	require.Contains(t, dsn, "charset=utf8mb4")
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "indexer.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestCreateTables(t *testing.T) {
	db := openTestDB(t)

	require.False(t, JudgeTableExistOrNot(db, model.TokenActivity{}.TableName()))
	require.NoError(t, CreateTables(db))
	require.True(t, JudgeTableExistOrNot(db, model.TokenActivity{}.TableName()))
	require.True(t, JudgeTableExistOrNot(db, model.TokenDeploy{}.TableName()))
	require.True(t, JudgeTableExistOrNot(db, model.BlockBatch{}.TableName()))

	// Second call is a no-op.
	require.NoError(t, CreateTables(db))
}

func TestProcessUpsert(t *testing.T) {
	db := openTestDB(t)

	ts := time.UnixMilli(1_700_000_000_000).UTC()
	amt := decimal.NewFromInt(1_000_000)
	activities := []*model.TokenActivity{
		{BlockTimestamp: ts, DaaScore: 7, BlockHash: "b1", TxIndex: 0, TxID: "t1", Type: "mint", Tick: "KASP", Amt: &amt, Payload: `{"op":"mint"}`},
		{BlockTimestamp: ts, DaaScore: 7, BlockHash: "b1", TxIndex: 1, TxID: "t2", Type: "deploy", Tick: "KASP"},
	}
	maxSupply := decimal.NewFromInt(21_000_000)
	deploys := []*model.TokenDeploy{
		{BlockTimestamp: ts, DaaScore: 7, BlockHash: "b1", TxID: "t2", Tick: "KASP", MaxSupply: &maxSupply},
	}
	batches := []*model.BlockBatch{
		{BlockHash: "b1", DaaScore: 7, BlockTimestamp: ts, Transactions: 2, Operations: 2, MerkleRoot: "ab"},
	}

	require.NoError(t, ProcessUpsert(db, activities, deploys, batches))

	batches[0].MerkleRoot = "cd"
	require.NoError(t, ProcessUpsert(db, activities, deploys, batches))

	var count int64
	require.NoError(t, db.Model(&model.TokenActivity{}).Count(&count).Error)
	require.Equal(t, int64(2), count)
	require.NoError(t, db.Model(&model.TokenDeploy{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	var batch model.BlockBatch
	require.NoError(t, db.First(&batch, "block_hash = ?", "b1").Error)
	require.Equal(t, "cd", batch.MerkleRoot)
	require.Equal(t, uint64(7), batch.DaaScore)

	var activity model.TokenActivity
	require.NoError(t, db.First(&activity, "block_hash = ? AND tx_index = ?", "b1", 0).Error)
	require.NotNil(t, activity.Amt)
	require.True(t, amt.Equal(*activity.Amt))
}

func TestProcessUpsertEmpty(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, ProcessUpsert(db, nil, nil, nil))
	require.True(t, JudgeTableExistOrNot(db, model.BlockBatch{}.TableName()))
}
