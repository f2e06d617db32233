package persistent

import (
	"context"
	"testing"

	"mediashare/pkg/apperror"
	"mediashare/pkg/listing"
	"mediashare/services/tweet/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type recordedSQL struct {
	SQL  string
	Vars []interface{}
}

// dryRunDB opens a postgres session that only builds statements and records
// each one gorm generates.
func dryRunDB(t *testing.T) (*gorm.DB, *[]recordedSQL) {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=mediashare dbname=mediashare port=5432 sslmode=disable",
	}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)

	statements := &[]recordedSQL{}
	record := func(tx *gorm.DB) {
		*statements = append(*statements, recordedSQL{
			SQL:  tx.Statement.SQL.String(),
			Vars: append([]interface{}(nil), tx.Statement.Vars...),
		})
	}
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("mediashare:record", record))
	require.NoError(t, db.Callback().Row().After("gorm:row").Register("mediashare:record", record))
	require.NoError(t, db.Callback().Update().After("gorm:update").Register("mediashare:record", record))
	return db, statements
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%hello%", likePattern("hello"))
	assert.Equal(t, `%50\%\_\\%`, likePattern(`50%_\`))
}

func TestTweetMapperRoundTrip(t *testing.T) {
	e := &entity.Tweet{ID: "t1", OwnerID: "u1", Content: "hi", Version: 3}

	m := ToTweetModel(e)
	assert.Equal(t, "tweets", m.TableName())
	assert.Equal(t, e, ToTweetEntity(m))

	assert.Nil(t, ToTweetEntity(nil))
	assert.Nil(t, ToTweetModel(nil))
}

func TestTweetRepository_ListSQL(t *testing.T) {
	db, statements := dryRunDB(t)
	repo := NewTweetRepository(db)

	q := listing.Build(listing.Params{
		Query:    "50%",
		UserID:   "u1",
		SortBy:   "createdAt",
		SortType: "desc",
		Page:     "2",
		Limit:    "5",
	}, "content")

	_, err := repo.List(context.Background(), q)
	assert.ErrorIs(t, err, gorm.ErrDryRunModeUnsupported)
	require.Len(t, *statements, 2)

	count := (*statements)[0]
	assert.Contains(t, count.SQL, `SELECT count(*) FROM "tweets" INNER JOIN users ON users.id = tweets.owner_id AND users.deleted_at IS NULL`)
	assert.Contains(t, count.SQL, "tweets.owner_id = $1 AND tweets.content ILIKE $2")
	assert.Equal(t, []interface{}{"u1", `%50\%%`}, count.Vars)

	rows := (*statements)[1]
	assert.Contains(t, rows.SQL, `ORDER BY "tweets"."created_at" DESC,tweets.created_at ASC,tweets.id ASC LIMIT $3 OFFSET $4`)
	assert.Equal(t, []interface{}{"u1", `%50\%%`, 5, 5}, rows.Vars)
}

func TestTweetRepository_UpdateContentSQL(t *testing.T) {
	db, statements := dryRunDB(t)
	repo := NewTweetRepository(db)

	_, err := repo.UpdateContent(context.Background(), "t1", 2, "edited")
	assert.ErrorIs(t, err, apperror.ErrRecordNotFound)
	require.Len(t, *statements, 2)

	update := (*statements)[0]
	assert.Contains(t, update.SQL, `UPDATE "tweets" SET "content"=$1,"updated_at"=$2,"version"=version + 1 WHERE id = $3 AND version = $4`)
	require.Len(t, update.Vars, 4)
	assert.Equal(t, "edited", update.Vars[0])
	assert.Equal(t, "t1", update.Vars[2])
	assert.Equal(t, int64(2), update.Vars[3])

	assert.Contains(t, (*statements)[1].SQL, `SELECT count(*) FROM "tweets" WHERE id = $1`)
}

func TestTweetRepository_UpdateContentStaleVersion(t *testing.T) {
	db, _ := dryRunDB(t)
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("mediashare:count", func(tx *gorm.DB) {
		if dest, ok := tx.Statement.Dest.(*int64); ok {
			*dest = 1
			tx.RowsAffected = 1
		}
	}))
	repo := NewTweetRepository(db)

	_, err := repo.UpdateContent(context.Background(), "t1", 1, "late edit")
	assert.ErrorIs(t, err, apperror.ErrVersionConflict)
}
