package utils

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/buildtrack/matstock_backend/config"
)

var mutex sync.Mutex

/* generic functions */

func GetTypeName[T any]() string {
	var v T
	typeOfT := reflect.TypeOf(v)
	return typeOfT.Name()
}

// StockLock obtains a short-lived cross-instance lock for a (material, godown)
// stock key. Best-effort: correctness of stock posting rests on the DB row lock
// inside the posting transaction; this only narrows the window in which two
// instances contend on the same key.
func StockLock(ctx context.Context, key string, moduleName string, functionName string) (*redislock.Lock, error) {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	if locker == nil {
		// Redis lock not initialized; skip the optimization.
		return nil, nil
	}
	lockKey := fmt.Sprintf("stockLock:%s", key)
	lock, err := locker.Obtain(ctx, lockKey, 30*time.Second, nil)
	if err == redislock.ErrNotObtained {
		config.LogError(logger, moduleName, functionName, "Could not obtain stock lock", key, err)
		return nil, errors.New("could not obtain stock lock")
	} else if err != nil {
		config.LogError(logger, moduleName, functionName, "Error obtaining stock lock", key, err)
		return nil, err
	}
	return lock, nil
}

func ReleaseStockLock(ctx context.Context, lock *redislock.Lock) {
	if lock == nil {
		return
	}
	_ = lock.Release(ctx)
}

// GetSequence returns the next sequence number for model T.
// Redis keeps the hot counter; on a cold start the counter is primed from the
// DB max. Uniqueness is re-checked against the DB before the number is handed out.
func GetSequence[T any](ctx context.Context) (int64, error) {
	var model T
	mutex.Lock()
	defer mutex.Unlock()
	cacheKey := strings.ToLower(GetTypeName[T]()) + "_seq"
	var seqNo int64
	var err error
	db := config.GetDB()

	for {
		seqNo, err = config.GetRedisCounter(ctx, cacheKey)
		if err != nil {
			return 0, err
		}
		// if not found in redis, get from db
		if seqNo <= 1 {
			// get max seq no from db
			var dbSeq *int64
			if err := db.WithContext(ctx).Model(&model).Select("max(sequence_no)").
				Scan(&dbSeq).Error; err != nil {
				return 0, err
			}
			// in case db has no records yet
			if dbSeq == nil {
				seqNo = 0
			} else {
				seqNo = *dbSeq
			}
			// set redis
			seqNo++
			if err := config.SetRedisObject(cacheKey, &seqNo, 0); err != nil {
				return 0, err
			}
		}
		// check if sequence number exists in db
		err = ValidateUnique[T](ctx, "sequence_no", seqNo, 0)
		if err == nil {
			break
		}
	}
	return seqNo, nil
}
