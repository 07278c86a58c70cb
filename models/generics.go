package models

import (
	"context"

	"bitbucket.org/mmdatafocus/facility_backend/config"
	"bitbucket.org/mmdatafocus/facility_backend/utils"
)

// first find in redis, then in db, cache result
// (may return RecordNotFound error)
func GetResource[T any](ctx context.Context, id int, associations ...string) (*T, error) {

	// associated fetches bypass the cache (cached copies hold no preloads)
	if len(associations) > 0 {
		return utils.FetchModel[T](ctx, id, associations...)
	}

	// find in redis
	result, err := utils.RetrieveRedis[T](id)
	if err != nil {
		return nil, err
	}
	// if not found in redis
	if result == nil {
		// fetch from db
		result, err = utils.FetchModel[T](ctx, id)
		if err != nil {
			return nil, err
		}

		// store in redis
		if err := utils.StoreRedis[T](result, id); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// invalidate the cached copy after a mutation
func EvictResource[T any](id int) {
	_ = utils.RemoveRedis[T](id)
}

func ToggleActiveModel[T any](ctx context.Context, id int, isActive bool) (*T, error) {

	result, err := utils.FetchModel[T](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(result).Update("IsActive", isActive).Error
	if err != nil {
		return nil, err
	}
	EvictResource[T](id)
	return result, nil
}
