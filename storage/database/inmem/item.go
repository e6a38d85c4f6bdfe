package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/gradahq/grada/core"
	"github.com/gradahq/grada/core/item"
)

type itemRepository struct {
	db *itemTable
}

func NewItemRepository(db *DB) item.Repository {
	return &itemRepository{db: db.item}
}

// query returns the user's items in insertion order.
func (repo *itemRepository) query(userID string) []item.Item {
	items := make([]item.Item, 0, len(repo.db.seq))
	for _, id := range repo.db.seq {
		if it, ok := repo.db.table[id]; ok && it.UserID == userID {
			items = append(items, *it)
		}
	}
	return items
}

func (repo *itemRepository) CreateItem(_ context.Context, it item.Item) (item.Item, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	it.ID = uuid.New().String()
	repo.db.table[it.ID] = &it
	repo.db.seq = append(repo.db.seq, it.ID)
	return it, nil
}

func (repo *itemRepository) GetItem(_ context.Context, id, userID string) (item.Item, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if it, ok := repo.db.table[id]; ok && it.UserID == userID {
		return *it, nil
	}
	return item.Item{}, item.ErrNotFound
}

func (repo *itemRepository) QueryItems(_ context.Context, userID string, filter item.QueryFilter, ordering ...core.DBOrdering) ([]item.Item, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var items []item.Item
	for _, it := range repo.query(userID) {
		if filter.Status != "" && it.Status != filter.Status {
			continue
		}
		if filter.Outcome != "" && it.CompletionOutcome != filter.Outcome {
			continue
		}
		if filter.ParentProjectID != "" && it.ParentProjectID != filter.ParentProjectID {
			continue
		}
		if filter.TopLevelOnly && it.IsSubItem() {
			continue
		}
		items = append(items, it)
	}
	applyOrdering(items, ordering)
	return items, nil
}

// applyOrdering supports the fields the services actually sort by.
func applyOrdering(items []item.Item, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		return
	}
	ord := ordering[0]
	sort.SliceStable(items, func(i, j int) bool {
		var less bool
		switch ord.Field {
		case "completion_date":
			ti, tj := items[i].CompletionDate, items[j].CompletionDate
			switch {
			case ti == nil:
				less = false
			case tj == nil:
				less = true
			default:
				less = ti.Before(*tj)
			}
		case "order_index":
			less = items[i].OrderIndex < items[j].OrderIndex
		default: // created_date
			less = items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		if ord.Ascending {
			return less
		}
		return !less
	})
}

func (repo *itemRepository) UpdateItem(_ context.Context, it item.Item) (item.Item, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if old, ok := repo.db.table[it.ID]; !ok || old.UserID != it.UserID {
		return item.Item{}, item.ErrNotFound
	}
	repo.db.table[it.ID] = &it
	return it, nil
}

func (repo *itemRepository) CountSiblings(_ context.Context, userID, parentID string) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var count int
	for _, it := range repo.db.table {
		if it.UserID == userID && it.ParentProjectID == parentID {
			count++
		}
	}
	return count, nil
}
