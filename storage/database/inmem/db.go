// Package inmemdb provides in-memory repositories; used by tests and
// the admin smoke path where a real database is overkill.
package inmemdb

import (
	"sync"

	"github.com/gradahq/grada/core/item"
	"github.com/gradahq/grada/core/user"
)

type (
	userTable struct {
		mutex sync.RWMutex
		table map[string]*user.User
	}

	itemTable struct {
		mutex sync.RWMutex
		table map[string]*item.Item
		seq   []string // insertion order
	}

	DB struct {
		user *userTable
		item *itemTable
	}
)

func NewDB() *DB {
	return &DB{
		user: &userTable{table: make(map[string]*user.User)},
		item: &itemTable{table: make(map[string]*item.Item)},
	}
}
