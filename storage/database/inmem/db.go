// Package inmemdb provides map-backed repositories for tests and local runs
// without a database.
package inmemdb

import (
	"sync"

	"github.com/logopedika/kabinet/core/progress"
	"github.com/logopedika/kabinet/core/schedule"
	"github.com/logopedika/kabinet/core/student"
	"github.com/logopedika/kabinet/core/user"
)

type (
	DB struct {
		user     *userTable
		student  *studentTable
		plan     *planTable
		schedule *scheduleTable
		progress *progressTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	studentTable struct {
		sync.RWMutex
		// per owner, in roster insertion order
		table map[string][]*student.Student
	}

	planTable struct {
		sync.RWMutex
		// per owner, per plan slot, ordered activity texts
		table map[string]map[int][]string
	}

	scheduleTable struct {
		sync.RWMutex
		table map[string]schedule.Grid
	}

	progressTable struct {
		sync.RWMutex
		table map[string]map[string]map[int]progress.Record
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:     &userTable{table: make(map[string]*user.User)},
		student:  &studentTable{table: make(map[string][]*student.Student)},
		plan:     &planTable{table: make(map[string]map[int][]string)},
		schedule: &scheduleTable{table: make(map[string]schedule.Grid)},
		progress: &progressTable{table: make(map[string]map[string]map[int]progress.Record)},
	}
	return db, nil
}
