// Package dummydb implements the core repositories in memory for tests and
// local development.
package dummydb

import (
	"sync"

	"github.com/trezcool/kitabu/core/book"
	"github.com/trezcool/kitabu/core/club"
	"github.com/trezcool/kitabu/core/guide"
	"github.com/trezcool/kitabu/core/survey"
	"github.com/trezcool/kitabu/core/user"
)

type (
	DB struct {
		user       *userTable
		club       *clubTable
		book       *bookTable
		survey     *surveyTable
		guide      *guideTable
		meeting    *meetingTable
		attendance *attendanceTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}
	clubTable struct {
		sync.RWMutex
		table map[string]*club.Club
	}
	bookTable struct {
		sync.RWMutex
		table map[string]*book.Book
	}
	surveyTable struct {
		sync.RWMutex
		table map[string]*survey.Survey
	}
	guideTable struct {
		sync.RWMutex
		table map[string]*guide.Guide
	}
	meetingTable struct {
		sync.RWMutex
		table map[string]*club.Meeting
	}
	attendanceTable struct {
		sync.RWMutex
		// meetingID -> studentID -> present
		table map[string]map[string]bool
	}
)

// Reset drops all rows; for tests.
func (db *DB) Reset() {
	db.user.Lock()
	db.user.table = make(map[string]*user.User)
	db.user.Unlock()

	db.club.Lock()
	db.club.table = make(map[string]*club.Club)
	db.club.Unlock()

	db.book.Lock()
	db.book.table = make(map[string]*book.Book)
	db.book.Unlock()

	db.survey.Lock()
	db.survey.table = make(map[string]*survey.Survey)
	db.survey.Unlock()

	db.guide.Lock()
	db.guide.table = make(map[string]*guide.Guide)
	db.guide.Unlock()

	db.meeting.Lock()
	db.meeting.table = make(map[string]*club.Meeting)
	db.meeting.Unlock()

	db.attendance.Lock()
	db.attendance.table = make(map[string]map[string]bool)
	db.attendance.Unlock()
}

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		club:       &clubTable{table: make(map[string]*club.Club)},
		book:       &bookTable{table: make(map[string]*book.Book)},
		survey:     &surveyTable{table: make(map[string]*survey.Survey)},
		guide:      &guideTable{table: make(map[string]*guide.Guide)},
		meeting:    &meetingTable{table: make(map[string]*club.Meeting)},
		attendance: &attendanceTable{table: make(map[string]map[string]bool)},
	}
	return db, nil
}
