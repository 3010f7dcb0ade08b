package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kitabu/core"
	"github.com/trezcool/kitabu/core/club"
)

type clubRepository struct {
	db         *clubTable
	meetings   *meetingTable
	attendance *attendanceTable
}

var _ club.Repository = (*clubRepository)(nil) // interface compliance check

func NewClubRepository(db *DB) club.Repository {
	return &clubRepository{
		db:         db.club,
		meetings:   db.meeting,
		attendance: db.attendance,
	}
}

func (repo *clubRepository) query() []club.Club {
	clubs := make([]club.Club, 0, len(repo.db.table))
	for _, c := range repo.db.table {
		clubs = append(clubs, *c)
	}
	sort.Slice(clubs, func(i, j int) bool { return clubs[i].Name < clubs[j].Name })
	return clubs
}

func (repo *clubRepository) CreateClub(ctx context.Context, c club.Club, exec ...core.DBExecutor) (club.Club, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c.ID = uuid.New().String()
	repo.db.table[c.ID] = &c
	return c, nil
}

func (repo *clubRepository) GetClubByID(ctx context.Context, id string, exec ...core.DBExecutor) (club.Club, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.table[id]; ok {
		return *c, nil
	}
	return club.Club{}, club.ErrNotFound
}

func (repo *clubRepository) QueryClubs(ctx context.Context, filter *club.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]club.Club, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	clubs := repo.query()
	if filter == nil {
		return clubs, nil
	}

	if filter.Search != "" {
		var filtered []club.Club
		search := strings.ToLower(filter.Search)
		for _, c := range clubs {
			if strings.Contains(strings.ToLower(c.Name), search) {
				filtered = append(filtered, c)
			}
		}
		clubs = filtered
	}
	if clubs != nil && filter.TeacherID != "" {
		var filtered []club.Club
		for _, c := range clubs {
			if c.TeacherID == filter.TeacherID {
				filtered = append(filtered, c)
			}
		}
		clubs = filtered
	}

	return clubs, nil
}

func (repo *clubRepository) UpdateClub(ctx context.Context, c club.Club, maxMembers null.Int, exec ...core.DBExecutor) (club.Club, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	origClub, ok := repo.db.table[c.ID]
	if !ok {
		return club.Club{}, club.ErrNotFound
	}
	if c.Name != "" {
		origClub.Name = c.Name
	}
	if c.Description != "" {
		origClub.Description = c.Description
	}
	if c.TeacherID != "" {
		origClub.TeacherID = c.TeacherID
	}
	if maxMembers.Valid {
		origClub.MaxMembers = maxMembers
	}
	if !c.UpdatedAt.IsZero() {
		origClub.UpdatedAt = c.UpdatedAt
	}

	return *origClub, nil
}

func (repo *clubRepository) DeleteClubsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func (repo *clubRepository) CreateMeeting(ctx context.Context, m club.Meeting, exec ...core.DBExecutor) (club.Meeting, error) {
	repo.meetings.Lock()
	defer repo.meetings.Unlock()

	m.ID = uuid.New().String()
	repo.meetings.table[m.ID] = &m
	return m, nil
}

func (repo *clubRepository) GetMeetingByID(ctx context.Context, id string, exec ...core.DBExecutor) (club.Meeting, error) {
	repo.meetings.RLock()
	defer repo.meetings.RUnlock()

	if m, ok := repo.meetings.table[id]; ok {
		return *m, nil
	}
	return club.Meeting{}, club.ErrMeetingNotFound
}

func (repo *clubRepository) QueryMeetingsByClub(ctx context.Context, clubID string, exec ...core.DBExecutor) ([]club.Meeting, error) {
	repo.meetings.RLock()
	defer repo.meetings.RUnlock()

	var meetings []club.Meeting
	for _, m := range repo.meetings.table {
		if m.ClubID == clubID {
			meetings = append(meetings, *m)
		}
	}
	sort.Slice(meetings, func(i, j int) bool { return meetings[i].Date.Before(meetings[j].Date) })
	return meetings, nil
}

func (repo *clubRepository) DeleteMeetingsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	repo.meetings.Lock()
	defer repo.meetings.Unlock()
	for _, id := range ids {
		delete(repo.meetings.table, id)
	}
	return nil
}

func (repo *clubRepository) SetMeetingAttendance(ctx context.Context, att club.Attendance, exec ...core.DBExecutor) error {
	repo.attendance.Lock()
	defer repo.attendance.Unlock()

	if repo.attendance.table[att.MeetingID] == nil {
		repo.attendance.table[att.MeetingID] = make(map[string]bool)
	}
	repo.attendance.table[att.MeetingID][att.StudentID] = att.Present
	return nil
}

func (repo *clubRepository) GetMeetingAttendance(ctx context.Context, meetingID string, exec ...core.DBExecutor) ([]club.Attendance, error) {
	repo.attendance.RLock()
	defer repo.attendance.RUnlock()

	var atts []club.Attendance
	for studentID, present := range repo.attendance.table[meetingID] {
		atts = append(atts, club.Attendance{MeetingID: meetingID, StudentID: studentID, Present: present})
	}
	sort.Slice(atts, func(i, j int) bool { return atts[i].StudentID < atts[j].StudentID })
	return atts, nil
}
