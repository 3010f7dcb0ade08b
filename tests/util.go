package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kitabu/core/book"
	"github.com/trezcool/kitabu/core/club"
	"github.com/trezcool/kitabu/core/survey"
	"github.com/trezcool/kitabu/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateClub(
	t *testing.T,
	repo club.Repository,
	name, teacherID string,
	maxMembers ...int,
) club.Club {
	t.Helper()

	now := time.Now().UTC()
	c := club.Club{
		Name:      name,
		TeacherID: teacherID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(maxMembers) > 0 {
		c.MaxMembers = null.IntFrom(maxMembers[0])
	}
	c, err := repo.CreateClub(context.Background(), c)
	if err != nil {
		t.Fatalf("CreateClub() failed: %v", err)
	}
	return c
}

func AddClubMember(t *testing.T, repo user.Repository, usr user.User, clubID string) user.User {
	t.Helper()

	usr, err := repo.SetUserClub(context.Background(), usr.ID, null.StringFrom(clubID))
	if err != nil {
		t.Fatalf("AddClubMember() failed: %v", err)
	}
	return usr
}

func CreateBook(
	t *testing.T,
	repo book.Repository,
	clubID, title, author, month string,
	readAt ...time.Time,
) book.Book {
	t.Helper()

	now := time.Now().UTC()
	b := book.Book{
		ClubID:    clubID,
		Title:     title,
		Author:    author,
		Month:     month,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(readAt) > 0 {
		b.ReadAt = null.TimeFrom(readAt[0].UTC())
	}
	b, err := repo.CreateBook(context.Background(), b)
	if err != nil {
		t.Fatalf("CreateBook() failed: %v", err)
	}
	return b
}

func CreateSurvey(
	t *testing.T,
	repo survey.Repository,
	typ, clubID, studentID, authorID string,
	questions []survey.Question,
	createdAt ...time.Time,
) survey.Survey {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	svy := survey.Survey{
		Type:      typ,
		ClubID:    clubID,
		StudentID: studentID,
		AuthorID:  authorID,
		Questions: questions,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	svy, err := repo.CreateSurvey(context.Background(), svy)
	if err != nil {
		t.Fatalf("CreateSurvey() failed: %v", err)
	}
	return svy
}

func CreateMeeting(
	t *testing.T,
	repo club.Repository,
	clubID, title string,
	date time.Time,
) club.Meeting {
	t.Helper()

	now := time.Now().UTC()
	m := club.Meeting{
		ClubID:    clubID,
		Title:     title,
		Date:      date.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	m, err := repo.CreateMeeting(context.Background(), m)
	if err != nil {
		t.Fatalf("CreateMeeting() failed: %v", err)
	}
	return m
}
