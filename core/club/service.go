package club

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kitabu/core"
	"github.com/trezcool/kitabu/core/user"
)

var (
	// errors
	ErrNotFound        = errors.New("club not found")
	ErrMeetingNotFound = errors.New("meeting not found")
	ErrClubFull        = errors.New("club is full")
	ErrNotMember       = errors.New("student is not a member of this club")
)

type (
	Repository interface {
		CreateClub(ctx context.Context, c Club, exec ...core.DBExecutor) (Club, error)
		GetClubByID(ctx context.Context, id string, exec ...core.DBExecutor) (Club, error)
		// QueryClubs applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Club.Name.
		QueryClubs(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Club, error)
		UpdateClub(ctx context.Context, c Club, maxMembers null.Int, exec ...core.DBExecutor) (Club, error)
		DeleteClubsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error

		CreateMeeting(ctx context.Context, m Meeting, exec ...core.DBExecutor) (Meeting, error)
		GetMeetingByID(ctx context.Context, id string, exec ...core.DBExecutor) (Meeting, error)
		QueryMeetingsByClub(ctx context.Context, clubID string, exec ...core.DBExecutor) ([]Meeting, error)
		DeleteMeetingsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error

		SetMeetingAttendance(ctx context.Context, att Attendance, exec ...core.DBExecutor) error
		GetMeetingAttendance(ctx context.Context, meetingID string, exec ...core.DBExecutor) ([]Attendance, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, nc NewClub) (Club, error)
		GetByID(ctx context.Context, id string) (Club, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Club, error)
		Update(ctx context.Context, id string, uc UpdateClub) (Club, error)
		Delete(ctx context.Context, ids ...string) error

		AddMember(ctx context.Context, clubID, studentID string) (user.User, error)
		RemoveMember(ctx context.Context, clubID, studentID string) error
		Members(ctx context.Context, clubID string) ([]user.User, error)

		CreateMeeting(ctx context.Context, nm NewMeeting) (Meeting, error)
		MeetingsByClub(ctx context.Context, clubID string) ([]Meeting, error)
		DeleteMeetings(ctx context.Context, ids ...string) error
		SetAttendance(ctx context.Context, meetingID, studentID string, present bool) error
		MeetingAttendance(ctx context.Context, meetingID string) ([]Attendance, error)
	}

	service struct {
		repo    Repository
		usrRepo user.Repository
		mailSvc core.EmailService
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, usrRepo user.Repository, mailSvc core.EmailService) *service {
	return &service{
		repo:    repo,
		usrRepo: usrRepo,
		mailSvc: mailSvc,
	}
}

func (svc *service) Create(ctx context.Context, nc NewClub) (Club, error) {
	now := time.Now().UTC()
	c := Club{
		Name:        nc.Name,
		Description: nc.Description,
		TeacherID:   nc.TeacherID,
		MaxMembers:  nc.MaxMembers,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateClub(ctx, c)
}

func (svc *service) GetByID(ctx context.Context, id string) (Club, error) {
	return svc.repo.GetClubByID(ctx, id)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Club, error) {
	return svc.repo.QueryClubs(ctx, filter, ordering)
}

func (svc *service) Update(ctx context.Context, id string, uc UpdateClub) (Club, error) {
	c := Club{
		ID:          id,
		Name:        uc.Name,
		Description: uc.Description,
		TeacherID:   uc.TeacherID,
		UpdatedAt:   time.Now().UTC(),
	}
	return svc.repo.UpdateClub(ctx, c, uc.MaxMembers)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteClubsByID(ctx, ids)
}

// AddMember assigns a student to the club, enforcing the club's membership cap,
// and sends them a welcome email.
func (svc *service) AddMember(ctx context.Context, clubID, studentID string) (user.User, error) {
	c, err := svc.repo.GetClubByID(ctx, clubID)
	if err != nil {
		return user.User{}, err
	}
	if c.MaxMembers.Valid {
		members, err := svc.Members(ctx, clubID)
		if err != nil {
			return user.User{}, err
		}
		if len(members) >= c.MaxMembers.Int {
			return user.User{}, ErrClubFull
		}
	}
	usr, err := svc.usrRepo.SetUserClub(ctx, studentID, null.StringFrom(clubID))
	if err != nil {
		return user.User{}, err
	}
	go svc.sendWelcomeMail(usr, c)
	return usr, nil
}

func (svc *service) sendWelcomeMail(usr user.User, c Club) {
	svc.mailSvc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
			Subject:      "Welcome to " + c.Name,
			TemplateName: "club-welcome",
			TemplateData: struct {
				Name     string
				ClubName string
				ClubID   string
			}{usr.Name, c.Name, c.ID},
		},
	)
}

func (svc *service) RemoveMember(ctx context.Context, clubID, studentID string) error {
	usr, err := svc.usrRepo.GetUser(ctx, user.GetFilter{ID: studentID})
	if err != nil {
		return err
	}
	if !usr.ClubID.Valid || usr.ClubID.String != clubID {
		return ErrNotMember
	}
	_, err = svc.usrRepo.SetUserClub(ctx, studentID, null.String{})
	return err
}

func (svc *service) Members(ctx context.Context, clubID string) ([]user.User, error) {
	return svc.usrRepo.QueryUsers(
		ctx,
		&user.QueryFilter{ClubID: clubID},
		[]core.DBOrdering{{Field: "name", Ascending: true}},
	)
}

func (svc *service) CreateMeeting(ctx context.Context, nm NewMeeting) (Meeting, error) {
	if _, err := svc.repo.GetClubByID(ctx, nm.ClubID); err != nil {
		return Meeting{}, err
	}
	now := time.Now().UTC()
	m := Meeting{
		ClubID:    nm.ClubID,
		Title:     nm.Title,
		Date:      nm.Date.UTC(),
		Location:  nm.Location,
		Notes:     nm.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateMeeting(ctx, m)
}

func (svc *service) MeetingsByClub(ctx context.Context, clubID string) ([]Meeting, error) {
	return svc.repo.QueryMeetingsByClub(ctx, clubID)
}

func (svc *service) DeleteMeetings(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteMeetingsByID(ctx, ids)
}

// SetAttendance upserts a student's presence flag for a meeting. The student
// must belong to the meeting's club.
func (svc *service) SetAttendance(ctx context.Context, meetingID, studentID string, present bool) error {
	m, err := svc.repo.GetMeetingByID(ctx, meetingID)
	if err != nil {
		return err
	}
	usr, err := svc.usrRepo.GetUser(ctx, user.GetFilter{ID: studentID})
	if err != nil {
		return err
	}
	if !usr.ClubID.Valid || usr.ClubID.String != m.ClubID {
		return ErrNotMember
	}
	return svc.repo.SetMeetingAttendance(ctx, Attendance{
		MeetingID: meetingID,
		StudentID: studentID,
		Present:   present,
	})
}

func (svc *service) MeetingAttendance(ctx context.Context, meetingID string) ([]Attendance, error) {
	return svc.repo.GetMeetingAttendance(ctx, meetingID)
}
